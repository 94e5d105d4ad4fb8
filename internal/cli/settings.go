package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frankfika/gitlab-issuehelper/internal/model"
)

func newSettingsCommand(st *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the completion endpoint settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := st.app.Settings.Get(cmd.Context())
			if err != nil {
				return err
			}
			printSettings(st, s)
			return nil
		},
	}

	var patch model.Settings
	set := &cobra.Command{
		Use:   "set",
		Short: "Change one or more settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := st.app.Settings.Update(cmd.Context(), patch)
			if err != nil {
				return err
			}
			printSettings(st, s)
			return nil
		},
	}
	set.Flags().StringVar(&patch.APIKey, "api-key", "", "completion API key")
	set.Flags().StringVar(&patch.BaseURL, "base-url", "", "OpenAI-compatible base URL")
	set.Flags().StringVar(&patch.Model, "model", "", "model name")

	cmd.AddCommand(show, set)
	return cmd
}

func printSettings(st *rootState, s model.Settings) {
	key := model.MaskSecret(s.APIKey)
	if key == "" {
		key = "(not set)"
	}
	fmt.Fprintf(st.out, "api key:  %s\n", key)
	fmt.Fprintf(st.out, "base url: %s\n", s.BaseURL)
	fmt.Fprintf(st.out, "model:    %s\n", s.Model)
}
