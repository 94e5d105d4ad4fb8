package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/frankfika/gitlab-issuehelper/internal/model"
)

func newProjectsCommand(st *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Manage saved GitLab projects",
	}
	cmd.AddCommand(
		newProjectsListCommand(st),
		newProjectsAddCommand(st),
		newProjectsUpdateCommand(st),
		newProjectsDeleteCommand(st),
		newProjectsTestCommand(st),
	)
	return cmd
}

func newProjectsListCommand(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			projects, err := st.app.Projects.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Fprintln(st.out, "No projects saved. Add one with `issuegen projects add`.")
				return nil
			}
			tw := tabwriter.NewWriter(st.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tGITLAB\tPROJECT\tTOKEN")
			for _, p := range projects {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.GitLabURL, p.ProjectID, p.MaskedToken())
			}
			return tw.Flush()
		},
	}
}

type credentialFlags struct {
	name      string
	gitlabURL string
	token     string
	projectID string
}

func (f *credentialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "display name")
	cmd.Flags().StringVar(&f.gitlabURL, "url", "", "GitLab base URL, e.g. https://gitlab.com")
	cmd.Flags().StringVar(&f.token, "token", "", "personal access token with api scope")
	cmd.Flags().StringVar(&f.projectID, "project-id", "", "numeric project id or namespace/name")
}

func (f *credentialFlags) credential() model.ProjectCredential {
	return model.ProjectCredential{
		Name:      f.name,
		GitLabURL: f.gitlabURL,
		Token:     f.token,
		ProjectID: f.projectID,
	}
}

func newProjectsAddCommand(st *rootState) *cobra.Command {
	var (
		f      credentialFlags
		noTest bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Save a GitLab project",
		Long: `Add checks the credential against GitLab and saves it. When --name is
omitted the project's own name is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cred := f.credential()

			if !noTest {
				result, err := st.app.Projects.TestConnection(ctx, cred)
				if err != nil {
					return err
				}
				fmt.Fprintln(st.out, result.Message)
				if cred.Name == "" {
					cred.Name = result.SuggestedName
				}
			}

			saved, err := st.app.Projects.Add(ctx, cred)
			if err != nil {
				return err
			}
			fmt.Fprintf(st.out, "Saved %s (%s)\n", saved.Name, saved.ID)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&noTest, "no-test", false, "save without checking the connection")
	return cmd
}

func newProjectsUpdateCommand(st *rootState) *cobra.Command {
	var f credentialFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a saved project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch model.ProjectPatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &f.name
			}
			if flags.Changed("url") {
				patch.GitLabURL = &f.gitlabURL
			}
			if flags.Changed("token") {
				patch.Token = &f.token
			}
			if flags.Changed("project-id") {
				patch.ProjectID = &f.projectID
			}

			updated, err := st.app.Projects.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(st.out, "Updated %s (%s)\n", updated.Name, updated.ID)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newProjectsDeleteCommand(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a saved project",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.app.Projects.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(st.out, "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newProjectsTestCommand(st *rootState) *cobra.Command {
	var f credentialFlags
	cmd := &cobra.Command{
		Use:   "test [id]",
		Short: "Check a saved project, or the credential given by flags",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cred := f.credential()
			if len(args) == 1 {
				stored, err := st.app.Projects.Get(ctx, args[0])
				if err != nil {
					return err
				}
				cred = *stored
			}

			result, err := st.app.Projects.TestConnection(ctx, cred)
			if err != nil {
				return err
			}
			fmt.Fprintln(st.out, result.Message)
			fmt.Fprintf(st.out, "  project: %s\n", result.Project.NameWithNamespace)
			fmt.Fprintf(st.out, "  url:     %s\n", result.Project.WebURL)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
