package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/frankfika/gitlab-issuehelper/internal/service"
)

type submitFlags struct {
	file    string
	project string
	title   string
	labels  []string
	images  []string
}

func newSubmitCommand(st *rootState) *cobra.Command {
	var f submitFlags

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "File an existing draft as a GitLab issue",
		Long: `Submit reads a draft (from --file, or stdin when --file is "-" or
omitted) and creates an issue in the selected project. Title and labels are
derived from the draft unless overridden.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			content, err := readDraft(st.in, f.file)
			if err != nil {
				return err
			}
			images, err := readImages(f.images)
			if err != nil {
				return err
			}
			return submitDraft(cmd.Context(), st, service.SubmitParams{
				ProjectID: f.project,
				Content:   content,
				Title:     f.title,
				Labels:    f.labels,
				Images:    images,
			})
		},
	}

	cmd.Flags().StringVarP(&f.file, "file", "f", "", `draft file, "-" for stdin`)
	cmd.Flags().StringVarP(&f.project, "project", "p", "", "stored project id; optional when only one project is stored")
	cmd.Flags().StringVar(&f.title, "title", "", "override the derived title")
	cmd.Flags().StringSliceVar(&f.labels, "label", nil, "override the derived labels")
	cmd.Flags().StringArrayVarP(&f.images, "image", "i", nil, "attach a screenshot (repeatable)")
	return cmd
}

func readDraft(stdin io.Reader, path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "" || path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading draft: %w", err)
	}
	return string(b), nil
}

func submitDraft(ctx context.Context, st *rootState, params service.SubmitParams) error {
	result, err := st.app.Submission.Submit(ctx, params)
	if err != nil {
		return err
	}
	fmt.Fprintln(st.out, result.Message)
	fmt.Fprintf(st.out, "  title:  %s\n", result.Title)
	if len(result.Labels) > 0 {
		fmt.Fprintf(st.out, "  labels: %s\n", strings.Join(result.Labels, ", "))
	}
	fmt.Fprintf(st.out, "  url:    %s\n", result.URL)
	return nil
}
