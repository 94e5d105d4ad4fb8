package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/frankfika/gitlab-issuehelper/common"
	"github.com/frankfika/gitlab-issuehelper/internal/model"
	"github.com/frankfika/gitlab-issuehelper/internal/service"
)

type generateFlags struct {
	images  []string
	submit  bool
	project string
	edit    bool
	output  string
	title   string
	labels  []string
}

func newGenerateCommand(st *rootState) *cobra.Command {
	var f generateFlags

	cmd := &cobra.Command{
		Use:   "generate [description]",
		Short: "Draft an issue from a short description",
		Long: `Generate streams a structured issue draft from the description. Without
arguments the description is read from stdin. Use --submit to file the draft
right away, optionally after revising it in $EDITOR with --edit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), st, f, args)
		},
	}

	cmd.Flags().StringArrayVarP(&f.images, "image", "i", nil, "attach a screenshot (repeatable)")
	cmd.Flags().BoolVar(&f.submit, "submit", false, "submit the draft once generated")
	cmd.Flags().StringVarP(&f.project, "project", "p", "", "stored project id to submit to")
	cmd.Flags().BoolVarP(&f.edit, "edit", "e", false, "open the draft in $EDITOR before submitting")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "also write the draft to this file, or into this directory named after the title")
	cmd.Flags().StringVar(&f.title, "title", "", "override the derived title on submit")
	cmd.Flags().StringSliceVar(&f.labels, "label", nil, "override the derived labels on submit")
	return cmd
}

func runGenerate(ctx context.Context, st *rootState, f generateFlags, args []string) error {
	description := strings.Join(args, " ")
	if description == "" {
		b, err := io.ReadAll(st.in)
		if err != nil {
			return fmt.Errorf("reading description: %w", err)
		}
		description = string(b)
	}

	images, err := readImages(f.images)
	if err != nil {
		return err
	}

	stream := &incrementPrinter{w: st.out}
	draft, err := st.app.Generator.Generate(ctx, service.GenerateParams{
		Description: description,
		Images:      images,
	}, stream.print)
	stream.finish()
	if err != nil {
		return err
	}

	content := draft.Content
	if f.output != "" {
		path, err := saveDraft(f.output, draft)
		if err != nil {
			return err
		}
		fmt.Fprintf(st.out, "Draft saved to %s\n", path)
	}

	if !f.submit {
		return nil
	}

	if f.edit {
		content, err = editInEditor(ctx, content)
		if err != nil {
			return err
		}
	}

	return submitDraft(ctx, st, service.SubmitParams{
		ProjectID: f.project,
		Content:   content,
		Title:     f.title,
		Labels:    f.labels,
		Images:    images,
	})
}

// saveDraft writes the draft to path, or to a file named after the title when
// path is a directory.
func saveDraft(path string, draft *model.Draft) (string, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		name, err := common.Slugify(draft.Title, "issue-draft")
		if err != nil {
			return "", err
		}
		path = filepath.Join(path, name+".md")
	}
	if err := os.WriteFile(path, []byte(draft.Content), 0o600); err != nil {
		return "", fmt.Errorf("writing draft: %w", err)
	}
	return path, nil
}

// incrementPrinter writes only the part of each increment not yet on screen.
type incrementPrinter struct {
	w       io.Writer
	printed string
}

func (p *incrementPrinter) print(content string) {
	if suffix, ok := strings.CutPrefix(content, p.printed); ok {
		fmt.Fprint(p.w, suffix)
	} else {
		// The model never rewrites earlier text, but start over cleanly if it does.
		fmt.Fprint(p.w, "\n"+content)
	}
	p.printed = content
}

func (p *incrementPrinter) finish() {
	if p.printed != "" && !strings.HasSuffix(p.printed, "\n") {
		fmt.Fprintln(p.w)
	}
}

func readImages(paths []string) ([]model.Image, error) {
	images := make([]model.Image, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading image %s: %w", path, err)
		}
		mediaType := http.DetectContentType(data)
		if !strings.HasPrefix(mediaType, "image/") {
			return nil, &service.ValidationError{Field: "image", Reason: fmt.Sprintf("%s is %s, not an image", path, mediaType)}
		}
		images = append(images, model.Image{
			Name:      filepath.Base(path),
			MediaType: mediaType,
			Data:      data,
		})
	}
	return images, nil
}

var errEmptyDraft = errors.New("draft is empty after editing")

func editInEditor(ctx context.Context, content string) (string, error) {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	tmp, err := os.CreateTemp("", "issuegen-*.md")
	if err != nil {
		return "", fmt.Errorf("creating draft file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing draft file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("writing draft file: %w", err)
	}

	fields := strings.Fields(editor)
	cmd := exec.CommandContext(ctx, fields[0], append(fields[1:], tmp.Name())...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("running %s: %w", editor, err)
	}

	edited, err := os.ReadFile(tmp.Name())
	if err != nil {
		return "", fmt.Errorf("reading edited draft: %w", err)
	}
	if strings.TrimSpace(string(edited)) == "" {
		return "", errEmptyDraft
	}
	return string(edited), nil
}
