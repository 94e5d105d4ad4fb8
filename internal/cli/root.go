// Package cli is the issuegen command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/frankfika/gitlab-issuehelper/common/id"
	"github.com/frankfika/gitlab-issuehelper/common/logger"
	"github.com/frankfika/gitlab-issuehelper/common/otel"
	"github.com/frankfika/gitlab-issuehelper/core/config"
	"github.com/frankfika/gitlab-issuehelper/internal/service"
	"github.com/frankfika/gitlab-issuehelper/internal/service/issue_tracker"
	"github.com/frankfika/gitlab-issuehelper/internal/store"
)

// App is what every subcommand runs against.
type App struct {
	Generator  service.GeneratorService
	Submission service.SubmissionService
	Projects   service.ProjectService
	History    service.HistoryService
	Settings   service.SettingsService

	close func(context.Context) error
}

// NewApp wraps services; closer may be nil.
func NewApp(services *service.Services, closer func(context.Context) error) *App {
	return &App{
		Generator:  services.Generator(),
		Submission: services.Submission(),
		Projects:   services.Projects(),
		History:    services.History(),
		Settings:   services.Settings(),
		close:      closer,
	}
}

func (a *App) Close(ctx context.Context) error {
	if a.close == nil {
		return nil
	}
	return a.close(ctx)
}

type Options struct {
	// Bootstrap builds the App before any subcommand runs. Defaults to
	// loading configuration from the environment.
	Bootstrap func(ctx context.Context) (*App, error)
	Out       io.Writer
	Err       io.Writer
	In        io.Reader
}

type rootState struct {
	opts Options
	app  *App
	out  io.Writer
	in   io.Reader
}

func NewRootCommand(opts Options) *cobra.Command {
	if opts.Bootstrap == nil {
		opts.Bootstrap = Bootstrap
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}

	st := &rootState{opts: opts, out: opts.Out, in: opts.In}

	root := &cobra.Command{
		Use:   "issuegen",
		Short: "Draft GitLab issues with a language model and file them",
		Long: `issuegen turns a short bug report or feature request into a structured
GitLab issue. The draft streams to the terminal as the model writes it and can
be edited before it is submitted to a saved GitLab project.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			app, err := st.opts.Bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			st.app = app
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if st.app == nil {
				return nil
			}
			return st.app.Close(cmd.Context())
		},
	}
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)
	root.SetIn(opts.In)

	root.AddCommand(
		newGenerateCommand(st),
		newSubmitCommand(st),
		newProjectsCommand(st),
		newHistoryCommand(st),
		newSettingsCommand(st),
	)
	return root
}

// Execute runs the command tree and exits non-zero on failure.
func Execute(ctx context.Context) {
	root := NewRootCommand(Options{})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", describeError(err))
		os.Exit(1)
	}
}

// Bootstrap loads configuration and wires services the way the server does.
func Bootstrap(ctx context.Context) (*App, error) {
	cfg, err := config.Load(config.ServiceTypeCLI)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	telemetry, err := otel.Setup(ctx, cfg.OTel, cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("initializing otel: %w", err)
	}

	// Terminal output belongs to the draft; logs go to stderr.
	logger.Setup(cfg, os.Stderr)

	if err := id.Init(cfg.NodeID); err != nil {
		return nil, fmt.Errorf("initializing id generator: %w", err)
	}

	stores, err := store.Open(ctx, cfg, store.Options{Settings: service.DefaultSettings(cfg.LLM)})
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	services := service.NewServices(
		stores,
		issue_tracker.NewGitLabIssueTrackerService(nil),
		service.NewLLMClientFactory(cfg.LLM),
		nil,
	)

	return NewApp(services, func(ctx context.Context) error {
		return errors.Join(stores.Close(), telemetry.Shutdown(ctx))
	}), nil
}

// describeError turns the error taxonomy into a one-line hint.
func describeError(err error) string {
	switch {
	case errors.Is(err, issue_tracker.ErrNoProjectSelected):
		return err.Error() + " (add one with `issuegen projects add` or pass --project)"
	case service.IsValidation(err):
		return err.Error()
	default:
		return err.Error()
	}
}
