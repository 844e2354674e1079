package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"nconnect-cli/internal/api"
	"nconnect-cli/internal/config"
	"nconnect-cli/internal/format"
	"nconnect-cli/internal/session"
	"nconnect-cli/internal/state"
	"nconnect-cli/internal/tui"
)

type App struct {
	Cfg        config.Config
	PrettyJSON bool
	Format     string
	Tab        string

	client *api.Client
	store  state.Store
	ctrl   *session.Controller
	log    *slog.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "nconnect",
		Short:        "Society management console (TUI + CLI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive console
  nconnect

  # Scriptable commands
  nconnect login --username amara
  nconnect list bills --status unpaid
  nconnect stats
  nconnect export bills -o bills.csv
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive console.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("NCONNECT_FORMAT", "json"), "Output format (json)")
	cmd.PersistentFlags().StringVar(&app.Tab, "tab", "", "Open the console on this tab (resident console only)")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newStatsCmd(app))
	cmd.AddCommand(newExportCmd(app))

	return cmd
}

// bootstrap loads configuration and wires the client, state store, and
// session controller. Idempotent; every command calls it first.
func (app *App) bootstrap() error {
	if app.client != nil {
		return nil
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	app.Cfg = cfg
	app.log = openLogger(cfg)
	app.client = api.New(cfg.BaseURL, cfg.Timeout, app.log)
	app.store = state.Store{Dir: cfg.StateDir}
	app.ctrl = session.NewController(app.client, app.store, app.log)
	return nil
}

// openLogger logs to a file under the state dir. The TUI owns the terminal,
// so diagnostics never go to stderr. A file that cannot be opened degrades
// to a discard logger.
func openLogger(cfg config.Config) *slog.Logger {
	if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	f, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// requireActive resumes the stored session and verifies it with a status
// round-trip. Commands that read or write resources call this first.
func (app *App) requireActive(ctx context.Context) error {
	if err := app.bootstrap(); err != nil {
		return err
	}
	gen, ok := app.ctrl.Resume(ctx)
	if !ok {
		return errors.New("not signed in; run `nconnect login`")
	}
	st, err := app.client.UserStatus(ctx)
	switch app.ctrl.FinishVerify(ctx, gen, st, err) {
	case session.VerifyOK:
		return nil
	default:
		return errors.New("session expired; run `nconnect login`")
	}
}

func runTUI(app *App) error {
	if err := app.bootstrap(); err != nil {
		return err
	}
	return tui.Run(tui.Options{
		Config:     app.Cfg,
		Client:     app.client,
		Store:      app.store,
		Controller: app.ctrl,
		Logger:     app.log,
		InitialTab: app.Tab,
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
