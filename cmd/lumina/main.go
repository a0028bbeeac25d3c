package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"lumina/internal/app"
	"lumina/internal/config"
	"lumina/internal/service/collection"
	"lumina/internal/workspace"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// session is the workspace opened for one command invocation
type session struct {
	app       *app.App
	ws        *workspace.Workspace
	logCloser io.Closer
}

var sess *session

// Global flags
var (
	flagProject string
	flagOutput  string
)

var rootCmd = &cobra.Command{
	Use:   "lumina",
	Short: "Lumina - API collection workspace",
	Long: `Lumina manages projects of saved HTTP requests organised in folders.

Storage is configured from the environment (.env is loaded when present):
STORAGE_BACKEND, DATABASE_URL, REDIS_URL and friends.

Examples:
  lumina projects list
  lumina tree
  lumina request create <folder-id> "List users" --method GET --url https://api.test/users
  lumina request set <request-id> --header Accept=application/json
  lumina env set base_url=https://api.test
  lumina send <request-id>
  lumina import postman collection.json
  lumina export insomnia --file out.json`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return openSession(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeSession(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagProject, "project", "p", "", "Project to activate and load instead of the active one")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "text", "Output format (text/json/yaml)")
}

// openSession wires storage and loads the project named by --project, or the active one
func openSession(ctx context.Context) error {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, logCloser, err := config.NewLogger(cfg, os.Stderr, "lumina")
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logCloser.Close()
		return err
	}

	ws := workspace.New(collection.NewPersistence(a.Services), a.Executor, a.Services.Registry, workspace.Options{
		AutosaveInterval:   -1,
		PersistenceTimeout: cfg.PersistenceTimeout,
		OpQueueDepth:       cfg.OpQueueDepth,
	}, logger)
	sess = &session{app: a, ws: ws, logCloser: logCloser}

	if flagProject != "" {
		_, err = ws.SwitchProject(ctx, flagProject)
	} else {
		_, err = ws.Open(ctx)
	}
	if err != nil {
		_ = closeSession(ctx)
		return err
	}
	return nil
}

// closeSession saves the open request and releases storage
func closeSession(ctx context.Context) error {
	if sess == nil {
		return nil
	}
	err := sess.ws.Close(ctx)
	sess.app.Close()
	sess.logCloser.Close()
	sess = nil
	return err
}
