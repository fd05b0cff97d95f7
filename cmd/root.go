// Package cmd holds the command line entry points of the service
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/heliumhq/invite-dashboard-api/api/handlers"
	"github.com/heliumhq/invite-dashboard-api/config"
)

var rootCmd = &cobra.Command{
	Use:          "invite-dashboard-api",
	Short:        "Admin API for the invite code dashboard",
	Long:         "Serves the invite code dashboard API and runs its maintenance jobs. Without a subcommand it starts the server.",
	Version:      handlers.Version,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, archiveUsedCodesCmd, archiveWaitlistCmd, hashPasswordCmd)
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

// Execute runs the command named on the command line. SIGINT and SIGTERM
// cancel the command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// initApp loads the config and connects the app to its stores
func initApp(ctx context.Context) (*handlers.App, error) {
	conf, err := config.New()
	if err != nil {
		return nil, err
	}
	a := &handlers.App{Config: *conf}
	if err := a.Initialize(ctx); err != nil {
		a.Close(context.WithoutCancel(ctx))
		return nil, err
	}
	return a, nil
}
