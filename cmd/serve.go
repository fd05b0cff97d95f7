package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/heliumhq/invite-dashboard-api/api/scheduler"
)

const (
	shutdownTimeout   = 15 * time.Second
	readHeaderTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(c *cobra.Command, _ []string) error {
	ctx := c.Context()
	a, err := initApp(ctx)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer a.Close(context.WithoutCancel(ctx))

	s := scheduler.NewScheduler(a.InviteCodes, a.Waitlist, a.Locks)
	if err := s.Start(a.Config.ArchiveUsedCodesCron, a.Config.ArchiveNotifiedWaitlistCron); err != nil {
		return err
	}
	defer s.Stop()

	srv := &http.Server{
		Addr:              ":" + a.Config.Port,
		Handler:           a.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	lch := make(chan error, 1)
	go func() {
		lch <- srv.ListenAndServe()
	}()
	zap.S().Infow("invite-dashboard-api is up and running",
		"port", a.Config.Port,
		"environment", a.Config.Environment,
		"prefix", a.Config.APIPrefix,
	)

	select {
	case err := <-lch:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.S().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
