package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heliumhq/invite-dashboard-api/api/handlers"
	"github.com/heliumhq/invite-dashboard-api/api/scheduler"
)

var archiveUsedCodesCmd = &cobra.Command{
	Use:   "archive-used-codes",
	Short: "Archive every used invite code that is still active",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return runArchive(c, "invite codes", func(ctx context.Context, a *handlers.App) (int64, error) {
			return a.InviteCodes.ArchiveUsed(ctx)
		})
	},
}

var archiveWaitlistCmd = &cobra.Command{
	Use:   "archive-notified-waitlist",
	Short: "Archive every waitlist entry that has been notified",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return runArchive(c, "waitlist entries", func(ctx context.Context, a *handlers.App) (int64, error) {
			return a.Waitlist.Archive(ctx, nil)
		})
	},
}

func runArchive(c *cobra.Command, what string, archive func(ctx context.Context, a *handlers.App) (int64, error)) error {
	ctx, cancel := context.WithTimeout(c.Context(), scheduler.JobTimeout)
	defer cancel()

	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))

	count, err := archive(ctx, a)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.OutOrStdout(), "archived %d %s\n", count, what)
	return err
}
