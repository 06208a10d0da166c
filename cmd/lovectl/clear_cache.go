package main

import (
	"context"
	"fmt"
	"io"

	"github.com/chanxe/love-plain/db"
	"github.com/chanxe/love-plain/internal/app"

	"github.com/spf13/cobra"
)

func clearCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear-cache",
		Short: "Delete every stored broadcast so the next request regenerates it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, cleanup, err := setup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			yes, _ := cmd.Flags().GetBool("yes")
			reports := app.NewReports(db.DB, e.rdb, e.cfg.CacheTTL)

			return clearReports(ctx, reports, yes, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "Confirm deletion")

	return cmd
}

type reportClearer interface {
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// clearReports always runs DeleteAll when nothing is stored so that stale
// cache entries are purged too.
func clearReports(ctx context.Context, reports reportClearer, yes bool, out io.Writer) error {
	count, err := reports.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Stored reports: %d\n", count)

	if count > 0 && !yes {
		return fmt.Errorf("refusing to delete %d reports without --yes", count)
	}

	deleted, err := reports.DeleteAll(ctx)
	if err != nil {
		return err
	}

	if count == 0 {
		fmt.Fprintln(out, "No stored reports, cache entries purged")
		return nil
	}
	fmt.Fprintf(out, "Cleared %d reports\n", deleted)
	return nil
}
