package main

import (
	"fmt"

	"github.com/chanxe/love-plain/db"
	"github.com/chanxe/love-plain/internal/app"
	"github.com/chanxe/love-plain/internal/broadcast"

	"github.com/spf13/cobra"
)

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate (or fetch) the broadcast for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, cleanup, err := setup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			dateFlag, _ := cmd.Flags().GetString("date")
			date, err := parseDate(dateFlag, e.cfg)
			if err != nil {
				return err
			}

			reports := app.NewReports(db.DB, e.rdb, e.cfg.CacheTTL)
			pipeline, err := app.NewPipeline(e.cfg, reports, e.rdb)
			if err != nil {
				return err
			}

			result, err := pipeline.Run(ctx, date, broadcast.TriggerOnDemand)
			if err != nil {
				return err
			}

			r := result.Report
			status := "existing"
			if result.Created {
				status = "created"
			}
			fmt.Printf("Report %d (%s) for %s\n", r.ID, status, broadcast.FormatDate(r.ReportDate))
			fmt.Printf("Type:    %s\n", r.BroadcastType)
			fmt.Printf("Length:  %d chars\n\n", len([]rune(r.Content)))
			fmt.Println(r.Content)
			return nil
		},
	}

	cmd.Flags().StringP("date", "d", "", "Date as YYYY-MM-DD (default today)")

	return cmd
}
