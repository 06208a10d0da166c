package main

import (
	"fmt"
	"strings"

	"github.com/chanxe/love-plain/db"
	"github.com/chanxe/love-plain/internal/app"
	"github.com/chanxe/love-plain/internal/broadcast"

	"github.com/spf13/cobra"
)

func inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show aggregated data, mode and prompt without calling the model",
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

			data, mode, prompt, err := pipeline.Inspect(ctx, date)
			if err != nil {
				return err
			}

			fmt.Printf("Date: %s\n", broadcast.FormatDate(data.ReferenceDate))
			fmt.Println(strings.Repeat("=", 40))

			fmt.Printf("\nAnniversaries (%d):\n", len(data.TodaysAnniversaries))
			for _, a := range data.TodaysAnniversaries {
				fmt.Printf("  - %s (%s)\n", a.Title, a.Date.Format("2006-01-02"))
			}

			fmt.Printf("\nHistorical moments (%d):\n", len(data.HistoricalMoments))
			for _, m := range data.HistoricalMoments {
				fmt.Printf("  - [%s] %s: %s\n", m.Timestamp.Format("2006-01-02"), m.Author, m.Content)
			}

			fmt.Printf("\nRecent moments (%d):\n", len(data.RecentMoments))
			for _, m := range data.RecentMoments {
				fmt.Printf("  - [%s] %s: %s\n", m.Timestamp.Format("2006-01-02 15:04"), m.Author, m.Content)
			}

			fmt.Printf("\nMode: %s\n", mode)
			fmt.Println("\nSystem prompt:")
			fmt.Println(prompt.System)
			fmt.Println("\nUser prompt:")
			fmt.Println(prompt.User)
			return nil
		},
	}

	cmd.Flags().StringP("date", "d", "", "Date as YYYY-MM-DD (default today)")

	return cmd
}
