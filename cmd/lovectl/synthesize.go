package main

import (
	"fmt"
	"strconv"

	"github.com/chanxe/love-plain/db"
	"github.com/chanxe/love-plain/internal/app"

	"github.com/spf13/cobra"
)

func synthesizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "synthesize [report-id]",
		Short: "Synthesize audio for a stored report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid report id %q", args[0])
			}

			ctx := cmd.Context()

			e, cleanup, err := setup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			reports := app.NewReports(db.DB, e.rdb, e.cfg.CacheTTL)
			service, err := app.NewAudioService(e.cfg, reports)
			if err != nil {
				return err
			}

			url, err := service.SynthesizeReport(ctx, id)
			if err != nil {
				return err
			}
			if url == "" {
				fmt.Println("TTS engine unavailable, no audio produced")
				return nil
			}
			fmt.Printf("Audio: %s\n", url)
			return nil
		},
	}
}
