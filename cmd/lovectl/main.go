package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chanxe/love-plain/db"
	"github.com/chanxe/love-plain/internal/app"
	"github.com/chanxe/love-plain/internal/config"
	"github.com/chanxe/love-plain/internal/logging"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "lovectl",
		Short:   "Operate the daily love broadcast",
		Version: Version,
	}

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(inspectCmd())
	rootCmd.AddCommand(synthesizeCmd())
	rootCmd.AddCommand(clearCacheCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type env struct {
	cfg *config.Config
	rdb *redis.Client
}

func setup(ctx context.Context) (*env, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logFile := logging.Setup(cfg.LogFile)

	rdb, err := app.Connect(ctx, cfg)
	if err != nil {
		logFile.Close()
		return nil, nil, err
	}

	cleanup := func() {
		db.CloseRedis()
		db.Close()
		logFile.Close()
	}
	return &env{cfg: cfg, rdb: rdb}, cleanup, nil
}

// parseDate reads YYYY-MM-DD, defaulting to today in the broadcast time zone.
func parseDate(value string, cfg *config.Config) (time.Time, error) {
	loc, err := cfg.Broadcast.Location()
	if err != nil {
		return time.Time{}, err
	}
	if value == "" {
		return time.Now().In(loc), nil
	}
	date, err := time.ParseInLocation(time.DateOnly, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", value)
	}
	return date, nil
}
