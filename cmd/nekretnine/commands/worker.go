package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nyka2002/nekretnine-search/internal/logger"
	"github.com/nyka2002/nekretnine-search/internal/models"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the scrape job queue worker loop",
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		logError("failed to load config: %v", err)
		return err
	}
	logger.Init(logger.Options{Debug: cfg.Debug, Quiet: cfg.Quiet})

	a, err := build(cfg)
	if err != nil {
		logError("failed to build application: %v", err)
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a.Worker.OnProgress = func(p models.JobProgress) {
		logger.Info("scrape progress",
			"job_id", p.JobID, "source", p.Source, "page", p.Page,
			"scraper", p.ScraperIndex, "of", p.ScraperTotal, "listings", p.ListingsProcessed)
	}

	logger.Info("worker starting")
	a.Worker.Run(ctx)
	logger.Info("worker stopped")
	return nil
}
