package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nyka2002/nekretnine-search/internal/logger"
	"github.com/nyka2002/nekretnine-search/internal/models"
	"github.com/nyka2002/nekretnine-search/internal/output"
	"github.com/nyka2002/nekretnine-search/internal/queue"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Trigger a one-off scrape job and wait for it to settle",
	Long: `Enqueues a single scrape job against the wired worker and blocks until
it completes, failing, or the given timeout elapses.

Examples:
  nekretnine scrape
  nekretnine scrape --source njuskalo
  nekretnine scrape --listing-type rent`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	scrapeCmd.Flags().String("source", "", "scrape only this source (default: all)")
	scrapeCmd.Flags().String("listing-type", "", "scrape only this listing type: rent, sale")
	scrapeCmd.Flags().Duration("wait", 5*time.Minute, "max time to wait for the job to settle")
	scrapeCmd.Flags().String("format", "", "structured result output format: json, jsonl, yaml (default: plain summary line)")
}

func runScrape(cmd *cobra.Command, args []string) error {
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

	source, _ := cmd.Flags().GetString("source")
	listingTypeStr, _ := cmd.Flags().GetString("listing-type")
	wait, _ := cmd.Flags().GetDuration("wait")
	format, _ := cmd.Flags().GetString("format")

	job := models.ScrapeJob{TriggeredBy: models.TriggeredByManual}
	switch {
	case source != "":
		job.Type = models.ScrapeJobSingleSource
		job.Source = source
	case listingTypeStr != "":
		lt := models.ListingType(listingTypeStr)
		job.Type = models.ScrapeJobListingTypeScrape
		job.ListingType = &lt
	default:
		job.Type = models.ScrapeJobFullScrape
	}

	runCtx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	workerDone := make(chan struct{})
	go func() {
		a.Worker.Run(runCtx)
		close(workerDone)
	}()

	entry := a.Queue.Add(job, queue.DefaultAddOptions())
	logger.Info("scrape job enqueued", "job_id", entry.Job.ID, "type", entry.Job.Type)

	if err := waitForSettle(runCtx, a.Queue, entry.Job.ID); err != nil {
		cancel()
		<-workerDone
		return err
	}

	cancel()
	<-workerDone

	if format != "" {
		return writeScrapeResult(format, entry)
	}

	if entry.State == models.JobStateCompleted && entry.Result != nil {
		fmt.Printf("scrape complete: %d saved, %d duplicate, %d sources\n",
			entry.Result.TotalSaved(), entry.Result.TotalDuplicate(), len(entry.Result.Sources))
	} else {
		fmt.Printf("scrape settled with state %s: %s\n", entry.State, entry.Error)
	}
	return nil
}

// writeScrapeResult renders the settled job entry through internal/output in
// the requested structured format.
func writeScrapeResult(format string, entry *queue.Entry) error {
	w, err := output.NewWriter(os.Stdout, output.Format(format))
	if err != nil {
		return fmt.Errorf("scrape: %w", err)
	}
	if err := w.Write(entry); err != nil {
		return fmt.Errorf("scrape: writing result: %w", err)
	}
	return w.Close()
}

func waitForSettle(ctx context.Context, q *queue.Queue, jobID string) error {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("scrape: timed out waiting for job %s", jobID)
		case <-ticker.C:
			for _, e := range q.Recent(50) {
				if e.Job.ID != jobID {
					continue
				}
				if e.State == models.JobStateCompleted || e.State == models.JobStateFailed {
					return nil
				}
			}
		}
	}
}
