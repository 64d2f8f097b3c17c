package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/nyka2002/nekretnine-search/internal/logger"
	"github.com/nyka2002/nekretnine-search/internal/models"
	"github.com/nyka2002/nekretnine-search/internal/pool"
	"github.com/nyka2002/nekretnine-search/internal/sources"
	"golang.org/x/time/rate"
)

// SourceScraper pairs a per-site scraper with its own Runner (and thus its
// own rate limiter; sharing one across sites would let one slow site
// throttle the others).
type SourceScraper struct {
	Scraper sources.Scraper
	Source  string
	Runner  *sources.Runner
}

// ProgressFunc is called after each scraper completes within a job.
type ProgressFunc func(models.JobProgress)

// Worker is the concurrency-1 job processor. Rate-limited to at most one
// job per minute; dispatches by job.Type to the registered scrapers,
// running them sequentially so no two scrapes interleave on this process.
type Worker struct {
	Queue      *Queue
	Scrapers   []SourceScraper
	Pool       *pool.Pool
	Limiter    *rate.Limiter
	OnProgress ProgressFunc

	// GracePeriod is how long an in-flight job is given to finish once
	// cancellation is requested before the hard deadline terminates it.
	GracePeriod time.Duration
}

// NewWorker creates a Worker limited to one job per minute.
func NewWorker(q *Queue, scrapers []SourceScraper, p *pool.Pool) *Worker {
	return &Worker{
		Queue:       q,
		Scrapers:    scrapers,
		Pool:        p,
		Limiter:     rate.NewLimiter(rate.Every(time.Minute), 1),
		GracePeriod: 30 * time.Second,
	}
}

// Run pulls jobs one at a time until ctx is cancelled. Cancellation is
// cooperative via the retry/runner's ctx.Err() checks before each page;
// once ctx.Done() fires, Run stops accepting new jobs and lets any in-
// flight job finish, giving it GracePeriod before the hard deadline
// terminates the current scraper.
func (w *Worker) Run(ctx context.Context) {
	for {
		if err := ctx.Err(); err != nil {
			return
		}

		if err := w.Limiter.Wait(ctx); err != nil {
			return
		}

		entry := w.Queue.Pop(ctx)
		if entry == nil {
			return // ctx cancelled while waiting for work
		}

		w.runJob(ctx, entry)
	}
}

func (w *Worker) runJob(ctx context.Context, entry *Entry) {
	// jobCtx outlives ctx by GracePeriod: once ctx is cancelled the in-flight
	// job keeps running until GracePeriod elapses, then jobCtx is cancelled.
	jobCtx, cancelJob := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelJob()
	stopGrace := context.AfterFunc(ctx, func() { time.AfterFunc(w.GracePeriod, cancelJob) })
	defer stopGrace()
	if w.GracePeriod > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(jobCtx, 10*time.Minute)
		defer cancel()
	}

	session, err := w.Pool.Acquire(jobCtx)
	if err != nil {
		// a top-level failure before any scraper runs fails the whole job
		w.Queue.Fail(entry, fmt.Sprintf("acquire fetch session: %v", err))
		return
	}
	defer w.Pool.Release(session)

	targets := w.selectScrapers(entry.Job)
	result := models.ScrapeJobResult{JobID: entry.Job.ID, Started: time.Now()}

	for i, target := range targets {
		if jobCtx.Err() != nil {
			break // cooperative cancellation checked before each scraper
		}

		w.publishProgress(entry.Job.ID, i, len(targets), target.Source, models.JobStateActive)

		target.Runner.Fetcher = session.Fetcher
		sourceResult := w.runScraperSafely(jobCtx, target)
		result.Sources = append(result.Sources, sourceResult)
	}

	result.Finished = time.Now()
	result.Success = true
	w.Queue.Complete(entry, result)
	w.publishProgress(entry.Job.ID, len(targets), len(targets), "", models.JobStateCompleted)
}

// runScraperSafely runs one scraper's Run, recovering a panic into a
// source-level error so one misbehaving scraper never fails the whole job.
func (w *Worker) runScraperSafely(ctx context.Context, target SourceScraper) (result models.SourceResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("scraper panicked", "source", target.Source, "panic", r)
			result = models.SourceResult{Source: target.Source, Errors: []string{fmt.Sprintf("panic: %v", r)}}
		}
	}()
	return target.Runner.Run(ctx, target.Scraper)
}

func (w *Worker) publishProgress(jobID string, idx, total int, source string, status models.JobState) {
	if w.OnProgress == nil {
		return
	}
	w.OnProgress(models.JobProgress{
		JobID:        jobID,
		ScraperIndex: idx,
		ScraperTotal: total,
		Source:       source,
		Status:       status,
	})
}

// selectScrapers dispatches job.Type to the registered scrapers.
func (w *Worker) selectScrapers(job models.ScrapeJob) []SourceScraper {
	switch job.Type {
	case models.ScrapeJobSingleSource:
		var out []SourceScraper
		for _, s := range w.Scrapers {
			if s.Source == job.Source {
				out = append(out, s)
			}
		}
		return out
	case models.ScrapeJobListingTypeScrape:
		var out []SourceScraper
		for _, s := range w.Scrapers {
			if job.ListingType == nil || s.Scraper.ListingType() == *job.ListingType {
				out = append(out, s)
			}
		}
		return out
	case models.ScrapeJobFullScrape, models.ScrapeJobUpdateCheck:
		return w.Scrapers
	default:
		return w.Scrapers
	}
}
