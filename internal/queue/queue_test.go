package queue

import (
	"context"
	"testing"
	"time"

	"github.com/nyka2002/nekretnine-search/internal/models"
)

func TestAddAndPop(t *testing.T) {
	q := New()
	defer q.Stop()

	q.Add(models.ScrapeJob{Type: models.ScrapeJobFullScrape}, DefaultAddOptions())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	e := q.Pop(ctx)
	if e == nil {
		t.Fatalf("expected a popped entry")
	}
	if e.State != models.JobStateActive {
		t.Fatalf("expected JobStateActive after pop, got %v", e.State)
	}
}

func TestCounts(t *testing.T) {
	q := New()
	defer q.Stop()

	e1 := q.Add(models.ScrapeJob{Type: models.ScrapeJobFullScrape}, DefaultAddOptions())
	q.Add(models.ScrapeJob{Type: models.ScrapeJobFullScrape}, DefaultAddOptions())

	c := q.Counts()
	if c.Waiting != 2 {
		t.Fatalf("expected 2 waiting, got %d", c.Waiting)
	}

	q.Complete(e1, models.ScrapeJobResult{JobID: e1.Job.ID, Success: true})
	c = q.Counts()
	if c.Completed != 1 {
		t.Fatalf("expected 1 completed, got %d", c.Completed)
	}
}

func TestCancelNonActiveAllowed(t *testing.T) {
	q := New()
	defer q.Stop()

	e := q.Add(models.ScrapeJob{Type: models.ScrapeJobFullScrape}, DefaultAddOptions())
	if !q.Cancel(e.Job.ID) {
		t.Fatalf("expected cancel of a waiting job to succeed")
	}
}

func TestCancelActiveDisallowed(t *testing.T) {
	q := New()
	defer q.Stop()

	q.Add(models.ScrapeJob{Type: models.ScrapeJobFullScrape}, DefaultAddOptions())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	e := q.Pop(ctx)

	if q.Cancel(e.Job.ID) {
		t.Fatalf("expected cancel of an active job to be disallowed")
	}
}

func TestFailRetriesUpToMaxAttempts(t *testing.T) {
	q := New()
	defer q.Stop()

	opts := DefaultAddOptions()
	opts.Attempts = 2
	opts.BackoffInitial = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	q.Add(models.ScrapeJob{Type: models.ScrapeJobFullScrape}, opts)
	e := q.Pop(ctx)

	retrying := q.Fail(e, "boom")
	if !retrying {
		t.Fatalf("expected first failure (attempt 1 of 2) to retry")
	}

	// Wait for the backoff re-queue, then pop again and fail terminally.
	time.Sleep(50 * time.Millisecond)
	e2 := q.Pop(ctx)
	if e2 == nil {
		t.Fatalf("expected retried job to be poppable again")
	}
	retrying2 := q.Fail(e2, "boom again")
	if retrying2 {
		t.Fatalf("expected second failure (attempt 2 of 2) to settle as failed")
	}
	if e2.State != models.JobStateFailed {
		t.Fatalf("expected JobStateFailed, got %v", e2.State)
	}
}

func TestRegisterRepeatableReplacesPrevious(t *testing.T) {
	q := New()
	defer q.Stop()

	if err := q.RegisterRepeatable("full", "0 0 1 1 *", models.ScrapeJob{Type: models.ScrapeJobFullScrape}, DefaultAddOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.RegisterRepeatable("full", "0 0 2 1 *", models.ScrapeJob{Type: models.ScrapeJobFullScrape}, DefaultAddOptions()); err != nil {
		t.Fatalf("unexpected error on re-registration: %v", err)
	}
	if len(q.repeatable) != 1 {
		t.Fatalf("expected re-registration to replace, not accumulate, got %d entries", len(q.repeatable))
	}
}
