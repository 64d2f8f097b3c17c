// Package queue implements the scrape job queue and scheduler:
// at-least-once enqueue with retries/backoff and retention policy,
// cron-registered repeatable jobs, state introspection, and
// non-active-state cancellation. The queue/worker state machine is plain
// channel+mutex code; cron expression parsing is delegated to
// robfig/cron/v3.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nyka2002/nekretnine-search/internal/models"
	"github.com/robfig/cron/v3"
)

// RetentionPolicy bounds how long/how many completed or failed jobs are kept.
type RetentionPolicy struct {
	MaxAge   time.Duration
	MaxCount int
}

// AddOptions configures one enqueue call.
type AddOptions struct {
	Attempts        int
	BackoffInitial  time.Duration
	RetainCompleted RetentionPolicy
	RetainFailed    RetentionPolicy
}

// DefaultAddOptions returns the standard enqueue shape: attempts=3,
// backoff=exponential(60s), retention {completed: 24h|100, failed: 7d|500}.
func DefaultAddOptions() AddOptions {
	return AddOptions{
		Attempts:        3,
		BackoffInitial:  60 * time.Second,
		RetainCompleted: RetentionPolicy{MaxAge: 24 * time.Hour, MaxCount: 100},
		RetainFailed:    RetentionPolicy{MaxAge: 7 * 24 * time.Hour, MaxCount: 500},
	}
}

// Entry is one queued job plus its queue-owned bookkeeping.
type Entry struct {
	Job         models.ScrapeJob
	State       models.JobState
	Attempts    int
	MaxAttempts int
	Options     AddOptions
	EnqueuedAt  time.Time
	Progress    *models.JobProgress
	Result      *models.ScrapeJobResult
	Error       string
}

// Counts is a state->count snapshot for status introspection.
type Counts struct {
	Waiting   int
	Active    int
	Completed int
	Failed    int
	Delayed   int
}

// Queue is an at-least-once FIFO job queue plus a cron-driven
// repeatable-job registry. The in-memory implementation stands in for an
// external persistent queue store, mirroring internal/store.MemoryStore's
// role for the listing store.
type Queue struct {
	mu         sync.Mutex
	waiting    []*Entry
	byID       map[string]*Entry
	cron       *cron.Cron
	repeatable map[string]cron.EntryID // name -> registered cron entry, for re-registration
	notify     chan struct{}
}

// New creates an empty Queue and starts its cron scheduler.
func New() *Queue {
	q := &Queue{
		byID:       map[string]*Entry{},
		cron:       cron.New(),
		repeatable: map[string]cron.EntryID{},
		notify:     make(chan struct{}, 1),
	}
	q.cron.Start()
	return q
}

// Stop stops the cron scheduler. Does not drain in-flight work; callers
// coordinate worker shutdown separately.
func (q *Queue) Stop() {
	q.cron.Stop()
}

// Add enqueues a job with the given options.
func (q *Queue) Add(job models.ScrapeJob, opts AddOptions) *Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	e := &Entry{
		Job:         job,
		State:       models.JobStateWaiting,
		MaxAttempts: opts.Attempts,
		Options:     opts,
		EnqueuedAt:  time.Now(),
	}
	q.waiting = append(q.waiting, e)
	q.byID[job.ID] = e
	q.wake()
	return e
}

func (q *Queue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// RegisterRepeatable registers job under name on a cron schedule. A prior
// registration under the same name is removed first, allowing
// redefinition.
func (q *Queue) RegisterRepeatable(name, cronExpr string, jobTemplate models.ScrapeJob, opts AddOptions) error {
	q.mu.Lock()
	if prev, ok := q.repeatable[name]; ok {
		q.cron.Remove(prev)
		delete(q.repeatable, name)
	}
	q.mu.Unlock()

	id, err := q.cron.AddFunc(cronExpr, func() {
		job := jobTemplate
		job.ID = ""
		job.TriggeredBy = models.TriggeredByScheduler
		job.TriggeredAt = time.Now()
		q.Add(job, opts)
	})
	if err != nil {
		return err
	}

	q.mu.Lock()
	q.repeatable[name] = id
	q.mu.Unlock()
	return nil
}

// RegisterMaintenance schedules fn to run directly on the cron scheduler,
// outside the job queue itself. Used for periodic maintenance work like
// the listing staleness sweep.
func (q *Queue) RegisterMaintenance(cronExpr string, fn func()) error {
	_, err := q.cron.AddFunc(cronExpr, fn)
	return err
}

// Pop removes and returns the next waiting job, blocking while the queue is
// empty; it returns nil once ctx is done. Called by the single-concurrency
// worker.
func (q *Queue) Pop(ctx context.Context) *Entry {
	for {
		q.mu.Lock()
		if len(q.waiting) > 0 {
			e := q.waiting[0]
			q.waiting = q.waiting[1:]
			e.State = models.JobStateActive
			q.mu.Unlock()
			return e
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil
		case <-q.notify:
		case <-time.After(time.Second):
		}
	}
}

// Complete marks e completed and stores its result, applying retention.
func (q *Queue) Complete(e *Entry, result models.ScrapeJobResult) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e.State = models.JobStateCompleted
	e.Result = &result
	q.applyRetention(e.Options.RetainCompleted, models.JobStateCompleted)
}

// Fail marks e failed, applying retries with exponential backoff up to
// MaxAttempts before settling into JobStateFailed. Returns true if the job
// will be retried (re-queued as delayed->waiting) rather than settled.
func (q *Queue) Fail(e *Entry, errMsg string) (retrying bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e.Attempts++
	e.Error = errMsg

	if e.Attempts < e.MaxAttempts {
		e.State = models.JobStateDelayed
		delay := backoffDelay(e.Options.BackoffInitial, e.Attempts)
		go func() {
			time.Sleep(delay)
			q.mu.Lock()
			e.State = models.JobStateWaiting
			q.waiting = append(q.waiting, e)
			q.mu.Unlock()
			q.wake()
		}()
		return true
	}

	e.State = models.JobStateFailed
	q.applyRetention(e.Options.RetainFailed, models.JobStateFailed)
	return false
}

// backoffDelay is exponential(initial) by attempt count.
func backoffDelay(initial time.Duration, attempt int) time.Duration {
	d := initial
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	return d
}

// applyRetention trims settled (completed/failed) entries of state beyond
// the retention policy's age/count bounds. Must be called with q.mu held.
func (q *Queue) applyRetention(policy RetentionPolicy, state models.JobState) {
	cutoff := time.Now().Add(-policy.MaxAge)
	var matching []*Entry
	for _, e := range q.byID {
		if e.State == state {
			matching = append(matching, e)
		}
	}
	if policy.MaxCount > 0 && len(matching) > policy.MaxCount {
		excess := len(matching) - policy.MaxCount
		for i := 0; i < excess && i < len(matching); i++ {
			delete(q.byID, matching[i].Job.ID)
		}
	}
	for _, e := range matching {
		if e.EnqueuedAt.Before(cutoff) {
			delete(q.byID, e.Job.ID)
		}
	}
}

// Cancel cancels a job, refused while the job is active.
func (q *Queue) Cancel(jobID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	e, ok := q.byID[jobID]
	if !ok || e.State == models.JobStateActive {
		return false
	}

	e.State = models.JobStateFailed
	e.Error = "cancelled"
	for i, w := range q.waiting {
		if w.Job.ID == jobID {
			q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
			break
		}
	}
	return true
}

// Counts returns state->count for the admin status endpoint.
func (q *Queue) Counts() Counts {
	q.mu.Lock()
	defer q.mu.Unlock()

	var c Counts
	for _, e := range q.byID {
		switch e.State {
		case models.JobStateWaiting:
			c.Waiting++
		case models.JobStateActive:
			c.Active++
		case models.JobStateCompleted:
			c.Completed++
		case models.JobStateFailed:
			c.Failed++
		case models.JobStateDelayed:
			c.Delayed++
		}
	}
	return c
}

// Recent returns up to n most recently enqueued entries, newest first.
func (q *Queue) Recent(n int) []*Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	all := make([]*Entry, 0, len(q.byID))
	for _, e := range q.byID {
		all = append(all, e)
	}
	sortByEnqueuedDesc(all)
	if len(all) > n {
		all = all[:n]
	}
	return all
}

func sortByEnqueuedDesc(entries []*Entry) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].EnqueuedAt.After(entries[j-1].EnqueuedAt); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}
