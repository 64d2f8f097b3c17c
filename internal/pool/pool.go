// Package pool implements the browser/HTTP fetch-session pool:
// acquire/release over a capped set of pooled fetch sessions, with idle
// reclamation on a periodic sweep.
package pool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nyka2002/nekretnine-search/internal/logger"
	"github.com/nyka2002/nekretnine-search/pkg/fetcher"
)

// Session wraps a pooled fetcher.Fetcher with pool bookkeeping.
type Session struct {
	Fetcher  fetcher.Fetcher
	created  time.Time
	lastUsed time.Time
	inUse    bool
}

// Config controls pool sizing and idle reclamation.
type Config struct {
	MaxSessions    int
	IdleTimeout    time.Duration
	AcquireWait    time.Duration // poll interval while waiting for a free session
	AcquireTimeout time.Duration // force-create after this long with none free
	SweepInterval  time.Duration
}

// DefaultConfig returns the standard pool shape: poll every 100ms,
// force-create after 30s, IdleTimeout floor enforced by New.
func DefaultConfig() Config {
	return Config{
		MaxSessions:    4,
		IdleTimeout:    5 * time.Minute,
		AcquireWait:    100 * time.Millisecond,
		AcquireTimeout: 30 * time.Second,
		SweepInterval:  1 * time.Minute,
	}
}

// Factory creates a new fetcher.Fetcher on demand (one per pooled Session).
type Factory func() (fetcher.Fetcher, error)

// Pool is a process-scoped, thread-safe fetch-session pool.
type Pool struct {
	mu       sync.Mutex
	sessions []*Session
	cfg      Config
	factory  Factory

	stopSweep chan struct{}
	stopped   bool
}

// New creates a Pool and starts its idle-reclamation sweep goroutine.
func New(cfg Config, factory Factory) *Pool {
	if cfg.IdleTimeout < time.Minute {
		cfg.IdleTimeout = time.Minute // floor: a sweep must never reap a session mid-page
	}
	p := &Pool{
		cfg:       cfg,
		factory:   factory,
		stopSweep: make(chan struct{}),
	}
	go p.sweepLoop()
	return p
}

// Acquire returns a free session, creating one if below the cap; otherwise it
// polls every AcquireWait until a session frees or AcquireTimeout elapses, at
// which point it force-creates one above the cap.
func (p *Pool) Acquire(ctx context.Context) (*Session, error) {
	deadline := time.Now().Add(p.cfg.AcquireTimeout)

	for {
		if s, ok := p.tryAcquireExisting(); ok {
			return s, nil
		}

		p.mu.Lock()
		belowCap := len(p.sessions) < p.cfg.MaxSessions
		p.mu.Unlock()

		if belowCap || time.Now().After(deadline) {
			return p.createSession()
		}

		t := time.NewTimer(p.cfg.AcquireWait)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		}
	}
}

func (p *Pool) tryAcquireExisting() (*Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.sessions {
		if !s.inUse {
			s.inUse = true
			s.lastUsed = time.Now()
			return s, true
		}
	}
	return nil, false
}

func (p *Pool) createSession() (*Session, error) {
	f, err := p.factory()
	if err != nil {
		return nil, fmt.Errorf("pool: create session: %w", err)
	}
	now := time.Now()
	s := &Session{Fetcher: f, created: now, lastUsed: now, inUse: true}

	p.mu.Lock()
	p.sessions = append(p.sessions, s)
	p.mu.Unlock()

	return s, nil
}

// Release marks a session free again.
func (p *Pool) Release(s *Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s.inUse = false
	s.lastUsed = time.Now()
}

// sweepLoop closes sessions idle longer than IdleTimeout. Holds the pool
// mutex only long enough to inspect lastUsed and splice the slice.
func (p *Pool) sweepLoop() {
	ticker := time.NewTicker(p.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.sweepIdle()
		case <-p.stopSweep:
			return
		}
	}
}

func (p *Pool) sweepIdle() {
	now := time.Now()

	p.mu.Lock()
	var stale []*Session
	kept := p.sessions[:0]
	for _, s := range p.sessions {
		if !s.inUse && now.Sub(s.lastUsed) > p.cfg.IdleTimeout {
			stale = append(stale, s)
			continue
		}
		kept = append(kept, s)
	}
	p.sessions = kept
	p.mu.Unlock()

	for _, s := range stale {
		if err := s.Fetcher.Close(); err != nil {
			logger.Warn("pool: error closing idle session", "error", err)
		}
	}
}

// Stats reports pool occupancy.
type Stats struct {
	Total int
	InUse int
	Idle  int
}

// Stats returns a snapshot of pool occupancy.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := Stats{Total: len(p.sessions)}
	for _, sess := range p.sessions {
		if sess.inUse {
			s.InUse++
		} else {
			s.Idle++
		}
	}
	return s
}

// Close stops the sweep loop and closes every pooled session.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	sessions := p.sessions
	p.sessions = nil
	p.mu.Unlock()

	close(p.stopSweep)

	var firstErr error
	for _, s := range sessions {
		if err := s.Fetcher.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
