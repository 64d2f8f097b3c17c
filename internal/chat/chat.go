// Package chat implements the chat session manager: a per-session state
// machine merging extracted filters across turns, gating search, and
// generating clarification follow-up questions.
package chat

import (
	"context"
	"time"

	"github.com/nyka2002/nekretnine-search/internal/models"
)

// SessionStore is the external session cache collaborator
// ("chat:session:<id>" key, 1h TTL), write-through per turn.
type SessionStore interface {
	Get(ctx context.Context, id string) (*models.ChatSession, bool)
	Set(ctx context.Context, s *models.ChatSession, ttl time.Duration) error
}

// ClarificationConfidenceThreshold is the overall-confidence gate below
// which (or when any field is ambiguous) the session moves to CLARIFYING.
const ClarificationConfidenceThreshold = 0.6

// FirstTurnSearchThreshold is the stricter gate applied only on a
// session's very first turn.
const FirstTurnSearchThreshold = 0.5

// Manager owns session lifecycle, filter merging, and gating decisions. It
// does not itself call the extractor or searcher — TurnResult tells the
// caller (the HTTP handler) what to do next, keeping this package a pure
// state machine plus merge/gating logic testable without network mocks.
type Manager struct {
	store SessionStore
	now   func() time.Time
}

// New creates a Manager backed by store.
func New(store SessionStore, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{store: store, now: now}
}

// GetOrCreate loads an existing session or starts a new one in SessionStateNew.
func (m *Manager) GetOrCreate(ctx context.Context, sessionID string) *models.ChatSession {
	if sessionID != "" {
		if s, ok := m.store.Get(ctx, sessionID); ok {
			if s.IsExpired(m.now()) {
				s.State = models.SessionStateEnded
			}
			if s.State != models.SessionStateEnded {
				return s
			}
		}
	}
	now := m.now()
	return &models.ChatSession{
		ID:           sessionID,
		State:        models.SessionStateNew,
		SessionStart: now,
		LastActivity: now,
	}
}

// ApplyTurn records the user's message, merges newly extracted filters
// into CurrentFilters, transitions state, and decides whether to search.
func (m *Manager) ApplyTurn(s *models.ChatSession, query string, extracted models.ExtractedFilters, conf models.ExtractionConfidence) (shouldSearch bool) {
	now := m.now()
	isFirstTurn := s.TurnCount == 0

	s.AppendTurn(models.Turn{Role: models.TurnRoleUser, Content: query, Timestamp: now})
	s.CurrentFilters = s.CurrentFilters.Merge(extracted)
	s.State = models.SessionStateExtracting

	ambiguous := len(conf.AmbiguousFields) > 0
	lowConfidence := conf.Overall < ClarificationConfidenceThreshold

	switch {
	case lowConfidence || ambiguous:
		s.State = models.SessionStateClarifying
		return false
	case isFirstTurn && conf.Overall < FirstTurnSearchThreshold:
		return false
	default:
		shouldSearch = s.CurrentFilters.HighValueFieldPresent()
		if shouldSearch {
			s.State = models.SessionStateSearchable
		}
		return shouldSearch
	}
}

// RecordAssistantTurn appends the assistant's reply to history.
func (m *Manager) RecordAssistantTurn(s *models.ChatSession, content string) {
	s.AppendTurn(models.Turn{Role: models.TurnRoleAssistant, Content: content, Timestamp: m.now()})
}

// Persist write-throughs the session to the store with the 1h idle TTL.
func (m *Manager) Persist(ctx context.Context, s *models.ChatSession) error {
	return m.store.Set(ctx, s, models.SessionIdleExpiry)
}

// Reset explicitly ends a session.
func (m *Manager) Reset(s *models.ChatSession) {
	s.State = models.SessionStateEnded
}
