package models

import "time"

// TurnRole distinguishes a chat turn's speaker.
type TurnRole string

const (
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
)

// Turn is a single message within a ChatSession.
type Turn struct {
	Role      TurnRole
	Content   string
	Timestamp time.Time
}

// SessionState is the chat session state machine's current state.
type SessionState string

const (
	SessionStateNew        SessionState = "new"
	SessionStateExtracting SessionState = "extracting"
	SessionStateClarifying SessionState = "clarifying"
	SessionStateSearchable SessionState = "searchable"
	SessionStateEnded      SessionState = "ended"
)

// MaxTurnHistory caps ChatSession.Turns.
const MaxTurnHistory = 20

// SessionIdleExpiry is how long a session may sit idle in the cache before
// transitioning to SessionStateEnded.
const SessionIdleExpiry = time.Hour

// ChatSession is the per-session accumulated chat state.
type ChatSession struct {
	ID             string
	Turns          []Turn
	CurrentFilters ExtractedFilters
	TurnCount      int
	SessionStart   time.Time
	State          SessionState
	LastActivity   time.Time
}

// Clone returns a deep copy, so a caller holding a reference to a prior
// snapshot is unaffected by further mutation.
func (s *ChatSession) Clone() *ChatSession {
	if s == nil {
		return nil
	}
	out := *s
	out.Turns = append([]Turn(nil), s.Turns...)
	if s.CurrentFilters.Amenities != nil {
		out.CurrentFilters.Amenities = append([]string(nil), s.CurrentFilters.Amenities...)
	}
	return &out
}

// AppendTurn appends a turn and truncates history to MaxTurnHistory,
// keeping CurrentFilters untouched: truncation never discards accumulated
// filter state.
func (s *ChatSession) AppendTurn(t Turn) {
	s.Turns = append(s.Turns, t)
	if len(s.Turns) > MaxTurnHistory {
		s.Turns = s.Turns[len(s.Turns)-MaxTurnHistory:]
	}
	s.TurnCount++
	s.LastActivity = t.Timestamp
}

// IsExpired reports whether the session has been idle past SessionIdleExpiry.
func (s *ChatSession) IsExpired(now time.Time) bool {
	return now.Sub(s.LastActivity) > SessionIdleExpiry
}
