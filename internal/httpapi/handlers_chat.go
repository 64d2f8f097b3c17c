package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/nyka2002/nekretnine-search/internal/chat"
	"github.com/nyka2002/nekretnine-search/internal/errkind"
	"github.com/nyka2002/nekretnine-search/internal/models"
	"github.com/nyka2002/nekretnine-search/internal/search"
)

// handleChat implements POST /chat: extract filters from the query, merge
// them into the session, search when the manager gates search on, and
// always return follow-up questions alongside any results.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is required"})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	session := s.ChatManager.GetOrCreate(r.Context(), sessionID)
	session.ID = sessionID

	extracted, conf, err := s.Extractor.Extract(r.Context(), req.Query)
	if err != nil {
		writeError(w, err)
		return
	}

	shouldSearch := s.ChatManager.ApplyTurn(session, req.Query, extracted, conf)

	resp := chatResponse{
		SessionID:        sessionID,
		ExtractedFilters: toFiltersDTO(session.CurrentFilters),
	}

	resultCount := -1 // no search this turn
	if shouldSearch {
		result, serr := s.Search.Search(r.Context(), req.Query, session.CurrentFilters, search.DefaultConfig())
		if serr != nil {
			writeError(w, serr)
			return
		}
		resp.Listings = make([]listingDTO, len(result.Listings))
		for i, rr := range result.Listings {
			resp.Listings[i] = toRankedDTO(rr)
		}
		resp.TotalMatches = result.TotalMatches
		resp.Cached = result.Cached
		resultCount = len(result.Listings)
	}

	resp.FollowUpQuestions = chat.GenerateFollowUpQuestions(session.CurrentFilters, resultCount)
	resp.Message = replyMessage(session.State, resultCount)
	s.ChatManager.RecordAssistantTurn(session, resp.Message)

	if err := s.ChatManager.Persist(r.Context(), session); err != nil {
		writeError(w, errkind.Wrap(errkind.DatabaseError, "chat: persist session", err))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// replyMessage picks the assistant reply; resultCount < 0 means no search
// ran this turn.
func replyMessage(state models.SessionState, resultCount int) string {
	switch {
	case state == models.SessionStateClarifying || resultCount < 0:
		return "Trebam još neke detalje da bih pronašao odgovarajuće nekretnine."
	case resultCount == 0:
		return "Nisam pronašao nekretnine koje odgovaraju vašim kriterijima."
	default:
		return "Evo nekretnina koje odgovaraju vašem upitu."
	}
}
