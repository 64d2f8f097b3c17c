// Package httpapi implements the external HTTP surface: the
// conversational /chat endpoint, the plain /listings browse endpoints, and
// the bearer-authenticated /admin/scraping/* operational endpoints, routed
// with go-chi/chi/v5.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nyka2002/nekretnine-search/internal/chat"
	"github.com/nyka2002/nekretnine-search/internal/filters"
	"github.com/nyka2002/nekretnine-search/internal/logger"
	"github.com/nyka2002/nekretnine-search/internal/queue"
	"github.com/nyka2002/nekretnine-search/internal/search"
	"github.com/nyka2002/nekretnine-search/internal/store"
)

// Server wires the HTTP surface over the search/chat/queue/store
// components already built.
type Server struct {
	Extractor   *filters.Extractor
	ChatManager *chat.Manager
	Search      *search.Service
	Store       store.Store
	Queue       *queue.Queue
	AdminToken  string
}

// Router builds the chi router with the three endpoint groups.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Post("/chat", s.handleChat)
	r.Get("/listings", s.handleListListings)
	r.Get("/listings/{id}", s.handleGetListing)

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.bearerAuth)
		r.Post("/scraping/trigger", s.handleTriggerScraping)
		r.Get("/scraping/status", s.handleScrapingStatus)
	})

	return r
}

// requestLogger adapts internal/logger into a chi middleware, so HTTP
// request lines share the structured format of the rest of the process
// rather than chi's built-in stdlib logger.
func requestLogger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				"method", r.Method, "path", r.URL.Path,
				"status", ww.Status(), "duration", time.Since(start))
		})
	}
}
