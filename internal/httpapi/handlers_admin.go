package httpapi

import (
	"net/http"

	"encoding/json"

	"github.com/nyka2002/nekretnine-search/internal/models"
	"github.com/nyka2002/nekretnine-search/internal/queue"
)

const recentJobsShown = 10

// handleTriggerScraping implements POST /admin/scraping/trigger: enqueue
// a single_source job when source is given, otherwise a
// listing_type_scrape or full_scrape job.
func (s *Server) handleTriggerScraping(w http.ResponseWriter, r *http.Request) {
	var req triggerScrapingRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
	}

	job := models.ScrapeJob{TriggeredBy: models.TriggeredByManual}
	switch {
	case req.Source != "":
		job.Type = models.ScrapeJobSingleSource
		job.Source = req.Source
	case req.ListingType != "":
		lt := models.ListingType(req.ListingType)
		job.Type = models.ScrapeJobListingTypeScrape
		job.ListingType = &lt
	default:
		job.Type = models.ScrapeJobFullScrape
	}

	entry := s.Queue.Add(job, queue.DefaultAddOptions())
	writeJSON(w, http.StatusAccepted, triggerScrapingResponse{JobID: entry.Job.ID})
}

// handleScrapingStatus implements GET /admin/scraping/status: counts by
// state plus up to 10 recent jobs.
func (s *Server) handleScrapingStatus(w http.ResponseWriter, r *http.Request) {
	counts := s.Queue.Counts()
	recent := s.Queue.Recent(recentJobsShown)

	resp := scrapingStatusResponse{
		Waiting: counts.Waiting, Active: counts.Active,
		Completed: counts.Completed, Failed: counts.Failed, Delayed: counts.Delayed,
		Recent: make([]recentJobDTO, len(recent)),
	}
	for i, e := range recent {
		resp.Recent[i] = recentJobDTO{
			JobID: e.Job.ID, Type: string(e.Job.Type), State: string(e.State),
			EnqueuedAt: e.EnqueuedAt, Error: e.Error,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
