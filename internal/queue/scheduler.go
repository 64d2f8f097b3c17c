package queue

import (
	"context"

	"github.com/nyka2002/nekretnine-search/internal/models"
)

// Standard 5-field cron expressions for the repeatable schedules.
const (
	FullScrapeCron   = "0 */6 * * *"
	RentalScrapeCron = "0 */2 * * *"
	// StalenessSweepCron runs the listing staleness sweep once daily,
	// off-peak, outside the two scrape schedules.
	StalenessSweepCron = "0 3 * * *"
)

// RegisterDefaultSchedule registers the two standing repeatable jobs: a
// full scrape every 6 hours and a rental-only scrape every 2 hours.
func RegisterDefaultSchedule(q *Queue) error {
	if err := q.RegisterRepeatable("full_scrape", FullScrapeCron, models.ScrapeJob{
		Type: models.ScrapeJobFullScrape,
	}, DefaultAddOptions()); err != nil {
		return err
	}

	rent := models.ListingTypeRent
	return q.RegisterRepeatable("rental_scrape", RentalScrapeCron, models.ScrapeJob{
		Type:        models.ScrapeJobListingTypeScrape,
		ListingType: &rent,
	}, DefaultAddOptions())
}

// StalenessSweeper is the subset of the listing store the maintenance sweep
// needs.
type StalenessSweeper interface {
	CleanupStale(ctx context.Context, days int) (removed int, err error)
}

// RegisterStalenessSweep schedules the listing staleness sweep daily
// against store, removing listings whose UpdatedAt is older than
// staleDays.
func RegisterStalenessSweep(q *Queue, store StalenessSweeper, staleDays int) error {
	return q.RegisterMaintenance(StalenessSweepCron, func() {
		_, _ = store.CleanupStale(context.Background(), staleDays)
	})
}
