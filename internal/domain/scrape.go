package domain

import "time"

// ScrapeStatus is the lifecycle state of one scraper run.
type ScrapeStatus string

const (
	ScrapeStatusRunning  ScrapeStatus = "running"
	ScrapeStatusDone     ScrapeStatus = "done"
	ScrapeStatusFailed   ScrapeStatus = "failed"
	ScrapeStatusArchived ScrapeStatus = "archived"
)

// ScrapeRun records one full pass over the market listing.
type ScrapeRun struct {
	ID           string // uuid, generated at run start
	Status       ScrapeStatus
	PagesFetched int
	MarketsSeen  int
	Error        string
	StartedAt    time.Time
	FinishedAt   *time.Time
}
