package metrics

import (
	"context"
	"time"
)

// Metrics represents the current state of the catalog.
type Metrics struct {
	// Books is the number of catalog entries
	Books int64 `json:"books"`

	// Covers maps a cover side ("front", "back") to the number of books that have one stored
	Covers map[string]int64 `json:"covers"`

	// Timestamp when metrics were collected
	Timestamp time.Time `json:"timestamp"`
}

// Collector defines the interface for collecting catalog metrics.
type Collector interface {
	// Collect gathers current metrics from the store
	Collect(ctx context.Context) (Metrics, error)
}
