package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/marcelsud/book-manager/book"
)

// CatalogCollector implements Collector on top of a book.Reader
type CatalogCollector struct {
	reader book.Reader
	now    func() time.Time
}

// NewCatalogCollector creates a collector reading from the given store
func NewCatalogCollector(reader book.Reader) *CatalogCollector {
	return &CatalogCollector{
		reader: reader,
		now:    time.Now,
	}
}

// Collect reads the catalog counters from the store
func (c *CatalogCollector) Collect(ctx context.Context) (Metrics, error) {
	stats, err := c.reader.Stats(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting catalog stats: %w", err)
	}
	return Metrics{
		Books: stats.Total,
		Covers: map[string]int64{
			"front": stats.WithFront,
			"back":  stats.WithBack,
		},
		Timestamp: c.now(),
	}, nil
}
