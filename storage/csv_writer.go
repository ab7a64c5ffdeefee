package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"ramen-dashboard/models"
)

var csvHeader = []string{
	"run_id", "fetched_at", "position", "id", "name", "Address",
	"rating", "review_count", "latitude", "longitude", "prices", "Popularity",
}

// CSVWriter writes enriched listings to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends one row per listing, in fetch order.
func (c *CSVWriter) Write(_ context.Context, run *models.Run) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	runID := run.ID.String()
	fetchedAt := run.FetchedAt.UTC().Format(time.RFC3339)
	for _, l := range run.Listings {
		row := []string{
			runID,
			fetchedAt,
			strconv.Itoa(l.Position),
			l.YelpID,
			l.Name,
			l.Address,
			formatFloat(l.Rating),
			strconv.Itoa(l.ReviewCount),
			formatFloat(l.Latitude),
			formatFloat(l.Longitude),
			formatFloat(l.Price),
			formatFloat(l.Popularity),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
