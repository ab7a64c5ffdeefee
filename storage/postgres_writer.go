package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"ramen-dashboard/models"
	"ramen-dashboard/utils"
)

const listingColumns = 12

// PostgresWriter persists enriched runs to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(ctx context.Context, dsn string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: 5, BaseDelay: time.Second, Logger: logger}
	if err := retry.Do(ctx, "postgres ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate(ctx context.Context) error {
	_, err := pw.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS ramen_listings (
			run_id       UUID          NOT NULL,
			fetched_at   TIMESTAMPTZ   NOT NULL,
			position     INTEGER       NOT NULL,
			yelp_id      TEXT          NOT NULL DEFAULT '',
			name         TEXT          NOT NULL,
			address      TEXT          NOT NULL,
			rating       NUMERIC(3,1)  NOT NULL,
			review_count INTEGER       NOT NULL,
			latitude     DOUBLE PRECISION NOT NULL,
			longitude    DOUBLE PRECISION NOT NULL,
			price        NUMERIC(10,2) NOT NULL,
			popularity   NUMERIC(10,2) NOT NULL,
			PRIMARY KEY (run_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_ramen_listings_fetched_at ON ramen_listings(fetched_at);
		CREATE INDEX IF NOT EXISTS idx_ramen_listings_popularity ON ramen_listings(popularity);
	`)
	return err
}

// Write batch-inserts every listing of run. Re-writing the same run is a no-op.
func (pw *PostgresWriter) Write(ctx context.Context, run *models.Run) error {
	if len(run.Listings) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(run.Listings); i += batchSize {
		end := i + batchSize
		if end > len(run.Listings) {
			end = len(run.Listings)
		}
		query, args := insertBatchQuery(run, run.Listings[i:end])
		if _, err := pw.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("postgres: insert batch: %w", err)
		}
	}
	return nil
}

func insertBatchQuery(run *models.Run, batch []*models.Listing) (string, []interface{}) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*listingColumns)

	for idx, l := range batch {
		base := idx * listingColumns
		placeholders := make([]string, listingColumns)
		for c := range placeholders {
			placeholders[c] = fmt.Sprintf("$%d", base+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			run.ID.String(), run.FetchedAt, l.Position, l.YelpID, l.Name, l.Address,
			l.Rating, l.ReviewCount, l.Latitude, l.Longitude, l.Price, l.Popularity)
	}

	query := fmt.Sprintf(`
		INSERT INTO ramen_listings (run_id, fetched_at, position, yelp_id, name, address,
			rating, review_count, latitude, longitude, price, popularity)
		VALUES %s
		ON CONFLICT (run_id, position) DO NOTHING
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
