// Package store persists classified investors and run history in a local
// SQLite catalog.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/seenimoa/edgarintel/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id              TEXT PRIMARY KEY,
	started_at      TIMESTAMP NOT NULL,
	finished_at     TIMESTAMP,
	registry_leads  INTEGER NOT NULL DEFAULT 0,
	feed_leads      INTEGER NOT NULL DEFAULT 0,
	duplicates      INTEGER NOT NULL DEFAULT 0,
	enriched        INTEGER NOT NULL DEFAULT 0,
	enrich_failures INTEGER NOT NULL DEFAULT 0,
	parse_skips     INTEGER NOT NULL DEFAULT 0,
	classified      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS investors (
	cik             TEXT PRIMARY KEY,
	entity_name     TEXT NOT NULL,
	category        TEXT NOT NULL,
	aum             REAL NOT NULL DEFAULT 0,
	filing_type     TEXT NOT NULL,
	filing_date     TEXT NOT NULL DEFAULT '',
	ticker          TEXT NOT NULL DEFAULT '',
	city            TEXT NOT NULL DEFAULT '',
	state           TEXT NOT NULL DEFAULT '',
	phone           TEXT NOT NULL DEFAULT '',
	sic             TEXT NOT NULL DEFAULT '',
	sic_description TEXT NOT NULL DEFAULT '',
	source_url      TEXT NOT NULL DEFAULT '',
	run_id          TEXT NOT NULL,
	updated_at      TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_investors_category ON investors(category);
`

const upsertInvestorSQL = `
INSERT INTO investors (
	cik, entity_name, category, aum, filing_type, filing_date, ticker,
	city, state, phone, sic, sic_description, source_url, run_id, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(cik) DO UPDATE SET
	entity_name     = excluded.entity_name,
	category        = excluded.category,
	aum             = excluded.aum,
	filing_type     = excluded.filing_type,
	filing_date     = excluded.filing_date,
	ticker          = excluded.ticker,
	city            = excluded.city,
	state           = excluded.state,
	phone           = excluded.phone,
	sic             = excluded.sic,
	sic_description = excluded.sic_description,
	source_url      = excluded.source_url,
	run_id          = excluded.run_id,
	updated_at      = excluded.updated_at`

// Store is the on-disk catalog.
type Store struct {
	db *sql.DB
}

// Run is one recorded pipeline run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time // zero until the run is finished
	Stats      models.ScrapeStats
}

// Open opens the catalog at path, creating the file and schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	// SQLite allows one writer at a time; a single pooled connection keeps
	// concurrent callers from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing catalog schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun records the start of a run.
func (s *Store) SaveRun(ctx context.Context, id string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		id, startedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", id, err)
	}
	return nil
}

// FinishRun stamps the run's finish time and stat counters.
func (s *Store) FinishRun(ctx context.Context, id string, finishedAt time.Time, stats models.ScrapeStats) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET
			finished_at = ?, registry_leads = ?, feed_leads = ?, duplicates = ?,
			enriched = ?, enrich_failures = ?, parse_skips = ?, classified = ?
		 WHERE id = ?`,
		finishedAt.UTC(), stats.RegistryLeads, stats.FeedLeads, stats.Duplicates,
		stats.Enriched, stats.EnrichFailures, stats.ParseSkips, stats.Classified,
		id,
	)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finishing run %s: unknown run id", id)
	}
	return nil
}

// UpsertInvestors writes investors in one transaction, replacing any
// previous row with the same CIK. Records without a CIK are skipped.
func (s *Store) UpsertInvestors(ctx context.Context, runID string, investors []models.ClassifiedInvestor) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning upsert: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i := range investors {
		inv := &investors[i]
		if inv.CIK == "" {
			continue
		}
		filed := ""
		if !inv.FilingDate.IsZero() {
			filed = inv.FilingDate.Format("2006-01-02")
		}
		if _, err := tx.ExecContext(ctx, upsertInvestorSQL,
			inv.CIK, inv.EntityName, string(inv.Category), inv.AUM,
			string(inv.FilingType), filed, inv.Ticker, inv.City, inv.State,
			inv.Phone, inv.SIC, inv.SICDescription, inv.SourceURL, runID, now,
		); err != nil {
			return fmt.Errorf("upserting investor %s: %w", inv.CIK, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upsert: %w", err)
	}
	return nil
}

// Investors returns catalog rows ordered by entity name. limit <= 0
// returns everything.
func (s *Store) Investors(ctx context.Context, limit int) ([]models.ClassifiedInvestor, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT cik, entity_name, category, aum, filing_type, filing_date,
			ticker, city, state, phone, sic, sic_description, source_url
		 FROM investors ORDER BY entity_name LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying investors: %w", err)
	}
	defer rows.Close()

	var investors []models.ClassifiedInvestor
	for rows.Next() {
		var inv models.ClassifiedInvestor
		var category, filingType, filed string
		if err := rows.Scan(&inv.CIK, &inv.EntityName, &category, &inv.AUM,
			&filingType, &filed, &inv.Ticker, &inv.City, &inv.State,
			&inv.Phone, &inv.SIC, &inv.SICDescription, &inv.SourceURL); err != nil {
			return nil, fmt.Errorf("scanning investor row: %w", err)
		}
		inv.Category = models.Category(category)
		inv.FilingType = models.FilingType(filingType)
		if filed != "" {
			if t, err := time.Parse("2006-01-02", filed); err == nil {
				inv.FilingDate = t
			}
		}
		inv.Seq = len(investors)
		investors = append(investors, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating investors: %w", err)
	}
	return investors, nil
}

// CountByCategory returns the number of catalog rows per category.
func (s *Store) CountByCategory(ctx context.Context) (map[models.Category]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM investors GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("counting by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Category]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("scanning category count: %w", err)
		}
		counts[models.Category(category)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category counts: %w", err)
	}
	return counts, nil
}

// LastRun returns the most recently started run, or nil when the catalog
// has none.
func (s *Store) LastRun(ctx context.Context) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, registry_leads, feed_leads,
			duplicates, enriched, enrich_failures, parse_skips, classified
		 FROM runs ORDER BY started_at DESC LIMIT 1`)

	var run Run
	var finished sql.NullTime
	err := row.Scan(&run.ID, &run.StartedAt, &finished,
		&run.Stats.RegistryLeads, &run.Stats.FeedLeads, &run.Stats.Duplicates,
		&run.Stats.Enriched, &run.Stats.EnrichFailures, &run.Stats.ParseSkips,
		&run.Stats.Classified)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying last run: %w", err)
	}
	if finished.Valid {
		run.FinishedAt = finished.Time
	}
	return &run, nil
}
