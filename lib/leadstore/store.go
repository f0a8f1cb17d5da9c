// Package leadstore persists chart snapshots, resolved artists and
// derived lead metrics in a single sqlite database.
package leadstore

import (
	"context"
	"database/sql"
	"errors"
	"leadharvest-backend/lib/leadstore/db"
	"leadharvest-backend/lib/timezone"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// insertBatchSize caps how many chart entries go into one transaction so a
// failed page does not roll back a whole backfill run.
const insertBatchSize = 150

type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

func (s Store) Queries() *db.Queries {
	return s.qry
}

func (s Store) DB() *sql.DB {
	return s.db
}

type CatalogEntry struct {
	Platform    string
	ChartFamily string
	GenreSlug   string
	GenreName   string
	Url         string
	Title       string
}

// UpsertCatalog records every chart seen during a discovery pass. Existing
// rows keep their discovered_at and are marked active again.
func (s Store) UpsertCatalog(ctx context.Context, entries []CatalogEntry, seenAt string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	for _, e := range entries {
		err := txqry.UpsertCatalogEntry(ctx, db.UpsertCatalogEntryParams{
			Platform:     e.Platform,
			ChartFamily:  e.ChartFamily,
			GenreSlug:    e.GenreSlug,
			GenreName:    e.GenreName,
			Url:          e.Url,
			Title:        e.Title,
			DiscoveredAt: seenAt,
			LastSeenAt:   seenAt,
		})
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetOrCreateChart returns the catalog row for entry.Url, inserting it
// first when the url is new.
func (s Store) GetOrCreateChart(ctx context.Context, entry CatalogEntry) (db.ChartsCatalog, error) {
	chart, err := s.qry.GetCatalogEntryByURL(ctx, entry.Url)
	if err == nil {
		return chart, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return db.ChartsCatalog{}, err
	}
	now := timezone.Date(timezone.Now())
	if err := s.UpsertCatalog(ctx, []CatalogEntry{entry}, now); err != nil {
		return db.ChartsCatalog{}, err
	}
	return s.qry.GetCatalogEntryByURL(ctx, entry.Url)
}

// DeactivateMissing flips is_active off for catalog rows of the platform
// that did not show up in the latest discovery pass. Rows are never deleted,
// so historical chart_entries keep a valid chart_id.
func (s Store) DeactivateMissing(ctx context.Context, platform string, seenUrls []string) (int64, error) {
	return s.qry.DeactivateUnseen(ctx, db.DeactivateUnseenParams{
		Platform: platform,
		SeenUrls: seenUrls,
	})
}

type InsertResult struct {
	Inserted int64
	Skipped  int64
}

// InsertEntries writes chart entries in batches using INSERT OR IGNORE.
// Re-ingesting the same page is a no-op and counts as skipped.
func (s Store) InsertEntries(ctx context.Context, entries []db.InsertChartEntryParams) (InsertResult, error) {
	var result InsertResult
	for start := 0; start < len(entries); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(entries) {
			end = len(entries)
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return result, err
		}
		txqry := s.qry.WithTx(tx)

		for _, e := range entries[start:end] {
			affected, err := txqry.InsertChartEntry(ctx, e)
			if err != nil {
				tx.Rollback()
				return result, err
			}
			if affected == 0 {
				result.Skipped++
			} else {
				result.Inserted++
			}
		}
		if err := tx.Commit(); err != nil {
			return result, err
		}
	}
	return result, nil
}

// ReplaceMetrics swaps the whole artist_metrics table for a freshly computed
// set inside one transaction.
func (s Store) ReplaceMetrics(ctx context.Context, metrics []db.UpsertArtistMetricsParams) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	if err := txqry.DeleteArtistMetrics(ctx); err != nil {
		return err
	}
	for _, m := range metrics {
		if err := txqry.UpsertArtistMetrics(ctx, m); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ReplaceScores swaps the whole lead_scores table in one transaction.
func (s Store) ReplaceScores(ctx context.Context, scores []db.UpsertLeadScoreParams) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	if err := txqry.DeleteLeadScores(ctx); err != nil {
		return err
	}
	for _, sc := range scores {
		if err := txqry.UpsertLeadScore(ctx, sc); err != nil {
			return err
		}
	}
	return tx.Commit()
}
