package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"land_alert/models"
)

// PostgresStore archives listings that made it through every gate. The
// archive survives restarts, unlike the dedup store, and exists for
// history, not for deduplication.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.MaxConns = 4
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS notified_listings (
		fingerprint TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		source TEXT,
		land_m2 INTEGER,
		price_eur INTEGER,
		area_m2 INTEGER,
		message TEXT,
		first_notified_at TIMESTAMPTZ NOT NULL,
		last_notified_at TIMESTAMPTZ NOT NULL,
		times_notified INTEGER NOT NULL DEFAULT 1
	)`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// ArchiveNotified upserts by fingerprint: a re-notification (after the
// dedup TTL lapsed) bumps the counter instead of duplicating the row.
func (s *PostgresStore) ArchiveNotified(ctx context.Context, rec *models.NotifiedListing) error {
	query := `
		INSERT INTO notified_listings (
			fingerprint, url, source, land_m2, price_eur, area_m2, message,
			first_notified_at, last_notified_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (fingerprint) DO UPDATE SET
			land_m2 = COALESCE(EXCLUDED.land_m2, notified_listings.land_m2),
			price_eur = COALESCE(EXCLUDED.price_eur, notified_listings.price_eur),
			area_m2 = COALESCE(EXCLUDED.area_m2, notified_listings.area_m2),
			message = EXCLUDED.message,
			last_notified_at = EXCLUDED.last_notified_at,
			times_notified = notified_listings.times_notified + 1`

	_, err := s.pool.Exec(ctx, query,
		rec.Fingerprint, rec.URL, rec.Source,
		rec.LandM2, rec.PriceEUR, rec.AreaM2,
		rec.Message, rec.NotifiedAt,
	)
	if err != nil {
		return fmt.Errorf("archive notified listing: %w", err)
	}
	return nil
}
