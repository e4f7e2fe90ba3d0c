package repository

import (
	"context"
	"fmt"

	"feedbot/database"
	"feedbot/models"

	"github.com/jackc/pgx/v5"
)

// EnrichmentCacheRepository is the store-backed cache for scraped display
// metadata. Entries never expire for the lifetime of the store.
type EnrichmentCacheRepository struct {
	q Queryable
}

// NewEnrichmentCacheRepository creates a new enrichment cache repository
func NewEnrichmentCacheRepository(db *database.DB) *EnrichmentCacheRepository {
	return &EnrichmentCacheRepository{q: db.Pool}
}

// Get returns the cached enrichment for a URL, or nil on a cache miss.
func (r *EnrichmentCacheRepository) Get(ctx context.Context, guildID int64, url string) (*models.Enrichment, error) {
	query := `
		SELECT guild_id, url, title, image_url, canonical_url, fetched_at
		FROM enrichment_cache
		WHERE guild_id = $1 AND url = $2
	`

	var e models.Enrichment
	err := r.q.QueryRow(ctx, query, guildID, url).Scan(
		&e.GuildID,
		&e.URL,
		&e.Title,
		&e.ImageURL,
		&e.CanonicalURL,
		&e.FetchedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get enrichment for guild %d url %s: %w", guildID, url, err)
	}

	return &e, nil
}

// Put stores an enrichment entry, keeping the first write on conflict.
func (r *EnrichmentCacheRepository) Put(ctx context.Context, e *models.Enrichment) error {
	query := `
		INSERT INTO enrichment_cache (guild_id, url, title, image_url, canonical_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (guild_id, url) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, query, e.GuildID, e.URL, e.Title, e.ImageURL, e.CanonicalURL); err != nil {
		return fmt.Errorf("failed to put enrichment for guild %d url %s: %w", e.GuildID, e.URL, err)
	}

	return nil
}
