package models

import "time"

// Enrichment is display metadata scraped from a tracked query's source URL.
// Entries are cached per guild and never expire.
type Enrichment struct {
	GuildID      int64     `db:"guild_id"`
	URL          string    `db:"url"`
	Title        *string   `db:"title"`
	ImageURL     *string   `db:"image_url"`
	CanonicalURL *string   `db:"canonical_url"`
	FetchedAt    time.Time `db:"fetched_at"`
}
