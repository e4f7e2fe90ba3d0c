package repository

import (
	"context"
	"fmt"

	"feedbot/database"
	"feedbot/models"

	"github.com/jackc/pgx/v5"
)

// StreamSettingsRepository manages per-stream channel bindings, cursors and
// interval overrides. Each mutation touches a single column so handlers for
// different streams of the same guild can interleave safely.
type StreamSettingsRepository struct {
	q Queryable
}

// NewStreamSettingsRepository creates a new stream settings repository
func NewStreamSettingsRepository(db *database.DB) *StreamSettingsRepository {
	return &StreamSettingsRepository{q: db.Pool}
}

// GetOrCreate retrieves a guild's settings row for one stream, creating an
// empty row (no binding, no cursor, default interval) if absent.
func (r *StreamSettingsRepository) GetOrCreate(ctx context.Context, guildID int64, stream models.Stream) (*models.StreamSettings, error) {
	query := `
		SELECT guild_id, stream_type, channel_id, last_guid, interval_minutes
		FROM stream_settings
		WHERE guild_id = $1 AND stream_type = $2
	`

	var settings models.StreamSettings
	err := r.q.QueryRow(ctx, query, guildID, stream.String()).Scan(
		&settings.GuildID,
		&settings.Stream,
		&settings.ChannelID,
		&settings.LastGUID,
		&settings.IntervalMinutes,
	)

	if err == nil {
		return &settings, nil
	}

	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to get stream settings for guild %d stream %s: %w", guildID, stream, err)
	}

	insertQuery := `
		INSERT INTO stream_settings (guild_id, stream_type)
		VALUES ($1, $2)
		ON CONFLICT (guild_id, stream_type) DO UPDATE SET guild_id = EXCLUDED.guild_id
		RETURNING guild_id, stream_type, channel_id, last_guid, interval_minutes
	`

	err = r.q.QueryRow(ctx, insertQuery, guildID, stream.String()).Scan(
		&settings.GuildID,
		&settings.Stream,
		&settings.ChannelID,
		&settings.LastGUID,
		&settings.IntervalMinutes,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create stream settings for guild %d stream %s: %w", guildID, stream, err)
	}

	return &settings, nil
}

// SetChannel binds a destination channel for the stream (upsert).
func (r *StreamSettingsRepository) SetChannel(ctx context.Context, guildID int64, stream models.Stream, channelID int64) error {
	query := `
		INSERT INTO stream_settings (guild_id, stream_type, channel_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, stream_type) DO UPDATE SET channel_id = EXCLUDED.channel_id
	`

	if _, err := r.q.Exec(ctx, query, guildID, stream.String(), channelID); err != nil {
		return fmt.Errorf("failed to set channel for guild %d stream %s: %w", guildID, stream, err)
	}

	return nil
}

// SetInterval stores an interval override, rejecting values below the
// stream's minimum with a ValidationError.
func (r *StreamSettingsRepository) SetInterval(ctx context.Context, guildID int64, stream models.Stream, minutes int) error {
	if minutes < stream.MinimumInterval() {
		return models.NewValidationError(fmt.Sprintf("interval for %s must be at least %d minutes", stream, stream.MinimumInterval()))
	}

	query := `
		INSERT INTO stream_settings (guild_id, stream_type, interval_minutes)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, stream_type) DO UPDATE SET interval_minutes = EXCLUDED.interval_minutes
	`

	if _, err := r.q.Exec(ctx, query, guildID, stream.String(), minutes); err != nil {
		return fmt.Errorf("failed to set interval for guild %d stream %s: %w", guildID, stream, err)
	}

	return nil
}

// AdvanceCursor records the last delivered guid for the stream. Callers only
// invoke it with a guid taken from the current cycle's fetch, so the cursor
// never moves backwards relative to the feed.
func (r *StreamSettingsRepository) AdvanceCursor(ctx context.Context, guildID int64, stream models.Stream, guid string) error {
	query := `
		INSERT INTO stream_settings (guild_id, stream_type, last_guid)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, stream_type) DO UPDATE SET last_guid = EXCLUDED.last_guid
	`

	if _, err := r.q.Exec(ctx, query, guildID, stream.String(), guid); err != nil {
		return fmt.Errorf("failed to advance cursor for guild %d stream %s: %w", guildID, stream, err)
	}

	return nil
}
