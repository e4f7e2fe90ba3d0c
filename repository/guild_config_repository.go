package repository

import (
	"context"
	"fmt"

	"feedbot/database"
	"feedbot/models"

	"github.com/jackc/pgx/v5"
)

// GuildConfigRepository manages the per-guild root document and allow-list.
type GuildConfigRepository struct {
	q Queryable
}

// NewGuildConfigRepository creates a new guild config repository
func NewGuildConfigRepository(db *database.DB) *GuildConfigRepository {
	return &GuildConfigRepository{q: db.Pool}
}

// GetOrCreateGuildConfig retrieves a guild's config row or creates a default one.
func (r *GuildConfigRepository) GetOrCreateGuildConfig(ctx context.Context, guildID int64) (*models.GuildConfig, error) {
	query := `
		SELECT guild_id, last_query_id, created_at
		FROM guild_configs
		WHERE guild_id = $1
	`

	var config models.GuildConfig
	err := r.q.QueryRow(ctx, query, guildID).Scan(
		&config.GuildID,
		&config.LastQueryID,
		&config.CreatedAt,
	)

	if err == nil {
		return &config, nil
	}

	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to get guild config for guild %d: %w", guildID, err)
	}

	insertQuery := `
		INSERT INTO guild_configs (guild_id)
		VALUES ($1)
		ON CONFLICT (guild_id) DO UPDATE SET guild_id = EXCLUDED.guild_id
		RETURNING guild_id, last_query_id, created_at
	`

	err = r.q.QueryRow(ctx, insertQuery, guildID).Scan(
		&config.GuildID,
		&config.LastQueryID,
		&config.CreatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create guild config for guild %d: %w", guildID, err)
	}

	return &config, nil
}

// GetAllowedUsers returns the guild's allow-list. An empty list means the
// guild is still unclaimed and the next caller is auto-admitted.
func (r *GuildConfigRepository) GetAllowedUsers(ctx context.Context, guildID int64) ([]int64, error) {
	query := `
		SELECT user_id
		FROM guild_allowed_users
		WHERE guild_id = $1
		ORDER BY user_id
	`

	rows, err := r.q.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get allowed users for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var users []int64
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan allowed user: %w", err)
		}
		users = append(users, userID)
	}

	return users, rows.Err()
}

// AddAllowedUser adds a user to the allow-list. Adding an already-allowed
// user is a no-op.
func (r *GuildConfigRepository) AddAllowedUser(ctx context.Context, guildID, userID int64) error {
	query := `
		INSERT INTO guild_allowed_users (guild_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (guild_id, user_id) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, query, guildID, userID); err != nil {
		return fmt.Errorf("failed to add allowed user %d for guild %d: %w", userID, guildID, err)
	}

	return nil
}

// NextQueryID increments and returns the guild's tracked-query counter.
// The counter only ever grows, so ids are never reused after deletion.
func (r *GuildConfigRepository) NextQueryID(ctx context.Context, guildID int64) (int, error) {
	query := `
		UPDATE guild_configs
		SET last_query_id = last_query_id + 1
		WHERE guild_id = $1
		RETURNING last_query_id
	`

	var id int
	if err := r.q.QueryRow(ctx, query, guildID).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to allocate query id for guild %d: %w", guildID, err)
	}

	return id, nil
}
