package repository

import (
	"context"
	"fmt"

	"feedbot/database"
	"feedbot/models"

	"github.com/jackc/pgx/v5"
)

// TrackedQueryRepository manages a guild's tracked search queries.
type TrackedQueryRepository struct {
	q Queryable
}

// NewTrackedQueryRepository creates a new tracked query repository
func NewTrackedQueryRepository(db *database.DB) *TrackedQueryRepository {
	return &TrackedQueryRepository{q: db.Pool}
}

// Add stores a new tracked query under an id already allocated from the
// guild's counter.
func (r *TrackedQueryRepository) Add(ctx context.Context, query *models.TrackedQuery) error {
	insertQuery := `
		INSERT INTO tracked_queries (guild_id, id, search, source_url, filter_pattern)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.q.Exec(ctx, insertQuery,
		query.GuildID,
		query.ID,
		query.Search,
		query.SourceURL,
		query.FilterPattern,
	)

	if err != nil {
		return fmt.Errorf("failed to add tracked query for guild %d: %w", query.GuildID, err)
	}

	return nil
}

// List returns the guild's tracked queries ordered by id.
func (r *TrackedQueryRepository) List(ctx context.Context, guildID int64) ([]*models.TrackedQuery, error) {
	query := `
		SELECT guild_id, id, search, source_url, filter_pattern
		FROM tracked_queries
		WHERE guild_id = $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracked queries for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var queries []*models.TrackedQuery
	for rows.Next() {
		var tq models.TrackedQuery
		if err := rows.Scan(&tq.GuildID, &tq.ID, &tq.Search, &tq.SourceURL, &tq.FilterPattern); err != nil {
			return nil, fmt.Errorf("failed to scan tracked query: %w", err)
		}
		queries = append(queries, &tq)
	}

	return queries, rows.Err()
}

// Get returns a single tracked query, or a NotFoundError.
func (r *TrackedQueryRepository) Get(ctx context.Context, guildID int64, id int) (*models.TrackedQuery, error) {
	query := `
		SELECT guild_id, id, search, source_url, filter_pattern
		FROM tracked_queries
		WHERE guild_id = $1 AND id = $2
	`

	var tq models.TrackedQuery
	err := r.q.QueryRow(ctx, query, guildID, id).Scan(&tq.GuildID, &tq.ID, &tq.Search, &tq.SourceURL, &tq.FilterPattern)
	if err == pgx.ErrNoRows {
		return nil, models.NewNotFoundError(fmt.Sprintf("no tracked query with id %d", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tracked query %d for guild %d: %w", id, guildID, err)
	}

	return &tq, nil
}

// Remove deletes a tracked query and nulls the query reference on delivered
// item records. The records themselves are kept and cursors are untouched.
func (r *TrackedQueryRepository) Remove(ctx context.Context, guildID int64, id int) error {
	deleteQuery := `
		DELETE FROM tracked_queries
		WHERE guild_id = $1 AND id = $2
	`

	result, err := r.q.Exec(ctx, deleteQuery, guildID, id)
	if err != nil {
		return fmt.Errorf("failed to remove tracked query %d for guild %d: %w", id, guildID, err)
	}

	if result.RowsAffected() == 0 {
		return models.NewNotFoundError(fmt.Sprintf("no tracked query with id %d", id))
	}

	nullQuery := `
		UPDATE delivered_items
		SET query_id = NULL
		WHERE guild_id = $1 AND query_id = $2
	`

	if _, err := r.q.Exec(ctx, nullQuery, guildID, id); err != nil {
		return fmt.Errorf("failed to null delivered item references for query %d: %w", id, err)
	}

	return nil
}
