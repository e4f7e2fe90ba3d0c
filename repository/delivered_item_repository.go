package repository

import (
	"context"
	"fmt"

	"feedbot/database"
	"feedbot/models"
)

// DeliveredItemRepository records items already posted on the tracked-query
// stream so overlapping searches never repost the same release.
type DeliveredItemRepository struct {
	q Queryable
}

// NewDeliveredItemRepository creates a new delivered item repository
func NewDeliveredItemRepository(db *database.DB) *DeliveredItemRepository {
	return &DeliveredItemRepository{q: db.Pool}
}

// WasDelivered reports whether the guid has already been posted for this
// guild. Membership is by guid alone: several queries can match the same
// release and it should only be posted once.
func (r *DeliveredItemRepository) WasDelivered(ctx context.Context, guildID int64, guid string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM delivered_items
			WHERE guild_id = $1 AND guid = $2
		)
	`

	var exists bool
	if err := r.q.QueryRow(ctx, query, guildID, guid).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check delivered item %s for guild %d: %w", guid, guildID, err)
	}

	return exists, nil
}

// Record stores a delivered item. Re-recording a guid keeps the original row.
func (r *DeliveredItemRepository) Record(ctx context.Context, item *models.DeliveredItem) error {
	query := `
		INSERT INTO delivered_items (guild_id, guid, query_id, title)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (guild_id, guid) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, query, item.GuildID, item.GUID, item.QueryID, item.Title); err != nil {
		return fmt.Errorf("failed to record delivered item %s for guild %d: %w", item.GUID, item.GuildID, err)
	}

	return nil
}

// ListByQuery returns the delivery records referencing a query id, newest first.
func (r *DeliveredItemRepository) ListByQuery(ctx context.Context, guildID int64, queryID int) ([]*models.DeliveredItem, error) {
	query := `
		SELECT guild_id, guid, query_id, title, posted_at
		FROM delivered_items
		WHERE guild_id = $1 AND query_id = $2
		ORDER BY posted_at DESC
	`

	rows, err := r.q.Query(ctx, query, guildID, queryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list delivered items for guild %d query %d: %w", guildID, queryID, err)
	}
	defer rows.Close()

	var items []*models.DeliveredItem
	for rows.Next() {
		var item models.DeliveredItem
		if err := rows.Scan(&item.GuildID, &item.GUID, &item.QueryID, &item.Title, &item.PostedAt); err != nil {
			return nil, fmt.Errorf("failed to scan delivered item: %w", err)
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}
