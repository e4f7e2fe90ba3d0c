package service

import (
	"context"

	"feedbot/dispatch"
	"feedbot/models"
)

// GuildConfigRepository is the subset of guild-config persistence the
// services need.
type GuildConfigRepository interface {
	GetOrCreateGuildConfig(ctx context.Context, guildID int64) (*models.GuildConfig, error)
	GetAllowedUsers(ctx context.Context, guildID int64) ([]int64, error)
	AddAllowedUser(ctx context.Context, guildID, userID int64) error
	NextQueryID(ctx context.Context, guildID int64) (int, error)
}

// TrackedQueryRepository manages a guild's tracked queries.
type TrackedQueryRepository interface {
	Add(ctx context.Context, query *models.TrackedQuery) error
	List(ctx context.Context, guildID int64) ([]*models.TrackedQuery, error)
	Get(ctx context.Context, guildID int64, id int) (*models.TrackedQuery, error)
	Remove(ctx context.Context, guildID int64, id int) error
}

// StreamSettingsRepository manages bindings, cursors and interval overrides.
type StreamSettingsRepository interface {
	GetOrCreate(ctx context.Context, guildID int64, stream models.Stream) (*models.StreamSettings, error)
	SetChannel(ctx context.Context, guildID int64, stream models.Stream, channelID int64) error
	SetInterval(ctx context.Context, guildID int64, stream models.Stream, minutes int) error
	AdvanceCursor(ctx context.Context, guildID int64, stream models.Stream, guid string) error
}

// DeliveredItemRepository records posted items for the tracked-query stream.
type DeliveredItemRepository interface {
	WasDelivered(ctx context.Context, guildID int64, guid string) (bool, error)
	Record(ctx context.Context, item *models.DeliveredItem) error
}

// Enricher resolves cached display metadata for a source URL.
type Enricher interface {
	Lookup(ctx context.Context, guildID int64, url string) (*models.Enrichment, error)
}

// Poster delivers one rendered message, retrying per the dispatch policy.
type Poster interface {
	Post(ctx context.Context, channelID int64, msg *dispatch.Message) error
}
