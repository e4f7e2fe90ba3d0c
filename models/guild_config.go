package models

import "time"

// GuildConfig is the per-guild root document. The tracked-query counter lives
// here so query ids stay monotonic even after deletions.
type GuildConfig struct {
	GuildID     int64     `db:"guild_id"`
	LastQueryID int       `db:"last_query_id"`
	CreatedAt   time.Time `db:"created_at"`
}

// StreamSettings holds one guild's state for a single stream: the channel
// binding, the last-delivered cursor and an optional interval override.
// Each field is updated independently; concurrent handlers for different
// streams never touch the same row.
type StreamSettings struct {
	GuildID         int64   `db:"guild_id"`
	Stream          Stream  `db:"stream_type"`
	ChannelID       *int64  `db:"channel_id"`
	LastGUID        *string `db:"last_guid"`
	IntervalMinutes *int    `db:"interval_minutes"`
}

// HasChannel reports whether a destination channel is bound.
func (s *StreamSettings) HasChannel() bool {
	return s.ChannelID != nil && *s.ChannelID > 0
}

// EffectiveInterval returns the stored override, or the stream default.
func (s *StreamSettings) EffectiveInterval() int {
	if s.IntervalMinutes != nil {
		return *s.IntervalMinutes
	}
	return s.Stream.DefaultInterval()
}
