package models

import "time"

// DeliveredItem records an item already posted for the tracked-query stream.
// QueryID is nulled when its query is removed; the record itself stays.
type DeliveredItem struct {
	GuildID  int64     `db:"guild_id"`
	GUID     string    `db:"guid"`
	QueryID  *int      `db:"query_id"`
	Title    string    `db:"title"`
	PostedAt time.Time `db:"posted_at"`
}
