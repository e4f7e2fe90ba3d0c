package models

// TrackedQuery is a user-defined search followed on the updates stream.
// IDs are assigned from the guild's persisted counter and never reused.
type TrackedQuery struct {
	GuildID       int64   `db:"guild_id"`
	ID            int     `db:"id"`
	Search        string  `db:"search"`
	SourceURL     string  `db:"source_url"`
	FilterPattern *string `db:"filter_pattern"`
}
