package models

import "fmt"

// Stream identifies one of the independent feed categories a guild can configure.
type Stream string

const (
	// StreamUpdates is the per-query tracked search stream.
	StreamUpdates Stream = "updates"
	// StreamAll is the full torrent-index firehose.
	StreamAll Stream = "all"
	// StreamMusicAll is the music-tracker firehose.
	StreamMusicAll Stream = "music_all"
)

// AllStreams lists every stream in scheduling order.
var AllStreams = []Stream{StreamUpdates, StreamAll, StreamMusicAll}

// minimumIntervalMinutes is the floor enforced when a guild overrides a
// stream's polling interval. Defaults equal the minimums.
var minimumIntervalMinutes = map[Stream]int{
	StreamUpdates:  30,
	StreamAll:      30,
	StreamMusicAll: 30,
}

// ParseStream validates a user-supplied stream name.
func ParseStream(s string) (Stream, error) {
	switch Stream(s) {
	case StreamUpdates, StreamAll, StreamMusicAll:
		return Stream(s), nil
	}
	return "", NewValidationError(fmt.Sprintf("unknown stream type %q, must be one of %s, %s, %s", s, StreamUpdates, StreamAll, StreamMusicAll))
}

// MinimumInterval returns the smallest allowed polling interval in minutes.
func (s Stream) MinimumInterval() int {
	return minimumIntervalMinutes[s]
}

// DefaultInterval returns the polling interval in minutes used when a guild
// has no stored override.
func (s Stream) DefaultInterval() int {
	return minimumIntervalMinutes[s]
}

func (s Stream) String() string {
	return string(s)
}
