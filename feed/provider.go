package feed

import "context"

// Item is a single entry from a feed source, oldest→newest within a fetch.
// GUID is unique per source and is what cursors and dedup records key on.
type Item struct {
	GUID  string
	Title string
	Link  string

	// Torrent index statistics
	Size      string
	Seeders   string
	Leechers  string
	Downloads string

	// Parsed release attributes (torrent index)
	Group            string
	Resolution       string
	ShowName         string
	EpisodeMain      *int
	EpisodeSecondary *int

	// Parsed release attributes (music tracker)
	Artist      string
	Name        string
	Codec       string
	Compression string
	Media       string
}

// Provider produces an ordered sequence of feed items for a query. The empty
// query means the source's unfiltered firehose. Transport and parse failures
// are reported as *models.FetchError; callers must not advance cursors on error.
type Provider interface {
	Fetch(ctx context.Context, query string) ([]Item, error)
}
