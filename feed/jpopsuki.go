package feed

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"feedbot/models"

	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"
)

// Music tracker titles look like:
//
//	Artist - Album [] - FLAC / Lossless / WEB
var musicTitleRegex = regexp.MustCompile(`(.+?) - (.+?) \[.*?] - (.+?) / (.*?) / (.+)`)

// MusicProvider fetches the music tracker's notification feed. The feed URL
// carries the account's auth parameters and comes from configuration.
type MusicProvider struct {
	feedURL string
	parser  *gofeed.Parser
}

// NewMusicProvider creates a provider for a complete, pre-authenticated feed URL.
func NewMusicProvider(feedURL string) *MusicProvider {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: 30 * time.Second}

	return &MusicProvider{
		feedURL: feedURL,
		parser:  parser,
	}
}

// Fetch returns the tracker's notification items oldest→newest. The query
// argument is ignored: the tracker feed is account-scoped, not searchable.
func (p *MusicProvider) Fetch(ctx context.Context, query string) ([]Item, error) {
	parsed, err := p.parser.ParseURLWithContext(p.feedURL, ctx)
	if err != nil {
		return nil, models.NewFetchError("music", err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range lo.Reverse(parsed.Items) {
		item := Item{
			GUID:  entry.GUID,
			Title: entry.Title,
			Link:  entry.Link,
		}

		if match := musicTitleRegex.FindStringSubmatch(entry.Title); match != nil {
			item.Artist = match[1]
			item.Name = match[2]
			item.Codec = match[3]
			item.Compression = match[4]
			item.Media = match[5]
		} else {
			item.Name = entry.Title
		}

		items = append(items, item)
	}

	return items, nil
}
