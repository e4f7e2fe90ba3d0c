package feed

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"feedbot/models"

	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"
)

// NyaaProvider fetches the torrent index RSS feed. Results arrive
// newest-first on the wire and are reversed so callers always see
// oldest→newest.
type NyaaProvider struct {
	baseURL string
	parser  *gofeed.Parser
}

// NewNyaaProvider creates a provider against the given base URL
// (e.g. https://nyaa.si/).
func NewNyaaProvider(baseURL string) *NyaaProvider {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: 30 * time.Second}

	return &NyaaProvider{
		baseURL: baseURL,
		parser:  parser,
	}
}

// Fetch runs a search against the index, or the full firehose when query is
// empty. The f=0 c=1_2 parameters select untrusted+trusted anime torrents,
// matching the feed the bot has always followed.
func (p *NyaaProvider) Fetch(ctx context.Context, query string) ([]Item, error) {
	params := url.Values{}
	params.Set("page", "rss")
	params.Set("q", query)
	params.Set("f", "0")
	params.Set("c", "1_2")

	feedURL := p.baseURL + "?" + params.Encode()

	parsed, err := p.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, models.NewFetchError("nyaa", err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range lo.Reverse(parsed.Items) {
		item := Item{
			GUID:      entry.GUID,
			Title:     entry.Title,
			Link:      entry.Link,
			Size:      nyaaExtension(entry, "size"),
			Seeders:   nyaaExtension(entry, "seeders"),
			Leechers:  nyaaExtension(entry, "leechers"),
			Downloads: nyaaExtension(entry, "downloads"),
		}

		release := ParseReleaseTitle(entry.Title)
		item.Group = release.Group
		item.Resolution = release.Resolution
		item.ShowName = release.ShowName
		item.EpisodeMain = release.EpisodeMain
		item.EpisodeSecondary = release.EpisodeSecondary

		items = append(items, item)
	}

	return items, nil
}

// nyaaExtension reads one of the nyaa:* RSS extension fields.
func nyaaExtension(entry *gofeed.Item, name string) string {
	values, ok := entry.Extensions["nyaa"][name]
	if !ok || len(values) == 0 {
		return ""
	}
	return values[0].Value
}
