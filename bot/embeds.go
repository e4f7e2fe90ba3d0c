package bot

import (
	"fmt"

	"feedbot/dispatch"
	"feedbot/feed"
	"feedbot/models"
)

const (
	richEmbedColor  = 14533256
	minorEmbedColor = 9299132
	musicEmbedColor = 14978504
)

// renderRichEmbed builds the full tracked-query embed: parsed release
// attributes plus thumbnail/link from the query's enrichment.
func renderRichEmbed(item feed.Item, enrichment *models.Enrichment) *dispatch.Message {
	title := item.Title
	if item.ShowName != "" {
		title = item.ShowName
	}
	if enrichment != nil && enrichment.Title != nil {
		title = *enrichment.Title
	}

	msg := &dispatch.Message{
		Title: title,
		Color: richEmbedColor,
	}

	group := item.Group
	if group == "" {
		group = "Unknown group"
	}
	msg.AddField("Group:", group, false)

	episodeName, episodeValue := formatEpisodes(item)
	msg.AddField(episodeName, episodeValue, false)

	msg.AddField("Statistics:", formatStatistics(item), false)

	resolution := item.Resolution
	if resolution == "" {
		resolution = "Unknown"
	}
	msg.AddField("Release:", resolution, true)
	msg.AddField("Link:", item.Link, true)

	msg.Footer = "Original title: " + item.Title

	if enrichment != nil {
		if enrichment.ImageURL != nil {
			msg.Thumbnail = *enrichment.ImageURL
		}
		if enrichment.CanonicalURL != nil {
			msg.URL = *enrichment.CanonicalURL
		}
	}

	return msg
}

// renderMinorEmbed builds the compact firehose embed: statistics and link only.
func renderMinorEmbed(item feed.Item, _ *models.Enrichment) *dispatch.Message {
	msg := &dispatch.Message{
		Title: item.Title,
		Color: minorEmbedColor,
	}

	msg.AddField("Statistics:", formatStatistics(item), false)
	msg.AddField("Link:", item.Link, false)

	return msg
}

// renderMusicEmbed builds the music tracker embed from the parsed
// artist/codec attributes.
func renderMusicEmbed(item feed.Item, _ *models.Enrichment) *dispatch.Message {
	msg := &dispatch.Message{
		Title: item.Name,
		Color: musicEmbedColor,
	}

	msg.AddField("Artist:", item.Artist, false)
	msg.AddField("Codec:", item.Codec, true)

	compression := item.Compression
	if compression == "" {
		compression = "Unknown"
	}
	msg.AddField("Compression:", compression, true)
	msg.AddField("Link:", item.Link, false)

	msg.Footer = "Original title: " + item.Title

	return msg
}

func formatStatistics(item feed.Item) string {
	return fmt.Sprintf("S: %s, L: %s, %s", item.Seeders, item.Leechers, item.Size)
}

func formatEpisodes(item feed.Item) (name, value string) {
	switch {
	case item.EpisodeSecondary != nil && item.EpisodeMain != nil:
		return "Episodes:", fmt.Sprintf("%d-%d", *item.EpisodeMain, *item.EpisodeSecondary)
	case item.EpisodeMain != nil:
		return "Episode:", fmt.Sprintf("%d", *item.EpisodeMain)
	default:
		return "Episode:", "Unknown"
	}
}
