package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"feedbot/dispatch"
	"feedbot/feed"
	"feedbot/models"

	log "github.com/sirupsen/logrus"
)

// RenderFunc turns a feed item (plus optional enrichment) into a
// channel-ready message.
type RenderFunc func(item feed.Item, enrichment *models.Enrichment) *dispatch.Message

// PollService runs one guild's poll cycles: fetch, delta, dispatch in order,
// then advance the cursor to the last confirmed delivery. A cycle failure is
// terminal only to that cycle; the next firing retries naturally.
type PollService struct {
	guildID   int64
	streams   StreamSettingsRepository
	queries   TrackedQueryRepository
	delivered DeliveredItemRepository
	enricher  Enricher
	poster    Poster
}

// NewPollService creates a poll service scoped to one guild.
func NewPollService(
	guildID int64,
	streams StreamSettingsRepository,
	queries TrackedQueryRepository,
	delivered DeliveredItemRepository,
	enricher Enricher,
	poster Poster,
) *PollService {
	return &PollService{
		guildID:   guildID,
		streams:   streams,
		queries:   queries,
		delivered: delivered,
		enricher:  enricher,
		poster:    poster,
	}
}

// RunFirehoseCycle polls a cursor-tracked stream (all or music_all): fetch,
// compute the delta past the stored cursor, post oldest→newest. The cursor
// ends at the last successfully delivered guid — on a delivery failure the
// rest of the batch is abandoned and re-attempted next cycle.
func (s *PollService) RunFirehoseCycle(ctx context.Context, stream models.Stream, provider feed.Provider, render RenderFunc) error {
	settings, err := s.streams.GetOrCreate(ctx, s.guildID, stream)
	if err != nil {
		return err
	}

	if !settings.HasChannel() {
		log.Warnf("No valid channel target was found for guild %d for stream %s", s.guildID, stream)
		return nil
	}

	items, err := provider.Fetch(ctx, "")
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	delta := DeltaAfter(items, settings.LastGUID)
	if len(delta) == 0 {
		return nil
	}

	log.Infof("Results found for guild %d stream %s: %d", s.guildID, stream, len(delta))

	var lastPosted *string
	for i := range delta {
		item := delta[i]
		if err := s.poster.Post(ctx, *settings.ChannelID, render(item, nil)); err != nil {
			if lastPosted != nil {
				if cursorErr := s.streams.AdvanceCursor(ctx, s.guildID, stream, *lastPosted); cursorErr != nil {
					return errors.Join(err, cursorErr)
				}
			}
			return fmt.Errorf("batch halted at item %s: %w", item.GUID, err)
		}
		lastPosted = &item.GUID
	}

	return s.streams.AdvanceCursor(ctx, s.guildID, stream, *lastPosted)
}

// RunQueryRefresh polls the tracked-query stream: for every query, fetch the
// provider search, drop items already delivered for this guild, post the
// rest and record them. Deduplication is by guid because overlapping queries
// can match the same release.
func (s *PollService) RunQueryRefresh(ctx context.Context, provider feed.Provider, render RenderFunc) error {
	settings, err := s.streams.GetOrCreate(ctx, s.guildID, models.StreamUpdates)
	if err != nil {
		return err
	}

	if !settings.HasChannel() {
		log.Warnf("No valid channel target was found for guild %d for stream %s", s.guildID, models.StreamUpdates)
		return nil
	}

	queries, err := s.queries.List(ctx, s.guildID)
	if err != nil {
		return err
	}

	for _, query := range queries {
		if err := s.refreshQuery(ctx, settings, query, provider, render); err != nil {
			return err
		}
	}

	return nil
}

func (s *PollService) refreshQuery(ctx context.Context, settings *models.StreamSettings, query *models.TrackedQuery, provider feed.Provider, render RenderFunc) error {
	enrichment, err := s.enricher.Lookup(ctx, s.guildID, query.SourceURL)
	if err != nil {
		// The item can still be posted with its raw title
		log.Warnf("Enrichment lookup for %s failed: %v", query.SourceURL, err)
		enrichment = nil
	}

	items, err := provider.Fetch(ctx, query.Search)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	filter := compileFilter(query)

	log.Infof("Results found for %q: %d", query.Search, len(items))

	for i := range items {
		item := items[i]

		if filter != nil && !filter.MatchString(item.Title) {
			continue
		}

		seen, err := s.delivered.WasDelivered(ctx, s.guildID, item.GUID)
		if err != nil {
			return err
		}
		if seen {
			continue
		}

		if err := s.poster.Post(ctx, *settings.ChannelID, render(item, enrichment)); err != nil {
			return fmt.Errorf("batch halted at item %s: %w", item.GUID, err)
		}

		record := &models.DeliveredItem{
			GuildID: s.guildID,
			GUID:    item.GUID,
			QueryID: &query.ID,
			Title:   item.Title,
		}
		if err := s.delivered.Record(ctx, record); err != nil {
			return err
		}
	}

	return nil
}

// compileFilter builds the query's optional attribute filter. A pattern that
// no longer compiles is ignored rather than wedging the whole stream.
func compileFilter(query *models.TrackedQuery) *regexp.Regexp {
	if query.FilterPattern == nil || *query.FilterPattern == "" {
		return nil
	}

	filter, err := regexp.Compile(*query.FilterPattern)
	if err != nil {
		log.Warnf("Invalid filter pattern %q on query %d: %v", *query.FilterPattern, query.ID, err)
		return nil
	}

	return filter
}
