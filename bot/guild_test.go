package bot

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"feedbot/feed"
	"feedbot/models"
	"feedbot/scheduler"
	"feedbot/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGuildInstance_RefreshWhileCycleInFlightIsSkipped(t *testing.T) {
	ctx := context.Background()

	streams := new(service.MockStreamSettingsRepository)
	queries := new(service.MockTrackedQueryRepository)
	delivered := new(service.MockDeliveredItemRepository)
	enricher := new(service.MockEnricher)
	poster := new(service.MockPoster)
	provider := new(service.MockProvider)

	channel := int64(555)
	settings := &models.StreamSettings{GuildID: 100, Stream: models.StreamAll, ChannelID: &channel}
	streams.On("GetOrCreate", mock.Anything, int64(100), models.StreamAll).Return(settings, nil)

	var fetches atomic.Int32
	release := make(chan struct{})
	provider.On("Fetch", mock.Anything, "").Run(func(args mock.Arguments) {
		fetches.Add(1)
		<-release
	}).Return([]feed.Item{}, nil)

	g := &GuildInstance{
		guildID:        100,
		streamSettings: streams,
		polls:          service.NewPollService(100, streams, queries, delivered, enricher, poster),
		registry:       scheduler.NewRegistry(100),
		torrent:        provider,
		responder:      &fakeResponder{},
	}
	defer g.registry.StopAll()

	// Occupy the stream with a cycle stuck in its fetch.
	go func() {
		_ = g.refreshNow(ctx, models.StreamAll)
	}()

	assert.Eventually(t, func() bool {
		return fetches.Load() == 1
	}, time.Second, 5*time.Millisecond)

	// A second refresh during the cycle must not fetch again.
	err := g.refreshNow(ctx, models.StreamAll)
	require.NoError(t, err)
	assert.Equal(t, int32(1), fetches.Load())

	close(release)

	// With the first cycle finished, a refresh runs a fresh one.
	assert.Eventually(t, func() bool {
		if err := g.refreshNow(ctx, models.StreamAll); err != nil {
			return false
		}
		return fetches.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}
