package service

import (
	"context"
	"errors"
	"testing"

	"feedbot/dispatch"
	"feedbot/feed"
	"feedbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testGuildID = int64(200)

func testRender(item feed.Item, _ *models.Enrichment) *dispatch.Message {
	return &dispatch.Message{Title: item.Title}
}

func newTestPollService() (*PollService, *MockStreamSettingsRepository, *MockTrackedQueryRepository, *MockDeliveredItemRepository, *MockEnricher, *MockPoster) {
	streams := new(MockStreamSettingsRepository)
	queries := new(MockTrackedQueryRepository)
	delivered := new(MockDeliveredItemRepository)
	enricher := new(MockEnricher)
	poster := new(MockPoster)

	service := NewPollService(testGuildID, streams, queries, delivered, enricher, poster)
	return service, streams, queries, delivered, enricher, poster
}

func boundSettings(stream models.Stream, channelID int64, cursor *string) *models.StreamSettings {
	return &models.StreamSettings{
		GuildID:   testGuildID,
		Stream:    stream,
		ChannelID: &channelID,
		LastGUID:  cursor,
	}
}

func TestPollService_RunFirehoseCycle_NoChannelBound(t *testing.T) {
	ctx := context.Background()
	service, streams, _, _, _, poster := newTestPollService()

	settings := &models.StreamSettings{GuildID: testGuildID, Stream: models.StreamAll}
	streams.On("GetOrCreate", ctx, testGuildID, models.StreamAll).Return(settings, nil)

	provider := new(MockProvider)

	err := service.RunFirehoseCycle(ctx, models.StreamAll, provider, testRender)

	assert.NoError(t, err)
	provider.AssertNotCalled(t, "Fetch")
	poster.AssertNotCalled(t, "Post")
}

func TestPollService_RunFirehoseCycle_PostsDeltaAndAdvancesCursor(t *testing.T) {
	ctx := context.Background()
	service, streams, _, _, _, poster := newTestPollService()

	cursor := "b"
	streams.On("GetOrCreate", ctx, testGuildID, models.StreamAll).
		Return(boundSettings(models.StreamAll, 555, &cursor), nil)

	provider := new(MockProvider)
	provider.On("Fetch", ctx, "").Return([]feed.Item{
		{GUID: "a", Title: "old"},
		{GUID: "b", Title: "cursor"},
		{GUID: "c", Title: "new one"},
		{GUID: "d", Title: "new two"},
	}, nil)

	poster.On("Post", ctx, int64(555), mock.Anything).Return(nil).Twice()
	streams.On("AdvanceCursor", ctx, testGuildID, models.StreamAll, "d").Return(nil)

	err := service.RunFirehoseCycle(ctx, models.StreamAll, provider, testRender)

	assert.NoError(t, err)
	streams.AssertExpectations(t)
	poster.AssertExpectations(t)
}

func TestPollService_RunFirehoseCycle_EmptyDeltaLeavesCursorAlone(t *testing.T) {
	ctx := context.Background()
	service, streams, _, _, _, poster := newTestPollService()

	cursor := "c"
	streams.On("GetOrCreate", ctx, testGuildID, models.StreamAll).
		Return(boundSettings(models.StreamAll, 555, &cursor), nil)

	provider := new(MockProvider)
	provider.On("Fetch", ctx, "").Return([]feed.Item{
		{GUID: "a"}, {GUID: "b"}, {GUID: "c"},
	}, nil)

	err := service.RunFirehoseCycle(ctx, models.StreamAll, provider, testRender)

	assert.NoError(t, err)
	poster.AssertNotCalled(t, "Post")
	streams.AssertNotCalled(t, "AdvanceCursor")
}

func TestPollService_RunFirehoseCycle_FetchErrorLeavesCursorAlone(t *testing.T) {
	ctx := context.Background()
	service, streams, _, _, _, poster := newTestPollService()

	streams.On("GetOrCreate", ctx, testGuildID, models.StreamMusicAll).
		Return(boundSettings(models.StreamMusicAll, 555, nil), nil)

	provider := new(MockProvider)
	provider.On("Fetch", ctx, "").Return(nil, models.NewFetchError("music", errors.New("timeout")))

	err := service.RunFirehoseCycle(ctx, models.StreamMusicAll, provider, testRender)

	var fetchErr *models.FetchError
	assert.ErrorAs(t, err, &fetchErr)
	poster.AssertNotCalled(t, "Post")
	streams.AssertNotCalled(t, "AdvanceCursor")
}

func TestPollService_RunFirehoseCycle_DeliveryFailureHaltsAtLastSuccess(t *testing.T) {
	ctx := context.Background()
	service, streams, _, _, _, poster := newTestPollService()

	streams.On("GetOrCreate", ctx, testGuildID, models.StreamAll).
		Return(boundSettings(models.StreamAll, 555, nil), nil)

	provider := new(MockProvider)
	provider.On("Fetch", ctx, "").Return([]feed.Item{
		{GUID: "a"}, {GUID: "b"}, {GUID: "c"},
	}, nil)

	// First post lands, second fails, third must never be attempted.
	poster.On("Post", ctx, int64(555), mock.Anything).Return(nil).Once()
	poster.On("Post", ctx, int64(555), mock.Anything).
		Return(models.NewDeliveryError(555, errors.New("rate limited"))).Once()

	streams.On("AdvanceCursor", ctx, testGuildID, models.StreamAll, "a").Return(nil)

	err := service.RunFirehoseCycle(ctx, models.StreamAll, provider, testRender)

	assert.Error(t, err)
	var deliveryErr *models.DeliveryError
	assert.ErrorAs(t, err, &deliveryErr)
	poster.AssertNumberOfCalls(t, "Post", 2)
	streams.AssertExpectations(t)
}

func TestPollService_RunFirehoseCycle_FirstPostFailsCursorUntouched(t *testing.T) {
	ctx := context.Background()
	service, streams, _, _, _, poster := newTestPollService()

	streams.On("GetOrCreate", ctx, testGuildID, models.StreamAll).
		Return(boundSettings(models.StreamAll, 555, nil), nil)

	provider := new(MockProvider)
	provider.On("Fetch", ctx, "").Return([]feed.Item{{GUID: "a"}, {GUID: "b"}}, nil)

	poster.On("Post", ctx, int64(555), mock.Anything).
		Return(models.NewDeliveryError(555, errors.New("rate limited"))).Once()

	err := service.RunFirehoseCycle(ctx, models.StreamAll, provider, testRender)

	assert.Error(t, err)
	streams.AssertNotCalled(t, "AdvanceCursor")
}

func TestPollService_RunQueryRefresh_SkipsDeliveredPostsAndRecordsNew(t *testing.T) {
	ctx := context.Background()
	service, streams, queries, delivered, enricher, poster := newTestPollService()

	streams.On("GetOrCreate", ctx, testGuildID, models.StreamUpdates).
		Return(boundSettings(models.StreamUpdates, 777, nil), nil)

	query := &models.TrackedQuery{GuildID: testGuildID, ID: 3, Search: "show name", SourceURL: "https://example.com/show"}
	queries.On("List", ctx, testGuildID).Return([]*models.TrackedQuery{query}, nil)

	enricher.On("Lookup", ctx, testGuildID, "https://example.com/show").Return(nil, nil)

	provider := new(MockProvider)
	provider.On("Fetch", ctx, "show name").Return([]feed.Item{
		{GUID: "seen", Title: "already posted"},
		{GUID: "fresh", Title: "new episode"},
	}, nil)

	delivered.On("WasDelivered", ctx, testGuildID, "seen").Return(true, nil)
	delivered.On("WasDelivered", ctx, testGuildID, "fresh").Return(false, nil)

	poster.On("Post", ctx, int64(777), mock.Anything).Return(nil).Once()
	delivered.On("Record", ctx, mock.MatchedBy(func(item *models.DeliveredItem) bool {
		return item.GuildID == testGuildID &&
			item.GUID == "fresh" &&
			item.QueryID != nil && *item.QueryID == 3 &&
			item.Title == "new episode"
	})).Return(nil)

	err := service.RunQueryRefresh(ctx, provider, testRender)

	assert.NoError(t, err)
	delivered.AssertExpectations(t)
	poster.AssertExpectations(t)
}

func TestPollService_RunQueryRefresh_FilterPatternNarrowsMatches(t *testing.T) {
	ctx := context.Background()
	service, streams, queries, delivered, enricher, poster := newTestPollService()

	streams.On("GetOrCreate", ctx, testGuildID, models.StreamUpdates).
		Return(boundSettings(models.StreamUpdates, 777, nil), nil)

	pattern := `1080p`
	query := &models.TrackedQuery{GuildID: testGuildID, ID: 1, Search: "show", SourceURL: "https://example.com/show", FilterPattern: &pattern}
	queries.On("List", ctx, testGuildID).Return([]*models.TrackedQuery{query}, nil)

	enricher.On("Lookup", ctx, testGuildID, "https://example.com/show").Return(nil, nil)

	provider := new(MockProvider)
	provider.On("Fetch", ctx, "show").Return([]feed.Item{
		{GUID: "sd", Title: "[Group] Show - 01 [480p]"},
		{GUID: "hd", Title: "[Group] Show - 01 [1080p]"},
	}, nil)

	delivered.On("WasDelivered", ctx, testGuildID, "hd").Return(false, nil)
	poster.On("Post", ctx, int64(777), mock.Anything).Return(nil).Once()
	delivered.On("Record", ctx, mock.Anything).Return(nil)

	err := service.RunQueryRefresh(ctx, provider, testRender)

	assert.NoError(t, err)
	delivered.AssertNotCalled(t, "WasDelivered", ctx, testGuildID, "sd")
	poster.AssertNumberOfCalls(t, "Post", 1)
}

func TestPollService_RunQueryRefresh_EnrichmentFailureStillPosts(t *testing.T) {
	ctx := context.Background()
	service, streams, queries, delivered, enricher, poster := newTestPollService()

	streams.On("GetOrCreate", ctx, testGuildID, models.StreamUpdates).
		Return(boundSettings(models.StreamUpdates, 777, nil), nil)

	query := &models.TrackedQuery{GuildID: testGuildID, ID: 1, Search: "show", SourceURL: "https://example.com/down"}
	queries.On("List", ctx, testGuildID).Return([]*models.TrackedQuery{query}, nil)

	enricher.On("Lookup", ctx, testGuildID, "https://example.com/down").
		Return(nil, errors.New("connection refused"))

	provider := new(MockProvider)
	provider.On("Fetch", ctx, "show").Return([]feed.Item{{GUID: "x", Title: "episode"}}, nil)

	delivered.On("WasDelivered", ctx, testGuildID, "x").Return(false, nil)
	poster.On("Post", ctx, int64(777), mock.Anything).Return(nil).Once()
	delivered.On("Record", ctx, mock.Anything).Return(nil)

	err := service.RunQueryRefresh(ctx, provider, testRender)

	assert.NoError(t, err)
	poster.AssertExpectations(t)
}

func TestPollService_RunQueryRefresh_DeliveryFailureStopsCycle(t *testing.T) {
	ctx := context.Background()
	service, streams, queries, delivered, enricher, poster := newTestPollService()

	streams.On("GetOrCreate", ctx, testGuildID, models.StreamUpdates).
		Return(boundSettings(models.StreamUpdates, 777, nil), nil)

	first := &models.TrackedQuery{GuildID: testGuildID, ID: 1, Search: "one", SourceURL: "https://example.com/one"}
	second := &models.TrackedQuery{GuildID: testGuildID, ID: 2, Search: "two", SourceURL: "https://example.com/two"}
	queries.On("List", ctx, testGuildID).Return([]*models.TrackedQuery{first, second}, nil)

	enricher.On("Lookup", ctx, testGuildID, "https://example.com/one").Return(nil, nil)

	provider := new(MockProvider)
	provider.On("Fetch", ctx, "one").Return([]feed.Item{{GUID: "a", Title: "a"}}, nil)

	delivered.On("WasDelivered", ctx, testGuildID, "a").Return(false, nil)
	poster.On("Post", ctx, int64(777), mock.Anything).
		Return(models.NewDeliveryError(777, errors.New("rate limited")))

	err := service.RunQueryRefresh(ctx, provider, testRender)

	assert.Error(t, err)
	// The failed item was never recorded, and the second query never fetched.
	delivered.AssertNotCalled(t, "Record")
	provider.AssertNotCalled(t, "Fetch", ctx, "two")
}
