package service

import (
	"context"

	"feedbot/dispatch"
	"feedbot/feed"
	"feedbot/models"

	"github.com/stretchr/testify/mock"
)

// MockGuildConfigRepository is a mock implementation of GuildConfigRepository
type MockGuildConfigRepository struct {
	mock.Mock
}

func (m *MockGuildConfigRepository) GetOrCreateGuildConfig(ctx context.Context, guildID int64) (*models.GuildConfig, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildConfig), args.Error(1)
}

func (m *MockGuildConfigRepository) GetAllowedUsers(ctx context.Context, guildID int64) ([]int64, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockGuildConfigRepository) AddAllowedUser(ctx context.Context, guildID, userID int64) error {
	args := m.Called(ctx, guildID, userID)
	return args.Error(0)
}

func (m *MockGuildConfigRepository) NextQueryID(ctx context.Context, guildID int64) (int, error) {
	args := m.Called(ctx, guildID)
	return args.Int(0), args.Error(1)
}

// MockTrackedQueryRepository is a mock implementation of TrackedQueryRepository
type MockTrackedQueryRepository struct {
	mock.Mock
}

func (m *MockTrackedQueryRepository) Add(ctx context.Context, query *models.TrackedQuery) error {
	args := m.Called(ctx, query)
	return args.Error(0)
}

func (m *MockTrackedQueryRepository) List(ctx context.Context, guildID int64) ([]*models.TrackedQuery, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TrackedQuery), args.Error(1)
}

func (m *MockTrackedQueryRepository) Get(ctx context.Context, guildID int64, id int) (*models.TrackedQuery, error) {
	args := m.Called(ctx, guildID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TrackedQuery), args.Error(1)
}

func (m *MockTrackedQueryRepository) Remove(ctx context.Context, guildID int64, id int) error {
	args := m.Called(ctx, guildID, id)
	return args.Error(0)
}

// MockStreamSettingsRepository is a mock implementation of StreamSettingsRepository
type MockStreamSettingsRepository struct {
	mock.Mock
}

func (m *MockStreamSettingsRepository) GetOrCreate(ctx context.Context, guildID int64, stream models.Stream) (*models.StreamSettings, error) {
	args := m.Called(ctx, guildID, stream)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StreamSettings), args.Error(1)
}

func (m *MockStreamSettingsRepository) SetChannel(ctx context.Context, guildID int64, stream models.Stream, channelID int64) error {
	args := m.Called(ctx, guildID, stream, channelID)
	return args.Error(0)
}

func (m *MockStreamSettingsRepository) SetInterval(ctx context.Context, guildID int64, stream models.Stream, minutes int) error {
	args := m.Called(ctx, guildID, stream, minutes)
	return args.Error(0)
}

func (m *MockStreamSettingsRepository) AdvanceCursor(ctx context.Context, guildID int64, stream models.Stream, guid string) error {
	args := m.Called(ctx, guildID, stream, guid)
	return args.Error(0)
}

// MockDeliveredItemRepository is a mock implementation of DeliveredItemRepository
type MockDeliveredItemRepository struct {
	mock.Mock
}

func (m *MockDeliveredItemRepository) WasDelivered(ctx context.Context, guildID int64, guid string) (bool, error) {
	args := m.Called(ctx, guildID, guid)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeliveredItemRepository) Record(ctx context.Context, item *models.DeliveredItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockEnricher is a mock implementation of Enricher
type MockEnricher struct {
	mock.Mock
}

func (m *MockEnricher) Lookup(ctx context.Context, guildID int64, url string) (*models.Enrichment, error) {
	args := m.Called(ctx, guildID, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Enrichment), args.Error(1)
}

// MockPoster is a mock implementation of Poster
type MockPoster struct {
	mock.Mock
}

func (m *MockPoster) Post(ctx context.Context, channelID int64, msg *dispatch.Message) error {
	args := m.Called(ctx, channelID, msg)
	return args.Error(0)
}

// MockProvider is a mock implementation of feed.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Fetch(ctx context.Context, query string) ([]feed.Item, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]feed.Item), args.Error(1)
}
