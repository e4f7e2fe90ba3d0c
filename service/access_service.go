package service

import (
	"context"
	"fmt"

	"feedbot/models"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// AccessService decides who may command a guild. An empty allow-list is the
// unclaimed state: the first caller is auto-admitted and becomes the list.
type AccessService struct {
	guildConfigRepo GuildConfigRepository
}

// NewAccessService creates a new access service
func NewAccessService(guildConfigRepo GuildConfigRepository) *AccessService {
	return &AccessService{guildConfigRepo: guildConfigRepo}
}

// Authorize checks the caller against the allow-list, claiming the guild for
// them when the list is still empty. Denials carry no detail about the list.
func (s *AccessService) Authorize(ctx context.Context, guildID, userID int64) error {
	users, err := s.guildConfigRepo.GetAllowedUsers(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to load allow-list: %w", err)
	}

	if len(users) == 0 {
		if err := s.guildConfigRepo.AddAllowedUser(ctx, guildID, userID); err != nil {
			return fmt.Errorf("failed to claim guild: %w", err)
		}
		log.Infof("First caller %d auto-admitted for guild %d", userID, guildID)
		return nil
	}

	if !lo.Contains(users, userID) {
		return models.NewAuthorizationError(userID)
	}

	return nil
}

// Allow adds a user to the allow-list.
func (s *AccessService) Allow(ctx context.Context, guildID, userID int64) error {
	if err := s.guildConfigRepo.AddAllowedUser(ctx, guildID, userID); err != nil {
		return fmt.Errorf("failed to add allowed user: %w", err)
	}

	log.Infof("User %d added to the allow-list for guild %d", userID, guildID)
	return nil
}
