package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"feedbot/feed"
	"feedbot/models"
	"feedbot/scheduler"
	"feedbot/service"

	log "github.com/sirupsen/logrus"
)

// GuildInstance is one guild's composition root: its store accessors, its
// scheduler registry and its command surface. Instances are created on
// startup for every joined guild and lazily when the bot joins a new one.
type GuildInstance struct {
	guildID int64

	guildConfigs   service.GuildConfigRepository
	trackedQueries service.TrackedQueryRepository
	streamSettings service.StreamSettingsRepository

	polls    *service.PollService
	access   *service.AccessService
	poster   service.Poster
	registry *scheduler.Registry

	torrent   feed.Provider
	music     feed.Provider
	responder Responder

	commands map[string]commandHandler
}

// NewGuildInstance loads (or initializes) the guild's config and starts the
// poll schedulers for all three streams from stored-or-default intervals.
func NewGuildInstance(
	ctx context.Context,
	guildID int64,
	guildConfigs service.GuildConfigRepository,
	trackedQueries service.TrackedQueryRepository,
	streamSettings service.StreamSettingsRepository,
	polls *service.PollService,
	access *service.AccessService,
	poster service.Poster,
	torrent feed.Provider,
	music feed.Provider,
	responder Responder,
) (*GuildInstance, error) {
	if _, err := guildConfigs.GetOrCreateGuildConfig(ctx, guildID); err != nil {
		return nil, fmt.Errorf("failed to ready guild %d: %w", guildID, err)
	}

	g := &GuildInstance{
		guildID:        guildID,
		guildConfigs:   guildConfigs,
		trackedQueries: trackedQueries,
		streamSettings: streamSettings,
		polls:          polls,
		access:         access,
		poster:         poster,
		registry:       scheduler.NewRegistry(guildID),
		torrent:        torrent,
		music:          music,
		responder:      responder,
	}
	g.commands = g.commandTable()

	for _, stream := range models.AllStreams {
		if err := g.startScheduler(ctx, stream); err != nil {
			g.registry.StopAll()
			return nil, err
		}
	}

	return g, nil
}

// Stop cancels all of the guild's timers. In-flight cycles run to completion.
func (g *GuildInstance) Stop() {
	g.registry.StopAll()
}

// startScheduler arms the repeating timer for one stream with the stored
// interval override or the stream default.
func (g *GuildInstance) startScheduler(ctx context.Context, stream models.Stream) error {
	settings, err := g.streamSettings.GetOrCreate(ctx, g.guildID, stream)
	if err != nil {
		return err
	}

	interval := time.Duration(settings.EffectiveInterval()) * time.Minute
	g.registry.Start(ctx, stream, interval, g.pollHandler(stream))

	return nil
}

// pollHandler wraps one stream's poll cycle. Cycle errors are logged and
// swallowed: a failed cycle must never take the scheduler down.
func (g *GuildInstance) pollHandler(stream models.Stream) scheduler.Handler {
	return func(ctx context.Context) {
		log.Infof("Updating %s for guild %d", stream, g.guildID)
		if err := g.runPoll(ctx, stream); err != nil {
			log.Errorf("Poll cycle for guild %d stream %s failed: %v", g.guildID, stream, err)
		}
	}
}

func (g *GuildInstance) runPoll(ctx context.Context, stream models.Stream) error {
	switch stream {
	case models.StreamUpdates:
		return g.polls.RunQueryRefresh(ctx, g.torrent, renderRichEmbed)
	case models.StreamAll:
		return g.polls.RunFirehoseCycle(ctx, models.StreamAll, g.torrent, renderMinorEmbed)
	case models.StreamMusicAll:
		return g.polls.RunFirehoseCycle(ctx, models.StreamMusicAll, g.music, renderMusicEmbed)
	}
	return fmt.Errorf("unknown stream %s", stream)
}

// refreshNow reschedules the stream's timer (resetting its clock) and runs
// one poll cycle immediately, through the registry's per-stream gate so a
// manual refresh never overlaps a scheduled cycle for the same stream.
func (g *GuildInstance) refreshNow(ctx context.Context, stream models.Stream) error {
	if err := g.startScheduler(ctx, stream); err != nil {
		return err
	}
	return g.registry.RunNow(ctx, stream, func(ctx context.Context) error {
		return g.runPoll(ctx, stream)
	})
}

// HandleCommand authorizes and dispatches one command invocation. Unknown
// commands are ignored so other bots' prefixes don't trigger replies.
func (g *GuildInstance) HandleCommand(ctx context.Context, name string, inv *Invocation) {
	handler, ok := g.commands[name]
	if !ok {
		return
	}

	if err := g.access.Authorize(ctx, g.guildID, inv.UserID); err != nil {
		var authErr *models.AuthorizationError
		if errors.As(err, &authErr) {
			g.reply(ctx, inv, "You are not allowed to use this bot")
			return
		}
		log.Errorf("Authorization check failed for guild %d: %v", g.guildID, err)
		return
	}

	if err := handler(ctx, inv); err != nil {
		g.replyError(ctx, inv, err)
	}
}

func (g *GuildInstance) reply(ctx context.Context, inv *Invocation, content string) {
	if err := g.responder.SendText(ctx, inv.ChannelID, content); err != nil {
		log.Errorf("Failed to reply in guild %d: %v", g.guildID, err)
	}
}

// replyError maps the error taxonomy onto user-facing replies. Validation
// and not-found messages are shown verbatim; anything else gets a generic
// reply with details kept in the log.
func (g *GuildInstance) replyError(ctx context.Context, inv *Invocation, err error) {
	var validationErr *models.ValidationError
	var notFoundErr *models.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		g.reply(ctx, inv, validationErr.Message)
	case errors.As(err, &notFoundErr):
		g.reply(ctx, inv, notFoundErr.Message)
	default:
		log.Errorf("Command failed for guild %d: %v", g.guildID, err)
		g.reply(ctx, inv, "Something went wrong, please try again later")
	}
}
