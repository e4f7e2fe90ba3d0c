package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"feedbot/database"
	"feedbot/dispatch"
	"feedbot/enrich"
	"feedbot/feed"
	"feedbot/repository"
	"feedbot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// CommandPrefix starts every text command.
const CommandPrefix = "+"

// Version is shown in the help embed.
const Version = "2.0.0"

// Config holds bot configuration
type Config struct {
	Token string
}

// Bot manages the Discord session and the per-guild instances.
type Bot struct {
	config  Config
	session *discordgo.Session
	db      *database.DB

	torrent feed.Provider
	music   feed.Provider

	guildConfigs   *repository.GuildConfigRepository
	trackedQueries *repository.TrackedQueryRepository
	streamSettings *repository.StreamSettingsRepository
	deliveredItems *repository.DeliveredItemRepository
	enricher       *enrich.Service
	dispatcher     *dispatch.Dispatcher
	messenger      *discordMessenger
	access         *service.AccessService

	ctx context.Context

	mu     sync.Mutex
	guilds map[int64]*GuildInstance
}

// New creates the bot, connects the session and builds a GuildInstance for
// every guild the bot is already a member of.
func New(ctx context.Context, config Config, db *database.DB, torrent, music feed.Provider) (*Bot, error) {
	session, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsAllWithoutPrivileged | discordgo.IntentsMessageContent

	messenger := newDiscordMessenger(session)

	b := &Bot{
		config:         config,
		session:        session,
		db:             db,
		torrent:        torrent,
		music:          music,
		guildConfigs:   repository.NewGuildConfigRepository(db),
		trackedQueries: repository.NewTrackedQueryRepository(db),
		streamSettings: repository.NewStreamSettingsRepository(db),
		deliveredItems: repository.NewDeliveredItemRepository(db),
		enricher:       enrich.NewService(repository.NewEnrichmentCacheRepository(db)),
		dispatcher:     dispatch.NewDispatcher(messenger, dispatch.DefaultConfig()),
		messenger:      messenger,
		ctx:            ctx,
		guilds:         map[int64]*GuildInstance{},
	}
	b.access = service.NewAccessService(b.guildConfigs)

	session.AddHandler(b.handleReady)
	session.AddHandler(b.handleGuildCreate)
	session.AddHandler(b.handleMessageCreate)

	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	return b, nil
}

// Close stops every guild's schedulers and disconnects the session.
func (b *Bot) Close() error {
	b.mu.Lock()
	for _, guild := range b.guilds {
		guild.Stop()
	}
	b.guilds = map[int64]*GuildInstance{}
	b.mu.Unlock()

	return b.session.Close()
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Infof("Bot is now ready, working as %s", r.User.Username)

	for _, guild := range r.Guilds {
		log.Infof("Preparing cache for %s", guild.ID)
		b.ensureGuild(guild.ID)
	}
}

func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	b.ensureGuild(g.ID)
}

// ensureGuild creates the guild's instance on first sight. Instance creation
// readies the config document and starts the schedulers.
func (b *Bot) ensureGuild(rawGuildID string) *GuildInstance {
	guildID, err := strconv.ParseInt(rawGuildID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", rawGuildID, err)
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if instance, ok := b.guilds[guildID]; ok {
		return instance
	}

	polls := service.NewPollService(
		guildID,
		b.streamSettings,
		b.trackedQueries,
		b.deliveredItems,
		b.enricher,
		b.dispatcher,
	)

	instance, err := NewGuildInstance(
		b.ctx,
		guildID,
		b.guildConfigs,
		b.trackedQueries,
		b.streamSettings,
		polls,
		b.access,
		b.dispatcher,
		b.torrent,
		b.music,
		b.messenger,
	)
	if err != nil {
		log.Errorf("Failed to initialize guild %d: %v", guildID, err)
		return nil
	}

	b.guilds[guildID] = instance
	return instance
}

// handleMessageCreate routes prefixed text commands to the owning guild.
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID {
		return
	}
	if m.GuildID == "" {
		return
	}

	content := m.Content
	if !strings.HasPrefix(content, CommandPrefix) {
		return
	}

	name, args := splitCommand(content)

	instance := b.ensureGuild(m.GuildID)
	if instance == nil {
		return
	}

	userID, err := strconv.ParseInt(m.Author.ID, 10, 64)
	if err != nil {
		return
	}
	channelID, err := strconv.ParseInt(m.ChannelID, 10, 64)
	if err != nil {
		return
	}

	inv := &Invocation{
		GuildID:   instance.guildID,
		UserID:    userID,
		ChannelID: channelID,
		Args:      args,
	}
	for _, user := range m.Mentions {
		if id, err := strconv.ParseInt(user.ID, 10, 64); err == nil {
			inv.Mentions = append(inv.Mentions, id)
		}
	}

	instance.HandleCommand(b.ctx, name, inv)
}

// splitCommand separates "+name rest of args" into name and raw arg text.
func splitCommand(content string) (name, args string) {
	content = strings.TrimPrefix(content, CommandPrefix)
	if idx := strings.Index(content, " "); idx != -1 {
		return content[:idx], strings.TrimSpace(content[idx+1:])
	}
	return content, ""
}
