package bot

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"feedbot/dispatch"
	"feedbot/models"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// Invocation carries one command call across the chat-platform boundary.
type Invocation struct {
	GuildID   int64
	UserID    int64
	ChannelID int64
	Args      string
	Mentions  []int64
}

type commandHandler func(ctx context.Context, inv *Invocation) error

// Per-command argument grammars. Each command parses only what it needs.
var (
	addQueryArgsRegex = regexp.MustCompile(`"(.+?)" "(.+?)"(?: "(.+?)")?`)
	streamArgsRegex   = regexp.MustCompile(`"(.+?)" (\d+)`)
	removeArgsRegex   = regexp.MustCompile(`\d+`)
)

func (g *GuildInstance) commandTable() map[string]commandHandler {
	return map[string]commandHandler{
		"id":           g.cmdChannelID,
		"allow":        g.cmdAllow,
		"new":          g.cmdAddQuery,
		"channel":      g.cmdSetChannel,
		"refresh":      g.cmdRefresh,
		"refreshAll":   g.cmdRefreshAll,
		"refreshMusic": g.cmdRefreshMusic,
		"timeout":      g.cmdSetTimeout,
		"list":         g.cmdListQueries,
		"remove":       g.cmdRemoveQuery,
		"help":         g.cmdHelp,
	}
}

func (g *GuildInstance) cmdChannelID(ctx context.Context, inv *Invocation) error {
	g.reply(ctx, inv, fmt.Sprintf("Channel ID is %d", inv.ChannelID))
	return nil
}

func (g *GuildInstance) cmdAllow(ctx context.Context, inv *Invocation) error {
	if len(inv.Mentions) == 0 {
		return models.NewValidationError("No user mention was found")
	}

	if err := g.access.Allow(ctx, g.guildID, inv.Mentions[0]); err != nil {
		return err
	}

	g.reply(ctx, inv, "User was added to the bot list")
	return nil
}

func (g *GuildInstance) cmdAddQuery(ctx context.Context, inv *Invocation) error {
	match := addQueryArgsRegex.FindStringSubmatch(inv.Args)
	if match == nil {
		return models.NewValidationError(fmt.Sprintf("Invalid new syntax:\n%snew \"search phrase\" \"source URL\" \"attribute regex\" (optional last)", CommandPrefix))
	}

	id, err := g.guildConfigs.NextQueryID(ctx, g.guildID)
	if err != nil {
		return err
	}

	query := &models.TrackedQuery{
		GuildID:   g.guildID,
		ID:        id,
		Search:    match[1],
		SourceURL: match[2],
	}
	if match[3] != "" {
		query.FilterPattern = &match[3]
	}

	if err := g.trackedQueries.Add(ctx, query); err != nil {
		return err
	}

	log.Infof("New query has been added to the search list - %s - %s for guild %d", query.Search, query.SourceURL, g.guildID)
	g.reply(ctx, inv, "Saved!")
	return nil
}

func (g *GuildInstance) cmdSetChannel(ctx context.Context, inv *Invocation) error {
	stream, value, err := parseStreamArgs(inv.Args, "channel", "channelID")
	if err != nil {
		return err
	}

	if err := g.streamSettings.SetChannel(ctx, g.guildID, stream, value); err != nil {
		return err
	}

	log.Infof("New response channel was set for guild %d - %d for stream %s", g.guildID, value, stream)
	g.reply(ctx, inv, fmt.Sprintf("New channel set for stream %s", stream))
	return nil
}

func (g *GuildInstance) cmdRefresh(ctx context.Context, inv *Invocation) error {
	return g.refreshNow(ctx, models.StreamUpdates)
}

func (g *GuildInstance) cmdRefreshAll(ctx context.Context, inv *Invocation) error {
	return g.refreshNow(ctx, models.StreamAll)
}

func (g *GuildInstance) cmdRefreshMusic(ctx context.Context, inv *Invocation) error {
	return g.refreshNow(ctx, models.StreamMusicAll)
}

func (g *GuildInstance) cmdSetTimeout(ctx context.Context, inv *Invocation) error {
	stream, minutes, err := parseStreamArgs(inv.Args, "timeout", "minutes")
	if err != nil {
		return err
	}

	if err := g.streamSettings.SetInterval(ctx, g.guildID, stream, int(minutes)); err != nil {
		return err
	}

	if err := g.startScheduler(ctx, stream); err != nil {
		return err
	}

	log.Infof("A new timeout has been set for guild %d - %d (%s)", g.guildID, minutes, stream)
	g.reply(ctx, inv, "New timeout set")
	return nil
}

func (g *GuildInstance) cmdListQueries(ctx context.Context, inv *Invocation) error {
	queries, err := g.trackedQueries.List(ctx, g.guildID)
	if err != nil {
		return err
	}

	if len(queries) == 0 {
		g.reply(ctx, inv, "No queries are currently in the search list")
		return nil
	}

	for _, page := range lo.Chunk(queries, 15) {
		var sb strings.Builder
		for _, query := range page {
			fmt.Fprintf(&sb, "ID: %d - %s\n", query.ID, query.Search)
		}
		g.reply(ctx, inv, sb.String())
	}

	return nil
}

func (g *GuildInstance) cmdRemoveQuery(ctx context.Context, inv *Invocation) error {
	match := removeArgsRegex.FindString(inv.Args)
	if match == "" {
		return models.NewValidationError("Invalid id")
	}

	id, err := strconv.Atoi(match)
	if err != nil {
		return models.NewValidationError("Invalid id")
	}

	if err := g.trackedQueries.Remove(ctx, g.guildID, id); err != nil {
		return err
	}

	log.Infof("A query has been removed from the search list - %d from guild %d", id, g.guildID)
	g.reply(ctx, inv, "Query removed")
	return nil
}

func (g *GuildInstance) cmdHelp(ctx context.Context, inv *Invocation) error {
	help := &dispatch.Message{
		Title: fmt.Sprintf("Help for feedbot v%s", Version),
		Color: minorEmbedColor,
	}

	p := CommandPrefix
	streams := fmt.Sprintf("%s, %s, %s", models.StreamUpdates, models.StreamAll, models.StreamMusicAll)
	help.AddField(p+"id", "show id of the current channel", false)
	help.AddField(p+"allow", "mention a user to allow them to use the bot", false)
	help.AddField(p+"new", fmt.Sprintf("add a search query: %snew \"search phrase\" \"source URL\" \"attribute regex\" (optional last)", p), false)
	help.AddField(p+"channel", fmt.Sprintf("bind a destination channel: %schannel \"STREAM\" channelID, STREAM is one of %s", p, streams), false)
	help.AddField(p+"refresh", fmt.Sprintf("force a refresh now (restarts timer) - %s", models.StreamUpdates), false)
	help.AddField(p+"refreshAll", fmt.Sprintf("force a refresh now (restarts timer) - %s", models.StreamAll), false)
	help.AddField(p+"refreshMusic", fmt.Sprintf("force a refresh now (restarts timer) - %s", models.StreamMusicAll), false)
	help.AddField(p+"timeout", fmt.Sprintf("set a polling interval in minutes: %stimeout \"STREAM\" minutes", p), false)
	help.AddField(p+"list", "list tracked search queries", false)
	help.AddField(p+"remove", "remove a query by id", false)
	help.AddField(p+"help", "show this message", false)

	return g.poster.Post(ctx, inv.ChannelID, help)
}

// parseStreamArgs parses the shared `"STREAM" number` grammar used by the
// channel and timeout commands.
func parseStreamArgs(args, command, operand string) (models.Stream, int64, error) {
	match := streamArgsRegex.FindStringSubmatch(args)
	if match == nil {
		return "", 0, models.NewValidationError(fmt.Sprintf("Invalid %s syntax.\n%s%s \"STREAM\" %s where STREAM is one of %s, %s, %s",
			command, CommandPrefix, command, operand, models.StreamUpdates, models.StreamAll, models.StreamMusicAll))
	}

	stream, err := models.ParseStream(match[1])
	if err != nil {
		return "", 0, err
	}

	value, err := strconv.ParseInt(match[2], 10, 64)
	if err != nil {
		return "", 0, models.NewValidationError(fmt.Sprintf("Invalid %s value", operand))
	}

	return stream, value, nil
}
