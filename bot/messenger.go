package bot

import (
	"context"
	"strconv"

	"feedbot/dispatch"
	"feedbot/models"

	"github.com/bwmarrin/discordgo"
)

// Responder sends plain-text command replies to the invoking channel.
type Responder interface {
	SendText(ctx context.Context, channelID int64, content string) error
}

// discordMessenger adapts a discordgo session to the dispatch.Messenger and
// Responder boundaries. Every send failure is reported as a DeliveryError so
// the dispatcher treats it as retryable, matching the platform's habit of
// transient rate-limit rejections.
type discordMessenger struct {
	session *discordgo.Session
}

func newDiscordMessenger(session *discordgo.Session) *discordMessenger {
	return &discordMessenger{session: session}
}

// PostMessage renders and sends a structured message as an embed.
func (m *discordMessenger) PostMessage(ctx context.Context, channelID int64, msg *dispatch.Message) error {
	embed := &discordgo.MessageEmbed{
		Title: msg.Title,
		URL:   msg.URL,
		Color: msg.Color,
	}

	for _, field := range msg.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   field.Name,
			Value:  field.Value,
			Inline: field.Inline,
		})
	}

	if msg.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: msg.Footer}
	}

	if msg.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: msg.Thumbnail}
	}

	_, err := m.session.ChannelMessageSendEmbed(formatID(channelID), embed, discordgo.WithContext(ctx))
	if err != nil {
		return models.NewDeliveryError(channelID, err)
	}

	return nil
}

// SendText sends a plain text message.
func (m *discordMessenger) SendText(ctx context.Context, channelID int64, content string) error {
	_, err := m.session.ChannelMessageSend(formatID(channelID), content, discordgo.WithContext(ctx))
	if err != nil {
		return models.NewDeliveryError(channelID, err)
	}

	return nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
