package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// ChannelResolver finds a guild channel by name.
type ChannelResolver interface {
	FindChannelByName(guildID, name string) (string, error)
}

// ChannelNotifier posts audit events as embeds to the guild's moderation-log
// channel, resolved by name. A missing channel is reported as an error and the
// caller decides what to do with it (the audit logger just logs it).
type ChannelNotifier struct {
	s           *discordgo.Session
	resolver    ChannelResolver
	channelName string
}

// NewChannelNotifier creates a notifier posting to the named channel.
func NewChannelNotifier(s *discordgo.Session, resolver ChannelResolver, channelName string) *ChannelNotifier {
	return &ChannelNotifier{s: s, resolver: resolver, channelName: channelName}
}

// Notify sends the event embed to the moderation-log channel.
func (n *ChannelNotifier) Notify(event Event) error {
	if event.GuildID == "" {
		return fmt.Errorf("event has no guild to resolve #%s in", n.channelName)
	}
	channelID, err := n.resolver.FindChannelByName(event.GuildID, n.channelName)
	if err != nil {
		return err
	}
	if _, err := n.s.ChannelMessageSendEmbed(channelID, eventEmbed(event)); err != nil {
		return fmt.Errorf("send modlog embed: %w", err)
	}
	return nil
}

func eventEmbed(event Event) *discordgo.MessageEmbed {
	var color int
	var title, description string
	switch event.Type {
	case EventVerify:
		color = 0x00ff00
		title = "✅ Account verified"
		description = fmt.Sprintf("%s was verified by %s", event.Target.Tag(), event.Actor.Tag())
	case EventSuspect:
		color = 0xffa500
		title = "⚠️ Suspicious account"
		description = fmt.Sprintf("%s was flagged as suspicious", event.Target.Tag())
	case EventBan:
		color = 0xff0000
		title = "❌ Member banned"
		description = fmt.Sprintf("%s was banned by %s", event.Target.Tag(), event.Actor.Tag())
	default:
		color = 0x808080
		title = string(event.Type)
	}

	embed := &discordgo.MessageEmbed{
		Color:       color,
		Title:       title,
		Description: description,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Member",
				Value:  fmt.Sprintf("%s (%s)", event.Target.Tag(), event.Target.ID),
				Inline: true,
			},
			{
				Name:   "Moderator",
				Value:  event.Actor.Tag(),
				Inline: true,
			},
		},
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: event.Target.AvatarURL},
		Timestamp: event.At.Format(time.RFC3339),
	}
	if len(event.Reasons) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Reasons",
			Value: strings.Join(event.Reasons, "\n"),
		})
	}
	return embed
}
