package platform

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"sentry-bot/models"
)

// Surface identifies one decision message and the buttons attached to it.
type Surface struct {
	GuildID   string
	ChannelID string
	MessageID string
	TargetID  string
}

// Discord adapts a discordgo session to the operations the moderation core
// needs. The core packages depend on the narrow interfaces they declare, so
// this is the only place that knows the concrete API calls.
type Discord struct {
	s *discordgo.Session
}

// NewDiscord wraps a discordgo session.
func NewDiscord(s *discordgo.Session) *Discord {
	return &Discord{s: s}
}

// BanAccount bans the account from the guild with an audit-log reason.
func (d *Discord) BanAccount(guildID, accountID, reason string) error {
	if err := d.s.GuildBanCreateWithReason(guildID, accountID, reason, 0); err != nil {
		return fmt.Errorf("ban account %s: %w", accountID, err)
	}
	return nil
}

// SendDirectMessage opens (or reuses) the DM channel with the account and
// sends the embed.
func (d *Discord) SendDirectMessage(accountID string, embed *discordgo.MessageEmbed) error {
	channel, err := d.s.UserChannelCreate(accountID)
	if err != nil {
		return fmt.Errorf("open DM channel with %s: %w", accountID, err)
	}
	if _, err := d.s.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
		return fmt.Errorf("send DM to %s: %w", accountID, err)
	}
	return nil
}

// PresentDecisionSurface posts the verification embed with its ban/pardon
// buttons as a reply to the invoking message.
func (d *Discord) PresentDecisionSurface(guildID, channelID string, reference *discordgo.MessageReference, embed *discordgo.MessageEmbed, targetID string) (Surface, error) {
	msg, err := d.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: DecisionControls(targetID, false),
		Reference:  reference,
	})
	if err != nil {
		return Surface{}, fmt.Errorf("present decision surface: %w", err)
	}
	return Surface{
		GuildID:   guildID,
		ChannelID: channelID,
		MessageID: msg.ID,
		TargetID:  targetID,
	}, nil
}

// DisableControls rewrites the decision message with both buttons disabled.
// Safe to call more than once; the edit is idempotent.
func (d *Discord) DisableControls(surface Surface) error {
	components := DecisionControls(surface.TargetID, true)
	_, err := d.s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    surface.ChannelID,
		ID:         surface.MessageID,
		Components: &components,
	})
	if err != nil {
		return fmt.Errorf("disable decision controls: %w", err)
	}
	return nil
}

// FindBanCapableModerator returns one human guild member holding the Ban
// Members capability, for automatic-ban notifications.
func (d *Discord) FindBanCapableModerator(guildID string) (models.AccountSnapshot, error) {
	guild, err := d.s.State.Guild(guildID)
	if err != nil {
		guild, err = d.s.Guild(guildID)
		if err != nil {
			return models.AccountSnapshot{}, fmt.Errorf("fetch guild %s: %w", guildID, err)
		}
	}

	rolePerms := make(map[string]int64, len(guild.Roles))
	for _, role := range guild.Roles {
		rolePerms[role.ID] = role.Permissions
	}

	members := guild.Members
	if len(members) == 0 {
		members, err = d.s.GuildMembers(guildID, "", 1000)
		if err != nil {
			return models.AccountSnapshot{}, fmt.Errorf("list members of guild %s: %w", guildID, err)
		}
	}

	for _, member := range members {
		if member.User == nil || member.User.Bot {
			continue
		}
		if member.User.ID == guild.OwnerID {
			return models.NewAccountSnapshot(member.User), nil
		}
		// The @everyone role shares the guild ID.
		perms := rolePerms[guildID]
		for _, roleID := range member.Roles {
			perms |= rolePerms[roleID]
		}
		if perms&discordgo.PermissionAdministrator != 0 || perms&discordgo.PermissionBanMembers != 0 {
			return models.NewAccountSnapshot(member.User), nil
		}
	}
	return models.AccountSnapshot{}, fmt.Errorf("no ban-capable moderator found in guild %s", guildID)
}

// FindChannelByName resolves a text channel of the guild by name.
func (d *Discord) FindChannelByName(guildID, name string) (string, error) {
	if guild, err := d.s.State.Guild(guildID); err == nil {
		for _, channel := range guild.Channels {
			if channel.Type == discordgo.ChannelTypeGuildText && channel.Name == name {
				return channel.ID, nil
			}
		}
	}

	channels, err := d.s.GuildChannels(guildID)
	if err != nil {
		return "", fmt.Errorf("list channels of guild %s: %w", guildID, err)
	}
	for _, channel := range channels {
		if channel.Type == discordgo.ChannelTypeGuildText && channel.Name == name {
			return channel.ID, nil
		}
	}
	return "", fmt.Errorf("no #%s channel in guild %s", name, guildID)
}

// DecisionControls builds the ban/pardon button row for a verification target.
// The custom IDs carry the target so a click can be tied back to it.
func DecisionControls(targetID string, disabled bool) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Ban",
					Style:    discordgo.DangerButton,
					CustomID: "ban_" + targetID,
					Disabled: disabled,
				},
				discordgo.Button{
					Label:    "Pardon",
					Style:    discordgo.SuccessButton,
					CustomID: "pardon_" + targetID,
					Disabled: disabled,
				},
			},
		},
	}
}
