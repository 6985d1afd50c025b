package handlers

import (
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"sentry-bot/models"
	"sentry-bot/ratelimit"
	"sentry-bot/suspicion"
	"sentry-bot/utils"
	"sentry-bot/verify"
)

const verifyCommand = "!verify"

// MessageCreate handles the !verify command. The checks run in a fixed order:
// bot capabilities, invoker capabilities, rate limit, target resolution. Each
// failure short-circuits with a reply.
func (m *Moderation) MessageCreate(s *discordgo.Session, msg *discordgo.MessageCreate) {
	// Ignore DMs and anything sent by bots, including ourselves.
	if msg.Author == nil || msg.Author.ID == s.State.User.ID || msg.Author.Bot {
		return
	}
	if msg.GuildID == "" {
		return
	}
	if !strings.HasPrefix(msg.Content, verifyCommand) {
		return
	}

	botPerms, err := s.State.UserChannelPermissions(s.State.User.ID, msg.ChannelID)
	if err != nil {
		log.Printf("Could not resolve bot permissions in channel %s: %v", msg.ChannelID, err)
		return
	}
	if !utils.BotHasRequiredPermissions(botPerms) {
		m.reply(s, msg, "I am missing the View Channel, Send Messages or Ban Members permission. Please check my role settings.")
		return
	}

	authorPerms, err := s.State.MessagePermissions(msg.Message)
	if err != nil {
		log.Printf("Could not resolve permissions of %s: %v", msg.Author.ID, err)
		return
	}
	if !utils.CanInvokeVerification(authorPerms) {
		m.reply(s, msg, "You do not have permission to use this command.")
		return
	}

	author := models.NewAccountSnapshot(msg.Author)
	quota := m.limiter.CheckAndConsume(author.ID, author.Tag())
	if !quota.Allowed {
		minutes := int(math.Ceil(time.Until(quota.ResetAt).Minutes()))
		m.reply(s, msg, fmt.Sprintf("You have reached the verification limit (%d/hour). Try again in %d minutes.",
			m.limiter.Limit(), minutes))
		return
	}

	// Target resolution happens after quota consumption: a !verify without a
	// mention still costs one unit of the window.
	if len(msg.Mentions) == 0 {
		m.reply(s, msg, "Please mention a user to verify.")
		return
	}
	target := models.NewAccountSnapshot(msg.Mentions[0])

	verdict := m.evaluator.Evaluate(target)
	embed := verificationEmbed(target, verdict, quota, m.limiter.Limit())

	surface, err := m.actions.PresentDecisionSurface(msg.GuildID, msg.ChannelID, msg.Reference(), embed, target.ID)
	if err != nil {
		log.Printf("Could not present verification of %s: %v", target.Tag(), err)
		utils.Error("moderation", "verify", "Could not present decision surface: "+err.Error())
		return
	}

	session := verify.NewSession(target, author, verdict.Reasons, surface, m.actions, m.sink)
	m.registry.Add(surface.MessageID, session)
	session.StartTimeout(m.sessionTimeout)

	log.Printf("Verification of %s opened by %s (remaining quota: %s)",
		target.Tag(), author.Tag(), remainingDisplay(quota, m.limiter.Limit()))
}

func (m *Moderation) reply(s *discordgo.Session, msg *discordgo.MessageCreate, content string) {
	if _, err := s.ChannelMessageSendReply(msg.ChannelID, content, msg.Reference()); err != nil {
		log.Printf("Could not reply in channel %s: %v", msg.ChannelID, err)
	}
}

func verificationEmbed(target models.AccountSnapshot, verdict suspicion.Verdict, quota ratelimit.Result, limit int) *discordgo.MessageEmbed {
	color := 0x00ff00
	description := "✅ Account looks clean"
	if verdict.IsSuspicious() {
		color = 0xff0000
		description = "⚠️ Suspicious account detected"
	}

	embed := &discordgo.MessageEmbed{
		Color:       color,
		Title:       "Verification of " + target.Tag(),
		Description: description,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Member",
				Value:  fmt.Sprintf("%s (%s)", target.Tag(), target.ID),
				Inline: true,
			},
			{
				Name:   "Account created",
				Value:  fmt.Sprintf("<t:%d:R>", target.CreatedAt.Unix()),
				Inline: true,
			},
			{
				Name:   "Verifications left",
				Value:  remainingDisplay(quota, limit),
				Inline: true,
			},
		},
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: target.AvatarURL},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if verdict.IsSuspicious() {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Reasons",
			Value: strings.Join(verdict.Reasons, "\n"),
		})
	}
	return embed
}

func remainingDisplay(quota ratelimit.Result, limit int) string {
	if quota.Unlimited {
		return "∞"
	}
	return fmt.Sprintf("%d/%d", quota.Remaining, limit)
}
