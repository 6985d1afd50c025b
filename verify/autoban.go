package verify

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"sentry-bot/audit"
	"sentry-bot/models"
	"sentry-bot/suspicion"
	"sentry-bot/utils"
)

const autobanReason = "Malicious bot"

// AutoBan schedules unconditional delayed bans for bots flagged as malicious
// at join time. Tasks fire exactly once and are never cancelled; every failure
// is reported to the operational log and dropped.
type AutoBan struct {
	actions Actions
	sink    audit.Sink
	delay   time.Duration
}

// NewAutoBan creates the scheduler with the configured delay.
func NewAutoBan(actions Actions, sink audit.Sink, delay time.Duration) *AutoBan {
	return &AutoBan{actions: actions, sink: sink, delay: delay}
}

// Schedule arms a ban of the target after the configured delay. reporter is
// the bot's own account, used as the acting identity on the audit event.
func (a *AutoBan) Schedule(guildID string, target, reporter models.AccountSnapshot) {
	utils.Warn("autoban", "schedule",
		fmt.Sprintf("Malicious bot %s (%s) will be banned in %s", target.Tag(), target.ID, a.delay))
	time.AfterFunc(a.delay, func() {
		a.fire(guildID, target, reporter)
	})
}

func (a *AutoBan) fire(guildID string, target, reporter models.AccountSnapshot) {
	if err := a.actions.BanAccount(guildID, target.ID, autobanReason); err != nil {
		utils.Error("autoban", "ban",
			fmt.Sprintf("Could not ban %s (%s): %v", target.Tag(), target.ID, err))
		return
	}

	err := a.sink.Record(audit.Event{
		Type:    audit.EventBan,
		GuildID: guildID,
		Target:  target,
		Actor:   reporter,
		Reasons: []string{suspicion.ReasonMaliciousBot},
	})
	if err != nil {
		utils.Error("autoban", "audit",
			fmt.Sprintf("Could not record automatic ban of %s: %v", target.Tag(), err))
	}

	moderator, err := a.actions.FindBanCapableModerator(guildID)
	if err != nil {
		utils.Warn("autoban", "notify",
			fmt.Sprintf("No moderator to notify about the ban of %s: %v", target.Tag(), err))
		return
	}

	if err := a.actions.SendDirectMessage(moderator.ID, autobanEmbed(target, a.delay)); err != nil {
		utils.Warn("autoban", "notify",
			fmt.Sprintf("Could not DM %s about the ban of %s: %v", moderator.Tag(), target.Tag(), err))
	}
}

func autobanEmbed(target models.AccountSnapshot, delay time.Duration) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color: 0xff0000,
		Title: "⚠️ Malicious bot banned",
		Description: fmt.Sprintf("The bot %s was automatically banned after a %s delay.",
			target.Tag(), delay),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "ID", Value: target.ID, Inline: true},
			{Name: "Reason", Value: autobanReason, Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}
