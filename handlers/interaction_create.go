package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"sentry-bot/models"
	"sentry-bot/utils"
	"sentry-bot/verify"
)

// InteractionCreate routes ban/pardon button clicks to their verification
// session. Every actor is checked for the ban capability independently of who
// opened the verification; a denied click never touches the session.
func (m *Moderation) InteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	action, targetID, ok := strings.Cut(i.MessageComponentData().CustomID, "_")
	if !ok || (action != "ban" && action != "pardon") {
		return
	}
	if i.Member == nil || i.Member.User == nil || i.Message == nil {
		return
	}

	if !utils.CanDecideVerification(i.Member.Permissions) {
		respondEphemeral(s, i, "You do not have permission to use these buttons.")
		return
	}

	session, ok := m.registry.Get(i.Message.ID)
	if !ok {
		respondEphemeral(s, i, "This verification is no longer active.")
		return
	}

	actor := models.NewAccountSnapshot(i.Member.User)
	target := session.Target()

	switch action {
	case "ban":
		err := session.Ban(actor)
		switch {
		case err == nil:
			respondEphemeral(s, i, fmt.Sprintf("%s has been banned.", target.Tag()))
		case errors.Is(err, verify.ErrSessionClosed):
			respondEphemeral(s, i, "This verification has already been resolved.")
		default:
			log.Printf("Ban of %s (%s) by %s failed: %v", target.Tag(), targetID, actor.Tag(), err)
			respondEphemeral(s, i, "Failed to ban the member. You can try again.")
		}
	case "pardon":
		err := session.Pardon(actor)
		switch {
		case err == nil:
			respondEphemeral(s, i, fmt.Sprintf("%s has been pardoned.", target.Tag()))
		case errors.Is(err, verify.ErrSessionClosed):
			respondEphemeral(s, i, "This verification has already been resolved.")
		}
	}
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Could not respond to interaction: %v", err)
	}
}
