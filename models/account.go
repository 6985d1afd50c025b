package models

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// AccountSnapshot is a point-in-time view of a Discord account. It is taken once
// per evaluation and never mutated afterwards.
type AccountSnapshot struct {
	ID            string
	Username      string
	Discriminator string
	AvatarURL     string
	HasAvatar     bool
	IsBot         bool
	CreatedAt     time.Time
}

// Tag returns the canonical username#discriminator form of the account.
func (a AccountSnapshot) Tag() string {
	return a.Username + "#" + a.Discriminator
}

// NewAccountSnapshot captures the fields of a user that the moderation rules
// look at. The creation time is recovered from the snowflake ID.
func NewAccountSnapshot(u *discordgo.User) AccountSnapshot {
	createdAt, err := discordgo.SnowflakeTimestamp(u.ID)
	if err != nil {
		createdAt = time.Time{}
	}
	return AccountSnapshot{
		ID:            u.ID,
		Username:      u.Username,
		Discriminator: u.Discriminator,
		AvatarURL:     u.AvatarURL(""),
		HasAvatar:     u.Avatar != "",
		IsBot:         u.Bot,
		CreatedAt:     createdAt,
	}
}
