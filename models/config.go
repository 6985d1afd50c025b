package models

import "time"

// ModerationConfig holds the moderation settings loaded from the "moderation"
// section of the configuration. All values are read once at startup and treated
// as immutable afterwards.
type ModerationConfig struct {
	// Admins lists moderator account IDs or tags that bypass the verification quota.
	Admins []string `mapstructure:"admins"`
	// AuthorizedBots lists bot tags (username#discriminator) exempt from the
	// malicious-bot heuristic.
	AuthorizedBots            []string `mapstructure:"authorizedBots"`
	VerificationLimit         int      `mapstructure:"verificationLimit"`
	VerificationWindowMinutes int      `mapstructure:"verificationWindowMinutes"`
	SessionTimeoutSeconds     int      `mapstructure:"sessionTimeoutSeconds"`
	AutobanDelaySeconds       int      `mapstructure:"autobanDelaySeconds"`
	// ModlogChannel is the name of the channel that receives audit notifications.
	ModlogChannel string `mapstructure:"modlogChannel"`
}

// Window returns the quota window as a duration.
func (c ModerationConfig) Window() time.Duration {
	return time.Duration(c.VerificationWindowMinutes) * time.Minute
}

// SessionTimeout returns the verification session timeout as a duration.
func (c ModerationConfig) SessionTimeout() time.Duration {
	return time.Duration(c.SessionTimeoutSeconds) * time.Second
}

// AutobanDelay returns the automatic-ban delay as a duration.
func (c ModerationConfig) AutobanDelay() time.Duration {
	return time.Duration(c.AutobanDelaySeconds) * time.Second
}
