package utils

import "github.com/bwmarrin/discordgo"

// RequiredBotPermissions are the channel permissions the bot itself needs before
// it can run a verification: read the command, answer it, and execute a ban.
const RequiredBotPermissions = discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionBanMembers

// BotHasRequiredPermissions checks the bot's own capability set. Checked first;
// without it no verification session is ever created.
func BotHasRequiredPermissions(permissions int64) bool {
	return has(permissions, RequiredBotPermissions)
}

// CanInvokeVerification reports whether a member may issue the verify command.
// Kick Members is the minimum moderation capability required.
func CanInvokeVerification(permissions int64) bool {
	return has(permissions, discordgo.PermissionKickMembers)
}

// CanDecideVerification reports whether a member may click the ban/pardon
// controls of a verification. This is checked per click, independently of who
// invoked the verification.
func CanDecideVerification(permissions int64) bool {
	return has(permissions, discordgo.PermissionBanMembers)
}

func has(permissions, required int64) bool {
	return permissions&required == required
}
