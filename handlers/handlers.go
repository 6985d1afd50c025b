package handlers

import (
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"sentry-bot/audit"
	"sentry-bot/bot"
	"sentry-bot/config"
	"sentry-bot/database"
	"sentry-bot/platform"
	"sentry-bot/ratelimit"
	"sentry-bot/suspicion"
	"sentry-bot/utils"
	"sentry-bot/verify"
)

// Moderation bundles the long-lived moderation services shared by the gateway
// handlers: the heuristic evaluator, the per-moderator quota, the verification
// session registry, the auto-ban scheduler and the audit sink.
type Moderation struct {
	actions        *platform.Discord
	evaluator      *suspicion.Evaluator
	limiter        *ratelimit.Limiter
	registry       *verify.Registry
	autoban        *verify.AutoBan
	sink           audit.Sink
	sessionTimeout time.Duration
}

// NewModeration wires the moderation services from the loaded configuration.
func NewModeration(s *discordgo.Session, auditDB *database.AuditDB, registry *verify.Registry) (*Moderation, error) {
	cfg, err := config.Moderation()
	if err != nil {
		return nil, err
	}

	actions := platform.NewDiscord(s)
	sink := audit.NewLogger(auditDB, audit.NewChannelNotifier(s, actions, cfg.ModlogChannel))

	return &Moderation{
		actions:        actions,
		evaluator:      suspicion.NewEvaluator(cfg.AuthorizedBots),
		limiter:        ratelimit.NewLimiter(cfg.VerificationLimit, cfg.Window(), cfg.Admins),
		registry:       registry,
		autoban:        verify.NewAutoBan(actions, sink, cfg.AutobanDelay()),
		sink:           sink,
		sessionTimeout: cfg.SessionTimeout(),
	}, nil
}

// Register all handlers to the bot.
func Register(b *bot.Bot) {
	utils.InitLogger(b.Session)

	mod, err := NewModeration(b.Session, b.AuditDB, b.Registry)
	if err != nil {
		log.Fatalf("Failed to initialize moderation services: %v", err)
	}

	b.Session.AddHandler(mod.MemberAdd)
	b.Session.AddHandler(mod.MessageCreate)
	b.Session.AddHandler(mod.InteractionCreate)

	// Add a ready handler to log when the bot is connected.
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
}
