package verify

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"sentry-bot/audit"
	"sentry-bot/models"
	"sentry-bot/platform"
)

// ErrSessionClosed is returned for any decision attempted after the session
// reached a terminal state.
var ErrSessionClosed = errors.New("verification session already resolved")

// State is the lifecycle state of a verification session.
type State int

const (
	StateAwaitingDecision State = iota
	StateBanned
	StatePardoned
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateAwaitingDecision:
		return "awaiting decision"
	case StateBanned:
		return "banned"
	case StatePardoned:
		return "pardoned"
	case StateExpired:
		return "expired"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Actions is the slice of the platform the verification workflow drives.
// *platform.Discord implements it; tests substitute fakes.
type Actions interface {
	BanAccount(guildID, accountID, reason string) error
	DisableControls(surface platform.Surface) error
	SendDirectMessage(accountID string, embed *discordgo.MessageEmbed) error
	FindBanCapableModerator(guildID string) (models.AccountSnapshot, error)
}

// Session owns one verification from decision presentation until a terminal
// state. All transitions run under one mutex, so two near-simultaneous clicks
// on the same session resolve to exactly one ban and one rejection.
type Session struct {
	mu    sync.Mutex
	state State

	target    models.AccountSnapshot
	requester models.AccountSnapshot
	reasons   []string
	createdAt time.Time
	surface   platform.Surface

	actions Actions
	sink    audit.Sink
}

// NewSession creates a session awaiting its decision. The caller has already
// passed the authorization gate, consumed quota and presented the surface.
func NewSession(target, requester models.AccountSnapshot, reasons []string, surface platform.Surface, actions Actions, sink audit.Sink) *Session {
	return &Session{
		state:     StateAwaitingDecision,
		target:    target,
		requester: requester,
		reasons:   reasons,
		createdAt: time.Now(),
		surface:   surface,
		actions:   actions,
		sink:      sink,
	}
}

// StartTimeout arms the session expiry. The timer is never cancelled; Expire
// tolerates firing after a terminal transition.
func (s *Session) StartTimeout(d time.Duration) {
	time.AfterFunc(d, s.Expire)
}

// Ban executes the ban decision. On platform failure the session stays in
// AwaitingDecision so another click can retry; the terminal transition is only
// consumed by a successful ban.
func (s *Session) Ban(actor models.AccountSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingDecision {
		return ErrSessionClosed
	}

	if err := s.actions.BanAccount(s.surface.GuildID, s.target.ID, "Suspicious account"); err != nil {
		return fmt.Errorf("ban %s: %w", s.target.Tag(), err)
	}

	s.state = StateBanned
	s.disableControlsLocked()
	s.recordLocked(audit.EventBan, actor, s.reasons)
	return nil
}

// Pardon resolves the session without any platform mutation and records a
// verify event.
func (s *Session) Pardon(actor models.AccountSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingDecision {
		return ErrSessionClosed
	}

	s.state = StatePardoned
	s.disableControlsLocked()
	s.recordLocked(audit.EventVerify, actor, nil)
	return nil
}

// Expire marks an undecided session as expired and disables its controls. It
// may race an already-completed terminal transition; in that case it only
// repeats the idempotent disable. No audit event is recorded.
func (s *Session) Expire() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateAwaitingDecision {
		s.state = StateExpired
	}
	s.disableControlsLocked()
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Resolved reports whether the session reached a terminal state.
func (s *Session) Resolved() bool {
	return s.State() != StateAwaitingDecision
}

// Target returns the account the session decides on.
func (s *Session) Target() models.AccountSnapshot {
	return s.target
}

// Reasons returns the verdict reasons computed at session creation.
func (s *Session) Reasons() []string {
	return s.reasons
}

func (s *Session) disableControlsLocked() {
	if err := s.actions.DisableControls(s.surface); err != nil {
		log.Printf("verify: could not disable controls for %s: %v", s.target.Tag(), err)
	}
}

func (s *Session) recordLocked(eventType audit.EventType, actor models.AccountSnapshot, reasons []string) {
	err := s.sink.Record(audit.Event{
		Type:    eventType,
		GuildID: s.surface.GuildID,
		Target:  s.target,
		Actor:   actor,
		Reasons: reasons,
	})
	if err != nil {
		log.Printf("verify: could not record %s event for %s: %v", eventType, s.target.Tag(), err)
	}
}
