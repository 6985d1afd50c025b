package audit

import (
	"fmt"
	"log"
	"time"

	"sentry-bot/models"
)

// EventType classifies a moderation event.
type EventType string

const (
	// EventVerify records a pardon decision on a verification.
	EventVerify EventType = "verify"
	// EventBan records a ban, manual or automatic.
	EventBan EventType = "ban"
	// EventSuspect records a suspicious account detected at join time.
	EventSuspect EventType = "suspect"
)

// Event is one moderation event to be audited.
type Event struct {
	Type    EventType
	GuildID string
	Target  models.AccountSnapshot
	Actor   models.AccountSnapshot
	Reasons []string
	At      time.Time
}

// Sink receives moderation events.
type Sink interface {
	Record(event Event) error
}

// Store persists audit events durably.
type Store interface {
	Insert(event Event) error
}

// Notifier delivers a best-effort human-readable copy of an event.
type Notifier interface {
	Notify(event Event) error
}

// Logger is the audit sink: every event is persisted through the store, then a
// notification is attempted. Persistence never depends on the notifier.
type Logger struct {
	store    Store
	notifier Notifier
}

// NewLogger creates the audit sink. notifier may be nil when no moderation-log
// channel is configured.
func NewLogger(store Store, notifier Notifier) *Logger {
	return &Logger{store: store, notifier: notifier}
}

// Record persists the event and attempts the channel notification. A failed or
// missing notification only produces a log line; the event is still recorded.
func (l *Logger) Record(event Event) error {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	if err := l.store.Insert(event); err != nil {
		return fmt.Errorf("persist audit event: %w", err)
	}

	if l.notifier != nil {
		if err := l.notifier.Notify(event); err != nil {
			log.Printf("audit: modlog notification skipped: %v", err)
		}
	}
	return nil
}
