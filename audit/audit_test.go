package audit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentry-bot/models"
)

type fakeStore struct {
	events []Event
	err    error
}

func (s *fakeStore) Insert(event Event) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

type fakeNotifier struct {
	events []Event
	err    error
}

func (n *fakeNotifier) Notify(event Event) error {
	if n.err != nil {
		return n.err
	}
	n.events = append(n.events, event)
	return nil
}

func testEvent(eventType EventType) Event {
	return Event{
		Type:    eventType,
		GuildID: "guild",
		Target:  models.AccountSnapshot{ID: "1", Username: "target", Discriminator: "0001"},
		Actor:   models.AccountSnapshot{ID: "2", Username: "mod", Discriminator: "0002"},
		Reasons: []string{"no custom avatar"},
	}
}

func TestRecordPersistsAndNotifies(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	logger := NewLogger(store, notifier)

	require.NoError(t, logger.Record(testEvent(EventBan)))

	require.Len(t, store.events, 1)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, EventBan, store.events[0].Type)
	assert.False(t, store.events[0].At.IsZero(), "Record should stamp the event")
}

func TestRecordSurvivesNotifierFailure(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{err: errors.New("no modlog channel")}
	logger := NewLogger(store, notifier)

	// Persistence must succeed independently of notification availability.
	require.NoError(t, logger.Record(testEvent(EventSuspect)))
	assert.Len(t, store.events, 1)
}

func TestRecordWithoutNotifier(t *testing.T) {
	store := &fakeStore{}
	logger := NewLogger(store, nil)

	require.NoError(t, logger.Record(testEvent(EventVerify)))
	assert.Len(t, store.events, 1)
}

func TestRecordStoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("disk full")}
	notifier := &fakeNotifier{}
	logger := NewLogger(store, notifier)

	err := logger.Record(testEvent(EventBan))
	require.Error(t, err)
	// No notification for an event that was never persisted.
	assert.Empty(t, notifier.events)
}

func TestRecordKeepsExplicitTimestamp(t *testing.T) {
	store := &fakeStore{}
	logger := NewLogger(store, nil)

	at := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	event := testEvent(EventBan)
	event.At = at

	require.NoError(t, logger.Record(event))
	assert.Equal(t, at, store.events[0].At)
}

func TestEventEmbed(t *testing.T) {
	event := testEvent(EventBan)
	event.At = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	embed := eventEmbed(event)
	assert.Equal(t, 0xff0000, embed.Color)
	assert.Equal(t, "❌ Member banned", embed.Title)
	assert.Contains(t, embed.Description, "target#0001")
	assert.Contains(t, embed.Description, "mod#0002")
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "Reasons", embed.Fields[2].Name)
	assert.Equal(t, "no custom avatar", embed.Fields[2].Value)
}

func TestEventEmbedNoReasons(t *testing.T) {
	event := testEvent(EventVerify)
	event.Reasons = nil

	embed := eventEmbed(event)
	assert.Equal(t, "✅ Account verified", embed.Title)
	assert.Len(t, embed.Fields, 2)
}
