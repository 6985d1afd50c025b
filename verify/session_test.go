package verify

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentry-bot/audit"
	"sentry-bot/models"
	"sentry-bot/platform"
)

// fakeActions implements Actions for tests.
type fakeActions struct {
	mu sync.Mutex

	bans     []string
	banErr   error
	disables int

	dms    []string
	dmErr  error
	mod    models.AccountSnapshot
	modErr error
}

func (f *fakeActions) BanAccount(guildID, accountID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.banErr != nil {
		return f.banErr
	}
	f.bans = append(f.bans, accountID)
	return nil
}

func (f *fakeActions) DisableControls(surface platform.Surface) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disables++
	return nil
}

func (f *fakeActions) SendDirectMessage(accountID string, embed *discordgo.MessageEmbed) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dmErr != nil {
		return f.dmErr
	}
	f.dms = append(f.dms, accountID)
	return nil
}

func (f *fakeActions) FindBanCapableModerator(guildID string) (models.AccountSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.modErr != nil {
		return models.AccountSnapshot{}, f.modErr
	}
	return f.mod, nil
}

func (f *fakeActions) banCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bans)
}

func (f *fakeActions) disableCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disables
}

func (f *fakeActions) dmCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.dms)
}

// fakeSink implements audit.Sink for tests.
type fakeSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (f *fakeSink) Record(event audit.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeSink) recorded() []audit.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]audit.Event(nil), f.events...)
}

var (
	testTarget = models.AccountSnapshot{ID: "100", Username: "suspect", Discriminator: "0001"}
	testMod    = models.AccountSnapshot{ID: "200", Username: "mod", Discriminator: "0002"}
	testActor  = models.AccountSnapshot{ID: "300", Username: "clicker", Discriminator: "0003"}
)

func newTestSession(actions *fakeActions, sink *fakeSink, reasons []string) *Session {
	surface := platform.Surface{GuildID: "guild", ChannelID: "chan", MessageID: "msg", TargetID: testTarget.ID}
	return NewSession(testTarget, testMod, reasons, surface, actions, sink)
}

func TestSessionBan(t *testing.T) {
	actions := &fakeActions{}
	sink := &fakeSink{}
	reasons := []string{"no custom avatar"}
	session := newTestSession(actions, sink, reasons)

	require.NoError(t, session.Ban(testActor))

	assert.Equal(t, StateBanned, session.State())
	assert.Equal(t, []string{testTarget.ID}, actions.bans)
	assert.Equal(t, 1, actions.disableCount())

	events := sink.recorded()
	require.Len(t, events, 1)
	assert.Equal(t, audit.EventBan, events[0].Type)
	assert.Equal(t, reasons, events[0].Reasons)
	assert.Equal(t, testActor, events[0].Actor)
}

func TestSessionPardon(t *testing.T) {
	actions := &fakeActions{}
	sink := &fakeSink{}
	session := newTestSession(actions, sink, []string{"no custom avatar"})

	require.NoError(t, session.Pardon(testActor))

	assert.Equal(t, StatePardoned, session.State())
	assert.Zero(t, actions.banCount(), "pardon must not touch the platform")
	assert.Equal(t, 1, actions.disableCount())

	events := sink.recorded()
	require.Len(t, events, 1)
	assert.Equal(t, audit.EventVerify, events[0].Type)
	assert.Empty(t, events[0].Reasons)
}

func TestSessionSecondDecisionIsNoOp(t *testing.T) {
	actions := &fakeActions{}
	sink := &fakeSink{}
	session := newTestSession(actions, sink, nil)

	require.NoError(t, session.Ban(testActor))

	assert.ErrorIs(t, session.Pardon(testActor), ErrSessionClosed)
	assert.ErrorIs(t, session.Ban(testActor), ErrSessionClosed)

	assert.Equal(t, StateBanned, session.State())
	assert.Equal(t, 1, actions.banCount())
	assert.Len(t, sink.recorded(), 1, "no duplicate audit event")
}

func TestSessionBanFailureAllowsRetry(t *testing.T) {
	actions := &fakeActions{banErr: errors.New("missing permissions")}
	sink := &fakeSink{}
	session := newTestSession(actions, sink, nil)

	err := session.Ban(testActor)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionClosed)

	// The failed ban does not consume the terminal transition.
	assert.Equal(t, StateAwaitingDecision, session.State())
	assert.Empty(t, sink.recorded())

	actions.banErr = nil
	require.NoError(t, session.Ban(testActor))
	assert.Equal(t, StateBanned, session.State())
}

func TestSessionExpire(t *testing.T) {
	actions := &fakeActions{}
	sink := &fakeSink{}
	session := newTestSession(actions, sink, nil)

	session.Expire()

	assert.Equal(t, StateExpired, session.State())
	assert.Equal(t, 1, actions.disableCount())
	assert.Empty(t, sink.recorded(), "expiry records no audit event")

	assert.ErrorIs(t, session.Ban(testActor), ErrSessionClosed)
	assert.Zero(t, actions.banCount())
}

func TestSessionExpireAfterTerminalIsIdempotent(t *testing.T) {
	actions := &fakeActions{}
	sink := &fakeSink{}
	session := newTestSession(actions, sink, nil)

	require.NoError(t, session.Pardon(testActor))

	// The timeout always fires; it must not overwrite the terminal state.
	session.Expire()
	session.Expire()

	assert.Equal(t, StatePardoned, session.State())
	assert.Equal(t, 3, actions.disableCount())
	assert.Len(t, sink.recorded(), 1)
}

func TestSessionTimeout(t *testing.T) {
	actions := &fakeActions{}
	sink := &fakeSink{}
	session := newTestSession(actions, sink, nil)

	session.StartTimeout(20 * time.Millisecond)

	assert.Equal(t, StateAwaitingDecision, session.State())
	assert.Eventually(t, func() bool {
		return session.State() == StateExpired
	}, time.Second, 10*time.Millisecond)
}

func TestSessionConcurrentBanClicks(t *testing.T) {
	actions := &fakeActions{}
	sink := &fakeSink{}
	session := newTestSession(actions, sink, nil)

	const clicks = 10
	errs := make(chan error, clicks)
	var wg sync.WaitGroup
	for i := 0; i < clicks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- session.Ban(testActor)
		}()
	}
	wg.Wait()
	close(errs)

	succeeded, rejected := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrSessionClosed):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Exactly one click wins; the platform saw exactly one ban.
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, clicks-1, rejected)
	assert.Equal(t, 1, actions.banCount())
	assert.Len(t, sink.recorded(), 1)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "awaiting decision", StateAwaitingDecision.String())
	assert.Equal(t, "banned", StateBanned.String())
	assert.Equal(t, "pardoned", StatePardoned.String())
	assert.Equal(t, "expired", StateExpired.String())
}
