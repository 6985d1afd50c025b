package verify

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sentry-bot/audit"
	"sentry-bot/models"
	"sentry-bot/suspicion"
)

var (
	testBot      = models.AccountSnapshot{ID: "666", Username: "FreeNitroGenerator", Discriminator: "1234", IsBot: true}
	testReporter = models.AccountSnapshot{ID: "1", Username: "sentry", Discriminator: "0000", IsBot: true}
)

func TestAutoBanFiresAfterDelay(t *testing.T) {
	actions := &fakeActions{mod: testMod}
	sink := &fakeSink{}
	autoban := NewAutoBan(actions, sink, 50*time.Millisecond)

	autoban.Schedule("guild", testBot, testReporter)

	// Not before the delay has elapsed.
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, actions.banCount())

	assert.Eventually(t, func() bool {
		return actions.banCount() == 1
	}, time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		return actions.dmCount() == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{testMod.ID}, actions.dms)

	events := sink.recorded()
	if assert.Len(t, events, 1) {
		assert.Equal(t, audit.EventBan, events[0].Type)
		assert.Equal(t, []string{suspicion.ReasonMaliciousBot}, events[0].Reasons)
		assert.Equal(t, testReporter, events[0].Actor)
	}
}

func TestAutoBanFiresExactlyOncePerSchedule(t *testing.T) {
	actions := &fakeActions{mod: testMod}
	sink := &fakeSink{}
	autoban := NewAutoBan(actions, sink, 10*time.Millisecond)

	autoban.Schedule("guild", testBot, testReporter)

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, actions.banCount())
	assert.Equal(t, 1, actions.dmCount())
}

func TestAutoBanBanFailureIsTerminal(t *testing.T) {
	actions := &fakeActions{banErr: errors.New("missing permissions"), mod: testMod}
	sink := &fakeSink{}
	autoban := NewAutoBan(actions, sink, 10*time.Millisecond)

	autoban.Schedule("guild", testBot, testReporter)

	time.Sleep(150 * time.Millisecond)
	// No retry, no audit event, no notification for a ban that never happened.
	assert.Zero(t, actions.banCount())
	assert.Zero(t, actions.dmCount())
	assert.Empty(t, sink.recorded())
}

func TestAutoBanWithoutModeratorStillBans(t *testing.T) {
	actions := &fakeActions{modErr: errors.New("nobody holds Ban Members")}
	sink := &fakeSink{}
	autoban := NewAutoBan(actions, sink, 10*time.Millisecond)

	autoban.Schedule("guild", testBot, testReporter)

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, actions.banCount())
	assert.Zero(t, actions.dmCount())
	assert.Len(t, sink.recorded(), 1)
}

func TestAutoBanDMFailureIsSwallowed(t *testing.T) {
	actions := &fakeActions{dmErr: errors.New("DMs closed"), mod: testMod}
	sink := &fakeSink{}
	autoban := NewAutoBan(actions, sink, 10*time.Millisecond)

	autoban.Schedule("guild", testBot, testReporter)

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, actions.banCount())
	assert.Len(t, sink.recorded(), 1)
}
