package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-minigame-bot/internal/game"
	"telegram-minigame-bot/internal/game/handcricket"
	"telegram-minigame-bot/internal/game/rps"
)

func shortTimeouts(d time.Duration) map[game.Type]time.Duration {
	return map[game.Type]time.Duration{
		game.TypeRPS:         d,
		game.TypeTicTacToe:   d,
		game.TypeHandCricket: d,
	}
}

func newRPSMatch(t *testing.T, id1, id2 int64) game.Machine {
	t.Helper()
	m, err := rps.NewMatch(
		game.Player{ID: id1, Username: "p1"},
		game.Player{ID: id2, Username: "p2"},
	)
	require.NoError(t, err)
	return m
}

// TestCreateAndLookup tests basic lifecycle operations.
func TestCreateAndLookup(t *testing.T) {
	r := NewRegistry(nil)

	key, err := r.Create("match-1", newRPSMatch(t, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, "match-1", key)

	assert.True(t, r.IsActive(key))
	assert.Equal(t, 1, r.Len())

	view, ok := r.Peek(key)
	assert.True(t, ok)
	assert.NotEmpty(t, view)

	_, ok = r.Peek("no-such-key")
	assert.False(t, ok)
	assert.False(t, r.IsActive("no-such-key"))
}

// TestCreate_GeneratedKey tests that an empty key gets a UUID.
func TestCreate_GeneratedKey(t *testing.T) {
	r := NewRegistry(nil)

	key, err := r.Create("", newRPSMatch(t, 1, 2))
	require.NoError(t, err)
	assert.NotEmpty(t, key)
	assert.True(t, r.IsActive(key))
}

// TestCreate_KeyConflict tests the defensive duplicate-key check.
func TestCreate_KeyConflict(t *testing.T) {
	r := NewRegistry(nil)

	_, err := r.Create("dup", newRPSMatch(t, 1, 2))
	require.NoError(t, err)

	_, err = r.Create("dup", newRPSMatch(t, 3, 4))
	assert.ErrorIs(t, err, ErrKeyConflict)

	// The original session is untouched.
	assert.True(t, r.IsActive("dup"))
	assert.Equal(t, 1, r.Len())
}

// TestApplyAction_Lifecycle tests that a terminal move removes the session.
func TestApplyAction_Lifecycle(t *testing.T) {
	r := NewRegistry(nil)
	key, err := r.Create("", newRPSMatch(t, 1, 2))
	require.NoError(t, err)

	res := r.ApplyAction(key, 1, game.Action{Name: "choice", Value: "rock"})
	assert.Equal(t, game.StatusSuccess, res.Status)
	assert.True(t, r.IsActive(key))

	res = r.ApplyAction(key, 2, game.Action{Name: "choice", Value: "scissors"})
	assert.Equal(t, game.StatusGameOver, res.Status)
	assert.NotEmpty(t, res.Message)

	// Terminal state removes the session; follow-up actions see NotFound.
	assert.False(t, r.IsActive(key))
	assert.Equal(t, 0, r.Len())
	res = r.ApplyAction(key, 1, game.Action{Name: "choice", Value: "rock"})
	assert.Equal(t, game.StatusNotFound, res.Status)
}

// TestApplyAction_TerminalFiresOnFinish tests that completing a match
// through ApplyAction notifies the completion callback exactly once.
func TestApplyAction_TerminalFiresOnFinish(t *testing.T) {
	r := NewRegistry(nil)

	finished := make(chan string, 2)
	r.OnFinish(func(key string, m game.Machine) {
		fs, ok := m.Final()
		assert.True(t, ok)
		assert.Equal(t, int64(1), fs.WinnerID)
		finished <- key
	})

	key, err := r.Create("", newRPSMatch(t, 1, 2))
	require.NoError(t, err)

	r.ApplyAction(key, 1, game.Action{Name: "choice", Value: "rock"})
	r.ApplyAction(key, 2, game.Action{Name: "choice", Value: "scissors"})

	select {
	case got := <-finished:
		assert.Equal(t, key, got)
	default:
		t.Fatal("OnFinish was not called for a terminal action")
	}
	assert.Empty(t, finished)
}

// TestApplyAction_RejectionKeepsSession tests that a protocol violation
// leaves the session exactly as it was.
func TestApplyAction_RejectionKeepsSession(t *testing.T) {
	r := NewRegistry(nil)
	key, err := r.Create("", newRPSMatch(t, 1, 2))
	require.NoError(t, err)

	assert.Equal(t, game.StatusNotPlayerInGame,
		r.ApplyAction(key, 99, game.Action{Name: "choice", Value: "rock"}).Status)
	assert.Equal(t, game.StatusInvalidMove,
		r.ApplyAction(key, 1, game.Action{Name: "choice", Value: "lizard"}).Status)
	assert.True(t, r.IsActive(key))
}

// TestEviction tests that the timer removes an inactive session and
// reports it through the eviction callback.
func TestEviction(t *testing.T) {
	r := NewRegistry(shortTimeouts(30 * time.Millisecond))

	evicted := make(chan string, 1)
	r.OnEvict(func(key string, _ game.Machine) { evicted <- key })

	key, err := r.Create("", newRPSMatch(t, 1, 2))
	require.NoError(t, err)

	select {
	case got := <-evicted:
		assert.Equal(t, key, got)
	case <-time.After(2 * time.Second):
		t.Fatal("eviction timer never fired")
	}
	assert.False(t, r.IsActive(key))
	assert.Equal(t, game.StatusNotFound,
		r.ApplyAction(key, 1, game.Action{Name: "choice", Value: "rock"}).Status)
}

// TestEviction_CancelledByCompletion tests that finishing a match stops
// the timer so no eviction callback fires afterwards.
func TestEviction_CancelledByCompletion(t *testing.T) {
	r := NewRegistry(shortTimeouts(50 * time.Millisecond))

	evicted := make(chan string, 1)
	r.OnEvict(func(key string, _ game.Machine) { evicted <- key })

	key, err := r.Create("", newRPSMatch(t, 1, 2))
	require.NoError(t, err)

	r.ApplyAction(key, 1, game.Action{Name: "choice", Value: "rock"})
	res := r.ApplyAction(key, 2, game.Action{Name: "choice", Value: "paper"})
	require.Equal(t, game.StatusGameOver, res.Status)

	select {
	case key := <-evicted:
		t.Fatalf("completed session %s must not be evicted", key)
	case <-time.After(200 * time.Millisecond):
	}
}

// TestHandCricketTimerRefresh tests that successful Hand Cricket actions
// re-arm the eviction timer instead of keeping the creation-time deadline.
func TestHandCricketTimerRefresh(t *testing.T) {
	r := NewRegistry(shortTimeouts(120 * time.Millisecond))

	evicted := make(chan string, 1)
	r.OnEvict(func(key string, _ game.Machine) { evicted <- key })

	m, err := handcricket.NewMatch(
		game.Player{ID: 1, Username: "alice"},
		game.Player{ID: 2, Username: "bob"},
	)
	require.NoError(t, err)
	key, err := r.Create("", m)
	require.NoError(t, err)

	// Keep acting every 60ms; the session must survive well past the
	// 120ms creation deadline.
	actions := []game.Action{
		{Name: "parity", Value: "odd"},
		{Name: "tossnum", Number: 2},
		{Name: "tossnum", Number: 5},
		{Name: "batbowl", Value: "bat"},
	}
	actors := []int64{1, 1, 2, 1}
	for i, act := range actions {
		time.Sleep(60 * time.Millisecond)
		res := r.ApplyAction(key, actors[i], act)
		require.Equal(t, game.StatusSuccess, res.Status, "action %d", i)
	}
	assert.True(t, r.IsActive(key))

	// Stop acting: the refreshed timer eventually fires.
	select {
	case got := <-evicted:
		assert.Equal(t, key, got)
	case <-time.After(2 * time.Second):
		t.Fatal("refreshed timer never fired")
	}
}

// TestRemove_Idempotent tests that Remove is safe to repeat and to race
// with eviction.
func TestRemove_Idempotent(t *testing.T) {
	r := NewRegistry(shortTimeouts(30 * time.Millisecond))
	key, err := r.Create("", newRPSMatch(t, 1, 2))
	require.NoError(t, err)

	r.Remove(key)
	r.Remove(key)
	r.Remove("never-existed")
	assert.False(t, r.IsActive(key))

	// Let the already-armed timer fire against the removed session.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, r.Len())
}

// TestBotVsBotResolvesOffCreate tests that a session terminal at creation
// is observable as created and then resolves on a separate goroutine.
func TestBotVsBotResolvesOffCreate(t *testing.T) {
	r := NewRegistry(nil)

	finished := make(chan string, 1)
	r.OnFinish(func(key string, m game.Machine) {
		_, ok := m.Final()
		assert.True(t, ok)
		finished <- key
	})

	m, err := rps.NewMatch(
		game.Player{ID: -1, Username: "bot1", IsBot: true},
		game.Player{ID: -2, Username: "bot2", IsBot: true},
	)
	require.NoError(t, err)

	key, err := r.Create("", m)
	require.NoError(t, err)

	select {
	case got := <-finished:
		assert.Equal(t, key, got)
	case <-time.After(2 * time.Second):
		t.Fatal("bot-vs-bot match never resolved")
	}
	assert.False(t, r.IsActive(key))
}

// TestConcurrentSessionsDoNotBlock tests that actions on different keys
// proceed concurrently and every session resolves correctly.
func TestConcurrentSessionsDoNotBlock(t *testing.T) {
	r := NewRegistry(nil)

	const n = 64
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		key, err := r.Create("", newRPSMatch(t, int64(1000+i), int64(2000+i)))
		require.NoError(t, err)
		keys[i] = key
	}

	var wg sync.WaitGroup
	wg.Add(2 * n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			r.ApplyAction(keys[i], int64(1000+i), game.Action{Name: "choice", Value: "rock"})
		}(i)
		go func(i int) {
			defer wg.Done()
			r.ApplyAction(keys[i], int64(2000+i), game.Action{Name: "choice", Value: "scissors"})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, r.Len(), "all sessions must have completed and been removed")
}

// TestConcurrentRemoveAndApply tests the end-of-life race: whichever of
// completion and removal wins, the loser observes NotFound or a no-op.
func TestConcurrentRemoveAndApply(t *testing.T) {
	r := NewRegistry(nil)

	for i := 0; i < 50; i++ {
		key, err := r.Create("", newRPSMatch(t, 1, 2))
		require.NoError(t, err)
		r.ApplyAction(key, 1, game.Action{Name: "choice", Value: "rock"})

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			res := r.ApplyAction(key, 2, game.Action{Name: "choice", Value: "paper"})
			assert.Contains(t, []game.Status{game.StatusGameOver, game.StatusNotFound}, res.Status)
		}()
		go func() {
			defer wg.Done()
			r.Remove(key)
		}()
		wg.Wait()

		assert.False(t, r.IsActive(key))
	}
}
