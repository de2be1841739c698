package game

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardroom/cardroom/internal/deck"
)

// eventSink forwards events to a channel so tests can wait on them
type eventSink struct {
	ch chan Event
}

func newEventSink() *eventSink {
	return &eventSink{ch: make(chan Event, 256)}
}

func (s *eventSink) OnEvent(event Event) {
	select {
	case s.ch <- event:
	default:
	}
}

func waitForEvent(t *testing.T, sink *eventSink, et EventType) Event {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case e := <-sink.ch:
			if e.EventType() == et {
				return e
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", et)
			return nil
		}
	}
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestEngineIdleUntilEnoughPlayers(t *testing.T) {
	table, err := NewTable("tbl1", "test", 6, BlindLevel{Small: 5, Big: 10})
	require.NoError(t, err)

	engine := NewEngine(table, testLogger(),
		WithDeck(deck.NewSeededDeck(42)),
		WithBlindTimeout(10*time.Millisecond),
		WithDecisionTimeout(10*time.Millisecond))
	engine.Start()
	defer engine.Stop()

	assert.Equal(t, StateIdle, engine.State())

	require.NoError(t, table.SitIn(NewPlayer("alice", "Alice", 1000), 0))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StateIdle, engine.State())

	require.NoError(t, table.SitIn(NewPlayer("bob", "Bob", 1000), 1))
	require.Eventually(t, func() bool {
		return engine.State() == StateRunning
	}, 2*time.Second, 10*time.Millisecond)
}

// With equal blinds every decision timeout defaults to a check, so the
// engine walks a full unattended hand through showdown.
func TestEnginePlaysHandToShowdown(t *testing.T) {
	table, err := NewTable("tbl1", "test", 6, BlindLevel{Small: 5, Big: 5})
	require.NoError(t, err)

	sink := newEventSink()
	table.Subscribe(sink)

	engine := NewEngine(table, testLogger(),
		WithDeck(deck.NewSeededDeck(42)),
		WithBlindTimeout(10*time.Millisecond),
		WithDecisionTimeout(10*time.Millisecond))
	engine.Start()
	defer engine.Stop()

	alice := NewPlayer("alice", "Alice", 1000)
	bob := NewPlayer("bob", "Bob", 1000)
	require.NoError(t, table.SitIn(alice, 0))
	require.NoError(t, table.SitIn(bob, 1))

	dealt := waitForEvent(t, sink, EventTypeHoleCardsDealt).(HoleCardsDealtEvent)
	assert.Len(t, dealt.Holes, 2)

	flop := waitForEvent(t, sink, EventTypeFlopDealt).(FlopDealtEvent)
	assert.Len(t, flop.Cards, 3)
	waitForEvent(t, sink, EventTypeTurnDealt)
	waitForEvent(t, sink, EventTypeRiverDealt)

	// with two players left at the river both hands are shown
	waitForEvent(t, sink, EventTypeHoleCardsShown)

	ended := waitForEvent(t, sink, EventTypeHandEnded).(HandEndedEvent)
	assert.Equal(t, 10, ended.Pot)
}

func TestEngineHaltsWhenOccupancyDrops(t *testing.T) {
	table, err := NewTable("tbl1", "test", 6, BlindLevel{Small: 5, Big: 5})
	require.NoError(t, err)

	sink := newEventSink()
	table.Subscribe(sink)

	engine := NewEngine(table, testLogger(),
		WithDeck(deck.NewSeededDeck(42)),
		WithBlindTimeout(10*time.Millisecond),
		WithDecisionTimeout(10*time.Millisecond))
	engine.Start()
	defer engine.Stop()

	alice := NewPlayer("alice", "Alice", 1000)
	bob := NewPlayer("bob", "Bob", 1000)
	require.NoError(t, table.SitIn(alice, 0))
	require.NoError(t, table.SitIn(bob, 1))

	waitForEvent(t, sink, EventTypeHandEnded)

	require.NoError(t, table.SitOut(bob))
	require.Eventually(t, func() bool {
		return engine.State() == StateIdle
	}, 5*time.Second, 10*time.Millisecond)

	// the halted table is quiescent between hands
	assert.Equal(t, PhaseWaiting, table.Phase())
	assert.Equal(t, 0, table.Pot())
}

// Drives the default timeouts with a mock clock: both blinds are posted
// for their players after the one second window, and the small blind,
// facing the bigger forced bet, folds on decision timeout.
func TestEngineForcedBlindsAndTimeoutFold(t *testing.T) {
	table, err := NewTable("tbl1", "test", 6, BlindLevel{Small: 5, Big: 10})
	require.NoError(t, err)

	sink := newEventSink()
	table.Subscribe(sink)

	mockClock := quartz.NewMock(t)
	trap := mockClock.Trap().AfterFunc()

	engine := NewEngine(table, testLogger(),
		WithClock(mockClock),
		WithDeck(deck.NewSeededDeck(42)))
	engine.Start()
	defer engine.Stop()
	// closing the trap first unblocks the worker so Stop can finish
	defer trap.Close()

	require.NoError(t, table.SitIn(NewPlayer("alice", "Alice", 1000), 0))
	require.NoError(t, table.SitIn(NewPlayer("bob", "Bob", 1000), 1))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// heads-up the button is the big blind, so bob at seat 1 posts the
	// small blind first
	call := trap.MustWait(ctx)
	call.MustRelease(ctx)
	mockClock.Advance(DefaultBlindTimeout).MustWait(ctx)
	bet := waitForEvent(t, sink, EventTypePlayerBet).(PlayerBetEvent)
	assert.Equal(t, 1, bet.Seat)
	assert.Equal(t, 5, bet.Chips)

	call = trap.MustWait(ctx)
	call.MustRelease(ctx)
	mockClock.Advance(DefaultBlindTimeout).MustWait(ctx)
	bet = waitForEvent(t, sink, EventTypePlayerBet).(PlayerBetEvent)
	assert.Equal(t, 0, bet.Seat)
	assert.Equal(t, 10, bet.Chips)

	// pre-flop action is on the small blind, who faces the bigger forced
	// bet and folds when the decision window expires
	active := waitForEvent(t, sink, EventTypeActivePlayerSet).(ActivePlayerSetEvent)
	assert.Equal(t, 1, active.Seat)
	assert.Equal(t, StatusMustCallOrRaise, active.Obligation)

	call = trap.MustWait(ctx)
	call.MustRelease(ctx)
	mockClock.Advance(DefaultDecisionTimeout).MustWait(ctx)

	folded := waitForEvent(t, sink, EventTypePlayerFolded).(PlayerFoldedEvent)
	assert.Equal(t, 1, folded.Seat)

	ended := waitForEvent(t, sink, EventTypeHandEnded).(HandEndedEvent)
	assert.Equal(t, 15, ended.Pot)
}

// A raise from the recorded closing seat, like the big blind raising
// their option, must push the closer back behind the raiser so the other
// players get to respond.
func TestRaiseFromClosingSeatReopensBetting(t *testing.T) {
	table, err := NewTable("tbl1", "test", 6, BlindLevel{Small: 5, Big: 10})
	require.NoError(t, err)

	engine := NewEngine(table, testLogger())

	a := NewPlayer("a", "A", 1000)
	b := NewPlayer("b", "B", 1000)
	c := NewPlayer("c", "C", 1000)
	require.NoError(t, table.SitIn(a, 0))
	require.NoError(t, table.SitIn(b, 1))
	require.NoError(t, table.SitIn(c, 2))

	require.NoError(t, table.SetLastToAct(c))
	require.NoError(t, table.SetActivePlayer(c, 15))
	require.NoError(t, table.Raise(c, 20))

	engine.reopenBetting(2)

	assert.Equal(t, 1, table.LastToActSeat())
	next, ok := table.NextActingSeatAfter(2)
	require.True(t, ok)
	assert.Equal(t, 0, next)
}

// Answering the blind window with a check does not excuse the blind; the
// engine posts the shortfall after the wait.
func TestBlindPostedDespiteCheckAnswer(t *testing.T) {
	table, err := NewTable("tbl1", "test", 6, BlindLevel{Small: 5, Big: 10})
	require.NoError(t, err)

	engine := NewEngine(table, testLogger(), WithBlindTimeout(time.Second))

	alice := NewPlayer("alice", "Alice", 1000)
	bob := NewPlayer("bob", "Bob", 1000)
	require.NoError(t, table.SitIn(alice, 0))
	require.NoError(t, table.SitIn(bob, 1))

	done := make(chan struct{})
	go func() {
		defer close(done)
		engine.collectBlind(1, 5)
	}()

	require.Eventually(t, func() bool {
		return table.ActiveSeat() == 1
	}, 2*time.Second, time.Millisecond)
	require.NoError(t, table.Check(bob))
	<-done

	assert.Equal(t, 5, bob.Bet)
	assert.Equal(t, 995, bob.Chips)
}

// A dropped action signal makes the worker time out on a player who has
// already acted; the timeout default must leave the completed action alone.
func TestTimeoutDefaultSkipsPlayerWhoActed(t *testing.T) {
	table, err := NewTable("tbl1", "test", 6, BlindLevel{Small: 5, Big: 10})
	require.NoError(t, err)

	sink := newEventSink()
	table.Subscribe(sink)

	engine := NewEngine(table, testLogger())

	alice := NewPlayer("alice", "Alice", 1000)
	bob := NewPlayer("bob", "Bob", 1000)
	require.NoError(t, table.SitIn(alice, 0))
	require.NoError(t, table.SitIn(bob, 1))

	require.NoError(t, table.SetActivePlayer(bob, 15))
	require.NoError(t, table.Check(bob))

	engine.forceDefault(1)

	assert.Equal(t, StatusChecked, bob.Status)
	for {
		select {
		case e := <-sink.ch:
			assert.NotEqual(t, EventTypePlayerFolded, e.EventType())
			continue
		default:
		}
		break
	}
}
