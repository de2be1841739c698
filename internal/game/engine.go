package game

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/cardroom/cardroom/internal/deck"
	"github.com/cardroom/cardroom/internal/hand"
)

const (
	// DefaultDecisionTimeout bounds how long the active player may think
	// before the engine acts for them
	DefaultDecisionTimeout = 15 * time.Second

	// DefaultBlindTimeout is the short window a player gets to post a
	// blind before it is posted for them
	DefaultBlindTimeout = 1 * time.Second
)

// State is the engine lifecycle state
type State int32

const (
	// StateIdle means no hand is running; the engine wakes when enough
	// players are seated
	StateIdle State = iota
	// StateRunning means the engine's worker is dealing hands
	StateRunning
)

// String returns the string representation of the engine state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

type sigKind int

const (
	sigSeated sigKind = iota
	sigAction
)

type engineSignal struct {
	kind sigKind
	seat int
	// reopen marks chip actions that move the closing seat back behind
	// the aggressor
	reopen bool
}

// Option configures an Engine
type Option func(*Engine)

// WithClock injects a clock, letting tests drive timeouts deterministically
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithDeck injects a deck, letting tests fix the deal order
func WithDeck(d *deck.Deck) Option {
	return func(e *Engine) { e.deck = d }
}

// WithDecisionTimeout overrides the per-decision time limit
func WithDecisionTimeout(d time.Duration) Option {
	return func(e *Engine) { e.decisionTimeout = d }
}

// WithBlindTimeout overrides the blind posting window
func WithBlindTimeout(d time.Duration) Option {
	return func(e *Engine) { e.blindTimeout = d }
}

// Engine drives a single table through hands: it assigns the button,
// collects blinds, deals streets and walks the betting order, waiting a
// bounded time for each decision. It owns the deck exclusively; players
// only ever see cards through table events.
//
// The engine runs one worker goroutine. It is idle until the table holds
// enough players, plays hands while it does, and finishes the hand in
// flight before halting when occupancy drops.
type Engine struct {
	table  *Table
	deck   *deck.Deck
	clock  quartz.Clock
	logger *log.Logger

	decisionTimeout time.Duration
	blindTimeout    time.Duration

	notify chan engineSignal
	state  atomic.Int32
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// holes keeps this hand's deals so the engine can reveal them at
	// showdown without reading player state unlocked
	holes map[int][2]deck.Card
}

// NewEngine creates an engine for the table and subscribes it to the
// table's events. Call Start to launch the worker.
func NewEngine(table *Table, logger *log.Logger, opts ...Option) *Engine {
	ctx, cancel := context.WithCancel(context.Background())

	e := &Engine{
		table:           table,
		deck:            deck.NewDeck(),
		clock:           quartz.NewReal(),
		logger:          logger.WithPrefix("engine").With("table", table.Name()),
		decisionTimeout: DefaultDecisionTimeout,
		blindTimeout:    DefaultBlindTimeout,
		notify:          make(chan engineSignal, 32),
		ctx:             ctx,
		cancel:          cancel,
		done:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	table.Subscribe(e)
	return e
}

// State returns the engine lifecycle state
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Start launches the engine worker
func (e *Engine) Start() {
	go e.loop()
}

// Stop shuts the engine down. The current decision wait is abandoned; no
// further table operations are issued.
func (e *Engine) Stop() {
	e.cancel()
	e.table.Unsubscribe(e)
	<-e.done
}

// OnEvent receives table events. It only forwards signals to the worker;
// it must never call back into the table because events are delivered
// with the table lock held.
func (e *Engine) OnEvent(event Event) {
	switch v := event.(type) {
	case PlayerSatInEvent:
		e.signal(engineSignal{kind: sigSeated})
	case PlayerFoldedEvent:
		e.signal(engineSignal{kind: sigAction, seat: v.Seat})
	case PlayerCheckedEvent:
		e.signal(engineSignal{kind: sigAction, seat: v.Seat})
	case PlayerBetEvent:
		e.signal(engineSignal{kind: sigAction, seat: v.Seat, reopen: true})
	case PlayerRaisedEvent:
		e.signal(engineSignal{kind: sigAction, seat: v.Seat, reopen: true})
	}
}

func (e *Engine) signal(sig engineSignal) {
	select {
	case e.notify <- sig:
	default:
		// worker is behind; dropping is safe because it rechecks the
		// active seat's status before forcing a timeout default
	}
}

func (e *Engine) loop() {
	defer close(e.done)

	for {
		select {
		case <-e.ctx.Done():
			return
		case sig := <-e.notify:
			if sig.kind != sigSeated {
				continue
			}
			if e.table.ActivePlayerCount() < MinSeats {
				continue
			}

			e.state.Store(int32(StateRunning))
			e.logger.Info("table starting", "players", e.table.ActivePlayerCount())
			e.run()
			e.state.Store(int32(StateIdle))
			e.logger.Info("table halted", "players", e.table.ActivePlayerCount())
		}
	}
}

// run plays hands until occupancy drops below the minimum or the engine
// is stopped
func (e *Engine) run() {
	for e.ctx.Err() == nil && e.table.ActivePlayerCount() >= MinSeats {
		if err := e.playHand(); err != nil {
			e.logger.Error("hand aborted", "error", err)
			return
		}
	}
}

func (e *Engine) playHand() error {
	t := e.table
	t.PromoteWaitingPlayers()

	dealerSeat, ok := t.NextOccupiedSeatAfter(t.DealerSeat())
	if !ok {
		return nil
	}
	if err := t.SetButton(t.PlayerAt(dealerSeat)); err != nil {
		return err
	}

	blinds := t.Blinds()
	sbSeat, ok := t.FirstActingSeatAfter(dealerSeat)
	if !ok {
		return nil
	}
	bbSeat, ok := t.FirstActingSeatAfter(sbSeat)
	if !ok {
		return nil
	}

	e.logger.Debug("hand starting", "dealer", dealerSeat, "sb", sbSeat, "bb", bbSeat, "stakes", blinds)

	e.collectBlind(sbSeat, blinds.Small)
	e.collectBlind(bbSeat, blinds.Big)

	if err := e.dealHoleCards(); err != nil {
		return err
	}

	// pre-flop: first to act is the seat after the big blind, and the
	// big blind closes the round
	e.bettingRound(bbSeat)

	type street struct {
		deal func() error
		name string
	}
	streets := []street{
		{e.dealFlop, "flop"},
		{e.dealTurn, "turn"},
		{e.dealRiver, "river"},
	}

	for _, s := range streets {
		if e.ctx.Err() != nil {
			return e.ctx.Err()
		}
		if t.InHandCount() <= 1 {
			break
		}
		if err := s.deal(); err != nil {
			return err
		}
		// post-flop action starts left of the button and the button
		// closes the round
		e.bettingRound(t.DealerSeat())
	}

	if e.ctx.Err() != nil {
		return e.ctx.Err()
	}

	e.showdown()
	return t.EndHand()
}

// collectBlind puts the player on a short clock to post the blind and
// posts whatever is still missing once the window closes
func (e *Engine) collectBlind(seat, amount int) {
	t := e.table
	p := t.PlayerAt(seat)
	if p == nil {
		return
	}

	if err := t.SetActivePlayer(p, int(e.blindTimeout/time.Second)); err != nil {
		e.logger.Warn("cannot collect blind", "seat", seat, "error", err)
		return
	}

	e.awaitAction(seat, e.blindTimeout)
	e.drainSignals()

	// whatever the player answered with, the blind must be in play; post
	// any shortfall for them
	committed, ok := t.PlayerBet(seat)
	if !ok || committed >= amount {
		return
	}
	status, ok := t.PlayerStatus(seat)
	if !ok || !status.CanActInRound() {
		return
	}
	stack, ok := t.PlayerStack(seat)
	if !ok {
		return
	}
	short := amount - committed
	if short > stack {
		short = stack
	}
	if err := t.Bet(p, short); err != nil {
		e.logger.Warn("forced blind failed", "seat", seat, "error", err)
	}
	e.drainSignals()
}

func (e *Engine) dealHoleCards() error {
	t := e.table
	e.deck.Reshuffle()

	e.holes = make(map[int][2]deck.Card)
	for _, seat := range t.DealableSeats() {
		cards, ok := e.deck.DrawN(2)
		if !ok {
			return errDeckExhausted
		}
		e.holes[seat] = [2]deck.Card{cards[0], cards[1]}
	}

	return t.DealHoleCards(e.holes)
}

func (e *Engine) dealFlop() error {
	e.deck.Draw() // burn
	cards, ok := e.deck.DrawN(3)
	if !ok {
		return errDeckExhausted
	}
	return e.table.DealFlop(cards[0], cards[1], cards[2])
}

func (e *Engine) dealTurn() error {
	e.deck.Draw() // burn
	card, ok := e.deck.Draw()
	if !ok {
		return errDeckExhausted
	}
	return e.table.DealTurn(card)
}

func (e *Engine) dealRiver() error {
	e.deck.Draw() // burn
	card, ok := e.deck.Draw()
	if !ok {
		return errDeckExhausted
	}
	return e.table.DealRiver(card)
}

// bettingRound walks the action clockwise starting after afterSeat until
// the scan reaches the closing seat or the hand collapses to one player
func (e *Engine) bettingRound(afterSeat int) {
	t := e.table

	if t.EligibleCount() < 2 {
		return
	}

	seat, ok := t.FirstActingSeatAfter(afterSeat)
	if !ok {
		return
	}
	if closer, ok := t.LastActingSeatBefore(seat); ok {
		if err := t.SetLastToAct(t.PlayerAt(closer)); err != nil {
			e.logger.Warn("cannot set closing seat", "seat", closer, "error", err)
		}
	}

	e.drainSignals()

	for e.ctx.Err() == nil {
		p := t.PlayerAt(seat)
		if p == nil {
			// seat emptied mid-round
			next, ok := t.NextActingSeatAfter(seat)
			if !ok {
				return
			}
			seat = next
			continue
		}

		if err := t.SetActivePlayer(p, int(e.decisionTimeout/time.Second)); err != nil {
			e.logger.Warn("skipping seat", "seat", seat, "error", err)
		} else if !e.awaitAction(seat, e.decisionTimeout) {
			e.forceDefault(seat)
		}

		if t.InHandCount() <= 1 {
			return
		}

		next, ok := t.NextActingSeatAfter(seat)
		if !ok {
			return
		}
		seat = next
	}
}

// awaitAction blocks until the player at seat acts, processing any
// betting-reopen bookkeeping on the way. Returns false on timeout or
// shutdown.
func (e *Engine) awaitAction(seat int, timeout time.Duration) bool {
	timedOut := make(chan struct{})
	timer := e.clock.AfterFunc(timeout, func() {
		close(timedOut)
	})
	defer timer.Stop()

	for {
		select {
		case sig := <-e.notify:
			if sig.kind != sigAction {
				continue
			}
			if sig.reopen {
				e.reopenBetting(sig.seat)
			}
			if sig.seat == seat {
				return true
			}

		case <-timedOut:
			return false

		case <-e.ctx.Done():
			return false
		}
	}
}

// reopenBetting moves the closing seat to just behind the player who put
// chips in, so everyone else gets to respond. The scan must be unguarded:
// the aggressor may be the recorded closer themselves, as when the big
// blind raises their option.
func (e *Engine) reopenBetting(seat int) {
	prev, ok := e.table.LastActingSeatBefore(seat)
	if !ok {
		return
	}
	p := e.table.PlayerAt(prev)
	if p == nil {
		return
	}
	if err := e.table.SetLastToAct(p); err != nil {
		e.logger.Warn("cannot move closing seat", "seat", prev, "error", err)
	}
}

// forceDefault acts for a player whose decision window expired: a player
// free to check checks, a player facing a bet folds
func (e *Engine) forceDefault(seat int) {
	t := e.table
	p := t.PlayerAt(seat)
	if p == nil {
		return
	}

	status, ok := t.PlayerStatus(seat)
	if !ok {
		return
	}
	if status != StatusMustCheckOrBet && status != StatusMustCallOrRaise {
		// the player acted but their signal was dropped; nothing to force
		return
	}

	var err error
	var action string
	if status == StatusMustCheckOrBet {
		action = "check"
		err = t.Check(p)
	} else {
		action = "fold"
		err = t.Fold(p)
	}

	if err != nil {
		e.logger.Warn("timeout default failed", "seat", seat, "action", action, "error", err)
	} else {
		e.logger.Info("decision timeout", "seat", seat, "action", action)
	}
	e.drainSignals()
}

// drainSignals consumes queued signals, applying reopen bookkeeping for
// any chip actions, so a stale signal can never satisfy a later wait
func (e *Engine) drainSignals() {
	for {
		select {
		case sig := <-e.notify:
			if sig.kind == sigAction && sig.reopen {
				e.reopenBetting(sig.seat)
			}
		default:
			return
		}
	}
}

// showdown reveals the remaining hands and logs their strength. Pot
// distribution is left to the account layer above; the table only sweeps
// bets into the pot.
func (e *Engine) showdown() {
	t := e.table
	if t.Phase() != PhaseRiver || t.InHandCount() < 2 {
		return
	}

	board := t.Board()
	for seat, hole := range e.holes {
		status, ok := t.PlayerStatus(seat)
		if !ok || !status.CanBeDealtIn() || status == StatusFolded {
			continue
		}
		p := t.PlayerAt(seat)
		if p == nil {
			continue
		}
		if err := t.ShowHoleCards(p, hole[0], hole[1]); err != nil {
			continue
		}

		cards := append([]deck.Card{hole[0], hole[1]}, board...)
		best, err := hand.Best(cards)
		if err != nil {
			e.logger.Error("showdown evaluation failed", "seat", seat, "error", err)
			continue
		}
		e.logger.Info("showdown", "seat", seat, "player", p.Name, "hand", best.String())
	}
}

var errDeckExhausted = errors.New("deck exhausted mid-hand")
