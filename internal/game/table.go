package game

import (
	"fmt"
	"sync"

	"github.com/cardroom/cardroom/internal/deck"
)

// Phase is the stage a table is in. A table sits in PhaseWaiting between
// hands; dealing hole cards starts a hand and each street advances the
// phase until EndHand returns it to PhaseWaiting.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhasePreFlop
	PhaseFlop
	PhaseTurn
	PhaseRiver
)

// String returns the string representation of a phase
func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhasePreFlop:
		return "pre_flop"
	case PhaseFlop:
		return "flop"
	case PhaseTurn:
		return "turn"
	case PhaseRiver:
		return "river"
	default:
		return "unknown"
	}
}

const (
	// MinSeats is the smallest playable table
	MinSeats = 2
	// MaxSeats is the largest supported table
	MaxSeats = 6
)

// Table is the authoritative state of a single poker table: the seats, the
// board, the pot and the dealer/active/last-to-act pointers. All mutating
// operations are atomic; each validates, applies, and publishes an event,
// so subscribers observe changes in exactly the order they were applied.
type Table struct {
	mu     sync.Mutex
	id     string
	name   string
	blinds BlindLevel
	seats  []*Player
	board  []deck.Card
	pot    int
	phase  Phase

	dealerSeat    int
	activeSeat    int
	lastToActSeat int

	bus *Bus
}

// NewTable creates a table with the given number of seats (2 to 6)
func NewTable(id, name string, seatCount int, blinds BlindLevel) (*Table, error) {
	if seatCount < MinSeats || seatCount > MaxSeats {
		return nil, fmt.Errorf("table must have between %d and %d seats, got %d: %w",
			MinSeats, MaxSeats, seatCount, ErrInvalidSeat)
	}

	return &Table{
		id:            id,
		name:          name,
		blinds:        blinds,
		seats:         make([]*Player, seatCount),
		board:         make([]deck.Card, 0, 5),
		phase:         PhaseWaiting,
		dealerSeat:    -1,
		activeSeat:    -1,
		lastToActSeat: -1,
		bus:           NewBus(),
	}, nil
}

// ID returns the table identifier
func (t *Table) ID() string { return t.id }

// Name returns the table's display name
func (t *Table) Name() string { return t.name }

// Capacity returns the number of seats
func (t *Table) Capacity() int { return len(t.seats) }

// Subscribe registers a subscriber for table events
func (t *Table) Subscribe(s Subscriber) { t.bus.Subscribe(s) }

// Unsubscribe removes a subscriber
func (t *Table) Unsubscribe(s Subscriber) { t.bus.Unsubscribe(s) }

// Phase returns the current phase
func (t *Table) Phase() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

// Blinds returns the current blind level
func (t *Table) Blinds() BlindLevel {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.blinds
}

// Pot returns the chips swept into the pot so far this hand
func (t *Table) Pot() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pot
}

// Board returns a copy of the community cards dealt so far
func (t *Table) Board() []deck.Card {
	t.mu.Lock()
	defer t.mu.Unlock()
	board := make([]deck.Card, len(t.board))
	copy(board, t.board)
	return board
}

// DealerSeat returns the seat holding the button, or -1
func (t *Table) DealerSeat() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dealerSeat
}

// ActiveSeat returns the seat currently on the clock, or -1
func (t *Table) ActiveSeat() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.activeSeat
}

// LastToActSeat returns the seat that closes the betting round, or -1
func (t *Table) LastToActSeat() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastToActSeat
}

// PlayerAt returns the player in the given seat, or nil
func (t *Table) PlayerAt(seat int) *Player {
	t.mu.Lock()
	defer t.mu.Unlock()
	if seat < 0 || seat >= len(t.seats) {
		return nil
	}
	return t.seats[seat]
}

// PlayerStatus returns the status of the player in the given seat
func (t *Table) PlayerStatus(seat int) (Status, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if seat < 0 || seat >= len(t.seats) || t.seats[seat] == nil {
		return 0, false
	}
	return t.seats[seat].Status, true
}

// PlayerStack returns the behind stack of the player in the given seat
func (t *Table) PlayerStack(seat int) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if seat < 0 || seat >= len(t.seats) || t.seats[seat] == nil {
		return 0, false
	}
	return t.seats[seat].Chips, true
}

// PlayerBet returns the chips the player in the given seat has committed
// to the current hand
func (t *Table) PlayerBet(seat int) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if seat < 0 || seat >= len(t.seats) || t.seats[seat] == nil {
		return 0, false
	}
	return t.seats[seat].Bet, true
}

// Seats returns a copy of the seat array; empty seats are nil
func (t *Table) Seats() []*Player {
	t.mu.Lock()
	defer t.mu.Unlock()
	seats := make([]*Player, len(t.seats))
	copy(seats, t.seats)
	return seats
}

// SeatOf returns the seat number of the given player, or -1
func (t *Table) SeatOf(playerID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	seat, err := t.seatOf(playerID)
	if err != nil {
		return -1
	}
	return seat
}

// ActivePlayerCount returns the number of seated players who are neither
// sitting out nor eliminated. The engine uses this for its start/halt
// occupancy checks.
func (t *Table) ActivePlayerCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	count := 0
	for _, p := range t.seats {
		if p != nil && p.Status != StatusSittingOut && p.Status != StatusEliminated {
			count++
		}
	}
	return count
}

// EligibleCount returns the number of seated players eligible to act in
// the current betting round
func (t *Table) EligibleCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	count := 0
	for _, p := range t.seats {
		if p != nil && p.CanActInRound() {
			count++
		}
	}
	return count
}

// InHandCount returns the number of players still holding cards
func (t *Table) InHandCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	count := 0
	for _, p := range t.seats {
		if p != nil && p.HasCards {
			count++
		}
	}
	return count
}

// DealableSeats returns the seats whose players receive hole cards when
// the next hand starts
func (t *Table) DealableSeats() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	var seats []int
	for i, p := range t.seats {
		if p != nil && p.Status.CanBeDealtIn() {
			seats = append(seats, i)
		}
	}
	return seats
}

// SitIn seats a player with their buy-in stack. During a running hand the
// player waits for the next hand to start.
func (t *Table) SitIn(p *Player, seat int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if seat < 0 || seat >= len(t.seats) {
		return fmt.Errorf("seat %d: %w", seat, ErrInvalidSeat)
	}
	if t.seats[seat] != nil {
		return fmt.Errorf("seat %d: %w", seat, ErrSeatOccupied)
	}
	if _, err := t.seatOf(p.ID); err == nil {
		return fmt.Errorf("player %s already seated: %w", p.ID, ErrSeatOccupied)
	}

	if t.phase == PhaseWaiting {
		p.Status = StatusWaiting
	} else {
		p.Status = StatusWaitingForNextHand
	}
	t.seats[seat] = p

	t.publish(PlayerSatInEvent{base: newBase(), Seat: seat, PlayerID: p.ID, Name: p.Name, Chips: p.Chips})
	return nil
}

// SitOut marks a player as sitting out. The seat stays reserved and any
// chips committed this hand remain in play until the hand ends.
func (t *Table) SitOut(p *Player) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	seat, err := t.seatOf(p.ID)
	if err != nil {
		return err
	}

	p.Status = StatusSittingOut
	t.publish(PlayerSatOutEvent{base: newBase(), Seat: seat, PlayerID: p.ID})
	return nil
}

// Leave removes a player from the table. Chips committed to the current
// hand are forfeited into the pot.
func (t *Table) Leave(p *Player) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	seat, err := t.seatOf(p.ID)
	if err != nil {
		return err
	}

	forfeited := p.Bet
	t.pot += p.Bet
	p.Bet = 0
	p.HoleCards = nil
	p.HasCards = false
	t.seats[seat] = nil

	t.publish(PlayerLeftEvent{base: newBase(), Seat: seat, PlayerID: p.ID, Forfeited: forfeited})
	return nil
}

// DealHoleCards gives each listed seat its two hole cards and moves the
// table into the pre-flop phase
func (t *Table) DealHoleCards(holes map[int][2]deck.Card) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase != PhaseWaiting {
		return fmt.Errorf("cannot deal hole cards in phase %s: %w", t.phase, ErrWrongPhase)
	}
	if len(holes) < MinSeats {
		return fmt.Errorf("need at least %d players to deal: %w", MinSeats, ErrInvalidCardCount)
	}

	eventHoles := make(map[int]SeatCards, len(holes))
	for seat, cards := range holes {
		if seat < 0 || seat >= len(t.seats) || t.seats[seat] == nil {
			return fmt.Errorf("seat %d: %w", seat, ErrPlayerNotSeated)
		}
		p := t.seats[seat]
		if !p.Status.CanBeDealtIn() {
			return fmt.Errorf("seat %d: %w", seat, ErrPlayerCannotAct)
		}
		p.HoleCards = []deck.Card{cards[0], cards[1]}
		p.HasCards = true
		eventHoles[seat] = SeatCards{PlayerID: p.ID, Cards: cards}
	}

	t.phase = PhasePreFlop
	t.publish(HoleCardsDealtEvent{base: newBase(), Holes: eventHoles})
	return nil
}

// DealFlop puts the first three community cards on the board
func (t *Table) DealFlop(c1, c2, c3 deck.Card) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase != PhasePreFlop {
		return fmt.Errorf("cannot deal flop in phase %s: %w", t.phase, ErrWrongPhase)
	}

	t.board = append(t.board, c1, c2, c3)
	t.phase = PhaseFlop
	t.resetStreetStatuses()
	t.publish(FlopDealtEvent{base: newBase(), Cards: [3]deck.Card{c1, c2, c3}})
	return nil
}

// DealTurn puts the fourth community card on the board
func (t *Table) DealTurn(c deck.Card) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase != PhaseFlop {
		return fmt.Errorf("cannot deal turn in phase %s: %w", t.phase, ErrWrongPhase)
	}

	t.board = append(t.board, c)
	t.phase = PhaseTurn
	t.resetStreetStatuses()
	t.publish(TurnDealtEvent{base: newBase(), Card: c})
	return nil
}

// DealRiver puts the fifth community card on the board
func (t *Table) DealRiver(c deck.Card) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase != PhaseTurn {
		return fmt.Errorf("cannot deal river in phase %s: %w", t.phase, ErrWrongPhase)
	}

	t.board = append(t.board, c)
	t.phase = PhaseRiver
	t.resetStreetStatuses()
	t.publish(RiverDealtEvent{base: newBase(), Card: c})
	return nil
}

// EndHand sweeps all committed bets into the pot, clears the board and
// hole cards, and returns the table to the waiting phase. Players with an
// empty stack are eliminated; everyone else is reset for the next hand.
func (t *Table) EndHand() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, p := range t.seats {
		if p == nil {
			continue
		}
		t.pot += p.Bet
		p.Bet = 0
		p.HoleCards = nil
		p.HasCards = false

		switch p.Status {
		case StatusSittingOut, StatusEliminated:
			// durable states persist across hands
		default:
			if p.Chips == 0 {
				p.Status = StatusEliminated
			} else {
				p.Status = StatusWaiting
			}
		}
	}

	total := t.pot
	t.pot = 0
	t.board = t.board[:0]
	t.activeSeat = -1
	t.lastToActSeat = -1
	t.phase = PhaseWaiting

	t.publish(HandEndedEvent{base: newBase(), Pot: total})
	return nil
}

// SetButton assigns the dealer button to the given player's seat
func (t *Table) SetButton(p *Player) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	seat, err := t.seatOf(p.ID)
	if err != nil {
		return err
	}

	t.dealerSeat = seat
	t.publish(ButtonMovedEvent{base: newBase(), Seat: seat, PlayerID: p.ID})
	return nil
}

// SetActivePlayer puts a player on the clock for the given number of
// seconds. The player's status records their obligation: facing an
// outstanding bet they must call or raise, otherwise check or bet.
func (t *Table) SetActivePlayer(p *Player, timeoutSeconds int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	seat, err := t.seatOf(p.ID)
	if err != nil {
		return err
	}
	if !p.CanActInRound() {
		return fmt.Errorf("player %s (%s): %w", p.ID, p.Status, ErrPlayerCannotAct)
	}

	obligation := StatusMustCheckOrBet
	if p.Bet < t.highestBet() {
		obligation = StatusMustCallOrRaise
	}
	p.Status = obligation
	t.activeSeat = seat

	t.publish(ActivePlayerSetEvent{
		base:           newBase(),
		Seat:           seat,
		PlayerID:       p.ID,
		TimeoutSeconds: timeoutSeconds,
		Obligation:     obligation,
	})
	return nil
}

// SetLastToAct records the player who closes the current betting round
func (t *Table) SetLastToAct(p *Player) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	seat, err := t.seatOf(p.ID)
	if err != nil {
		return err
	}

	t.lastToActSeat = seat
	t.publish(LastToActSetEvent{base: newBase(), Seat: seat, PlayerID: p.ID})
	return nil
}

// ChangeBlindLevel moves the table to new stakes between hands
func (t *Table) ChangeBlindLevel(level BlindLevel) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase != PhaseWaiting {
		return fmt.Errorf("cannot change blinds in phase %s: %w", t.phase, ErrWrongPhase)
	}

	t.blinds = level
	t.publish(BlindLevelChangedEvent{base: newBase(), Level: level})
	return nil
}

// Fold throws the active player's cards away
func (t *Table) Fold(p *Player) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	seat, err := t.actionGate(p)
	if err != nil {
		return err
	}

	p.Status = StatusFolded
	p.HoleCards = nil
	p.HasCards = false

	t.publish(PlayerFoldedEvent{base: newBase(), Seat: seat, PlayerID: p.ID})
	return nil
}

// Check passes the action without committing chips
func (t *Table) Check(p *Player) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	seat, err := t.actionGate(p)
	if err != nil {
		return err
	}

	p.Status = StatusChecked
	t.publish(PlayerCheckedEvent{base: newBase(), Seat: seat, PlayerID: p.ID})
	return nil
}

// Bet moves chips from the active player's stack into their committed bet.
// Blind postings and calls arrive through here as well; committing the
// whole stack puts the player all-in.
func (t *Table) Bet(p *Player, chips int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	seat, err := t.actionGate(p)
	if err != nil {
		return err
	}
	if chips > p.Chips {
		return fmt.Errorf("bet %d with stack %d: %w", chips, p.Chips, ErrInsufficientChips)
	}

	outstanding := t.highestBet()
	p.Chips -= chips
	p.Bet += chips
	switch {
	case p.Chips == 0:
		p.Status = StatusAllIn
	case outstanding > 0 && p.Bet == outstanding:
		p.Status = StatusCalled
	default:
		p.Status = StatusBet
	}

	t.publish(PlayerBetEvent{base: newBase(), Seat: seat, PlayerID: p.ID, Chips: chips})
	return nil
}

// Raise moves chips from the active player's stack into their committed
// bet, reopening the betting
func (t *Table) Raise(p *Player, chips int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	seat, err := t.actionGate(p)
	if err != nil {
		return err
	}
	if chips > p.Chips {
		return fmt.Errorf("raise %d with stack %d: %w", chips, p.Chips, ErrInsufficientChips)
	}

	p.Chips -= chips
	p.Bet += chips
	if p.Chips == 0 {
		p.Status = StatusAllIn
	} else {
		p.Status = StatusRaised
	}

	t.publish(PlayerRaisedEvent{base: newBase(), Seat: seat, PlayerID: p.ID, Chips: chips})
	return nil
}

// ShowHoleCards reveals a player's hole cards to the table
func (t *Table) ShowHoleCards(p *Player, c1, c2 deck.Card) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	seat, err := t.seatOf(p.ID)
	if err != nil {
		return err
	}

	p.HoleCards = []deck.Card{c1, c2}
	p.HasCards = true

	t.publish(HoleCardsShownEvent{base: newBase(), Seat: seat, PlayerID: p.ID, Cards: [2]deck.Card{c1, c2}})
	return nil
}

// NextActingSeatAfter finds the next seat after the given one whose player
// can act in the current round. It reports no seat when scanning from the
// recorded last-to-act seat, which is how a betting round terminates.
func (t *Table) NextActingSeatAfter(seat int) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.lastToActSeat >= 0 && seat == t.lastToActSeat {
		return -1, false
	}
	return t.scanForward(seat, (*Player).CanActInRound)
}

// PrevActingSeatBefore is the backward counterpart of NextActingSeatAfter
func (t *Table) PrevActingSeatBefore(seat int) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.lastToActSeat >= 0 && seat == t.lastToActSeat {
		return -1, false
	}
	return t.scanBackward(seat, (*Player).CanActInRound)
}

// FirstActingSeatAfter scans forward without the last-to-act guard. The
// engine uses it to pick the opening actor of a street.
func (t *Table) FirstActingSeatAfter(seat int) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scanForward(seat, (*Player).CanActInRound)
}

// LastActingSeatBefore scans backward without the last-to-act guard. The
// engine uses it to pick the seat that closes a street.
func (t *Table) LastActingSeatBefore(seat int) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scanBackward(seat, (*Player).CanActInRound)
}

// NextOccupiedSeatAfter finds the next seat holding a player who can be
// dealt into a hand, used to advance the dealer button
func (t *Table) NextOccupiedSeatAfter(seat int) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scanForward(seat, func(p *Player) bool {
		return p.Status != StatusSittingOut && p.Status != StatusEliminated
	})
}

// PromoteWaitingPlayers moves players who sat in mid-hand into the normal
// waiting state so the next hand includes them
func (t *Table) PromoteWaitingPlayers() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase != PhaseWaiting {
		return
	}
	for _, p := range t.seats {
		if p != nil && p.Status == StatusWaitingForNextHand {
			p.Status = StatusWaiting
		}
	}
}

// seatOf returns the seat of the player with the given id. Callers hold
// the table lock.
func (t *Table) seatOf(playerID string) (int, error) {
	for i, p := range t.seats {
		if p != nil && p.ID == playerID {
			return i, nil
		}
	}
	return -1, fmt.Errorf("player %s: %w", playerID, ErrPlayerNotSeated)
}

// actionGate validates a betting action: the player must be seated, on
// the clock, and able to act
func (t *Table) actionGate(p *Player) (int, error) {
	seat, err := t.seatOf(p.ID)
	if err != nil {
		return -1, err
	}
	if seat != t.activeSeat {
		return -1, fmt.Errorf("player %s at seat %d: %w", p.ID, seat, ErrNotYourTurn)
	}
	if !p.CanActInRound() {
		return -1, fmt.Errorf("player %s (%s): %w", p.ID, p.Status, ErrPlayerCannotAct)
	}
	return seat, nil
}

func (t *Table) scanForward(seat int, eligible func(*Player) bool) (int, bool) {
	n := len(t.seats)
	for i := 1; i <= n; i++ {
		idx := ((seat + i) % n + n) % n
		if p := t.seats[idx]; p != nil && eligible(p) {
			return idx, true
		}
	}
	return -1, false
}

func (t *Table) scanBackward(seat int, eligible func(*Player) bool) (int, bool) {
	n := len(t.seats)
	for i := 1; i <= n; i++ {
		idx := ((seat - i) % n + n) % n
		if p := t.seats[idx]; p != nil && eligible(p) {
			return idx, true
		}
	}
	return -1, false
}

// highestBet returns the largest committed bet at the table. Callers hold
// the table lock.
func (t *Table) highestBet() int {
	highest := 0
	for _, p := range t.seats {
		if p != nil && p.Bet > highest {
			highest = p.Bet
		}
	}
	return highest
}

// resetStreetStatuses returns every player still able to act to the
// waiting state when a new street opens. Callers hold the table lock.
func (t *Table) resetStreetStatuses() {
	for _, p := range t.seats {
		if p != nil && p.CanActInRound() {
			p.Status = StatusWaiting
		}
	}
}

func (t *Table) publish(event Event) {
	t.bus.Publish(event)
}
