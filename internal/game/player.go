package game

import "github.com/cardroom/cardroom/internal/deck"

// Status describes what a seated player is currently doing. It covers both
// durable states (sitting out, eliminated) and the per-street action states
// that drive betting round bookkeeping.
type Status int

const (
	// StatusWaiting means the player is dealt in and has not yet acted
	// this street.
	StatusWaiting Status = iota

	// StatusWaitingForNextHand means the player sat in mid-hand and joins
	// play when the next hand starts.
	StatusWaitingForNextHand

	// StatusSittingOut means the player keeps the seat but is not dealt in.
	StatusSittingOut

	StatusChecked
	StatusCalled
	StatusBet
	StatusRaised
	StatusFolded

	// StatusAllIn means the player has committed their whole stack and
	// takes no further part in betting this hand.
	StatusAllIn

	// StatusMustCheckOrBet marks the active player when no outstanding
	// bet faces them. A decision timeout defaults to a check.
	StatusMustCheckOrBet

	// StatusMustCallOrRaise marks the active player when an outstanding
	// bet faces them. A decision timeout defaults to a fold.
	StatusMustCallOrRaise

	// StatusEliminated means the player has no chips left.
	StatusEliminated
)

// String returns the string representation of a status
func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusWaitingForNextHand:
		return "waiting_for_next_hand"
	case StatusSittingOut:
		return "sitting_out"
	case StatusChecked:
		return "checked"
	case StatusCalled:
		return "called"
	case StatusBet:
		return "bet"
	case StatusRaised:
		return "raised"
	case StatusFolded:
		return "folded"
	case StatusAllIn:
		return "all_in"
	case StatusMustCheckOrBet:
		return "must_check_or_bet"
	case StatusMustCallOrRaise:
		return "must_call_or_raise"
	case StatusEliminated:
		return "eliminated"
	default:
		return "unknown"
	}
}

// CanActInRound reports whether a player in this status participates in
// turn-order scans. Sitting out, folded, all-in and eliminated players are
// skipped, as are players waiting for the next hand.
func (s Status) CanActInRound() bool {
	switch s {
	case StatusSittingOut, StatusFolded, StatusAllIn, StatusEliminated, StatusWaitingForNextHand:
		return false
	default:
		return true
	}
}

// CanBeDealtIn reports whether a player in this status receives hole
// cards when a hand starts. Unlike CanActInRound this includes all-in
// players, who stay in the hand without acting.
func (s Status) CanBeDealtIn() bool {
	switch s {
	case StatusSittingOut, StatusEliminated, StatusWaitingForNextHand:
		return false
	default:
		return true
	}
}

// Player is a participant seated at a table. Chips is the behind stack;
// Bet is what the player has committed to the current hand but which has
// not yet been swept into the pot.
type Player struct {
	ID        string
	Name      string
	Chips     int
	Bet       int
	Status    Status
	HoleCards []deck.Card
	HasCards  bool
}

// NewPlayer creates a player with a starting stack
func NewPlayer(id, name string, chips int) *Player {
	return &Player{
		ID:     id,
		Name:   name,
		Chips:  chips,
		Status: StatusWaiting,
	}
}

// CanActInRound reports whether the player participates in turn-order scans
func (p *Player) CanActInRound() bool {
	return p.Status.CanActInRound()
}
