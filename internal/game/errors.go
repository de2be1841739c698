package game

import "errors"

// Sentinel errors returned by table operations. Callers match them with
// errors.Is; the server layer maps them onto stable wire error codes.
var (
	// ErrSeatOccupied means the requested seat already holds a player, or
	// the player already holds a seat at this table.
	ErrSeatOccupied = errors.New("seat occupied")

	// ErrInvalidSeat means the seat index is outside the table's range.
	ErrInvalidSeat = errors.New("invalid seat")

	// ErrPlayerNotSeated means the player holds no seat at this table.
	ErrPlayerNotSeated = errors.New("player not seated")

	// ErrWrongPhase means the operation is not legal in the table's
	// current phase.
	ErrWrongPhase = errors.New("wrong phase")

	// ErrNotYourTurn means the player is seated but not on the clock.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrPlayerCannotAct means the player's status keeps them out of the
	// action, such as sitting out, folded, all-in or eliminated.
	ErrPlayerCannotAct = errors.New("player cannot act")

	// ErrInsufficientChips means a bet or raise exceeds the player's stack.
	ErrInsufficientChips = errors.New("insufficient chips")

	// ErrInvalidCardCount means a deal carried the wrong number of cards
	// or covered too few players.
	ErrInvalidCardCount = errors.New("invalid card count")

	// ErrUnknownPlayer means no seated player matches the given id.
	ErrUnknownPlayer = errors.New("unknown player")
)
