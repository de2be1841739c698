// Package account holds player bankrolls independent of any table. An
// account's id doubles as its login secret, so it never appears in
// table-scoped messages.
package account

import "errors"

// StartingChips is the bankroll granted to a freshly created account
const StartingChips = 10000

var (
	// ErrUnknownAccount is returned when an account id cannot be resolved
	ErrUnknownAccount = errors.New("unknown account")

	// ErrInsufficientFunds is returned when a debit would take the
	// bankroll below zero
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Account is a registered player's bankroll
type Account struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Chips    int    `json:"chips"`
}

// Store persists accounts. Implementations are safe for concurrent use.
type Store interface {
	// Create registers a new account with the starting bankroll
	Create(nickname string) (*Account, error)

	// Find returns the account with the given id
	Find(id string) (*Account, error)

	// All returns every account in the store
	All() ([]*Account, error)

	// SetNickname changes an account's display name
	SetNickname(id, nickname string) error

	// AdjustChips applies a delta to the bankroll and returns the new
	// balance. A debit below zero fails with ErrInsufficientFunds and
	// leaves the balance unchanged.
	AdjustChips(id string, delta int) (int, error)
}
