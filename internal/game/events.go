package game

import (
	"sync"
	"time"

	"github.com/cardroom/cardroom/internal/deck"
)

// EventType identifies a table event
type EventType string

const (
	EventTypePlayerSatIn       EventType = "player_sat_in"
	EventTypePlayerSatOut      EventType = "player_sat_out"
	EventTypePlayerLeft        EventType = "player_left"
	EventTypeHoleCardsDealt    EventType = "hole_cards_dealt"
	EventTypeFlopDealt         EventType = "flop_dealt"
	EventTypeTurnDealt         EventType = "turn_dealt"
	EventTypeRiverDealt        EventType = "river_dealt"
	EventTypeHandEnded         EventType = "hand_ended"
	EventTypeButtonMoved       EventType = "button_moved"
	EventTypeActivePlayerSet   EventType = "active_player_set"
	EventTypeLastToActSet      EventType = "last_to_act_set"
	EventTypeBlindLevelChanged EventType = "blind_level_changed"
	EventTypePlayerFolded      EventType = "player_folded"
	EventTypePlayerChecked     EventType = "player_checked"
	EventTypePlayerBet         EventType = "player_bet"
	EventTypePlayerRaised      EventType = "player_raised"
	EventTypeHoleCardsShown    EventType = "hole_cards_shown"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event is a state change that occurred on a table. Events are published
// in the exact order the operations that caused them were applied.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

type base struct {
	timestamp time.Time
}

func newBase() base {
	return base{timestamp: time.Now()}
}

func (b base) Timestamp() time.Time { return b.timestamp }

// PlayerSatInEvent is published when a player takes a seat
type PlayerSatInEvent struct {
	base
	Seat     int
	PlayerID string
	Name     string
	Chips    int
}

func (e PlayerSatInEvent) EventType() EventType { return EventTypePlayerSatIn }

// PlayerSatOutEvent is published when a player sits out
type PlayerSatOutEvent struct {
	base
	Seat     int
	PlayerID string
}

func (e PlayerSatOutEvent) EventType() EventType { return EventTypePlayerSatOut }

// PlayerLeftEvent is published when a player gives up a seat. Forfeited is
// the amount of committed chips swept into the pot on the way out.
type PlayerLeftEvent struct {
	base
	Seat      int
	PlayerID  string
	Forfeited int
}

func (e PlayerLeftEvent) EventType() EventType { return EventTypePlayerLeft }

// SeatCards pairs a player with their two hole cards
type SeatCards struct {
	PlayerID string
	Cards    [2]deck.Card
}

// HoleCardsDealtEvent is published when hole cards go out. The cards are
// carried per seat so subscribers can deliver them privately; broadcast
// consumers must not leak them to other players.
type HoleCardsDealtEvent struct {
	base
	Holes map[int]SeatCards
}

func (e HoleCardsDealtEvent) EventType() EventType { return EventTypeHoleCardsDealt }

// FlopDealtEvent is published when the first three community cards go out
type FlopDealtEvent struct {
	base
	Cards [3]deck.Card
}

func (e FlopDealtEvent) EventType() EventType { return EventTypeFlopDealt }

// TurnDealtEvent is published when the fourth community card goes out
type TurnDealtEvent struct {
	base
	Card deck.Card
}

func (e TurnDealtEvent) EventType() EventType { return EventTypeTurnDealt }

// RiverDealtEvent is published when the fifth community card goes out
type RiverDealtEvent struct {
	base
	Card deck.Card
}

func (e RiverDealtEvent) EventType() EventType { return EventTypeRiverDealt }

// HandEndedEvent is published after committed bets are swept and the board
// is cleared. Pot is the final pot size before it was reset.
type HandEndedEvent struct {
	base
	Pot int
}

func (e HandEndedEvent) EventType() EventType { return EventTypeHandEnded }

// ButtonMovedEvent is published when the dealer button is assigned
type ButtonMovedEvent struct {
	base
	Seat     int
	PlayerID string
}

func (e ButtonMovedEvent) EventType() EventType { return EventTypeButtonMoved }

// ActivePlayerSetEvent is published when a player is put on the clock
type ActivePlayerSetEvent struct {
	base
	Seat           int
	PlayerID       string
	TimeoutSeconds int
	Obligation     Status
}

func (e ActivePlayerSetEvent) EventType() EventType { return EventTypeActivePlayerSet }

// LastToActSetEvent is published when the betting round's closing player
// is recorded
type LastToActSetEvent struct {
	base
	Seat     int
	PlayerID string
}

func (e LastToActSetEvent) EventType() EventType { return EventTypeLastToActSet }

// BlindLevelChangedEvent is published when the table moves to new stakes
type BlindLevelChangedEvent struct {
	base
	Level BlindLevel
}

func (e BlindLevelChangedEvent) EventType() EventType { return EventTypeBlindLevelChanged }

// PlayerFoldedEvent is published when a player folds
type PlayerFoldedEvent struct {
	base
	Seat     int
	PlayerID string
}

func (e PlayerFoldedEvent) EventType() EventType { return EventTypePlayerFolded }

// PlayerCheckedEvent is published when a player checks
type PlayerCheckedEvent struct {
	base
	Seat     int
	PlayerID string
}

func (e PlayerCheckedEvent) EventType() EventType { return EventTypePlayerChecked }

// PlayerBetEvent is published when a player puts chips in, including
// forced blind postings
type PlayerBetEvent struct {
	base
	Seat     int
	PlayerID string
	Chips    int
}

func (e PlayerBetEvent) EventType() EventType { return EventTypePlayerBet }

// PlayerRaisedEvent is published when a player raises
type PlayerRaisedEvent struct {
	base
	Seat     int
	PlayerID string
	Chips    int
}

func (e PlayerRaisedEvent) EventType() EventType { return EventTypePlayerRaised }

// HoleCardsShownEvent is published when a player reveals their hole cards
type HoleCardsShownEvent struct {
	base
	Seat     int
	PlayerID string
	Cards    [2]deck.Card
}

func (e HoleCardsShownEvent) EventType() EventType { return EventTypeHoleCardsShown }

// Subscriber receives table events. OnEvent is invoked synchronously while
// the table lock is held, so implementations must not call back into the
// table; hand the event off to a channel or goroutine instead.
type Subscriber interface {
	OnEvent(event Event)
}

// Bus fans table events out to subscribers in registration order
type Bus struct {
	mu          sync.Mutex
	subscribers []Subscriber
}

// NewBus creates an empty event bus
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe adds a subscriber to receive events
func (b *Bus) Subscribe(subscriber Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events
func (b *Bus) Unsubscribe(subscriber Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subscribers {
		if sub == subscriber {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	subs := make([]Subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.Unlock()

	for _, subscriber := range subs {
		subscriber.OnEvent(event)
	}
}
