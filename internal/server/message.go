package server

import (
	"encoding/json"
	"time"

	"github.com/cardroom/cardroom/internal/deck"
)

// Message is the envelope for every WebSocket frame in both directions
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// MessageType identifies the payload of a message
type MessageType string

const (
	MessageTypeError MessageType = "error"

	// account management
	MessageTypeCreateAccount MessageType = "create_account"
	MessageTypeLogin         MessageType = "login"
	MessageTypeAskBalance    MessageType = "ask_balance"
	MessageTypeChangeNick    MessageType = "change_nick"
	MessageTypeAccountInfo   MessageType = "account_info"

	// joining, sitting out and leaving
	MessageTypeSitIn  MessageType = "sit_in"
	MessageTypeSitOut MessageType = "sit_out"
	MessageTypeLeave  MessageType = "leave"

	// dealer actions, emitted by the table engine
	MessageTypeDealHoleCards    MessageType = "deal_hole_cards"
	MessageTypeDealFlop         MessageType = "deal_flop"
	MessageTypeDealTurn         MessageType = "deal_turn"
	MessageTypeDealRiver        MessageType = "deal_river"
	MessageTypeEndHand          MessageType = "end_hand"
	MessageTypeSetButton        MessageType = "set_button"
	MessageTypeSetActivePlayer  MessageType = "set_active_player"
	MessageTypeSetLastPlayer    MessageType = "set_last_player"
	MessageTypeChangeBlindLevel MessageType = "change_blind_level"

	// player actions
	MessageTypeFold          MessageType = "fold"
	MessageTypeCheck         MessageType = "check"
	MessageTypeBet           MessageType = "bet"
	MessageTypeRaise         MessageType = "raise"
	MessageTypeShowHoleCards MessageType = "show_hole_cards"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// ErrorData reports a failed operation back to the sender
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateAccountData registers a new account
type CreateAccountData struct {
	NickName string `json:"nickName"`
}

// LoginData resumes an existing account; the account id is the secret
type LoginData struct {
	AccountID string `json:"accountId"`
}

// ChangeNickData renames the sender's account
type ChangeNickData struct {
	NickName string `json:"nickName"`
}

// AccountInfoData reports account state to its owner
type AccountInfoData struct {
	AccountID string `json:"accountId"`
	NickName  string `json:"nickName"`
	Chips     int    `json:"chips"`
}

// SitInData requests a seat at a table. Chips is the buy-in; zero means
// the table's standard buy-in.
type SitInData struct {
	TableID  string `json:"tableId"`
	PlayerID string `json:"playerId,omitempty"`
	Seat     int    `json:"seat"`
	NickName string `json:"nickName,omitempty"`
	Chips    int    `json:"chips,omitempty"`
}

// PlayerRefData addresses a player for seat and turn bookkeeping
// messages: sit_out, leave, fold, check, set_button, set_active_player
// and set_last_player
type PlayerRefData struct {
	TableID        string `json:"tableId"`
	PlayerID       string `json:"playerId"`
	Seat           int    `json:"seat,omitempty"`
	TimeoutSeconds int    `json:"timeoutSeconds,omitempty"`
	Obligation     string `json:"obligation,omitempty"`
	Chips          int    `json:"chips,omitempty"`
}

// ChipActionData carries a bet or raise
type ChipActionData struct {
	TableID  string `json:"tableId"`
	PlayerID string `json:"playerId,omitempty"`
	Seat     int    `json:"seat,omitempty"`
	Chips    int    `json:"chips"`
}

// DealHoleCardsData announces that hole cards went out; the cards
// themselves travel privately per player
type DealHoleCardsData struct {
	TableID string `json:"tableId"`
	Seats   []int  `json:"seats"`
}

// HoleCardsData carries a player's two hole cards: privately when dealt,
// publicly on show_hole_cards
type HoleCardsData struct {
	TableID  string      `json:"tableId"`
	PlayerID string      `json:"playerId,omitempty"`
	Seat     int         `json:"seat,omitempty"`
	Cards    []deck.Card `json:"cards"`
}

// BoardData carries community cards for deal_flop, deal_turn and
// deal_river
type BoardData struct {
	TableID string      `json:"tableId"`
	Cards   []deck.Card `json:"cards"`
}

// HandEndData announces the end of a hand
type HandEndData struct {
	TableID string `json:"tableId"`
	Pot     int    `json:"pot"`
}

// BlindLevelData announces new table stakes
type BlindLevelData struct {
	TableID    string `json:"tableId"`
	SmallBlind int    `json:"smallBlind"`
	BigBlind   int    `json:"bigBlind"`
}
