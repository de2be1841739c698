package server

import (
	"github.com/charmbracelet/log"

	"github.com/cardroom/cardroom/internal/deck"
	"github.com/cardroom/cardroom/internal/game"
)

// tableBroadcaster relays table events to every client connected to the
// table. It never calls back into the table, so it is safe to run
// synchronously on the event bus. Hole cards are the only private payload:
// the broadcast names the seats that were dealt in while each player's
// cards go out on their own connection.
type tableBroadcaster struct {
	server  *Server
	tableID string
	logger  *log.Logger
}

func newTableBroadcaster(srv *Server, tableID string, logger *log.Logger) *tableBroadcaster {
	return &tableBroadcaster{
		server:  srv,
		tableID: tableID,
		logger:  logger.WithPrefix("broadcast"),
	}
}

// OnEvent translates a table event into wire messages
func (b *tableBroadcaster) OnEvent(event game.Event) {
	switch e := event.(type) {
	case game.PlayerSatInEvent:
		b.broadcast(MessageTypeSitIn, SitInData{
			TableID:  b.tableID,
			PlayerID: e.PlayerID,
			Seat:     e.Seat,
			NickName: e.Name,
			Chips:    e.Chips,
		})

	case game.PlayerSatOutEvent:
		b.broadcast(MessageTypeSitOut, PlayerRefData{TableID: b.tableID, PlayerID: e.PlayerID, Seat: e.Seat})

	case game.PlayerLeftEvent:
		b.broadcast(MessageTypeLeave, PlayerRefData{
			TableID:  b.tableID,
			PlayerID: e.PlayerID,
			Seat:     e.Seat,
			Chips:    e.Forfeited,
		})

	case game.HoleCardsDealtEvent:
		b.broadcastHoleCards(e)

	case game.FlopDealtEvent:
		b.broadcast(MessageTypeDealFlop, BoardData{TableID: b.tableID, Cards: e.Cards[:]})

	case game.TurnDealtEvent:
		b.broadcast(MessageTypeDealTurn, BoardData{TableID: b.tableID, Cards: []deck.Card{e.Card}})

	case game.RiverDealtEvent:
		b.broadcast(MessageTypeDealRiver, BoardData{TableID: b.tableID, Cards: []deck.Card{e.Card}})

	case game.HandEndedEvent:
		b.broadcast(MessageTypeEndHand, HandEndData{TableID: b.tableID, Pot: e.Pot})

	case game.ButtonMovedEvent:
		b.broadcast(MessageTypeSetButton, PlayerRefData{TableID: b.tableID, PlayerID: e.PlayerID, Seat: e.Seat})

	case game.ActivePlayerSetEvent:
		b.broadcast(MessageTypeSetActivePlayer, PlayerRefData{
			TableID:        b.tableID,
			PlayerID:       e.PlayerID,
			Seat:           e.Seat,
			TimeoutSeconds: e.TimeoutSeconds,
			Obligation:     e.Obligation.String(),
		})

	case game.LastToActSetEvent:
		b.broadcast(MessageTypeSetLastPlayer, PlayerRefData{TableID: b.tableID, PlayerID: e.PlayerID, Seat: e.Seat})

	case game.BlindLevelChangedEvent:
		b.broadcast(MessageTypeChangeBlindLevel, BlindLevelData{
			TableID:    b.tableID,
			SmallBlind: e.Level.Small,
			BigBlind:   e.Level.Big,
		})

	case game.PlayerFoldedEvent:
		b.broadcast(MessageTypeFold, PlayerRefData{TableID: b.tableID, PlayerID: e.PlayerID, Seat: e.Seat})

	case game.PlayerCheckedEvent:
		b.broadcast(MessageTypeCheck, PlayerRefData{TableID: b.tableID, PlayerID: e.PlayerID, Seat: e.Seat})

	case game.PlayerBetEvent:
		b.broadcast(MessageTypeBet, ChipActionData{TableID: b.tableID, PlayerID: e.PlayerID, Seat: e.Seat, Chips: e.Chips})

	case game.PlayerRaisedEvent:
		b.broadcast(MessageTypeRaise, ChipActionData{TableID: b.tableID, PlayerID: e.PlayerID, Seat: e.Seat, Chips: e.Chips})

	case game.HoleCardsShownEvent:
		b.broadcast(MessageTypeShowHoleCards, HoleCardsData{
			TableID:  b.tableID,
			PlayerID: e.PlayerID,
			Seat:     e.Seat,
			Cards:    e.Cards[:],
		})

	default:
		b.logger.Debug("Unhandled table event", "type", event.EventType())
	}
}

// broadcastHoleCards tells the table that cards went out and delivers each
// player's cards only to that player
func (b *tableBroadcaster) broadcastHoleCards(e game.HoleCardsDealtEvent) {
	seats := make([]int, 0, len(e.Holes))
	for seat := range e.Holes {
		seats = append(seats, seat)
	}
	b.broadcast(MessageTypeDealHoleCards, DealHoleCardsData{TableID: b.tableID, Seats: seats})

	for seat, sc := range e.Holes {
		msg, err := NewMessage(MessageTypeDealHoleCards, HoleCardsData{
			TableID:  b.tableID,
			PlayerID: sc.PlayerID,
			Seat:     seat,
			Cards:    sc.Cards[:],
		})
		if err != nil {
			b.logger.Error("Failed to create hole cards message", "error", err)
			continue
		}
		if err := b.server.SendToPlayer(sc.PlayerID, msg); err != nil {
			// seat may belong to a disconnected player
			b.logger.Debug("Failed to deliver hole cards", "player", sc.PlayerID, "error", err)
		}
	}
}

func (b *tableBroadcaster) broadcast(messageType MessageType, data interface{}) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		b.logger.Error("Failed to create broadcast message", "type", messageType, "error", err)
		return
	}
	b.server.BroadcastToTable(b.tableID, msg)
}
