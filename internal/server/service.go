package server

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/cardroom/cardroom/internal/account"
	"github.com/cardroom/cardroom/internal/game"
	"github.com/cardroom/cardroom/internal/gameid"
)

// TableService hosts tables and bridges the wire protocol onto them. Every
// hosted table gets its own engine and a broadcaster that relays table
// events to connected clients.
type TableService struct {
	mu       sync.RWMutex
	logger   *log.Logger
	server   *Server
	accounts account.Store
	clock    quartz.Clock
	tables   map[string]*hostedTable
	players  map[string]*seatedPlayer
}

type hostedTable struct {
	table       *game.Table
	engine      *game.Engine
	broadcaster *tableBroadcaster
}

// seatedPlayer ties a seated player back to the account that bought in
type seatedPlayer struct {
	player    *game.Player
	tableID   string
	accountID string
}

// ServiceOption configures a TableService
type ServiceOption func(*TableService)

// WithServiceClock substitutes the clock handed to table engines
func WithServiceClock(clock quartz.Clock) ServiceOption {
	return func(s *TableService) { s.clock = clock }
}

// NewTableService creates a table service backed by the given account store
func NewTableService(srv *Server, accounts account.Store, logger *log.Logger, opts ...ServiceOption) *TableService {
	s := &TableService{
		logger:   logger.WithPrefix("service"),
		server:   srv,
		accounts: accounts,
		clock:    quartz.NewReal(),
		tables:   make(map[string]*hostedTable),
		players:  make(map[string]*seatedPlayer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTable hosts a new table and starts its engine
func (s *TableService) CreateTable(cfg TableConfig) (*game.Table, error) {
	blinds := game.BlindLevel{Small: cfg.SmallBlind, Big: cfg.BigBlind}

	table, err := game.NewTable(gameid.Generate(), cfg.Name, cfg.MaxPlayers, blinds)
	if err != nil {
		return nil, err
	}

	opts := []game.Option{game.WithClock(s.clock)}
	if cfg.DecisionTimeout > 0 {
		opts = append(opts, game.WithDecisionTimeout(time.Duration(cfg.DecisionTimeout)*time.Second))
	}
	engine := game.NewEngine(table, s.logger, opts...)

	broadcaster := newTableBroadcaster(s.server, table.ID(), s.logger)
	table.Subscribe(broadcaster)
	engine.Start()

	s.mu.Lock()
	s.tables[table.ID()] = &hostedTable{table: table, engine: engine, broadcaster: broadcaster}
	s.mu.Unlock()

	s.logger.Info("Table created", "table", table.ID(), "name", cfg.Name, "blinds", blinds, "seats", cfg.MaxPlayers)
	return table, nil
}

// Table returns a hosted table by ID, or nil
func (s *TableService) Table(tableID string) *game.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ht, ok := s.tables[tableID]; ok {
		return ht.table
	}
	return nil
}

// Tables returns all hosted tables
func (s *TableService) Tables() []*game.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tables := make([]*game.Table, 0, len(s.tables))
	for _, ht := range s.tables {
		tables = append(tables, ht.table)
	}
	return tables
}

// Close stops every table engine
func (s *TableService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ht := range s.tables {
		ht.engine.Stop()
		ht.table.Unsubscribe(ht.broadcaster)
	}
}

// CreateAccount registers a new account with the starting bankroll
func (s *TableService) CreateAccount(nickname string) (*account.Account, error) {
	return s.accounts.Create(nickname)
}

// Account looks up an account by ID
func (s *TableService) Account(accountID string) (*account.Account, error) {
	return s.accounts.Find(accountID)
}

// ChangeNick renames an account
func (s *TableService) ChangeNick(accountID, nickname string) error {
	return s.accounts.SetNickname(accountID, nickname)
}

// SitIn buys an account into a table seat and returns the new player ID.
// The buy-in is debited from the account up front and refunded if the seat
// cannot be taken.
func (s *TableService) SitIn(accountID string, data SitInData) (string, error) {
	ht, err := s.hostedTable(data.TableID)
	if err != nil {
		return "", err
	}

	acct, err := s.accounts.Find(accountID)
	if err != nil {
		return "", err
	}

	buyIn := data.Chips
	if buyIn <= 0 {
		buyIn = ht.table.Blinds().BuyIn()
	}

	if _, err := s.accounts.AdjustChips(accountID, -buyIn); err != nil {
		return "", err
	}

	name := data.NickName
	if name == "" {
		name = acct.Nickname
	}

	player := game.NewPlayer(gameid.Generate(), name, buyIn)
	if err := ht.table.SitIn(player, data.Seat); err != nil {
		if _, refundErr := s.accounts.AdjustChips(accountID, buyIn); refundErr != nil {
			s.logger.Error("Failed to refund buy-in", "account", accountID, "chips", buyIn, "error", refundErr)
		}
		return "", err
	}

	s.mu.Lock()
	s.players[player.ID] = &seatedPlayer{player: player, tableID: data.TableID, accountID: accountID}
	s.mu.Unlock()

	s.logger.Info("Player sat in", "table", data.TableID, "player", player.ID, "seat", data.Seat, "buyIn", buyIn)
	return player.ID, nil
}

// Leave removes a player from their table and credits the remaining stack
// back to the account. Chips committed to a running hand are forfeited.
func (s *TableService) Leave(playerID string) error {
	sp, ht, err := s.seated(playerID)
	if err != nil {
		return err
	}

	if err := ht.table.Leave(sp.player); err != nil {
		return err
	}

	if sp.player.Chips > 0 {
		if _, err := s.accounts.AdjustChips(sp.accountID, sp.player.Chips); err != nil {
			s.logger.Error("Failed to credit stack", "account", sp.accountID, "chips", sp.player.Chips, "error", err)
		}
	}

	s.mu.Lock()
	delete(s.players, playerID)
	s.mu.Unlock()

	s.logger.Info("Player left", "table", sp.tableID, "player", playerID, "stack", sp.player.Chips)
	return nil
}

// SitOut marks a player as sitting out of upcoming hands
func (s *TableService) SitOut(playerID string) error {
	sp, ht, err := s.seated(playerID)
	if err != nil {
		return err
	}
	return ht.table.SitOut(sp.player)
}

// Fold folds the player's hand
func (s *TableService) Fold(playerID string) error {
	sp, ht, err := s.seated(playerID)
	if err != nil {
		return err
	}
	return ht.table.Fold(sp.player)
}

// Check passes the action without committing chips
func (s *TableService) Check(playerID string) error {
	sp, ht, err := s.seated(playerID)
	if err != nil {
		return err
	}
	return ht.table.Check(sp.player)
}

// Bet commits chips from the player's stack
func (s *TableService) Bet(playerID string, chips int) error {
	sp, ht, err := s.seated(playerID)
	if err != nil {
		return err
	}
	return ht.table.Bet(sp.player, chips)
}

// Raise increases the current bet
func (s *TableService) Raise(playerID string, chips int) error {
	sp, ht, err := s.seated(playerID)
	if err != nil {
		return err
	}
	return ht.table.Raise(sp.player, chips)
}

// ShowHoleCards reveals the player's current hole cards to the table
func (s *TableService) ShowHoleCards(playerID string) error {
	sp, ht, err := s.seated(playerID)
	if err != nil {
		return err
	}
	if len(sp.player.HoleCards) != 2 {
		return game.ErrPlayerCannotAct
	}
	return ht.table.ShowHoleCards(sp.player, sp.player.HoleCards[0], sp.player.HoleCards[1])
}

func (s *TableService) hostedTable(tableID string) (*hostedTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ht, ok := s.tables[tableID]
	if !ok {
		return nil, fmt.Errorf("table not found: %s", tableID)
	}
	return ht, nil
}

func (s *TableService) seated(playerID string) (*seatedPlayer, *hostedTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sp, ok := s.players[playerID]
	if !ok {
		return nil, nil, game.ErrUnknownPlayer
	}
	ht, ok := s.tables[sp.tableID]
	if !ok {
		return nil, nil, fmt.Errorf("table not found: %s", sp.tableID)
	}
	return sp, ht, nil
}

// errorCode maps domain errors onto stable wire codes
func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrSeatOccupied):
		return "seat_occupied"
	case errors.Is(err, game.ErrInvalidSeat):
		return "invalid_seat"
	case errors.Is(err, game.ErrPlayerNotSeated):
		return "player_not_seated"
	case errors.Is(err, game.ErrWrongPhase):
		return "wrong_phase"
	case errors.Is(err, game.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, game.ErrPlayerCannotAct):
		return "player_cannot_act"
	case errors.Is(err, game.ErrInsufficientChips):
		return "insufficient_chips"
	case errors.Is(err, game.ErrInvalidCardCount):
		return "invalid_card_count"
	case errors.Is(err, game.ErrUnknownPlayer):
		return "unknown_player"
	case errors.Is(err, account.ErrUnknownAccount):
		return "unknown_account"
	case errors.Is(err, account.ErrInsufficientFunds):
		return "insufficient_funds"
	default:
		return "operation_failed"
	}
}
