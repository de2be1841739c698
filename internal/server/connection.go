package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	accountID string
	playerID  string
	tableID   string
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	service   *TableService
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, service *TableService) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:    conn,
		send:    make(chan *Message, 256),
		logger:  logger.WithPrefix("conn"),
		ctx:     ctx,
		cancel:  cancel,
		service: service,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// channel already closed during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetAccount associates this connection with an account
func (c *Connection) SetAccount(accountID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accountID = accountID
}

// GetAccount returns the associated account ID
func (c *Connection) GetAccount() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accountID
}

// SetPlayer associates this connection with a seated player
func (c *Connection) SetPlayer(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
}

// GetPlayer returns the associated player ID
func (c *Connection) GetPlayer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// SetTable associates this connection with a table
func (c *Connection) SetTable(tableID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tableID = tableID
}

// GetTable returns the associated table ID
func (c *Connection) GetTable() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tableID
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "account", c.GetAccount())

	switch msg.Type {
	case MessageTypeCreateAccount:
		var data CreateAccountData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse create account data")
			return
		}
		c.handleCreateAccount(data)

	case MessageTypeLogin:
		var data LoginData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse login data")
			return
		}
		c.handleLogin(data)

	case MessageTypeAskBalance:
		c.handleAskBalance()

	case MessageTypeChangeNick:
		var data ChangeNickData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse change nick data")
			return
		}
		c.handleChangeNick(data)

	case MessageTypeSitIn:
		var data SitInData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse sit in data")
			return
		}
		c.handleSitIn(data)

	case MessageTypeSitOut:
		c.handleSeatAction(msg, c.service.SitOut)

	case MessageTypeLeave:
		c.handleLeave(msg)

	case MessageTypeFold:
		c.handleSeatAction(msg, c.service.Fold)

	case MessageTypeCheck:
		c.handleSeatAction(msg, c.service.Check)

	case MessageTypeBet:
		c.handleChipAction(msg, c.service.Bet)

	case MessageTypeRaise:
		c.handleChipAction(msg, c.service.Raise)

	case MessageTypeShowHoleCards:
		c.handleShowHoleCards(msg)

	case MessageTypeDealHoleCards, MessageTypeDealFlop, MessageTypeDealTurn,
		MessageTypeDealRiver, MessageTypeEndHand, MessageTypeSetButton,
		MessageTypeSetActivePlayer, MessageTypeSetLastPlayer,
		MessageTypeChangeBlindLevel:
		// dealer actions flow server to client only
		c.sendError("not_permitted", "Dealing is performed by the table engine")

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}

// sendServiceError maps a table or account error onto the wire taxonomy
func (c *Connection) sendServiceError(err error) {
	c.sendError(errorCode(err), err.Error())
}

func (c *Connection) sendAccountInfo() {
	accountID := c.GetAccount()
	acct, err := c.service.Account(accountID)
	if err != nil {
		c.sendServiceError(err)
		return
	}

	response, _ := NewMessage(MessageTypeAccountInfo, AccountInfoData{
		AccountID: acct.ID,
		NickName:  acct.Nickname,
		Chips:     acct.Chips,
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleCreateAccount(data CreateAccountData) {
	c.logger.Info("Create account request", "nickName", data.NickName)

	if data.NickName == "" {
		c.sendError("invalid_nick", "Nickname required")
		return
	}

	acct, err := c.service.CreateAccount(data.NickName)
	if err != nil {
		c.sendServiceError(err)
		return
	}

	c.SetAccount(acct.ID)
	c.sendAccountInfo()
}

func (c *Connection) handleLogin(data LoginData) {
	acct, err := c.service.Account(data.AccountID)
	if err != nil {
		c.sendServiceError(err)
		return
	}

	c.SetAccount(acct.ID)
	c.logger.Info("Login", "account", acct.ID, "nickName", acct.Nickname)
	c.sendAccountInfo()
}

func (c *Connection) handleAskBalance() {
	if c.GetAccount() == "" {
		c.sendError("not_authenticated", "Must log in first")
		return
	}
	c.sendAccountInfo()
}

func (c *Connection) handleChangeNick(data ChangeNickData) {
	accountID := c.GetAccount()
	if accountID == "" {
		c.sendError("not_authenticated", "Must log in first")
		return
	}
	if data.NickName == "" {
		c.sendError("invalid_nick", "Nickname required")
		return
	}

	if err := c.service.ChangeNick(accountID, data.NickName); err != nil {
		c.sendServiceError(err)
		return
	}
	c.sendAccountInfo()
}

func (c *Connection) handleSitIn(data SitInData) {
	c.logger.Info("Sit in request", "tableId", data.TableID, "seat", data.Seat, "account", c.GetAccount())

	accountID := c.GetAccount()
	if accountID == "" {
		c.sendError("not_authenticated", "Must log in first")
		return
	}

	playerID, err := c.service.SitIn(accountID, data)
	if err != nil {
		c.sendServiceError(err)
		return
	}

	c.SetPlayer(playerID)
	c.SetTable(data.TableID)

	response, _ := NewMessage(MessageTypeSitIn, PlayerRefData{
		TableID:  data.TableID,
		PlayerID: playerID,
		Seat:     data.Seat,
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleLeave(msg *Message) {
	playerID := c.GetPlayer()
	if playerID == "" {
		c.sendError("not_seated", "Not seated at a table")
		return
	}

	if err := c.service.Leave(playerID); err != nil {
		c.sendServiceError(err)
		return
	}

	c.SetPlayer("")
	c.SetTable("")
}

// handleSeatAction routes messages whose payload is just the acting
// player: sit_out, fold and check
func (c *Connection) handleSeatAction(msg *Message, action func(playerID string) error) {
	playerID := c.GetPlayer()
	if playerID == "" {
		c.sendError("not_seated", "Not seated at a table")
		return
	}

	if err := action(playerID); err != nil {
		c.sendServiceError(err)
	}
	// no response needed, the table publishes events
}

func (c *Connection) handleChipAction(msg *Message, action func(playerID string, chips int) error) {
	playerID := c.GetPlayer()
	if playerID == "" {
		c.sendError("not_seated", "Not seated at a table")
		return
	}

	var data ChipActionData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		c.sendError("invalid_message", "Failed to parse chip action data")
		return
	}

	if err := action(playerID, data.Chips); err != nil {
		c.sendServiceError(err)
	}
}

func (c *Connection) handleShowHoleCards(msg *Message) {
	playerID := c.GetPlayer()
	if playerID == "" {
		c.sendError("not_seated", "Not seated at a table")
		return
	}

	if err := c.service.ShowHoleCards(playerID); err != nil {
		c.sendServiceError(err)
	}
}
