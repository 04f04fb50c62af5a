// Package gateway exposes the poker engine over WebSocket. Clients send JSON
// commands; the gateway forwards them to the game registry and fans engine
// notifications back out. Room messages go to every connection the way a chat
// channel would show them; private messages go to a single player.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/deiteris/kurisu-bot/internal/store"
	"github.com/deiteris/kurisu-bot/poker"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict in production
	},
}

// Command is a client request.
type Command struct {
	Cmd    string `json:"cmd"`
	Room   string `json:"room,omitempty"`
	Amount int64  `json:"amount,omitempty"`
	To     uint64 `json:"to,omitempty"`
}

// Notice is a server push.
type Notice struct {
	Type string `json:"type"` // "room", "private" or "error"
	Room string `json:"room,omitempty"`
	Text string `json:"text"`
}

// Connection is one WebSocket client.
type Connection struct {
	playerID uint64
	name     string
	conn     *websocket.Conn
	send     chan []byte
	gateway  *Gateway
}

// Gateway manages WebSocket connections and implements poker.Notifier.
type Gateway struct {
	mu          sync.RWMutex
	log         *zap.Logger
	store       store.Store
	registry    *poker.Registry
	conns       map[uint64]*Connection // playerID -> connection
	nextGuestID uint64
}

func New(log *zap.Logger, st store.Store) *Gateway {
	return &Gateway{
		log:   log,
		store: st,
		conns: make(map[uint64]*Connection),
	}
}

// SetRegistry breaks the construction cycle: the registry needs the gateway
// as its notifier, the gateway needs the registry for dispatch.
func (g *Gateway) SetRegistry(r *poker.Registry) { g.registry = r }

// HandleWebSocket upgrades the request and starts the connection pumps.
// Identity comes from the user and name query parameters; anonymous clients
// get a throwaway guest id.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	playerID, _ := strconv.ParseUint(r.URL.Query().Get("user"), 10, 64)
	name := strings.TrimSpace(r.URL.Query().Get("name"))

	g.mu.Lock()
	if playerID == 0 {
		g.nextGuestID++
		playerID = 1<<32 + g.nextGuestID
	}
	if name == "" {
		name = fmt.Sprintf("guest-%d", playerID)
	}
	if old := g.conns[playerID]; old != nil {
		close(old.send)
	}
	c := &Connection{
		playerID: playerID,
		name:     name,
		conn:     conn,
		send:     make(chan []byte, 256),
		gateway:  g,
	}
	g.conns[playerID] = c
	total := len(g.conns)
	g.mu.Unlock()

	g.log.Info("client connected",
		zap.Uint64("player_id", playerID),
		zap.String("name", name),
		zap.Int("total", total))

	go c.readPump()
	go c.writePump()
}

func (c *Connection) readPump() {
	defer func() {
		c.gateway.removeConnection(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.gateway.log.Warn("websocket read failed",
					zap.Uint64("player_id", c.playerID), zap.Error(err))
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.sendNotice(Notice{Type: "error", Text: "invalid command format"})
			continue
		}
		reply, err := c.gateway.execute(c.playerID, c.name, cmd)
		if err != nil {
			c.sendNotice(Notice{Type: "error", Room: cmd.Room, Text: err.Error()})
			continue
		}
		if reply != "" {
			c.sendNotice(Notice{Type: "private", Room: cmd.Room, Text: reply})
		}
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// execute dispatches a single command. The returned string, if any, is sent
// back to the caller as a private notice.
func (g *Gateway) execute(playerID uint64, name string, cmd Command) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch strings.ToLower(strings.TrimSpace(cmd.Cmd)) {
	case "create", "poker":
		if err := g.registry.Create(ctx, cmd.Room, playerID, name); err != nil {
			return "", err
		}
		return "Table created. Waiting for players to join.", nil
	case "join":
		if err := g.registry.Join(ctx, cmd.Room, playerID, name); err != nil {
			return "", err
		}
		return "You have joined the table.", nil
	case "leave":
		if err := g.registry.Leave(cmd.Room, playerID); err != nil {
			return "", err
		}
		return "You have left the table.", nil
	case "start":
		return "", g.registry.Start(cmd.Room, playerID)
	case "check":
		return "", g.registry.Check(cmd.Room, playerID)
	case "call":
		return "", g.registry.Call(cmd.Room, playerID)
	case "bet":
		return "", g.registry.Bet(cmd.Room, playerID, cmd.Amount)
	case "raise":
		return "", g.registry.Raise(cmd.Room, playerID, cmd.Amount)
	case "all-in", "allin":
		return "", g.registry.AllIn(cmd.Room, playerID)
	case "fold":
		return "", g.registry.Fold(cmd.Room, playerID)
	case "table-info":
		return "", g.registry.TableInfo(cmd.Room)
	case "balance":
		balance, err := g.store.Load(ctx, playerID, name)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Your balance: %d.", balance), nil
	case "wins":
		wins, err := g.store.WinCount(ctx, playerID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("You have won %d games.", wins), nil
	case "claim":
		if room, seated := g.registry.Seated(playerID); seated {
			return "", fmt.Errorf("finish your game at %s first", room)
		}
		prize, err := g.store.Claim(ctx, playerID, name)
		if err != nil {
			if errors.Is(err, store.ErrClaimNotReady) {
				return "", fmt.Errorf("you have already claimed your prize, try again later")
			}
			return "", err
		}
		return fmt.Sprintf("You have claimed your daily prize of %d!", prize), nil
	case "transfer":
		if room, seated := g.registry.Seated(playerID); seated {
			return "", fmt.Errorf("finish your game at %s first", room)
		}
		if _, seated := g.registry.Seated(cmd.To); seated {
			return "", fmt.Errorf("the recipient is in a game right now")
		}
		if err := g.store.Transfer(ctx, playerID, cmd.To, cmd.Amount); err != nil {
			return "", err
		}
		return fmt.Sprintf("Transferred %d to player %d.", cmd.Amount, cmd.To), nil
	default:
		return "", fmt.Errorf("unknown command %q", cmd.Cmd)
	}
}

// NotifyRoom pushes a table announcement to every connected client, tagged
// with the room it belongs to. Spectators see the action like a chat channel.
func (g *Gateway) NotifyRoom(roomID string, text string) {
	data, err := json.Marshal(Notice{Type: "room", Room: roomID, Text: text})
	if err != nil {
		return
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, c := range g.conns {
		select {
		case c.send <- data:
		default:
			// Drop if buffer full.
		}
	}
}

// NotifyPlayer pushes a private message, such as dealt hole cards, to one
// player's connection. Offline players miss it.
func (g *Gateway) NotifyPlayer(playerID uint64, text string) {
	data, err := json.Marshal(Notice{Type: "private", Text: text})
	if err != nil {
		return
	}

	g.mu.RLock()
	c := g.conns[playerID]
	g.mu.RUnlock()

	if c != nil {
		select {
		case c.send <- data:
		default:
		}
	}
}

func (c *Connection) sendNotice(n Notice) {
	data, err := json.Marshal(n)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	active := g.conns[c.playerID] == c
	if active {
		delete(g.conns, c.playerID)
	}
	total := len(g.conns)
	g.mu.Unlock()

	// A dropped connection forfeits the seat; the engine folds the hand.
	// A connection replaced by a reconnect leaves the seat alone.
	if active {
		if room, seated := g.registry.Seated(c.playerID); seated {
			if err := g.registry.Leave(room, c.playerID); err != nil {
				g.gatewayLogLeaveError(room, c.playerID, err)
			}
		}
	}

	g.log.Info("client disconnected",
		zap.Uint64("player_id", c.playerID),
		zap.Int("total", total))
}

func (g *Gateway) gatewayLogLeaveError(room string, playerID uint64, err error) {
	g.log.Warn("seat release on disconnect failed",
		zap.String("room", room),
		zap.Uint64("player_id", playerID),
		zap.Error(err))
}
