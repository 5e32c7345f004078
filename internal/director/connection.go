package director

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/malexanderboyd/godr4ft/internal"
	"github.com/malexanderboyd/godr4ft/internal/director/models"
)

// Connection is one client socket. A user has at most one live Connection;
// sessions refer to it by user id only.
type Connection struct {
	UserID     string
	UserName   string
	SessionID  string
	Collection map[string]int

	requested   string
	coordinator *Coordinator
	Websocket   *websocket.Conn
	ch          chan *models.Message
	doneCh      chan struct{}
	once        sync.Once
}

func NewConnection(coordinator *Coordinator, ws *websocket.Conn, userID, userName, sessionID string) *Connection {
	return &Connection{
		UserID:      userID,
		UserName:    userName,
		requested:   sessionID,
		coordinator: coordinator,
		Websocket:   ws,
		ch:          make(chan *models.Message, models.ChannelBufSize),
		doneCh:      make(chan struct{}),
	}
}

// Write queues msg without blocking. A client that cannot keep up is dropped.
func (c *Connection) Write(msg *models.Message) {
	select {
	case <-c.doneCh:
	case c.ch <- msg:
	default:
		internal.GetLogger().Warnw("outbound buffer full, closing connection", "user", c.UserID)
		c.Done()
	}
}

func (c *Connection) Listen() {
	go c.listenWrite()
	c.listenRead()
}

func (c *Connection) listenRead() {
	c.Websocket.SetReadLimit(models.MaxMessageSize)
	_ = c.Websocket.SetReadDeadline(time.Now().Add(models.PongWait))
	c.Websocket.SetPongHandler(func(string) error {
		return c.Websocket.SetReadDeadline(time.Now().Add(models.PongWait))
	})
	logger := internal.GetLogger()
	logger.Debugw("listening to read", "user", c.UserID)
	for {
		_, content, err := c.Websocket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warnw("read failed", "user", c.UserID, "error", err)
			}
			c.Done()
			return
		}
		var msg models.Message
		if err := json.Unmarshal(content, &msg); err != nil {
			logger.Debugw("malformed message", "user", c.UserID, "error", err)
			c.Write(models.NewMessage(models.Notice, models.NoticePayload{Title: "Error", Text: "malformed message"}))
			continue
		}
		if !c.coordinator.receive(c, &msg) {
			c.Done()
			return
		}
	}
}

func (c *Connection) listenWrite() {
	logger := internal.GetLogger()
	logger.Debugw("listening to write", "user", c.UserID)
	ticker := time.NewTicker(models.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Websocket.Close()
		c.coordinator.RemoveConnection(c)
	}()
	for {
		select {
		case msg := <-c.ch:
			_ = c.Websocket.SetWriteDeadline(time.Now().Add(models.WriteWait))
			if err := c.Websocket.WriteJSON(msg); err != nil {
				logger.Debugw("write failed", "user", c.UserID, "error", err)
				c.Done()
				return
			}
		case <-c.doneCh:
			_ = c.Websocket.SetWriteDeadline(time.Now().Add(models.WriteWait))
			_ = c.Websocket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			logger.Debugw("done writing", "user", c.UserID)
			return
		case <-ticker.C:
			_ = c.Websocket.SetWriteDeadline(time.Now().Add(models.WriteWait))
			if err := c.Websocket.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Done()
				return
			}
		}
	}
}

// Done closes the connection. It is safe to call more than once.
func (c *Connection) Done() {
	c.once.Do(func() {
		close(c.doneCh)
	})
}
