package chathub

import (
	"encoding/json"
	"time"

	"safecircle/backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// WebSocketClient implements the chathub.Client interface over a gorilla
// websocket connection.
type WebSocketClient struct {
	AnonID      string
	CircleID    string
	DisplayName string

	Conn    *websocket.Conn
	Hub     *ManagerService
	Gateway *Gateway
	Send    chan models.ServerEvent
}

func (c *WebSocketClient) GetAnonymousID() string { return c.AnonID }
func (c *WebSocketClient) GetCircleID() string    { return c.CircleID }
func (c *WebSocketClient) SetCircleID(id string)  { c.CircleID = id }
func (c *WebSocketClient) GetDisplayName() string { return c.DisplayName }
func (c *WebSocketClient) SetDisplayName(n string) {
	c.DisplayName = n
}
func (c *WebSocketClient) GetSendChannel() chan<- models.ServerEvent { return c.Send }

// Run starts the pumps for the websocket connection.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the Send channel, which stops the write pump. The read pump
// stops itself when Conn.Close is called in its defer.
func (c *WebSocketClient) Close() {
	close(c.Send)
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("anon_id", c.AnonID).Msg("websocket read error")
			}
			break
		}

		var evt models.ClientEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			log.Warn().Err(err).Str("anon_id", c.AnonID).Msg("dropping malformed frame")
			continue
		}

		// The identity comes from the authenticated connection, never from
		// the frame.
		evt.AnonymousID = c.AnonID

		c.Gateway.Dispatch(c, evt)
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(evt)
			if err != nil {
				log.Warn().Err(err).Str("anon_id", c.AnonID).Msg("failed to encode event")
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
