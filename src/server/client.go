package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

// Client is one attached browser view.
type Client struct {
	hub  *GatewayServer
	conn *websocket.Conn
	send chan *models.MGatewayEvent

	// watched nil means every symbol except the excluded ones.
	mu       sync.RWMutex
	watched  map[string]struct{}
	excluded map[string]struct{}
}

// -----------------------------------------------------------------------------

// watch narrows the view to symbols, on top of what it already watches.
func (c *Client) watch(symbols []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watched == nil {
		c.watched = make(map[string]struct{}, len(symbols))
		c.excluded = nil
	}
	for _, sym := range symbols {
		c.watched[sym] = struct{}{}
	}
}

func (c *Client) unwatch(symbols []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watched != nil {
		for _, sym := range symbols {
			delete(c.watched, sym)
		}
		return
	}
	if c.excluded == nil {
		c.excluded = make(map[string]struct{}, len(symbols))
	}
	for _, sym := range symbols {
		c.excluded[sym] = struct{}{}
	}
}

// watches reports whether market data for symbol reaches this view.
func (c *Client) watches(symbol string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.watched == nil {
		_, skip := c.excluded[symbol]
		return !skip
	}
	_, ok := c.watched[symbol]
	return ok
}

// wants filters market data by the watched symbols; other events always pass.
func (c *Client) wants(event *models.MGatewayEvent) bool {
	if event.Type != EventMarketData {
		return true
	}
	return c.watches(event.Symbol)
}

// -----------------------------------------------------------------------------
// readPump - handles incoming commands and acts as the connection watchdog
// -----------------------------------------------------------------------------

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
		c.hub.Logger.Info("Client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.Logger.Info("WebSocket error: %v", err)
			}
			break
		}
		c.hub.HandleClientMessage(c, message)
	}
}

// -----------------------------------------------------------------------------
// writePump - sends events to the view
// -----------------------------------------------------------------------------

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(event)
			if err != nil {
				c.hub.Logger.Error("Failed to encode %s event: %v", event.Type, err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.hub.Logger.Info("Write error: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
