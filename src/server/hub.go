package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// Hub
// -----------------------------------------------------------------------------

type clientReply struct {
	client *Client
	event  *models.MGatewayEvent
}

// handleWebsockets is the hub loop. It alone touches s.clients.
func (s *GatewayServer) handleWebsockets() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.connections.Store(int64(len(s.clients)))
			// Fresh buffer, cannot block.
			client.send <- s.snapshotEvent(nil)

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
				s.connections.Store(int64(len(s.clients)))
			}

		case r := <-s.replies:
			if _, ok := s.clients[r.client]; ok {
				select {
				case r.client.send <- r.event:
				default:
				}
			}

		case event := <-s.broadcast:
			for client := range s.clients {
				if !client.wants(event) {
					continue
				}
				select {
				case client.send <- event:
				default:
					// Slow view: drop it rather than stall every other one.
					s.Logger.Warning("Dropping slow gateway client %s", client.conn.RemoteAddr())
					delete(s.clients, client)
					close(client.send)
				}
			}
			s.connections.Store(int64(len(s.clients)))

		case <-s.done:
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			s.connections.Store(0)
			return
		}
	}
}

// -----------------------------------------------------------------------------
// IDataExchanger
// -----------------------------------------------------------------------------

// Broadcast queues one change event for every attached view. It never blocks;
// when the queue is full the event is dropped.
func (s *GatewayServer) Broadcast(eventType string, payload interface{}) {
	event := &models.MGatewayEvent{
		Type:      eventType,
		Data:      payload,
		Timestamp: time.Now().UnixMilli(),
	}
	if tick, ok := payload.(models.MMarketTick); ok {
		event.Symbol = tick.Symbol
	}

	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.broadcast <- event:
	default:
		s.Logger.Warning("Gateway broadcast queue full, dropping %s event", eventType)
	}
}

// -----------------------------------------------------------------------------

// snapshotEvent builds the INITIAL event. keep selects the ticks; nil keeps
// all of them.
func (s *GatewayServer) snapshotEvent(keep func(symbol string) bool) *models.MGatewayEvent {
	ticks := s.store.Ticks()
	if keep != nil {
		ticks = selectTicks(ticks, keep)
	}
	snapshot := models.MDashboardSnapshot{
		Ticks:      ticks,
		Portfolio:  s.store.Portfolio(),
		Orders:     s.store.Orders(),
		Connection: s.session.State(),
	}
	if s.notifier != nil {
		if note, ok := s.notifier.Current(); ok {
			snapshot.Notification = &note
		}
	}
	return &models.MGatewayEvent{
		Type:      EventInitial,
		Data:      snapshot,
		Timestamp: time.Now().UnixMilli(),
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		send: make(chan *models.MGatewayEvent, 256),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage applies one view command. "subscribe" narrows the
// view to the given symbols and asks the session for them; "unsubscribe"
// only narrows the view, since other views may still want those symbols.
func (s *GatewayServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MViewCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	switch cmd.Command {
	case "subscribe":
		client.watch(cmd.Symbols)
		s.session.Subscribe(cmd.Symbols)
	case "unsubscribe":
		client.unwatch(cmd.Symbols)
	case "snapshot":
	default:
		s.Logger.Debug("Ignoring client command %q", cmd.Command)
		return
	}

	// Replies go through the hub, which owns the send channels.
	select {
	case s.replies <- clientReply{client: client, event: s.snapshotEvent(client.watches)}:
	case <-s.done:
	}
}
