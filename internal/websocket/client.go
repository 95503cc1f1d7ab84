package websocket

import (
	"context"
	"encoding/json"
	"time"

	"astu-route-be/internal/apperror"
	"astu-route-be/internal/dto"
	"astu-route-be/internal/pkg/logger"
	"astu-route-be/internal/pkg/serverutils"
	"astu-route-be/pkg/workflow"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// QueryStreamer runs one query and streams its workflow events.
type QueryStreamer interface {
	Stream(ctx context.Context, requestID string, req *dto.QueryRequest) <-chan workflow.Event
}

// Client is one websocket connection. Each text frame it receives is a query;
// queries run one at a time and their events are written back in order.
type Client struct {
	Conn    *websocket.Conn
	ID      uuid.UUID
	Send    chan []byte
	queries QueryStreamer
	logger  logger.ILogger
	ctx     context.Context
	cancel  context.CancelFunc
}

func newClient(conn *websocket.Conn, queries QueryStreamer, log logger.ILogger) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		Conn:    conn,
		ID:      uuid.New(),
		Send:    make(chan []byte, 256),
		queries: queries,
		logger:  log,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// readPump reads query frames until the peer goes away.
func (c *Client) readPump() {
	defer func() {
		c.cancel()
		close(c.Send)
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("HTTP", "WebSocket closed unexpectedly", map[string]interface{}{
					"client_id": c.ID.String(),
					"error":     err.Error(),
				})
			}
			return
		}
		c.handleFrame(frame)
	}
}

func (c *Client) handleFrame(frame []byte) {
	var req dto.QueryRequest
	if err := json.Unmarshal(frame, &req); err != nil {
		c.sendError(apperror.Validation("Malformed query frame"))
		return
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		c.sendError(err)
		return
	}

	for event := range c.queries.Stream(c.ctx, uuid.NewString(), &req) {
		select {
		case c.Send <- event.Marshal():
		case <-c.ctx.Done():
		}
	}
}

func (c *Client) sendError(err error) {
	appErr := apperror.From(err)
	frames := []workflow.Event{
		{Type: workflow.EventError, Payload: &workflow.ErrorInfo{Code: appErr.Code, Message: appErr.Message}, Timestamp: time.Now()},
		{Type: workflow.EventDone, Seq: 1, Timestamp: time.Now()},
	}
	for _, e := range frames {
		select {
		case c.Send <- e.Marshal():
		case <-c.ctx.Done():
			return
		}
	}
}

// writePump writes queued frames and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// One event per frame.
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.cancel()
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.cancel()
				return
			}
		}
	}
}
