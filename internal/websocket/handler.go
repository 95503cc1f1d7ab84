package websocket

import (
	"astu-route-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ServeQueries runs a query session on an upgraded connection and returns
// when the peer disconnects.
func ServeQueries(conn *websocket.Conn, queries QueryStreamer, log logger.ILogger) {
	client := newClient(conn, queries, log)
	log.Info("HTTP", "WebSocket session started", map[string]interface{}{"client_id": client.ID.String()})

	done := make(chan struct{})
	go func() {
		defer close(done)
		client.writePump()
	}()
	client.readPump()
	<-done

	log.Info("HTTP", "WebSocket session ended", map[string]interface{}{"client_id": client.ID.String()})
}

// Handler upgrades the request and serves queries over it.
func Handler(queries QueryStreamer, log logger.ILogger) fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		ServeQueries(conn, queries, log)
	})
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return upgrade(c)
		}
		return fiber.ErrUpgradeRequired
	}
}
