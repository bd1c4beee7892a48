package main

import (
	"time"

	"github.com/gorilla/websocket"
)

// Games can sit quiet for a long time while a human thinks, so idle
// connections get a control ping to keep proxies from reaping them.
const (
	wsPingInterval = 25 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// writePump drains the client's queue onto the connection and pings when
// nothing has gone out for a full interval. Returns when the queue closes or
// a write fails; the caller owns closing the connection.
func (c *Client) writePump(conn *websocket.Conn) error {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	idleSince := time.Now()
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return nil
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return err
			}
			idleSince = time.Now()
		case <-ticker.C:
			if time.Since(idleSince) < wsPingInterval {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
			idleSince = time.Now()
		}
	}
}
