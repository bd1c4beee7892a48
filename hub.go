package main

import (
	"encoding/json"
	"sync"
)

// Hub fans game events out to websocket clients. Every payload kind funnels
// through a single event queue; marshalling happens once per event and slow
// clients drop frames instead of blocking the game loop.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
	events  chan wsMessage
}

type Client struct {
	hub  *Hub
	send chan []byte
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// boardPayload is the per-move frame a board-only client needs: the grid,
// whose turn it is and how the game stands, with the variant context so the
// frontend can render drops vs free placement without a settings round trip.
type boardPayload struct {
	Variant     Variant           `json:"variant"`
	Gravity     bool              `json:"gravity"`
	Board       [][]int           `json:"board"`
	NextPlayer  int               `json:"next_player"`
	Winner      int               `json:"winner"`
	WinningLine []Move            `json:"winning_line"`
	MoveCount   int               `json:"move_count"`
	Status      string            `json:"status"`
	AiThinking  bool              `json:"ai_thinking"`
	History     []historyEntryDTO `json:"history"`
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		events:  make(chan wsMessage, 64),
	}
}

func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case msg := <-h.events:
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				client.push(data)
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) BroadcastBoard(payload boardPayload)       { h.enqueue("board", payload) }
func (h *Hub) BroadcastHistory(payload historyPayload)   { h.enqueue("history", payload) }
func (h *Hub) BroadcastStatus(payload StatusResponse)    { h.enqueue("status", payload) }
func (h *Hub) BroadcastReset(payload resetPayload)       { h.enqueue("reset", payload) }
func (h *Hub) BroadcastSettings(payload settingsPayload) { h.enqueue("settings", payload) }

func (h *Hub) enqueue(kind string, payload any) {
	select {
	case h.events <- wsMessage{Type: kind, Payload: mustMarshal(payload)}:
	default:
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) HasClients() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0
}

// sendMessage delivers one message to this client only, bypassing the hub
// queue. Used for the status snapshot on connect.
func (c *Client) sendMessage(kind string, payload any) {
	data, err := json.Marshal(wsMessage{Type: kind, Payload: mustMarshal(payload)})
	if err != nil {
		return
	}
	c.push(data)
}

func (c *Client) push(data []byte) {
	select {
	case c.send <- data:
	default:
	}
}
