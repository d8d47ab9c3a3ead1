// Package realtime is the WebSocket fanout layer: heading-session alert
// and visible-POI deltas, and group-position snapshots, pushed to
// subscribed clients as an addition to the HTTP polling surface
// (SPEC_FULL.md §4.Q). Grounded on the hub/client split and
// register/unregister channel pattern of tomtom215-cartographus's
// internal/websocket package.
package realtime

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// Message is the envelope written to every subscribed client.
type Message struct {
	Type  string      `json:"type"`
	Topic string      `json:"topic"`
	Data  interface{} `json:"data"`
}

const (
	MessageTypeHeadingUpdate = "heading_update"
	MessageTypeGroupSnapshot = "group_snapshot"
)

// HeadingTopic and GroupTopic name the subscription channel for a given
// heading session or group.
func HeadingTopic(sessionID string) string { return "heading:" + sessionID }
func GroupTopic(groupID string) string     { return "group:" + groupID }

// Hub maintains connected clients and routes messages to clients
// subscribed to a given topic, rather than broadcasting to everyone: a
// heading-session update is only relevant to the client that opened it, a
// group snapshot only to that group's viewers.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	publish    chan publishRequest
}

type publishRequest struct {
	topic   string
	message Message
}

// NewHub builds an idle Hub; call Run in a goroutine to start routing.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		publish:    make(chan publishRequest, 256),
	}
}

// Run processes registrations, unregistrations, and publishes until done is
// closed. Lifecycle events are drained ahead of publishes on each iteration
// so client bookkeeping never lags a topic delivery, mirroring the
// priority-select pattern used for the same reason in the grounding hub.
func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-done:
			h.closeAll()
			return
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case req := <-h.publish:
			h.deliver(req.topic, req.message)
		}
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := sortedClients(h.clients)
	for _, c := range clients {
		close(c.send)
		delete(h.clients, c)
	}
}

func (h *Hub) deliver(topic string, message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range sortedClients(h.clients) {
		if !c.subscribed(topic) {
			continue
		}
		select {
		case c.send <- message:
		default:
			log.Warn().Uint64("client_id", c.id).Str("topic", topic).Msg("realtime client send buffer full, dropping message")
		}
	}
}

func sortedClients(clients map[*Client]bool) []*Client {
	out := make([]*Client, 0, len(clients))
	for c := range clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// PublishHeadingUpdate enqueues a heading-session delta for sessionID's topic.
func (h *Hub) PublishHeadingUpdate(sessionID string, data interface{}) {
	h.enqueue(HeadingTopic(sessionID), Message{Type: MessageTypeHeadingUpdate, Topic: HeadingTopic(sessionID), Data: data})
}

// PublishGroupSnapshot enqueues a group-position snapshot for groupID's topic.
func (h *Hub) PublishGroupSnapshot(groupID string, data interface{}) {
	h.enqueue(GroupTopic(groupID), Message{Type: MessageTypeGroupSnapshot, Topic: GroupTopic(groupID), Data: data})
}

func (h *Hub) enqueue(topic string, message Message) {
	select {
	case h.publish <- publishRequest{topic: topic, message: message}:
	default:
		log.Warn().Str("topic", topic).Msg("realtime publish queue full, dropping message")
	}
}

// ClientCount reports how many clients are currently registered.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Marshal renders a Message as JSON, used by handlers sending an initial
// snapshot before a client's subscriptions pick up further deltas.
func Marshal(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
