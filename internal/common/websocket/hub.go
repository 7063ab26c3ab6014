package websocket

import "sync"

// Hub fans live-tracking messages out to subscribers grouped by booking id.
// Tracking links are shareable, so a booking may have any number of
// subscribers, including zero.
type Hub struct {
	topics map[string]map[*Client]bool
	mu     sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Subscribe(topic string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Client]bool)
	}
	h.topics[topic][c] = true
}

func (h *Hub) Unsubscribe(topic string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.topics[topic]; subs != nil {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
}

// Publish sends message to every subscriber of topic. Slow clients are
// dropped instead of blocking the publisher.
func (h *Hub) Publish(topic string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.topics[topic] {
		select {
		case client.Send <- message:
		default:
			go h.drop(topic, client)
		}
	}
}

func (h *Hub) drop(topic string, c *Client) {
	h.Unsubscribe(topic, c)
	c.Close()
}
