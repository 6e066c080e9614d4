package websocket

import (
	"context"

	"github.com/isdelr/aurora-be/internal/models"
	"github.com/rs/zerolog/log"
)

// FeedTopic is the topic every post change is delivered to.
const FeedTopic = "feed"

type publication struct {
	topics  []string
	target  *Client
	message []byte
}

// Hub maintains the set of active clients and broadcasts messages to them.
// All state is owned by the Run goroutine.
type Hub struct {
	// Registered clients, keyed to the topic they follow.
	clients map[*Client]string

	// A map of topics to the set of clients subscribed to it.
	subscriptions map[string]map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	publish chan publication
	done    chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:       make(map[*Client]string),
		subscriptions: make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		publish:       make(chan publication, 64),
		done:          make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.register:
			h.clients[client] = client.Topic
			if h.subscriptions[client.Topic] == nil {
				h.subscriptions[client.Topic] = make(map[*Client]bool)
			}
			h.subscriptions[client.Topic][client] = true
			log.Info().Int("total_clients", len(h.clients)).Str("topic", client.Topic).Msg("Client connected")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case pub := <-h.publish:
			if pub.target != nil {
				if _, ok := h.clients[pub.target]; ok {
					h.deliver(pub.target, pub.message)
				}
				continue
			}
			for _, topic := range pub.topics {
				for client := range h.subscriptions[topic] {
					h.deliver(client, pub.message)
				}
			}
		}
	}
}

// Stop terminates Run and closes every client's send channel.
func (h *Hub) Stop() {
	close(h.done)
}

// Join registers a client with the hub.
func (h *Hub) Join(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Leave unregisters a client. Safe to call after Stop.
func (h *Hub) Leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Reply queues a message for a single client.
func (h *Hub) Reply(client *Client, message []byte) {
	if message == nil {
		return
	}
	select {
	case h.publish <- publication{target: client, message: message}:
	case <-h.done:
	}
}

// BroadcastTo queues a message for the clients of the given topics.
func (h *Hub) BroadcastTo(message []byte, topics ...string) {
	if message == nil {
		return
	}
	select {
	case h.publish <- publication{topics: topics, message: message}:
	case <-h.done:
	}
}

// PublishPost delivers a post change to the feed and to the post's own topic.
func (h *Hub) PublishPost(_ context.Context, action string, post models.Post) error {
	var payload interface{} = post
	if action == models.PostDeleted {
		payload = map[string]models.PostID{"_id": post.ID}
	}
	h.BroadcastTo(Encode(action, payload), FeedTopic, post.ID.String())
	return nil
}

func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		// Slow consumer; cut it loose rather than block everyone.
		h.drop(client)
	}
}

func (h *Hub) drop(client *Client) {
	topic := h.clients[client]
	delete(h.clients, client)
	if subs, ok := h.subscriptions[topic]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscriptions, topic)
		}
	}
	close(client.Send)
}
