// Package messaging publishes post lifecycle changes to RabbitMQ so other
// services can react to them.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/isdelr/aurora-be/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const publishTimeout = 5 * time.Second

// PostMessage is the JSON body of a published post change.
type PostMessage struct {
	Action     string        `json:"action"`
	PostID     models.PostID `json:"postId"`
	AuthorID   models.UserID `json:"authorId"`
	Title      string        `json:"title,omitempty"`
	OccurredAt time.Time     `json:"occurredAt"`
}

// NewPostMessage describes a post change for the broker.
func NewPostMessage(action string, post models.Post, at time.Time) PostMessage {
	msg := PostMessage{
		Action:     action,
		PostID:     post.ID,
		AuthorID:   post.AuthorID,
		OccurredAt: at.UTC(),
	}
	if action != models.PostDeleted {
		msg.Title = post.Title
	}
	return msg
}

// Publisher sends post changes to a topic exchange, routed by action.
type Publisher struct {
	conn     *amqp.Connection
	mu       sync.Mutex // amqp channels are not safe for concurrent publishing
	channel  *amqp.Channel
	exchange string
}

// NewPublisher connects to RabbitMQ and declares the exchange.
func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	log.Info().Str("exchange", exchange).Msg("Connected to RabbitMQ")
	return &Publisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// PublishPost sends the change with the action as routing key.
func (p *Publisher) PublishPost(ctx context.Context, action string, post models.Post) error {
	body, err := json.Marshal(NewPostMessage(action, post, time.Now()))
	if err != nil {
		return fmt.Errorf("failed to marshal post message: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(
		publishCtx,
		p.exchange, // exchange
		action,     // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", action, err)
	}
	return nil
}

// Close closes the channel and the connection.
func (p *Publisher) Close() {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing RabbitMQ channel")
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing RabbitMQ connection")
		}
	}
}
