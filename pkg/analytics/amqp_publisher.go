package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ashascraft/storefront-backend/pkg/logger"
	"github.com/streadway/amqp"
)

const dedupCapacity = 1024

type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes events to a topic exchange, routing key = event name.
// An event id seen recently is published only once.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string

	mu   sync.Mutex
	seen map[string]struct{}
	ring []string
	next int
}

func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open AMQP channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	logger.Info("Analytics publisher connected", map[string]interface{}{
		"exchange": exchange,
	})
	p := newPublisher(ch, exchange)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange string) *AMQPPublisher {
	return &AMQPPublisher{
		ch:       ch,
		exchange: exchange,
		seen:     make(map[string]struct{}, dedupCapacity),
		ring:     make([]string, dedupCapacity),
	}
}

// markSeen reports whether id is new and remembers it, evicting the oldest id when full.
func (p *AMQPPublisher) markSeen(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.seen[id]; ok {
		return false
	}
	if old := p.ring[p.next]; old != "" {
		delete(p.seen, old)
	}
	p.ring[p.next] = id
	p.next = (p.next + 1) % len(p.ring)
	p.seen[id] = struct{}{}
	return true
}

func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.ID != "" && !p.markSeen(event.ID) {
		logger.Debug("Skipping duplicate analytics event", map[string]interface{}{
			"event_id": event.ID,
			"event":    event.Name,
		})
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	err = p.ch.Publish(p.exchange, event.Name, false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   event.ID,
		Timestamp:   event.OccurredAt,
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Name, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		return err
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
