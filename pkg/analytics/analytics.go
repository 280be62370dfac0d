// Package analytics forwards storefront conversion events to the analytics exchange.
package analytics

import (
	"context"
	"time"
)

const (
	EventAddToCart = "AddToCart"
	EventPurchase  = "Purchase"
)

// Event is one conversion event. ID is used for deduplication downstream and here.
type Event struct {
	ID         string                 `json:"event_id"`
	Name       string                 `json:"event_name"`
	OccurredAt time.Time              `json:"occurred_at"`
	PixelID    string                 `json:"pixel_id,omitempty"`
	Properties map[string]interface{} `json:"properties"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type nopPublisher struct{}

// NopPublisher drops every event. Used when AMQP is not configured.
func NopPublisher() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, Event) error { return nil }
func (nopPublisher) Close() error                         { return nil }
