package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/ashascraft/storefront-backend/internal/websocket"
	"github.com/ashascraft/storefront-backend/pkg/analytics"
	"github.com/ashascraft/storefront-backend/pkg/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingFeed struct {
	mu     sync.Mutex
	events []string
	data   []interface{}
}

func (f *recordingFeed) Publish(eventType string, data interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
	f.data = append(f.data, data)
	return nil
}

type recordingAlerter struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (a *recordingAlerter) Alert(_ context.Context, text string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.texts = append(a.texts, text)
	return a.err
}

type recordingMailer struct {
	mu    sync.Mutex
	mails []notify.Mail
}

func (m *recordingMailer) Send(_ context.Context, mail notify.Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mails = append(m.mails, mail)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []analytics.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event analytics.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func sampleOrder() model.Order {
	productID := uint(7)
	return model.Order{
		ID:              1,
		OrderNumber:     "ACS-261016-K7M4QX",
		CustomerName:    "Rahima Begum",
		CustomerPhone:   "01712345678",
		CustomerAddress: "Dhanmondi, Dhaka",
		DeliveryZone:    model.ZoneInsideCity,
		Status:          model.OrderStatusPending,
		Subtotal:        2200,
		Total:           2200,
		CreatedAt:       time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC),
		OrderItems: []model.OrderItem{
			{ProductID: &productID, TitleSnapshot: "Jamdani Saree", PriceSnapshot: 1100, Qty: 2},
		},
	}
}

func TestOrderEventDispatcher_OrderCreated(t *testing.T) {
	feed := &recordingFeed{}
	alerter := &recordingAlerter{}
	mailer := &recordingMailer{}
	publisher := &recordingPublisher{}
	d := NewOrderEventDispatcher(feed, alerter, mailer, publisher)

	order := sampleOrder()
	order.CustomerEmail = stringPtr("rahima@example.com")
	settings := model.DefaultSettings()
	settings.MetaPixel = model.MetaPixel{Enabled: true, PixelID: "123456"}

	d.OrderCreated(order, settings)
	d.Wait()

	assert.Equal(t, []string{websocket.EventOrderCreated}, feed.events)
	summary, ok := feed.data[0].(OrderSummary)
	require.True(t, ok)
	assert.Equal(t, order.OrderNumber, summary.OrderNumber)

	require.Len(t, alerter.texts, 1)
	assert.Contains(t, alerter.texts[0], "ACS-261016-K7M4QX")
	assert.Contains(t, alerter.texts[0], "Jamdani Saree x2 = 2200 BDT")

	require.Len(t, mailer.mails, 1)
	assert.Equal(t, "rahima@example.com", mailer.mails[0].To)
	assert.Contains(t, mailer.mails[0].Subject, order.OrderNumber)
	assert.Contains(t, mailer.mails[0].HTML, "Rahima Begum")

	require.Len(t, publisher.events, 1)
	event := publisher.events[0]
	assert.Equal(t, "purchase-ACS-261016-K7M4QX", event.ID)
	assert.Equal(t, analytics.EventPurchase, event.Name)
	assert.Equal(t, "123456", event.PixelID)
	assert.Equal(t, "BDT", event.Properties["currency"])
	assert.Equal(t, 2, event.Properties["num_items"])
	assert.Equal(t, []uint{7}, event.Properties["content_ids"])
}

func TestOrderEventDispatcher_FailuresAreContained(t *testing.T) {
	alerter := &recordingAlerter{err: errors.New("telegram down")}
	mailer := &recordingMailer{}
	d := NewOrderEventDispatcher(nil, alerter, mailer, nil)

	settings := model.DefaultSettings()
	assert.NotPanics(t, func() {
		d.OrderCreated(sampleOrder(), settings)
		d.Wait()
	})
	assert.Len(t, alerter.texts, 1)
	assert.Empty(t, mailer.mails, "no email without a customer address")
}

func TestOrderEventDispatcher_OrderStatusChanged(t *testing.T) {
	feed := &recordingFeed{}
	d := NewOrderEventDispatcher(feed, nil, nil, nil)

	order := sampleOrder()
	order.Status = model.OrderStatusShipped
	d.OrderStatusChanged(order, model.OrderStatusConfirmed)
	d.Wait()

	require.Equal(t, []string{websocket.EventOrderStatusChanged}, feed.events)
	summary := feed.data[0].(OrderSummary)
	assert.Equal(t, model.OrderStatusShipped, summary.Status)
	assert.Equal(t, model.OrderStatusConfirmed, summary.PreviousStatus)
}

func TestPendingDigestAlert(t *testing.T) {
	text := PendingDigestAlert([]model.Order{sampleOrder()}, 24*time.Hour)
	assert.Contains(t, text, "1 order(s) still pending after 24h0m0s")
	assert.Contains(t, text, "ACS-261016-K7M4QX Rahima Begum 01712345678, 2200 BDT")
}

func TestOrderEventDispatcher_OrderCreated_PixelDisabled(t *testing.T) {
	alerter := &recordingAlerter{}
	publisher := &recordingPublisher{}
	d := NewOrderEventDispatcher(nil, alerter, &recordingMailer{}, publisher)

	settings := model.DefaultSettings()
	settings.MetaPixel = model.MetaPixel{Enabled: false, PixelID: "123456"}

	d.OrderCreated(sampleOrder(), settings)
	d.Wait()

	assert.Len(t, alerter.texts, 1)
	assert.Empty(t, publisher.events, "no purchase event while the pixel is off")
}
