package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"time"

	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/ashascraft/storefront-backend/internal/websocket"
	"github.com/ashascraft/storefront-backend/pkg/analytics"
	"github.com/ashascraft/storefront-backend/pkg/logger"
	"github.com/ashascraft/storefront-backend/pkg/notify"
)

const sideEffectTimeout = 30 * time.Second

// OrderEvents runs the side effects of order changes. Calls return immediately;
// failures are logged and never reach the caller.
type OrderEvents interface {
	OrderCreated(order model.Order, settings model.Settings)
	OrderStatusChanged(order model.Order, previous model.OrderStatus)
}

// LiveFeed pushes events to connected admin dashboards.
type LiveFeed interface {
	Publish(eventType string, data interface{}) error
}

// OrderSummary is the admin feed payload.
type OrderSummary struct {
	ID             uint              `json:"id"`
	OrderNumber    string            `json:"order_number"`
	CustomerName   string            `json:"customer_name"`
	CustomerPhone  string            `json:"customer_phone"`
	Total          float64           `json:"total"`
	Status         model.OrderStatus `json:"status"`
	PreviousStatus model.OrderStatus `json:"previous_status,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

func summarize(order model.Order) OrderSummary {
	return OrderSummary{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		Total:         order.Total,
		Status:        order.Status,
		CreatedAt:     order.CreatedAt,
	}
}

type OrderEventDispatcher struct {
	feed      LiveFeed
	alerter   notify.Alerter
	mailer    notify.Mailer
	publisher analytics.Publisher

	wg sync.WaitGroup
}

func NewOrderEventDispatcher(feed LiveFeed, alerter notify.Alerter, mailer notify.Mailer, publisher analytics.Publisher) *OrderEventDispatcher {
	if alerter == nil {
		alerter = notify.NopAlerter()
	}
	if mailer == nil {
		mailer = notify.NopMailer()
	}
	if publisher == nil {
		publisher = analytics.NopPublisher()
	}
	return &OrderEventDispatcher{
		feed:      feed,
		alerter:   alerter,
		mailer:    mailer,
		publisher: publisher,
	}
}

func (d *OrderEventDispatcher) run(name string, fields map[string]interface{}, fn func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			logger.Error(fmt.Sprintf("Order side effect failed: %s", name), err, fields)
		}
	}()
}

// Wait blocks until every side effect started so far has finished.
func (d *OrderEventDispatcher) Wait() {
	d.wg.Wait()
}

func (d *OrderEventDispatcher) OrderCreated(order model.Order, settings model.Settings) {
	fields := map[string]interface{}{"order_number": order.OrderNumber}

	if d.feed != nil {
		d.run("live feed", fields, func(context.Context) error {
			return d.feed.Publish(websocket.EventOrderCreated, summarize(order))
		})
	}
	d.run("owner alert", fields, func(ctx context.Context) error {
		return d.alerter.Alert(ctx, newOrderAlert(order))
	})
	if order.CustomerEmail != nil {
		d.run("confirmation mail", fields, func(ctx context.Context) error {
			body, err := confirmationMail(order, settings.StoreInfo)
			if err != nil {
				return err
			}
			return d.mailer.Send(ctx, notify.Mail{
				To:      *order.CustomerEmail,
				Subject: fmt.Sprintf("%s: order %s received", settings.StoreInfo.Name, order.OrderNumber),
				HTML:    body,
			})
		})
	}
	if settings.MetaPixel.Enabled {
		d.run("purchase event", fields, func(ctx context.Context) error {
			return d.publisher.Publish(ctx, purchaseEvent(order, settings.MetaPixel.PixelID))
		})
	}
}

func (d *OrderEventDispatcher) OrderStatusChanged(order model.Order, previous model.OrderStatus) {
	if d.feed == nil {
		return
	}
	summary := summarize(order)
	summary.PreviousStatus = previous
	d.run("live feed", map[string]interface{}{"order_number": order.OrderNumber}, func(context.Context) error {
		return d.feed.Publish(websocket.EventOrderStatusChanged, summary)
	})
}

func newOrderAlert(order model.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New order %s\n", order.OrderNumber)
	fmt.Fprintf(&b, "%s, %s\n", order.CustomerName, order.CustomerPhone)
	fmt.Fprintf(&b, "%s (%s)\n", order.CustomerAddress, order.DeliveryZone)
	for _, item := range order.OrderItems {
		fmt.Fprintf(&b, "- %s x%d = %.0f BDT\n", item.TitleSnapshot, item.Qty, item.LineTotal())
	}
	fmt.Fprintf(&b, "Total %.0f BDT, cash on delivery", order.Total)
	return b.String()
}

// PendingDigestAlert summarizes pending orders for the owner.
func PendingDigestAlert(orders []model.Order, olderThan time.Duration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d order(s) still pending after %s\n", len(orders), olderThan)
	for _, o := range orders {
		fmt.Fprintf(&b, "- %s %s %s, %.0f BDT\n", o.OrderNumber, o.CustomerName, o.CustomerPhone, o.Total)
	}
	return strings.TrimRight(b.String(), "\n")
}

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<h2>Thank you for your order, {{.Order.CustomerName}}!</h2>
<p>Your order <strong>{{.Order.OrderNumber}}</strong> has been received. We will call you on {{.Order.CustomerPhone}} before delivery.</p>
<table>
{{range .Order.OrderItems}}<tr><td>{{.TitleSnapshot}}</td><td>x{{.Qty}}</td><td>{{printf "%.0f" .LineTotal}} BDT</td></tr>
{{end}}</table>
<p>Subtotal: {{printf "%.0f" .Order.Subtotal}} BDT<br>Delivery: {{printf "%.0f" .Order.DeliveryCharge}} BDT<br><strong>Total: {{printf "%.0f" .Order.Total}} BDT</strong> (cash on delivery)</p>
<p>Deliver to: {{.Order.CustomerAddress}}</p>
<p>{{.Store.Name}}{{if .Store.Phone}} | {{.Store.Phone}}{{end}}</p>`))

func confirmationMail(order model.Order, store model.StoreInfo) (string, error) {
	var buf bytes.Buffer
	err := confirmationTemplate.Execute(&buf, struct {
		Order model.Order
		Store model.StoreInfo
	}{order, store})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func purchaseEvent(order model.Order, pixelID string) analytics.Event {
	contentIDs := make([]uint, 0, len(order.OrderItems))
	numItems := 0
	for _, item := range order.OrderItems {
		if item.ProductID != nil {
			contentIDs = append(contentIDs, *item.ProductID)
		}
		numItems += item.Qty
	}

	return analytics.Event{
		ID:         "purchase-" + order.OrderNumber,
		Name:       analytics.EventPurchase,
		OccurredAt: order.CreatedAt,
		Properties: map[string]interface{}{
			"order_number": order.OrderNumber,
			"value":        order.Total,
			"currency":     "BDT",
			"content_ids":  contentIDs,
			"num_items":    numItems,
		},
		PixelID: pixelID,
	}
}
