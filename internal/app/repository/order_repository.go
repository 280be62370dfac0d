package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/ashascraft/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderFilter struct {
	Search string
	Status *model.OrderStatus
	Since  *time.Time
	Limit  int
	Offset int
}

type OrderStats struct {
	TotalOrders     int64   `json:"total_orders"`
	PendingOrders   int64   `json:"pending_orders"`
	DeliveredOrders int64   `json:"delivered_orders"`
	Revenue         float64 `json:"revenue"`
}

type OrderRepository interface {
	CreateWithItems(order *model.Order) error
	OrderNumberExists(orderNumber string) (bool, error)
	FindByID(id uint) (*model.Order, error)
	FindByOrderNumber(orderNumber string) (*model.Order, error)
	FindByOrderNumberAndPhone(orderNumber, phone string) (*model.Order, error)
	List(filter OrderFilter) ([]model.Order, int64, error)
	FindRecent(limit int) ([]model.Order, error)
	FindPendingBefore(cutoff time.Time) ([]model.Order, error)
	UpdateStatus(id uint, status model.OrderStatus) error
	UpdateInternalNotes(id uint, notes *string) error
	Stats() (OrderStats, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) withItems() *gorm.DB {
	return r.db.Preload("OrderItems", func(q *gorm.DB) *gorm.DB {
		return q.Order("order_items.id ASC")
	})
}

// CreateWithItems writes the order header and every item in one transaction,
// so an order is never visible without its items.
func (r *orderRepository) CreateWithItems(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"order_number": order.OrderNumber,
		"items":        len(order.OrderItems),
		"total":        order.Total,
	})

	items := order.OrderItems
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("OrderItems").Create(order).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return fmt.Errorf("order %s has no items", order.OrderNumber)
		}
		for i := range items {
			items[i].ID = 0
			items[i].OrderID = order.ID
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"order_number": order.OrderNumber,
		})
		return err
	}

	order.OrderItems = items
	logger.Debug("Order created in database", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	})
	return nil
}

func (r *orderRepository) OrderNumberExists(orderNumber string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Order{}).Where("order_number = ?", orderNumber).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	if err := r.withItems().First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByOrderNumber(orderNumber string) (*model.Order, error) {
	var order model.Order
	if err := r.withItems().Where("order_number = ?", orderNumber).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByOrderNumberAndPhone matches both fields exactly.
func (r *orderRepository) FindByOrderNumberAndPhone(orderNumber, phone string) (*model.Order, error) {
	var order model.Order
	err := r.withItems().
		Where("order_number = ? AND customer_phone = ?", orderNumber, phone).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) applyFilter(query *gorm.DB, filter OrderFilter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := fmt.Sprintf("%%%s%%", strings.ToLower(search))
		query = query.Where(
			"LOWER(orders.order_number) LIKE ? OR LOWER(orders.customer_name) LIKE ? OR orders.customer_phone LIKE ?",
			like, like, like,
		)
	}
	if filter.Status != nil {
		query = query.Where("orders.status = ?", *filter.Status)
	}
	if filter.Since != nil {
		query = query.Where("orders.created_at >= ?", *filter.Since)
	}
	return query
}

// List returns one page of orders, newest first, and the total matching the filter.
func (r *orderRepository) List(filter OrderFilter) ([]model.Order, int64, error) {
	logger.Debug("Listing orders", map[string]interface{}{
		"search": filter.Search,
		"status": filter.Status,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})

	var total int64
	if err := r.applyFilter(r.db.Model(&model.Order{}), filter).Count(&total).Error; err != nil {
		logger.Error("Failed to count orders", err)
		return nil, 0, err
	}

	query := r.applyFilter(r.withItems().Model(&model.Order{}), filter).
		Order("orders.created_at DESC").
		Order("orders.id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var orders []model.Order
	if err := query.Find(&orders).Error; err != nil {
		logger.Error("Failed to list orders", err)
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) FindRecent(limit int) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindPendingBefore(cutoff time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.
		Where("status = ? AND created_at < ?", model.OrderStatusPending, cutoff).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find stale pending orders", err)
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) UpdateStatus(id uint, status model.OrderStatus) error {
	res := r.db.Model(&model.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		logger.Error("Failed to update order status", res.Error, map[string]interface{}{
			"order_id": id,
			"status":   status,
		})
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepository) UpdateInternalNotes(id uint, notes *string) error {
	res := r.db.Model(&model.Order{}).Where("id = ?", id).Update("internal_notes", notes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Stats counts all orders and sums the total of delivered ones.
func (r *orderRepository) Stats() (OrderStats, error) {
	var stats OrderStats

	type statusRow struct {
		Status model.OrderStatus
		Count  int64
		Amount float64
	}
	var rows []statusRow
	err := r.db.Model(&model.Order{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total), 0) AS amount").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to aggregate order stats", err)
		return stats, err
	}

	for _, row := range rows {
		stats.TotalOrders += row.Count
		switch row.Status {
		case model.OrderStatusPending:
			stats.PendingOrders = row.Count
		case model.OrderStatusDelivered:
			stats.DeliveredOrders = row.Count
			stats.Revenue = row.Amount
		}
	}
	return stats, nil
}
