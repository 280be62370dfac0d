package service

import (
	"errors"
	"strings"
	"time"

	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/ashascraft/storefront-backend/internal/app/repository"
	"github.com/ashascraft/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidOrderStatus = errors.New("invalid order status")
)

const (
	defaultOrderPageSize = 20
	maxOrderPageSize     = 100
	dashboardRecentCount = 5
)

type TrackingResult struct {
	Order    model.Order          `json:"order"`
	Timeline model.StatusTimeline `json:"timeline"`
}

type DashboardStats struct {
	repository.OrderStats
	TotalProducts int64         `json:"total_products"`
	RecentOrders  []model.Order `json:"recent_orders"`
}

type OrderService interface {
	// TrackOrder needs both the order number and the phone it was placed with.
	// Any mismatch is reported as ErrOrderNotFound.
	TrackOrder(orderNumber, phone string) (*TrackingResult, error)
	GetConfirmation(orderNumber string) (*model.Order, error)

	ListOrders(filter repository.OrderFilter) ([]model.Order, int64, error)
	GetOrder(id uint) (*model.Order, error)
	UpdateStatus(id uint, status model.OrderStatus) (*model.Order, error)
	UpdateInternalNotes(id uint, notes *string) (*model.Order, error)
	Dashboard() (*DashboardStats, error)
	PendingOlderThan(age time.Duration) ([]model.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	events      OrderEvents
}

func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, events OrderEvents) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		events:      events,
	}
}

func mapOrderErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrderNotFound
	}
	return err
}

func (s *orderService) TrackOrder(orderNumber, phone string) (*TrackingResult, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	phone = strings.TrimSpace(phone)
	if orderNumber == "" || phone == "" {
		return nil, ErrOrderNotFound
	}

	order, err := s.orderRepo.FindByOrderNumberAndPhone(orderNumber, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Info("Order tracking miss", map[string]interface{}{
				"order_number": orderNumber,
			})
		}
		return nil, mapOrderErr(err)
	}

	return &TrackingResult{
		Order:    order.Public(),
		Timeline: model.BuildTimeline(order.Status),
	}, nil
}

func (s *orderService) GetConfirmation(orderNumber string) (*model.Order, error) {
	order, err := s.orderRepo.FindByOrderNumber(strings.TrimSpace(orderNumber))
	if err != nil {
		return nil, mapOrderErr(err)
	}
	public := order.Public()
	return &public, nil
}

func (s *orderService) ListOrders(filter repository.OrderFilter) ([]model.Order, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultOrderPageSize
	}
	if filter.Limit > maxOrderPageSize {
		filter.Limit = maxOrderPageSize
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, 0, ErrInvalidOrderStatus
	}
	return s.orderRepo.List(filter)
}

func (s *orderService) GetOrder(id uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		return nil, mapOrderErr(err)
	}
	return order, nil
}

// UpdateStatus accepts any known status from any status.
func (s *orderService) UpdateStatus(id uint, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidOrderStatus
	}

	current, err := s.orderRepo.FindByID(id)
	if err != nil {
		return nil, mapOrderErr(err)
	}
	previous := current.Status

	if err := s.orderRepo.UpdateStatus(id, status); err != nil {
		return nil, mapOrderErr(err)
	}
	current.Status = status

	logger.Info("Order status updated", map[string]interface{}{
		"order_id":     id,
		"order_number": current.OrderNumber,
		"from":         previous,
		"to":           status,
	})

	if s.events != nil && previous != status {
		s.events.OrderStatusChanged(*current, previous)
	}
	return current, nil
}

func (s *orderService) UpdateInternalNotes(id uint, notes *string) (*model.Order, error) {
	notes = trimOptional(notes)
	if err := s.orderRepo.UpdateInternalNotes(id, notes); err != nil {
		return nil, mapOrderErr(err)
	}
	return s.GetOrder(id)
}

func (s *orderService) Dashboard() (*DashboardStats, error) {
	stats, err := s.orderRepo.Stats()
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.CountAll()
	if err != nil {
		return nil, err
	}
	recent, err := s.orderRepo.FindRecent(dashboardRecentCount)
	if err != nil {
		return nil, err
	}
	return &DashboardStats{
		OrderStats:    stats,
		TotalProducts: products,
		RecentOrders:  recent,
	}, nil
}

func (s *orderService) PendingOlderThan(age time.Duration) ([]model.Order, error) {
	return s.orderRepo.FindPendingBefore(time.Now().Add(-age))
}
