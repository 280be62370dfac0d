package service

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/ashascraft/storefront-backend/internal/app/repository"
	"github.com/ashascraft/storefront-backend/internal/db"
	"github.com/ashascraft/storefront-backend/internal/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func createCategory(t *testing.T, testDB *gorm.DB, name, slug string) *model.Category {
	t.Helper()
	category := &model.Category{Name: name, Slug: slug}
	require.NoError(t, testDB.Create(category).Error)
	return category
}

func createProduct(t *testing.T, testDB *gorm.DB, p model.Product) *model.Product {
	t.Helper()
	if p.Version == 0 {
		p.Version = 1
	}
	require.NoError(t, repository.NewProductRepository(testDB).Create(&p, nil))
	return &p
}

func uintPtr(v uint) *uint {
	return &v
}

func stringPtr(v string) *string {
	return &v
}

func boolPtr(v bool) *bool {
	return &v
}

// memoryBlobs records uploads and deletes.
type memoryBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newMemoryBlobs() *memoryBlobs {
	return &memoryBlobs{objects: map[string][]byte{}}
}

func (m *memoryBlobs) Upload(_ context.Context, folder, filename, contentType string, body io.Reader, _ int64) (*storage.UploadResult, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return nil, err
	}
	key := storage.ObjectKey(folder, filename, contentType)
	m.mu.Lock()
	m.objects[key] = buf.Bytes()
	m.mu.Unlock()
	return &storage.UploadResult{URL: m.PublicURL(key), Key: key}, nil
}

func (m *memoryBlobs) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

func (m *memoryBlobs) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memoryBlobs) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

// presigningBlobs adds direct-upload support on top of memoryBlobs.
type presigningBlobs struct {
	*memoryBlobs
}

func (p presigningBlobs) PresignUpload(_ context.Context, folder, filename, contentType string) (*storage.PresignedURLResponse, error) {
	key := storage.ObjectKey(folder, filename, contentType)
	return &storage.PresignedURLResponse{
		UploadURL: "https://upload.test/" + key,
		FileURL:   p.PublicURL(key),
		Key:       key,
	}, nil
}

// recordingEvents captures order events synchronously.
type recordingEvents struct {
	mu      sync.Mutex
	created []model.Order
	changed []model.OrderStatus
}

func (r *recordingEvents) OrderCreated(order model.Order, _ model.Settings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, order)
}

func (r *recordingEvents) OrderStatusChanged(order model.Order, previous model.OrderStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changed = append(r.changed, previous, order.Status)
}

func createOrder(t *testing.T, testDB *gorm.DB, number, phone string, status model.OrderStatus, total float64) *model.Order {
	t.Helper()
	order := &model.Order{
		OrderNumber:     number,
		CustomerName:    "Nasrin Akter",
		CustomerPhone:   phone,
		CustomerAddress: "Mirpur 10, Dhaka",
		InternalNotes:   stringPtr("repeat customer"),
		DeliveryZone:    model.ZoneInsideCity,
		Status:          status,
		Subtotal:        total,
		Total:           total,
		PaymentMethod:   model.PaymentCashOnDelivery,
		OrderItems: []model.OrderItem{
			{TitleSnapshot: "Nakshi Kantha", PriceSnapshot: total, Qty: 1},
		},
	}
	require.NoError(t, repository.NewOrderRepository(testDB).CreateWithItems(order))
	return order
}
