package service

import (
	"fmt"
	"io"

	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/ashascraft/storefront-backend/internal/app/repository"
	"github.com/xuri/excelize/v2"
)

const (
	ordersSheet   = "Orders"
	itemsSheet    = "Items"
	exportMaxRows = 5000
	exportPage    = 500
)

var (
	orderExportHeader = []interface{}{
		"Order Number", "Date", "Status", "Customer", "Phone", "Email", "Address",
		"Zone", "Subtotal", "Delivery", "Total", "Notes", "Internal Notes",
	}
	itemExportHeader = []interface{}{"Order Number", "Product", "Unit Price", "Qty", "Line Total"}
)

// OrderExporter writes filtered orders as an XLSX workbook.
type OrderExporter struct {
	orderRepo repository.OrderRepository
}

func NewOrderExporter(orderRepo repository.OrderRepository) *OrderExporter {
	return &OrderExporter{orderRepo: orderRepo}
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func (e *OrderExporter) collect(filter repository.OrderFilter) ([]model.Order, error) {
	var all []model.Order
	filter.Limit = exportPage
	filter.Offset = 0
	for len(all) < exportMaxRows {
		page, total, err := e.orderRepo.List(filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < exportPage || int64(len(all)) >= total {
			break
		}
		filter.Offset += exportPage
	}
	return all, nil
}

// Export writes one row per order and one row per order item. It returns the number of orders written.
func (e *OrderExporter) Export(filter repository.OrderFilter, w io.Writer) (int, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return 0, ErrInvalidOrderStatus
	}
	orders, err := e.collect(filter)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ordersSheet); err != nil {
		return 0, err
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return 0, err
	}
	if err := f.SetSheetRow(ordersSheet, "A1", &orderExportHeader); err != nil {
		return 0, err
	}
	if err := f.SetSheetRow(itemsSheet, "A1", &itemExportHeader); err != nil {
		return 0, err
	}

	itemRow := 2
	for i, o := range orders {
		row := []interface{}{
			o.OrderNumber,
			o.CreatedAt.Format("2006-01-02 15:04"),
			string(o.Status),
			o.CustomerName,
			o.CustomerPhone,
			deref(o.CustomerEmail),
			o.CustomerAddress,
			string(o.DeliveryZone),
			o.Subtotal,
			o.DeliveryCharge,
			o.Total,
			deref(o.Notes),
			deref(o.InternalNotes),
		}
		if err := f.SetSheetRow(ordersSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return 0, err
		}
		for _, item := range o.OrderItems {
			line := []interface{}{o.OrderNumber, item.TitleSnapshot, item.PriceSnapshot, item.Qty, item.LineTotal()}
			if err := f.SetSheetRow(itemsSheet, fmt.Sprintf("A%d", itemRow), &line); err != nil {
				return 0, err
			}
			itemRow++
		}
	}

	if err := f.Write(w); err != nil {
		return 0, err
	}
	return len(orders), nil
}
