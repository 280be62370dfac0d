package controller

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/ashascraft/storefront-backend/internal/app/repository"
	"github.com/ashascraft/storefront-backend/internal/app/service"
	apperrors "github.com/ashascraft/storefront-backend/internal/errors"
	"github.com/ashascraft/storefront-backend/internal/middleware"
	ws "github.com/ashascraft/storefront-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminOrderController serves order management, the dashboard and the live order feed.
type AdminOrderController struct {
	orderService service.OrderService
	exporter     *service.OrderExporter
	hub          *ws.Hub
	upgrader     websocket.Upgrader
}

func NewAdminOrderController(orderService service.OrderService, exporter *service.OrderExporter, hub *ws.Hub, allowedOrigins []string) *AdminOrderController {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[strings.TrimSpace(o)] = true
	}

	return &AdminOrderController{
		orderService: orderService,
		exporter:     exporter,
		hub:          hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins["*"] || origins[origin]
			},
		},
	}
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UpdateOrderNotesRequest struct {
	InternalNotes *string `json:"internal_notes"`
}

// orderFilterFromQuery reads search and status. An unknown status is answered with 400.
func orderFilterFromQuery(c *gin.Context) (repository.OrderFilter, bool) {
	filter := repository.OrderFilter{
		Search: strings.TrimSpace(c.Query("search")),
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" && raw != "all" {
		status := model.OrderStatus(raw)
		if !status.Valid() {
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Unknown order status")
			return filter, false
		}
		filter.Status = &status
	}
	return filter, true
}

// ListOrders returns one page of orders, newest first
// GET /api/v1/admin/orders?search=&status=&page=&page_size=
func (ctrl *AdminOrderController) ListOrders(c *gin.Context) {
	filter, ok := orderFilterFromQuery(c)
	if !ok {
		return
	}
	page, pageSize, offset := pagination(c)
	filter.Limit = pageSize
	filter.Offset = offset

	orders, total, err := ctrl.orderService.ListOrders(filter)
	if err != nil {
		respondAdminError(c, err, "list orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":    orders,
		"count":     len(orders),
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetOrder returns an order with its internal notes
// GET /api/v1/admin/orders/:id
func (ctrl *AdminOrderController) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrder(id)
	if err != nil {
		respondAdminError(c, err, "get order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":    order,
		"timeline": model.BuildTimeline(order.Status),
	})
}

// UpdateStatus sets any known status
// PUT /api/v1/admin/orders/:id/status
func (ctrl *AdminOrderController) UpdateStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := ctrl.orderService.UpdateStatus(id, model.OrderStatus(strings.TrimSpace(req.Status)))
	if err != nil {
		respondAdminError(c, err, "update order status")
		return
	}

	log.Info("Order status changed", map[string]interface{}{
		"order_id": id,
		"status":   order.Status,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated",
		"order":   order,
	})
}

// UpdateNotes replaces the internal notes of an order
// PUT /api/v1/admin/orders/:id/notes
func (ctrl *AdminOrderController) UpdateNotes(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderNotesRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := ctrl.orderService.UpdateInternalNotes(id, req.InternalNotes)
	if err != nil {
		respondAdminError(c, err, "update order notes")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// Dashboard returns order totals, revenue and the latest orders
// GET /api/v1/admin/dashboard
func (ctrl *AdminOrderController) Dashboard(c *gin.Context) {
	stats, err := ctrl.orderService.Dashboard()
	if err != nil {
		respondAdminError(c, err, "load dashboard")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportOrders downloads the filtered orders as an XLSX workbook
// GET /api/v1/admin/orders/export?search=&status=
func (ctrl *AdminOrderController) ExportOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter, ok := orderFilterFromQuery(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	count, err := ctrl.exporter.Export(filter, &buf)
	if err != nil {
		respondAdminError(c, err, "export orders")
		return
	}

	log.Info("Orders exported", map[string]interface{}{
		"orders": count,
		"bytes":  buf.Len(),
	})

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// LiveFeed upgrades to a websocket that streams order events
// GET /api/v1/admin/ws
// Browsers cannot set headers on the upgrade request, so the token may come in the query string.
func (ctrl *AdminOrderController) LiveFeed(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err, nil)
		return
	}

	client := ws.NewClient(ctrl.hub, ws.NewConn(conn), userID)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("Admin live feed connected", map[string]interface{}{
		"user_id": userID,
	})
}
