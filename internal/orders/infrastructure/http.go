package infrastructure

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-storefront/internal/orders/application"
	"go-storefront/internal/orders/domain"
	"go-storefront/pkg/auth"
	"go-storefront/pkg/errors"
	"go-storefront/pkg/middleware"
)

// IdempotencyKeyHeader lets clients retry a checkout without placing it twice
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 128

// HTTPHandler handles HTTP requests for orders
type HTTPHandler struct {
	useCase *application.OrderUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(useCase *application.OrderUseCase) *HTTPHandler {
	return &HTTPHandler{useCase: useCase}
}

// RegisterRoutes registers the order routes behind authenticate
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup, authenticate gin.HandlerFunc) {
	orders := r.Group("/orders", authenticate)
	{
		orders.POST("", h.CreateOrder)
		orders.GET("/myOrders", h.ListMyOrders)
		orders.GET("/:id", h.GetOrder)
		orders.PUT("/:id/cancel", h.CancelOrder)
		orders.PUT("/:id/status", middleware.RequireAdmin(), h.UpdateStatus)
	}
}

// =============================================================================
// Request/Response DTOs
// =============================================================================

// CreateOrderRequest is the checkout body
type CreateOrderRequest struct {
	UserID string             `json:"userId" example:"3f6c2b1e-8a4d-4c1e-9f7a-2b5d6e7f8a9b"`
	Items  []OrderItemRequest `json:"items"`
}

// OrderItemRequest is one cart line
type OrderItemRequest struct {
	ProductID string `json:"productId" example:"9b1d3c5e-7f9a-4b2c-8d4e-6f8a0b2c4d6e"`
	Quantity  int    `json:"quantity" example:"2"`
}

// CreateOrderResponse carries the id of the placed order
type CreateOrderResponse struct {
	OrderID  string `json:"orderId" example:"c0ffee00-1234-4abc-9def-0123456789ab"`
	Replayed bool   `json:"replayed,omitempty"`
}

// UpdateStatusRequest is the admin status change body
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required" example:"Paid"`
}

// OrderViewResponse is an order with its lines
type OrderViewResponse struct {
	OrderID     string              `json:"orderId"`
	UserID      string              `json:"userId"`
	OrderDate   time.Time           `json:"orderDate"`
	Status      string              `json:"status" example:"Pending"`
	TotalAmount json.Number         `json:"totalAmount" swaggertype:"number" example:"25.00"`
	Items       []OrderLineResponse `json:"items"`
}

// OrderLineResponse is one line of an order view
type OrderLineResponse struct {
	ProductID   string      `json:"productId"`
	ProductName string      `json:"productName" example:"Desk lamp"`
	Quantity    int         `json:"quantity" example:"2"`
	UnitPrice   json.Number `json:"unitPrice" swaggertype:"number" example:"10.00"`
}

// money renders an amount as a fixed-point JSON number
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func toViewResponse(view *domain.OrderView) OrderViewResponse {
	items := make([]OrderLineResponse, len(view.Lines))
	for i, line := range view.Lines {
		items[i] = OrderLineResponse{
			ProductID:   line.ProductID.String(),
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   money(line.UnitPrice),
		}
	}
	return OrderViewResponse{
		OrderID:     view.OrderID.String(),
		UserID:      view.UserID.String(),
		OrderDate:   view.OrderDate,
		Status:      view.Status.String(),
		TotalAmount: money(view.TotalAmount),
		Items:       items,
	}
}

// =============================================================================
// Handlers
// =============================================================================

// CreateOrder places an order
// @Summary Place an order
// @Description Reserves stock for every item and creates a pending order in one transaction
// @Tags orders
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param Idempotency-Key header string false "Replays the original order when reused"
// @Param request body CreateOrderRequest true "Cart"
// @Success 201 {object} CreateOrderResponse "Order created"
// @Success 200 {object} CreateOrderResponse "Order replayed"
// @Failure 400 {object} errors.ErrorResponse "Insufficient stock, inactive product or bad input"
// @Failure 403 {object} errors.ErrorResponse "Ordering for another user"
// @Failure 404 {object} errors.ErrorResponse "Product not found"
// @Failure 503 {object} errors.ErrorResponse "Transaction aborted, retry"
// @Router /orders [post]
func (h *HTTPHandler) CreateOrder(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	userID := identity.UserID
	if req.UserID != "" {
		parsed, err := uuid.Parse(req.UserID)
		if err != nil {
			c.Error(errors.NewValidation("invalid userId", req.UserID))
			return
		}
		if parsed != identity.UserID && !identity.IsAdmin() {
			c.Error(errors.NewForbidden("cannot place orders for another user"))
			return
		}
		userID = parsed
	}

	lines := make([]domain.LineRequest, len(req.Items))
	for i, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			c.Error(errors.NewValidation("invalid productId", item.ProductID))
			return
		}
		lines[i] = domain.LineRequest{ProductID: productID, Quantity: item.Quantity}
	}

	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	if len(key) > maxIdempotencyKeyLength {
		c.Error(errors.NewValidation("Idempotency-Key is too long", nil))
		return
	}

	output, err := h.useCase.CreateOrder(c.Request.Context(), application.CreateOrderInput{
		UserID:         userID,
		Lines:          lines,
		IdempotencyKey: key,
	})
	if err != nil {
		c.Error(err)
		return
	}

	status := http.StatusCreated
	if output.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, CreateOrderResponse{OrderID: output.OrderID.String(), Replayed: output.Replayed})
}

// GetOrder returns one order
// @Summary Get an order by ID
// @Description Admins may read any order; other callers only their own
// @Tags orders
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Order ID"
// @Success 200 {object} OrderViewResponse
// @Failure 404 {object} errors.ErrorResponse "Order not found"
// @Router /orders/{id} [get]
func (h *HTTPHandler) GetOrder(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	view, err := h.useCase.GetOrder(c.Request.Context(), application.GetOrderInput{
		OrderID:     orderID,
		RequesterID: identity.UserID,
		IsAdmin:     identity.IsAdmin(),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toViewResponse(view))
}

// ListMyOrders returns the caller's orders
// @Summary List the caller's orders
// @Description Newest first
// @Tags orders
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} OrderViewResponse
// @Router /orders/myOrders [get]
func (h *HTTPHandler) ListMyOrders(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	views, err := h.useCase.ListUserOrders(c.Request.Context(), identity.UserID)
	if err != nil {
		c.Error(err)
		return
	}

	resp := make([]OrderViewResponse, len(views))
	for i, view := range views {
		resp[i] = toViewResponse(view)
	}
	c.JSON(http.StatusOK, resp)
}

// CancelOrder cancels a pending order and restores its stock
// @Summary Cancel an order
// @Description Owner only, and only while the order is Pending
// @Tags orders
// @Security ApiKeyAuth
// @Param id path string true "Order ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse "Order not found"
// @Failure 409 {object} errors.ErrorResponse "Not the owner or not pending"
// @Router /orders/{id}/cancel [put]
func (h *HTTPHandler) CancelOrder(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	err := h.useCase.CancelOrder(c.Request.Context(), application.CancelOrderInput{
		OrderID: orderID,
		UserID:  identity.UserID,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateStatus moves an order along its lifecycle
// @Summary Change an order's status
// @Description Admin only. Pending→Paid|Cancelled, Paid→Shipped.
// @Tags orders
// @Accept json
// @Security ApiKeyAuth
// @Param id path string true "Order ID"
// @Param request body UpdateStatusRequest true "Target status"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse "Unknown status or illegal transition"
// @Failure 403 {object} errors.ErrorResponse "Not an admin"
// @Failure 404 {object} errors.ErrorResponse "Order not found"
// @Router /orders/{id}/status [put]
func (h *HTTPHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	err := h.useCase.UpdateStatus(c.Request.Context(), application.UpdateStatusInput{
		OrderID: orderID,
		Status:  req.Status,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) identity(c *gin.Context) (auth.Identity, bool) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.Error(errors.NewUnauthorized("authentication required"))
		return auth.Identity{}, false
	}
	return identity, true
}

// orderIDParam reads the :id segment. A segment that is not a UUID names no
// order, so it is reported as not found.
func orderIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(errors.NewNotFound("order", c.Param("id")))
		return uuid.Nil, false
	}
	return id, true
}
