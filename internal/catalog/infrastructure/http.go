package infrastructure

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-storefront/internal/catalog/application"
	"go-storefront/internal/catalog/domain"
	"go-storefront/pkg/errors"
	"go-storefront/pkg/middleware"
)

// HTTPHandler handles HTTP requests for products
type HTTPHandler struct {
	useCase *application.ProductUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(useCase *application.ProductUseCase) *HTTPHandler {
	return &HTTPHandler{useCase: useCase}
}

// RegisterRoutes registers the product routes. Reads are public; writes
// require an admin behind authenticate.
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup, authenticate gin.HandlerFunc) {
	products := r.Group("/products")
	{
		products.GET("/:id", h.GetProduct)

		admin := products.Group("", authenticate, middleware.RequireAdmin())
		admin.POST("", h.CreateProduct)
		admin.PUT("/:id/stock", h.SetStock)
		admin.PUT("/:id/active", h.SetActive)
	}
}

// CreateProductRequest is the request body for creating a product
type CreateProductRequest struct {
	Name          string          `json:"name" binding:"required" example:"Desk lamp"`
	Description   string          `json:"description" example:"Warm white LED"`
	Price         decimal.Decimal `json:"price" swaggertype:"number" example:"19.99"`
	StockQuantity int             `json:"stockQuantity" example:"12"`
}

// SetStockRequest is the request body for setting stock
type SetStockRequest struct {
	StockQuantity *int `json:"stockQuantity" binding:"required" example:"40"`
}

// SetActiveRequest is the request body for toggling availability
type SetActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required" example:"false"`
}

// ProductResponse is the response body for product operations
type ProductResponse struct {
	ID            string      `json:"productId"`
	Name          string      `json:"name"`
	Description   string      `json:"description,omitempty"`
	Price         json.Number `json:"price" swaggertype:"number" example:"19.99"`
	StockQuantity int         `json:"stockQuantity"`
	IsActive      bool        `json:"isActive"`
	CreatedAt     time.Time   `json:"createdAt"`
}

func toResponse(product *domain.Product) ProductResponse {
	return ProductResponse{
		ID:            product.ID.String(),
		Name:          product.Name,
		Description:   product.Description,
		Price:         json.Number(product.Price.StringFixed(2)),
		StockQuantity: product.StockQuantity,
		IsActive:      product.IsActive,
		CreatedAt:     product.CreatedAt,
	}
}

// CreateProduct adds a product to the catalog
// @Summary Create a product
// @Tags products
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body CreateProductRequest true "Product"
// @Success 201 {object} ProductResponse
// @Failure 400 {object} errors.ErrorResponse "Validation error"
// @Failure 403 {object} errors.ErrorResponse "Not an admin"
// @Router /products [post]
func (h *HTTPHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	product, err := h.useCase.CreateProduct(c.Request.Context(), application.CreateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, toResponse(product))
}

// GetProduct returns one product
// @Summary Get a product by ID
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} ProductResponse
// @Failure 404 {object} errors.ErrorResponse "Product not found"
// @Router /products/{id} [get]
func (h *HTTPHandler) GetProduct(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}

	product, err := h.useCase.GetProduct(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toResponse(product))
}

// SetStock sets the on-hand quantity
// @Summary Set product stock
// @Tags products
// @Accept json
// @Security ApiKeyAuth
// @Param id path string true "Product ID"
// @Param request body SetStockRequest true "Stock"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse "Negative stock"
// @Failure 404 {object} errors.ErrorResponse "Product not found"
// @Router /products/{id}/stock [put]
func (h *HTTPHandler) SetStock(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}

	var req SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	if err := h.useCase.SetStock(c.Request.Context(), id, *req.StockQuantity); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetActive withdraws a product from sale or restores it
// @Summary Set product availability
// @Tags products
// @Accept json
// @Security ApiKeyAuth
// @Param id path string true "Product ID"
// @Param request body SetActiveRequest true "Availability"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse "Product not found"
// @Router /products/{id}/active [put]
func (h *HTTPHandler) SetActive(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	if err := h.useCase.SetActive(c.Request.Context(), id, *req.IsActive); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func productIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(errors.NewNotFound("product", c.Param("id")))
		return uuid.Nil, false
	}
	return id, true
}
