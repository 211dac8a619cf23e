package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"grocery-api/internal/domain"
	catalogsvc "grocery-api/internal/service/catalog"
)

type createProductRequest struct {
	Name        string `json:"name"`
	Price       any    `json:"price"`
	Description string `json:"description"`
}

type setStockRequest struct {
	StockLevel *int `json:"stock_level"`
}

// parsePrice accepts a JSON number or a numeric string.
func parsePrice(v any) (*decimal.Decimal, error) {
	var (
		d   decimal.Decimal
		err error
	)
	switch p := v.(type) {
	case nil:
		return nil, nil
	case float64:
		d = decimal.NewFromFloat(p)
	case json.Number:
		d, err = decimal.NewFromString(p.String())
	case string:
		d, err = decimal.NewFromString(strings.TrimSpace(p))
	default:
		return nil, domain.Invalid("Invalid price format")
	}
	if err != nil {
		return nil, domain.Invalid("Invalid price format")
	}
	return &d, nil
}

func (h *handlers) listProducts(c *gin.Context) {
	products, err := h.deps.CatalogSvc.ListProducts(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponses(products))
}

func (h *handlers) getProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		respondError(c, http.StatusBadRequest, "Invalid product ID")
		return
	}
	product, err := h.deps.CatalogSvc.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponses([]domain.Product{*product})[0])
}

func (h *handlers) createProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Missing required fields")
		return
	}
	if strings.TrimSpace(req.Name) == "" || req.Price == nil || strings.TrimSpace(req.Description) == "" {
		respondError(c, http.StatusBadRequest, "Missing required fields")
		return
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		h.writeError(c, err)
		return
	}

	product, err := h.deps.CatalogSvc.CreateProduct(c.Request.Context(), catalogsvc.ProductInput{
		Name:        req.Name,
		Price:       price,
		Description: req.Description,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product added successfully", "product_id": product.ID})
}

func (h *handlers) deleteProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		respondError(c, http.StatusBadRequest, "Invalid product ID")
		return
	}
	if err := h.deps.CatalogSvc.DeleteProduct(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Product deleted successfully")
}

func (h *handlers) listInventory(c *gin.Context) {
	items, err := h.deps.CatalogSvc.ListInventory(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInventoryResponses(items))
}

func (h *handlers) setStock(c *gin.Context) {
	id, ok := pathID(c, "product_id")
	if !ok {
		respondError(c, http.StatusBadRequest, "Invalid product ID")
		return
	}
	var req setStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid stock level")
		return
	}
	if err := h.deps.CatalogSvc.SetStock(c.Request.Context(), id, req.StockLevel); err != nil {
		h.writeError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Stock updated successfully")
}
