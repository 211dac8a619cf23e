package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	cartsvc "grocery-api/internal/service/cart"
)

type addToCartRequest struct {
	CustomerID int64 `json:"customer_id" binding:"required,gt=0"`
	ProductID  int64 `json:"product_id" binding:"required,gt=0"`
	Quantity   *int  `json:"quantity" binding:"omitempty,gt=0"`
}

func (h *handlers) addToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid customer ID, product ID, or quantity")
		return
	}
	qty, err := h.deps.CartSvc.Add(c.Request.Context(), cartsvc.AddInput{
		CustomerID: req.CustomerID,
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, fmt.Sprintf("Added %d of product %d to cart", qty, req.ProductID))
}

func (h *handlers) viewCart(c *gin.Context) {
	customerID, ok := pathID(c, "customer_id")
	if !ok {
		respondError(c, http.StatusBadRequest, "Invalid customer ID")
		return
	}
	lines, err := h.deps.CartSvc.View(c.Request.Context(), customerID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if len(lines) == 0 {
		respondMessage(c, http.StatusOK, "Cart is empty")
		return
	}
	c.JSON(http.StatusOK, toCartResponses(lines))
}

func (h *handlers) removeFromCart(c *gin.Context) {
	customerID, ok := pathID(c, "customer_id")
	if !ok {
		respondError(c, http.StatusBadRequest, "Invalid customer ID")
		return
	}
	productID, ok := pathID(c, "product_id")
	if !ok {
		respondError(c, http.StatusBadRequest, "Invalid product ID")
		return
	}
	if err := h.deps.CartSvc.Remove(c.Request.Context(), customerID, productID); err != nil {
		h.writeError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Item deleted successfully")
}
