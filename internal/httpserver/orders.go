package httpserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type placeOrderRequest struct {
	CustomerID int64 `json:"customer_id" binding:"required,gt=0"`
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

func (h *handlers) listOrders(c *gin.Context) {
	var filter *int64
	if raw, ok := c.GetQuery("customer_id"); ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondError(c, http.StatusBadRequest, "Invalid customer ID")
			return
		}
		filter = &id
	}
	orders, err := h.deps.OrderSvc.List(c.Request.Context(), filter)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

func (h *handlers) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Customer ID is required")
		return
	}
	order, err := h.deps.OrderSvc.Place(c.Request.Context(), req.CustomerID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order created successfully", "order_id": order.ID})
}

func (h *handlers) updateOrderStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		respondError(c, http.StatusBadRequest, "Invalid order ID")
		return
	}
	var req orderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Status is required")
		return
	}
	status, err := h.deps.OrderSvc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, fmt.Sprintf("Order status updated to %s", status))
}

func (h *handlers) deleteOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		respondError(c, http.StatusBadRequest, "Invalid order ID")
		return
	}
	if err := h.deps.OrderSvc.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Order deleted successfully")
}
