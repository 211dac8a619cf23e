package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"grocery-api/internal/domain"
	customersvc "grocery-api/internal/service/customer"
)

type customerRequest struct {
	Name    string  `json:"name" binding:"required"`
	Email   string  `json:"email" binding:"required"`
	Address *string `json:"address"`
}

func (r customerRequest) input() customersvc.Input {
	return customersvc.Input{Name: r.Name, Email: r.Email, Address: r.Address}
}

func (h *handlers) listCustomers(c *gin.Context) {
	customers, err := h.deps.CustomerSvc.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerResponses(customers))
}

func (h *handlers) getCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		respondError(c, http.StatusBadRequest, "Invalid customer ID")
		return
	}
	customer, err := h.deps.CustomerSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerResponses([]domain.Customer{*customer})[0])
}

func (h *handlers) createCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Name and email are required")
		return
	}
	customer, err := h.deps.CustomerSvc.Create(c.Request.Context(), req.input())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Customer created successfully", "customer_id": customer.ID})
}

func (h *handlers) updateCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		respondError(c, http.StatusBadRequest, "Invalid customer ID")
		return
	}
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Name and email are required")
		return
	}
	if _, err := h.deps.CustomerSvc.Update(c.Request.Context(), id, req.input()); err != nil {
		h.writeError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Customer updated successfully")
}

func (h *handlers) deleteCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		respondError(c, http.StatusBadRequest, "Invalid customer ID")
		return
	}
	if err := h.deps.CustomerSvc.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Customer deleted successfully")
}
