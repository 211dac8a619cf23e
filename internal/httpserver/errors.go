package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"grocery-api/internal/domain"
)

func (h *handlers) writeError(c *gin.Context, err error) {
	var (
		validationErr *domain.ValidationError
		stockErr      *domain.InsufficientStockError
		notFoundErr   *domain.NotFoundError
		conflictErr   *domain.ConflictError
	)
	switch {
	case errors.As(err, &validationErr):
		respondError(c, http.StatusBadRequest, validationErr.Msg)
	case errors.As(err, &stockErr):
		respondError(c, http.StatusBadRequest, stockErr.Error())
	case errors.Is(err, domain.ErrEmptyCart):
		respondError(c, http.StatusBadRequest, "Cart is empty")
	case errors.As(err, &notFoundErr):
		respondError(c, http.StatusNotFound, notFoundErr.Msg)
	case errors.Is(err, domain.ErrNotFound):
		respondError(c, http.StatusNotFound, "Not found")
	case errors.As(err, &conflictErr):
		respondError(c, http.StatusConflict, conflictErr.Msg)
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrInUse):
		respondError(c, http.StatusConflict, "Conflict")
	case errors.Is(err, context.DeadlineExceeded):
		h.logger.Printf("request %s %s timed out request_id=%s", c.Request.Method, c.FullPath(), c.GetString(requestIDKey))
		respondError(c, http.StatusServiceUnavailable, "Request timed out")
	default:
		h.logger.Printf("request %s %s failed request_id=%s error=%v", c.Request.Method, c.FullPath(), c.GetString(requestIDKey), err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func respondMessage(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}
