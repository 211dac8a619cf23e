package httpserver

import (
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
)

type handlers struct {
	logger *log.Logger
	deps   Deps
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
