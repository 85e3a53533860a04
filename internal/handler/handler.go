// Package handler contains the Gin HTTP handlers. Handlers bind and
// validate input, delegate to services, and translate domain errors to
// the response envelope; they hold no engine logic of their own.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/classcast/classcast-backend/internal/response"
)

// parseUUID extracts and validates a UUID path parameter. On failure it
// writes the error response and reports false.
func parseUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
