// Package handlers implements the HTTP endpoints on top of the application
// services.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/InfringeScope/pkg/errors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeAppError maps err onto its HTTP status and writes {"error": msg}.
// Errors without a code are reported as a bare internal error.
func writeAppError(c *gin.Context, err error) {
	_ = c.Error(err)
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}
	c.AbortWithStatusJSON(errors.HTTPStatusForCode(code), ErrorResponse{Error: errors.Message(err)})
}

// writeBadRequest reports a malformed request.
func writeBadRequest(c *gin.Context, msg string) {
	writeAppError(c, errors.New(errors.CodeValidation, msg))
}

// queryInt reads an optional non-negative integer query parameter.
func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Newf(errors.CodeValidation, "%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

//Personal.AI order the ending
