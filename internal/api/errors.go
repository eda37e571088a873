package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/equitytax/tax-calculator/internal/calculation"
	"github.com/equitytax/tax-calculator/internal/domain"
	"github.com/equitytax/tax-calculator/internal/output"
	"github.com/equitytax/tax-calculator/internal/service"
	"github.com/equitytax/tax-calculator/internal/storage"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string                   `json:"error"`
	Fields []domain.ValidationError `json:"fields,omitempty"`
}

// statusFor maps service and storage errors onto HTTP status codes.
func statusFor(err error) int {
	var verrs domain.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, output.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, calculation.ErrUnknownTaxYear):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateReturn),
		errors.Is(err, service.ErrNotEditable),
		errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (h *Handler) sendError(c *gin.Context, err error) {
	status := statusFor(err)
	resp := ErrorResponse{Error: err.Error()}
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		resp.Fields = verrs
	}
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.String("request_id", GetRequestID(c)),
		)
		resp = ErrorResponse{Error: "internal server error"}
	}
	c.AbortWithStatusJSON(status, resp)
}

func (h *Handler) badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: message})
}
