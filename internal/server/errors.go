package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	gatewaydomain "github.com/soukly/payments/internal/gateway/domain"
	paymentdomain "github.com/soukly/payments/internal/payment/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	OrderID string            `json:"order_id,omitempty"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var procErr *paymentdomain.ProcessingError
	if errors.As(err, &procErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "processing_error",
			Message: "payment processing failed",
			OrderID: procErr.OrderID,
		}
	}

	switch {
	case errors.Is(err, paymentdomain.ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
		}
	case errors.Is(err, paymentdomain.ErrOrderExists):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "payment already exists for order",
		}
	case errors.Is(err, paymentdomain.ErrAlreadyRefunded):
		return http.StatusBadRequest, errorPayload{
			Type:    "already_refunded",
			Message: "payment already refunded",
		}
	case errors.Is(err, paymentdomain.ErrRefundNotAllowed):
		return http.StatusBadRequest, errorPayload{
			Type:    "refund_not_allowed",
			Message: "payment is not refundable in its current state",
		}
	case errors.Is(err, paymentdomain.ErrInvalidState):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_state",
			Message: "operation not allowed in current payment state",
		}
	case errors.Is(err, paymentdomain.ErrInvalidSignature),
		errors.Is(err, gatewaydomain.ErrInvalidSignature):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_signature",
			Message: "webhook signature verification failed",
		}
	case errors.Is(err, paymentdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

// classifyErrorForLog labels request errors for access logs without
// leaking internals.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "internal_error", payload.Type
	case status == http.StatusNotFound:
		return "not_found", payload.Type
	default:
		return "client_error", payload.Type
	}
}
