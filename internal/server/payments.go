package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	ledgerdomain "github.com/soukly/payments/internal/ledger/domain"
	paymentdomain "github.com/soukly/payments/internal/payment/domain"
	"github.com/soukly/payments/pkg/db/pagination"
)

func (s *Server) HandleCreatePaymentIntent(c *gin.Context) {
	var req paymentdomain.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.CreateIntent(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) HandleCapture(c *gin.Context) {
	orderID := strings.TrimSpace(c.Param("orderId"))
	if orderID == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	charge, err := s.paymentSvc.Capture(c.Request.Context(), orderID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, charge)
}

func (s *Server) HandleCancel(c *gin.Context) {
	orderID := strings.TrimSpace(c.Param("orderId"))
	if orderID == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	charge, err := s.paymentSvc.Cancel(c.Request.Context(), orderID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, charge)
}

func (s *Server) HandleRefund(c *gin.Context) {
	var req paymentdomain.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	charge, err := s.paymentSvc.Refund(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, charge)
}

func (s *Server) HandleGetPayment(c *gin.Context) {
	orderID := strings.TrimSpace(c.Param("orderId"))
	if orderID == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	charge, err := s.paymentSvc.GetByOrderID(c.Request.Context(), orderID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, charge)
}

func (s *Server) HandleListPayments(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	filter := ledgerdomain.ListChargeFilter{
		Currency: strings.ToLower(strings.TrimSpace(c.Query("currency"))),
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, err := ledgerdomain.ParseChargeStatus(raw)
		if err != nil {
			AbortWithError(c, newValidationError("status", "invalid_status", "unknown status value"))
			return
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, newValidationError("from", "invalid_time", "expected RFC3339 timestamp"))
			return
		}
		filter.From = &from
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, newValidationError("to", "invalid_time", "expected RFC3339 timestamp"))
			return
		}
		filter.To = &to
	}

	resp, err := s.paymentSvc.List(c.Request.Context(), paymentdomain.ListRequest{
		Filter: filter,
		Page:   page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
