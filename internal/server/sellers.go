package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	sellerdomain "github.com/soukly/payments/internal/seller/domain"
)

type upsertSellerRequest struct {
	SellerID    string `json:"seller_id"`
	AccountID   string `json:"account_id"`
	DisplayName string `json:"display_name"`
	Active      *bool  `json:"active"`
}

// HandleUpsertSeller registers or updates the gateway account mapping
// for a seller. Called by the onboarding flow once the connected
// account exists.
func (s *Server) HandleUpsertSeller(c *gin.Context) {
	var req upsertSellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.SellerID = strings.TrimSpace(req.SellerID)
	req.AccountID = strings.TrimSpace(req.AccountID)
	if req.SellerID == "" || req.AccountID == "" {
		AbortWithError(c, newValidationError("seller_id", "required", "seller_id and account_id are required"))
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	account := &sellerdomain.SellerAccount{
		ID:          s.genID.Generate(),
		SellerID:    req.SellerID,
		AccountID:   req.AccountID,
		DisplayName: req.DisplayName,
		Active:      active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.sellers.Upsert(c.Request.Context(), s.db, account); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}
