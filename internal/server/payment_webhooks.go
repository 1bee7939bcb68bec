package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	paymentdomain "github.com/soukly/payments/internal/payment/domain"
)

// maxWebhookBody caps provider payloads; Stripe events are well below
// this.
const maxWebhookBody = 1 << 16

func (s *Server) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	err = s.webhookSvc.HandleEvent(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, paymentdomain.ErrEventAlreadyProcessed) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
