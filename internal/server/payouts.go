package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

type requestPayoutRequest struct {
	ProviderID string `json:"provider_id"`
	Amount     int64  `json:"amount"`
}

func (s *Server) RequestPayout(c *gin.Context) {
	var req requestPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	providerID, err := snowflake.ParseString(strings.TrimSpace(req.ProviderID))
	if err != nil {
		AbortWithError(c, newValidationError("provider_id", "invalid_provider", "provider_id must be a valid id"))
		return
	}

	payout, err := s.payoutSvc.Request(c.Request.Context(), providerID, req.Amount)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payout})
}

func (s *Server) ApprovePayout(c *gin.Context) {
	id, err := parsePayoutID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	payout, err := s.payoutSvc.Approve(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payout})
}

type completePayoutRequest struct {
	TransferRef string `json:"transfer_ref"`
}

func (s *Server) CompletePayout(c *gin.Context) {
	id, err := parsePayoutID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req completePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	payout, err := s.payoutSvc.Complete(c.Request.Context(), id, strings.TrimSpace(req.TransferRef))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payout})
}

type failPayoutRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) FailPayout(c *gin.Context) {
	id, err := parsePayoutID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req failPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	payout, err := s.payoutSvc.Fail(c.Request.Context(), id, strings.TrimSpace(req.Reason))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payout})
}

func (s *Server) ListPayouts(c *gin.Context) {
	providerID, err := parseProviderID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	payouts, err := s.payoutSvc.ListByProvider(c.Request.Context(), providerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payouts})
}

func parsePayoutID(c *gin.Context) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return 0, newValidationError("id", "invalid_payout", "payout id must be a valid id")
	}
	return id, nil
}

// parseProviderID reads the provider id from whichever route param the
// mount point uses: /payouts/:providerId or /providers/:id/....
func parseProviderID(c *gin.Context) (snowflake.ID, error) {
	raw := c.Param("providerId")
	if raw == "" {
		raw = c.Param("id")
	}
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, newValidationError("id", "invalid_provider", "provider id must be a valid id")
	}
	return id, nil
}
