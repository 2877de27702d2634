package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

type releaseEscrowRequest struct {
	ClientID string `json:"client_id"`
}

func (s *Server) ReleaseEscrow(c *gin.Context) {
	bookingID, err := parseBookingID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req releaseEscrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	actorID, err := snowflake.ParseString(strings.TrimSpace(req.ClientID))
	if err != nil {
		AbortWithError(c, newValidationError("client_id", "invalid_client", "client_id must be a valid id"))
		return
	}

	result, err := s.escrowSvc.Release(c.Request.Context(), bookingID, actorID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) ListTransactions(c *gin.Context) {
	bookingID, err := parseBookingID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	transactions, err := s.ledgerSvc.ListByBooking(c.Request.Context(), bookingID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": transactions})
}

func (s *Server) GetBalance(c *gin.Context) {
	providerID, err := parseProviderID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	account, err := s.accountRepo.Find(c.Request.Context(), s.db, providerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if account == nil {
		// Balances are auto-provisioned on first credit; an unknown
		// provider simply has nothing yet.
		c.JSON(http.StatusOK, gin.H{"data": gin.H{
			"provider_id":       providerID,
			"available_balance": 0,
			"pending_payout":    0,
			"total_earnings":    0,
			"total_payouts":     0,
		}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": account})
}
