package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	paymentdomain "github.com/smallbiznis/serbiz/internal/payment/domain"
)

type createSourceRequest struct {
	Amount    int64  `json:"amount"`
	BookingID string `json:"booking_id"`
	UserID    string `json:"user_id"`
	Method    string `json:"method"`
	Redirect  struct {
		Success string `json:"success"`
		Failed  string `json:"failed"`
	} `json:"redirect"`
}

func (s *Server) CreateSource(c *gin.Context) {
	var req createSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	bookingID, err := snowflake.ParseString(strings.TrimSpace(req.BookingID))
	if err != nil {
		AbortWithError(c, newValidationError("booking_id", "invalid_booking", "booking_id must be a valid id"))
		return
	}
	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil {
		AbortWithError(c, newValidationError("user_id", "invalid_user", "user_id must be a valid id"))
		return
	}

	result, err := s.paymentSvc.CreateSource(c.Request.Context(), paymentdomain.CreateSourceInput{
		BookingID:  bookingID,
		UserID:     userID,
		Amount:     req.Amount,
		Method:     req.Method,
		SuccessURL: req.Redirect.Success,
		FailedURL:  req.Redirect.Failed,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"source_id":    result.Source.SourceID,
		"checkout_url": result.Source.CheckoutURL,
		"status":       result.Source.Status,
		"existing":     result.Existing,
	})
}

func (s *Server) GetSource(c *gin.Context) {
	source, err := s.paymentSvc.GetSource(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     source.SourceID,
		"status": source.Status,
		"amount": source.Amount,
		"type":   source.Method,
	})
}

type createChargeRequest struct {
	SourceID string `json:"source_id"`
	Amount   int64  `json:"amount"`
}

func (s *Server) CreateCharge(c *gin.Context) {
	var req createChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	payment, err := s.paymentSvc.CreateCharge(c.Request.Context(), req.SourceID, req.Amount)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payment_id": payment.PaymentID,
		"status":     payment.Status,
		"amount":     payment.Amount,
	})
}

func (s *Server) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.paymentSvc.HandleWebhook(c.Request.Context(), body, c.GetHeader(HeaderSignature))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := "processed"
	switch {
	case result.Skipped:
		status = "skipped"
	case result.Ignored:
		status = "ignored"
	}
	c.JSON(http.StatusOK, gin.H{
		"event_id": result.EventID,
		"status":   status,
	})
}

func (s *Server) Reconcile(c *gin.Context) {
	bookingID, err := parseBookingID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.paymentSvc.Reconcile(c.Request.Context(), bookingID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"booking_status": result.BookingStatus,
		"held":           result.Held,
		"skipped":        result.Skipped,
	})
}

func (s *Server) PaymentStatus(c *gin.Context) {
	bookingID, err := parseBookingID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	payment, err := s.paymentSvc.Status(c.Request.Context(), bookingID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payment})
}

type refundRequest struct {
	BookingID   string `json:"booking_id"`
	Reason      string `json:"reason"`
	CancelledBy string `json:"cancelled_by"`
}

func (s *Server) CreateRefund(c *gin.Context) {
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	bookingID, err := snowflake.ParseString(strings.TrimSpace(req.BookingID))
	if err != nil {
		AbortWithError(c, newValidationError("booking_id", "invalid_booking", "booking_id must be a valid id"))
		return
	}

	result, err := s.refundSvc.AutoRefund(c.Request.Context(), bookingID, req.Reason, req.CancelledBy)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) AutoRefund(c *gin.Context) {
	bookingID, err := parseBookingID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.refundSvc.AutoRefund(c.Request.Context(), bookingID, req.Reason, req.CancelledBy)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func parseBookingID(c *gin.Context) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("bookingId")))
	if err != nil {
		return 0, newValidationError("booking_id", "invalid_booking", "booking id must be a valid id")
	}
	return id, nil
}
