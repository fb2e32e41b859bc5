package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	paymentdomain "github.com/stackbill/stackbill/internal/payment/domain"
)

func (s *Server) CreatePaymentIntent(c *gin.Context) {
	var req paymentdomain.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	intent, err := s.paymentSvc.CreateIntent(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondWith(c, "intent", intent)
}

func (s *Server) CreatePaymentInvoice(c *gin.Context) {
	var req paymentdomain.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	record, err := s.paymentSvc.RecordPayment(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondMessage(c, "Payment recorded successfully", gin.H{"payment": record})
}

func (s *Server) PaymentDetails(c *gin.Context) {
	record, err := s.paymentSvc.PaymentDetails(c.Request.Context(), c.Param("paymentIntentId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondWith(c, "payment", record)
}

func (s *Server) PaymentConfirmation(c *gin.Context) {
	record, err := s.paymentSvc.PaymentConfirmation(c.Request.Context(), c.Query("userProfileId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondWith(c, "payment", record)
}

func (s *Server) ListCards(c *gin.Context) {
	cards, err := s.paymentSvc.ListCards(c.Request.Context(), c.Query("userId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondWith(c, "cards", cards)
}

func (s *Server) SetDefaultCard(c *gin.Context) {
	var req struct {
		UserID          string `json:"userId"`
		PaymentMethodID string `json:"paymentMethodId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}
	if strings.TrimSpace(req.PaymentMethodID) == "" {
		AbortWithError(c, paymentdomain.ErrCardNotFound)
		return
	}

	if err := s.paymentSvc.SetDefaultCard(c.Request.Context(), req.UserID, req.PaymentMethodID); err != nil {
		AbortWithError(c, err)
		return
	}
	respondMessage(c, "Default card updated", nil)
}

func (s *Server) DefaultCard(c *gin.Context) {
	paymentMethodID, err := s.paymentSvc.DefaultCard(c.Request.Context(), c.Query("userId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondWith(c, "paymentMethodId", paymentMethodID)
}

func (s *Server) DeleteCard(c *gin.Context) {
	paymentMethodID := strings.TrimSpace(c.Param("paymentMethodId"))
	if paymentMethodID == "" {
		AbortWithError(c, paymentdomain.ErrCardNotFound)
		return
	}

	if err := s.paymentSvc.DeleteCard(c.Request.Context(), c.Query("userId"), paymentMethodID); err != nil {
		AbortWithError(c, err)
		return
	}
	respondMessage(c, "Card removed", nil)
}
