package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	accountdomain "github.com/stackbill/stackbill/internal/account/domain"
	invoicedomain "github.com/stackbill/stackbill/internal/invoice/domain"
	paymentdomain "github.com/stackbill/stackbill/internal/payment/domain"
	plandomain "github.com/stackbill/stackbill/internal/plan/domain"
	subscriptiondomain "github.com/stackbill/stackbill/internal/subscription/domain"
	ticketdomain "github.com/stackbill/stackbill/internal/ticket/domain"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	errInvalidRequest = errors.New("invalid request body")
)

// AbortWithError maps a domain error onto the wire. The portal client
// reads "message" first, then "error"; validation failures additionally
// carry the per-field breakdown under "errors".
func AbortWithError(c *gin.Context, err error) {
	var planFields plandomain.FieldErrors
	if errors.As(err, &planFields) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"message": "Validation failed",
			"errors":  planFields,
		})
		return
	}

	var ticketFields ticketdomain.ValidationErrors
	if errors.As(err, &ticketFields) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"message": "Validation failed",
			"errors":  ticketFields,
		})
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, ErrUnauthorized):
		status, message = http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, errInvalidRequest):
		status, message = http.StatusBadRequest, "Invalid request body"

	case errors.Is(err, plandomain.ErrNotFound):
		status, message = http.StatusNotFound, "Plan not found"
	case errors.Is(err, plandomain.ErrInvalidID):
		status, message = http.StatusBadRequest, "Invalid plan id"
	case errors.Is(err, plandomain.ErrInvalidStatus):
		status, message = http.StatusBadRequest, "Invalid plan status"
	case errors.Is(err, plandomain.ErrHasSubscribers):
		status, message = http.StatusConflict, "Plan has active subscribers"

	case errors.Is(err, subscriptiondomain.ErrNotSubscribed):
		status, message = http.StatusNotFound, "No active subscription"
	case errors.Is(err, subscriptiondomain.ErrPlanMismatch):
		status, message = http.StatusConflict, "Subscription does not match plan"
	case errors.Is(err, subscriptiondomain.ErrAlreadyCancelled):
		status, message = http.StatusConflict, "Subscription already cancelled"
	case errors.Is(err, subscriptiondomain.ErrInvalidUser),
		errors.Is(err, paymentdomain.ErrInvalidUser),
		errors.Is(err, ticketdomain.ErrInvalidUser),
		errors.Is(err, invoicedomain.ErrInvalidUser),
		errors.Is(err, accountdomain.ErrInvalidID):
		status, message = http.StatusBadRequest, "User id is required"
	case errors.Is(err, subscriptiondomain.ErrInvalidCycle):
		status, message = http.StatusBadRequest, "Invalid billing cycle"

	case errors.Is(err, paymentdomain.ErrInvalidAmount):
		status, message = http.StatusBadRequest, "Invalid payment amount"
	case errors.Is(err, paymentdomain.ErrInvalidCurrency):
		status, message = http.StatusBadRequest, "Invalid currency"
	case errors.Is(err, paymentdomain.ErrNoCustomer):
		status, message = http.StatusNotFound, "No payment profile on file"
	case errors.Is(err, paymentdomain.ErrNotFound):
		status, message = http.StatusNotFound, "Payment not found"
	case errors.Is(err, paymentdomain.ErrCardNotFound):
		status, message = http.StatusNotFound, "Card not found"

	case errors.Is(err, ticketdomain.ErrNotFound):
		status, message = http.StatusNotFound, "Ticket not found"
	case errors.Is(err, ticketdomain.ErrInvalidStatus):
		status, message = http.StatusBadRequest, "Invalid ticket status"

	case errors.Is(err, accountdomain.ErrNotFound):
		status, message = http.StatusNotFound, "User not found"
	}

	c.AbortWithStatusJSON(status, gin.H{"message": message})
}
