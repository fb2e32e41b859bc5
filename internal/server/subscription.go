package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/stackbill/stackbill/internal/audit/domain"
)

func (s *Server) UserPlan(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("userId"))
	details, err := s.subscriptionSvc.UserPlanDetails(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondWith(c, "plan", details)
}

func (s *Server) AllUserPlans(c *gin.Context) {
	plans, err := s.subscriptionSvc.ListAll(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondWith(c, "plans", plans)
}

func (s *Server) CancelSubscription(c *gin.Context) {
	var req struct {
		UserID string `json:"userId"`
		PlanID int64  `json:"planId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	err := s.subscriptionSvc.Cancel(c.Request.Context(), req.UserID, req.PlanID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		ActorID:   strings.TrimSpace(req.UserID),
		Action:    auditdomain.ActionSubscriptionCancel,
		Entity:    "subscription",
		EntityID:  strconv.FormatInt(req.PlanID, 10),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})

	respondMessage(c, "Subscription cancelled successfully", nil)
}
