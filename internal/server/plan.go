package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/stackbill/stackbill/internal/audit/domain"
	plandomain "github.com/stackbill/stackbill/internal/plan/domain"
)

func (s *Server) ListPlans(c *gin.Context) {
	var query struct {
		Status string `form:"status"`
		Search string `form:"search"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	plans, err := s.planSvc.List(c.Request.Context(), plandomain.ListRequest{
		Status: plandomain.PlanStatus(strings.TrimSpace(query.Status)),
		Search: strings.TrimSpace(query.Search),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondWith(c, "plans", plans)
}

func (s *Server) GetPlan(c *gin.Context) {
	id, err := planIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	plan, err := s.planSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondWith(c, "plan", plan)
}

func (s *Server) SavePlan(c *gin.Context) {
	var req plandomain.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	outcome, err := s.planSvc.Save(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	action := auditdomain.ActionPlanUpdated
	if outcome.Created {
		action = auditdomain.ActionPlanCreated
	}
	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		ActorID:  actorID(c),
		Action:   action,
		Entity:   "plan",
		EntityID: strconv.FormatInt(outcome.Plan.ID, 10),
		Metadata: map[string]any{
			"name":           outcome.Plan.Name,
			"added_count":    len(req.AddedFeatures),
			"deleted_count":  len(req.DeletedFeatureIDs),
			"updated_count":  len(req.UpdatedFeatures),
			"monthly_amount": req.AmountPerMonth,
		},
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})

	respondMessage(c, outcome.Message, gin.H{"plan": outcome.Plan})
}

func (s *Server) DeletePlan(c *gin.Context) {
	id, err := planIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.planSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		ActorID:   actorID(c),
		Action:    auditdomain.ActionPlanDeleted,
		Entity:    "plan",
		EntityID:  strconv.FormatInt(id, 10),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})

	respondMessage(c, "Plan deleted successfully!", nil)
}

func (s *Server) UpdatePlanStatus(c *gin.Context) {
	id, err := planIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	plan, err := s.planSvc.UpdateStatus(c.Request.Context(), id, plandomain.PlanStatus(req.Status))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		ActorID:   actorID(c),
		Action:    auditdomain.ActionPlanStatusChanged,
		Entity:    "plan",
		EntityID:  strconv.FormatInt(id, 10),
		Metadata:  map[string]any{"status": req.Status},
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})

	respondWith(c, "plan", plan)
}

func (s *Server) PlanSubscriberCount(c *gin.Context) {
	id, err := planIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	count, err := s.planSvc.SubscriberCount(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondWith(c, "subscribers", count)
}

func planIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		return 0, plandomain.ErrInvalidID
	}
	return id, nil
}

// actorID identifies the caller for audit purposes. The portal passes
// the acting user in the userId query or body field; the shared API
// key carries no identity of its own.
func actorID(c *gin.Context) string {
	if v := strings.TrimSpace(c.Query("userId")); v != "" {
		return v
	}
	return "api-key"
}
