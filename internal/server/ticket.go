package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/stackbill/stackbill/internal/audit/domain"
	ticketdomain "github.com/stackbill/stackbill/internal/ticket/domain"
)

func (s *Server) CreateTicket(c *gin.Context) {
	var req ticketdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	ticket, err := s.ticketSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondMessage(c, "Support ticket submitted successfully", gin.H{"ticket": ticket})
}

func (s *Server) AllTickets(c *gin.Context) {
	var query struct {
		UserID   string `form:"userId"`
		TicketID string `form:"ticketId"`
		Subject  string `form:"title"`
		Status   string `form:"status"`
		Search   string `form:"search"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	filter := ticketdomain.ListFilter{
		UserID:  strings.TrimSpace(query.UserID),
		Subject: strings.TrimSpace(query.Subject),
		Status:  ticketdomain.TicketStatus(strings.TrimSpace(query.Status)),
		Search:  strings.TrimSpace(query.Search),
	}
	if raw := strings.TrimSpace(query.TicketID); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			AbortWithError(c, ticketdomain.ErrNotFound)
			return
		}
		filter.TicketID = id
	}

	tickets, err := s.ticketSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondWith(c, "tickets", tickets)
}

func (s *Server) UpdateTicketStatus(c *gin.Context) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		AbortWithError(c, ticketdomain.ErrNotFound)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	ticket, err := s.ticketSvc.UpdateStatus(c.Request.Context(), id, ticketdomain.TicketStatus(req.Status))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		ActorID:   actorID(c),
		Action:    auditdomain.ActionTicketStatusChanged,
		Entity:    "ticket",
		EntityID:  strconv.FormatInt(id, 10),
		Metadata:  map[string]any{"status": req.Status},
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})

	respondWith(c, "ticket", ticket)
}
