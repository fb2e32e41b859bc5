package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/stackbill/stackbill/internal/audit/domain"
)

func (s *Server) ListAuditLogs(c *gin.Context) {
	var query struct {
		ActorID string `form:"actorId"`
		Action  string `form:"action"`
		Entity  string `form:"entity"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	logs, err := s.auditSvc.List(c.Request.Context(), auditdomain.ListFilter{
		ActorID: strings.TrimSpace(query.ActorID),
		Action:  strings.TrimSpace(query.Action),
		Entity:  strings.TrimSpace(query.Entity),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondWith(c, "logs", logs)
}

func (s *Server) ExportAuditLogs(c *gin.Context) {
	var query struct {
		StartDate string `form:"start_date"`
		EndDate   string `form:"end_date"`
		Format    string `form:"format"`
		Actions   string `form:"actions"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	start, err := time.Parse("2006-01-02", query.StartDate)
	if err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}
	end, err := time.Parse("2006-01-02", query.EndDate)
	if err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}
	// End date is inclusive on the wire.
	end = end.AddDate(0, 0, 1)

	format := auditdomain.ExportFormat(strings.ToLower(strings.TrimSpace(query.Format)))
	if format == "" {
		format = auditdomain.ExportFormatJSON
	}

	var actions []string
	if raw := strings.TrimSpace(query.Actions); raw != "" {
		for _, action := range strings.Split(raw, ",") {
			if action = strings.TrimSpace(action); action != "" {
				actions = append(actions, action)
			}
		}
	}

	result, err := s.auditSvc.Export(c.Request.Context(), auditdomain.ExportRequest{
		StartDate: start,
		EndDate:   end,
		Format:    format,
		Actions:   actions,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	contentType := "application/json"
	filename := "audit-export.json"
	if result.Format == auditdomain.ExportFormatCSV {
		contentType = "text/csv"
		filename = "audit-export.csv"
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("X-Export-Checksum", result.Checksum)
	c.Data(http.StatusOK, contentType, result.Data)
}
