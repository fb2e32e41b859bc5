package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	invoicedomain "github.com/stackbill/stackbill/internal/invoice/domain"
)

func (s *Server) AllInvoices(c *gin.Context) {
	var query struct {
		Status string `form:"status"`
		Search string `form:"search"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	invoices, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListFilter{
		Status: invoicedomain.InvoiceStatus(strings.TrimSpace(query.Status)),
		Search: strings.TrimSpace(query.Search),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondWith(c, "invoices", invoices)
}

func (s *Server) UserInvoiceHistory(c *gin.Context) {
	invoices, err := s.invoiceSvc.ListByUser(c.Request.Context(), c.Query("userId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondWith(c, "invoices", invoices)
}
