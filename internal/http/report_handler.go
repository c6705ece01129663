package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nurpe/linen-admin/internal/service"
)

func (h *Handler) dashboardStats(c *gin.Context) {
	months, ok := queryInt(c, "months")
	if !ok {
		return
	}
	year, ok := queryInt(c, "year")
	if !ok {
		return
	}
	stats, err := h.svc.Dashboard.Stats(c.Request.Context(), service.StatsQuery{
		Type:   service.StatsType(c.DefaultQuery("type", string(service.StatsOverview))),
		Month:  c.Query("month"),
		Months: months,
		Year:   year,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, stats)
}

func (h *Handler) invoiceSummary(c *gin.Context) {
	month, ok := requiredQuery(c, "month")
	if !ok {
		return
	}
	report, err := h.svc.Reports.InvoiceSummary(c.Request.Context(), month)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, report)
}

func (h *Handler) reportStats(c *gin.Context) {
	month, ok := requiredQuery(c, "month")
	if !ok {
		return
	}
	stats, err := h.svc.Reports.Stats(c.Request.Context(), month)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, stats)
}

func (h *Handler) batchInvoice(c *gin.Context) {
	raw, ok := requiredQuery(c, "batchId")
	if !ok {
		return
	}
	batchID, err := uuid.Parse(raw)
	if err != nil {
		badRequest(c, "invalid batchId")
		return
	}

	switch strings.ToLower(c.DefaultQuery("format", "json")) {
	case "json":
		invoice, err := h.svc.Reports.BatchInvoice(c.Request.Context(), batchID)
		if err != nil {
			h.handleError(c, err)
			return
		}
		respond(c, http.StatusOK, invoice)
	case "pdf":
		file, err := h.svc.Reports.BatchInvoicePDF(c.Request.Context(), batchID)
		if err != nil {
			h.handleError(c, err)
			return
		}
		sendFile(c, file.FileName, file.ContentType, file.Content)
	default:
		badRequest(c, "format must be json or pdf")
	}
}

func (h *Handler) exportReport(c *gin.Context) {
	month, ok := requiredQuery(c, "month")
	if !ok {
		return
	}
	file, err := h.svc.Reports.Export(c.Request.Context(), month, c.DefaultQuery("format", "xlsx"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendFile(c, file.FileName, file.ContentType, file.Content)
}

func requiredQuery(c *gin.Context, key string) (string, bool) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		badRequest(c, key+" is required")
		return "", false
	}
	return value, true
}
