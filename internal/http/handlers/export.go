package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/tenderbridge-backend/internal/http/response"
	"github.com/yungbote/tenderbridge-backend/internal/services"
)

type ExportHandler struct {
	exports services.ExportService
}

func NewExportHandler(exports services.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// GET /api/offers/:id/alerts/export.xlsx
func (h *ExportHandler) OfferAlerts(c *gin.Context) {
	id, ok := pathID(c, "invalid_offer_id")
	if !ok {
		return
	}
	out, err := h.exports.OfferAlertsXLSX(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err, "export_failed")
		return
	}
	attachment(c, out.Filename, services.XLSXContentType, out.Body)
}

// GET /api/merge-reports/:id/export.xlsx
func (h *ExportHandler) MergeReport(c *gin.Context) {
	id, ok := pathID(c, "invalid_report_id")
	if !ok {
		return
	}
	out, err := h.exports.MergeReportXLSX(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err, "export_failed")
		return
	}
	attachment(c, out.Filename, services.XLSXContentType, out.Body)
}
