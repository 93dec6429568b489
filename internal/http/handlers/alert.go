package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tenderbridge-backend/internal/data/repos"
	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/http/response"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/tenderbridge-backend/internal/services"
)

type AlertHandler struct {
	alerts services.AlertService
}

func NewAlertHandler(alerts services.AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// GET /api/offers/:id/alerts?type=&status=&severity=&limit=&offset=
func (h *AlertHandler) ListOfferAlerts(c *gin.Context) {
	offerID, ok := pathID(c, "invalid_offer_id")
	if !ok {
		return
	}
	filter := repos.AlertFilter{}
	for _, v := range queryList(c, "type") {
		filter.Types = append(filter.Types, types.AlertType(v))
	}
	for _, v := range queryList(c, "status") {
		filter.Statuses = append(filter.Statuses, types.AlertStatus(v))
	}
	for _, v := range queryList(c, "severity") {
		filter.Severities = append(filter.Severities, types.Severity(v))
	}
	var err error
	if filter.Limit, err = queryInt(c, "limit", 0); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
		return
	}
	if filter.Offset, err = queryInt(c, "offset", 0); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_offset", err)
		return
	}

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	list, err := h.alerts.List(dbc, offerID, filter)
	if err != nil {
		response.RespondAPIError(c, err, "list_alerts_failed")
		return
	}
	summary, err := h.alerts.Summary(dbc, offerID)
	if err != nil {
		response.RespondAPIError(c, err, "alert_summary_failed")
		return
	}
	response.RespondOK(c, gin.H{"alerts": list, "summary": summary})
}

// GET /api/alerts/:id
func (h *AlertHandler) GetAlert(c *gin.Context) {
	id, ok := pathID(c, "invalid_alert_id")
	if !ok {
		return
	}
	a, err := h.alerts.Get(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondAPIError(c, err, "get_alert_failed")
		return
	}
	response.RespondOK(c, gin.H{"alert": a})
}

// POST /api/alerts/:id/resolve
func (h *AlertHandler) ResolveAlert(c *gin.Context) {
	id, ok := pathID(c, "invalid_alert_id")
	if !ok {
		return
	}
	var decision services.ResolveDecision
	if !bindJSON(c, &decision) {
		return
	}
	res, err := h.alerts.Resolve(c.Request.Context(), id, decision)
	if err != nil {
		response.RespondAPIError(c, err, "resolve_alert_failed")
		return
	}
	response.RespondOK(c, res)
}
