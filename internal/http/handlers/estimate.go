package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/http/response"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/tenderbridge-backend/internal/services"
)

type EstimateHandler struct {
	baselines services.BaselineService
	merges    services.MergeService
}

func NewEstimateHandler(baselines services.BaselineService, merges services.MergeService) *EstimateHandler {
	return &EstimateHandler{baselines: baselines, merges: merges}
}

// POST /api/projects/:id/estimates/import
func (h *EstimateHandler) ImportBaseline(c *gin.Context) {
	projectID, ok := pathID(c, "invalid_project_id")
	if !ok {
		return
	}
	var payload types.ImportPayload
	if !bindJSON(c, &payload) {
		return
	}
	res, err := h.baselines.Import(c.Request.Context(), projectID, &payload)
	if err != nil {
		response.RespondAPIError(c, err, "baseline_import_failed")
		return
	}
	response.RespondOK(c, gin.H{"result": res})
}

// GET /api/projects/:id/estimates
func (h *EstimateHandler) ListEstimates(c *gin.Context) {
	projectID, ok := pathID(c, "invalid_project_id")
	if !ok {
		return
	}
	list, err := h.baselines.List(dbctx.Context{Ctx: c.Request.Context()}, projectID)
	if err != nil {
		response.RespondAPIError(c, err, "list_estimates_failed")
		return
	}
	response.RespondOK(c, gin.H{"estimates": list})
}

type mergeRequest struct {
	Name              string      `json:"name" binding:"required"`
	SourceEstimateIDs []uuid.UUID `json:"source_estimate_ids" binding:"required,min=2"`
}

// POST /api/projects/:id/estimates/merge
func (h *EstimateHandler) MergeEstimates(c *gin.Context) {
	projectID, ok := pathID(c, "invalid_project_id")
	if !ok {
		return
	}
	var req mergeRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.merges.Merge(c.Request.Context(), services.MergeRequest{
		ProjectID:         projectID,
		Name:              req.Name,
		SourceEstimateIDs: req.SourceEstimateIDs,
	})
	if err != nil {
		response.RespondAPIError(c, err, "merge_failed")
		return
	}
	response.RespondCreated(c, gin.H{"merge": res})
}
