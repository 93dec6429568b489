package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/http/response"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/tenderbridge-backend/internal/services"
)

type OfferHandler struct {
	offers services.OfferService
}

func NewOfferHandler(offers services.OfferService) *OfferHandler {
	return &OfferHandler{offers: offers}
}

type importOfferRequest struct {
	EstimateID *uuid.UUID           `json:"estimate_id"`
	Mode       types.OfferMode      `json:"mode" binding:"required"`
	Payload    *types.ImportPayload `json:"payload" binding:"required"`
}

// POST /api/projects/:id/offers/import
func (h *OfferHandler) ImportOffer(c *gin.Context) {
	projectID, ok := pathID(c, "invalid_project_id")
	if !ok {
		return
	}
	var req importOfferRequest
	if !bindJSON(c, &req) {
		return
	}
	summary, err := h.offers.Import(c.Request.Context(), services.OfferImportRequest{
		ProjectID:  projectID,
		EstimateID: req.EstimateID,
		Mode:       req.Mode,
		Payload:    req.Payload,
	})
	if err != nil {
		response.RespondAPIError(c, err, "offer_import_failed")
		return
	}
	response.RespondOK(c, gin.H{"summary": summary})
}

// GET /api/projects/:id/offers
func (h *OfferHandler) ListOffers(c *gin.Context) {
	projectID, ok := pathID(c, "invalid_project_id")
	if !ok {
		return
	}
	list, err := h.offers.List(dbctx.Context{Ctx: c.Request.Context()}, projectID)
	if err != nil {
		response.RespondAPIError(c, err, "list_offers_failed")
		return
	}
	response.RespondOK(c, gin.H{"offers": list})
}

// GET /api/offers/:id
func (h *OfferHandler) GetOffer(c *gin.Context) {
	id, ok := pathID(c, "invalid_offer_id")
	if !ok {
		return
	}
	offer, err := h.offers.Get(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondAPIError(c, err, "get_offer_failed")
		return
	}
	response.RespondOK(c, gin.H{"offer": offer})
}

// GET /api/offers/:id/items
func (h *OfferHandler) ListItems(c *gin.Context) {
	id, ok := pathID(c, "invalid_offer_id")
	if !ok {
		return
	}
	items, err := h.offers.ListItems(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondAPIError(c, err, "list_offer_items_failed")
		return
	}
	response.RespondOK(c, gin.H{"items": items})
}

// POST /api/offers/:id/rerun
func (h *OfferHandler) Rerun(c *gin.Context) {
	id, ok := pathID(c, "invalid_offer_id")
	if !ok {
		return
	}
	summary, err := h.offers.Rerun(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err, "offer_rerun_failed")
		return
	}
	response.RespondOK(c, gin.H{"summary": summary})
}
