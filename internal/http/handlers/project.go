package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tenderbridge-backend/internal/http/response"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/tenderbridge-backend/internal/services"
)

type ProjectHandler struct {
	projects services.ProjectService
}

func NewProjectHandler(projects services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type createProjectRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name"`
}

// POST /api/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.projects.Create(c.Request.Context(), req.Code, req.Name)
	if err != nil {
		response.RespondAPIError(c, err, "create_project_failed")
		return
	}
	response.RespondCreated(c, gin.H{"project": p})
}

// GET /api/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_offset", err)
		return
	}
	list, err := h.projects.List(dbctx.Context{Ctx: c.Request.Context()}, limit, offset)
	if err != nil {
		response.RespondAPIError(c, err, "list_projects_failed")
		return
	}
	response.RespondOK(c, gin.H{"projects": list})
}

// GET /api/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, ok := pathID(c, "invalid_project_id")
	if !ok {
		return
	}
	p, err := h.projects.Get(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondAPIError(c, err, "get_project_failed")
		return
	}
	response.RespondOK(c, gin.H{"project": p})
}
