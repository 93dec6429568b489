package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/tenderbridge-backend/internal/data/repos"
	domainagg "github.com/yungbote/tenderbridge-backend/internal/domain/aggregates"
	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

type ProjectService interface {
	Create(ctx context.Context, code, name string) (*types.Project, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.Project, error)
	List(dbc dbctx.Context, limit, offset int) ([]*types.Project, error)
}

type projectService struct {
	log      *logger.Logger
	projects repos.ProjectRepo
}

func NewProjectService(log *logger.Logger, projects repos.ProjectRepo) ProjectService {
	return &projectService{
		log:      log.With("service", "ProjectService"),
		projects: projects,
	}
}

func (s *projectService) Create(ctx context.Context, code, name string) (*types.Project, error) {
	const op = "Project.Create"
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, domainagg.Validationf(op, "code is required")
	}
	if name == "" {
		return nil, domainagg.Validationf(op, "name is required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	existing, err := s.projects.GetByCode(dbc, code)
	if err != nil {
		return nil, fmt.Errorf("lookup project code: %w", err)
	}
	if existing != nil {
		return nil, domainagg.Conflictf(op, "project code %q already exists", code)
	}
	now := time.Now().UTC()
	created, err := s.projects.Create(dbc, []*types.Project{{
		ID:        uuid.New(),
		Code:      code,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	s.log.Info("Project created", "project_id", created[0].ID, "code", code)
	return created[0], nil
}

func (s *projectService) Get(dbc dbctx.Context, id uuid.UUID) (*types.Project, error) {
	return requireProject(dbc, s.projects, "Project.Get", id)
}

func (s *projectService) List(dbc dbctx.Context, limit, offset int) ([]*types.Project, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	out, err := s.projects.List(dbc, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

// requireProject is the shared fatal precondition for every project scoped call.
func requireProject(dbc dbctx.Context, projects repos.ProjectRepo, op string, id uuid.UUID) (*types.Project, error) {
	if id == uuid.Nil {
		return nil, domainagg.Validationf(op, "project id is required")
	}
	p, err := projects.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if p == nil {
		return nil, domainagg.NotFoundf(op, "project %s not found", id)
	}
	return p, nil
}
