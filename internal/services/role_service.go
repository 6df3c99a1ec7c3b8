// Package services – RoleService
//
// RoleService manages the named permission groups users are assigned to.
// Role names are canonicalized to upper snake case (" class teacher " becomes
// CLASS_TEACHER) so lookups by name are stable regardless of client casing.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/go-school-backend/internal/apperr"
	"github.com/tbourn/go-school-backend/internal/domain"
	"github.com/tbourn/go-school-backend/internal/repo"
	"github.com/tbourn/go-school-backend/internal/utils"
)

// RoleInput carries the writable fields of a role.
type RoleInput struct {
	RoleName    string
	Description string
}

// RoleService provides role CRUD and activation.
type RoleService struct {
	DB *gorm.DB
}

// NewRoleService constructs a RoleService.
func NewRoleService(db *gorm.DB) *RoleService {
	return &RoleService{DB: db}
}

var upper = cases.Upper(language.Und)

// NormalizeRoleName trims, upper-cases and joins words with underscores.
func NormalizeRoleName(name string) string {
	return upper.String(strings.Join(strings.Fields(name), "_"))
}

func roleExists(name string) error {
	return apperr.BadRequestf("Role with name '%s' already exists", name)
}

// Create inserts an active role.
func (s *RoleService) Create(ctx context.Context, in RoleInput) (*domain.Role, error) {
	tr := otel.Tracer("services/RoleService")
	ctx, span := tr.Start(ctx, "Create")
	defer span.End()

	name := NormalizeRoleName(in.RoleName)
	span.SetAttributes(attribute.String("role.name", name))

	taken, err := repo.RoleNameExists(ctx, s.DB, name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, roleExists(name)
	}
	r := &domain.Role{
		RoleName:    name,
		Description: strings.TrimSpace(in.Description),
		IsActive:    true,
	}
	if err := repo.CreateRole(ctx, s.DB, r); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, roleExists(name)
		}
		return nil, err
	}
	log.Ctx(ctx).Info().Str("role", name).Msg("role created")
	return r, nil
}

// Get fetches a role by id.
func (s *RoleService) Get(ctx context.Context, id uint) (*domain.Role, error) {
	r, err := repo.GetRole(ctx, s.DB, id)
	if err != nil {
		return nil, notFoundOr(err, "Role", "id", id)
	}
	return r, nil
}

// GetByName fetches a role by name; name is normalized first.
func (s *RoleService) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	name = NormalizeRoleName(name)
	r, err := repo.GetRoleByName(ctx, s.DB, name)
	if err != nil {
		return nil, notFoundOr(err, "Role", "roleName", name)
	}
	return r, nil
}

// List returns one page of roles.
func (s *RoleService) List(ctx context.Context, p utils.Pageable) (utils.Page[domain.Role], error) {
	pg, err := repo.ListRolesPage(ctx, s.DB, p)
	return pg, storeErr(err)
}

// ListActive returns every active role ordered by name.
func (s *RoleService) ListActive(ctx context.Context) ([]domain.Role, error) {
	return repo.ListActiveRoles(ctx, s.DB)
}

// Update renames and redescribes role id.
func (s *RoleService) Update(ctx context.Context, id uint, in RoleInput) (*domain.Role, error) {
	tr := otel.Tracer("services/RoleService")
	ctx, span := tr.Start(ctx, "Update", trace.WithAttributes(attribute.Int("role.id", int(id))))
	defer span.End()

	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	name := NormalizeRoleName(in.RoleName)
	if name != r.RoleName {
		taken, err := repo.RoleNameExists(ctx, s.DB, name, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, roleExists(name)
		}
	}
	r.RoleName = name
	r.Description = strings.TrimSpace(in.Description)
	if err := repo.SaveRole(ctx, s.DB, r); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, roleExists(name)
		}
		return nil, err
	}
	return r, nil
}

// Activate marks role id active.
func (s *RoleService) Activate(ctx context.Context, id uint) error {
	return s.setActive(ctx, id, true)
}

// Deactivate marks role id inactive. Existing assignments are kept.
func (s *RoleService) Deactivate(ctx context.Context, id uint) error {
	return s.setActive(ctx, id, false)
}

func (s *RoleService) setActive(ctx context.Context, id uint, active bool) error {
	if err := repo.SetRoleActive(ctx, s.DB, id, active); err != nil {
		return notFoundOr(err, "Role", "id", id)
	}
	log.Ctx(ctx).Info().Uint("role_id", id).Bool("active", active).Msg("role activation changed")
	return nil
}

// Delete removes role id. Roles still assigned to users cannot be deleted.
func (s *RoleService) Delete(ctx context.Context, id uint) error {
	tr := otel.Tracer("services/RoleService")
	ctx, span := tr.Start(ctx, "Delete", trace.WithAttributes(attribute.Int("role.id", int(id))))
	defer span.End()

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetRole(ctx, tx, id); err != nil {
			return notFoundOr(err, "Role", "id", id)
		}
		n, err := repo.CountRoleAssignments(ctx, tx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.BadRequest{Message: MsgRoleInUse}
		}
		if err := repo.DeleteRole(ctx, tx, id); err != nil {
			return notFoundOr(err, "Role", "id", id)
		}
		return nil
	})
}
