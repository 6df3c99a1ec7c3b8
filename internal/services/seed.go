package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-school-backend/internal/config"
	"github.com/tbourn/go-school-backend/internal/domain"
	"github.com/tbourn/go-school-backend/internal/repo"
)

// DefaultRoles lists the built-in roles in creation order with their descriptions.
var DefaultRoles = []domain.Role{
	{RoleName: domain.RolePrincipal, Description: "Full system access - School Principal"},
	{RoleName: domain.RoleAdminOfficer, Description: "Student management, fee collection, general administration"},
	{RoleName: domain.RoleAccountant, Description: "Financial management, fee reports, expense tracking"},
	{RoleName: domain.RoleClassTeacher, Description: "Attendance marking, marks entry for assigned class"},
	{RoleName: domain.RoleSubjectTeacher, Description: "Marks entry for assigned subjects only"},
	{RoleName: domain.RoleReception, Description: "Inquiry management, basic student information"},
	{RoleName: domain.RoleITAdmin, Description: "System configuration, user management, backups"},
}

// Seed creates the default roles and the bootstrap administrator when they
// are missing. Running it again is a no-op.
func Seed(ctx context.Context, db *gorm.DB, pw *PasswordService, cfg config.SeedConfig) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, def := range DefaultRoles {
			exists, err := repo.RoleNameExists(ctx, tx, def.RoleName, 0)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			r := def
			r.IsActive = true
			if err := repo.CreateRole(ctx, tx, &r); err != nil {
				return err
			}
			log.Info().Str("role", r.RoleName).Msg("created default role")
		}
		return seedAdmin(ctx, tx, pw, cfg)
	})
}

func seedAdmin(ctx context.Context, tx *gorm.DB, pw *PasswordService, cfg config.SeedConfig) error {
	exists, err := repo.UsernameExists(ctx, tx, cfg.AdminUsername)
	if err != nil || exists {
		return err
	}
	hash, err := pw.Hash(cfg.AdminPassword)
	if err != nil {
		return err
	}
	admin := &domain.User{
		Username:           cfg.AdminUsername,
		Email:              emailPtr(cfg.AdminEmail),
		PasswordHash:       hash,
		FirstName:          "System",
		LastName:           "Administrator",
		Status:             domain.UserActive,
		MustChangePassword: true,
	}
	if err := repo.CreateUser(ctx, tx, admin); err != nil {
		return err
	}
	log.Info().Str("username", admin.Username).Msg("created default admin user")

	for _, name := range []string{domain.RolePrincipal, domain.RoleITAdmin} {
		role, err := repo.GetRoleByName(ctx, tx, name)
		if errors.Is(err, repo.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if _, err := repo.AssignRole(ctx, tx, admin.ID, role.ID, &admin.ID); err != nil {
			return err
		}
		log.Info().Str("role", name).Msg("assigned role to admin user")
	}
	return nil
}
