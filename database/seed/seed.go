// Package seed writes the permission catalog, the three seeded roles and an
// optional bootstrap administrator. Every step is idempotent.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"bloghub/internal/authz"
	"bloghub/internal/microservices/http-api/models"
	"bloghub/internal/middleware/auth"
)

// Admin describes the optional bootstrap administrator.
type Admin struct {
	Email    string
	Password string
}

// Run seeds permissions and roles, then the admin account when one is given.
func Run(ctx context.Context, db *gorm.DB, admin *Admin, log *slog.Logger) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		byTitle := make(map[string]models.Permission)
		for _, p := range authz.All() {
			perm := models.Permission{Title: string(p)}
			if err := tx.Where(models.Permission{Title: string(p)}).FirstOrCreate(&perm).Error; err != nil {
				return fmt.Errorf("seed permission %s: %w", p, err)
			}
			byTitle[perm.Title] = perm
		}

		for _, grant := range authz.SeedRoles() {
			role := models.Role{Title: grant.Title}
			if err := tx.Where(models.Role{Title: grant.Title}).FirstOrCreate(&role).Error; err != nil {
				return fmt.Errorf("seed role %s: %w", grant.Title, err)
			}
			perms := make([]models.Permission, 0, len(grant.Permissions))
			for _, p := range grant.Permissions {
				perms = append(perms, byTitle[string(p)])
			}
			// sync: the role ends up with exactly this set
			if err := tx.Model(&role).Association("Permissions").Replace(perms); err != nil {
				return fmt.Errorf("sync permissions of %s: %w", grant.Title, err)
			}
		}

		if admin == nil || admin.Email == "" {
			return nil
		}
		return seedAdmin(tx, admin, log)
	})
}

func seedAdmin(tx *gorm.DB, admin *Admin, log *slog.Logger) error {
	var role models.Role
	if err := tx.Where("title = ?", authz.RoleAdmin).First(&role).Error; err != nil {
		return fmt.Errorf("load admin role: %w", err)
	}

	var count int64
	if err := tx.Model(&models.User{}).Where("email = ?", admin.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	user := &models.User{
		Name:     "Admin",
		Email:    admin.Email,
		Password: hash,
		RoleID:   role.ID,
	}
	if err := tx.Create(user).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Info("Bootstrap administrator created", "email", admin.Email)
	return nil
}
