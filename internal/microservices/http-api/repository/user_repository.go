package repository

import (
	"context"
	"errors"
	"fmt"

	"bloghub/internal/authz"
	"bloghub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	AssignRole(ctx context.Context, userID string, roleID int64) error
	Delete(ctx context.Context, userID string) error
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository in a GORM implementation
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	// return nil on error so a zero-value user is never mistaken for a hit
	if err := r.db.WithContext(ctx).Preload("Role").First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Role").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Preload("Role").Order("created_at ASC").Find(&users).Error
	return users, err
}

// AssignRole replaces the user's single role.
func (r *userRepository) AssignRole(ctx context.Context, userID string, roleID int64) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("role_id", roleID)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the user and everything they own in one transaction.
func (r *userRepository) Delete(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return translate(err)
		}

		ownPosts := tx.Unscoped().Model(&models.Post{}).Select("id").Where("user_id = ?", userID)
		ownCategories := tx.Unscoped().Model(&models.Category{}).Select("id").Where("user_id = ?", userID)

		steps := []struct {
			name string
			run  func() error
		}{
			{"comments", func() error {
				return tx.Unscoped().
					Where("user_id = ? OR confirmed_by = ? OR post_id IN (?)", userID, userID, ownPosts).
					Delete(&models.Comment{}).Error
			}},
			{"category links", func() error {
				return tx.Where("post_id IN (?) OR category_id IN (?)", ownPosts, ownCategories).Delete(&models.CategoryPost{}).Error
			}},
			{"posts", func() error {
				return tx.Unscoped().Where("user_id = ?", userID).Delete(&models.Post{}).Error
			}},
			{"categories", func() error {
				return tx.Where("user_id = ?", userID).Delete(&models.Category{}).Error
			}},
			{"notifications", func() error {
				return tx.Where("user_id = ?", userID).Delete(&models.Notification{}).Error
			}},
			{"user", func() error {
				return tx.Delete(&user).Error
			}},
		}
		for _, step := range steps {
			if err := step.run(); err != nil {
				return fmt.Errorf("delete %s: %w", step.name, err)
			}
		}
		return nil
	})
}

// RoleRepository reads the seeded roles and serves grants to the authorization gate.
type RoleRepository interface {
	List(ctx context.Context) ([]models.Role, error)
	FindByID(ctx context.Context, id int64) (*models.Role, error)
	FindByTitle(ctx context.Context, title string) (*models.Role, error)
	GrantsForUser(ctx context.Context, userID string) (*authz.Grants, error)
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) List(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := r.db.WithContext(ctx).Preload("Permissions").Order("id ASC").Find(&roles).Error
	return roles, err
}

func (r *roleRepository) FindByID(ctx context.Context, id int64) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Preload("Permissions").First(&role, id).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

func (r *roleRepository) FindByTitle(ctx context.Context, title string) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Preload("Permissions").Where("title = ?", title).First(&role).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

// GrantsForUser reads the user's current role and permissions; an unknown
// user is reported as authz.ErrForbidden.
func (r *roleRepository) GrantsForUser(ctx context.Context, userID string) (*authz.Grants, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Role.Permissions").
		First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authz.ErrForbidden
		}
		return nil, err
	}
	grants := &authz.Grants{}
	if user.Role != nil {
		grants.RoleTitle = user.Role.Title
		grants.Permissions = user.Role.PermissionTitles()
	}
	return grants, nil
}
