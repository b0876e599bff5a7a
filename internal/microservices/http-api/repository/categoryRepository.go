package repository

import (
	"context"
	"fmt"
	"time"

	"bloghub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type CategoryRepository interface {
	All(ctx context.Context, now time.Time) ([]models.Category, error)
	BySlug(ctx context.Context, slug string, now time.Time) (*models.Category, error)
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id int64) error
	CountExisting(ctx context.Context, ids []int64) (int64, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// withPublishedPosts preloads the nested post collection, published posts only.
func (r *categoryRepository) withPublishedPosts(ctx context.Context, now time.Time) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("User").
		Preload("Posts", func(db *gorm.DB) *gorm.DB {
			return db.Scopes(publishedScope(now)).Order("posts.published_at DESC")
		})
}

func (r *categoryRepository) All(ctx context.Context, now time.Time) ([]models.Category, error) {
	var list []models.Category
	err := r.withPublishedPosts(ctx, now).Order("title ASC").Find(&list).Error
	return list, err
}

func (r *categoryRepository) BySlug(ctx context.Context, slug string, now time.Time) (*models.Category, error) {
	var c models.Category
	if err := r.withPublishedPosts(ctx, now).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Omit("User", "Posts").Create(category).Error; err != nil {
		return fmt.Errorf("create category: %w", translate(err))
	}
	return nil
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	err := r.db.WithContext(ctx).Model(category).
		Select("title", "description", "slug", "updated_at").
		Updates(category).Error
	if err != nil {
		return fmt.Errorf("update category: %w", translate(err))
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&models.CategoryPost{}).Error; err != nil {
			return fmt.Errorf("detach posts: %w", err)
		}
		result := tx.Delete(&models.Category{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete category: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// CountExisting counts how many of ids name existing categories.
func (r *categoryRepository) CountExisting(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Category{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}
