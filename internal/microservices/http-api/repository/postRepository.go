package repository

import (
	"context"
	"fmt"
	"time"

	"bloghub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// publishedScope restricts a post query to posts visible at now.
func publishedScope(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.published_at IS NOT NULL AND posts.published_at <= ?", now)
	}
}

type PostRepository interface {
	Latest(ctx context.Context, now time.Time) ([]models.Post, error)
	BySlug(ctx context.Context, slug string) (*models.Post, error)
	ByOwner(ctx context.Context, userID string, limit int) ([]models.Post, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	Create(ctx context.Context, post *models.Post, categoryIDs []int64) error
	Update(ctx context.Context, post *models.Post, columns []string, categoryIDs []int64, replaceCategories bool) error
	Delete(ctx context.Context, id int64) error
	DeleteStale(ctx context.Context, createdBefore time.Time) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Author").
		Preload("Categories")
}

// Latest returns published posts, newest publication first.
func (r *postRepository) Latest(ctx context.Context, now time.Time) ([]models.Post, error) {
	var list []models.Post
	err := r.withDetails(ctx).
		Scopes(publishedScope(now)).
		Order("posts.published_at DESC").
		Find(&list).Error
	return list, err
}

// BySlug returns the post whatever its publication state, so owners can preview drafts.
func (r *postRepository) BySlug(ctx context.Context, slug string) (*models.Post, error) {
	var p models.Post
	if err := r.withDetails(ctx).Where("slug = ?", slug).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// ByOwner returns the user's posts in every state, newest created first.
func (r *postRepository) ByOwner(ctx context.Context, userID string, limit int) ([]models.Post, error) {
	var list []models.Post
	q := r.withDetails(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var p models.Post
	if err := r.withDetails(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func linkCategories(tx *gorm.DB, postID int64, categoryIDs []int64) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	links := make([]models.CategoryPost, 0, len(categoryIDs))
	seen := make(map[int64]bool, len(categoryIDs))
	for _, id := range categoryIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		links = append(links, models.CategoryPost{CategoryID: id, PostID: postID})
	}
	return tx.Create(&links).Error
}

// Create inserts the post and links its categories atomically.
func (r *postRepository) Create(ctx context.Context, post *models.Post, categoryIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Categories", "Author", "Comments").Create(post).Error; err != nil {
			return fmt.Errorf("create post: %w", translate(err))
		}
		if err := linkCategories(tx, post.ID, categoryIDs); err != nil {
			return fmt.Errorf("attach categories: %w", translate(err))
		}
		return nil
	})
}

// Update saves only the named columns plus updated_at and, when asked,
// replaces the category set.
func (r *postRepository) Update(ctx context.Context, post *models.Post, columns []string, categoryIDs []int64, replaceCategories bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(post).
			Select("updated_at", columns).
			Updates(post).Error
		if err != nil {
			return fmt.Errorf("update post: %w", translate(err))
		}
		if !replaceCategories {
			return nil
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.CategoryPost{}).Error; err != nil {
			return fmt.Errorf("detach categories: %w", err)
		}
		if err := linkCategories(tx, post.ID, categoryIDs); err != nil {
			return fmt.Errorf("attach categories: %w", translate(err))
		}
		return nil
	})
}

// Delete soft-deletes the post.
func (r *postRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteStale soft-deletes, in a single statement, every live post created
// before createdBefore that has no live confirmed comment.
func (r *postRepository) DeleteStale(ctx context.Context, createdBefore time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("posts.created_at < ?", createdBefore).
		Where("NOT EXISTS (SELECT 1 FROM comments WHERE comments.post_id = posts.id AND comments.confirmed_at IS NOT NULL AND comments.deleted_at IS NULL)").
		Delete(&models.Post{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete stale posts: %w", result.Error)
	}
	return result.RowsAffected, nil
}
