package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bloghub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// ErrAlreadyConfirmed is returned by Confirm when another confirmation won.
var ErrAlreadyConfirmed = errors.New("comment already confirmed")

type CommentRepository interface {
	ByPost(ctx context.Context, postID int64) ([]models.Comment, error)
	All(ctx context.Context) ([]models.Comment, error)
	Unconfirmed(ctx context.Context) ([]models.Comment, error)
	ByOwner(ctx context.Context, userID string) ([]models.Comment, error)
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id int64) error
	Confirm(ctx context.Context, id int64, confirmerID string, at time.Time) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// ByPost lists a post's comments, newest first.
func (r *commentRepository) ByPost(ctx context.Context, postID int64) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Preload("User").
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	return comments, err
}

// All lists every live comment, newest first.
func (r *commentRepository) All(ctx context.Context) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("ConfirmedBy").
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	return comments, err
}

// Unconfirmed lists comments still waiting for a confirmer.
func (r *commentRepository) Unconfirmed(ctx context.Context) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("confirmed_by IS NULL").
		Preload("User").
		Preload("Post").
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	return comments, err
}

// ByOwner lists the comments the user wrote, deleted ones included.
func (r *commentRepository) ByOwner(ctx context.Context, userID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).Unscoped().
		Where("user_id = ?", userID).
		Preload("User").
		Preload("ConfirmedBy").
		Preload("Post", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Post.Author").
		Preload("ConfirmedBy").
		First(&comment, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit("User", "Post", "ConfirmedBy").Create(comment).Error; err != nil {
		return fmt.Errorf("create comment: %w", translate(err))
	}
	return nil
}

// Update saves the body only; confirmation columns move through Confirm.
func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	result := r.db.WithContext(ctx).Model(comment).Select("body", "updated_at").Updates(comment)
	if result.Error != nil {
		return fmt.Errorf("update comment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete comment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Confirm moves the comment from pending to confirmed. The guarded UPDATE lets
// exactly one concurrent caller win; the rest get ErrAlreadyConfirmed.
func (r *commentRepository) Confirm(ctx context.Context, id int64, confirmerID string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ? AND confirmed_at IS NULL", id).
		Updates(map[string]any{
			"confirmed_by": confirmerID,
			"confirmed_at": at,
			"updated_at":   at,
		})
	if result.Error != nil {
		return fmt.Errorf("confirm comment: %w", result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("confirm comment: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrAlreadyConfirmed
}
