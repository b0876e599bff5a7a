package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bloghub/internal/authz"
	"bloghub/internal/events"
	"bloghub/internal/microservices/http-api/dto"
	"bloghub/internal/microservices/http-api/models"
	"bloghub/internal/microservices/http-api/repository"
)

type CommentService interface {
	List(ctx context.Context, p authz.Principal) ([]models.Comment, error)
	Show(ctx context.Context, p authz.Principal, id int64) (*models.Comment, error)
	Create(ctx context.Context, p authz.Principal, req dto.CreateCommentRequest) (*models.Comment, error)
	Update(ctx context.Context, p authz.Principal, id int64, req dto.UpdateCommentRequest) (*models.Comment, error)
	Delete(ctx context.Context, p authz.Principal, id int64) error
	Confirm(ctx context.Context, p authz.Principal, id int64) (*models.Comment, error)
	Unconfirmed(ctx context.Context, p authz.Principal) ([]models.Comment, error)
	Related(ctx context.Context, p authz.Principal) ([]models.Comment, error)
}

type commentService struct {
	comments  repository.CommentRepository
	posts     repository.PostRepository
	gate      *authz.Gate
	publisher events.Publisher
	now       func() time.Time
}

func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	gate *authz.Gate,
	publisher events.Publisher,
) CommentService {
	return &commentService{
		comments:  comments,
		posts:     posts,
		gate:      gate,
		publisher: publisher,
		now:       utcNow,
	}
}

func (s *commentService) List(ctx context.Context, p authz.Principal) ([]models.Comment, error) {
	if err := s.gate.Authorize(ctx, p, authz.AccessComments); err != nil {
		return nil, err
	}
	return s.comments.All(ctx)
}

func (s *commentService) Show(ctx context.Context, p authz.Principal, id int64) (*models.Comment, error) {
	if err := s.gate.Authorize(ctx, p, authz.AccessComments); err != nil {
		return nil, err
	}
	return s.comments.GetByID(ctx, id)
}

// Create stamps the caller as author. A caller holding confirm-comments gets
// the comment inserted already confirmed, and the event fires after the insert.
func (s *commentService) Create(ctx context.Context, p authz.Principal, req dto.CreateCommentRequest) (*models.Comment, error) {
	if err := s.gate.Authorize(ctx, p, authz.CreateComments); err != nil {
		return nil, err
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, invalidField("body", "is required")
	}
	post, err := s.posts.GetByID(ctx, req.PostID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalidField("post_id", "does not name an existing post")
		}
		return nil, err
	}
	autoConfirm, err := s.gate.Allows(ctx, p, authz.ConfirmComments)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Body:   body,
		PostID: req.PostID,
		UserID: p.UserID,
	}
	if autoConfirm {
		now := s.now()
		confirmer := p.UserID
		comment.ConfirmedByID = &confirmer
		comment.ConfirmedAt = &now
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	saved, err := s.comments.GetByID(ctx, comment.ID)
	if err != nil {
		comment.Post = post
		saved = comment
	}
	if autoConfirm {
		s.publishConfirmed(ctx, saved, true)
	}
	return saved, nil
}

// Update lets only the author edit, and only with edit-comments.
func (s *commentService) Update(ctx context.Context, p authz.Principal, id int64, req dto.UpdateCommentRequest) (*models.Comment, error) {
	if err := s.gate.Authorize(ctx, p, authz.EditComments); err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.AuthorizeOwnership(ctx, p, comment.UserID, false); err != nil {
		return nil, err
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, invalidField("body", "is required")
	}
	comment.Body = body
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.comments.GetByID(ctx, id)
}

func (s *commentService) Delete(ctx context.Context, p authz.Principal, id int64) error {
	if err := s.gate.Authorize(ctx, p, authz.DeleteComments); err != nil {
		return err
	}
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.gate.AuthorizeOwnership(ctx, p, comment.UserID, true); err != nil {
		return err
	}
	return s.comments.Delete(ctx, id)
}

// Confirm moves a pending comment to confirmed. Only the caller whose guarded
// update changed the row publishes; everyone else gets ErrAlreadyConfirmed.
// A failed reload falls back to the pre-update copy so the event still fires.
func (s *commentService) Confirm(ctx context.Context, p authz.Principal, id int64) (*models.Comment, error) {
	if err := s.gate.Authorize(ctx, p, authz.ConfirmComments); err != nil {
		return nil, err
	}
	admin, err := s.gate.IsAdmin(ctx, p)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, fmt.Errorf("%w: confirming requires the %s role", authz.ErrForbidden, authz.RoleAdmin)
	}

	pending, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	at := s.now()
	if err := s.comments.Confirm(ctx, id, p.UserID, at); err != nil {
		return nil, err
	}
	confirmer := p.UserID
	pending.ConfirmedByID = &confirmer
	pending.ConfirmedAt = &at

	confirmed, err := s.comments.GetByID(ctx, id)
	if err != nil {
		confirmed = pending
	}
	s.publishConfirmed(ctx, confirmed, false)
	return confirmed, nil
}

func (s *commentService) Unconfirmed(ctx context.Context, p authz.Principal) ([]models.Comment, error) {
	if err := s.gate.Authorize(ctx, p, authz.ConfirmComments); err != nil {
		return nil, err
	}
	return s.comments.Unconfirmed(ctx)
}

// Related lists the caller's own comments, deleted ones included.
func (s *commentService) Related(ctx context.Context, p authz.Principal) ([]models.Comment, error) {
	if err := s.gate.Authorize(ctx, p, authz.AccessComments); err != nil {
		return nil, err
	}
	return s.comments.ByOwner(ctx, p.UserID)
}

func (s *commentService) publishConfirmed(ctx context.Context, c *models.Comment, auto bool) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, events.Event{
		Type:       events.CommentConfirmed,
		Comment:    snapshot(c),
		Auto:       auto,
		OccurredAt: s.now(),
	})
}

func snapshot(c *models.Comment) events.CommentSnapshot {
	snap := events.CommentSnapshot{
		ID:        c.ID,
		Body:      c.Body,
		PostID:    c.PostID,
		AuthorID:  c.UserID,
		CreatedAt: c.CreatedAt,
	}
	if c.User != nil {
		snap.AuthorName = c.User.FullName()
	}
	if c.ConfirmedByID != nil {
		snap.ConfirmedByID = *c.ConfirmedByID
	}
	if c.ConfirmedAt != nil {
		snap.ConfirmedAt = *c.ConfirmedAt
	}
	if c.Post != nil {
		snap.PostSlug = c.Post.Slug
		snap.PostTitle = c.Post.Title
		snap.PostAuthorID = c.Post.UserID
	}
	return snap
}
