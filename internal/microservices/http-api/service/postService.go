package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bloghub/internal/authz"
	"bloghub/internal/microservices/http-api/dto"
	"bloghub/internal/microservices/http-api/models"
	"bloghub/internal/microservices/http-api/repository"
)

// relatedPostsLimit caps the "my posts" listing.
const relatedPostsLimit = 10

type PostService interface {
	Latest(ctx context.Context, p authz.Principal) ([]models.Post, error)
	Show(ctx context.Context, p authz.Principal, slug string) (*models.Post, error)
	Related(ctx context.Context, p authz.Principal) ([]models.Post, error)
	Create(ctx context.Context, p authz.Principal, req dto.CreatePostRequest) (*models.Post, error)
	Update(ctx context.Context, p authz.Principal, id int64, req dto.UpdatePostRequest) (*models.Post, error)
	Delete(ctx context.Context, p authz.Principal, id int64) error
}

type postService struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	comments   repository.CommentRepository
	gate       *authz.Gate
	now        func() time.Time
}

func NewPostService(
	posts repository.PostRepository,
	categories repository.CategoryRepository,
	comments repository.CommentRepository,
	gate *authz.Gate,
) PostService {
	return &postService{
		posts:      posts,
		categories: categories,
		comments:   comments,
		gate:       gate,
		now:        utcNow,
	}
}

func (s *postService) Latest(ctx context.Context, p authz.Principal) ([]models.Post, error) {
	if err := s.gate.Authorize(ctx, p, authz.AccessPosts); err != nil {
		return nil, err
	}
	return s.posts.Latest(ctx, s.now())
}

// Show returns the post in any state together with its comments.
func (s *postService) Show(ctx context.Context, p authz.Principal, slug string) (*models.Post, error) {
	if err := s.gate.Authorize(ctx, p, authz.AccessPosts); err != nil {
		return nil, err
	}
	post, err := s.posts.BySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ByPost(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	post.Comments = comments
	return post, nil
}

// Related lists the caller's own posts in every state.
func (s *postService) Related(ctx context.Context, p authz.Principal) ([]models.Post, error) {
	if p.UserID == "" {
		return nil, authz.ErrForbidden
	}
	return s.posts.ByOwner(ctx, p.UserID, relatedPostsLimit)
}

func (s *postService) Create(ctx context.Context, p authz.Principal, req dto.CreatePostRequest) (*models.Post, error) {
	if err := s.gate.Authorize(ctx, p, authz.CreatePosts); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalidField("title", "is required")
	}
	slug, err := resolveSlug(req.Slug, title)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategories(ctx, req.Categories); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:       title,
		Body:        req.Body,
		Slug:        slug,
		PublishedAt: utcPtr(req.PublishedAt),
		UserID:      p.UserID,
	}
	if err := s.posts.Create(ctx, post, req.Categories); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, post.ID)
}

// Update requires edit-posts and then ownership, with the admin override.
func (s *postService) Update(ctx context.Context, p authz.Principal, id int64, req dto.UpdatePostRequest) (*models.Post, error) {
	if err := s.gate.Authorize(ctx, p, authz.EditPosts); err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.AuthorizeOwnership(ctx, p, post.UserID, true); err != nil {
		return nil, err
	}

	var columns []string
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, invalidField("title", "is required")
		}
		post.Title = title
		columns = append(columns, "title")
	}
	if req.Body != nil {
		if strings.TrimSpace(*req.Body) == "" {
			return nil, invalidField("body", "is required")
		}
		post.Body = *req.Body
		columns = append(columns, "body")
	}
	if req.Slug != nil && *req.Slug != "" {
		if post.Slug, err = resolveSlug(*req.Slug, post.Title); err != nil {
			return nil, err
		}
		columns = append(columns, "slug")
	}
	if req.PublishedAt.Set {
		post.PublishedAt = utcPtr(req.PublishedAt.Value)
		columns = append(columns, "published_at")
	}
	replace := req.Categories != nil
	if replace {
		if err := s.checkCategories(ctx, req.Categories); err != nil {
			return nil, err
		}
	}

	if err := s.posts.Update(ctx, post, columns, req.Categories, replace); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, post.ID)
}

func (s *postService) Delete(ctx context.Context, p authz.Principal, id int64) error {
	if err := s.gate.Authorize(ctx, p, authz.DeletePosts); err != nil {
		return err
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.gate.AuthorizeOwnership(ctx, p, post.UserID, true); err != nil {
		return err
	}
	return s.posts.Delete(ctx, post.ID)
}

// checkCategories rejects ids that name no category.
func (s *postService) checkCategories(ctx context.Context, ids []int64) error {
	unique := make(map[int64]struct{}, len(ids))
	list := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := unique[id]; ok {
			continue
		}
		unique[id] = struct{}{}
		list = append(list, id)
	}
	if len(list) == 0 {
		return nil
	}
	count, err := s.categories.CountExisting(ctx, list)
	if err != nil {
		return fmt.Errorf("check categories: %w", err)
	}
	if count != int64(len(list)) {
		return invalidField("categories", "contains an unknown category id")
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
