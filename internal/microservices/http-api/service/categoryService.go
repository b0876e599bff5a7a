package service

import (
	"context"
	"strings"
	"time"

	"bloghub/internal/authz"
	"bloghub/internal/microservices/http-api/dto"
	"bloghub/internal/microservices/http-api/models"
	"bloghub/internal/microservices/http-api/repository"
)

type CategoryService interface {
	List(ctx context.Context, p authz.Principal) ([]models.Category, error)
	Show(ctx context.Context, p authz.Principal, slug string) (*models.Category, error)
	Create(ctx context.Context, p authz.Principal, req dto.CategoryRequest) (*models.Category, error)
	Update(ctx context.Context, p authz.Principal, id int64, req dto.CategoryRequest) (*models.Category, error)
	Delete(ctx context.Context, p authz.Principal, id int64) error
}

type categoryService struct {
	repo repository.CategoryRepository
	gate *authz.Gate
	now  func() time.Time
}

func NewCategoryService(repo repository.CategoryRepository, gate *authz.Gate) CategoryService {
	return &categoryService{repo: repo, gate: gate, now: utcNow}
}

func (s *categoryService) List(ctx context.Context, p authz.Principal) ([]models.Category, error) {
	if err := s.gate.Authorize(ctx, p, authz.AccessCategories); err != nil {
		return nil, err
	}
	return s.repo.All(ctx, s.now())
}

func (s *categoryService) Show(ctx context.Context, p authz.Principal, slug string) (*models.Category, error) {
	if err := s.gate.Authorize(ctx, p, authz.AccessCategories); err != nil {
		return nil, err
	}
	return s.repo.BySlug(ctx, slug, s.now())
}

func (s *categoryService) Create(ctx context.Context, p authz.Principal, req dto.CategoryRequest) (*models.Category, error) {
	if err := s.gate.Authorize(ctx, p, authz.CreateCategories); err != nil {
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

	category := &models.Category{
		Title:       title,
		Description: req.Description,
		Slug:        slug,
		UserID:      p.UserID,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Update is gated by permission only; categories have no ownership rule.
func (s *categoryService) Update(ctx context.Context, p authz.Principal, id int64, req dto.CategoryRequest) (*models.Category, error) {
	if err := s.gate.Authorize(ctx, p, authz.EditCategories); err != nil {
		return nil, err
	}
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalidField("title", "is required")
	}
	if req.Slug != "" {
		slug, err := resolveSlug(req.Slug, title)
		if err != nil {
			return nil, err
		}
		category.Slug = slug
	}
	category.Title = title
	category.Description = req.Description

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, p authz.Principal, id int64) error {
	if err := s.gate.Authorize(ctx, p, authz.DeleteCategories); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func utcNow() time.Time {
	return time.Now().UTC()
}
