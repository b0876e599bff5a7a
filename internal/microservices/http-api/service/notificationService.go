package service

import (
	"context"

	"bloghub/internal/authz"
	"bloghub/internal/microservices/http-api/models"
	"bloghub/internal/microservices/http-api/repository"
)

// NotificationService serves the caller's own inbox; no permission beyond authentication.
type NotificationService interface {
	List(ctx context.Context, p authz.Principal, unreadOnly bool) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, p authz.Principal, notificationID int64) error
	MarkAllAsRead(ctx context.Context, p authz.Principal) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) List(ctx context.Context, p authz.Principal, unreadOnly bool) ([]models.Notification, error) {
	if p.UserID == "" {
		return nil, authz.ErrForbidden
	}
	return s.repo.ListByUser(ctx, p.UserID, unreadOnly)
}

func (s *notificationService) MarkAsRead(ctx context.Context, p authz.Principal, notificationID int64) error {
	if p.UserID == "" {
		return authz.ErrForbidden
	}
	return s.repo.MarkAsRead(ctx, p.UserID, notificationID)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, p authz.Principal) (int64, error) {
	if p.UserID == "" {
		return 0, authz.ErrForbidden
	}
	return s.repo.MarkAllAsRead(ctx, p.UserID)
}
