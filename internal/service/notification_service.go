package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mediatrack/campaign-api/internal/models"
	appErrors "github.com/mediatrack/campaign-api/pkg/errors"
)

type notificationRepository interface {
	ListForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	Create(ctx context.Context, notification *models.Notification) error
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	CountUnread(ctx context.Context, userID string) (int, error)
	CountUnreadTotal(ctx context.Context) (int, error)
}

type unreadGauge interface {
	SetUnreadNotifications(count int)
}

// NotificationService manages in-app notifications and the periodic unread
// counter refresher.
type NotificationService struct {
	notifications notificationRepository
	gauge         unreadGauge
	logger        *zap.Logger
	interval      time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(notifications notificationRepository, gauge unreadGauge, logger *zap.Logger, interval time.Duration) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &NotificationService{
		notifications: notifications,
		gauge:         gauge,
		logger:        logger,
		interval:      interval,
	}
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	notifications, err := s.notifications.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

// Notify creates a notification for the user.
func (s *NotificationService) Notify(ctx context.Context, userID, kind, message string) error {
	notification := &models.Notification{
		UserID:  userID,
		Kind:    kind,
		Message: message,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notification")
	}
	return nil
}

// MarkRead flags a single notification as read. Only the owner can do so.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.notifications.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound.WithMessage("notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}

// MarkAllRead flags every unread notification for the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.notifications.MarkAllRead(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notifications read")
	}
	return nil
}

// UnreadCount returns the number of unread notifications for the user.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread notifications")
	}
	return count, nil
}

// StartUnreadRefresher launches a background loop that periodically updates
// the unread gauge. Stop cancels the loop and waits for it to exit.
func (s *NotificationService) StartUnreadRefresher(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	done := s.done
	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.refresh(loopCtx)
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				s.refresh(loopCtx)
			}
		}
	}()
}

// StopUnreadRefresher cancels the refresher loop and blocks until it exits.
func (s *NotificationService) StopUnreadRefresher() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *NotificationService) refresh(ctx context.Context) {
	count, err := s.notifications.CountUnreadTotal(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("failed to refresh unread notification count", zap.Error(err))
		}
		return
	}
	if s.gauge != nil {
		s.gauge.SetUnreadNotifications(count)
	}
}
