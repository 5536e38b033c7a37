package notification

import (
	"context"
	"fmt"

	"github.com/go-chi/jwtauth/v5"

	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/notification"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/pkg/sse"
)

type NotificationServiceImpl struct {
	notification.NotificationRepository
	hub *sse.Hub
}

func NewNotificationService(repo notification.NotificationRepository, hub *sse.Hub) notification.NotificationService {
	return &NotificationServiceImpl{NotificationRepository: repo, hub: hub}
}

func siteIDFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	siteID, ok := claims["site_id"].(string)
	if !ok || siteID == "" {
		return "", fmt.Errorf("site_id claim is missing or invalid")
	}
	return siteID, nil
}

// NotifyDisputeRaised implements notification.NotificationService.
func (n *NotificationServiceImpl) NotifyDisputeRaised(ctx context.Context, siteID string, recordID string, workerName string, date string) error {
	notif, err := n.NotificationRepository.Create(ctx, notification.Notification{
		SiteID:   siteID,
		Type:     notification.TypeDisputeRaised,
		Message:  fmt.Sprintf("%s님이 %s 출근 기록에 이의를 제기했습니다", workerName, date),
		RecordID: &recordID,
	})
	if err != nil {
		return fmt.Errorf("failed to create dispute notification: %w", err)
	}

	if n.hub != nil {
		n.hub.Publish(siteID, sse.Event{
			SiteID: siteID,
			Event:  string(notification.TypeDisputeRaised),
			Data:   notification.ToResponse(notif),
		})
	}
	return nil
}

// List implements notification.NotificationService.
func (n *NotificationServiceImpl) List(ctx context.Context, unreadOnly bool) ([]notification.NotificationResponse, error) {
	siteID, err := siteIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	notifs, err := n.NotificationRepository.ListBySite(ctx, siteID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	responses := make([]notification.NotificationResponse, 0, len(notifs))
	for _, notif := range notifs {
		responses = append(responses, notification.ToResponse(notif))
	}
	return responses, nil
}

// MarkRead implements notification.NotificationService.
func (n *NotificationServiceImpl) MarkRead(ctx context.Context, id string) error {
	siteID, err := siteIDFromContext(ctx)
	if err != nil {
		return err
	}

	if err := n.NotificationRepository.MarkRead(ctx, id, siteID); err != nil {
		return err
	}
	return nil
}
