package notification

import "context"

type NotificationRepository interface {
	Create(ctx context.Context, n Notification) (Notification, error)
	ListBySite(ctx context.Context, siteID string, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, id string, siteID string) error
}
