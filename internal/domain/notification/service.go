package notification

import "context"

type NotificationService interface {
	// NotifyDisputeRaised pushes a pending-review entry to the site's
	// manager feed.
	NotifyDisputeRaised(ctx context.Context, siteID string, recordID string, workerName string, date string) error
	List(ctx context.Context, unreadOnly bool) ([]NotificationResponse, error)
	MarkRead(ctx context.Context, id string) error
}
