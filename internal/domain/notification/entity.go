package notification

import "time"

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeDisputeRaised NotificationType = "dispute_raised"
	TypeAbsentMarked  NotificationType = "absent_marked"
)

// Notification is an entry in a site's manager pending-review feed.
type Notification struct {
	ID        string
	SiteID    string
	Type      NotificationType
	Message   string
	RecordID  *string
	IsRead    bool
	ReadAt    *time.Time
	CreatedAt time.Time
}
