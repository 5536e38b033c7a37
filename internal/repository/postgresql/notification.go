package postgresql

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/notification"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/pkg/database"
)

type notificationRepository struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) notification.NotificationRepository {
	return &notificationRepository{db: db}
}

// Create implements notification.NotificationRepository.
func (n *notificationRepository) Create(ctx context.Context, notif notification.Notification) (notification.Notification, error) {
	q := GetQuerier(ctx, n.db)

	if notif.ID == "" {
		notif.ID = uuid.NewString()
	}

	query := `
		INSERT INTO notifications (id, site_id, type, message, record_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		notif.ID, notif.SiteID, notif.Type, notif.Message, notif.RecordID,
	).Scan(&notif.CreatedAt)
	if err != nil {
		return notification.Notification{}, fmt.Errorf("failed to create notification: %w", err)
	}

	return notif, nil
}

// ListBySite implements notification.NotificationRepository.
func (n *notificationRepository) ListBySite(ctx context.Context, siteID string, unreadOnly bool) ([]notification.Notification, error) {
	q := GetQuerier(ctx, n.db)

	query := `
		SELECT id, site_id, type, message, record_id, is_read, read_at, created_at
		FROM notifications
		WHERE site_id = $1
	`
	if unreadOnly {
		query += " AND is_read = FALSE"
	}
	query += " ORDER BY created_at DESC LIMIT 100"

	rows, err := q.Query(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifs []notification.Notification
	for rows.Next() {
		var notif notification.Notification
		err := rows.Scan(
			&notif.ID, &notif.SiteID, &notif.Type, &notif.Message, &notif.RecordID,
			&notif.IsRead, &notif.ReadAt, &notif.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifs = append(notifs, notif)
	}

	return notifs, nil
}

// MarkRead implements notification.NotificationRepository.
func (n *notificationRepository) MarkRead(ctx context.Context, id string, siteID string) error {
	q := GetQuerier(ctx, n.db)

	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = NOW()
		WHERE id = $1 AND site_id = $2
	`

	commandTag, err := q.Exec(ctx, query, id, siteID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}

	return nil
}
