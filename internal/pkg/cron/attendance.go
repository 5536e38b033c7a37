package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/attendance"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/notification"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/worker"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/pkg/database"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/repository/postgresql"
)

type AttendanceJobs struct {
	attendanceRepo   attendance.AttendanceRepository
	workerRepo       worker.WorkerRepository
	notificationRepo notification.NotificationRepository
	db               *database.DB
}

func NewAttendanceJobs(
	attendanceRepo attendance.AttendanceRepository,
	workerRepo worker.WorkerRepository,
	notificationRepo notification.NotificationRepository,
	db *database.DB,
) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceRepo:   attendanceRepo,
		workerRepo:       workerRepo,
		notificationRepo: notificationRepo,
		db:               db,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("mark_absent_workers", 1*time.Hour, j.MarkAbsentWorkers)
}

// MarkAbsentWorkers backfills an ABSENT record for every worker who never
// clocked in yesterday, so the monthly history has no gaps.
func (j *AttendanceJobs) MarkAbsentWorkers(ctx context.Context) error {
	// Only run at midnight (00:00-00:59 UTC)
	if time.Now().UTC().Hour() != 0 {
		return nil
	}

	slog.Info("Cron: Starting mark absent workers job")

	now := time.Now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)

	rows, err := j.db.Pool.Query(ctx, `SELECT DISTINCT site_id FROM workers`)
	if err != nil {
		return fmt.Errorf("failed to get sites: %w", err)
	}
	defer rows.Close()

	var siteIDs []string
	for rows.Next() {
		var siteID string
		if err := rows.Scan(&siteID); err != nil {
			continue
		}
		siteIDs = append(siteIDs, siteID)
	}

	totalAbsent := 0

	for _, siteID := range siteIDs {
		workers, err := j.workerRepo.List(ctx, siteID)
		if err != nil {
			slog.Error("Cron: Failed to list workers", "site_id", siteID, "error", err)
			continue
		}

		// Each site's backfill commits as one unit so the notification count
		// never disagrees with the inserted rows.
		absentCount := 0
		err = postgresql.WithTransaction(ctx, j.db, func(ctx context.Context) error {
			for _, wk := range workers {
				existing, err := j.attendanceRepo.GetByWorkerAndDate(ctx, wk.ID, yesterday, siteID)
				if err != nil {
					return fmt.Errorf("failed to check attendance for worker %s: %w", wk.ID, err)
				}
				if existing != nil {
					continue
				}

				_, err = j.attendanceRepo.Create(ctx, attendance.Record{
					WorkerID:     wk.ID,
					SiteID:       siteID,
					Date:         yesterday,
					Status:       attendance.StatusAbsent,
					DisputeState: attendance.DisputeNone,
				})
				if err != nil {
					return fmt.Errorf("failed to create absence record for worker %s: %w", wk.ID, err)
				}
				absentCount++
			}
			return nil
		})
		if err != nil {
			slog.Error("Cron: Failed to backfill absences", "site_id", siteID, "error", err)
			continue
		}

		if absentCount > 0 {
			_, err := j.notificationRepo.Create(ctx, notification.Notification{
				SiteID:  siteID,
				Type:    notification.TypeAbsentMarked,
				Message: fmt.Sprintf("%s 결근 처리된 근로자가 %d명 있습니다", yesterday.Format("2006-01-02"), absentCount),
			})
			if err != nil {
				slog.Error("Cron: Failed to notify absences", "site_id", siteID, "error", err)
			}
			totalAbsent += absentCount
		}
	}

	slog.Info("Cron: Marked absent workers", "count", totalAbsent)
	return nil
}
