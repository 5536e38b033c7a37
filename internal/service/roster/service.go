package roster

import (
	"context"
	"fmt"

	"github.com/go-chi/jwtauth/v5"

	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/attendance"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/worker"
)

type RosterServiceImpl struct {
	worker.WorkerRepository
	attendance.AttendanceRepository
}

func NewRosterService(workerRepo worker.WorkerRepository, attendanceRepo attendance.AttendanceRepository) worker.RosterService {
	return &RosterServiceImpl{
		WorkerRepository:     workerRepo,
		AttendanceRepository: attendanceRepo,
	}
}

// Summary implements worker.RosterService. It is read-only over the
// attendance store: only the pending-dispute counts feed the badges.
func (r *RosterServiceImpl) Summary(ctx context.Context) ([]worker.RosterWorkerSummary, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	siteID, ok := claims["site_id"].(string)
	if !ok || siteID == "" {
		return nil, fmt.Errorf("site_id claim is missing or invalid")
	}

	workers, err := r.WorkerRepository.List(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}

	counts, err := r.AttendanceRepository.CountPendingByWorker(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending disputes: %w", err)
	}

	summaries := make([]worker.RosterWorkerSummary, 0, len(workers))
	for _, wk := range workers {
		summaries = append(summaries, worker.RosterWorkerSummary{
			WorkerID:        wk.ID,
			Name:            wk.Name,
			Trade:           wk.Trade,
			PendingDisputes: counts[wk.ID],
		})
	}
	return summaries, nil
}
