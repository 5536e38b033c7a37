package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/schedule"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/pkg/database"
)

type shiftScheduleRepository struct {
	db *database.DB
}

func NewShiftScheduleRepository(db *database.DB) schedule.ShiftScheduleRepository {
	return &shiftScheduleRepository{db: db}
}

// GetBySite implements schedule.ShiftScheduleRepository.
func (s *shiftScheduleRepository) GetBySite(ctx context.Context, siteID string) (schedule.ShiftSchedule, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT site_id, clock_in, clock_out, grace_minutes, created_at, updated_at
		FROM shift_schedules
		WHERE site_id = $1
	`

	var shift schedule.ShiftSchedule
	err := q.QueryRow(ctx, query, siteID).Scan(
		&shift.SiteID, &shift.ClockIn, &shift.ClockOut, &shift.GraceMinutes,
		&shift.CreatedAt, &shift.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.ShiftSchedule{}, schedule.ErrShiftScheduleNotFound
		}
		return schedule.ShiftSchedule{}, fmt.Errorf("failed to get shift schedule: %w", err)
	}

	return shift, nil
}
