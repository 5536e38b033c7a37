package postgresql_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/attendance"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/pkg/database"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/repository/postgresql"
)

var (
	testDB     *database.DB
	testDBOnce sync.Once
)

// requireTestDB connects to TEST_DATABASE_URL, skipping the test when the
// variable is unset.
func requireTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database tests")
	}

	testDBOnce.Do(func() {
		var err error
		testDB, err = database.NewPostgreSQLDB(dsn)
		require.NoError(t, err, "failed to connect to test database")

		ctx := context.Background()
		_, err = testDB.Pool.Exec(ctx, `
			CREATE TABLE IF NOT EXISTS workers (
				id UUID PRIMARY KEY,
				site_id UUID NOT NULL,
				name TEXT NOT NULL,
				phone TEXT NOT NULL DEFAULT '',
				trade TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`)
		require.NoError(t, err)

		_, err = testDB.Pool.Exec(ctx, `
			CREATE TABLE IF NOT EXISTS attendance_records (
				id UUID PRIMARY KEY,
				worker_id UUID NOT NULL,
				site_id UUID NOT NULL,
				date DATE NOT NULL,
				clock_in TEXT,
				clock_out TEXT,
				status TEXT NOT NULL,
				dispute_state TEXT NOT NULL DEFAULT 'NONE',
				dispute_message TEXT,
				version INTEGER NOT NULL DEFAULT 1,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE (worker_id, date)
			)
		`)
		require.NoError(t, err)
	})

	return testDB
}

func setupAttendanceData(t *testing.T, db *database.DB) (siteID string, workerID string) {
	ctx := context.Background()

	_, err := db.Pool.Exec(ctx, "TRUNCATE TABLE attendance_records CASCADE")
	require.NoError(t, err)
	_, err = db.Pool.Exec(ctx, "TRUNCATE TABLE workers CASCADE")
	require.NoError(t, err)

	siteID = uuid.NewString()
	workerID = uuid.NewString()
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO workers (id, site_id, name, trade)
		VALUES ($1, $2, '김철수', '철근공')
	`, workerID, siteID)
	require.NoError(t, err)

	return siteID, workerID
}

func strPtr(s string) *string { return &s }

func TestAttendanceRepository_CreateAndGet(t *testing.T) {
	db := requireTestDB(t)
	siteID, workerID := setupAttendanceData(t, db)
	repo := postgresql.NewAttendanceRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, attendance.Record{
		WorkerID: workerID,
		SiteID:   siteID,
		Date:     time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC),
		ClockIn:  strPtr("08:15"),
		Status:   attendance.StatusLate,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 1, created.Version)
	assert.Equal(t, attendance.DisputeNone, created.DisputeState)

	got, err := repo.GetByID(ctx, created.ID, siteID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "08:15", *got.ClockIn)
	require.NotNil(t, got.WorkerName)
	assert.Equal(t, "김철수", *got.WorkerName)

	// site scoping: the record is invisible under another site
	_, err = repo.GetByID(ctx, created.ID, uuid.NewString())
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestAttendanceRepository_DisputeLifecycle(t *testing.T) {
	db := requireTestDB(t)
	siteID, workerID := setupAttendanceData(t, db)
	repo := postgresql.NewAttendanceRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, attendance.Record{
		WorkerID: workerID,
		SiteID:   siteID,
		Date:     time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC),
		ClockIn:  strPtr("08:15"),
		ClockOut: strPtr("18:00"),
		Status:   attendance.StatusLate,
	})
	require.NoError(t, err)

	pending, err := repo.MarkDisputePending(ctx, created.ID, siteID, "단말기 오류로 지각 처리됨", created.Version)
	require.NoError(t, err)
	assert.Equal(t, attendance.DisputePending, pending.DisputeState)
	assert.Equal(t, 2, pending.Version)
	require.NotNil(t, pending.DisputeMessage)
	assert.Equal(t, "단말기 오류로 지각 처리됨", *pending.DisputeMessage)

	// a second objection is rejected and the first message is untouched
	_, err = repo.MarkDisputePending(ctx, created.ID, siteID, "다른 메시지", pending.Version)
	assert.ErrorIs(t, err, attendance.ErrDisputeAlreadyPending)

	// a write carrying the pre-dispute version lost the race
	_, err = repo.ResolveDispute(ctx, created.ID, siteID, strPtr("08:00"), strPtr("18:00"), attendance.StatusPresent, created.Version)
	assert.ErrorIs(t, err, attendance.ErrStaleRecordConflict)

	resolved, err := repo.ResolveDispute(ctx, created.ID, siteID, strPtr("08:00"), strPtr("18:00"), attendance.StatusPresent, pending.Version)
	require.NoError(t, err)
	assert.Equal(t, attendance.DisputeNone, resolved.DisputeState)
	assert.Equal(t, attendance.StatusPresent, resolved.Status)
	assert.Equal(t, "08:00", *resolved.ClockIn)
	assert.Nil(t, resolved.DisputeMessage)
	assert.Equal(t, 3, resolved.Version)

	// resolving again: nothing is pending anymore
	_, err = repo.ResolveDispute(ctx, created.ID, siteID, strPtr("08:00"), strPtr("18:00"), attendance.StatusPresent, resolved.Version)
	assert.ErrorIs(t, err, attendance.ErrNoPendingDispute)
}

func TestAttendanceRepository_ListMonthAndPendingCounts(t *testing.T) {
	db := requireTestDB(t)
	siteID, workerID := setupAttendanceData(t, db)
	repo := postgresql.NewAttendanceRepository(db)
	ctx := context.Background()

	for day := 1; day <= 3; day++ {
		_, err := repo.Create(ctx, attendance.Record{
			WorkerID: workerID,
			SiteID:   siteID,
			Date:     time.Date(2025, 10, day, 0, 0, 0, 0, time.UTC),
			ClockIn:  strPtr("07:55"),
			ClockOut: strPtr("18:00"),
			Status:   attendance.StatusPresent,
		})
		require.NoError(t, err)
	}
	// previous month, must not appear
	_, err := repo.Create(ctx, attendance.Record{
		WorkerID: workerID,
		SiteID:   siteID,
		Date:     time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC),
		Status:   attendance.StatusAbsent,
	})
	require.NoError(t, err)

	records, err := repo.ListByMonth(ctx, workerID, 2025, 10, siteID)
	require.NoError(t, err)
	assert.Len(t, records, 3)
	// newest first
	assert.Equal(t, "2025-10-03", records[0].DateString())

	disputed := records[2]
	_, err = repo.MarkDisputePending(ctx, disputed.ID, siteID, "이의 제기", disputed.Version)
	require.NoError(t, err)

	pending, err := repo.ListPendingDisputes(ctx, siteID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, disputed.ID, pending[0].ID)

	counts, err := repo.CountPendingByWorker(ctx, siteID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{workerID: 1}, counts)
}
