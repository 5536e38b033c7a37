package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitecrew-app/sitecrew-backend-go/internal/config"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/attendance"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/notification"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/schedule"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/worker"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/pkg/clocktime"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/pkg/token"
)

const (
	testWorkerID  = "8c9e6679-7425-40de-944b-e07fc1f90ae7"
	testManagerID = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	testSiteID    = "f47ac10b-58cc-4372-a567-0e02b2c3d479"
)

var defaultShift = config.ShiftConfig{ClockIn: "08:00", ClockOut: "18:00", GraceMinutes: 10}

// ===== in-memory fakes =====

// memAttendanceRepo mirrors the store's optimistic-versioning semantics:
// dispute mutations carry the version the caller read, and a moved-on row
// denies the write with ErrStaleRecordConflict.
type memAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]*attendance.Record
	nextID  int

	// afterGet, when set, runs after every GetByID. Tests use it as a
	// barrier to force two callers to read the same snapshot.
	afterGet func()
}

func newMemAttendanceRepo() *memAttendanceRepo {
	return &memAttendanceRepo{records: make(map[string]*attendance.Record)}
}

func (m *memAttendanceRepo) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == "" {
		m.nextID++
		rec.ID = "rec-" + time.Now().Format("150405") + "-" + string(rune('a'+m.nextID))
	}
	if rec.DisputeState == "" {
		rec.DisputeState = attendance.DisputeNone
	}
	rec.Version = 1
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	stored := rec
	m.records[rec.ID] = &stored
	return rec, nil
}

func (m *memAttendanceRepo) GetByID(ctx context.Context, id string, siteID string) (attendance.Record, error) {
	m.mu.Lock()
	rec, ok := m.records[id]
	var copied attendance.Record
	if ok && rec.SiteID == siteID {
		copied = *rec
	}
	m.mu.Unlock()

	if !ok || copied.ID == "" {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	if m.afterGet != nil {
		m.afterGet()
	}
	return copied, nil
}

func (m *memAttendanceRepo) GetByWorkerAndDate(ctx context.Context, workerID string, date time.Time, siteID string) (*attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.WorkerID == workerID && rec.SiteID == siteID && rec.Date.Equal(date) {
			copied := *rec
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memAttendanceRepo) SetClockOut(ctx context.Context, id string, siteID string, clockOut string, status attendance.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok || rec.SiteID != siteID {
		return attendance.ErrAttendanceNotFound
	}
	rec.ClockOut = &clockOut
	rec.Status = status
	rec.UpdatedAt = time.Now()
	return nil
}

func (m *memAttendanceRepo) ListByMonth(ctx context.Context, workerID string, year int, month int, siteID string) ([]attendance.Record, error) {
	wid := workerID
	return m.ListMonth(ctx, &wid, year, month, siteID)
}

func (m *memAttendanceRepo) ListMonth(ctx context.Context, workerID *string, year int, month int, siteID string) ([]attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.Record
	for _, rec := range m.records {
		if rec.SiteID != siteID || rec.Date.Year() != year || int(rec.Date.Month()) != month {
			continue
		}
		if workerID != nil && rec.WorkerID != *workerID {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (m *memAttendanceRepo) ListPendingDisputes(ctx context.Context, siteID string) ([]attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.Record
	for _, rec := range m.records {
		if rec.SiteID == siteID && rec.DisputeState == attendance.DisputePending {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (m *memAttendanceRepo) MarkDisputePending(ctx context.Context, id string, siteID string, message string, expectedVersion int) (attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok || rec.SiteID != siteID {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	if rec.Version != expectedVersion {
		return attendance.Record{}, attendance.ErrStaleRecordConflict
	}
	if rec.DisputeState == attendance.DisputePending {
		return attendance.Record{}, attendance.ErrDisputeAlreadyPending
	}
	rec.DisputeState = attendance.DisputePending
	rec.DisputeMessage = &message
	rec.Version++
	rec.UpdatedAt = time.Now()
	return *rec, nil
}

func (m *memAttendanceRepo) ResolveDispute(ctx context.Context, id string, siteID string, clockIn, clockOut *string, status attendance.Status, expectedVersion int) (attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok || rec.SiteID != siteID {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	if rec.Version != expectedVersion {
		return attendance.Record{}, attendance.ErrStaleRecordConflict
	}
	if rec.DisputeState != attendance.DisputePending {
		return attendance.Record{}, attendance.ErrNoPendingDispute
	}
	rec.ClockIn = clockIn
	rec.ClockOut = clockOut
	rec.Status = status
	rec.DisputeState = attendance.DisputeNone
	rec.DisputeMessage = nil
	rec.Version++
	rec.UpdatedAt = time.Now()
	return *rec, nil
}

func (m *memAttendanceRepo) CountPendingByWorker(ctx context.Context, siteID string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int)
	for _, rec := range m.records {
		if rec.SiteID == siteID && rec.DisputeState == attendance.DisputePending {
			counts[rec.WorkerID]++
		}
	}
	return counts, nil
}

type memShiftRepo struct {
	shift *schedule.ShiftSchedule
}

func (m *memShiftRepo) GetBySite(ctx context.Context, siteID string) (schedule.ShiftSchedule, error) {
	if m.shift == nil {
		return schedule.ShiftSchedule{}, schedule.ErrShiftScheduleNotFound
	}
	return *m.shift, nil
}

type memNotificationService struct {
	mu     sync.Mutex
	raised []string // record IDs
}

func (m *memNotificationService) NotifyDisputeRaised(ctx context.Context, siteID string, recordID string, workerName string, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raised = append(m.raised, recordID)
	return nil
}

func (m *memNotificationService) List(ctx context.Context, unreadOnly bool) ([]notification.NotificationResponse, error) {
	return nil, nil
}

func (m *memNotificationService) MarkRead(ctx context.Context, id string) error { return nil }

// ===== helpers =====

func authedContext(t *testing.T, workerID string, role string) context.Context {
	t.Helper()
	tokenSvc := token.NewService("test-secret-key", "1h")

	tokenString, expiresAt, err := tokenSvc.GenerateAccessToken(workerID, testSiteID, worker.Role(role))
	require.NoError(t, err)
	require.Greater(t, expiresAt, time.Now().Unix())

	tok, err := tokenSvc.JWTAuth().Decode(tokenString)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), tok, nil)
}

func newTestService(repo *memAttendanceRepo, notifier *memNotificationService) attendance.AttendanceService {
	svc := NewAttendanceService(repo, &memShiftRepo{}, notifier, defaultShift)
	return svc
}

func withFixedNow(svc attendance.AttendanceService, now time.Time) {
	svc.(*AttendanceServiceImpl).now = func() time.Time { return now }
}

func seedRecord(repo *memAttendanceRepo, rec attendance.Record) attendance.Record {
	created, _ := repo.Create(context.Background(), rec)
	return created
}

func str(s string) *string { return &s }

// ===== capture =====

func TestClockIn_DerivesStatusAtCapture(t *testing.T) {
	t.Parallel()
	repo := newMemAttendanceRepo()
	svc := newTestService(repo, &memNotificationService{})
	withFixedNow(svc, time.Date(2025, 10, 31, 8, 15, 0, 0, time.UTC))
	ctx := authedContext(t, testWorkerID, "worker")

	resp, err := svc.ClockIn(ctx)
	require.NoError(t, err)

	assert.Equal(t, "2025-10-31", resp.Date)
	require.NotNil(t, resp.ClockIn)
	assert.Equal(t, "08:15", *resp.ClockIn)
	// 08:15 is past the 08:00 start plus 10 minute grace
	assert.Equal(t, attendance.StatusLate, resp.Status)
	assert.Equal(t, "지각", resp.StatusLabel)
	assert.Equal(t, string(attendance.DisputeNone), resp.DisputeState)
}

func TestClockIn_TwicePerDayFails(t *testing.T) {
	t.Parallel()
	repo := newMemAttendanceRepo()
	svc := newTestService(repo, &memNotificationService{})
	withFixedNow(svc, time.Date(2025, 10, 31, 7, 55, 0, 0, time.UTC))
	ctx := authedContext(t, testWorkerID, "worker")

	_, err := svc.ClockIn(ctx)
	require.NoError(t, err)

	_, err = svc.ClockIn(ctx)
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)
}

func TestClockOut_WithoutClockInFails(t *testing.T) {
	t.Parallel()
	repo := newMemAttendanceRepo()
	svc := newTestService(repo, &memNotificationService{})
	withFixedNow(svc, time.Date(2025, 10, 31, 18, 0, 0, 0, time.UTC))
	ctx := authedContext(t, testWorkerID, "worker")

	_, err := svc.ClockOut(ctx)
	assert.ErrorIs(t, err, attendance.ErrNotClockedIn)
}

func TestClockOut_EarlyLeave(t *testing.T) {
	t.Parallel()
	repo := newMemAttendanceRepo()
	svc := newTestService(repo, &memNotificationService{})
	ctx := authedContext(t, testWorkerID, "worker")

	withFixedNow(svc, time.Date(2025, 10, 31, 7, 58, 0, 0, time.UTC))
	_, err := svc.ClockIn(ctx)
	require.NoError(t, err)

	withFixedNow(svc, time.Date(2025, 10, 31, 16, 30, 0, 0, time.UTC))
	resp, err := svc.ClockOut(ctx)
	require.NoError(t, err)

	assert.Equal(t, attendance.StatusEarlyLeave, resp.Status)
	assert.Equal(t, "조퇴", resp.StatusLabel)

	_, err = svc.ClockOut(ctx)
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedOut)
}

// ===== dispute lifecycle =====

func seedDisputableRecord(repo *memAttendanceRepo) attendance.Record {
	return seedRecord(repo, attendance.Record{
		WorkerID: testWorkerID,
		SiteID:   testSiteID,
		Date:     time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC),
		ClockIn:  str("08:15"),
		ClockOut: str("18:00"),
		Status:   attendance.StatusLate,
	})
}

func TestDisputeLifecycle_EndToEnd(t *testing.T) {
	t.Parallel()
	repo := newMemAttendanceRepo()
	notifier := &memNotificationService{}
	svc := newTestService(repo, notifier)
	workerCtx := authedContext(t, testWorkerID, "worker")
	managerCtx := authedContext(t, testManagerID, "manager")

	rec := seedDisputableRecord(repo)

	raised, err := svc.RaiseDispute(workerCtx, attendance.RaiseDisputeRequest{
		RecordID: rec.ID,
		Message:  "단말기 오류로 지각 처리됨",
	})
	require.NoError(t, err)
	assert.Equal(t, string(attendance.DisputePending), raised.DisputeState)
	require.NotNil(t, raised.DisputeMessage)
	assert.Equal(t, "단말기 오류로 지각 처리됨", *raised.DisputeMessage)
	// raising does not touch the clock fields or the status
	assert.Equal(t, "08:15", *raised.ClockIn)
	assert.Equal(t, "18:00", *raised.ClockOut)
	assert.Equal(t, attendance.StatusLate, raised.Status)
	assert.Equal(t, []string{rec.ID}, notifier.raised)

	resolved, err := svc.ResolveDispute(managerCtx, attendance.ResolveDisputeRequest{
		RecordID:      rec.ID,
		ClockInPeriod: str("오전"),
		ClockIn:       str("08:00"),
		ClockOut:      str("18:00"),
		Status:        "PRESENT",
	})
	require.NoError(t, err)
	assert.Equal(t, "08:00", *resolved.ClockIn)
	assert.Equal(t, "18:00", *resolved.ClockOut)
	assert.Equal(t, attendance.StatusPresent, resolved.Status)
	assert.Equal(t, string(attendance.DisputeNone), resolved.DisputeState)
	assert.Nil(t, resolved.DisputeMessage)
}

func TestRaiseDispute_WhilePendingFails(t *testing.T) {
	t.Parallel()
	repo := newMemAttendanceRepo()
	svc := newTestService(repo, &memNotificationService{})
	ctx := authedContext(t, testWorkerID, "worker")

	rec := seedDisputableRecord(repo)

	_, err := svc.RaiseDispute(ctx, attendance.RaiseDisputeRequest{RecordID: rec.ID, Message: "첫 번째 이의"})
	require.NoError(t, err)

	_, err = svc.RaiseDispute(ctx, attendance.RaiseDisputeRequest{RecordID: rec.ID, Message: "두 번째 이의"})
	assert.ErrorIs(t, err, attendance.ErrDisputeAlreadyPending)

	// the original message is untouched
	stored, err := repo.GetByID(context.Background(), rec.ID, testSiteID)
	require.NoError(t, err)
	require.NotNil(t, stored.DisputeMessage)
	assert.Equal(t, "첫 번째 이의", *stored.DisputeMessage)
}

func TestRaiseDispute_OnAnotherWorkersRecordFails(t *testing.T) {
	t.Parallel()
	repo := newMemAttendanceRepo()
	svc := newTestService(repo, &memNotificationService{})
	ctx := authedContext(t, testManagerID, "worker")

	rec := seedDisputableRecord(repo)

	_, err := svc.RaiseDispute(ctx, attendance.RaiseDisputeRequest{RecordID: rec.ID, Message: "남의 기록"})
	assert.ErrorIs(t, err, attendance.ErrNotRecordOwner)
}

func TestResolveDispute_WithoutPendingFails(t *testing.T) {
	t.Parallel()
	repo := newMemAttendanceRepo()
	svc := newTestService(repo, &memNotificationService{})
	ctx := authedContext(t, testManagerID, "manager")

	rec := seedDisputableRecord(repo)

	_, err := svc.ResolveDispute(ctx, attendance.ResolveDisputeRequest{
		RecordID: rec.ID,
		Status:   "PRESENT",
	})
	assert.ErrorIs(t, err, attendance.ErrNoPendingDispute)
}

func TestResolveDispute_MalformedTimeLeavesRecordUntouched(t *testing.T) {
	t.Parallel()
	repo := newMemAttendanceRepo()
	svc := newTestService(repo, &memNotificationService{})
	workerCtx := authedContext(t, testWorkerID, "worker")
	managerCtx := authedContext(t, testManagerID, "manager")

	rec := seedDisputableRecord(repo)
	_, err := svc.RaiseDispute(workerCtx, attendance.RaiseDisputeRequest{RecordID: rec.ID, Message: "시간 오류"})
	require.NoError(t, err)

	_, err = svc.ResolveDispute(managerCtx, attendance.ResolveDisputeRequest{
		RecordID: rec.ID,
		ClockIn:  str("8 o'clock"),
		Status:   "PRESENT",
	})
	assert.ErrorIs(t, err, clocktime.ErrInvalidTimeFormat)

	stored, err := repo.GetByID(context.Background(), rec.ID, testSiteID)
	require.NoError(t, err)
	assert.Equal(t, attendance.DisputePending, stored.DisputeState)
	assert.Equal(t, "08:15", *stored.ClockIn)
	assert.Equal(t, attendance.StatusLate, stored.Status)
}

func TestResolveDispute_ConcurrentResolutionOneWins(t *testing.T) {
	t.Parallel()
	repo := newMemAttendanceRepo()
	svc := newTestService(repo, &memNotificationService{})
	workerCtx := authedContext(t, testWorkerID, "worker")
	managerCtx := authedContext(t, testManagerID, "manager")

	rec := seedDisputableRecord(repo)
	_, err := svc.RaiseDispute(workerCtx, attendance.RaiseDisputeRequest{RecordID: rec.ID, Message: "동시 처리 테스트"})
	require.NoError(t, err)

	// Barrier: both resolvers read the same PENDING snapshot before either
	// writes, so exactly one must lose the optimistic race.
	var readBarrier sync.WaitGroup
	readBarrier.Add(2)
	repo.afterGet = func() {
		readBarrier.Done()
		readBarrier.Wait()
	}

	type outcome struct {
		resp attendance.RecordResponse
		err  error
	}
	results := make(chan outcome, 2)

	resolve := func(status string, clockIn string) {
		resp, err := svc.ResolveDispute(managerCtx, attendance.ResolveDisputeRequest{
			RecordID: rec.ID,
			ClockIn:  str(clockIn),
			ClockOut: str("18:00"),
			Status:   status,
		})
		results <- outcome{resp, err}
	}

	go resolve("PRESENT", "08:00")
	go resolve("LATE", "09:00")

	first := <-results
	second := <-results
	repo.afterGet = nil

	var won, lost outcome
	if first.err == nil {
		won, lost = first, second
	} else {
		won, lost = second, first
	}

	require.NoError(t, won.err)
	assert.ErrorIs(t, lost.err, attendance.ErrStaleRecordConflict)

	// the stored state matches the winner's inputs only
	stored, err := repo.GetByID(context.Background(), rec.ID, testSiteID)
	require.NoError(t, err)
	assert.Equal(t, attendance.DisputeNone, stored.DisputeState)
	assert.Equal(t, won.resp.Status, stored.Status)
	assert.Equal(t, *won.resp.ClockIn, *stored.ClockIn)
}

func TestResolveDispute_DismissResubmitsOriginalValues(t *testing.T) {
	t.Parallel()
	repo := newMemAttendanceRepo()
	svc := newTestService(repo, &memNotificationService{})
	workerCtx := authedContext(t, testWorkerID, "worker")
	managerCtx := authedContext(t, testManagerID, "manager")

	rec := seedDisputableRecord(repo)
	_, err := svc.RaiseDispute(workerCtx, attendance.RaiseDisputeRequest{RecordID: rec.ID, Message: "기각될 이의"})
	require.NoError(t, err)

	// dismiss = resolve with the record's original values unchanged
	resolved, err := svc.ResolveDispute(managerCtx, attendance.ResolveDisputeRequest{
		RecordID: rec.ID,
		ClockIn:  str("08:15"),
		ClockOut: str("18:00"),
		Status:   "LATE",
	})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLate, resolved.Status)
	assert.Equal(t, string(attendance.DisputeNone), resolved.DisputeState)

	// a still-dissatisfied worker may raise a new objection
	_, err = svc.RaiseDispute(workerCtx, attendance.RaiseDisputeRequest{RecordID: rec.ID, Message: "재차 이의"})
	assert.NoError(t, err)
}

// ===== review queue =====

func TestListPendingDisputes_SuggestsClassifierStatus(t *testing.T) {
	t.Parallel()
	repo := newMemAttendanceRepo()
	svc := newTestService(repo, &memNotificationService{})
	workerCtx := authedContext(t, testWorkerID, "worker")
	managerCtx := authedContext(t, testManagerID, "manager")

	rec := seedRecord(repo, attendance.Record{
		WorkerID: testWorkerID,
		SiteID:   testSiteID,
		Date:     time.Date(2025, 10, 30, 0, 0, 0, 0, time.UTC),
		ClockIn:  str("08:05"),
		ClockOut: str("18:00"),
		Status:   attendance.StatusLate, // mislabeled at capture
	})
	_, err := svc.RaiseDispute(workerCtx, attendance.RaiseDisputeRequest{RecordID: rec.ID, Message: "정상 출근했습니다"})
	require.NoError(t, err)

	reviews, err := svc.ListPendingDisputes(managerCtx)
	require.NoError(t, err)
	require.Len(t, reviews, 1)

	review := reviews[0]
	// 08:05 is inside the 10 minute grace: the classifier disagrees with the
	// stored label and the form is pre-filled with PRESENT
	assert.Equal(t, attendance.StatusPresent, review.SuggestedStatus)
	assert.Equal(t, attendance.StatusLate, review.Status)

	require.NotNil(t, review.ClockInEntry)
	assert.Equal(t, "AM", review.ClockInEntry.Period)
	assert.Equal(t, "오전", review.ClockInEntry.PeriodLabel)
	assert.Equal(t, "08:05", review.ClockInEntry.ClockFace)

	require.NotNil(t, review.ClockOutEntry)
	assert.Equal(t, "PM", review.ClockOutEntry.Period)
	assert.Equal(t, "06:00", review.ClockOutEntry.ClockFace)
}

func TestGetMyMonthlyAttendance(t *testing.T) {
	t.Parallel()
	repo := newMemAttendanceRepo()
	svc := newTestService(repo, &memNotificationService{})
	ctx := authedContext(t, testWorkerID, "worker")

	seedRecord(repo, attendance.Record{
		WorkerID: testWorkerID,
		SiteID:   testSiteID,
		Date:     time.Date(2025, 10, 2, 0, 0, 0, 0, time.UTC),
		ClockIn:  str("07:50"),
		ClockOut: str("18:00"),
		Status:   attendance.StatusPresent,
	})
	seedRecord(repo, attendance.Record{
		WorkerID: testWorkerID,
		SiteID:   testSiteID,
		Date:     time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC),
		Status:   attendance.StatusAbsent,
	})

	records, err := svc.GetMyMonthlyAttendance(ctx, attendance.MonthFilter{Year: 2025, Month: 10})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2025-10-02", records[0].Date)

	_, err = svc.GetMyMonthlyAttendance(ctx, attendance.MonthFilter{Year: 2025, Month: 13})
	assert.Error(t, err)
}
