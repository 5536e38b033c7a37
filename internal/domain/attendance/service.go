package attendance

import "context"

// AttendanceService owns attendance capture and the dispute lifecycle. The
// caller's identity (worker, site, role) comes from the bearer token claims
// in ctx.
type AttendanceService interface {
	ClockIn(ctx context.Context) (RecordResponse, error)
	ClockOut(ctx context.Context) (RecordResponse, error)

	GetMyMonthlyAttendance(ctx context.Context, filter MonthFilter) ([]RecordResponse, error)
	ListMonthlyAttendance(ctx context.Context, filter ListMonthFilter) ([]RecordResponse, error)

	RaiseDispute(ctx context.Context, req RaiseDisputeRequest) (RecordResponse, error)
	ResolveDispute(ctx context.Context, req ResolveDisputeRequest) (RecordResponse, error)
	ListPendingDisputes(ctx context.Context) ([]DisputeReviewResponse, error)
}
