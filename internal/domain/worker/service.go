package worker

import "context"

// RosterService reads the reconciliation core for badge counts only.
type RosterService interface {
	Summary(ctx context.Context) ([]RosterWorkerSummary, error)
}
