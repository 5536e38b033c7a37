package worker

import "context"

// WorkerRepository defines data access for the site roster. All methods take
// siteID to prevent cross-site data access.
type WorkerRepository interface {
	GetByID(ctx context.Context, id string, siteID string) (Worker, error)
	List(ctx context.Context, siteID string) ([]Worker, error)
}
