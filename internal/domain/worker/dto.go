package worker

// RosterWorkerSummary is one row of the manager's roster screen: the worker
// plus the badge count of attendance records with an outstanding objection.
type RosterWorkerSummary struct {
	WorkerID        string  `json:"worker_id"`
	Name            string  `json:"name"`
	Trade           *string `json:"trade,omitempty"`
	PendingDisputes int     `json:"pending_disputes"`
}
