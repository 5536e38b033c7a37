package worker

import "time"

// Role distinguishes the two kinds of app users. Role is carried in the
// bearer token claims issued by the auth collaborator.
type Role string

const (
	RoleWorker  Role = "worker"
	RoleManager Role = "manager"
)

type Worker struct {
	ID        string
	SiteID    string
	Name      string
	Phone     *string
	Trade     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
