package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/worker"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/pkg/database"
)

type workerRepository struct {
	db *database.DB
}

func NewWorkerRepository(db *database.DB) worker.WorkerRepository {
	return &workerRepository{db: db}
}

// GetByID implements worker.WorkerRepository.
func (w *workerRepository) GetByID(ctx context.Context, id string, siteID string) (worker.Worker, error) {
	q := GetQuerier(ctx, w.db)

	query := `
		SELECT id, site_id, name, phone, trade, created_at, updated_at
		FROM workers
		WHERE id = $1 AND site_id = $2
	`

	var wk worker.Worker
	err := q.QueryRow(ctx, query, id, siteID).Scan(
		&wk.ID, &wk.SiteID, &wk.Name, &wk.Phone, &wk.Trade, &wk.CreatedAt, &wk.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return worker.Worker{}, worker.ErrWorkerNotFound
		}
		return worker.Worker{}, fmt.Errorf("failed to get worker by ID: %w", err)
	}

	return wk, nil
}

// List implements worker.WorkerRepository.
func (w *workerRepository) List(ctx context.Context, siteID string) ([]worker.Worker, error) {
	q := GetQuerier(ctx, w.db)

	query := `
		SELECT id, site_id, name, phone, trade, created_at, updated_at
		FROM workers
		WHERE site_id = $1
		ORDER BY name ASC
	`

	rows, err := q.Query(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	defer rows.Close()

	var workers []worker.Worker
	for rows.Next() {
		var wk worker.Worker
		if err := rows.Scan(&wk.ID, &wk.SiteID, &wk.Name, &wk.Phone, &wk.Trade, &wk.CreatedAt, &wk.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan worker: %w", err)
		}
		workers = append(workers, wk)
	}

	return workers, nil
}
