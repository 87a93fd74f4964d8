package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reshla/blacklist-service/internal/domain"
	apperrors "github.com/reshla/blacklist-service/pkg/util/errorutil"
)

// ModeratorActionRepository persists the append-only moderator audit trail.
type ModeratorActionRepository interface {
	Create(ctx context.Context, action *domain.ModeratorAction) error
	ListByReport(ctx context.Context, reportID string) ([]domain.ModeratorAction, error)
}

type moderatorActionRepository struct {
	pool *pgxpool.Pool
}

// NewModeratorActionRepository instantiates repository.
func NewModeratorActionRepository(pool *pgxpool.Pool) ModeratorActionRepository {
	return &moderatorActionRepository{pool: pool}
}

func (r *moderatorActionRepository) Create(ctx context.Context, action *domain.ModeratorAction) error {
	const query = `
        INSERT INTO moderator_actions (report_id, moderator_id, action, comment)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	if err := r.pool.QueryRow(ctx, query,
		action.ReportID,
		action.ModeratorID,
		action.Action,
		action.Comment,
	).Scan(&action.ID, &action.CreatedAt); err != nil {
		return apperrors.NewCollaboratorUnavailable("report store", err)
	}
	return nil
}

func (r *moderatorActionRepository) ListByReport(ctx context.Context, reportID string) ([]domain.ModeratorAction, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, report_id, moderator_id, action, comment, created_at
        FROM moderator_actions WHERE report_id=$1 ORDER BY created_at`, reportID)
	if err != nil {
		return nil, apperrors.NewCollaboratorUnavailable("report store", err)
	}
	defer rows.Close()

	var result []domain.ModeratorAction
	for rows.Next() {
		var action domain.ModeratorAction
		if err := rows.Scan(
			&action.ID,
			&action.ReportID,
			&action.ModeratorID,
			&action.Action,
			&action.Comment,
			&action.CreatedAt,
		); err != nil {
			return nil, apperrors.NewCollaboratorUnavailable("report store", err)
		}
		result = append(result, action)
	}
	return result, rows.Err()
}
