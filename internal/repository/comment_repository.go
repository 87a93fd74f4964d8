package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reshla/blacklist-service/internal/domain"
	apperrors "github.com/reshla/blacklist-service/pkg/util/errorutil"
)

// CommentRepository persists the public commentary feed of a report.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.ReportComment) error
	ListByReport(ctx context.Context, reportID string) ([]domain.ReportComment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository instantiates repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.ReportComment) error {
	const query = `
        INSERT INTO report_comments (report_id, author_id, body)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	if err := r.pool.QueryRow(ctx, query,
		comment.ReportID,
		comment.AuthorID,
		comment.Body,
	).Scan(&comment.ID, &comment.CreatedAt); err != nil {
		return apperrors.NewCollaboratorUnavailable("report store", err)
	}
	return nil
}

func (r *commentRepository) ListByReport(ctx context.Context, reportID string) ([]domain.ReportComment, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, report_id, author_id, body, created_at
        FROM report_comments WHERE report_id=$1 ORDER BY created_at`, reportID)
	if err != nil {
		return nil, apperrors.NewCollaboratorUnavailable("report store", err)
	}
	defer rows.Close()

	var result []domain.ReportComment
	for rows.Next() {
		var comment domain.ReportComment
		if err := rows.Scan(
			&comment.ID,
			&comment.ReportID,
			&comment.AuthorID,
			&comment.Body,
			&comment.CreatedAt,
		); err != nil {
			return nil, apperrors.NewCollaboratorUnavailable("report store", err)
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
