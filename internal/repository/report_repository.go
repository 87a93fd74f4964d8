package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reshla/blacklist-service/internal/domain"
	apperrors "github.com/reshla/blacklist-service/pkg/util/errorutil"
)

const pgUniqueViolation = "23505"

// ReportFilter captures listing parameters.
type ReportFilter struct {
	Status      *domain.ReportStatus
	SubmittedBy *string
	SubjectID   *string
	Limit       int
	Offset      int
}

// ReportRepository is the report store contract. Status writes carry an
// optimistic precondition so that concurrent poller runs and moderator
// actions cannot double-apply a transition.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	GetByID(ctx context.Context, id string) (*domain.Report, error)
	List(ctx context.Context, filter ReportFilter) ([]domain.Report, error)
	UpdateStatus(ctx context.Context, id string, next domain.ReportStatus, lowPriority bool, expected domain.ReportStatus) error
	RecordVote(ctx context.Context, reportID, voterID string) (int, error)
	HasVoted(ctx context.Context, reportID, voterID string) (bool, error)
	Resubmit(ctx context.Context, id string, reason string, deadline time.Time) error
	AddProofs(ctx context.Context, reportID string, proofs []domain.ProofReference) error
	ListProofs(ctx context.Context, reportID string) ([]domain.ProofReference, error)
}

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository instantiates repository.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

func (r *reportRepository) Create(ctx context.Context, report *domain.Report) error {
	const query = `
        INSERT INTO reports (subject_id, subject_handle, reason, status, low_priority, vote_count, submitted_by, voting_deadline)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		report.SubjectID,
		report.SubjectHandle,
		report.Reason,
		report.Status,
		report.LowPriority,
		report.VoteCount,
		report.SubmittedBy,
		report.VotingDeadline,
	).Scan(&report.ID, &report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		return apperrors.NewCollaboratorUnavailable("report store", err)
	}
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	const query = `
        SELECT id, subject_id, subject_handle, reason, status, low_priority, vote_count,
               submitted_by, created_at, updated_at, voting_deadline
        FROM reports WHERE id=$1`

	var report domain.Report
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&report.ID,
		&report.SubjectID,
		&report.SubjectHandle,
		&report.Reason,
		&report.Status,
		&report.LowPriority,
		&report.VoteCount,
		&report.SubmittedBy,
		&report.CreatedAt,
		&report.UpdatedAt,
		&report.VotingDeadline,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("report", map[string]any{"id": id})
		}
		return nil, apperrors.NewCollaboratorUnavailable("report store", err)
	}
	return &report, nil
}

func (r *reportRepository) List(ctx context.Context, filter ReportFilter) ([]domain.Report, error) {
	base := `SELECT id, subject_id, subject_handle, reason, status, low_priority, vote_count,
                    submitted_by, created_at, updated_at, voting_deadline
             FROM reports`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.SubmittedBy != nil {
		args = append(args, *filter.SubmittedBy)
		clauses = append(clauses, fmt.Sprintf("submitted_by=$%d", len(args)))
	}
	if filter.SubjectID != nil {
		args = append(args, *filter.SubjectID)
		clauses = append(clauses, fmt.Sprintf("subject_id=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewCollaboratorUnavailable("report store", err)
	}
	defer rows.Close()
	return scanReports(rows)
}

// UpdateStatus commits a transition only when the stored status still matches
// the expected one. A lost race surfaces as CONFLICT so callers can skip.
func (r *reportRepository) UpdateStatus(ctx context.Context, id string, next domain.ReportStatus, lowPriority bool, expected domain.ReportStatus) error {
	const query = `
        UPDATE reports SET status=$1, low_priority=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4`
	cmd, err := r.pool.Exec(ctx, query, next, lowPriority, id, expected)
	if err != nil {
		return apperrors.NewCollaboratorUnavailable("report store", err)
	}
	if cmd.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return apperrors.NewConflict("report status changed concurrently", map[string]any{
			"id":       id,
			"expected": expected,
		})
	}
	return nil
}

// RecordVote inserts the voter row and bumps the denormalized count in one
// transaction. The (report_id, voter_id) primary key is the one-vote-per-user
// invariant.
func (r *reportRepository) RecordVote(ctx context.Context, reportID, voterID string) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, apperrors.NewCollaboratorUnavailable("report store", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var status domain.ReportStatus
	if err := tx.QueryRow(ctx, `SELECT status FROM reports WHERE id=$1 FOR UPDATE`, reportID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.NewNotFound("report", map[string]any{"id": reportID})
		}
		return 0, apperrors.NewCollaboratorUnavailable("report store", err)
	}
	if status != domain.ReportStatusVoting {
		return 0, apperrors.NewInvalidState("report is not accepting votes", map[string]any{
			"id":     reportID,
			"status": status,
		})
	}

	if _, err := tx.Exec(ctx, `INSERT INTO report_votes (report_id, voter_id) VALUES ($1,$2)`, reportID, voterID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, apperrors.NewAlreadyVoted(reportID)
		}
		return 0, apperrors.NewCollaboratorUnavailable("report store", err)
	}

	var count int
	if err := tx.QueryRow(ctx, `
        UPDATE reports SET vote_count=vote_count+1, updated_at=NOW()
        WHERE id=$1 RETURNING vote_count`, reportID).Scan(&count); err != nil {
		return 0, apperrors.NewCollaboratorUnavailable("report store", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, apperrors.NewCollaboratorUnavailable("report store", err)
	}
	return count, nil
}

func (r *reportRepository) HasVoted(ctx context.Context, reportID, voterID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
        SELECT EXISTS(SELECT 1 FROM report_votes WHERE report_id=$1 AND voter_id=$2)`,
		reportID, voterID).Scan(&exists)
	if err != nil {
		return false, apperrors.NewCollaboratorUnavailable("report store", err)
	}
	return exists, nil
}

// Resubmit resets a report into a fresh voting round and discards previously
// recorded votes.
func (r *reportRepository) Resubmit(ctx context.Context, id string, reason string, deadline time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return apperrors.NewCollaboratorUnavailable("report store", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cmd, err := tx.Exec(ctx, `
        UPDATE reports SET status=$1, low_priority=FALSE, vote_count=0, reason=$2,
            voting_deadline=$3, updated_at=NOW()
        WHERE id=$4`, domain.ReportStatusVoting, reason, deadline, id)
	if err != nil {
		return apperrors.NewCollaboratorUnavailable("report store", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.NewNotFound("report", map[string]any{"id": id})
	}
	if _, err := tx.Exec(ctx, `DELETE FROM report_votes WHERE report_id=$1`, id); err != nil {
		return apperrors.NewCollaboratorUnavailable("report store", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewCollaboratorUnavailable("report store", err)
	}
	return nil
}

func (r *reportRepository) AddProofs(ctx context.Context, reportID string, proofs []domain.ProofReference) error {
	for _, proof := range proofs {
		if _, err := r.pool.Exec(ctx, `
            INSERT INTO report_proofs (report_id, url, file_name) VALUES ($1,$2,$3)`,
			reportID, proof.URL, proof.FileName); err != nil {
			return apperrors.NewCollaboratorUnavailable("report store", err)
		}
	}
	return nil
}

func (r *reportRepository) ListProofs(ctx context.Context, reportID string) ([]domain.ProofReference, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, report_id, url, file_name FROM report_proofs WHERE report_id=$1 ORDER BY id`, reportID)
	if err != nil {
		return nil, apperrors.NewCollaboratorUnavailable("report store", err)
	}
	defer rows.Close()

	var result []domain.ProofReference
	for rows.Next() {
		var proof domain.ProofReference
		if err := rows.Scan(&proof.ID, &proof.ReportID, &proof.URL, &proof.FileName); err != nil {
			return nil, apperrors.NewCollaboratorUnavailable("report store", err)
		}
		result = append(result, proof)
	}
	return result, rows.Err()
}

func scanReports(rows pgx.Rows) ([]domain.Report, error) {
	var result []domain.Report
	for rows.Next() {
		var report domain.Report
		if err := rows.Scan(
			&report.ID,
			&report.SubjectID,
			&report.SubjectHandle,
			&report.Reason,
			&report.Status,
			&report.LowPriority,
			&report.VoteCount,
			&report.SubmittedBy,
			&report.CreatedAt,
			&report.UpdatedAt,
			&report.VotingDeadline,
		); err != nil {
			return nil, apperrors.NewCollaboratorUnavailable("report store", err)
		}
		result = append(result, report)
	}
	return result, rows.Err()
}
