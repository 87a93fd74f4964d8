package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reshla/blacklist-service/internal/domain"
	apperrors "github.com/reshla/blacklist-service/pkg/util/errorutil"
)

// ProfileRepository stores published blacklist profiles. The presence of a
// row is the publisher's idempotency check.
type ProfileRepository interface {
	// Create inserts the profile unless one already exists for the subject.
	// The returned bool is true when a new row was written.
	Create(ctx context.Context, profile *domain.Profile) (bool, error)
	Get(ctx context.Context, subjectID string) (*domain.Profile, error)
	List(ctx context.Context, limit, offset int) ([]domain.Profile, error)
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository instantiates repository.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) (bool, error) {
	const query = `
        INSERT INTO profiles (subject_id, handle, reason, banned_at, report_url, proofs)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (subject_id) DO NOTHING`
	cmd, err := r.pool.Exec(ctx, query,
		profile.SubjectID,
		profile.Handle,
		profile.Reason,
		profile.BannedAt,
		profile.ReportURL,
		profile.Proofs,
	)
	if err != nil {
		return false, apperrors.NewCollaboratorUnavailable("profile store", err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *profileRepository) Get(ctx context.Context, subjectID string) (*domain.Profile, error) {
	const query = `
        SELECT subject_id, handle, reason, banned_at, report_url, proofs
        FROM profiles WHERE subject_id=$1`

	var profile domain.Profile
	if err := r.pool.QueryRow(ctx, query, subjectID).Scan(
		&profile.SubjectID,
		&profile.Handle,
		&profile.Reason,
		&profile.BannedAt,
		&profile.ReportURL,
		&profile.Proofs,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("profile", map[string]any{"subject_id": subjectID})
		}
		return nil, apperrors.NewCollaboratorUnavailable("profile store", err)
	}
	return &profile, nil
}

func (r *profileRepository) List(ctx context.Context, limit, offset int) ([]domain.Profile, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `
        SELECT subject_id, handle, reason, banned_at, report_url, proofs
        FROM profiles ORDER BY banned_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, apperrors.NewCollaboratorUnavailable("profile store", err)
	}
	defer rows.Close()

	var result []domain.Profile
	for rows.Next() {
		var profile domain.Profile
		if err := rows.Scan(
			&profile.SubjectID,
			&profile.Handle,
			&profile.Reason,
			&profile.BannedAt,
			&profile.ReportURL,
			&profile.Proofs,
		); err != nil {
			return nil, apperrors.NewCollaboratorUnavailable("profile store", err)
		}
		result = append(result, profile)
	}
	return result, rows.Err()
}
