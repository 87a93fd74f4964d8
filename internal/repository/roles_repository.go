package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reshla/blacklist-service/internal/domain"
	apperrors "github.com/reshla/blacklist-service/pkg/util/errorutil"
)

// RolesRepository stores the single versioned role document plus its audit
// trail. Writes are read-modify-write with a version precondition.
type RolesRepository interface {
	Get(ctx context.Context) (*domain.Roles, error)
	Update(ctx context.Context, roles *domain.Roles, expectedVersion int) error
	AppendAudit(ctx context.Context, entry *domain.RoleAuditEntry) error
}

type rolesRepository struct {
	pool *pgxpool.Pool
}

// NewRolesRepository instantiates repository.
func NewRolesRepository(pool *pgxpool.Pool) RolesRepository {
	return &rolesRepository{pool: pool}
}

func (r *rolesRepository) Get(ctx context.Context) (*domain.Roles, error) {
	const query = `SELECT admins, moderators, version, updated_at FROM roles WHERE id=1`

	var roles domain.Roles
	if err := r.pool.QueryRow(ctx, query).Scan(
		&roles.Admins,
		&roles.Moderators,
		&roles.Version,
		&roles.UpdatedAt,
	); err != nil {
		return nil, apperrors.NewCollaboratorUnavailable("role store", err)
	}
	return &roles, nil
}

func (r *rolesRepository) Update(ctx context.Context, roles *domain.Roles, expectedVersion int) error {
	const query = `
        UPDATE roles SET admins=$1, moderators=$2, version=version+1, updated_at=NOW()
        WHERE id=1 AND version=$3
        RETURNING version, updated_at`
	if err := r.pool.QueryRow(ctx, query,
		roles.Admins,
		roles.Moderators,
		expectedVersion,
	).Scan(&roles.Version, &roles.UpdatedAt); err != nil {
		if !staleVersion(err) {
			return apperrors.NewCollaboratorUnavailable("role store", err)
		}
		current, getErr := r.Get(ctx)
		if getErr != nil {
			return apperrors.NewCollaboratorUnavailable("role store", err)
		}
		return apperrors.NewConflict("role document changed concurrently", map[string]any{
			"expected_version": expectedVersion,
			"current_version":  current.Version,
		})
	}
	return nil
}

// staleVersion reports whether the update returned no row, meaning the
// version precondition failed rather than the store faulting.
func staleVersion(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func (r *rolesRepository) AppendAudit(ctx context.Context, entry *domain.RoleAuditEntry) error {
	oldJSON, err := json.Marshal(rolesDoc{Admins: entry.OldRoles.Admins, Moderators: entry.OldRoles.Moderators})
	if err != nil {
		return err
	}
	newJSON, err := json.Marshal(rolesDoc{Admins: entry.NewRoles.Admins, Moderators: entry.NewRoles.Moderators})
	if err != nil {
		return err
	}

	const query = `
        INSERT INTO role_audit (actor, old_roles, new_roles)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	if err := r.pool.QueryRow(ctx, query, entry.Actor, oldJSON, newJSON).
		Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return apperrors.NewCollaboratorUnavailable("role store", err)
	}
	return nil
}

type rolesDoc struct {
	Admins     []string `json:"admins"`
	Moderators []string `json:"moderators"`
}
