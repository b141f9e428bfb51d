package data

// Package data contains the self-hosted Postgres profile store, used when the
// deployment keeps profile records next to the edge instead of in the
// identity platform.

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	domainauth "github.com/sankulkush/UTHBUS-sub001/internal/domain/auth"
	apperrors "github.com/sankulkush/UTHBUS-sub001/internal/errors"
)

// ProfileRepo implements ports.ProfileStore over pgx.
type ProfileRepo struct {
	pool *pgxpool.Pool
}

// NewProfileRepo creates a Postgres-backed profile repository.
func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

const profileColumns = "uid, email, role, company_name, contact_number, approved, is_operator, created_at"

// Get returns the profile record for uid.
func (r *ProfileRepo) Get(ctx context.Context, uid string) (domainauth.Profile, error) {
	if uid == "" {
		return domainauth.Profile{}, apperrors.Validation("uid is required")
	}

	query := fmt.Sprintf("SELECT %s FROM profiles WHERE uid = $1", profileColumns)
	row := r.pool.QueryRow(ctx, query, uid)

	var p domainauth.Profile
	var role string
	err := row.Scan(&p.UID, &p.Email, &role, &p.CompanyName, &p.ContactNumber,
		&p.Approved, &p.IsOperator, &p.CreatedAt)
	if err != nil {
		return domainauth.Profile{}, mapPgError(err, fmt.Sprintf("profile %q not found", uid))
	}
	p.Role = domainauth.Role(role)

	return p, nil
}

// Create inserts a new profile record. A duplicate uid maps to a conflict.
func (r *ProfileRepo) Create(ctx context.Context, profile domainauth.Profile) error {
	if profile.UID == "" {
		return apperrors.Validation("uid is required")
	}
	if !profile.Role.Valid() {
		return apperrors.ValidationField("role", "invalid role")
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO profiles (uid, email, role, company_name, contact_number, approved, is_operator)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		profile.UID, profile.Email, string(profile.Role),
		profile.CompanyName, profile.ContactNumber, profile.Approved, profile.IsOperator)
	if err != nil {
		return mapPgError(err, "")
	}

	return nil
}

// SetApproval flips the operator approval flag for uid.
func (r *ProfileRepo) SetApproval(ctx context.Context, uid string, approved bool) error {
	if uid == "" {
		return apperrors.Validation("uid is required")
	}

	tag, err := r.pool.Exec(ctx, "UPDATE profiles SET approved = $2 WHERE uid = $1", uid, approved)
	if err != nil {
		return mapPgError(err, "")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFoundf("profile %q not found", uid)
	}

	return nil
}
