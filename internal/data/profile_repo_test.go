package data

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	domainauth "github.com/sankulkush/UTHBUS-sub001/internal/domain/auth"
	apperrors "github.com/sankulkush/UTHBUS-sub001/internal/errors"
	"github.com/sankulkush/UTHBUS-sub001/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) (*ProfileRepo, *pgxpool.Pool) {
	t.Helper()
	pool := testutil.SetupTestDB(t)

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, pool))
	_, err := pool.Exec(ctx, "DELETE FROM profiles")
	require.NoError(t, err)

	return NewProfileRepo(pool), pool
}

func TestProfileRepo_CreateAndGet(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	profile := domainauth.Profile{
		UID:           "op-1",
		Email:         "counter@silverline.example",
		Role:          domainauth.RoleOperator,
		CompanyName:   "Silverline Travels",
		ContactNumber: "+977-1-5550123",
		IsOperator:    true,
	}
	require.NoError(t, repo.Create(ctx, profile))

	got, err := repo.Get(ctx, "op-1")
	require.NoError(t, err)
	assert.Equal(t, profile.Email, got.Email)
	assert.Equal(t, domainauth.RoleOperator, got.Role)
	assert.False(t, got.Approved)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestProfileRepo_GetMissing(t *testing.T) {
	repo, _ := setupRepo(t)

	_, err := repo.Get(context.Background(), "ghost")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestProfileRepo_DuplicateCreateIsConflict(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	profile := domainauth.Profile{UID: "u-1", Email: "rider@example.com", Role: domainauth.RoleUser}
	require.NoError(t, repo.Create(ctx, profile))

	err := repo.Create(ctx, profile)
	assert.True(t, apperrors.IsConflict(err))
}

func TestProfileRepo_CreateValidation(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	err := repo.Create(ctx, domainauth.Profile{Email: "x@example.com", Role: domainauth.RoleUser})
	assert.True(t, apperrors.IsValidation(err))

	err = repo.Create(ctx, domainauth.Profile{UID: "u-2", Role: domainauth.Role("guest")})
	assert.True(t, apperrors.IsValidation(err))
}

func TestProfileRepo_SetApproval(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, domainauth.Profile{
		UID: "op-2", Email: "hill@example.com", Role: domainauth.RoleOperator, IsOperator: true,
	}))

	require.NoError(t, repo.SetApproval(ctx, "op-2", true))

	got, err := repo.Get(ctx, "op-2")
	require.NoError(t, err)
	assert.True(t, got.Approved)

	assert.True(t, apperrors.IsNotFound(repo.SetApproval(ctx, "ghost", true)))
}
