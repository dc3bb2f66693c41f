package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/festbite/go-auth"
)

func registerTestUser(t *testing.T, repo auth.RepositoryManager, email, password string) *auth.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	user, err := repo.Users().Register(context.Background(), &auth.User{
		FirstName:    "Pepe",
		LastName:     "Rone",
		Username:     "pepe",
		Email:        email,
		Role:         auth.RoleClient,
		PasswordHash: hash,
	})
	require.NoError(t, err)

	return user
}

func TestTrackAttemptedLoginTouchesOnlyCounters(t *testing.T) {
	db := setupTestDB(t)
	repo := auth.NewRepositoryManager(db)
	ctx := context.Background()

	user := registerTestUser(t, repo, "pepe.rone@example.com", "password123")

	require.NoError(t, repo.Users().TrackAttemptedLogin(ctx, user))

	stored, err := repo.Users().GetByIdentifier(ctx, "pepe.rone@example.com")
	require.NoError(t, err)

	// the failed attempt increments the counters and nothing else
	assert.Equal(t, 1, stored.LoginAttempts)
	require.NotNil(t, stored.LoginAttemptAt)
	assert.Equal(t, user.Email, stored.Email)
	assert.Equal(t, user.Username, stored.Username)
	assert.Equal(t, user.PasswordHash, stored.PasswordHash)
	assert.Equal(t, auth.RoleClient, stored.Role)
	assert.True(t, stored.Active)
}

func TestVerifyIdentityAfterFailedAttempt(t *testing.T) {
	db := setupTestDB(t)
	repo := auth.NewRepositoryManager(db)
	ctx := context.Background()

	registerTestUser(t, repo, "pepe.rone@example.com", "password123")

	provider := auth.NewUserProvider(auth.NewUserTrackerAdapter(repo.Users()))

	_, err := provider.VerifyIdentity(ctx, "pepe.rone@example.com", "wrong-password")
	require.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)

	// a later attempt with the right password still succeeds
	identity, err := provider.VerifyIdentity(ctx, "pepe.rone@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "pepe.rone@example.com", identity.Email())

	// and the successful login reset the attempt counter
	stored, err := repo.Users().GetByIdentifier(ctx, "pepe.rone@example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.LoginAttempts)
	assert.Nil(t, stored.LoginAttemptAt)
}

func TestVerifyIdentityUnknownUserAgainstStore(t *testing.T) {
	db := setupTestDB(t)
	repo := auth.NewRepositoryManager(db)

	provider := auth.NewUserProvider(auth.NewUserTrackerAdapter(repo.Users()))

	// the repository's not found error must collapse into the credential
	// error, not an internal failure
	_, err := provider.VerifyIdentity(context.Background(), "nobody@example.com", "password123")
	require.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
}
