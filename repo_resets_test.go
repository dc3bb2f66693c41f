package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	auth "github.com/festbite/go-auth"
)

func insertReset(t *testing.T, db *bun.DB, email, secretHash string, createdAt time.Time, expiresAt time.Time) *auth.PasswordReset {
	t.Helper()

	userID := uuid.New()
	record := &auth.PasswordReset{
		ID:         uuid.New(),
		UserID:     &userID,
		Email:      email,
		SecretHash: secretHash,
		ExpiresAt:  expiresAt,
		CreatedAt:  &createdAt,
	}

	_, err := db.NewInsert().Model(record).Exec(context.Background())
	require.NoError(t, err)

	return record
}

func TestLatestActiveByEmailPicksNewest(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	resets := auth.NewPasswordResetsRepository(db)

	now := time.Now()

	older := insertReset(t, db, "pepe.rone@example.com", "hash-old", now.Add(-time.Hour), now.Add(time.Hour))
	newest := insertReset(t, db, "pepe.rone@example.com", "hash-new", now.Add(-time.Minute), now.Add(time.Hour))
	insertReset(t, db, "someone.else@example.com", "hash-other", now, now.Add(time.Hour))

	got, err := resets.LatestActiveByEmail(ctx, "pepe.rone@example.com")
	require.NoError(t, err)

	// the newest record supersedes older ones; an older still-valid secret
	// no longer verifies
	assert.Equal(t, newest.ID, got.ID)
	assert.NotEqual(t, older.ID, got.ID)
}

func TestLatestActiveByEmailSkipsExpired(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	resets := auth.NewPasswordResetsRepository(db)

	now := time.Now()

	// newest record is expired, older one is still live
	live := insertReset(t, db, "pepe.rone@example.com", "hash-live", now.Add(-time.Hour), now.Add(time.Hour))
	insertReset(t, db, "pepe.rone@example.com", "hash-expired", now.Add(-time.Minute), now.Add(-time.Second))

	got, err := resets.LatestActiveByEmail(ctx, "pepe.rone@example.com")
	require.NoError(t, err)
	assert.Equal(t, live.ID, got.ID)
}

func TestLatestActiveByEmailNotFound(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	resets := auth.NewPasswordResetsRepository(db)

	now := time.Now()
	insertReset(t, db, "pepe.rone@example.com", "hash", now.Add(-time.Hour), now.Add(-time.Minute))

	_, err := resets.LatestActiveByEmail(ctx, "pepe.rone@example.com")
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))

	_, err = resets.LatestActiveByEmail(ctx, "nobody@example.com")
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestConsumeDeletesRecord(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	resets := auth.NewPasswordResetsRepository(db)

	now := time.Now()
	record := insertReset(t, db, "pepe.rone@example.com", "hash", now, now.Add(time.Hour))

	require.NoError(t, resets.Consume(ctx, record.ID))

	_, err := resets.LatestActiveByEmail(ctx, "pepe.rone@example.com")
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))

	// consuming an absent record is not an error
	require.NoError(t, resets.Consume(ctx, record.ID))
	require.NoError(t, resets.Consume(ctx, uuid.New()))
}

func TestPasswordResetExpiredHelper(t *testing.T) {
	now := time.Now()
	record := &auth.PasswordReset{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, record.Expired(now))
	assert.True(t, record.Expired(now.Add(2*time.Minute)))
}
