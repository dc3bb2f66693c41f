package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PasswordResets manages reset request records. Lookups are always scoped
// by email: at most one record per email, the newest unexpired one, is
// reachable for verification. Older records become unreachable but are not
// proactively deleted.
type PasswordResets interface {
	repository.Repository[*PasswordReset]

	LatestActiveByEmail(ctx context.Context, email string) (*PasswordReset, error)
	LatestActiveByEmailTx(ctx context.Context, tx bun.IDB, email string) (*PasswordReset, error)

	Consume(ctx context.Context, id uuid.UUID) error
	ConsumeTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
}

type passwordResets struct {
	repository.Repository[*PasswordReset]
	db *bun.DB
}

var _ PasswordResets = (*passwordResets)(nil)

func NewPasswordResetsRepository(db *bun.DB) PasswordResets {
	handlers := repository.ModelHandlers[*PasswordReset]{
		NewRecord: func() *PasswordReset {
			return &PasswordReset{}
		},
		GetID: func(record *PasswordReset) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *PasswordReset, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "email"
		},
	}

	return &passwordResets{
		Repository: repository.NewRepository(db, handlers),
		db:         db,
	}
}

func (r *passwordResets) LatestActiveByEmail(ctx context.Context, email string) (*PasswordReset, error) {
	return r.LatestActiveByEmailTx(ctx, r.db, email)
}

// LatestActiveByEmailTx returns the newest unexpired reset record for the
// email. Recency is decided by created_at, not by which secret the caller
// happens to hold.
func (r *passwordResets) LatestActiveByEmailTx(ctx context.Context, tx bun.IDB, email string) (*PasswordReset, error) {
	record := &PasswordReset{}

	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Where("?TableAlias.expires_at > ?", time.Now()).
		OrderExpr("?TableAlias.created_at DESC").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

func (r *passwordResets) Consume(ctx context.Context, id uuid.UUID) error {
	return r.ConsumeTx(ctx, r.db, id)
}

// ConsumeTx deletes the record so the secret can never verify again.
// Deleting an already-absent record is not an error.
func (r *passwordResets) ConsumeTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*PasswordReset)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	return err
}
