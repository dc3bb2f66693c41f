package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Sessions is the bun backed session registry. It also exposes the plain
// repository surface for hosts that need to list or inspect sessions.
type Sessions interface {
	repository.Repository[*SessionRecord]
	SessionStore
}

type sessions struct {
	repository.Repository[*SessionRecord]
	db *bun.DB
}

var (
	_ Sessions     = (*sessions)(nil)
	_ SessionStore = (*sessions)(nil)
)

func NewSessionsRepository(db *bun.DB) Sessions {
	repo := repository.NewRepository[*SessionRecord](db, repository.ModelHandlers[*SessionRecord]{
		NewRecord: func() *SessionRecord { return &SessionRecord{} },
		GetID: func(s *SessionRecord) uuid.UUID {
			if s == nil {
				return uuid.Nil
			}
			return s.UserID
		},
		SetID: func(s *SessionRecord, id uuid.UUID) {
			if s != nil {
				s.UserID = id
			}
		},
		GetIdentifier: func() string {
			return "token"
		},
	})

	return &sessions{
		Repository: repo,
		db:         db,
	}
}

// RecordLogin stores the token binding. Multiple concurrent sessions per
// user are allowed; each login writes an independent row.
func (s *sessions) RecordLogin(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	record := &SessionRecord{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}

	_, err := s.db.NewInsert().Model(record).Exec(ctx)
	return err
}

// Revoke deletes the binding. Revoking an absent token is not an error.
func (s *sessions) Revoke(ctx context.Context, token string) error {
	_, err := s.db.NewDelete().
		Model((*SessionRecord)(nil)).
		Where("token = ?", token).
		Exec(ctx)

	return err
}

// IsActive reports whether a live, unexpired session record exists for the
// token. Expired rows count as absent even before PurgeExpired removes them.
func (s *sessions) IsActive(ctx context.Context, token string) (bool, error) {
	count, err := s.db.NewSelect().
		Model((*SessionRecord)(nil)).
		Where("token = ?", token).
		Where("expires_at > ?", time.Now()).
		Count(ctx)

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// PurgeExpired sweeps rows past their expiry and returns how many were
// removed. Expiry is otherwise lazy; nothing depends on this running.
func (s *sessions) PurgeExpired(ctx context.Context) (int, error) {
	res, err := s.db.NewDelete().
		Model((*SessionRecord)(nil)).
		Where("expires_at <= ?", time.Now()).
		Exec(ctx)

	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(affected), nil
}
