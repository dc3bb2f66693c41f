package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/festbite/go-auth"
)

func TestBuildResetLink(t *testing.T) {
	link := auth.BuildResetLink(
		"https://app.example.com",
		"pepe+test@example.com",
		"s3cr3t/with+chars",
	)

	assert.Equal(t,
		"https://app.example.com/password-reset?email=pepe%2Btest%40example.com&code=s3cr3t%2Fwith%2Bchars",
		link,
	)
}

func TestNotifierFunc(t *testing.T) {
	var got auth.ResetNotification

	fn := auth.NotifierFunc(func(_ context.Context, n auth.ResetNotification) error {
		got = n
		return nil
	})

	want := auth.ResetNotification{
		Email:     "pepe@example.com",
		Secret:    "the-secret",
		ResetLink: "https://app.example.com/password-reset",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	require.NoError(t, fn.SendPasswordReset(context.Background(), want))
	assert.Equal(t, want, got)
}
