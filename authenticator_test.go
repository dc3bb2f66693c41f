package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auth "github.com/festbite/go-auth"
)

func TestAutherLogin(t *testing.T) {
	provider := new(MockIdentityProvider)
	sessions := new(MockSessionStore)
	sink := &recordingSink{}

	identity := newTestIdentity(auth.RoleClient)
	provider.On("VerifyIdentity", mock.Anything, "pepe.rone@example.com", "password123").
		Return(identity, nil)
	sessions.On("RecordLogin", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil)

	auther := auth.NewAuthenticator(provider, sessions, testConfig()).
		WithActivitySink(sink)

	token, err := auther.Login(context.Background(), "pepe.rone@example.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auther.TokenService().Validate(token)
	require.NoError(t, err)
	assert.Equal(t, identity.ID(), claims.UserID())

	provider.AssertExpectations(t)
	sessions.AssertExpectations(t)
	assert.True(t, sink.has(auth.ActivityEventLoginSuccess))
}

func TestAutherLoginBadCredentials(t *testing.T) {
	provider := new(MockIdentityProvider)
	sessions := new(MockSessionStore)
	sink := &recordingSink{}

	provider.On("VerifyIdentity", mock.Anything, "pepe.rone@example.com", "wrong").
		Return(nil, auth.ErrMismatchedHashAndPassword)

	auther := auth.NewAuthenticator(provider, sessions, testConfig()).
		WithActivitySink(sink)

	_, err := auther.Login(context.Background(), "pepe.rone@example.com", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)

	sessions.AssertNotCalled(t, "RecordLogin", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.True(t, sink.has(auth.ActivityEventLoginFailure))
}

func TestAutherLogout(t *testing.T) {
	provider := new(MockIdentityProvider)
	sessions := new(MockSessionStore)
	sink := &recordingSink{}

	sessions.On("Revoke", mock.Anything, "some-token").Return(nil)

	auther := auth.NewAuthenticator(provider, sessions, testConfig()).
		WithActivitySink(sink)

	require.NoError(t, auther.Logout(context.Background(), "some-token"))
	// repeated logout is fine
	require.NoError(t, auther.Logout(context.Background(), "some-token"))
	// empty token short-circuits
	require.NoError(t, auther.Logout(context.Background(), ""))

	sessions.AssertNumberOfCalls(t, "Revoke", 2)
	assert.True(t, sink.has(auth.ActivityEventLogout))
}

func TestAutherSessionFromToken(t *testing.T) {
	provider := new(MockIdentityProvider)
	sessions := new(MockSessionStore)

	identity := newTestIdentity(auth.RoleLeader)
	provider.On("VerifyIdentity", mock.Anything, identity.Email(), "password123").
		Return(identity, nil)
	sessions.On("RecordLogin", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil)

	auther := auth.NewAuthenticator(provider, sessions, testConfig())

	token, err := auther.Login(context.Background(), identity.Email(), "password123")
	require.NoError(t, err)

	sessions.On("IsActive", mock.Anything, token).Return(true, nil).Once()

	session, err := auther.SessionFromToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, identity.ID(), session.GetUserID())
	assert.Equal(t, auth.RoleLeader, session.GetRole())
	assert.Equal(t, token, session.GetToken())
	assert.Equal(t, "festbite", session.GetIssuer())
}

func TestAutherSessionFromTokenRevoked(t *testing.T) {
	provider := new(MockIdentityProvider)
	sessions := new(MockSessionStore)

	identity := newTestIdentity(auth.RoleClient)
	provider.On("VerifyIdentity", mock.Anything, identity.Email(), "password123").
		Return(identity, nil)
	sessions.On("RecordLogin", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil)

	auther := auth.NewAuthenticator(provider, sessions, testConfig())

	token, err := auther.Login(context.Background(), identity.Email(), "password123")
	require.NoError(t, err)

	// token is cryptographically valid but no longer registered
	sessions.On("IsActive", mock.Anything, token).Return(false, nil).Once()

	_, err = auther.SessionFromToken(context.Background(), token)
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrSessionRevoked)
}

func TestAutherSessionFromTokenGarbage(t *testing.T) {
	auther := auth.NewAuthenticator(new(MockIdentityProvider), new(MockSessionStore), testConfig())

	_, err := auther.SessionFromToken(context.Background(), "garbage")
	require.Error(t, err)
	assert.True(t, auth.IsMalformedError(err))
}

func TestAutherImpersonate(t *testing.T) {
	provider := new(MockIdentityProvider)
	sessions := new(MockSessionStore)
	sink := &recordingSink{}

	identity := newTestIdentity(auth.RoleAdmin)
	provider.On("FindIdentityByIdentifier", mock.Anything, identity.Email()).
		Return(identity, nil)
	sessions.On("RecordLogin", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil)

	auther := auth.NewAuthenticator(provider, sessions, testConfig()).
		WithActivitySink(sink)

	token, err := auther.Impersonate(context.Background(), identity.Email())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auther.TokenService().Validate(token)
	require.NoError(t, err)
	assert.Equal(t, identity.ID(), claims.UserID())
	assert.True(t, sink.has(auth.ActivityEventImpersonationSuccess))
}

func TestAutherIdentityFromSession(t *testing.T) {
	provider := new(MockIdentityProvider)
	sessions := new(MockSessionStore)

	identity := newTestIdentity(auth.RoleClient)
	provider.On("FindIdentityByIdentifier", mock.Anything, identity.ID()).
		Return(identity, nil)

	auther := auth.NewAuthenticator(provider, sessions, testConfig())

	got, err := auther.IdentityFromSession(context.Background(), &auth.SessionObject{
		UserID: identity.ID(),
	})
	require.NoError(t, err)
	assert.Equal(t, identity.ID(), got.ID())
}
