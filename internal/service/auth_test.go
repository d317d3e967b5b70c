package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"conclusio/internal/model"
	repoMocks "conclusio/internal/repository/mocks"
	"conclusio/internal/session"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeRevoker struct {
	revoked map[string]time.Duration
	err     error
}

func (f *fakeRevoker) Revoke(_ context.Context, id string, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.revoked[id] = ttl
	return nil
}

func (f *fakeRevoker) IsRevoked(_ context.Context, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.revoked[id]
	return ok, nil
}

func newAuthFixture(t *testing.T, ttl time.Duration) (*repoMocks.MockUserRepository, *session.Manager, *fakeRevoker, AuthService) {
	t.Helper()
	tokens, err := session.NewManager(testSecret, ttl)
	require.NoError(t, err)
	users := new(repoMocks.MockUserRepository)
	rev := &fakeRevoker{revoked: map[string]time.Duration{}}
	return users, tokens, rev, NewAuthService(users, tokens, rev, zap.NewNop())
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid session", func(t *testing.T) {
		users, tokens, _, svc := newAuthFixture(t, time.Hour)
		token, _, err := tokens.Issue("u1")
		require.NoError(t, err)
		users.On("FindByID", ctx, "u1").Return(&model.User{ID: "u1"}, nil)

		u, claims, err := svc.Authenticate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)
		assert.Equal(t, "u1", claims.UserID())
	})

	t.Run("missing or garbage token", func(t *testing.T) {
		_, _, _, svc := newAuthFixture(t, time.Hour)

		_, _, err := svc.Authenticate(ctx, "")
		assert.ErrorIs(t, err, ErrUnauthenticated)
		_, _, err = svc.Authenticate(ctx, "abc.def.ghi")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("expired", func(t *testing.T) {
		_, _, _, svc := newAuthFixture(t, time.Hour)
		// Expiry is kept at second precision, so a 1ns lifetime is already over.
		expired, err := session.NewManager(testSecret, time.Nanosecond)
		require.NoError(t, err)
		token, _, err := expired.Issue("u1")
		require.NoError(t, err)

		_, _, err = svc.Authenticate(ctx, token)
		assert.ErrorIs(t, err, ErrSessionExpired)
	})

	t.Run("revoked", func(t *testing.T) {
		_, tokens, rev, svc := newAuthFixture(t, time.Hour)
		token, claims, err := tokens.Issue("u1")
		require.NoError(t, err)
		require.NoError(t, svc.Logout(ctx, claims))
		assert.InDelta(t, time.Hour.Seconds(), rev.revoked[claims.ID].Seconds(), 5)

		_, _, err = svc.Authenticate(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("revocation list unavailable", func(t *testing.T) {
		users, tokens, rev, svc := newAuthFixture(t, time.Hour)
		rev.err = errors.New("redis down")
		token, _, err := tokens.Issue("u1")
		require.NoError(t, err)
		users.On("FindByID", ctx, "u1").Return(&model.User{ID: "u1"}, nil)

		_, _, err = svc.Authenticate(ctx, token)
		assert.NoError(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		users, tokens, _, svc := newAuthFixture(t, time.Hour)
		token, _, err := tokens.Issue("ghost")
		require.NoError(t, err)
		users.On("FindByID", ctx, "ghost").Return(nil, sql.ErrNoRows)

		_, _, err = svc.Authenticate(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestAuthService_Logout(t *testing.T) {
	_, _, rev, svc := newAuthFixture(t, time.Hour)

	assert.ErrorIs(t, svc.Logout(context.Background(), nil), ErrUnauthenticated)

	rev.err = errors.New("redis down")
	claims := &session.Claims{}
	claims.ID = "sid"
	assert.ErrorContains(t, svc.Logout(context.Background(), claims), "revoke session")
}

func TestAuthService_Issue(t *testing.T) {
	ctx := context.Background()
	users, tokens, _, svc := newAuthFixture(t, time.Hour)

	_, _, err := svc.Issue(ctx, "not-an-email", "X")
	assert.ErrorIs(t, err, ErrValidation)

	users.On("UpsertByEmail", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "avocat@example.fr" && u.Name == "Me Martin" && u.ID != ""
	})).Return(&model.User{ID: "u1", Email: "avocat@example.fr"}, nil)

	token, u, err := svc.Issue(ctx, " Avocat@Example.fr ", "Me Martin")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID())
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()
	users, _, _, svc := newAuthFixture(t, time.Hour)
	users.On("FindByID", ctx, "gone").Return(nil, sql.ErrNoRows)

	_, err := svc.Me(ctx, "gone")
	assert.ErrorIs(t, err, ErrNotFound)
}
