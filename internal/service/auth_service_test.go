package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atendo-hq/atendo/internal/config"
	"github.com/atendo-hq/atendo/internal/domain"
	"github.com/atendo-hq/atendo/internal/events"
	"github.com/atendo-hq/atendo/pkg/util"
)

type authFixture struct {
	svc      *AuthService
	users    *fakeUserRepo
	sessions *fakeSessionRepo
	networks *fakeNetworkRepo
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 15,
		BcryptCost:            4,
	}}

	users := newFakeUserRepo()
	sessions := &fakeSessionRepo{}
	networks := newFakeNetworkRepo()
	roles := &fakeRoleRepo{roles: []domain.Role{
		{ID: "role-admin", Name: "admin", Level: domain.LevelAdmin},
		{ID: "role-support", Name: "support", Level: domain.LevelSupport},
	}}

	svc := NewAuthService(cfg, AuthDependencies{
		UserRepo:    users,
		RoleRepo:    roles,
		SessionRepo: sessions,
		NetworkRepo: networks,
		Dispatcher:  events.NewInMemoryDispatcher(),
	})
	return &authFixture{svc: svc, users: users, sessions: sessions, networks: networks}
}

func registerAda(t *testing.T, f *authFixture) *domain.User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), RegisterInput{
		Username: "ada",
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "analytical1",
	}, "network-reg")
	require.NoError(t, err)
	return user
}

func TestRegisterCreatesInactiveUser(t *testing.T) {
	f := newAuthFixture(t)
	user := registerAda(t, f)

	assert.False(t, user.Active)
	assert.NotEmpty(t, user.Uniquifier)
	assert.Equal(t, "network-reg", user.CreatedNetworkID)
	assert.True(t, user.CheckPassword("analytical1"))
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Username: "ada", Name: "Ada", Email: "ada@example.com", Password: "short",
	}, "network-reg")
	require.Error(t, err)
	assert.True(t, util.IsValidation(err))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	f := newAuthFixture(t)
	registerAda(t, f)

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Username: "ada", Name: "Other", Email: "other@example.com", Password: "password9",
	}, "network-reg")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", util.ToDomainError(err).Code)
}

func TestLoginFlow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := registerAda(t, f)

	_, _, _, err := f.svc.Login(ctx, "ada", "analytical1", "10.0.0.1", "")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", util.ToDomainError(err).Code, "inactive account cannot log in")

	_, err = f.svc.Confirm(ctx, user.ID, "network-confirm")
	require.NoError(t, err)

	loggedIn, token, exp, err := f.svc.Login(ctx, "ada", "analytical1", "10.0.0.1", "office")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.False(t, exp.IsZero())
	assert.Equal(t, 1, loggedIn.LoginCount)

	require.Len(t, f.sessions.sessions, 1)
	session := f.sessions.sessions[0]
	assert.Equal(t, user.ID, session.UserID)
	assert.Equal(t, "office", session.Location)
	require.NotNil(t, session.NetworkID)

	network, err := f.networks.GetByID(ctx, *session.NetworkID)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", network.IP)

	// Email works as the login handle too.
	again, _, _, err := f.svc.Login(ctx, "ada@example.com", "analytical1", "10.0.0.1", "")
	require.NoError(t, err)
	assert.Equal(t, 2, again.LoginCount)
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := registerAda(t, f)
	_, err := f.svc.Confirm(ctx, user.ID, "network-confirm")
	require.NoError(t, err)

	_, _, _, err = f.svc.Login(ctx, "ada", "wrongpass1", "10.0.0.1", "")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", util.ToDomainError(err).Code)

	_, _, _, err = f.svc.Login(ctx, "nobody", "analytical1", "10.0.0.1", "")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", util.ToDomainError(err).Code)
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := registerAda(t, f)

	err := f.svc.ChangePassword(ctx, user.ID, "wrongpass1", "newsecret2")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", util.ToDomainError(err).Code)

	err = f.svc.ChangePassword(ctx, user.ID, "analytical1", "weak")
	require.Error(t, err)
	assert.True(t, util.IsValidation(err))

	require.NoError(t, f.svc.ChangePassword(ctx, user.ID, "analytical1", "newsecret2"))
	updated, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, updated.CheckPassword("newsecret2"))
	assert.False(t, updated.CheckPassword("analytical1"))
	assert.False(t, updated.IsTempPassword())
}

func TestAssignRoleUnknownName(t *testing.T) {
	f := newAuthFixture(t)
	user := registerAda(t, f)

	err := f.svc.AssignRole(context.Background(), user.ID, "wizard")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", util.ToDomainError(err).Code)

	assert.NoError(t, f.svc.AssignRole(context.Background(), user.ID, "support"))
}

func TestListUsersCreatedBetween(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	registerAda(t, f)
	_, err := f.svc.Register(ctx, RegisterInput{
		Username: "grace",
		Name:     "Grace Hopper",
		Email:    "grace@example.com",
		Password: "compiler9",
	}, "network-reg")
	require.NoError(t, err)

	now := time.Now()

	users, err := f.svc.ListUsersCreatedBetween(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = f.svc.ListUsersCreatedBetween(ctx, now.Add(-2*time.Hour), now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = f.svc.ListUsersCreatedBetween(ctx, now, now.Add(-time.Hour))
	require.Error(t, err)
	assert.True(t, util.IsValidation(err))
}

func TestCurrentLoginIP(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := registerAda(t, f)

	ip, err := f.svc.CurrentLoginIP(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, ip, "never logged in")

	_, err = f.svc.Confirm(ctx, user.ID, "network-confirm")
	require.NoError(t, err)
	_, _, _, err = f.svc.Login(ctx, "ada", "analytical1", "192.168.0.7", "")
	require.NoError(t, err)

	ip, err = f.svc.CurrentLoginIP(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, ip)
	assert.Equal(t, "192.168.0.7", *ip)
}
