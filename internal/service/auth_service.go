package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/atendo-hq/atendo/internal/auth"
	"github.com/atendo-hq/atendo/internal/config"
	"github.com/atendo-hq/atendo/internal/domain"
	"github.com/atendo-hq/atendo/internal/events"
	"github.com/atendo-hq/atendo/internal/persistence"
	"github.com/atendo-hq/atendo/internal/repository"
	"github.com/atendo-hq/atendo/pkg/util"
)

// AuthService coordinates registration, login and role assignment.
type AuthService struct {
	users      repository.UserRepository
	roles      repository.RoleRepository
	sessions   repository.LoginSessionRepository
	networks   repository.NetworkRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	db         persistence.Querier
	bcryptCost int
}

// AuthDependencies bundles repositories for the auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	RoleRepo    repository.RoleRepository
	SessionRepo repository.LoginSessionRepository
	NetworkRepo repository.NetworkRepository
	Dispatcher  events.Dispatcher
	DB          persistence.Querier
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		roles:      deps.RoleRepo,
		sessions:   deps.SessionRepo,
		networks:   deps.NetworkRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		dispatcher: deps.Dispatcher,
		db:         deps.DB,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// RegisterInput describes account creation.
type RegisterInput struct {
	Username     string
	Name         string
	Email        string
	Password     string
	AboutMe      string
	Location     string
	TempPassword bool
}

// Register creates a new account. The creating network is recorded and the
// account stays inactive until confirmed.
func (s *AuthService) Register(ctx context.Context, input RegisterInput, networkID string) (*domain.User, error) {
	if input.Username == "" || input.Name == "" || input.Email == "" {
		return nil, util.NewValidationError("username, name and email required", nil)
	}
	if _, err := s.users.GetByUsername(ctx, input.Username); err == nil {
		return nil, util.NewConflict("username already taken", nil)
	} else if !repository.IsNoRows(err) {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, util.NewConflict("email already registered", nil)
	} else if !repository.IsNoRows(err) {
		return nil, err
	}

	user := &domain.User{
		Username:         input.Username,
		Name:             input.Name,
		Email:            input.Email,
		TempPassword:     input.TempPassword,
		AboutMe:          input.AboutMe,
		Location:         input.Location,
		LastSeen:         time.Now(),
		Active:           false,
		CreatedNetworkID: networkID,
		Uniquifier:       uuid.NewString(),
	}
	if err := user.SetPassword(input.Password, s.bcryptCost); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Confirm activates an account, recording the confirming network.
func (s *AuthService) Confirm(ctx context.Context, userID, networkID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, util.NewNotFound("user", nil)
		}
		return nil, err
	}
	if user.Active {
		return user, nil
	}
	now := time.Now()
	user.Active = true
	user.ConfirmedAt = &now
	user.ConfirmedNetworkID = &networkID
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Deactivate disables an account. Deactivated users fail authentication
// until confirmed again.
func (s *AuthService) Deactivate(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, util.NewNotFound("user", nil)
		}
		return nil, err
	}
	if !user.Active {
		return user, nil
	}
	user.Active = false
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates by username or email, appends a login session and
// issues a session token keyed on the user's opaque identifier.
func (s *AuthService) Login(ctx context.Context, login, password, ip, location string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByUsername(ctx, login)
	if repository.IsNoRows(err) {
		user, err = s.users.GetByEmail(ctx, login)
	}
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, "", time.Time{}, util.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if !user.CheckPassword(password) {
		return nil, "", time.Time{}, util.NewUnauthorized("invalid credentials")
	}
	if !user.Active {
		return nil, "", time.Time{}, util.NewForbidden("account inactive")
	}

	network, err := s.networks.LookupOrCreate(ctx, ip)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	err = persistence.WithTx(ctx, s.db, func(ctx context.Context) error {
		user.LoginCount++
		user.LastSeen = time.Now()
		if err := s.users.Update(ctx, user); err != nil {
			return err
		}
		session := &domain.LoginSession{
			UserID:    user.ID,
			NetworkID: &network.ID,
			Location:  location,
		}
		return s.sessions.Create(ctx, session)
	})
	if err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.Uniquifier, user.Username)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventUserLoggedIn,
		ActorID: user.ID,
		Payload: events.UserLoggedInPayload{
			UserID:     user.ID,
			NetworkID:  network.ID,
			LoginCount: user.LoginCount,
		},
	})
	return user, token, exp, nil
}

// GetByUniquifier resolves the stable opaque identifier used by the
// external session machinery back to a user.
func (s *AuthService) GetByUniquifier(ctx context.Context, uniquifier string) (*domain.User, error) {
	user, err := s.users.GetByUniquifier(ctx, uniquifier)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, util.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current credential then replaces it. A new
// password failing strength validation leaves the stored hash untouched.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if repository.IsNoRows(err) {
			return util.NewNotFound("user", nil)
		}
		return err
	}
	if !user.CheckPassword(current) {
		return util.NewUnauthorized("invalid credentials")
	}
	if err := user.SetPassword(next, s.bcryptCost); err != nil {
		return err
	}
	user.TempPassword = false
	return s.users.Update(ctx, user)
}

// AssignRole grants the named role to a user.
func (s *AuthService) AssignRole(ctx context.Context, userID, roleName string) error {
	role, err := s.roles.GetByName(ctx, roleName)
	if err != nil {
		if repository.IsNoRows(err) {
			return util.NewNotFound("role", map[string]any{"name": roleName})
		}
		return err
	}
	return s.users.AssignRole(ctx, userID, role.ID)
}

// RevokeRole removes the named role from a user.
func (s *AuthService) RevokeRole(ctx context.Context, userID, roleName string) error {
	role, err := s.roles.GetByName(ctx, roleName)
	if err != nil {
		if repository.IsNoRows(err) {
			return util.NewNotFound("role", map[string]any{"name": roleName})
		}
		return err
	}
	return s.users.RevokeRole(ctx, userID, role.ID)
}

// ListUsersCreatedBetween returns accounts registered inside the window,
// oldest first. The window must be well formed.
func (s *AuthService) ListUsersCreatedBetween(ctx context.Context, from, to time.Time) ([]domain.User, error) {
	if to.Before(from) {
		return nil, util.NewValidationError("window end precedes its start", nil)
	}
	return s.users.ListCreatedBetween(ctx, from, to)
}

// Sessions returns the user's login audit trail, newest first.
func (s *AuthService) Sessions(ctx context.Context, userID string, limit int) ([]domain.LoginSession, error) {
	return s.sessions.ListByUser(ctx, userID, limit)
}

// CurrentLoginIP derives the user's latest login address from the newest
// session, nil when the user never logged in.
func (s *AuthService) CurrentLoginIP(ctx context.Context, userID string) (*string, error) {
	session, err := s.sessions.LatestByUser(ctx, userID)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	if session.NetworkID == nil {
		return nil, nil
	}
	network, err := s.networks.GetByID(ctx, *session.NetworkID)
	if err != nil {
		return nil, err
	}
	return &network.IP, nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
