package dto

import (
	"time"

	"github.com/atendo-hq/atendo/internal/domain"
)

// UserRegisterRequest payload for new accounts.
type UserRegisterRequest struct {
	Username     string `json:"username"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	AboutMe      string `json:"about_me"`
	Location     string `json:"location"`
	TempPassword bool   `json:"temp_password"`
}

// UserLoginRequest payload for login. Login accepts username or email.
type UserLoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Location string `json:"location"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	Current string `json:"current_password"`
	Next    string `json:"new_password"`
}

// RoleChangeRequest payload for role assignment endpoints.
type RoleChangeRequest struct {
	Role string `json:"role"`
}

// UserResponse is the public account shape. The password digest never
// appears here.
type UserResponse struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Name         string     `json:"name"`
	FirstName    string     `json:"first_name"`
	Email        string     `json:"email"`
	AboutMe      string     `json:"about_me,omitempty"`
	Location     string     `json:"location,omitempty"`
	Active       bool       `json:"active"`
	TempPassword bool       `json:"temp_password"`
	LastSeen     string     `json:"last_seen"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
	LoginCount   int        `json:"login_count"`
	Roles        []string   `json:"roles"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	roles := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, role.Name)
	}
	return UserResponse{
		ID:           user.ID,
		Username:     user.Username,
		Name:         user.Name,
		FirstName:    user.FirstName(),
		Email:        user.Email,
		AboutMe:      user.AboutMe,
		Location:     user.Location,
		Active:       user.Active,
		TempPassword: user.IsTempPassword(),
		LastSeen:     user.LastSeenElapsed(time.Now()),
		ConfirmedAt:  user.ConfirmedAt,
		LoginCount:   user.LoginCount,
		Roles:        roles,
		CreatedAt:    user.CreatedAt,
	}
}

// NewUserResponses maps a slice of users.
func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

// LoginSessionResponse is one entry of a user's login history.
type LoginSessionResponse struct {
	ID        string    `json:"id"`
	NetworkID *string   `json:"network_id,omitempty"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewLoginSessionResponses maps session history.
func NewLoginSessionResponses(sessions []domain.LoginSession) []LoginSessionResponse {
	out := make([]LoginSessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, LoginSessionResponse{
			ID:        s.ID,
			NetworkID: s.NetworkID,
			Location:  s.Location,
			CreatedAt: s.CreatedAt,
		})
	}
	return out
}
