package domain

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/atendo-hq/atendo/pkg/util"
)

// User is an account record. The credential is write-only: SetPassword
// validates strength then stores a bcrypt digest; the plaintext never
// persists anywhere on the entity.
type User struct {
	ID                 string
	Username           string
	Name               string
	Email              string
	passwordHash       string
	TempPassword       bool
	AboutMe            string
	LastSeen           time.Time
	Location           string
	Active             bool
	CreatedNetworkID   string
	ConfirmedNetworkID *string
	ConfirmedAt        *time.Time
	LoginCount         int
	Uniquifier         string
	Roles              []Role
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

const minPasswordLength = 8

// ValidatePassword applies the strength rules: at least eight characters
// with at least one letter and one digit.
func ValidatePassword(plain string) error {
	if len(plain) < minPasswordLength {
		return util.NewValidationError("password too short", map[string]any{"min_length": minPasswordLength})
	}
	var hasLetter, hasDigit bool
	for _, r := range plain {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return util.NewValidationError("password must contain letters and digits", nil)
	}
	return nil
}

// SetPassword validates the plaintext and replaces the stored digest.
// A rejected password leaves the previous digest untouched.
func (u *User) SetPassword(plain string, cost int) error {
	if err := ValidatePassword(plain); err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return util.NewInternalError(err)
	}
	u.passwordHash = string(hashed)
	return nil
}

// PasswordHash exposes the digest for persistence. There is no way to read
// the plaintext back.
func (u *User) PasswordHash() string {
	return u.passwordHash
}

// CheckPassword verifies a plaintext candidate against the stored digest.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(plain)) == nil
}

// GetID returns the stable opaque identifier used by the external
// session/cookie mechanism.
func (u *User) GetID() string {
	return u.Uniquifier
}

// FirstName returns the leading word of the display name.
func (u *User) FirstName() string {
	fields := strings.Fields(u.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// LastSeenElapsed renders how long ago the user was seen.
func (u *User) LastSeenElapsed(now time.Time) string {
	return FormatElapsed(u.LastSeen, now) + " ago"
}

// HasCapability ORs the capability across every assigned role.
func (u *User) HasCapability(c Capability) bool {
	for _, role := range u.Roles {
		if role.Has(c) {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool       { return u.HasCapability(CapAdmin) }
func (u *User) IsManagerUser() bool { return u.HasCapability(CapManagerUser) }
func (u *User) IsEditor() bool      { return u.HasCapability(CapEditor) }
func (u *User) IsAuxEditor() bool   { return u.HasCapability(CapAuxEditor) }
func (u *User) IsSupport() bool     { return u.HasCapability(CapSupport) }
func (u *User) HasSupport() bool    { return u.HasCapability(CapHasSupport) }
func (u *User) IsViewer() bool      { return u.HasCapability(CapViewer) }
func (u *User) CanEdit() bool       { return u.HasCapability(CapEdit) }

// IsTempPassword reports whether the user still carries a provisional
// credential that must be changed at next login.
func (u *User) IsTempPassword() bool {
	return u.TempPassword
}

// UserRecord is the persisted shape of a User row, used by repositories to
// rehydrate entities without exposing a public credential field.
type UserRecord struct {
	ID                 string
	Username           string
	Name               string
	Email              string
	PasswordHash       string
	TempPassword       bool
	AboutMe            string
	LastSeen           time.Time
	Location           string
	Active             bool
	CreatedNetworkID   string
	ConfirmedNetworkID *string
	ConfirmedAt        *time.Time
	LoginCount         int
	Uniquifier         string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// UserFromRecord rehydrates a stored row into a User.
func UserFromRecord(rec UserRecord) *User {
	return &User{
		ID:                 rec.ID,
		Username:           rec.Username,
		Name:               rec.Name,
		Email:              rec.Email,
		passwordHash:       rec.PasswordHash,
		TempPassword:       rec.TempPassword,
		AboutMe:            rec.AboutMe,
		LastSeen:           rec.LastSeen,
		Location:           rec.Location,
		Active:             rec.Active,
		CreatedNetworkID:   rec.CreatedNetworkID,
		ConfirmedNetworkID: rec.ConfirmedNetworkID,
		ConfirmedAt:        rec.ConfirmedAt,
		LoginCount:         rec.LoginCount,
		Uniquifier:         rec.Uniquifier,
		CreatedAt:          rec.CreatedAt,
		UpdatedAt:          rec.UpdatedAt,
	}
}

// Record returns the persisted shape of the user.
func (u *User) Record() UserRecord {
	return UserRecord{
		ID:                 u.ID,
		Username:           u.Username,
		Name:               u.Name,
		Email:              u.Email,
		PasswordHash:       u.passwordHash,
		TempPassword:       u.TempPassword,
		AboutMe:            u.AboutMe,
		LastSeen:           u.LastSeen,
		Location:           u.Location,
		Active:             u.Active,
		CreatedNetworkID:   u.CreatedNetworkID,
		ConfirmedNetworkID: u.ConfirmedNetworkID,
		ConfirmedAt:        u.ConfirmedAt,
		LoginCount:         u.LoginCount,
		Uniquifier:         u.Uniquifier,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}
