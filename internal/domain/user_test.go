package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		valid    bool
	}{
		{"letters and digits", "abcdef12", true},
		{"long mixed", "correcthorse99", true},
		{"too short", "ab1", false},
		{"seven chars", "abcdef1", false},
		{"digits only", "12345678", false},
		{"letters only", "abcdefgh", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.password)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSetPasswordStoresDigestNotPlaintext(t *testing.T) {
	var user User
	require.NoError(t, user.SetPassword("hunter2abc1", bcrypt.MinCost))

	assert.NotEmpty(t, user.PasswordHash())
	assert.NotEqual(t, "hunter2abc1", user.PasswordHash())
	assert.True(t, user.CheckPassword("hunter2abc1"))
	assert.False(t, user.CheckPassword("wrongpass1"))
}

func TestSetPasswordRejectionKeepsOldDigest(t *testing.T) {
	var user User
	require.NoError(t, user.SetPassword("original99", bcrypt.MinCost))
	before := user.PasswordHash()

	err := user.SetPassword("short", bcrypt.MinCost)
	require.Error(t, err)

	assert.Equal(t, before, user.PasswordHash())
	assert.True(t, user.CheckPassword("original99"))
}

func TestGetIDReturnsUniquifier(t *testing.T) {
	user := User{ID: "row-id", Uniquifier: "opaque-token"}
	assert.Equal(t, "opaque-token", user.GetID())
}

func TestFirstName(t *testing.T) {
	assert.Equal(t, "Ada", (&User{Name: "Ada Lovelace"}).FirstName())
	assert.Equal(t, "Ada", (&User{Name: "Ada"}).FirstName())
	assert.Equal(t, "", (&User{Name: "  "}).FirstName())
}

func TestUserRecordRoundTrip(t *testing.T) {
	now := time.Now()
	rec := UserRecord{
		ID:           "u1",
		Username:     "ada",
		Name:         "Ada Lovelace",
		Email:        "ada@example.com",
		PasswordHash: "$2a$10$digest",
		TempPassword: true,
		Active:       true,
		Uniquifier:   "uniq-1",
		LastSeen:     now,
	}

	user := UserFromRecord(rec)
	assert.Equal(t, "$2a$10$digest", user.PasswordHash())
	assert.True(t, user.IsTempPassword())

	back := user.Record()
	assert.Equal(t, rec.PasswordHash, back.PasswordHash)
	assert.Equal(t, rec.Username, back.Username)
	assert.Equal(t, rec.Uniquifier, back.Uniquifier)
}
