package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostcodeSetCode(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
		valid bool
	}{
		{"plain digits", "12345678", "12345678", true},
		{"hyphenated", "12345-678", "12345678", true},
		{"too short", "1234567", "", false},
		{"too long", "1234567890", "", false},
		{"nine digits", "123456789", "", false},
		{"letters", "abcde-fgh", "", false},
		{"empty", "", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var p AddressPostcode
			err := p.SetCode(tc.input)
			if tc.valid {
				require.NoError(t, err)
				assert.Equal(t, tc.want, p.Code())
			} else {
				assert.Error(t, err)
				assert.Empty(t, p.Code())
			}
		})
	}
}

func TestPostcodeRejectionKeepsStoredCode(t *testing.T) {
	var p AddressPostcode
	require.NoError(t, p.SetCode("12345-678"))
	require.Error(t, p.SetCode("nonsense!"))
	assert.Equal(t, "12345678", p.Code())
}

func TestAddressHouseNumber(t *testing.T) {
	withNumber := Address{Number: 42}
	require.NotNil(t, withNumber.HouseNumber())
	assert.Equal(t, 42, *withNumber.HouseNumber())

	var withoutNumber Address
	assert.Nil(t, withoutNumber.HouseNumber())
}
