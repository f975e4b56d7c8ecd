package domain

import (
	"time"

	"github.com/atendo-hq/atendo/pkg/util"
)

// StateLocation is the root of the geographic lookup chain.
type StateLocation struct {
	ID        string
	State     string
	UF        string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// City belongs to a state.
type City struct {
	ID        string
	City      string
	UFID      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AddressType is a lookup for street/avenue/road kinds.
type AddressType struct {
	ID        string
	Type      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AddressPostcode stores a normalized 8-digit postal code. The raw code is
// unexported; SetCode is the only way in and it normalizes or rejects.
type AddressPostcode struct {
	ID        string
	code      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SetCode accepts "12345-678" or "12345678" and stores the 8 digits; any
// other shape is a validation error leaving the stored code unchanged.
func (p *AddressPostcode) SetCode(value string) error {
	if len(value) != 8 && len(value) != 9 {
		return util.NewValidationError("postcode must have 8 digits", map[string]any{"value": value})
	}
	digits := onlyNumbers(value)
	if len(digits) != 8 {
		return util.NewValidationError("postcode must have 8 digits", map[string]any{"value": value})
	}
	p.code = digits
	return nil
}

// Code returns the normalized stored code.
func (p *AddressPostcode) Code() string {
	return p.code
}

// PostcodeFromRecord rehydrates a stored row.
func PostcodeFromRecord(id, code string, createdAt, updatedAt time.Time) *AddressPostcode {
	return &AddressPostcode{ID: id, code: code, CreatedAt: createdAt, UpdatedAt: updatedAt}
}

// Address is the leaf of the lookup chain, referenced by costumers.
type Address struct {
	ID            string
	Name          string
	PostcodeID    string
	AddressTypeID string
	Number        int
	CityID        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HouseNumber returns nil when no number was recorded (stored as zero).
func (a *Address) HouseNumber() *int {
	if a.Number == 0 {
		return nil
	}
	n := a.Number
	return &n
}

func onlyNumbers(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
