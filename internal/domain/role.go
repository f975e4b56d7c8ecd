package domain

import "time"

// Role levels form a closed enumeration. The level is the single source of
// truth for permissions: every capability is recomputed from it on access,
// never stored as an independent flag.
const (
	LevelAdmin       = 0
	LevelManagerUser = 1
	LevelEditor      = 2
	LevelAuxEditor   = 3
	LevelSupport     = 4
	LevelViewer      = 5
)

// Capability enumerates the permission predicates derived from a role level.
type Capability uint8

const (
	CapAdmin Capability = iota
	CapManagerUser
	CapEditor
	CapAuxEditor
	CapSupport
	CapHasSupport
	CapViewer
	CapEdit
)

// levelCapabilities is the canonical level-to-capability table.
var levelCapabilities = map[int][]Capability{
	LevelAdmin:       {CapAdmin, CapHasSupport, CapEdit},
	LevelManagerUser: {CapManagerUser, CapSupport, CapHasSupport},
	LevelEditor:      {CapEditor, CapSupport, CapHasSupport, CapEdit},
	LevelAuxEditor:   {CapAuxEditor, CapSupport, CapHasSupport, CapEdit},
	LevelSupport:     {CapSupport, CapHasSupport},
	LevelViewer:      {CapViewer, CapHasSupport},
}

// Role is a named permission level assigned to users many-to-many.
type Role struct {
	ID          string
	Name        string
	Level       int
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Has reports whether the role's level grants the capability.
func (r Role) Has(c Capability) bool {
	for _, granted := range levelCapabilities[r.Level] {
		if granted == c {
			return true
		}
	}
	return false
}

func (r Role) IsAdmin() bool       { return r.Has(CapAdmin) }
func (r Role) IsManagerUser() bool { return r.Has(CapManagerUser) }
func (r Role) IsEditor() bool      { return r.Has(CapEditor) }
func (r Role) IsAuxEditor() bool   { return r.Has(CapAuxEditor) }
func (r Role) IsSupport() bool     { return r.Has(CapSupport) }
func (r Role) HasSupport() bool    { return r.Has(CapHasSupport) }
func (r Role) IsViewer() bool      { return r.Has(CapViewer) }
func (r Role) CanEdit() bool       { return r.Has(CapEdit) }
