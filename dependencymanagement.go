package depcollect

import mapset "github.com/deckarep/golang-set/v2"

// ManagedBits is a bitmask over the fields a DependencyManagement override
// touched on a given node's dependency.
type ManagedBits uint8

const (
	ManagedVersion ManagedBits = 1 << iota
	ManagedScope
	ManagedOptional
	ManagedProperties
	ManagedExclusions
)

func (b ManagedBits) Has(bit ManagedBits) bool { return b&bit != 0 }

// DependencyManagement is a partial override a [DependencyManager] produces
// for a given dependency. A nil field (or nil Exclusions) means "not
// overridden" for that field.
type DependencyManagement struct {
	Version    *string
	Scope      *string
	Optional   *OptionalFlag
	Properties map[string]string
	Exclusions mapset.Set[Exclusion]
}
