package depcollect

import "fmt"

// Version is a single resolved artifact version. Implementations must be
// comparable (usable as a map key) since [VersionRangeResult] indexes
// per-version repositories by Version.
type Version interface {
	fmt.Stringer
	// Compare returns a negative number, zero, or a positive number as v
	// sorts before, equal to, or after other.
	Compare(other Version) int
}

// VersionConstraint is the version expression a dependency's artifact carried
// before range resolution: either a single pinned version or a range
// expression such as "[1.0,2.0)".
type VersionConstraint struct {
	Raw     string
	IsRange bool
}

func (vc VersionConstraint) String() string { return vc.Raw }
