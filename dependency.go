package depcollect

import (
	"slices"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// OptionalFlag is a tri-state flag: unset, explicitly false, or explicitly true.
type OptionalFlag int

const (
	OptionalUnset OptionalFlag = iota
	OptionalFalse
	OptionalTrue
)

// Bool reports the flag's truth value, treating OptionalUnset as false.
func (o OptionalFlag) Bool() bool { return o == OptionalTrue }

func (o OptionalFlag) String() string {
	switch o {
	case OptionalTrue:
		return "true"
	case OptionalFalse:
		return "false"
	default:
		return "unset"
	}
}

// Exclusion names a (group, id) pair to drop from a dependency's transitive
// closure.
type Exclusion struct {
	Group string
	ID    string
}

func (e Exclusion) String() string { return e.Group + ":" + e.ID }

// Dependency is an Artifact reference annotated with scope, optionality, and
// an exclusion set. Dependencies are immutable; the With* methods return new
// values.
type Dependency struct {
	Artifact   Artifact
	Scope      string
	Optional   OptionalFlag
	Exclusions mapset.Set[Exclusion]
}

// NewDependency constructs a Dependency with an empty exclusion set.
func NewDependency(a Artifact) Dependency {
	return Dependency{Artifact: a, Exclusions: mapset.NewThreadUnsafeSet[Exclusion]()}
}

func (d Dependency) WithArtifact(a Artifact) Dependency {
	d.Artifact = a
	return d
}

func (d Dependency) WithScope(scope string) Dependency {
	d.Scope = scope
	return d
}

func (d Dependency) WithOptional(o OptionalFlag) Dependency {
	d.Optional = o
	return d
}

// WithExclusions returns a copy of d whose exclusion set is a fresh clone of excl.
func (d Dependency) WithExclusions(excl mapset.Set[Exclusion]) Dependency {
	if excl == nil {
		d.Exclusions = mapset.NewThreadUnsafeSet[Exclusion]()
	} else {
		d.Exclusions = excl.Clone()
	}
	return d
}

// Excludes reports whether d's exclusion set names (group, id).
func (d Dependency) Excludes(group, id string) bool {
	return d.Exclusions != nil && d.Exclusions.Contains(Exclusion{Group: group, ID: id})
}

func (d Dependency) String() string {
	var b strings.Builder
	b.WriteString(d.Artifact.String())
	if d.Scope != "" {
		b.WriteByte(':')
		b.WriteString(d.Scope)
	}
	return b.String()
}

// dependencyKey is the canonical string key used by the data pool for
// interning dependencies.
func dependencyKey(d Dependency) string {
	var b strings.Builder
	b.WriteString(artifactKey(d.Artifact))
	b.WriteByte('|')
	b.WriteString(d.Scope)
	b.WriteByte('|')
	b.WriteString(d.Optional.String())
	b.WriteByte('|')
	if d.Exclusions != nil && d.Exclusions.Cardinality() > 0 {
		excl := d.Exclusions.ToSlice()
		sort.Slice(excl, func(i, j int) bool {
			if excl[i].Group != excl[j].Group {
				return excl[i].Group < excl[j].Group
			}
			return excl[i].ID < excl[j].ID
		})
		strs := make([]string, len(excl))
		for i, e := range excl {
			strs[i] = e.String()
		}
		b.WriteString(strings.Join(strs, ","))
	}
	return b.String()
}

func cloneExclusions(s mapset.Set[Exclusion]) mapset.Set[Exclusion] {
	if s == nil {
		return mapset.NewThreadUnsafeSet[Exclusion]()
	}
	return s.Clone()
}

func mergeDependencyLists(dominant, recessive []Dependency) []Dependency {
	seen := make(map[ArtifactCoordinate]bool, len(dominant))
	out := slices.Clone(dominant)
	for _, d := range dominant {
		seen[d.Artifact.Coordinate()] = true
	}
	for _, d := range recessive {
		if seen[d.Artifact.Coordinate()] {
			continue
		}
		seen[d.Artifact.Coordinate()] = true
		out = append(out, d)
	}
	return out
}
