// Package semverscheme is a default Version/VersionRangeResolver pairing
// built on golang.org/x/mod/semver: versions are canonicalized semantic
// version strings, and constraints follow the bracketed Maven-style range
// syntax ("[1.2.0,2.0.0)", "[1.2.0,)", or a bare exact version).
package semverscheme

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/mod/semver"

	depcollect "github.com/arborist-dev/depcollect"
)

// version wraps a canonicalized ("v"-prefixed) semantic version string.
type version struct {
	canon string
	raw   string
}

// ParseVersion canonicalizes raw (adding a leading "v" if absent) and
// validates it as a semantic version.
func ParseVersion(raw string) (depcollect.Version, error) {
	canon := raw
	if !strings.HasPrefix(canon, "v") {
		canon = "v" + canon
	}
	if !semver.IsValid(canon) {
		return nil, fmt.Errorf("semverscheme: invalid version %q", raw)
	}
	return version{canon: canon, raw: raw}, nil
}

func (v version) String() string { return v.raw }

func (v version) Compare(other depcollect.Version) int {
	o, ok := other.(version)
	if !ok {
		return strings.Compare(v.canon, other.String())
	}
	return semver.Compare(v.canon, o.canon)
}

// Constraint is a parsed exact version or bracketed range.
type Constraint struct {
	isRange        bool
	exact          string
	lower          string
	upper          string
	lowerInclusive bool
	upperInclusive bool
}

// ParseConstraint parses raw as either an exact version or a Maven-style
// bracketed range: "[1.0,2.0)", "(1.0,]", "[1.0,)", etc. An empty bound
// means unbounded on that side.
func ParseConstraint(raw string) (Constraint, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Constraint{}, fmt.Errorf("semverscheme: empty version constraint")
	}
	first, last := trimmed[0], trimmed[len(trimmed)-1]
	isOpenBracket := first == '[' || first == '('
	isCloseBracket := last == ']' || last == ')'
	if !isOpenBracket || !isCloseBracket {
		if _, err := ParseVersion(trimmed); err != nil {
			return Constraint{}, err
		}
		return Constraint{exact: trimmed}, nil
	}
	body := trimmed[1 : len(trimmed)-1]
	parts := strings.SplitN(body, ",", 2)
	if len(parts) != 2 {
		return Constraint{}, fmt.Errorf("semverscheme: range %q must contain exactly one comma", raw)
	}
	lower, upper := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if lower != "" {
		if _, err := ParseVersion(lower); err != nil {
			return Constraint{}, err
		}
	}
	if upper != "" {
		if _, err := ParseVersion(upper); err != nil {
			return Constraint{}, err
		}
	}
	return Constraint{
		isRange:        true,
		lower:          lower,
		upper:          upper,
		lowerInclusive: first == '[',
		upperInclusive: last == ']',
	}, nil
}

// IsRange reports whether the constraint is a bracketed range rather than
// an exact version.
func (c Constraint) IsRange() bool { return c.isRange }

// Matches reports whether v satisfies the constraint.
func (c Constraint) Matches(v depcollect.Version) bool {
	if !c.isRange {
		ev, err := ParseVersion(c.exact)
		if err != nil {
			return false
		}
		return ev.Compare(v) == 0
	}
	if c.lower != "" {
		lv, err := ParseVersion(c.lower)
		if err != nil {
			return false
		}
		cmp := lv.Compare(v)
		if cmp > 0 || (cmp == 0 && !c.lowerInclusive) {
			return false
		}
	}
	if c.upper != "" {
		uv, err := ParseVersion(c.upper)
		if err != nil {
			return false
		}
		cmp := uv.Compare(v)
		if cmp < 0 || (cmp == 0 && !c.upperInclusive) {
			return false
		}
	}
	return true
}

// VersionLister supplies the candidate versions available for an artifact,
// the piece a real implementation would obtain from a repository's
// metadata; Resolver narrows that list with a parsed Constraint.
type VersionLister interface {
	ListVersions(ctx context.Context, artifact depcollect.Artifact, repos []depcollect.Repository) ([]depcollect.Version, error)
}

// Resolver is the default VersionRangeResolver: it parses the artifact's
// version field as a Constraint and filters whatever Lister reports,
// returning the survivors in ascending order.
type Resolver struct {
	Lister VersionLister
}

func NewResolver(lister VersionLister) Resolver { return Resolver{Lister: lister} }

func (r Resolver) ResolveVersionRange(ctx context.Context, session *depcollect.Session, req depcollect.VersionRangeRequest) (*depcollect.VersionRangeResult, error) {
	constraint, err := ParseConstraint(req.Artifact.Version)
	if err != nil {
		return nil, err
	}
	all, err := r.Lister.ListVersions(ctx, req.Artifact, req.Repositories)
	if err != nil {
		return nil, err
	}
	matched := make([]depcollect.Version, 0, len(all))
	for _, v := range all {
		if constraint.Matches(v) {
			matched = append(matched, v)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Compare(matched[j]) < 0 })
	return depcollect.NewVersionRangeResult(
		matched,
		depcollect.VersionConstraint{Raw: req.Artifact.Version, IsRange: constraint.IsRange()},
		nil,
	), nil
}
