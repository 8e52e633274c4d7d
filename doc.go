// Package depcollect recursively collects a transitive dependency graph
// from a root artifact (or an explicit root dependency list), the way a
// build tool resolves the full set of artifacts a project needs.
//
// A [Session] carries the pluggable policies that steer one [Collect] call:
// a [DependencySelector] decides whether a dependency participates at all,
// a [DependencyManager] supplies management overrides (pinned versions,
// scopes, exclusions), a [DependencyTraverser] decides whether to descend
// into a dependency's own dependencies, and a [VersionFilter] narrows a
// version range's candidates. Each policy derives the value a child scope
// should use as collection descends, the way [DependencyManager] and
// friends in Maven's dependency collector do; none of them mutate the
// values their parent scope used.
//
// Collect asks a [DescriptorReader] for each artifact's metadata (its own
// dependencies, management, relocations, and repositories) and a
// [VersionRangeResolver] to expand version constraints, memoizing both
// within one call via an internal data pool. Artifact coordinate equality
// (group, id, classifier, extension, ignoring version) closes cycles: when
// collection revisits an ancestor's coordinate, the new node shares that
// ancestor's children list by reference rather than recursing again, so a
// later append anywhere in the shared subtree is visible through every
// node that points at it.
//
// Neither a descriptor reader nor a version range resolver ships with this
// package; the versionscheme/semverscheme and internal/test/fakeregistry
// packages provide reference implementations usable directly or as a model
// for a repository-backed one. Conflict resolution, scope reconciliation,
// and graph reordering are likewise left to a [GraphTransformer] a caller
// plugs into the session; the transform/conflict and transform/satresolve
// packages provide two independent implementations.
//
// Collect never downloads artifact content, never decides a classpath
// order, and never emits a lockfile; it only builds the graph.
package depcollect
