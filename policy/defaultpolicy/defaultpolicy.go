// Package defaultpolicy provides pass-through DependencySelector,
// DependencyManager, DependencyTraverser, and VersionFilter implementations:
// every dependency is selected and traversed, nothing is managed, and no
// version is filtered out of a range. Sessions that don't need custom
// collection policy can use these directly.
package defaultpolicy

import depcollect "github.com/arborist-dev/depcollect"

// Selector selects every dependency and derives itself unchanged.
type Selector struct{}

func (Selector) SelectDependency(depcollect.Dependency) bool { return true }

func (s Selector) DeriveChildSelector(depcollect.CollectionContext) depcollect.DependencySelector { return s }

// PoolKey lets the collector's data pool collapse every Selector value to
// one entry, since all of them behave identically.
func (Selector) PoolKey() string { return "defaultpolicy.Selector" }

// Manager never overrides anything and derives itself unchanged.
type Manager struct{}

func (Manager) ManageDependency(depcollect.Dependency) *depcollect.DependencyManagement { return nil }

func (m Manager) DeriveChildManager(depcollect.CollectionContext) depcollect.DependencyManager { return m }

func (Manager) PoolKey() string { return "defaultpolicy.Manager" }

// Traverser descends into every dependency's own dependencies.
type Traverser struct{}

func (Traverser) TraverseDependency(depcollect.Dependency) bool { return true }

func (t Traverser) DeriveChildTraverser(depcollect.CollectionContext) depcollect.DependencyTraverser {
	return t
}

func (Traverser) PoolKey() string { return "defaultpolicy.Traverser" }

// VersionFilter keeps every version a range resolved to.
type VersionFilter struct{}

func (VersionFilter) FilterVersions(*depcollect.VersionFilterContext) error { return nil }

func (f VersionFilter) DeriveChildFilter(depcollect.CollectionContext) depcollect.VersionFilter { return f }

func (VersionFilter) PoolKey() string { return "defaultpolicy.VersionFilter" }
