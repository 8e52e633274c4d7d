package depcollect

import "fmt"

// poolKeyer lets a policy implementation (selector/manager/traverser/filter)
// supply a structural key for the data pool's composite children-list key,
// so two distinct-but-equal policy values collapse to the same pool entry.
// Implementations that don't satisfy this interface fall back to a key built
// from the value's dynamic type and its %p formatting: pointer identity for
// pointer values, and the printed value itself for non-pointer values.
type poolKeyer interface {
	PoolKey() string
}

func poolKeyOf(v any) string {
	if v == nil {
		return "<nil>"
	}
	if pk, ok := v.(poolKeyer); ok {
		return pk.PoolKey()
	}
	return fmt.Sprintf("%T@%p", v, v)
}

type descriptorEntry struct {
	result *ArtifactDescriptorResult
	err    error
}

// dataPool is the per-call memoization and interning cache described by the
// collector. It is not safe for concurrent use and is scoped to one
// Collect call.
type dataPool struct {
	ranges       map[string]*VersionRangeResult
	descriptors  map[string]descriptorEntry
	artifacts    map[string]Artifact
	dependencies map[string]Dependency
	children     map[string]*ChildrenList
}

func newDataPool() *dataPool {
	return &dataPool{
		ranges:       map[string]*VersionRangeResult{},
		descriptors:  map[string]descriptorEntry{},
		artifacts:    map[string]Artifact{},
		dependencies: map[string]Dependency{},
		children:     map[string]*ChildrenList{},
	}
}

func rangeKey(req VersionRangeRequest) string {
	return artifactKey(req.Artifact) + "#" + reposKey(req.Repositories) + "#" + req.RequestContext
}

func (p *dataPool) getRange(key string) (*VersionRangeResult, bool) {
	r, ok := p.ranges[key]
	return r, ok
}

func (p *dataPool) putRange(key string, result *VersionRangeResult) {
	p.ranges[key] = result
}

func descriptorKey(req ArtifactDescriptorRequest) string {
	return artifactKey(req.Artifact) + "#" + reposKey(req.Repositories)
}

// getDescriptor reports a three-way outcome: (result, true) on a cached
// success, (nil, true) on a cached failure (caller treats as "absent"), or
// (nil, false) on a genuine miss (caller must fetch and then call
// putDescriptorResult/putDescriptorError).
func (p *dataPool) getDescriptor(key string) (*ArtifactDescriptorResult, bool) {
	e, ok := p.descriptors[key]
	if !ok {
		return nil, false
	}
	if e.err != nil {
		return nil, true
	}
	return e.result, true
}

func (p *dataPool) putDescriptorResult(key string, result *ArtifactDescriptorResult) {
	p.descriptors[key] = descriptorEntry{result: result}
}

func (p *dataPool) putDescriptorError(key string, err error) {
	p.descriptors[key] = descriptorEntry{err: err}
}

// internArtifact canonicalizes a so that coordinate-equal, value-equal
// artifacts encountered repeatedly during one collection share a single
// representative value.
func (p *dataPool) internArtifact(a Artifact) Artifact {
	key := artifactKey(a)
	if existing, ok := p.artifacts[key]; ok {
		return existing
	}
	p.artifacts[key] = a
	return a
}

func (p *dataPool) internDependency(d Dependency) Dependency {
	key := dependencyKey(d)
	if existing, ok := p.dependencies[key]; ok {
		return existing
	}
	p.dependencies[key] = d
	return d
}

// childrenKey composes the pool key used for subtree memoization: the
// artifact, the repository set, and the four derived policy values.
func childrenKey(artifact Artifact, repos []Repository, selector DependencySelector, manager DependencyManager, traverser DependencyTraverser, filter VersionFilter) string {
	return artifactKey(artifact) + "#" + reposKey(repos) + "#" +
		poolKeyOf(selector) + "#" + poolKeyOf(manager) + "#" + poolKeyOf(traverser) + "#" + poolKeyOf(filter)
}

func (p *dataPool) getChildren(key string) (*ChildrenList, bool) {
	c, ok := p.children[key]
	return c, ok
}

// putChildren registers list against key, before its node has finished
// descending. Because list is a pointer, any later node that reaches the
// same key (or is linked to it via a detected cycle) shares the exact same
// backing storage: appends made as descent continues are visible through
// every holder of the pointer.
func (p *dataPool) putChildren(key string, list *ChildrenList) {
	p.children[key] = list
}
