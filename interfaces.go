package depcollect

import "context"

// ArtifactDescriptorRequest asks a DescriptorReader to resolve the metadata
// document for a single artifact.
type ArtifactDescriptorRequest struct {
	Artifact       Artifact
	Repositories   []Repository
	RequestContext string
	// Manager is the DependencyManager a descriptor reader should consult
	// when it needs to pre-manage dependencies it discovers while building
	// the descriptor (e.g. parsing an imported BOM). It is derived from a
	// blank CollectionContext, distinct from the live traversal context used
	// for the requesting dependency's own management.
	Manager DependencyManager
}

// ArtifactDescriptorResult is the parsed form of an artifact's descriptor.
type ArtifactDescriptorResult struct {
	Artifact            Artifact
	Dependencies        []Dependency
	ManagedDependencies []Dependency
	Repositories        []Repository
	Relocations         []Artifact
	Aliases             []Artifact
}

// DescriptorReader resolves an artifact's descriptor.
type DescriptorReader interface {
	ReadArtifactDescriptor(ctx context.Context, session *Session, req ArtifactDescriptorRequest) (*ArtifactDescriptorResult, error)
}

// VersionRangeRequest asks a VersionRangeResolver to expand a dependency's
// version constraint (carried in Artifact.Version) against repositories.
type VersionRangeRequest struct {
	Artifact       Artifact
	Repositories   []Repository
	RequestContext string
}

// VersionRangeResult is the ascending list of versions a range expanded to,
// the constraint it was resolved from, and which repository (if known)
// supplied each version.
type VersionRangeResult struct {
	Versions          []Version
	VersionConstraint VersionConstraint
	repositoryOf      map[Version]Repository
}

// NewVersionRangeResult constructs a result. repositoryOf may be nil.
func NewVersionRangeResult(versions []Version, constraint VersionConstraint, repositoryOf map[Version]Repository) *VersionRangeResult {
	return &VersionRangeResult{Versions: versions, VersionConstraint: constraint, repositoryOf: repositoryOf}
}

// RepositoryFor returns the repository that supplied v, or nil if unknown.
func (r *VersionRangeResult) RepositoryFor(v Version) Repository {
	if r.repositoryOf == nil {
		return nil
	}
	return r.repositoryOf[v]
}

// VersionRangeResolver expands a version constraint to a concrete ascending
// list of versions.
type VersionRangeResolver interface {
	ResolveVersionRange(ctx context.Context, session *Session, req VersionRangeRequest) (*VersionRangeResult, error)
}

// DependencySelector decides whether a dependency participates in collection
// at all, and derives the selector a child scope should use.
type DependencySelector interface {
	SelectDependency(dep Dependency) bool
	DeriveChildSelector(ctx CollectionContext) DependencySelector
}

// DependencyManager produces management overrides for a dependency, and
// derives the manager a child scope should use.
type DependencyManager interface {
	ManageDependency(dep Dependency) *DependencyManagement
	DeriveChildManager(ctx CollectionContext) DependencyManager
}

// DependencyTraverser decides whether a dependency's own dependencies should
// be recursively collected, and derives the traverser a child scope should
// use.
type DependencyTraverser interface {
	TraverseDependency(dep Dependency) bool
	DeriveChildTraverser(ctx CollectionContext) DependencyTraverser
}

// VersionFilterContext is the per-call context a VersionFilter mutates to
// narrow the surviving version list.
type VersionFilterContext struct {
	Session     *Session
	Dependency  Dependency
	RangeResult *VersionRangeResult
	versions    []Version
}

func newVersionFilterContext(session *Session) *VersionFilterContext {
	return &VersionFilterContext{Session: session}
}

func (c *VersionFilterContext) reset(dep Dependency, rr *VersionRangeResult) {
	c.Dependency = dep
	c.RangeResult = rr
	c.versions = append([]Version(nil), rr.Versions...)
}

// Versions returns the current surviving version list.
func (c *VersionFilterContext) Versions() []Version { return c.versions }

// SetVersions replaces the surviving version list wholesale.
func (c *VersionFilterContext) SetVersions(vs []Version) { c.versions = vs }

// Retain keeps only the versions for which keep returns true.
func (c *VersionFilterContext) Retain(keep func(Version) bool) {
	out := c.versions[:0]
	for _, v := range c.versions {
		if keep(v) {
			out = append(out, v)
		}
	}
	c.versions = out
}

// VersionFilter narrows a range-resolved version list, and derives the
// filter a child scope should use.
type VersionFilter interface {
	FilterVersions(ctx *VersionFilterContext) error
	DeriveChildFilter(ctx CollectionContext) VersionFilter
}

// TransformationContext is passed to a GraphTransformer.
type TransformationContext struct {
	Session *Session
	// Stats is non-nil only when the session has debug stats enabled.
	Stats map[string]any
}

// GraphTransformer post-processes a fully collected graph (conflict
// resolution, scope reconciliation, ordering) and returns its replacement
// root.
type GraphTransformer interface {
	TransformGraph(root *DependencyNode, ctx *TransformationContext) (*DependencyNode, error)
}
