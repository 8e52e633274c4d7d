package depcollect

// DependencyNode is a node in a collected dependency graph.
type DependencyNode struct {
	// Dependency is the resolved dependency this node represents, or nil for
	// a synthetic root-artifact node (a [CollectRequest] with no Root).
	Dependency *Dependency
	// RootArtifact holds the artifact when Dependency is nil.
	RootArtifact Artifact

	VersionConstraint VersionConstraint
	Version           Version

	// Repositories is the effective repository list: the single
	// RemoteRepository that supplied the chosen version if known, an empty
	// list if a different kind of repository supplied it, or the ambient
	// repository list otherwise.
	Repositories []Repository

	RequestContext string

	Aliases     []Artifact
	Relocations []Artifact

	ManagedBits ManagedBits

	// Premanaged* hold the dependency's field values before management was
	// applied. Populated only when management overrode the field AND the
	// session has VerbosePremanagedState set.
	PremanagedVersion  *string
	PremanagedScope    *string
	PremanagedOptional *OptionalFlag

	// Children is a pointer to a shared, mutable list. Two nodes reached
	// through the same data-pool subtree key, or a cycle node and the
	// ancestor it closes a cycle against, hold the identical pointer: an
	// append made through one is visible through the other, because both
	// hold the same *ChildrenList rather than independent copies of a
	// slice header.
	Children *ChildrenList
}

// ChildrenList is a mutable, shareable ordered list of child nodes.
type ChildrenList struct {
	Nodes []*DependencyNode
}

func newChildrenList() *ChildrenList { return &ChildrenList{} }

func (c *ChildrenList) append(n *DependencyNode) { c.Nodes = append(c.Nodes, n) }

// Artifact returns the node's artifact, whether from its Dependency or, for
// a synthetic root node, from RootArtifact.
func (n *DependencyNode) Artifact() Artifact {
	if n.Dependency != nil {
		return n.Dependency.Artifact
	}
	return n.RootArtifact
}
