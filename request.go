package depcollect

// CollectRequest is the input to Collect.
type CollectRequest struct {
	// Root, when non-nil, is resolved to its highest surviving version and
	// becomes the graph's root node. When nil, RootArtifact wraps a
	// synthetic root node and no descriptor work is done for it.
	Root         *Dependency
	RootArtifact Artifact

	Dependencies        []Dependency
	ManagedDependencies []Dependency

	Repositories []Repository

	RequestContext string
	Trace          string
}
