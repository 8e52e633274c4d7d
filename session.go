package depcollect

// Session carries the policies and configuration a Collect call uses. A
// Session is read-only during collection; the core never mutates it.
type Session struct {
	Selector      DependencySelector
	Manager       DependencyManager
	Traverser     DependencyTraverser
	VersionFilter VersionFilter
	Transformer   GraphTransformer

	RepositoryManager    RepositoryManager
	DescriptorReader     DescriptorReader
	VersionRangeResolver VersionRangeResolver

	IgnoreArtifactDescriptorRepositories bool
	VerbosePremanagedState               bool

	// MaxExceptions bounds the recorded exception list; negative means
	// unbounded. Default 50.
	MaxExceptions int
	// MaxCycles bounds the recorded cycle list; negative means unbounded.
	// Default 10.
	MaxCycles int

	// DebugStats, when true, causes TransformationContext.Stats to be a
	// non-nil map a GraphTransformer may populate.
	DebugStats bool

	// Trace is an opaque token carried for external correlation only; the
	// core never inspects or polls it for cancellation.
	Trace string
}

// NewSession returns a Session with the documented defaults
// (MaxExceptions=50, MaxCycles=10) and a DefaultRepositoryManager.
func NewSession() *Session {
	return &Session{
		RepositoryManager: DefaultRepositoryManager{},
		MaxExceptions:     50,
		MaxCycles:         10,
	}
}
