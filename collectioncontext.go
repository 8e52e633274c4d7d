package depcollect

// CollectionContext is the immutable snapshot passed to a policy's
// DeriveChild* method at each recursion step. Derivation returns a new
// policy value for the child scope; it never mutates ctx or the parent
// policy.
type CollectionContext struct {
	Session             *Session
	Artifact            Artifact
	Dependency          *Dependency
	ManagedDependencies []Dependency
}

func newCollectionContext(session *Session, artifact Artifact) CollectionContext {
	return CollectionContext{Session: session, Artifact: artifact}
}

// withDependency returns a copy of ctx scoped to dep and managed, keeping
// Session and Artifact unchanged — Artifact stays pinned to the value it
// held when the context was first constructed for this collection call.
func (ctx CollectionContext) withDependency(dep Dependency, managed []Dependency) CollectionContext {
	ctx.Dependency = &dep
	ctx.ManagedDependencies = managed
	return ctx
}
