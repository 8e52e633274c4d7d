package depcollect

import "context"

// collector carries the state a single Collect call threads through process
// and processDependency: the session, the per-call pool/stack/results, and
// the context used to talk to the external collaborators.
//
// pinnedArtifact mirrors a detail of the source this module is grounded on:
// the "artifact" field of every CollectionContext built during one
// collection call is fixed once, from the request's RootArtifact, and never
// updated even when a Root Dependency is also present — only Dependency and
// ManagedDependencies change as recursion descends.
type collector struct {
	ctx            context.Context
	session        *Session
	pool           *dataPool
	nodes          *nodeStack
	results        *resultsAccumulator
	vfCtx          *VersionFilterContext
	pinnedArtifact Artifact
	requestContext string
}

// Collect walks the transitive dependency graph rooted at request according
// to session's policies, returning the resulting graph. On any recorded
// exception, Collect returns a non-nil *CollectionError alongside the
// (possibly partial) result.
func Collect(ctx context.Context, session *Session, request CollectRequest) (*CollectResult, error) {
	result := &CollectResult{Request: request}
	c := &collector{
		ctx:            ctx,
		session:        session,
		pool:           newDataPool(),
		nodes:          newNodeStack(),
		results:        newResultsAccumulator(result, session.MaxExceptions, session.MaxCycles),
		vfCtx:          newVersionFilterContext(session),
		pinnedArtifact: request.RootArtifact,
		requestContext: request.RequestContext,
	}

	if request.Root != nil {
		c.collectWithRoot(request, result)
	} else {
		c.collectWithoutRoot(request, result)
	}

	if result.Root != nil {
		c.transform(result)
	}
	return result, c.results.finish()
}

// ctxFor builds a CollectionContext scoped to dep/managed, keeping the
// pinned artifact and session fixed.
func (c *collector) ctxFor(dep Dependency, managed []Dependency) CollectionContext {
	return newCollectionContext(c.session, c.pinnedArtifact).withDependency(dep, managed)
}

func (c *collector) collectWithRoot(request CollectRequest, result *CollectResult) {
	session := c.session
	root := *request.Root

	manager := deriveManager(session.Manager, c.ctxFor(root, request.ManagedDependencies))

	rangeReq := VersionRangeRequest{Artifact: root.Artifact, Repositories: request.Repositories, RequestContext: c.requestContext}
	rangeResult, err := c.resolveRange(rangeReq)
	if err != nil {
		c.results.addException(root, err, c.nodes)
		return
	}
	versions, err := filterVersions(c.vfCtx, root, rangeResult, session.VersionFilter)
	if err != nil {
		c.results.addException(root, err, c.nodes)
		return
	}
	chosen := versions[len(versions)-1]
	resolvedArtifact := root.Artifact.WithVersion(chosen.String())

	var descriptorResult *ArtifactDescriptorResult
	if resolvedArtifact.LacksDescriptor() {
		descriptorResult = &ArtifactDescriptorResult{Artifact: resolvedArtifact}
	} else {
		descReq := ArtifactDescriptorRequest{
			Artifact: resolvedArtifact, Repositories: request.Repositories,
			RequestContext: c.requestContext, Manager: c.descriptorManager(manager),
		}
		var failed bool
		descriptorResult, failed = c.resolveDescriptor(descReq, root)
		if failed {
			// Mirrors the source: a root-level descriptor fetch failure aborts
			// collection outright rather than continuing with a degraded
			// dependency set.
			return
		}
	}

	repos := request.Repositories
	mergedDeps, mergedManaged := request.Dependencies, request.ManagedDependencies
	if descriptorResult != nil {
		resolvedArtifact = descriptorResult.Artifact
		if !session.IgnoreArtifactDescriptorRepositories && session.RepositoryManager != nil {
			repos = session.RepositoryManager.Aggregate(session, request.Repositories, descriptorResult.Repositories, true)
		}
		mergedDeps = mergeDependencyLists(request.Dependencies, descriptorResult.Dependencies)
		mergedManaged = mergeDependencyLists(request.ManagedDependencies, descriptorResult.ManagedDependencies)
	}

	resolvedRoot := root.WithArtifact(resolvedArtifact)
	rootNode := &DependencyNode{
		Dependency:        &resolvedRoot,
		VersionConstraint: rangeResult.VersionConstraint,
		Version:           chosen,
		// Resolved open question: the root node keeps the caller's original
		// repository list, not the aggregated one used for recursion below.
		Repositories:   request.Repositories,
		RequestContext: c.requestContext,
		Children:       newChildrenList(),
	}
	if descriptorResult != nil {
		rootNode.Aliases = descriptorResult.Aliases
		rootNode.Relocations = descriptorResult.Relocations
	}
	result.Root = rootNode

	if session.Traverser != nil && !session.Traverser.TraverseDependency(resolvedRoot) {
		return
	}

	recurseCtx := c.ctxFor(resolvedRoot, mergedManaged)
	childSelector := deriveSelector(session.Selector, recurseCtx)
	childManager := deriveManager(session.Manager, recurseCtx)
	childTraverser := deriveTraverser(session.Traverser, recurseCtx)
	childFilter := deriveFilter(session.VersionFilter, recurseCtx)

	c.nodes.push(rootNode)
	c.process(mergedDeps, repos, childSelector, childManager, childTraverser, childFilter)
	c.nodes.pop()
}

func (c *collector) collectWithoutRoot(request CollectRequest, result *CollectResult) {
	session := c.session
	rootNode := &DependencyNode{
		RootArtifact:   request.RootArtifact,
		Repositories:   request.Repositories,
		RequestContext: c.requestContext,
		Children:       newChildrenList(),
	}
	result.Root = rootNode

	ctx := newCollectionContext(session, c.pinnedArtifact)
	ctx.ManagedDependencies = request.ManagedDependencies
	childSelector := deriveSelector(session.Selector, ctx)
	childManager := deriveManager(session.Manager, ctx)
	childTraverser := deriveTraverser(session.Traverser, ctx)
	childFilter := deriveFilter(session.VersionFilter, ctx)

	c.nodes.push(rootNode)
	c.process(request.Dependencies, request.Repositories, childSelector, childManager, childTraverser, childFilter)
	c.nodes.pop()
}

func (c *collector) transform(result *CollectResult) {
	session := c.session
	if session.Transformer == nil {
		return
	}
	txCtx := &TransformationContext{Session: session}
	if session.DebugStats {
		txCtx.Stats = map[string]any{}
	}
	newRoot, err := session.Transformer.TransformGraph(result.Root, txCtx)
	if err != nil {
		result.Exceptions = append(result.Exceptions, &TransformationError{Err: err})
		return
	}
	result.Root = newRoot
}

func deriveSelector(s DependencySelector, ctx CollectionContext) DependencySelector {
	if s == nil {
		return nil
	}
	return s.DeriveChildSelector(ctx)
}

func deriveManager(m DependencyManager, ctx CollectionContext) DependencyManager {
	if m == nil {
		return nil
	}
	return m.DeriveChildManager(ctx)
}

func deriveTraverser(t DependencyTraverser, ctx CollectionContext) DependencyTraverser {
	if t == nil {
		return nil
	}
	return t.DeriveChildTraverser(ctx)
}

func deriveFilter(f VersionFilter, ctx CollectionContext) VersionFilter {
	if f == nil {
		return nil
	}
	return f.DeriveChildFilter(ctx)
}

// descriptorManager derives the manager handed to a descriptor-read request
// from a blank context, distinct from manager itself (the live traversal
// manager). See SPEC_FULL.md's "empty-context descriptor-manager
// derivation" supplement.
func (c *collector) descriptorManager(manager DependencyManager) DependencyManager {
	if manager == nil {
		return nil
	}
	return manager.DeriveChildManager(CollectionContext{Session: c.session})
}

// resolveRange consults the pool before calling the session's version range
// resolver.
func (c *collector) resolveRange(req VersionRangeRequest) (*VersionRangeResult, error) {
	key := rangeKey(req)
	if cached, ok := c.pool.getRange(key); ok {
		return cached, nil
	}
	if c.session.VersionRangeResolver == nil {
		return nil, errNoVersionRangeResolver
	}
	result, err := c.session.VersionRangeResolver.ResolveVersionRange(c.ctx, c.session, req)
	if err != nil {
		return nil, err
	}
	c.pool.putRange(key, result)
	return result, nil
}

// resolveDescriptor implements the caching described in section 4.2.1: a
// cached failure and a fresh failure are indistinguishable to the caller —
// both report failed=true with a nil result, after recording the exception
// (once, at first occurrence). See SPEC_FULL.md section 4 for why this
// mirrors the source rather than the distilled spec's stated open question.
// Most call sites treat a failure as "no descriptor for this artifact" and
// continue degraded; collectWithRoot is the exception, since a root-level
// descriptor fetch failure aborts collection outright.
func (c *collector) resolveDescriptor(req ArtifactDescriptorRequest, dep Dependency) (result *ArtifactDescriptorResult, failed bool) {
	key := descriptorKey(req)
	if cached, ok := c.pool.getDescriptor(key); ok {
		return cached, cached == nil
	}
	if c.session.DescriptorReader == nil {
		return nil, false
	}
	fetched, err := c.session.DescriptorReader.ReadArtifactDescriptor(c.ctx, c.session, req)
	if err != nil {
		c.results.addException(dep, &DescriptorFetchError{Artifact: req.Artifact, Err: err}, c.nodes)
		c.pool.putDescriptorError(key, err)
		return nil, true
	}
	c.pool.putDescriptorResult(key, fetched)
	return fetched, false
}
