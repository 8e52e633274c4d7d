package depcollect

// process implements section 4.2: each dependency, in insertion order, is
// handed to processDependency. There is no parallelism; the resulting
// child-node order on c.nodes.top() is observable.
func (c *collector) process(deps []Dependency, repos []Repository, selector DependencySelector, manager DependencyManager, traverser DependencyTraverser, filter VersionFilter) {
	for _, dep := range deps {
		c.processDependency(dep, repos, selector, manager, traverser, filter, nil, false)
	}
}

// processDependency implements section 4.3.
func (c *collector) processDependency(dep Dependency, repos []Repository, selector DependencySelector, manager DependencyManager, traverser DependencyTraverser, filter VersionFilter, relocations []Artifact, disableVersionManagement bool) {
	if selector != nil && !selector.SelectDependency(dep) {
		return
	}

	var mgmt *DependencyManagement
	if manager != nil {
		mgmt = manager.ManageDependency(dep)
	}
	pm := createPremanagedDependency(mgmt, dep, disableVersionManagement, c.session.VerbosePremanagedState)
	managed := pm.managedDependency

	lackingDescriptor := managed.Artifact.LacksDescriptor()
	traverse := !lackingDescriptor && (traverser == nil || traverser.TraverseDependency(managed))

	rangeReq := VersionRangeRequest{Artifact: managed.Artifact, Repositories: repos, RequestContext: c.requestContext}
	rangeResult, err := c.resolveRange(rangeReq)
	if err != nil {
		c.results.addException(managed, &RangeResolutionError{Dependency: managed, Err: err}, c.nodes)
		return
	}
	versions, err := filterVersions(c.vfCtx, managed, rangeResult, filter)
	if err != nil {
		c.results.addException(managed, &RangeResolutionError{Dependency: managed, Err: err}, c.nodes)
		return
	}

	for _, version := range versions {
		versionedArtifact := managed.Artifact.WithVersion(version.String())
		versionedDep := managed.WithArtifact(versionedArtifact)

		var descriptorResult *ArtifactDescriptorResult
		if versionedArtifact.LacksDescriptor() {
			descriptorResult = &ArtifactDescriptorResult{Artifact: versionedArtifact}
		} else {
			descReq := ArtifactDescriptorRequest{
				Artifact: versionedArtifact, Repositories: repos,
				RequestContext: c.requestContext, Manager: c.descriptorManager(manager),
			}
			descriptorResult, _ = c.resolveDescriptor(descReq, versionedDep)
		}

		if descriptorResult == nil {
			c.appendLeafNode(versionedDep, rangeResult, version, nil, relocations, pm, repos)
			continue
		}

		if len(descriptorResult.Relocations) > 0 {
			relocated := versionedDep.WithArtifact(descriptorResult.Artifact)
			chain := append(append([]Artifact(nil), relocations...), versionedArtifact)
			disableVM := relocated.Artifact.Group == versionedArtifact.Group && relocated.Artifact.ID == versionedArtifact.ID
			c.processDependency(relocated, repos, selector, manager, traverser, filter, chain, disableVM)
			return
		}

		// Adopt the descriptor's own artifact before the cycle check and node
		// creation, the way the source does for every non-relocated
		// dependency: a descriptor can enrich the artifact's identity beyond
		// what was requested.
		versionedArtifact = c.pool.internArtifact(descriptorResult.Artifact)
		versionedDep = versionedDep.WithArtifact(versionedArtifact)

		if idx := c.nodes.find(versionedArtifact); idx >= 0 && c.nodes.get(idx).Dependency != nil {
			c.results.addCycle(c.nodes, idx, versionedDep)
			child := c.newChildNode(versionedDep, rangeResult, version, descriptorResult.Aliases, relocations, pm, repos)
			child.Children = c.nodes.get(idx).Children
			c.nodes.top().Children.append(child)
			continue
		}

		internedDep := c.pool.internDependency(versionedDep)
		child := c.newChildNode(internedDep, rangeResult, version, descriptorResult.Aliases, relocations, pm, repos)
		c.nodes.top().Children.append(child)

		if traverse && len(descriptorResult.Dependencies) > 0 {
			c.doRecurse(child, descriptorResult, repos, selector, manager, traverser, filter)
		}
	}
}

func (c *collector) newChildNode(dep Dependency, rangeResult *VersionRangeResult, version Version, aliases, relocations []Artifact, pm premanagedDependency, ambientRepos []Repository) *DependencyNode {
	node := &DependencyNode{
		Dependency:        &dep,
		VersionConstraint: rangeResult.VersionConstraint,
		Version:           version,
		Repositories:      effectiveRepositories(rangeResult, version, ambientRepos),
		RequestContext:    c.requestContext,
		Aliases:           aliases,
		Relocations:       relocations,
		Children:          newChildrenList(),
	}
	pm.applyTo(node, c.session.VerbosePremanagedState)
	return node
}

func (c *collector) appendLeafNode(dep Dependency, rangeResult *VersionRangeResult, version Version, aliases, relocations []Artifact, pm premanagedDependency, ambientRepos []Repository) {
	node := c.newChildNode(dep, rangeResult, version, aliases, relocations, pm, ambientRepos)
	c.nodes.top().Children.append(node)
}

// doRecurse implements section 4.4: derive child policies, compute
// childRepos, and either reuse a memoized children list or descend.
func (c *collector) doRecurse(childNode *DependencyNode, descriptorResult *ArtifactDescriptorResult, parentRepos []Repository, selector DependencySelector, manager DependencyManager, traverser DependencyTraverser, filter VersionFilter) {
	ctx := c.ctxFor(*childNode.Dependency, descriptorResult.ManagedDependencies)
	childSelector := deriveSelector(selector, ctx)
	childManager := deriveManager(manager, ctx)
	childTraverser := deriveTraverser(traverser, ctx)
	childFilter := deriveFilter(filter, ctx)

	childRepos := parentRepos
	if !c.session.IgnoreArtifactDescriptorRepositories && c.session.RepositoryManager != nil {
		childRepos = c.session.RepositoryManager.Aggregate(c.session, parentRepos, descriptorResult.Repositories, true)
	}

	key := childrenKey(childNode.Artifact(), childRepos, childSelector, childManager, childTraverser, childFilter)
	if cached, ok := c.pool.getChildren(key); ok {
		childNode.Children = cached
		return
	}
	c.pool.putChildren(key, childNode.Children)

	c.nodes.push(childNode)
	c.process(descriptorResult.Dependencies, childRepos, childSelector, childManager, childTraverser, childFilter)
	c.nodes.pop()
}

// effectiveRepositories implements the per-version repository computation
// from section 4.3.c: a singleton list when the version came from a known
// RemoteRepository, an empty list for any other known repository, or the
// ambient list when the source repository is unknown.
func effectiveRepositories(rr *VersionRangeResult, v Version, ambient []Repository) []Repository {
	repo := rr.RepositoryFor(v)
	if repo == nil {
		return ambient
	}
	if remote, ok := repo.(RemoteRepository); ok {
		return []Repository{remote}
	}
	return []Repository{}
}
