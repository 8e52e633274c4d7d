package depcollect

// premanagedDependency applies a DependencyManagement override to a raw
// dependency and records what was overridden so the node can later carry
// both the managed form and (when verbose) the pre-management originals.
type premanagedDependency struct {
	managedDependency Dependency
	managedBits       ManagedBits

	premanagedVersion  *string
	premanagedScope    *string
	premanagedOptional *OptionalFlag
}

// createPremanagedDependency applies, in order, version (unless disabled),
// properties, scope, optional, and exclusions overrides from mgmt (if any)
// onto dep.
func createPremanagedDependency(mgmt *DependencyManagement, dep Dependency, disableVersionManagement, verbose bool) premanagedDependency {
	p := premanagedDependency{managedDependency: dep}
	if mgmt == nil {
		return p
	}
	if !disableVersionManagement && mgmt.Version != nil {
		if verbose {
			orig := dep.Artifact.Version
			p.premanagedVersion = &orig
		}
		p.managedDependency.Artifact = p.managedDependency.Artifact.WithVersion(*mgmt.Version)
		p.managedBits |= ManagedVersion
	}
	if mgmt.Properties != nil {
		p.managedDependency.Artifact = p.managedDependency.Artifact.WithProperties(mgmt.Properties)
		p.managedBits |= ManagedProperties
	}
	if mgmt.Scope != nil {
		if verbose {
			orig := dep.Scope
			p.premanagedScope = &orig
		}
		p.managedDependency.Scope = *mgmt.Scope
		p.managedBits |= ManagedScope
	}
	if mgmt.Optional != nil {
		if verbose {
			orig := dep.Optional
			p.premanagedOptional = &orig
		}
		p.managedDependency.Optional = *mgmt.Optional
		p.managedBits |= ManagedOptional
	}
	if mgmt.Exclusions != nil {
		p.managedDependency.Exclusions = cloneExclusions(mgmt.Exclusions)
		p.managedBits |= ManagedExclusions
	}
	return p
}

// applyTo writes p's managed bits onto node and, when verbose, attaches the
// premanaged originals.
func (p premanagedDependency) applyTo(node *DependencyNode, verbose bool) {
	node.ManagedBits = p.managedBits
	if !verbose {
		return
	}
	node.PremanagedVersion = p.premanagedVersion
	node.PremanagedScope = p.premanagedScope
	node.PremanagedOptional = p.premanagedOptional
}
