package depcollect

import "fmt"

// filterVersions implements the version filter driver (section 4.8): it
// fails on an empty range result, invokes filter only when the constraint is
// a genuine range (not a single pinned version), and fails again if nothing
// survives. ctx is reused across calls within one collection run.
func filterVersions(ctx *VersionFilterContext, dep Dependency, rr *VersionRangeResult, filter VersionFilter) ([]Version, error) {
	if len(rr.Versions) == 0 {
		return nil, fmt.Errorf("no versions available for %s", dep.Artifact)
	}
	if filter == nil || !rr.VersionConstraint.IsRange {
		return rr.Versions, nil
	}
	ctx.reset(dep, rr)
	if err := filter.FilterVersions(ctx); err != nil {
		return nil, err
	}
	survivors := ctx.Versions()
	if len(survivors) == 0 {
		return nil, fmt.Errorf("no acceptable versions for %s", dep.Artifact)
	}
	return survivors, nil
}
