package depcollect

import "strings"

// DependencyCycle records a detected cycle: the ancestor path from the
// closing-point to the top of the stack, plus the dependency whose
// coordinate matched an ancestor.
type DependencyCycle struct {
	Path       []*DependencyNode
	Dependency Dependency
}

// CollectResult is the outcome of a Collect call: the resulting graph (which
// may be partial on failure) plus any exceptions and cycles recorded along
// the way.
type CollectResult struct {
	Request    CollectRequest
	Root       *DependencyNode
	Exceptions []error
	Cycles     []DependencyCycle
}

// resultsAccumulator implements the bounded error/cycle collection and
// first-error-path tracking described in section 4.9.
type resultsAccumulator struct {
	result        *CollectResult
	maxExceptions int
	maxCycles     int
	errorPath     string
}

func newResultsAccumulator(result *CollectResult, maxExceptions, maxCycles int) *resultsAccumulator {
	return &resultsAccumulator{result: result, maxExceptions: maxExceptions, maxCycles: maxCycles}
}

// addException records err against dep's position on nodes, subject to the
// maxExceptions bound. The first recorded exception fixes errorPath for the
// life of the call.
func (r *resultsAccumulator) addException(dep Dependency, err error, nodes *nodeStack) {
	if r.maxExceptions >= 0 && len(r.result.Exceptions) >= r.maxExceptions {
		return
	}
	r.result.Exceptions = append(r.result.Exceptions, err)
	if r.errorPath != "" {
		return
	}
	var b strings.Builder
	for i := 0; i < nodes.size(); i++ {
		if d := nodes.get(i).Dependency; d != nil {
			if b.Len() > 0 {
				b.WriteString(" -> ")
			}
			b.WriteString(d.Artifact.String())
		}
	}
	if b.Len() > 0 {
		b.WriteString(" -> ")
	}
	b.WriteString(dep.Artifact.String())
	r.errorPath = b.String()
}

// addCycle records a cycle closing at dep, with the ancestor path running
// from entry (inclusive) to the top of nodes, subject to the maxCycles
// bound.
func (r *resultsAccumulator) addCycle(nodes *nodeStack, entry int, dep Dependency) {
	if r.maxCycles >= 0 && len(r.result.Cycles) >= r.maxCycles {
		return
	}
	path := make([]*DependencyNode, 0, nodes.size()-entry)
	for i := entry; i < nodes.size(); i++ {
		path = append(path, nodes.get(i))
	}
	r.result.Cycles = append(r.result.Cycles, DependencyCycle{Path: path, Dependency: dep})
}

// finish applies section 4.9's final decision: fail citing errorPath if one
// was recorded, else fail with the collected exceptions if any were
// recorded without establishing a path, else succeed.
func (r *resultsAccumulator) finish() error {
	if r.errorPath != "" {
		return &CollectionError{Result: r.result, ErrorPath: r.errorPath}
	}
	if len(r.result.Exceptions) > 0 {
		return &CollectionError{Result: r.result}
	}
	return nil
}
