// Package satresolve provides a SAT-encoded GraphTransformer: for every
// artifact coordinate that occurs more than once in a collected graph, it
// builds an "exactly one of N" Boolean constraint over the occurrences and
// asks a SAT solver for a selection that minimizes the number of
// lower-than-highest versions chosen. Coordinates with only one occurrence
// need no solver involvement and are automatic winners.
package satresolve

import (
	"fmt"
	"sort"

	"github.com/crillab/gophersat/solver"

	depcollect "github.com/arborist-dev/depcollect"
)

// Transformer resolves version conflicts with a SAT solver instead of the
// simple nearest-wins heuristic in transform/conflict.
type Transformer struct{}

func (Transformer) TransformGraph(root *depcollect.DependencyNode, txCtx *depcollect.TransformationContext) (*depcollect.DependencyNode, error) {
	byCoordinate := map[depcollect.ArtifactCoordinate][]*depcollect.DependencyNode{}
	for n := range breadthFirst(root) {
		coord := n.Artifact().Coordinate()
		byCoordinate[coord] = append(byCoordinate[coord], n)
	}

	winners := map[depcollect.ArtifactCoordinate]*depcollect.DependencyNode{}
	contested := map[depcollect.ArtifactCoordinate][]*depcollect.DependencyNode{}
	for coord, occs := range byCoordinate {
		if len(occs) == 1 {
			winners[coord] = occs[0]
			continue
		}
		contested[coord] = occs
	}

	if len(contested) > 0 {
		solved, err := solveContested(contested)
		if err != nil {
			return nil, err
		}
		for coord, n := range solved {
			winners[coord] = n
		}
	}

	if txCtx != nil && txCtx.Stats != nil {
		txCtx.Stats["satresolve.contestedCoordinates"] = len(contested)
	}

	winnerSet := map[*depcollect.DependencyNode]bool{}
	for _, n := range winners {
		winnerSet[n] = true
	}
	return rebuild(root, winnerSet, map[*depcollect.DependencyNode]*depcollect.DependencyNode{}), nil
}

// solveContested builds one SAT variable per occurrence across every
// contested coordinate, constrains each coordinate's occurrences to
// "exactly one selected", and minimizes a cost function that favors higher
// versions: within a coordinate's occurrences sorted ascending, the
// occurrence at rank r from the top costs r, so the solver prefers the
// newest version whenever the constraints allow a choice.
func solveContested(contested map[depcollect.ArtifactCoordinate][]*depcollect.DependencyNode) (map[depcollect.ArtifactCoordinate]*depcollect.DependencyNode, error) {
	var vars []*depcollect.DependencyNode
	var coords []depcollect.ArtifactCoordinate
	groupVars := map[depcollect.ArtifactCoordinate][]int{}
	weights := map[int]int{}

	for coord, occs := range contested {
		sorted := append([]*depcollect.DependencyNode(nil), occs...)
		sort.Slice(sorted, func(i, j int) bool { return compareVersions(sorted[i], sorted[j]) < 0 })
		n := len(sorted)
		for rankFromTop, node := range sorted {
			// sorted is ascending; rank-from-top 0 is the newest version.
			rank := n - 1 - rankFromTop
			idx := len(vars)
			vars = append(vars, node)
			coords = append(coords, coord)
			groupVars[coord] = append(groupVars[coord], idx)
			weights[idx] = rank
		}
	}

	constrs := make([]solver.PBConstr, 0, len(groupVars))
	for _, idxs := range groupVars {
		// Constraint literals are numbered from 1: variable idx is literal
		// idx+1, matching solver.Var(idx).Lit() below.
		lits := make([]int, len(idxs))
		for j, idx := range idxs {
			lits[j] = idx + 1
		}
		// "exactly one": an AtMost cardinality constraint plus a plain clause
		// (at least one of lits is true).
		constrs = append(constrs, solver.AtMost(lits, 1), solver.PropClause(lits...))
	}
	prob := solver.ParsePBConstrs(constrs)

	lits := make([]solver.Lit, len(vars))
	costs := make([]int, len(vars))
	for i := range vars {
		lits[i] = solver.Var(i).Lit()
		costs[i] = weights[i]
	}
	prob.SetCostFunc(lits, costs)

	s := solver.New(prob)
	if cost := s.Minimize(); cost < 0 {
		return nil, fmt.Errorf("satresolve: no selection satisfies the collected graph's coordinate constraints")
	}
	model := s.Model()

	winners := make(map[depcollect.ArtifactCoordinate]*depcollect.DependencyNode, len(groupVars))
	for i, selected := range model {
		if selected {
			winners[coords[i]] = vars[i]
		}
	}
	return winners, nil
}

func compareVersions(a, b *depcollect.DependencyNode) int {
	if a.Version == nil || b.Version == nil {
		return 0
	}
	return a.Version.Compare(b.Version)
}

func breadthFirst(root *depcollect.DependencyNode) func(yield func(*depcollect.DependencyNode) bool) {
	return func(yield func(*depcollect.DependencyNode) bool) {
		seen := map[*depcollect.DependencyNode]bool{root: true}
		queue := []*depcollect.DependencyNode{root}
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			if !yield(n) {
				return
			}
			if n.Children == nil {
				continue
			}
			for _, child := range n.Children.Nodes {
				if seen[child] {
					continue
				}
				seen[child] = true
				queue = append(queue, child)
			}
		}
	}
}

func rebuild(n *depcollect.DependencyNode, winners map[*depcollect.DependencyNode]bool, seen map[*depcollect.DependencyNode]*depcollect.DependencyNode) *depcollect.DependencyNode {
	if copied, ok := seen[n]; ok {
		return copied
	}
	copied := new(depcollect.DependencyNode)
	*copied = *n
	seen[n] = copied

	if !winners[n] || n.Children == nil {
		copied.Children = &depcollect.ChildrenList{}
		return copied
	}
	copied.Children = &depcollect.ChildrenList{Nodes: make([]*depcollect.DependencyNode, len(n.Children.Nodes))}
	for i, child := range n.Children.Nodes {
		copied.Children.Nodes[i] = rebuild(child, winners, seen)
	}
	return copied
}
