// Package conflict provides a nearest-wins GraphTransformer: a reference
// conflict resolution pass a caller can plug into a Session after
// collection completes. It runs after Collect returns a finished graph, so
// the concurrency it uses internally doesn't touch the single-threaded
// collection core.
package conflict

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"

	depcollect "github.com/arborist-dev/depcollect"
)

// Transformer implements nearest-wins, highest-version-tiebreak conflict
// resolution: among all nodes sharing the same artifact coordinate, the
// shallowest occurrence survives with its subtree intact (ties broken by
// the higher version); every other occurrence of that coordinate becomes a
// leaf in the transformed graph.
type Transformer struct{}

type occurrence struct {
	node  *depcollect.DependencyNode
	depth int
}

// TransformGraph implements depcollect.GraphTransformer.
func (Transformer) TransformGraph(root *depcollect.DependencyNode, txCtx *depcollect.TransformationContext) (*depcollect.DependencyNode, error) {
	byCoordinate := map[depcollect.ArtifactCoordinate][]occurrence{}
	for n, depth := range breadthFirst(root) {
		coord := n.Artifact().Coordinate()
		byCoordinate[coord] = append(byCoordinate[coord], occurrence{node: n, depth: depth})
	}

	winners := make(map[depcollect.ArtifactCoordinate]*depcollect.DependencyNode, len(byCoordinate))
	var mu sync.Mutex
	var grp errgroup.Group
	for coord, occs := range byCoordinate {
		coord, occs := coord, occs
		grp.Go(func() error {
			winner := pickWinner(occs)
			mu.Lock()
			winners[coord] = winner
			mu.Unlock()
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	winnerSet := mapset.NewThreadUnsafeSet[*depcollect.DependencyNode]()
	for _, n := range winners {
		winnerSet.Add(n)
	}
	if txCtx != nil && txCtx.Stats != nil {
		txCtx.Stats["conflict.coordinates"] = len(byCoordinate)
	}

	return rebuild(root, winnerSet, map[*depcollect.DependencyNode]*depcollect.DependencyNode{}), nil
}

// breadthFirst yields every node reachable from root exactly once, paired
// with the shallowest depth at which it was reached, in BFS order.
func breadthFirst(root *depcollect.DependencyNode) func(yield func(*depcollect.DependencyNode, int) bool) {
	return func(yield func(*depcollect.DependencyNode, int) bool) {
		depth := map[*depcollect.DependencyNode]int{root: 0}
		queue := []*depcollect.DependencyNode{root}
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			if !yield(n, depth[n]) {
				return
			}
			if n.Children == nil {
				continue
			}
			for _, child := range n.Children.Nodes {
				if _, seen := depth[child]; seen {
					continue
				}
				depth[child] = depth[n] + 1
				queue = append(queue, child)
			}
		}
	}
}

func pickWinner(occs []occurrence) *depcollect.DependencyNode {
	best := occs[0]
	for _, c := range occs[1:] {
		switch {
		case c.depth < best.depth:
			best = c
		case c.depth == best.depth && higherVersion(c.node, best.node):
			best = c
		}
	}
	return best.node
}

func higherVersion(a, b *depcollect.DependencyNode) bool {
	if a.Version == nil || b.Version == nil {
		return false
	}
	return a.Version.Compare(b.Version) > 0
}

// rebuild copies n. A winning node's subtree is copied recursively; every
// other occurrence of a contested coordinate becomes a leaf. seen memoizes
// copies so a node shared via a cycle or subtree reuse is copied once.
func rebuild(n *depcollect.DependencyNode, winners mapset.Set[*depcollect.DependencyNode], seen map[*depcollect.DependencyNode]*depcollect.DependencyNode) *depcollect.DependencyNode {
	if copied, ok := seen[n]; ok {
		return copied
	}
	copied := new(depcollect.DependencyNode)
	*copied = *n
	seen[n] = copied

	if !winners.Contains(n) || n.Children == nil {
		copied.Children = &depcollect.ChildrenList{}
		return copied
	}
	copied.Children = &depcollect.ChildrenList{Nodes: make([]*depcollect.DependencyNode, len(n.Children.Nodes))}
	for i, child := range n.Children.Nodes {
		copied.Children.Nodes[i] = rebuild(child, winners, seen)
	}
	return copied
}
