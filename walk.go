package depcollect

import (
	"context"
	"errors"
	"iter"
)

// nodeEdges yields a node's children as a same-typed iter.Seq2, the shape
// walkGraph needs. The edge color carries no information; it is always
// struct{}{}.
func nodeEdges(n *DependencyNode) iter.Seq2[*DependencyNode, struct{}] {
	return func(yield func(*DependencyNode, struct{}) bool) {
		if n.Children == nil {
			return
		}
		for _, child := range n.Children.Nodes {
			if !yield(child, struct{}{}) {
				return
			}
		}
	}
}

// walkDependencyNode matches walkGraphFn's shape so it can be passed to
// allNodes; there is no separate graph handle distinct from the start node,
// so g is unused.
func walkDependencyNode(ctx context.Context, g *DependencyNode, start *DependencyNode,
	nodeVisit func(ctx context.Context, n *DependencyNode) (bool, error),
	edgeVisit func(ctx context.Context, parent, child *DependencyNode, color struct{}) error) error {

	var wrappedEdgeVisit func(ctx context.Context, p, m *DependencyNode, color struct{}) error
	if edgeVisit != nil {
		wrappedEdgeVisit = func(ctx context.Context, p, m *DependencyNode, color struct{}) error {
			return edgeVisit(ctx, p, m, color)
		}
	}
	return walkGraph(ctx, start, nodeVisit, nil, nodeEdges, wrappedEdgeVisit)
}

// WalkDependencyNode visits every node reachable from start exactly once,
// in topological order: a node's visit callback always completes before any
// edgeVisit call naming it as a parent runs. Either callback may be nil.
//
// nodeVisit's return value controls whether the walk descends into that
// node's children; a nil nodeVisit defaults to true.
//
// Nodes and edges are visited concurrently except for the ordering
// guarantee above. If any callback returns a non-nil error, the walk stops
// and that error (the first one encountered) is returned. Because the
// underlying graph is cyclic (see DependencyNode.Children sharing), a node
// reached by more than one path is visited only once; subsequent arrivals
// at it still produce an edgeVisit call.
func WalkDependencyNode(start *DependencyNode,
	nodeVisit func(n *DependencyNode) (bool, error),
	edgeVisit func(parent, child *DependencyNode) error) error {

	var wrappedNodeVisit func(ctx context.Context, n *DependencyNode) (bool, error)
	if nodeVisit != nil {
		wrappedNodeVisit = func(ctx context.Context, n *DependencyNode) (bool, error) { return nodeVisit(n) }
	}
	var wrappedEdgeVisit func(ctx context.Context, p, m *DependencyNode, color struct{}) error
	if edgeVisit != nil {
		wrappedEdgeVisit = func(ctx context.Context, p, m *DependencyNode, color struct{}) error { return edgeVisit(p, m) }
	}
	return walkDependencyNode(context.Background(), start, start, wrappedNodeVisit, wrappedEdgeVisit)
}

// AllDependencyNodes walks the graph rooted at root and yields every node
// reached, in topological order, each exactly once.
func AllDependencyNodes(root *DependencyNode) iter.Seq[*DependencyNode] {
	nodes, done := allNodes(context.Background(), root, root, walkDependencyNode)
	return func(yield func(*DependencyNode) bool) {
		defer func() {
			if err := done(); err != nil {
				panic(errors.New("bug: dependency node walk should never return an error"))
			}
		}()
		for n := range nodes {
			if !yield(n) {
				return
			}
		}
	}
}
