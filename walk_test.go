package depcollect

import (
	"slices"
	"testing"
)

func node(id string) *DependencyNode {
	dep := NewDependency(Artifact{Group: "g", ID: id, Version: "1.0"})
	return &DependencyNode{Dependency: &dep, Children: newChildrenList()}
}

func TestWalkDependencyNodeVisitsEachNodeOnce(t *testing.T) {
	root, a, b, c := node("root"), node("a"), node("b"), node("c")
	root.Children.append(a)
	root.Children.append(b)
	a.Children.append(c)
	b.Children.append(c) // c is reachable via two paths

	visited := map[string]int{}
	err := WalkDependencyNode(root, func(n *DependencyNode) (bool, error) {
		visited[n.Dependency.Artifact.ID]++
		return true, nil
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for id, count := range visited {
		if count != 1 {
			t.Errorf("node %q visited %d times, want 1", id, count)
		}
	}
	if len(visited) != 4 {
		t.Errorf("expected 4 distinct nodes visited, got %d: %v", len(visited), visited)
	}
}

func TestWalkDependencyNodeEdgeVisitRunsAfterBothEndpoints(t *testing.T) {
	root, a := node("root"), node("a")
	root.Children.append(a)

	var rootVisited, nodeVisited, edgeVisited bool
	err := WalkDependencyNode(root,
		func(n *DependencyNode) (bool, error) {
			if n == root {
				rootVisited = true
			}
			if n == a {
				nodeVisited = true
			}
			return true, nil
		},
		func(p, c *DependencyNode) error {
			if p == root && !rootVisited {
				t.Error("edge visit for root->a ran before root's own node visit completed")
			}
			if c == a && !nodeVisited {
				t.Error("edge visit for root->a ran before a's own node visit completed")
			}
			edgeVisited = true
			return nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !edgeVisited {
		t.Error("expected the root->a edge to be visited")
	}
}

func TestAllDependencyNodesSharedChildrenCycle(t *testing.T) {
	root, a := node("root"), node("a")
	root.Children.append(a)
	a.Children = root.Children // a closes a cycle back through root's own children list

	all := slices.Collect(AllDependencyNodes(root))
	if len(all) != 2 {
		t.Fatalf("expected 2 distinct nodes despite the cycle, got %d", len(all))
	}
}
