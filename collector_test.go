package depcollect_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	depcollect "github.com/arborist-dev/depcollect"
	"github.com/arborist-dev/depcollect/internal/test/fakeregistry"
	"github.com/arborist-dev/depcollect/policy/defaultpolicy"
	"github.com/arborist-dev/depcollect/transform/conflict"
)

func newTestSession(reg *fakeregistry.TestRegistry) *depcollect.Session {
	session := depcollect.NewSession()
	session.DescriptorReader = reg
	session.VersionRangeResolver = reg.Resolver()
	session.Selector = defaultpolicy.Selector{}
	session.Manager = defaultpolicy.Manager{}
	session.Traverser = defaultpolicy.Traverser{}
	session.VersionFilter = defaultpolicy.VersionFilter{}
	return session
}

func TestCollectDiamondDependency(t *testing.T) {
	reg := fakeregistry.NewTestRegistry(t).
		Add(fakeregistry.Coordinate("g:root:1.0"), fakeregistry.Require("g:a:1.0", "compile"), fakeregistry.Require("g:b:1.0", "compile")).
		Add(fakeregistry.Coordinate("g:a:1.0"), fakeregistry.Require("g:c:1.0", "compile")).
		Add(fakeregistry.Coordinate("g:b:1.0"), fakeregistry.Require("g:c:1.0", "compile")).
		Add(fakeregistry.Coordinate("g:c:1.0"))

	session := newTestSession(reg)
	root := depcollect.NewDependency(depcollect.Artifact{Group: "g", ID: "root", Version: "1.0"})
	result, err := depcollect.Collect(context.Background(), session, depcollect.CollectRequest{Root: &root})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if got := len(result.Root.Children.Nodes); got != 2 {
		t.Fatalf("expected root to have 2 children, got %d", got)
	}
	for _, child := range result.Root.Children.Nodes {
		if got := len(child.Children.Nodes); got != 1 {
			t.Errorf("expected %s to have 1 child, got %d", child.Dependency.Artifact.ID, got)
			continue
		}
		grandchild := child.Children.Nodes[0]
		if grandchild.Dependency.Artifact.ID != "c" {
			t.Errorf("expected %s's child to be c, got %s", child.Dependency.Artifact.ID, grandchild.Dependency.Artifact.ID)
		}
	}
	a := result.Root.Children.Nodes[0]
	b := result.Root.Children.Nodes[1]
	if a.Children.Nodes[0] == b.Children.Nodes[0] {
		t.Error("expected the two occurrences of c to be distinct node instances in the raw graph")
	}
}

// TestCollectDiamondDependencyIsDeterministic runs the same diamond-shaped
// collection twice against independently built fixtures and checks the
// flattened (depth-first, in child order) coordinate sequence comes back
// identical both times.
func TestCollectDiamondDependencyIsDeterministic(t *testing.T) {
	collectCoordinates := func() []string {
		reg := fakeregistry.NewTestRegistry(t).
			Add(fakeregistry.Coordinate("g:root:1.0"), fakeregistry.Require("g:a:1.0", "compile"), fakeregistry.Require("g:b:1.0", "compile")).
			Add(fakeregistry.Coordinate("g:a:1.0"), fakeregistry.Require("g:c:1.0", "compile")).
			Add(fakeregistry.Coordinate("g:b:1.0"), fakeregistry.Require("g:c:1.0", "compile")).
			Add(fakeregistry.Coordinate("g:c:1.0"))

		session := newTestSession(reg)
		root := depcollect.NewDependency(depcollect.Artifact{Group: "g", ID: "root", Version: "1.0"})
		result, err := depcollect.Collect(context.Background(), session, depcollect.CollectRequest{Root: &root})
		if err != nil {
			t.Fatalf("Collect: %v", err)
		}
		var coords []string
		var visit func(n *depcollect.DependencyNode)
		visit = func(n *depcollect.DependencyNode) {
			coords = append(coords, n.Artifact().String())
			for _, child := range n.Children.Nodes {
				visit(child)
			}
		}
		visit(result.Root)
		return coords
	}

	first, second := collectCoordinates(), collectCoordinates()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("two independent collections of the same graph produced different coordinate sequences:\n%s", diff)
	}
}

func TestCollectCycleDetectionRelinksSharedChildren(t *testing.T) {
	reg := fakeregistry.NewTestRegistry(t).
		Add(fakeregistry.Coordinate("g:a:1.0"), fakeregistry.Require("g:b:1.0", "compile")).
		Add(fakeregistry.Coordinate("g:b:1.0"), fakeregistry.Require("g:a:1.0", "compile"))

	session := newTestSession(reg)
	root := depcollect.NewDependency(depcollect.Artifact{Group: "g", ID: "a", Version: "1.0"})
	result, err := depcollect.Collect(context.Background(), session, depcollect.CollectRequest{Root: &root})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if len(result.Cycles) != 1 {
		t.Fatalf("expected exactly 1 recorded cycle, got %d", len(result.Cycles))
	}
	if len(result.Root.Children.Nodes) != 1 || result.Root.Children.Nodes[0].Dependency.Artifact.ID != "b" {
		t.Fatalf("expected root(a) to have exactly one child b, got %+v", result.Root.Children.Nodes)
	}
	nodeB := result.Root.Children.Nodes[0]
	if len(nodeB.Children.Nodes) != 1 || nodeB.Children.Nodes[0].Dependency.Artifact.ID != "a" {
		t.Fatalf("expected b to have exactly one child closing the cycle back to a, got %+v", nodeB.Children.Nodes)
	}
	cycleNode := nodeB.Children.Nodes[0]
	if cycleNode.Children != result.Root.Children {
		t.Error("expected the cycle-closing node to share the root's *ChildrenList pointer, not a copy")
	}
}

func TestCollectRelocationChain(t *testing.T) {
	reg := fakeregistry.NewTestRegistry(t).
		Add(fakeregistry.Coordinate("g:root:1.0"), fakeregistry.Require("g:old:1.0", "compile")).
		Add(fakeregistry.Coordinate("g:old:1.0"), fakeregistry.Relocate("g:new:1.0")).
		Add(fakeregistry.Coordinate("g:new:1.0"), fakeregistry.Require("g:leaf:1.0", "compile")).
		Add(fakeregistry.Coordinate("g:leaf:1.0"))

	session := newTestSession(reg)
	root := depcollect.NewDependency(depcollect.Artifact{Group: "g", ID: "root", Version: "1.0"})
	result, err := depcollect.Collect(context.Background(), session, depcollect.CollectRequest{Root: &root})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if len(result.Root.Children.Nodes) != 1 {
		t.Fatalf("expected exactly one node for the relocated requirement, got %d", len(result.Root.Children.Nodes))
	}
	child := result.Root.Children.Nodes[0]
	if child.Dependency.Artifact.ID != "new" {
		t.Fatalf("expected the relocated dependency to resolve to 'new', got %q", child.Dependency.Artifact.ID)
	}
	if len(child.Relocations) != 1 || child.Relocations[0].ID != "old" {
		t.Fatalf("expected the node to record its relocation predecessor 'old', got %+v", child.Relocations)
	}
	if len(child.Children.Nodes) != 1 || child.Children.Nodes[0].Dependency.Artifact.ID != "leaf" {
		t.Fatalf("expected the relocated artifact's own dependency (leaf) to still be collected, got %+v", child.Children.Nodes)
	}
}

func TestCollectVersionRangeSelectsEachSurvivor(t *testing.T) {
	reg := fakeregistry.NewTestRegistry(t).
		Add(fakeregistry.Coordinate("g:root:1.0"), fakeregistry.Require("g:c:[1.0,2.0)", "compile")).
		Add(fakeregistry.Coordinate("g:c:1.0")).
		Add(fakeregistry.Coordinate("g:c:1.5")).
		Add(fakeregistry.Coordinate("g:c:2.0"))

	session := newTestSession(reg)
	root := depcollect.NewDependency(depcollect.Artifact{Group: "g", ID: "root", Version: "1.0"})
	result, err := depcollect.Collect(context.Background(), session, depcollect.CollectRequest{Root: &root})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	children := result.Root.Children.Nodes
	if len(children) != 2 {
		t.Fatalf("expected the exclusive-upper-bound range to admit 2 versions, got %d: %+v", len(children), children)
	}
	versions := map[string]bool{}
	for _, c := range children {
		versions[c.Version.String()] = true
	}
	if !versions["1.0"] || !versions["1.5"] {
		t.Errorf("expected versions 1.0 and 1.5 to survive, got %v", versions)
	}
	if versions["2.0"] {
		t.Error("expected version 2.0 to be excluded by the range's exclusive upper bound")
	}
}

func TestCollectBoundsExceptionsAcrossFailedDependencies(t *testing.T) {
	reg := fakeregistry.NewTestRegistry(t).
		Add(fakeregistry.Coordinate("g:root:1.0"),
			fakeregistry.Require("g:missing1:1.0", "compile"),
			fakeregistry.Require("g:missing2:1.0", "compile"),
			fakeregistry.Require("g:missing3:1.0", "compile"),
			fakeregistry.Require("g:missing4:1.0", "compile"),
			fakeregistry.Require("g:missing5:1.0", "compile"))

	session := newTestSession(reg)
	session.MaxExceptions = 2
	root := depcollect.NewDependency(depcollect.Artifact{Group: "g", ID: "root", Version: "1.0"})
	result, err := depcollect.Collect(context.Background(), session, depcollect.CollectRequest{Root: &root})

	if err == nil {
		t.Fatal("expected Collect to report an error after unresolvable dependencies")
	}
	var collErr *depcollect.CollectionError
	if !errors.As(err, &collErr) {
		t.Fatalf("expected a *depcollect.CollectionError, got %T", err)
	}
	if len(result.Exceptions) != 2 {
		t.Errorf("expected exceptions bounded to MaxExceptions=2, got %d", len(result.Exceptions))
	}
	if len(result.Root.Children.Nodes) != 0 {
		t.Errorf("expected none of the unresolvable dependencies to produce a node, got %d", len(result.Root.Children.Nodes))
	}
}

// managedVersionManager overrides the version of any dependency matching one
// of its tracked (group, id) pairs, the way a BOM-style dependency management
// declaration does.
type managedVersionManager struct {
	managed []depcollect.Dependency
}

func (m managedVersionManager) ManageDependency(dep depcollect.Dependency) *depcollect.DependencyManagement {
	for _, md := range m.managed {
		if md.Artifact.Group == dep.Artifact.Group && md.Artifact.ID == dep.Artifact.ID {
			v := md.Artifact.Version
			return &depcollect.DependencyManagement{Version: &v}
		}
	}
	return nil
}

func (m managedVersionManager) DeriveChildManager(ctx depcollect.CollectionContext) depcollect.DependencyManager {
	if len(ctx.ManagedDependencies) == 0 {
		return m
	}
	return managedVersionManager{managed: ctx.ManagedDependencies}
}

func TestCollectDependencyManagementOverridesVersion(t *testing.T) {
	reg := fakeregistry.NewTestRegistry(t).
		Add(fakeregistry.Coordinate("g:root:1.0"), fakeregistry.Require("g:c:1.0", "compile")).
		Add(fakeregistry.Coordinate("g:c:2.0"))

	session := newTestSession(reg)
	session.Manager = managedVersionManager{}
	root := depcollect.NewDependency(depcollect.Artifact{Group: "g", ID: "root", Version: "1.0"})
	managedDep := depcollect.NewDependency(depcollect.Artifact{Group: "g", ID: "c", Version: "2.0"})
	result, err := depcollect.Collect(context.Background(), session, depcollect.CollectRequest{
		Root:                &root,
		ManagedDependencies: []depcollect.Dependency{managedDep},
	})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if len(result.Root.Children.Nodes) != 1 {
		t.Fatalf("expected exactly one child, got %d", len(result.Root.Children.Nodes))
	}
	child := result.Root.Children.Nodes[0]
	if child.Version.String() != "2.0" {
		t.Errorf("expected management to override c's version to 2.0, got %s", child.Version.String())
	}
	if !child.ManagedBits.Has(depcollect.ManagedVersion) {
		t.Error("expected ManagedBits to record the version override")
	}
}

// erroringDescriptorReader always fails, independent of whatever backs
// version-range resolution.
type erroringDescriptorReader struct{}

func (erroringDescriptorReader) ReadArtifactDescriptor(ctx context.Context, session *depcollect.Session, req depcollect.ArtifactDescriptorRequest) (*depcollect.ArtifactDescriptorResult, error) {
	return nil, fmt.Errorf("simulated descriptor fetch failure")
}

// TestCollectRootDescriptorFetchFailureAborts checks that a root-level
// descriptor fetch failure aborts collection outright, rather than falling
// through to build a root node from the request's own dependency list.
func TestCollectRootDescriptorFetchFailureAborts(t *testing.T) {
	reg := fakeregistry.NewTestRegistry(t).Add(fakeregistry.Coordinate("g:root:1.0"))
	session := newTestSession(reg)
	session.DescriptorReader = erroringDescriptorReader{}
	root := depcollect.NewDependency(depcollect.Artifact{Group: "g", ID: "root", Version: "1.0"})
	result, err := depcollect.Collect(context.Background(), session, depcollect.CollectRequest{Root: &root})

	if err == nil {
		t.Fatal("expected Collect to report an error after the root's descriptor fetch failed")
	}
	var collErr *depcollect.CollectionError
	if !errors.As(err, &collErr) {
		t.Fatalf("expected a *depcollect.CollectionError, got %T", err)
	}
	if result.Root != nil {
		t.Errorf("expected collection to abort without building a root node, got %+v", result.Root)
	}
	if len(result.Exceptions) != 1 {
		t.Errorf("expected exactly one recorded exception, got %d", len(result.Exceptions))
	}
}

// TestCollectTransformSkippedAfterRootFailure checks that a configured
// GraphTransformer is never invoked once a root-level failure has left
// result.Root nil — TransformGraph would otherwise be handed a nil root.
func TestCollectTransformSkippedAfterRootFailure(t *testing.T) {
	reg := fakeregistry.NewTestRegistry(t).Add(fakeregistry.Coordinate("g:root:1.0"))
	session := newTestSession(reg)
	session.DescriptorReader = erroringDescriptorReader{}
	session.Transformer = conflict.Transformer{}
	root := depcollect.NewDependency(depcollect.Artifact{Group: "g", ID: "root", Version: "1.0"})

	result, err := depcollect.Collect(context.Background(), session, depcollect.CollectRequest{Root: &root})
	if err == nil {
		t.Fatal("expected Collect to report an error after the root's descriptor fetch failed")
	}
	if result.Root != nil {
		t.Errorf("expected no root node, got %+v", result.Root)
	}
}
