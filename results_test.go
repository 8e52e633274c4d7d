package depcollect

import (
	"errors"
	"testing"
)

func TestResultsAccumulatorBoundsExceptions(t *testing.T) {
	result := &CollectResult{}
	acc := newResultsAccumulator(result, 2, -1)
	nodes := newNodeStack()
	nodes.push(&DependencyNode{})
	for i := 0; i < 5; i++ {
		acc.addException(NewDependency(Artifact{Group: "g", ID: "a", Version: "1.0"}), errors.New("boom"), nodes)
	}
	if len(result.Exceptions) != 2 {
		t.Errorf("expected exceptions bounded to 2, got %d", len(result.Exceptions))
	}
}

func TestResultsAccumulatorErrorPathFixedOnFirstException(t *testing.T) {
	result := &CollectResult{}
	acc := newResultsAccumulator(result, -1, -1)
	nodes := newNodeStack()
	root := NewDependency(Artifact{Group: "g", ID: "root", Version: "1.0"})
	nodes.push(&DependencyNode{Dependency: &root})

	first := NewDependency(Artifact{Group: "g", ID: "first", Version: "1.0"})
	acc.addException(first, errors.New("first failure"), nodes)
	firstPath := acc.errorPath

	second := NewDependency(Artifact{Group: "g", ID: "second", Version: "1.0"})
	acc.addException(second, errors.New("second failure"), nodes)

	if acc.errorPath != firstPath {
		t.Errorf("errorPath changed after the first exception: %q -> %q", firstPath, acc.errorPath)
	}
	want := root.Artifact.String() + " -> " + first.Artifact.String()
	if firstPath != want {
		t.Errorf("errorPath = %q, want %q", firstPath, want)
	}
}

func TestResultsAccumulatorSkipsNilDependencyFrames(t *testing.T) {
	result := &CollectResult{}
	acc := newResultsAccumulator(result, -1, -1)
	nodes := newNodeStack()
	nodes.push(&DependencyNode{}) // synthetic root, no Dependency
	dep := NewDependency(Artifact{Group: "g", ID: "a", Version: "1.0"})
	acc.addException(dep, errors.New("boom"), nodes)
	if acc.errorPath != dep.Artifact.String() {
		t.Errorf("expected error path to skip the nil-Dependency frame, got %q", acc.errorPath)
	}
}

func TestResultsAccumulatorBoundsCycles(t *testing.T) {
	result := &CollectResult{}
	acc := newResultsAccumulator(result, -1, 1)
	nodes := newNodeStack()
	nodes.push(&DependencyNode{})
	dep := NewDependency(Artifact{Group: "g", ID: "a", Version: "1.0"})
	acc.addCycle(nodes, 0, dep)
	acc.addCycle(nodes, 0, dep)
	if len(result.Cycles) != 1 {
		t.Errorf("expected cycles bounded to 1, got %d", len(result.Cycles))
	}
}

func TestResultsAccumulatorFinish(t *testing.T) {
	if err := newResultsAccumulator(&CollectResult{}, -1, -1).finish(); err != nil {
		t.Errorf("expected no error with no exceptions recorded, got %v", err)
	}

	result := &CollectResult{}
	acc := newResultsAccumulator(result, -1, -1)
	nodes := newNodeStack()
	nodes.push(&DependencyNode{})
	acc.addException(NewDependency(Artifact{Group: "g", ID: "a", Version: "1.0"}), errors.New("boom"), nodes)
	err := acc.finish()
	if err == nil {
		t.Fatal("expected an error after recording an exception")
	}
	var collErr *CollectionError
	if !errors.As(err, &collErr) {
		t.Fatalf("expected a *CollectionError, got %T", err)
	}
	if collErr.ErrorPath == "" {
		t.Error("expected finish to surface the recorded error path")
	}
}
