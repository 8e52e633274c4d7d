package depcollect

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
)

func TestDependencyExcludes(t *testing.T) {
	d := NewDependency(Artifact{Group: "g", ID: "a", Version: "1.0"}).
		WithExclusions(mapset.NewThreadUnsafeSet(Exclusion{Group: "g2", ID: "b"}))
	if !d.Excludes("g2", "b") {
		t.Error("expected exclusion to match")
	}
	if d.Excludes("g3", "c") {
		t.Error("expected no match for unrelated coordinate")
	}
}

func TestDependencyKeyIncludesExclusionsOrderIndependently(t *testing.T) {
	base := NewDependency(Artifact{Group: "g", ID: "a", Version: "1.0"})
	d1 := base.WithExclusions(mapset.NewThreadUnsafeSet(
		Exclusion{Group: "x", ID: "1"}, Exclusion{Group: "y", ID: "2"}))
	d2 := base.WithExclusions(mapset.NewThreadUnsafeSet(
		Exclusion{Group: "y", ID: "2"}, Exclusion{Group: "x", ID: "1"}))
	if dependencyKey(d1) != dependencyKey(d2) {
		t.Errorf("dependencyKey should not depend on exclusion set iteration order: %q != %q",
			dependencyKey(d1), dependencyKey(d2))
	}
}

func TestMergeDependencyListsDominantWins(t *testing.T) {
	dominant := []Dependency{NewDependency(Artifact{Group: "g", ID: "a", Version: "2.0"})}
	recessive := []Dependency{
		NewDependency(Artifact{Group: "g", ID: "a", Version: "1.0"}),
		NewDependency(Artifact{Group: "g", ID: "b", Version: "1.0"}),
	}
	merged := mergeDependencyLists(dominant, recessive)
	if len(merged) != 2 {
		t.Fatalf("expected 2 merged dependencies, got %d: %v", len(merged), merged)
	}
	if merged[0].Artifact.Version != "2.0" {
		t.Errorf("expected dominant version 2.0 to survive, got %v", merged[0].Artifact.Version)
	}
	if merged[1].Artifact.ID != "b" {
		t.Errorf("expected recessive-only dependency b to be appended, got %v", merged[1])
	}
}
