package depcollect_test

import (
	"context"
	"fmt"

	depcollect "github.com/arborist-dev/depcollect"
	"github.com/arborist-dev/depcollect/internal/test/fakeregistry"
	"github.com/arborist-dev/depcollect/policy/defaultpolicy"
)

// This example collects a small transitive dependency graph from an
// in-memory registry: an application depending on a web framework, which in
// turn depends on a logging library.
func Example() {
	reg := fakeregistry.New()
	if err := reg.AddAll(
		[]fakeregistry.Option{fakeregistry.Coordinate("com.example:app:1.0"), fakeregistry.Require("com.example:webfw:2.0", "compile")},
		[]fakeregistry.Option{fakeregistry.Coordinate("com.example:webfw:2.0"), fakeregistry.Require("com.example:logging:1.1", "compile")},
		[]fakeregistry.Option{fakeregistry.Coordinate("com.example:logging:1.1")},
	); err != nil {
		fmt.Println(err)
		return
	}

	session := depcollect.NewSession()
	session.DescriptorReader = reg
	session.VersionRangeResolver = reg.Resolver()
	session.Selector = defaultpolicy.Selector{}
	session.Manager = defaultpolicy.Manager{}
	session.Traverser = defaultpolicy.Traverser{}
	session.VersionFilter = defaultpolicy.VersionFilter{}

	root := depcollect.NewDependency(depcollect.Artifact{Group: "com.example", ID: "app", Version: "1.0"})
	result, err := depcollect.Collect(context.Background(), session, depcollect.CollectRequest{Root: &root})
	if err != nil {
		fmt.Println(err)
		return
	}

	for n := range depcollect.AllDependencyNodes(result.Root) {
		fmt.Println(n.Artifact())
	}

	// Output:
	// com.example:app::1.0
	// com.example:webfw::2.0
	// com.example:logging::1.1
}
