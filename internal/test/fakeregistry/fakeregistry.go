// Package fakeregistry makes it easy to build an in-memory descriptor and
// version registry populated with fake artifacts, to facilitate testing
// without a network-backed repository.
package fakeregistry

import (
	"context"
	"fmt"
	"strings"
	"testing"

	depcollect "github.com/arborist-dev/depcollect"
	"github.com/arborist-dev/depcollect/versionscheme/semverscheme"
)

type config struct {
	artifact     depcollect.Artifact
	dependencies []depcollect.Dependency
	managed      []depcollect.Dependency
	relocatesTo  *depcollect.Artifact
	aliases      []depcollect.Artifact
	repositories []depcollect.Repository
}

func (cfg *config) check() error {
	if cfg.artifact.Group == "" || cfg.artifact.ID == "" {
		return fmt.Errorf("fake artifact is missing a group or id")
	}
	if cfg.artifact.Version == "" {
		return fmt.Errorf("fake artifact %s is missing a version", cfg.artifact)
	}
	return nil
}

// An Option controls the creation of one fake artifact.
type Option func(*config) error

// Coordinate returns an option that sets the fake artifact's coordinate and
// version. coordVer has the form "group:id:version" or, for a classified
// artifact, "group:id:classifier:extension:version".
func Coordinate(coordVer string) Option {
	return func(cfg *config) error {
		a, err := parseCoordVer(coordVer)
		if err != nil {
			return err
		}
		cfg.artifact = a
		return nil
	}
}

// Require returns an option that adds dep (in the same coordVer form
// Coordinate accepts) as one of the fake artifact's direct dependencies.
func Require(coordVer string, scope string) Option {
	return func(cfg *config) error {
		a, err := parseCoordVer(coordVer)
		if err != nil {
			return err
		}
		cfg.dependencies = append(cfg.dependencies, depcollect.NewDependency(a).WithScope(scope))
		return nil
	}
}

// ManagedVersion returns an option that adds a managed-dependency entry
// pinning coordVer's group:id to coordVer's version.
func ManagedVersion(coordVer string) Option {
	return func(cfg *config) error {
		a, err := parseCoordVer(coordVer)
		if err != nil {
			return err
		}
		cfg.managed = append(cfg.managed, depcollect.NewDependency(a))
		return nil
	}
}

// Relocate returns an option that marks the fake artifact as relocated to
// the artifact identified by coordVer: its descriptor resolves to coordVer's
// coordinates, with the original coordinate recorded as the relocation
// predecessor.
func Relocate(coordVer string) Option {
	return func(cfg *config) error {
		a, err := parseCoordVer(coordVer)
		if err != nil {
			return err
		}
		cfg.relocatesTo = &a
		return nil
	}
}

// Alias returns an option that adds coordVer as an alternate coordinate for
// the fake artifact.
func Alias(coordVer string) Option {
	return func(cfg *config) error {
		a, err := parseCoordVer(coordVer)
		if err != nil {
			return err
		}
		cfg.aliases = append(cfg.aliases, a)
		return nil
	}
}

// Repository returns an option that records id as a repository supplying
// the fake artifact's descriptor.
func Repository(id, url string) Option {
	return func(cfg *config) error {
		cfg.repositories = append(cfg.repositories, depcollect.RemoteRepository{ID: id, URL: url})
		return nil
	}
}

// Registry is an in-memory depcollect.DescriptorReader and
// semverscheme.VersionLister populated by fake artifacts.
type Registry struct {
	descriptors map[string]*depcollect.ArtifactDescriptorResult
	versions    map[string][]depcollect.Version
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		descriptors: map[string]*depcollect.ArtifactDescriptorResult{},
		versions:    map[string][]depcollect.Version{},
	}
}

// Add creates one fake artifact from opts and registers it.
func (r *Registry) Add(opts ...Option) error {
	cfg := &config{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return err
		}
	}
	if err := cfg.check(); err != nil {
		return err
	}
	v, err := semverscheme.ParseVersion(cfg.artifact.Version)
	if err != nil {
		return err
	}
	descriptorArtifact := cfg.artifact
	var relocations []depcollect.Artifact
	if cfg.relocatesTo != nil {
		descriptorArtifact = *cfg.relocatesTo
		relocations = []depcollect.Artifact{cfg.artifact}
	}
	r.descriptors[descriptorKey(cfg.artifact)] = &depcollect.ArtifactDescriptorResult{
		Artifact:            descriptorArtifact,
		Dependencies:        cfg.dependencies,
		ManagedDependencies: cfg.managed,
		Relocations:         relocations,
		Aliases:             cfg.aliases,
		Repositories:        cfg.repositories,
	}
	r.versions[coordinateKey(cfg.artifact)] = append(r.versions[coordinateKey(cfg.artifact)], v)
	return nil
}

// AddAll is a convenience method for registering many fake artifacts.
func (r *Registry) AddAll(optss ...[]Option) error {
	for _, opts := range optss {
		if err := r.Add(opts...); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) ReadArtifactDescriptor(ctx context.Context, session *depcollect.Session, req depcollect.ArtifactDescriptorRequest) (*depcollect.ArtifactDescriptorResult, error) {
	d, ok := r.descriptors[descriptorKey(req.Artifact)]
	if !ok {
		return nil, fmt.Errorf("fakeregistry: no descriptor for %s", req.Artifact)
	}
	return d, nil
}

// ListVersions implements semverscheme.VersionLister.
func (r *Registry) ListVersions(ctx context.Context, artifact depcollect.Artifact, repos []depcollect.Repository) ([]depcollect.Version, error) {
	return r.versions[coordinateKey(artifact)], nil
}

// Resolver returns a semverscheme.Resolver backed by this registry.
func (r *Registry) Resolver() semverscheme.Resolver { return semverscheme.NewResolver(r) }

func descriptorKey(a depcollect.Artifact) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s", a.Group, a.ID, a.Classifier, a.Extension, a.Version)
}

func coordinateKey(a depcollect.Artifact) string {
	return fmt.Sprintf("%s:%s:%s:%s", a.Group, a.ID, a.Classifier, a.Extension)
}

func parseCoordVer(s string) (depcollect.Artifact, error) {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 3:
		return depcollect.Artifact{Group: parts[0], ID: parts[1], Version: parts[2]}, nil
	case 5:
		return depcollect.Artifact{
			Group: parts[0], ID: parts[1], Classifier: parts[2], Extension: parts[3], Version: parts[4],
		}, nil
	default:
		return depcollect.Artifact{}, fmt.Errorf("fakeregistry: %q must have the form group:id:version or group:id:classifier:extension:version", s)
	}
}

// TestRegistry is like Registry but with an ergonomic interface meant for
// unit tests: failures call t.Fatal instead of returning an error.
type TestRegistry struct {
	Registry
	t *testing.T
}

// NewTestRegistry returns an empty TestRegistry.
func NewTestRegistry(t *testing.T) *TestRegistry {
	t.Helper()
	return &TestRegistry{Registry: *New(), t: t}
}

func (r *TestRegistry) Add(opts ...Option) *TestRegistry {
	r.t.Helper()
	if err := r.Registry.Add(opts...); err != nil {
		r.t.Fatal(err)
	}
	return r
}

func (r *TestRegistry) AddAll(optss ...[]Option) *TestRegistry {
	r.t.Helper()
	if err := r.Registry.AddAll(optss...); err != nil {
		r.t.Fatal(err)
	}
	return r
}
