package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/amterp/color"

	depcollect "github.com/arborist-dev/depcollect"
	"github.com/arborist-dev/depcollect/internal/descriptorcache"
	"github.com/arborist-dev/depcollect/internal/itertools"
	"github.com/arborist-dev/depcollect/internal/logging"
	"github.com/arborist-dev/depcollect/internal/test/fakeregistry"
	"github.com/arborist-dev/depcollect/policy/defaultpolicy"
	"github.com/arborist-dev/depcollect/transform/conflict"
	"github.com/arborist-dev/depcollect/transform/satresolve"
)

var hiblackf = color.New(color.FgHiBlack).SprintfFunc()

// descriptorCacheSize bounds the process-lifetime descriptor cache sitting
// in front of the universe-file registry; one CLI invocation collects at
// most one graph, but the cache still saves repeat descriptor lookups for
// artifacts reachable through more than one path.
const descriptorCacheSize = 4096

type outputFn = func(root *depcollect.DependencyNode) error

var allOutput = map[string]outputFn{
	"tree": outputTree,
	"raw":  outputRaw,
	"dot":  outputDot,
}

var allTransformers = map[string]depcollect.GraphTransformer{
	"none":     nil,
	"conflict": conflict.Transformer{},
	"sat":      satresolve.Transformer{},
}

type config struct {
	universe    string
	root        string
	output      outputFn
	transformer depcollect.GraphTransformer
}

func outputTree(root *depcollect.DependencyNode) error {
	seen := map[*depcollect.DependencyNode]bool{}
	var visit func(n *depcollect.DependencyNode, indent int) error
	visit = func(n *depcollect.DependencyNode, indent int) error {
		wasSeen := seen[n]
		fmt.Print(strings.Repeat("  ", indent))
		if wasSeen {
			fmt.Print(hiblackf("%v (repeat)", n.Artifact()))
		} else {
			fmt.Print(n.Artifact())
		}
		fmt.Print("\n")
		seen[n] = true
		if wasSeen || n.Children == nil {
			return nil
		}
		for _, child := range n.Children.Nodes {
			if err := visit(child, indent+1); err != nil {
				return err
			}
		}
		return nil
	}
	return visit(root, 0)
}

func outputRaw(root *depcollect.DependencyNode) error {
	coords := itertools.Map(depcollect.AllDependencyNodes(root), func(n *depcollect.DependencyNode) string {
		return n.Artifact().String()
	})
	for s := range coords {
		fmt.Println(s)
	}
	return nil
}

func outputDot(root *depcollect.DependencyNode) error {
	fmt.Print("digraph {\n")
	fmt.Print("  node [style=filled,fillcolor=\"white\",shape=box];\n")
	err := depcollect.WalkDependencyNode(root,
		func(n *depcollect.DependencyNode) (bool, error) {
			attrs := ""
			if n == root {
				attrs = "fillcolor=\"black\",fontcolor=\"white\""
			}
			fmt.Printf("  %q [%s];\n", n.Artifact(), attrs)
			return true, nil
		},
		func(p, c *depcollect.DependencyNode) error {
			fmt.Printf("  %q -> %q;\n", p.Artifact(), c.Artifact())
			return nil
		})
	if err != nil {
		return err
	}
	fmt.Print("}\n")
	return nil
}

type universeFile struct {
	Repository []struct {
		ID  string `toml:"id"`
		URL string `toml:"url"`
	} `toml:"repository"`
	Artifact []struct {
		Coordinate string   `toml:"coordinate"`
		Requires   []string `toml:"requires"`
		Managed    []string `toml:"managed"`
		Relocates  string   `toml:"relocates"`
		Aliases    []string `toml:"aliases"`
	} `toml:"artifact"`
}

// loadUniverse reads a TOML fixture file describing a fake artifact
// registry (its artifacts, their dependencies, and known repositories)
// and builds an in-memory DescriptorReader/VersionRangeResolver from it.
func loadUniverse(path string) (*fakeregistry.Registry, []depcollect.Repository, error) {
	var uf universeFile
	if _, err := toml.DecodeFile(path, &uf); err != nil {
		return nil, nil, fmt.Errorf("parse universe file: %w", err)
	}
	reg := fakeregistry.New()
	repos := make([]depcollect.Repository, 0, len(uf.Repository))
	for _, r := range uf.Repository {
		repos = append(repos, depcollect.RemoteRepository{ID: r.ID, URL: r.URL})
	}
	for _, a := range uf.Artifact {
		opts := []fakeregistry.Option{fakeregistry.Coordinate(a.Coordinate)}
		for _, req := range a.Requires {
			opts = append(opts, fakeregistry.Require(req, "compile"))
		}
		for _, m := range a.Managed {
			opts = append(opts, fakeregistry.ManagedVersion(m))
		}
		if a.Relocates != "" {
			opts = append(opts, fakeregistry.Relocate(a.Relocates))
		}
		for _, al := range a.Aliases {
			opts = append(opts, fakeregistry.Alias(al))
		}
		if err := reg.Add(opts...); err != nil {
			return nil, nil, fmt.Errorf("universe artifact %q: %w", a.Coordinate, err)
		}
	}
	return reg, repos, nil
}

func run(ctx context.Context, cfg *config) error {
	reg, repos, err := loadUniverse(cfg.universe)
	if err != nil {
		return err
	}
	cachedReader, err := descriptorcache.New(reg, descriptorCacheSize)
	if err != nil {
		return err
	}

	session := depcollect.NewSession()
	session.DescriptorReader = cachedReader
	session.VersionRangeResolver = reg.Resolver()
	session.Selector = defaultpolicy.Selector{}
	session.Manager = defaultpolicy.Manager{}
	session.Traverser = defaultpolicy.Traverser{}
	session.VersionFilter = defaultpolicy.VersionFilter{}
	session.Transformer = cfg.transformer

	rootArtifact, err := parseCoordinate(cfg.root)
	if err != nil {
		return err
	}
	root := depcollect.NewDependency(rootArtifact)
	result, err := depcollect.Collect(ctx, session, depcollect.CollectRequest{
		Root:         &root,
		RootArtifact: rootArtifact,
		Repositories: repos,
	})
	if err != nil {
		var collErr *depcollect.CollectionError
		if ce, ok := err.(*depcollect.CollectionError); ok {
			collErr = ce
			slog.WarnContext(ctx, "collection reported exceptions", "error", collErr)
		} else {
			return err
		}
	}
	if result.Root == nil {
		return fmt.Errorf("collection produced no graph")
	}
	return cfg.output(result.Root)
}

func parseCoordinate(s string) (depcollect.Artifact, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return depcollect.Artifact{}, fmt.Errorf("root %q must have the form group:id:version", s)
	}
	return depcollect.Artifact{Group: parts[0], ID: parts[1], Version: parts[2]}, nil
}

func choiceFlag[T any](p *T, name string, choices map[string]T, dflt string, usage string) {
	cstr := strings.Join(slices.Sorted(maps.Keys(choices)), ", ")
	var ok bool
	if *p, ok = choices[dflt]; !ok {
		panic(fmt.Errorf("invalid default for %v option: %v", dflt, name))
	}
	usage += fmt.Sprintf(" (one of: %v; default: %v)", cstr, dflt)
	flag.Func(name, usage, func(arg string) error {
		if arg == "" {
			arg = dflt
		}
		v, ok := choices[arg]
		if !ok {
			return fmt.Errorf("expected one of: %v", cstr)
		}
		*p = v
		return nil
	})
}

var slogLevel = func() *slog.LevelVar {
	lvl := &slog.LevelVar{}
	lvl.Set(logging.LevelInfo)
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
	return lvl
}()

func parseFlags() *config {
	cfg := &config{}

	bumpLogLevel := func(lower bool) { slogLevel.Set(logging.BumpLevel(slogLevel.Level(), lower)) }
	setLogLevel := func(arg string) error {
		lvl, err := logging.StringToLevel(arg)
		if err != nil {
			return err
		}
		slogLevel.Set(lvl)
		return nil
	}
	flag.BoolFunc("v", "Increase log verbosity.", func(arg string) error {
		if arg == "" || arg == "true" {
			bumpLogLevel(true)
			return nil
		}
		return setLogLevel(arg)
	})
	flag.BoolFunc("q", "Decrease log verbosity.", func(arg string) error {
		if arg == "" || arg == "true" {
			bumpLogLevel(false)
			return nil
		}
		return setLogLevel(arg)
	})

	colorChoices := map[string]bool{"auto": color.NoColor, "never": true, "always": false}
	choiceFlag(&color.NoColor, "color", colorChoices, "auto", "Output colors according to `mode`.")
	choiceFlag(&cfg.output, "format", allOutput, "tree", "Print the collected graph according to `mode`.")
	choiceFlag(&cfg.transformer, "transform", allTransformers, "none", "Post-process the collected graph using the algorithm indicated by `mode`.")
	flag.StringVar(&cfg.universe, "universe", "", "Path to a TOML file describing the fake artifact registry to collect against.")

	flag.Parse()
	if cfg.universe == "" {
		log.Fatal("-universe is required")
	}
	args := flag.Args()
	if len(args) != 1 {
		log.Fatal("exactly one root artifact coordinate (group:id:version) is required")
	}
	cfg.root = args[0]
	return cfg
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := parseFlags()
	if err := run(ctx, cfg); err != nil {
		slog.ErrorContext(ctx, "failed", "error", err)
		os.Exit(1)
	}
}
