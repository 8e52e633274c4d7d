// Package descriptorcache wraps a depcollect.DescriptorReader with a
// bounded LRU cache, mirroring the source's CachingArtifactTypeRegistry: a
// single process-lifetime cache sitting in front of a reader that a
// Session's per-call data pool (scoped to one Collect) can't amortize
// across separate calls.
package descriptorcache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	depcollect "github.com/arborist-dev/depcollect"
)

type entry struct {
	result *depcollect.ArtifactDescriptorResult
	err    error
}

// Reader decorates an underlying depcollect.DescriptorReader with an LRU
// cache keyed by artifact coordinate, version, and repository set. It is
// safe for concurrent use.
type Reader struct {
	underlying depcollect.DescriptorReader
	cache      *lru.Cache[string, entry]
}

// New wraps underlying with an LRU cache holding up to size descriptor
// results (successes and failures both count against size).
func New(underlying depcollect.DescriptorReader, size int) (*Reader, error) {
	cache, err := lru.New[string, entry](size)
	if err != nil {
		return nil, fmt.Errorf("descriptorcache: %w", err)
	}
	return &Reader{underlying: underlying, cache: cache}, nil
}

func (r *Reader) ReadArtifactDescriptor(ctx context.Context, session *depcollect.Session, req depcollect.ArtifactDescriptorRequest) (*depcollect.ArtifactDescriptorResult, error) {
	key := cacheKey(req)
	if e, ok := r.cache.Get(key); ok {
		return e.result, e.err
	}
	result, err := r.underlying.ReadArtifactDescriptor(ctx, session, req)
	r.cache.Add(key, entry{result: result, err: err})
	return result, err
}

func cacheKey(req depcollect.ArtifactDescriptorRequest) string {
	key := req.Artifact.String()
	for _, repo := range req.Repositories {
		key += "#" + repo.RepositoryID()
	}
	return key
}
