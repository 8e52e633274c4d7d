package depcollect

import "slices"

// Repository is an opaque source an artifact or version may have been
// discovered through. The core never inspects a Repository beyond its ID
// and its concrete Go type: RemoteRepository gets special handling in the
// per-version effective-repository computation in process.go.
type Repository interface {
	RepositoryID() string
}

// RemoteRepository is a named, addressable repository reachable over the
// network. The core's per-version repository computation singles this type
// out: when a resolved version came from exactly one RemoteRepository, the
// resulting node's effective repository list is that repository alone.
type RemoteRepository struct {
	ID  string
	URL string
}

func (r RemoteRepository) RepositoryID() string { return r.ID }

// LocalRepository is a non-remote repository, such as a local filesystem
// cache or install directory. A version attributed to a LocalRepository
// contributes an empty effective repository list rather than a singleton.
type LocalRepository struct {
	ID   string
	Path string
}

func (r LocalRepository) RepositoryID() string { return r.ID }

// RepositoryManager merges a dominant repository list with a recessive one,
// deduplicating by RepositoryID and preserving the dominant list's order
// followed by any new recessive entries.
type RepositoryManager interface {
	Aggregate(session *Session, dominant, recessive []Repository, recessiveIsNew bool) []Repository
}

// DefaultRepositoryManager implements [RepositoryManager] by deduplicating
// on RepositoryID, keeping the first occurrence's position.
type DefaultRepositoryManager struct{}

func (DefaultRepositoryManager) Aggregate(_ *Session, dominant, recessive []Repository, _ bool) []Repository {
	seen := make(map[string]bool, len(dominant)+len(recessive))
	out := make([]Repository, 0, len(dominant)+len(recessive))
	for _, r := range dominant {
		if seen[r.RepositoryID()] {
			continue
		}
		seen[r.RepositoryID()] = true
		out = append(out, r)
	}
	for _, r := range recessive {
		if seen[r.RepositoryID()] {
			continue
		}
		seen[r.RepositoryID()] = true
		out = append(out, r)
	}
	return out
}

func cloneRepositories(repos []Repository) []Repository {
	return slices.Clone(repos)
}

func reposKey(repos []Repository) string {
	ids := make([]string, len(repos))
	for i, r := range repos {
		ids[i] = r.RepositoryID()
	}
	var out string
	for i, id := range ids {
		if i > 0 {
			out += ","
		}
		out += id
	}
	return out
}
