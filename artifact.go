package depcollect

import (
	"sort"
	"strings"
)

// PropertyLocalPath is the artifact property that, when present, marks an
// artifact as lacking a resolvable remote descriptor.
const PropertyLocalPath = "localPath"

// ArtifactCoordinate is the (group, id, classifier, extension) identity tuple
// used for coordinate equality. Version is intentionally excluded: two
// artifacts at different versions but otherwise identical coordinates are
// coordinate-equal, which is the basis for cycle detection.
type ArtifactCoordinate struct {
	Group      string
	ID         string
	Classifier string
	Extension  string
}

// Artifact identifies a build output together with a bag of properties.
type Artifact struct {
	Group      string
	ID         string
	Classifier string
	Extension  string
	Version    string
	Properties map[string]string
}

// Coordinate returns a's coordinate-equality key.
func (a Artifact) Coordinate() ArtifactCoordinate {
	return ArtifactCoordinate{Group: a.Group, ID: a.ID, Classifier: a.Classifier, Extension: a.Extension}
}

// CoordinateEqual reports whether a and b share a coordinate, ignoring version.
func (a Artifact) CoordinateEqual(b Artifact) bool {
	return a.Coordinate() == b.Coordinate()
}

// LacksDescriptor reports whether a carries PropertyLocalPath, marking it as
// an artifact whose descriptor should not be fetched from a remote source.
func (a Artifact) LacksDescriptor() bool {
	_, ok := a.Properties[PropertyLocalPath]
	return ok
}

// WithVersion returns a copy of a with Version replaced.
func (a Artifact) WithVersion(version string) Artifact {
	a.Version = version
	return a
}

// WithProperties returns a copy of a with Properties replaced by a clone of props.
func (a Artifact) WithProperties(props map[string]string) Artifact {
	a.Properties = cloneStringMap(props)
	return a
}

// String renders a the way Maven renders an Artifact: group:id:extension[:classifier]:version.
func (a Artifact) String() string {
	var b strings.Builder
	b.WriteString(a.Group)
	b.WriteByte(':')
	b.WriteString(a.ID)
	b.WriteByte(':')
	b.WriteString(a.Extension)
	if a.Classifier != "" {
		b.WriteByte(':')
		b.WriteString(a.Classifier)
	}
	b.WriteByte(':')
	b.WriteString(a.Version)
	return b.String()
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// artifactKey is the canonical string key used by the data pool for
// interning and for composite pool keys. It is a pure function of an
// artifact's value, independent of map iteration order.
func artifactKey(a Artifact) string {
	var b strings.Builder
	b.WriteString(a.Group)
	b.WriteByte(':')
	b.WriteString(a.ID)
	b.WriteByte(':')
	b.WriteString(a.Classifier)
	b.WriteByte(':')
	b.WriteString(a.Extension)
	b.WriteByte(':')
	b.WriteString(a.Version)
	if len(a.Properties) > 0 {
		keys := make([]string, 0, len(a.Properties))
		for k := range a.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteByte(';')
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(a.Properties[k])
		}
	}
	return b.String()
}
