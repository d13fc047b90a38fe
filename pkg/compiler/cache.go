package compiler

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/chazu/partforge/pkg/normalize"
	"github.com/chazu/partforge/pkg/synth"
	lru "github.com/hashicorp/golang-lru/v2"
)

// geometryCache keeps recent synthesis results keyed by spec fingerprint.
// Synthesis is a pure function of the spec, so a hit is interchangeable
// with a fresh call. Feature lists and dimension maps are copied per hit;
// cached meshes are shared and must be treated as read-only.
type geometryCache struct {
	entries *lru.Cache[string, synth.GeneratedGeometry]
}

func newGeometryCache(size int) (*geometryCache, error) {
	if size <= 0 {
		size = 1
	}
	entries, err := lru.New[string, synth.GeneratedGeometry](size)
	if err != nil {
		return nil, err
	}
	return &geometryCache{entries: entries}, nil
}

func (c *geometryCache) get(key string) (synth.GeneratedGeometry, bool) {
	g, ok := c.entries.Get(key)
	if !ok {
		return synth.GeneratedGeometry{}, false
	}
	g.Metadata.Features = append([]string(nil), g.Metadata.Features...)
	if g.Dimensions != nil {
		dims := make(map[string]float64, len(g.Dimensions))
		for k, v := range g.Dimensions {
			dims[k] = v
		}
		g.Dimensions = dims
	}
	return g, true
}

func (c *geometryCache) add(key string, g synth.GeneratedGeometry) {
	c.entries.Add(key, g)
}

func (c *geometryCache) len() int { return c.entries.Len() }

// fingerprint hashes the canonical JSON form of a spec. Map keys are
// marshalled in sorted order, so equal specs hash equally.
func fingerprint(spec normalize.GeometrySpec) string {
	data, err := json.Marshal(spec)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
