package vision

import (
	"fmt"
	"math/rand"

	"github.com/cespare/xxhash/v2"

	"github.com/riftcore/riftcore/internal/core/geom"
)

// Zone is one concealment region ("bush group"): a small set of sub-rectangles
// generated deterministically from the map seed and the zone index. Occupants
// are hidden from the opposing side unless that side is present inside the zone.
type Zone struct {
	Name  string
	Index int
	Rects []geom.Rect
}

// Contains reports whether p lies inside any sub-rectangle of the zone.
func (z *Zone) Contains(p geom.Vec2) bool {
	for _, r := range z.Rects {
		if r.Contains(p) {
			return true
		}
	}
	return false
}

// ZoneAnchor places one zone on the map. Geometry around the anchor comes from
// the seeded generator, not from configuration, so every consumer of the same
// map seed computes identical shapes without transmitting them.
type ZoneAnchor struct {
	Name   string    `yaml:"name"`
	Index  int       `yaml:"index"`
	Anchor geom.Vec2 `yaml:"anchor"`
}

const (
	zoneMinRects   = 2
	zoneMaxRects   = 4
	zoneMinExtent  = 120.0
	zoneExtentVar  = 180.0
	zoneScatterMax = 220.0
)

// GenerateZones expands anchors into full zone geometry. The layout seed for a
// zone is derived as xxhash(mapSeed + "/zone-" + index), so two independently
// constructed layouts from the same inputs are byte-for-byte identical.
// Malformed anchors (empty name, duplicate index) fail here, before the first
// tick ever runs.
func GenerateZones(mapSeed string, anchors []ZoneAnchor) ([]*Zone, error) {
	zones := make([]*Zone, 0, len(anchors))
	seenIdx := make(map[int]string, len(anchors))
	for _, a := range anchors {
		if a.Name == "" {
			return nil, fmt.Errorf("vision: zone %d has no name", a.Index)
		}
		if prev, dup := seenIdx[a.Index]; dup {
			return nil, fmt.Errorf("vision: zones %q and %q share index %d", prev, a.Name, a.Index)
		}
		seenIdx[a.Index] = a.Name

		seed := xxhash.Sum64String(fmt.Sprintf("%s/zone-%d", mapSeed, a.Index))
		rng := rand.New(rand.NewSource(int64(seed)))

		n := zoneMinRects + rng.Intn(zoneMaxRects-zoneMinRects+1)
		rects := make([]geom.Rect, 0, n)
		for i := 0; i < n; i++ {
			w := zoneMinExtent + rng.Float64()*zoneExtentVar
			h := zoneMinExtent + rng.Float64()*zoneExtentVar
			cx := a.Anchor.X + (rng.Float64()-0.5)*zoneScatterMax
			cy := a.Anchor.Y + (rng.Float64()-0.5)*zoneScatterMax
			rects = append(rects, geom.Rect{
				Min: geom.Vec2{X: cx - w/2, Y: cy - h/2},
				Max: geom.Vec2{X: cx + w/2, Y: cy + h/2},
			})
		}
		for _, r := range rects {
			if !r.Valid() {
				return nil, fmt.Errorf("vision: zone %q generated a degenerate rect", a.Name)
			}
		}
		zones = append(zones, &Zone{Name: a.Name, Index: a.Index, Rects: rects})
	}
	return zones, nil
}
