package collision

import (
	"math"

	"github.com/kamstrup/intmap"

	"github.com/riftcore/riftcore/internal/core/geom"
	"github.com/riftcore/riftcore/internal/core/model"
	"github.com/riftcore/riftcore/internal/core/spatial"
)

// Body is the surface the resolver needs from a collidable entity. The resolver
// is only permitted to mutate position; it never creates or destroys bodies.
type Body interface {
	ID() model.EntityID
	Position() geom.Vec2
	SetPosition(geom.Vec2)
	Radius() float64
	Mass() float64 // math.Inf(1) marks an immovable body, e.g. a structure
}

// Config tunes the resolver. Zero values are replaced by DefaultConfig fields.
type Config struct {
	// SeparationStrength scales the applied push. 1.0 resolves an overlap fully
	// in a single pass, which also makes repeated passes over the same
	// positions idempotent.
	SeparationStrength float64 `yaml:"separation_strength"`
	// MaxSeparation caps the distance any single body is moved in one pass.
	MaxSeparation float64 `yaml:"max_separation"`
	// CellSize is the broad-phase grid cell size.
	CellSize float64 `yaml:"cell_size"`
	// BroadPhase selects the grid strategy; false falls back to the pairwise scan.
	BroadPhase bool `yaml:"broad_phase"`
}

// DefaultConfig returns the tuning used when no config is supplied.
func DefaultConfig() Config {
	return Config{
		SeparationStrength: 1.0,
		MaxSeparation:      24.0,
		CellSize:           150.0,
		BroadPhase:         true,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SeparationStrength <= 0 {
		c.SeparationStrength = d.SeparationStrength
	}
	if c.MaxSeparation <= 0 {
		c.MaxSeparation = d.MaxSeparation
	}
	if c.CellSize <= 0 {
		c.CellSize = d.CellSize
	}
	return c
}

// Resolver separates overlapping circular hitboxes, heavier bodies moving less.
// One Resolver belongs to one game instance and is reused across ticks.
type Resolver struct {
	cfg  Config
	grid *spatial.Grid

	// scratch buffers reused between ticks
	neighbors []spatial.Entry
	byID      map[model.EntityID]Body
}

// NewResolver creates a resolver with the given config.
func NewResolver(cfg Config) *Resolver {
	cfg = cfg.withDefaults()
	return &Resolver{
		cfg:  cfg,
		grid: spatial.NewGrid(cfg.CellSize),
		byID: make(map[model.EntityID]Body),
	}
}

// Grid exposes the broad-phase grid for read-only radius queries by the world.
// Its contents reflect the most recent Resolve call.
func (r *Resolver) Grid() *spatial.Grid { return r.grid }

// Resolve finds every overlapping pair among bodies and pushes the members
// apart along the line connecting their centers, splitting the separation in
// inverse proportion to mass. Calling Resolve twice on the same positions does
// not push twice: a fully separated pair has zero penetration on the second pass.
func (r *Resolver) Resolve(bodies []Body) {
	if len(bodies) < 2 {
		return
	}
	if r.cfg.BroadPhase {
		r.resolveGrid(bodies)
		return
	}
	r.resolveNaive(bodies)
}

func (r *Resolver) resolveNaive(bodies []Body) {
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			r.resolvePair(bodies[i], bodies[j])
		}
	}
}

func (r *Resolver) resolveGrid(bodies []Body) {
	r.grid.Clear()
	clear(r.byID)
	for _, b := range bodies {
		r.grid.Insert(b.ID(), b.Position(), b.Radius())
		r.byID[b.ID()] = b
	}

	// Each unordered pair straddling a cell boundary is reachable from both
	// sides; a canonical id-ordered key ensures it is resolved exactly once.
	seen := intmap.New[uint64, bool](len(bodies) * 2)
	for _, b := range bodies {
		r.neighbors = r.grid.QueryNeighbors(r.neighbors[:0], b.Position(), b.Radius())
		for _, n := range r.neighbors {
			other := n.ID
			if other == b.ID() {
				continue
			}
			key := pairKey(b.ID(), other)
			if _, dup := seen.Get(key); dup {
				continue
			}
			seen.Put(key, true)
			r.resolvePair(r.byID[b.ID()], r.byID[other])
		}
	}
}

// pairKey packs two entity ids into a canonical uint64. Registry ids are
// assigned sequentially and stay well below 2^32 for the life of an instance.
func pairKey(a, b model.EntityID) uint64 {
	if a > b {
		a, b = b, a
	}
	return uint64(a)<<32 | (uint64(b) & 0xFFFFFFFF)
}

func (r *Resolver) resolvePair(a, b Body) {
	// Canonical order keeps the coincident-center tie-break deterministic
	// regardless of which strategy discovered the pair.
	if a.ID() > b.ID() {
		a, b = b, a
	}

	pa, pb := a.Position(), b.Position()
	sum := a.Radius() + b.Radius()
	delta := pb.Sub(pa)
	dist := delta.Len()
	pen := sum - dist
	if pen <= 0 {
		return
	}

	invA := inverseMass(a.Mass())
	invB := inverseMass(b.Mass())
	if invA == 0 && invB == 0 {
		return // two immovables stay put
	}

	var dir geom.Vec2
	if dist > 0 {
		dir = delta.Scale(1 / dist)
	} else {
		// Exactly coincident centers: derive the push axis from the pair's ids
		// so independent replays separate the pair identically.
		dir = tieBreakDir(a.ID(), b.ID())
	}

	push := pen * r.cfg.SeparationStrength
	total := invA + invB
	moveA := math.Min(push*(invA/total), r.cfg.MaxSeparation)
	moveB := math.Min(push*(invB/total), r.cfg.MaxSeparation)

	if moveA > 0 {
		a.SetPosition(pa.Sub(dir.Scale(moveA)))
	}
	if moveB > 0 {
		b.SetPosition(pb.Add(dir.Scale(moveB)))
	}
}

func inverseMass(m float64) float64 {
	if math.IsInf(m, 1) {
		return 0
	}
	if m <= 0 {
		return 1 // treat degenerate mass as unit mass rather than exploding
	}
	return 1 / m
}

// tieBreakDir maps an id pair onto a unit direction, stable across runs.
func tieBreakDir(a, b model.EntityID) geom.Vec2 {
	h := uint64(a)*0x9E3779B97F4A7C15 ^ uint64(b)*0xBF58476D1CE4E5B9
	angle := float64(h%3600) / 3600 * 2 * math.Pi
	return geom.Vec2{X: math.Cos(angle), Y: math.Sin(angle)}
}
