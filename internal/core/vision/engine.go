package vision

import (
	"github.com/kamstrup/intmap"

	"github.com/riftcore/riftcore/internal/core/geom"
	"github.com/riftcore/riftcore/internal/core/model"
)

// Observable is the read-only surface the engine needs from an entity. The
// engine never mutates entities and never touches the registry.
type Observable interface {
	ID() model.EntityID
	Side() model.Side
	Kind() model.Kind
	Position() geom.Vec2
	Dead() bool
	// Stealthed reports an active concealment status; it beats every spatial rule.
	Stealthed() bool
	// AlwaysVisible marks categories every side sees unconditionally (structures).
	AlwaysVisible() bool
	// SightRadius is the vision range this entity grants its side; 0 grants none.
	SightRadius() float64
	// RevealsZones reports whether this entity exposes concealment-zone
	// occupants to its side while standing inside the zone (wards).
	RevealsZones() bool
}

// Source is one side's eye for a single tick: an id, a position snapshot and a
// sight radius. Sources are rebuilt from live entities every tick and never
// persist across ticks.
type Source struct {
	ID          model.EntityID
	Pos         geom.Vec2
	Side        model.Side
	SightRadius float64
}

// Result answers a visibility query. Revealers lists the viewer-side entities
// responsible for the sighting; it is nil for rule hits that need no revealer
// (own side, always-visible categories).
type Result struct {
	Visible   bool
	Revealers []model.EntityID
}

type zonePresence struct {
	units []model.EntityID
	wards []model.EntityID
}

// Engine is the per-game-instance fog-of-war component. It is explicitly
// constructed and handed through the world context, so multiple instances can
// run in one process. Visibility follows a strict rule precedence:
//
//  1. own side is always visible to itself
//  2. always-visible categories are visible to everyone
//  3. stealth hides from every other side, before any spatial reasoning
//  4. concealment-zone occupants are hidden unless the viewing side is present
//     inside the same zone (live unit or revealing ward)
//  5. otherwise, range check against the viewing side's vision sources
//
// Sources and query results are cached for exactly one tick; BeginTick with a
// new tick number discards both before any further query is answered.
type Engine struct {
	zones []*Zone

	tick    uint64
	begun   bool
	sources [2][]Source
	// presence[zoneIdx][side]: viewer-side bodies inside the zone this tick
	presence map[int]*[2]zonePresence
	// zoneOf: entity id -> zone index occupied this tick (first match wins)
	zoneOf   *intmap.Map[uint64, int]
	cache    *intmap.Map[uint64, Result]
	entities []Observable
}

// NewEngine creates a fog-of-war engine over static zone geometry.
func NewEngine(zones []*Zone) *Engine {
	return &Engine{
		zones:    zones,
		presence: make(map[int]*[2]zonePresence),
		zoneOf:   intmap.New[uint64, int](64),
		cache:    intmap.New[uint64, Result](256),
	}
}

// Zones returns the static zone geometry.
func (e *Engine) Zones() []*Zone { return e.zones }

// Tick returns the tick number of the current snapshot.
func (e *Engine) Tick() uint64 { return e.tick }

// BeginTick installs the entity snapshot for a tick and rebuilds the derived
// per-tick state: vision sources, zone occupancy and the (now empty) result
// cache. Calling it again with the same tick number is a no-op, so repeated
// queries inside one tick stay on one snapshot.
func (e *Engine) BeginTick(tick uint64, entities []Observable) {
	if e.begun && tick == e.tick {
		return
	}
	e.tick = tick
	e.begun = true
	e.entities = entities
	e.sources[0] = e.sources[0][:0]
	e.sources[1] = e.sources[1][:0]
	e.zoneOf = intmap.New[uint64, int](len(entities))
	e.cache = intmap.New[uint64, Result](len(entities) * 2)
	for k := range e.presence {
		delete(e.presence, k)
	}

	for _, ent := range entities {
		if ent.Dead() {
			continue
		}
		side := ent.Side()
		if r := ent.SightRadius(); r > 0 && int(side) < len(e.sources) {
			e.sources[side] = append(e.sources[side], Source{
				ID:          ent.ID(),
				Pos:         ent.Position(),
				Side:        side,
				SightRadius: r,
			})
		}
		zi, ok := e.zoneIndexAt(ent.Position())
		if !ok {
			continue
		}
		e.zoneOf.Put(uint64(ent.ID()), zi)
		if int(side) >= 2 {
			continue
		}
		p := e.presence[zi]
		if p == nil {
			p = &[2]zonePresence{}
			e.presence[zi] = p
		}
		switch {
		case ent.RevealsZones():
			p[side].wards = append(p[side].wards, ent.ID())
		case ent.Kind() == model.KindUnit:
			p[side].units = append(p[side].units, ent.ID())
		}
	}
}

// SourcesFor returns the viewing side's vision sources for the current tick.
func (e *Engine) SourcesFor(side model.Side) []Source {
	if int(side) >= len(e.sources) {
		return nil
	}
	return e.sources[side]
}

// IsVisible decides whether viewer can currently see ent. Results are cached
// for the remainder of the tick. Before the first BeginTick the engine has no
// world snapshot and answers conservatively: not visible.
func (e *Engine) IsVisible(ent Observable, viewer model.Side) Result {
	if !e.begun || ent == nil || int(viewer) >= 2 {
		return Result{}
	}
	key := uint64(ent.ID())<<2 | uint64(viewer&0x3)
	if r, ok := e.cache.Get(key); ok {
		return r
	}
	r := e.evaluate(ent, viewer)
	e.cache.Put(key, r)
	return r
}

func (e *Engine) evaluate(ent Observable, viewer model.Side) Result {
	if ent.Side() == viewer {
		return Result{Visible: true}
	}
	if ent.AlwaysVisible() {
		return Result{Visible: true}
	}
	if ent.Stealthed() {
		return Result{}
	}
	if zi, ok := e.zoneOf.Get(uint64(ent.ID())); ok {
		p := e.presence[zi]
		if p == nil {
			return Result{}
		}
		revealers := append([]model.EntityID(nil), p[viewer].units...)
		revealers = append(revealers, p[viewer].wards...)
		if len(revealers) == 0 {
			return Result{}
		}
		return Result{Visible: true, Revealers: revealers}
	}
	return e.rangeCheck(ent.Position(), viewer)
}

// IsPositionVisible applies the spatial rules (zones, then range) to a bare
// map point, e.g. for targeted-ground abilities. Not cached; point queries are
// rare compared to entity queries.
func (e *Engine) IsPositionVisible(pos geom.Vec2, viewer model.Side) bool {
	if !e.begun || int(viewer) >= 2 {
		return false
	}
	if zi, ok := e.zoneIndexAt(pos); ok {
		p := e.presence[zi]
		if p == nil || (len(p[viewer].units) == 0 && len(p[viewer].wards) == 0) {
			return false
		}
		return true
	}
	return e.rangeCheck(pos, viewer).Visible
}

// VisibleTo filters the current snapshot down to what the viewing side sees.
// The network layer builds its per-player snapshot from this.
func (e *Engine) VisibleTo(viewer model.Side) []Observable {
	if !e.begun {
		return nil
	}
	out := make([]Observable, 0, len(e.entities))
	for _, ent := range e.entities {
		if ent.Dead() {
			continue
		}
		if e.IsVisible(ent, viewer).Visible {
			out = append(out, ent)
		}
	}
	return out
}

func (e *Engine) rangeCheck(pos geom.Vec2, viewer model.Side) Result {
	var revealers []model.EntityID
	for _, src := range e.sources[viewer] {
		if geom.Dist(src.Pos, pos) <= src.SightRadius {
			revealers = append(revealers, src.ID)
		}
	}
	if len(revealers) == 0 {
		return Result{}
	}
	return Result{Visible: true, Revealers: revealers}
}

func (e *Engine) zoneIndexAt(p geom.Vec2) (int, bool) {
	for _, z := range e.zones {
		if z.Contains(p) {
			return z.Index, true
		}
	}
	return 0, false
}
