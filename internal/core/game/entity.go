package game

import (
	"github.com/riftcore/riftcore/internal/core/geom"
	"github.com/riftcore/riftcore/internal/core/model"
)

// Entity is the capability surface every concrete kind exposes to the core.
// Entities are owned exclusively by the registry; the collision resolver and
// visibility engine borrow them during their pass and may mutate nothing but
// position (resolver) or read visibility state (vision).
type Entity interface {
	ID() model.EntityID
	Side() model.Side
	Kind() model.Kind

	Position() geom.Vec2
	SetPosition(geom.Vec2)

	// Update advances the entity by dt. It runs once per tick, in registration
	// order, and is never called on an entity that has been swept.
	Update(dt float64, w *World)

	Collidable() bool
	Radius() float64
	Mass() float64 // math.Inf(1) for immovables

	Dead() bool
	ShouldRemove() bool

	Stealthed() bool
	AlwaysVisible() bool
	SightRadius() float64
	RevealsZones() bool
}

// Base carries the state shared by every entity kind. Concrete kinds embed it
// and override Update.
type Base struct {
	id   model.EntityID
	side model.Side
	kind model.Kind
	pos  geom.Vec2

	collidable bool
	radius     float64
	mass       float64

	dead   bool
	remove bool

	stealthed     bool
	alwaysVisible bool
	sightRadius   float64
	revealsZones  bool
}

func (b *Base) ID() model.EntityID      { return b.id }
func (b *Base) Side() model.Side        { return b.side }
func (b *Base) Kind() model.Kind        { return b.kind }
func (b *Base) Position() geom.Vec2     { return b.pos }
func (b *Base) SetPosition(p geom.Vec2) { b.pos = p }
func (b *Base) Collidable() bool        { return b.collidable && !b.dead }
func (b *Base) Radius() float64         { return b.radius }
func (b *Base) Mass() float64           { return b.mass }
func (b *Base) Dead() bool              { return b.dead }
func (b *Base) ShouldRemove() bool      { return b.remove }
func (b *Base) Stealthed() bool         { return b.stealthed }
func (b *Base) AlwaysVisible() bool     { return b.alwaysVisible }
func (b *Base) RevealsZones() bool      { return b.revealsZones }

// SightRadius grants no vision once the entity is dead; sources are rebuilt
// from live entities only.
func (b *Base) SightRadius() float64 {
	if b.dead {
		return 0
	}
	return b.sightRadius
}

// Kill marks the entity dead. The removal flag is raised on its next update,
// so the corpse stays addressable for one tick of final reads.
func (b *Base) Kill() { b.dead = true }

// MarkRemove flags the entity for the next removal sweep.
func (b *Base) MarkRemove() { b.remove = true }

// Update implements the one-tick-after-death removal policy shared by every
// kind. Kinds with behavior call it first and return early when it reports
// the entity is no longer acting.
func (b *Base) Update(_ float64, _ *World) {
	if b.dead && !b.remove {
		b.remove = true
	}
}

// assignID is called exactly once by the registry.
func (b *Base) assignID(id model.EntityID) { b.id = id }
