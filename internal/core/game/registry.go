package game

import (
	"github.com/riftcore/riftcore/internal/core/model"
)

// Registry owns the live entity set of one game instance. It is the only
// component that inserts or removes entities; everything else borrows
// references during the tick.
//
// Entities spawned while a tick is in flight are buffered and join the world
// after the tick's removal sweep, so a tick always runs over the entity set it
// started with. Deferring keeps tick results independent of update order.
type Registry struct {
	entities map[model.EntityID]Entity
	order    []model.EntityID
	pending  []Entity
	nextID   model.EntityID
}

// NewRegistry creates an empty registry. Ids start at 1.
func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[model.EntityID]Entity),
		nextID:   1,
	}
}

// Add registers an entity immediately and returns its assigned id. It must
// only be called between ticks (initial placement, test setup); mid-tick
// spawns go through QueueSpawn.
func (r *Registry) Add(e Entity) model.EntityID {
	id := r.assign(e)
	r.entities[id] = e
	r.order = append(r.order, id)
	return id
}

// QueueSpawn assigns the entity an id now but registers it only at the end of
// the current tick, after the removal sweep.
func (r *Registry) QueueSpawn(e Entity) model.EntityID {
	id := r.assign(e)
	r.pending = append(r.pending, e)
	return id
}

func (r *Registry) assign(e Entity) model.EntityID {
	id := r.nextID
	r.nextID++
	if b, ok := e.(interface{ assignID(model.EntityID) }); ok {
		b.assignID(id)
	}
	return id
}

// Get returns the entity registered under id. Entities flagged for removal
// are still returned until swept; dead targets are the caller's concern.
func (r *Registry) Get(id model.EntityID) (Entity, bool) {
	e, ok := r.entities[id]
	return e, ok
}

// Len returns the number of registered entities, pending spawns excluded.
func (r *Registry) Len() int { return len(r.entities) }

// All returns the registered entities in registration order. The returned
// slice is freshly allocated; callers may keep it for the tick.
func (r *Registry) All() []Entity {
	out := make([]Entity, 0, len(r.order))
	for _, id := range r.order {
		if e, ok := r.entities[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Sweep removes every entity whose removal flag is set and returns them.
func (r *Registry) Sweep() []Entity {
	var removed []Entity
	kept := r.order[:0]
	for _, id := range r.order {
		e, ok := r.entities[id]
		if !ok {
			continue
		}
		if e.ShouldRemove() {
			delete(r.entities, id)
			removed = append(removed, e)
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
	return removed
}

// FlushSpawns registers every queued spawn and returns them.
func (r *Registry) FlushSpawns() []Entity {
	if len(r.pending) == 0 {
		return nil
	}
	spawned := r.pending
	r.pending = nil
	for _, e := range spawned {
		r.entities[e.ID()] = e
		r.order = append(r.order, e.ID())
	}
	return spawned
}
