package game

import (
	"go.uber.org/zap"

	"github.com/riftcore/riftcore/internal/core/action"
	"github.com/riftcore/riftcore/internal/core/collision"
	"github.com/riftcore/riftcore/internal/core/events"
	"github.com/riftcore/riftcore/internal/core/geom"
	"github.com/riftcore/riftcore/internal/core/model"
	"github.com/riftcore/riftcore/internal/core/vision"
)

// Event types published by the world. Payloads are the affected Entity except
// for tick.completed, whose payload is the tick number.
const (
	EventEntitySpawned = "entity.spawned"
	EventEntityDied    = "entity.died"
	EventEntityRemoved = "entity.removed"
	EventTickCompleted = "tick.completed"
	EventActionFired   = "action.fired"
)

// World is the authoritative simulation of one game instance: the tick driver
// plus the context handed to entities and the outer combat/network layers.
// Everything runs single-threaded; one tick is one atomic unit of work.
type World struct {
	log       *zap.Logger
	registry  *Registry
	resolver  *collision.Resolver
	vision    *vision.Engine
	bus       *events.Bus
	scheduler *action.Scheduler
	spawners  []Spawner

	tick    uint64
	elapsed float64

	// scratch buffers reused across ticks
	bodies      []collision.Body
	observables []vision.Observable
}

// NewWorld wires a world from its explicitly constructed parts. Nothing here
// is a process-wide singleton; two worlds in one process never share state.
func NewWorld(log *zap.Logger, resolver *collision.Resolver, eng *vision.Engine) *World {
	if log == nil {
		log = zap.NewNop()
	}
	return &World{
		log:       log,
		registry:  NewRegistry(),
		resolver:  resolver,
		vision:    eng,
		bus:       events.NewBus(),
		scheduler: action.NewScheduler(),
	}
}

func (w *World) Registry() *Registry          { return w.registry }
func (w *World) Events() *events.Bus          { return w.bus }
func (w *World) Scheduler() *action.Scheduler { return w.scheduler }
func (w *World) Vision() *vision.Engine       { return w.vision }

// Tick returns the number of completed ticks.
func (w *World) Tick() uint64 { return w.tick }

// Elapsed returns total simulated time in seconds.
func (w *World) Elapsed() float64 { return w.elapsed }

// AddSpawner registers a timed spawn rule evaluated once per tick.
func (w *World) AddSpawner(s Spawner) { w.spawners = append(w.spawners, s) }

// Place registers an entity immediately. Use between ticks only (map setup).
func (w *World) Place(e Entity) model.EntityID { return w.registry.Add(e) }

// Spawn queues an entity for registration at the end of the current tick. The
// entity does not participate in this tick's collision or visibility passes.
func (w *World) Spawn(e Entity) model.EntityID { return w.registry.QueueSpawn(e) }

// Step advances the world by dt seconds, running the tick phases in strict
// order: entity updates, pending scheduled actions, collision resolution,
// visibility rebuild, timed spawn checks, removal sweep, spawn flush.
// Visibility deliberately runs after collision so queries reflect where units
// actually ended up this tick.
func (w *World) Step(dt float64) {
	w.elapsed += dt
	tick := w.tick + 1

	// 1. entity updates, in registration order over the tick-start entity set
	live := w.registry.All()
	for _, e := range live {
		e.Update(dt, w)
	}

	// gameplay effects due this tick (cast keyframes etc.)
	w.scheduler.Update(dt)

	// 2. collision over post-movement positions
	w.bodies = w.bodies[:0]
	for _, e := range live {
		if e.Collidable() {
			w.bodies = append(w.bodies, e)
		}
	}
	w.resolver.Resolve(w.bodies)

	// 3. visibility over post-collision positions
	w.observables = w.observables[:0]
	for _, e := range live {
		w.observables = append(w.observables, e)
	}
	w.vision.BeginTick(tick, w.observables)

	// 4. timed spawn conditions
	for _, s := range w.spawners {
		s.Update(dt, w)
	}

	// 5. removal sweep, then deferred spawns join for the next tick
	for _, e := range w.registry.Sweep() {
		w.publish(events.Event{Type: EventEntityRemoved, Tick: tick, Data: e})
	}
	for _, e := range w.registry.FlushSpawns() {
		w.publish(events.Event{Type: EventEntitySpawned, Tick: tick, Data: e})
	}

	w.tick = tick
	w.publish(events.Event{Type: EventTickCompleted, Tick: tick, Data: tick})
}

// ScheduleCast queues an animation's keyframes for the entity and publishes
// action.fired as each keyframe triggers, after its handler has run. Effects
// that need no event should use the scheduler directly.
func (w *World) ScheduleCast(owner model.EntityID, anim action.Animation, speed float64, handler action.Handler) {
	w.scheduler.Schedule(owner, anim, speed, func(a action.Action) {
		if handler != nil {
			handler(a)
		}
		w.publish(events.Event{Type: EventActionFired, Tick: w.tick + 1, Data: a})
	})
}

func (w *World) publish(ev events.Event) {
	if err := w.bus.Publish(ev); err != nil {
		w.log.Warn("event handler failed",
			zap.String("event", ev.Type),
			zap.Uint64("tick", ev.Tick),
			zap.Error(err))
	}
}

// Find returns a live reference to the entity, or false if the id is unknown
// or the entity is already flagged for removal. A dying target mid-tick is an
// expected race; callers treat false as a benign miss.
func (w *World) Find(id model.EntityID) (Entity, bool) {
	e, ok := w.registry.Get(id)
	if !ok || e.ShouldRemove() {
		return nil, false
	}
	return e, true
}

// EntitiesInRadius returns live entities whose centers lie within dist of pos.
// Entity counts stay in the low hundreds, so a linear scan over the registry
// is cheaper than keeping a second spatial index coherent mid-tick.
func (w *World) EntitiesInRadius(pos geom.Vec2, dist float64) []Entity {
	var out []Entity
	for _, e := range w.registry.All() {
		if e.ShouldRemove() || e.Dead() {
			continue
		}
		if geom.Dist(e.Position(), pos) <= dist {
			out = append(out, e)
		}
	}
	return out
}

// IsEntityVisibleTo reports whether the entity is visible to the viewing side,
// using the just-completed tick's positions. Unknown ids are not visible.
func (w *World) IsEntityVisibleTo(id model.EntityID, viewer model.Side) bool {
	e, ok := w.Find(id)
	if !ok {
		return false
	}
	return w.vision.IsVisible(e, viewer).Visible
}

// IsPositionVisibleTo reports whether the viewing side can see a map point.
func (w *World) IsPositionVisibleTo(pos geom.Vec2, viewer model.Side) bool {
	return w.vision.IsPositionVisible(pos, viewer)
}

// CanTarget reports whether source may target target: both must be live, the
// target must not be dead, and the source's side must currently see it.
// Any missing reference is a benign miss, never an error.
func (w *World) CanTarget(source, target model.EntityID) bool {
	src, ok := w.Find(source)
	if !ok {
		return false
	}
	tgt, ok := w.Find(target)
	if !ok || tgt.Dead() {
		return false
	}
	return w.vision.IsVisible(tgt, src.Side()).Visible
}

// VisibleEntitiesForSide returns the entities the viewing side currently
// sees. The network layer builds its per-player snapshot from this; the core
// guarantees it reflects the just-completed tick's collision-resolved
// positions.
func (w *World) VisibleEntitiesForSide(viewer model.Side) []Entity {
	var out []Entity
	for _, e := range w.registry.All() {
		if e.Dead() || e.ShouldRemove() {
			continue
		}
		if w.vision.IsVisible(e, viewer).Visible {
			out = append(out, e)
		}
	}
	return out
}

// Kill marks the entity dead and publishes entity.died. Missing ids are
// benign misses.
func (w *World) Kill(id model.EntityID) {
	e, ok := w.Find(id)
	if !ok || e.Dead() {
		return
	}
	if b, ok := e.(interface{ Kill() }); ok {
		b.Kill()
		w.publish(events.Event{Type: EventEntityDied, Tick: w.tick, Data: e})
	}
}
