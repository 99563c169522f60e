package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/riftcore/riftcore/internal/core/action"
	"github.com/riftcore/riftcore/internal/core/collision"
	"github.com/riftcore/riftcore/internal/core/events"
	"github.com/riftcore/riftcore/internal/core/geom"
	"github.com/riftcore/riftcore/internal/core/model"
	"github.com/riftcore/riftcore/internal/core/vision"
)

// probeEnt is a minimal entity with a hookable update for driving the world
// from inside a tick.
type probeEnt struct {
	Base
	updates  int
	onUpdate func(w *World)
}

func (p *probeEnt) Update(dt float64, w *World) {
	p.Base.Update(dt, w)
	p.updates++
	if p.onUpdate != nil {
		p.onUpdate(w)
	}
}

func newProbe(side model.Side, pos geom.Vec2) *probeEnt {
	return &probeEnt{Base: Base{
		side:        side,
		kind:        model.KindUnit,
		pos:         pos,
		collidable:  true,
		radius:      20,
		mass:        50,
		sightRadius: 500,
	}}
}

func newTestWorld(zones ...*vision.Zone) *World {
	return NewWorld(zap.NewNop(),
		collision.NewResolver(collision.Config{BroadPhase: false}),
		vision.NewEngine(zones))
}

func TestVisibilitySeesPostCollisionPositions(t *testing.T) {
	w := newTestWorld()
	a := NewUnit(model.SideBlue, geom.Vec2{X: 0, Y: 0}, 20, 50, 0, 500, 100)
	b := NewUnit(model.SideBlue, geom.Vec2{X: 10, Y: 0}, 20, 50, 0, 500, 100)
	w.Place(a)
	w.Place(b)

	w.Step(1.0 / 30)

	// collision pushed the pair apart before vision source rebuild
	require.InDelta(t, -15, a.Position().X, 1e-9)
	require.InDelta(t, 25, b.Position().X, 1e-9)

	srcs := w.Vision().SourcesFor(model.SideBlue)
	require.Len(t, srcs, 2)
	byID := map[model.EntityID]geom.Vec2{}
	for _, s := range srcs {
		byID[s.ID] = s.Pos
	}
	require.Equal(t, a.Position(), byID[a.ID()])
	require.Equal(t, b.Position(), byID[b.ID()])
	require.Equal(t, w.Tick(), w.Vision().Tick())
}

func TestMidTickSpawnJoinsNextTick(t *testing.T) {
	w := newTestWorld()
	child := newProbe(model.SideBlue, geom.Vec2{X: 900, Y: 900})

	spawned := false
	parent := newProbe(model.SideBlue, geom.Vec2{})
	parent.onUpdate = func(w *World) {
		if !spawned {
			spawned = true
			w.Spawn(child)
		}
	}
	w.Place(parent)

	var spawnEvents int
	w.Events().Subscribe(EventEntitySpawned, func(events.Event) error {
		spawnEvents++
		return nil
	})

	w.Step(0.033)
	require.Equal(t, 0, child.updates, "spawned entity visited in its spawn tick")
	require.Equal(t, 2, w.Registry().Len(), "spawn not registered at end of tick")
	require.Equal(t, 1, spawnEvents)

	w.Step(0.033)
	require.Equal(t, 1, child.updates)
}

func TestDeadEntityIsExcludedFromCollision(t *testing.T) {
	w := newTestWorld()
	a := NewUnit(model.SideBlue, geom.Vec2{X: 0, Y: 0}, 20, 50, 0, 500, 100)
	b := NewUnit(model.SideRed, geom.Vec2{X: 10, Y: 0}, 20, 50, 0, 500, 100)
	idA := w.Place(a)
	w.Place(b)

	w.Kill(idA)
	w.Step(0.033)

	require.Equal(t, geom.Vec2{X: 10, Y: 0}, b.Position(), "dead body still pushed the living one")
}

func TestKilledEntityIsSweptAndAnnounced(t *testing.T) {
	w := newTestWorld()
	u := NewUnit(model.SideBlue, geom.Vec2{}, 20, 50, 0, 500, 100)
	id := w.Place(u)

	var died, removed int
	w.Events().Subscribe(EventEntityDied, func(events.Event) error { died++; return nil })
	w.Events().Subscribe(EventEntityRemoved, func(events.Event) error { removed++; return nil })

	w.Kill(id)
	require.Equal(t, 1, died)
	_, ok := w.Find(id)
	require.True(t, ok, "corpse should stay addressable until swept")

	w.Step(0.033)
	require.Equal(t, 1, removed)
	_, ok = w.Find(id)
	require.False(t, ok)
	require.Equal(t, 0, w.Registry().Len())
}

func TestFindMissesAreBenign(t *testing.T) {
	w := newTestWorld()
	_, ok := w.Find(12345)
	require.False(t, ok)

	// flagged-for-removal entities read as gone even before the sweep
	u := NewUnit(model.SideBlue, geom.Vec2{}, 20, 50, 0, 500, 100)
	id := w.Place(u)
	u.MarkRemove()
	_, ok = w.Find(id)
	require.False(t, ok)

	// and Kill on a missing id is a no-op
	w.Kill(99999)
}

func TestCanTarget(t *testing.T) {
	w := newTestWorld()
	blue := NewUnit(model.SideBlue, geom.Vec2{}, 20, 50, 0, 500, 100)
	red := NewUnit(model.SideRed, geom.Vec2{X: 100}, 20, 50, 0, 500, 100)
	sneak := newProbe(model.SideRed, geom.Vec2{X: 120, Y: 50})
	sneak.stealthed = true
	sneak.collidable = false
	idBlue := w.Place(blue)
	idRed := w.Place(red)
	idSneak := w.Place(sneak)

	w.Step(0.033)

	require.True(t, w.CanTarget(idBlue, idRed))
	require.False(t, w.CanTarget(idBlue, idSneak), "stealthed enemy should be untargetable")
	require.True(t, w.CanTarget(idRed, idBlue))
	require.False(t, w.CanTarget(idBlue, 777), "missing target is a benign miss")

	w.Kill(idRed)
	require.False(t, w.CanTarget(idBlue, idRed), "dead target is a benign miss")
}

func TestEntitiesInRadius(t *testing.T) {
	w := newTestWorld()
	near := NewUnit(model.SideBlue, geom.Vec2{X: 50}, 20, 50, 0, 500, 100)
	far := NewUnit(model.SideBlue, geom.Vec2{X: 900}, 20, 50, 0, 500, 100)
	corpse := NewUnit(model.SideRed, geom.Vec2{X: 30}, 20, 50, 0, 500, 100)
	w.Place(near)
	w.Place(far)
	id := w.Place(corpse)
	w.Kill(id)

	found := w.EntitiesInRadius(geom.Vec2{}, 100)
	require.Len(t, found, 1)
	require.Equal(t, near.ID(), found[0].ID())
}

func TestScheduledEffectRunsInsideTheTick(t *testing.T) {
	w := newTestWorld()
	u := NewUnit(model.SideBlue, geom.Vec2{}, 20, 50, 0, 500, 100)
	id := w.Place(u)

	w.Scheduler().Schedule(id,
		action.Animation{FrameDuration: 0.01, Keyframes: []action.Keyframe{{Frame: 2, Effect: action.EffectDamage}}},
		1.0,
		func(a action.Action) {
			if e, ok := w.Find(a.Owner); ok {
				e.(*Unit).Damage(150)
			}
		})

	w.Step(0.033)
	require.True(t, u.Dead())
}

func TestScheduleCastPublishesActionFired(t *testing.T) {
	w := newTestWorld()
	id := w.Place(newProbe(model.SideBlue, geom.Vec2{}))

	var fired []events.Event
	w.Events().Subscribe(EventActionFired, func(ev events.Event) error {
		fired = append(fired, ev)
		return nil
	})

	handled := 0
	w.ScheduleCast(id,
		action.Animation{FrameDuration: 0.01, Keyframes: []action.Keyframe{
			{Frame: 1, Effect: action.EffectSound},
			{Frame: 2, Effect: action.EffectDamage},
		}},
		1.0,
		func(action.Action) { handled++ })

	w.Step(0.033)
	require.Equal(t, 2, handled)
	require.Len(t, fired, 2)
	first := fired[0].Data.(action.Action)
	second := fired[1].Data.(action.Action)
	require.Equal(t, action.EffectSound, first.Effect)
	require.Equal(t, action.EffectDamage, second.Effect)
	require.Equal(t, id, first.Owner)
	require.Equal(t, uint64(1), fired[0].Tick)
}

func TestUnitMovesTowardOrderAndStops(t *testing.T) {
	w := newTestWorld()
	u := NewUnit(model.SideBlue, geom.Vec2{}, 20, 50, 100, 500, 100)
	w.Place(u)
	u.MoveTo(geom.Vec2{X: 30})

	w.Step(0.1) // 10 units per tick at speed 100
	require.InDelta(t, 10, u.Position().X, 1e-9)

	for i := 0; i < 5; i++ {
		w.Step(0.1)
	}
	require.Equal(t, geom.Vec2{X: 30}, u.Position(), "unit overshot its destination")
}

func TestProjectileExpiresAtMaxRange(t *testing.T) {
	w := newTestWorld()
	p := NewProjectile(model.SideBlue, geom.Vec2{}, geom.Vec2{X: 400}, 100)
	id := w.Place(p)

	w.Step(0.1) // 40 units
	w.Step(0.1)
	w.Step(0.1) // 120 >= 100: dies
	require.True(t, p.Dead())

	w.Step(0.1) // removal flag raised on the corpse tick, then swept
	_, ok := w.Find(id)
	require.False(t, ok)
}

func TestWardExpiresAfterLifetime(t *testing.T) {
	w := newTestWorld()
	ward := NewWard(model.SideBlue, geom.Vec2{}, 900, 0.05)
	w.Place(ward)

	w.Step(0.033)
	require.False(t, ward.Dead())
	w.Step(0.033)
	require.True(t, ward.Dead())
}

func TestTickAndElapsedAdvance(t *testing.T) {
	w := newTestWorld()
	require.EqualValues(t, 0, w.Tick())

	w.Step(0.5)
	w.Step(0.5)
	require.EqualValues(t, 2, w.Tick())
	require.InDelta(t, 1.0, w.Elapsed(), 1e-9)
}

func TestTickCompletedPublishesAfterResolution(t *testing.T) {
	w := newTestWorld()
	a := NewUnit(model.SideBlue, geom.Vec2{X: 0}, 20, 50, 0, 500, 100)
	b := NewUnit(model.SideBlue, geom.Vec2{X: 10}, 20, 50, 0, 500, 100)
	w.Place(a)
	w.Place(b)

	var seenX float64
	w.Events().Subscribe(EventTickCompleted, func(events.Event) error {
		seenX = a.Position().X // positions must already be collision-resolved
		return nil
	})
	w.Step(0.033)
	require.InDelta(t, -15, seenX, 1e-9)
}
