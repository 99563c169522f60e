package game

import (
	"github.com/riftcore/riftcore/internal/core/geom"
	"github.com/riftcore/riftcore/internal/core/model"
)

// Spawner is a timed spawn condition evaluated once per tick, after collision
// and visibility. Spawners queue entities through World.Spawn, so new arrivals
// join the world on the next tick.
type Spawner interface {
	Update(dt float64, w *World)
}

// WaveSpawner releases a burst of lane units for both playing sides at a
// fixed interval. Lane origins index by side.
type WaveSpawner struct {
	Interval     float64
	UnitsPerWave int
	LaneOrigins  [2]geom.Vec2
	LaneTargets  [2]geom.Vec2
	NewUnit      func(side model.Side, pos geom.Vec2) *Unit

	timer float64
}

// NewWaveSpawner builds a wave spawner whose first wave fires one interval in.
func NewWaveSpawner(interval float64, unitsPerWave int, origins, targets [2]geom.Vec2) *WaveSpawner {
	return &WaveSpawner{
		Interval:     interval,
		UnitsPerWave: unitsPerWave,
		LaneOrigins:  origins,
		LaneTargets:  targets,
		timer:        interval,
	}
}

func (ws *WaveSpawner) Update(dt float64, w *World) {
	ws.timer -= dt
	if ws.timer > 0 {
		return
	}
	ws.timer += ws.Interval
	for side := 0; side < 2; side++ {
		origin := ws.LaneOrigins[side]
		for i := 0; i < ws.UnitsPerWave; i++ {
			// stagger along the lane axis so the wave doesn't spawn stacked
			pos := origin.Add(ws.laneDir(side).Scale(float64(i) * -40))
			u := ws.makeUnit(model.Side(side), pos)
			u.MoveTo(ws.LaneTargets[side])
			w.Spawn(u)
		}
	}
}

func (ws *WaveSpawner) laneDir(side int) geom.Vec2 {
	return ws.LaneTargets[side].Sub(ws.LaneOrigins[side]).Normalized()
}

func (ws *WaveSpawner) makeUnit(side model.Side, pos geom.Vec2) *Unit {
	if ws.NewUnit != nil {
		return ws.NewUnit(side, pos)
	}
	return NewUnit(side, pos, 18, 60, 120, 900, 100)
}

// CampSpawner keeps a neutral camp populated: once its monster is gone, a
// respawn timer runs and a fresh monster spawns when it expires.
type CampSpawner struct {
	Pos          geom.Vec2
	RespawnDelay float64
	NewMonster   func(pos geom.Vec2) *Unit

	current model.EntityID
	timer   float64
}

// NewCampSpawner builds a camp that populates RespawnDelay seconds after
// start and again after each clear.
func NewCampSpawner(pos geom.Vec2, respawnDelay float64) *CampSpawner {
	return &CampSpawner{
		Pos:          pos,
		RespawnDelay: respawnDelay,
		timer:        respawnDelay,
	}
}

func (cs *CampSpawner) Update(dt float64, w *World) {
	if cs.current != 0 {
		if e, ok := w.Find(cs.current); ok && !e.Dead() {
			return // camp still alive
		}
		cs.current = 0
		cs.timer = cs.RespawnDelay
	}
	cs.timer -= dt
	if cs.timer > 0 {
		return
	}
	cs.current = w.Spawn(cs.makeMonster())
}

func (cs *CampSpawner) makeMonster() *Unit {
	if cs.NewMonster != nil {
		return cs.NewMonster(cs.Pos)
	}
	return NewUnit(model.SideNeutral, cs.Pos, 24, 120, 0, 500, 300)
}
