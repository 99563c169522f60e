package game

import (
	"math"

	"github.com/riftcore/riftcore/internal/core/geom"
	"github.com/riftcore/riftcore/internal/core/model"
)

// The concrete entity kinds. Together they exercise every capability branch
// of the core: finite and infinite mass, collidable and pass-through bodies,
// vision grants, zone-revealing wards, and stealth.

// Unit is a mobile fighting entity: champion, minion or jungle monster.
type Unit struct {
	Base
	Speed float64
	HP    float64

	target    geom.Vec2
	hasTarget bool
}

// NewUnit creates a unit at pos. Neutral units use model.SideNeutral.
func NewUnit(side model.Side, pos geom.Vec2, radius, mass, speed, sight, hp float64) *Unit {
	return &Unit{
		Base: Base{
			side:        side,
			kind:        model.KindUnit,
			pos:         pos,
			collidable:  true,
			radius:      radius,
			mass:        mass,
			sightRadius: sight,
		},
		Speed: speed,
		HP:    hp,
	}
}

// MoveTo orders the unit toward dest; it walks there over subsequent ticks.
func (u *Unit) MoveTo(dest geom.Vec2) {
	u.target = dest
	u.hasTarget = true
}

// Damage applies damage; at zero HP the unit dies.
func (u *Unit) Damage(amount float64) {
	if u.dead {
		return
	}
	u.HP -= amount
	if u.HP <= 0 {
		u.HP = 0
		u.Kill()
	}
}

func (u *Unit) Update(dt float64, w *World) {
	u.Base.Update(dt, w)
	if u.dead || !u.hasTarget {
		return
	}
	delta := u.target.Sub(u.pos)
	step := u.Speed * dt
	if delta.Len() <= step {
		u.pos = u.target
		u.hasTarget = false
		return
	}
	u.pos = u.pos.Add(delta.Normalized().Scale(step))
}

// Structure is a large immobile building: infinite mass, never pushed by the
// resolver, and visible to every side unconditionally.
type Structure struct {
	Base
	HP float64
}

func NewStructure(side model.Side, pos geom.Vec2, radius, sight, hp float64) *Structure {
	return &Structure{
		Base: Base{
			side:          side,
			kind:          model.KindStructure,
			pos:           pos,
			collidable:    true,
			radius:        radius,
			mass:          math.Inf(1),
			alwaysVisible: true,
			sightRadius:   sight,
		},
		HP: hp,
	}
}

func (s *Structure) Damage(amount float64) {
	if s.dead {
		return
	}
	s.HP -= amount
	if s.HP <= 0 {
		s.HP = 0
		s.Kill()
	}
}

// Ward is a deployable vision source. It passes through units, grants sight
// and reveals concealment-zone occupants while placed inside the zone.
type Ward struct {
	Base
	remaining float64
}

func NewWard(side model.Side, pos geom.Vec2, sight, lifetime float64) *Ward {
	return &Ward{
		Base: Base{
			side:         side,
			kind:         model.KindWard,
			pos:          pos,
			radius:       10,
			mass:         1,
			sightRadius:  sight,
			revealsZones: true,
		},
		remaining: lifetime,
	}
}

func (wd *Ward) Update(dt float64, w *World) {
	wd.Base.Update(dt, w)
	if wd.dead {
		return
	}
	wd.remaining -= dt
	if wd.remaining <= 0 {
		wd.Kill()
	}
}

// Projectile is a non-collidable mover that expires after covering its range.
// Hit detection belongs to the ability layer; the core only advances it.
type Projectile struct {
	Base
	Velocity geom.Vec2
	MaxRange float64

	origin geom.Vec2
}

func NewProjectile(side model.Side, pos geom.Vec2, velocity geom.Vec2, maxRange float64) *Projectile {
	return &Projectile{
		Base: Base{
			side:   side,
			kind:   model.KindProjectile,
			pos:    pos,
			radius: 8,
			mass:   1,
		},
		Velocity: velocity,
		MaxRange: maxRange,
		origin:   pos,
	}
}

func (p *Projectile) Update(dt float64, w *World) {
	p.Base.Update(dt, w)
	if p.dead {
		return
	}
	p.pos = p.pos.Add(p.Velocity.Scale(dt))
	if geom.Dist(p.origin, p.pos) >= p.MaxRange {
		p.Kill()
	}
}

// Trap sits stealthed until triggered; triggering drops the concealment so
// the opposing side can see it for its arming window.
type Trap struct {
	Base
}

func NewTrap(side model.Side, pos geom.Vec2, radius float64) *Trap {
	return &Trap{
		Base: Base{
			side:      side,
			kind:      model.KindTrap,
			pos:       pos,
			radius:    radius,
			mass:      1,
			stealthed: true,
		},
	}
}

// Trigger reveals the trap and marks it spent.
func (t *Trap) Trigger() {
	t.stealthed = false
	t.Kill()
}
