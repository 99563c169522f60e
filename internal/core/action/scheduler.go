package action

import (
	"github.com/riftcore/riftcore/internal/core/model"
	"github.com/riftcore/riftcore/pkg/sequence"
)

// Effect is what a keyframe does when it fires.
type Effect uint8

const (
	EffectDamage Effect = iota
	EffectProjectile
	EffectSound
	EffectVFX
)

func (e Effect) String() string {
	switch e {
	case EffectDamage:
		return "damage"
	case EffectProjectile:
		return "projectile"
	case EffectSound:
		return "sound"
	case EffectVFX:
		return "vfx"
	}
	return "unknown"
}

// Keyframe tags one frame of an animation with a gameplay effect.
type Keyframe struct {
	Frame   int
	Effect  Effect
	Payload any
}

// Animation is an ordered keyframe list over a fixed base frame duration.
// Playback speed scales the frame duration down, e.g. attack-speed scaling.
type Animation struct {
	FrameDuration float64 // seconds per frame at speed 1.0
	Keyframes     []Keyframe
}

// Action is a single pending trigger handed to the handler when it fires.
type Action struct {
	Owner   model.EntityID
	Effect  Effect
	At      float64 // absolute scheduler time the trigger was due
	Payload any
}

// Handler receives each fired action exactly once, in trigger-time order.
type Handler func(Action)

type pending struct {
	action    Action
	handler   Handler
	cancelled bool
}

// Scheduler converts animations into absolute-time triggers on its own running
// clock, decoupling "the cast started" from "the effect lands". It fires due
// actions in ascending trigger-time order, insertion order breaking exact
// ties, and supports cancelling an entity's pending actions when an animation
// is interrupted. A cancelled action never fires; no action fires twice.
type Scheduler struct {
	clock float64
	queue *sequence.TimedQueue[*pending]
}

// NewScheduler creates a scheduler with its clock at zero.
func NewScheduler() *Scheduler {
	return &Scheduler{queue: sequence.NewTimedQueue[*pending]()}
}

// Clock returns the scheduler's running time in seconds.
func (s *Scheduler) Clock() float64 { return s.clock }

// Pending returns the number of queued, not-yet-fired actions.
func (s *Scheduler) Pending() int { return s.queue.Len() }

// Schedule queues every keyframe of anim for owner, trigger times computed as
// frame × (frameDuration / speed) relative to the current clock. A speed at or
// below zero plays the animation at its base rate.
func (s *Scheduler) Schedule(owner model.EntityID, anim Animation, speed float64, handler Handler) {
	if handler == nil || anim.FrameDuration <= 0 {
		return
	}
	if speed <= 0 {
		speed = 1
	}
	step := anim.FrameDuration / speed
	for _, kf := range anim.Keyframes {
		due := s.clock + float64(kf.Frame)*step
		s.queue.Enqueue(&pending{
			action: Action{
				Owner:   owner,
				Effect:  kf.Effect,
				At:      due,
				Payload: kf.Payload,
			},
			handler: handler,
		}, due)
	}
}

// ScheduleAt queues one action at an absolute scheduler time, for effects that
// are not tied to an animation (delayed spawns, timed despawns).
func (s *Scheduler) ScheduleAt(owner model.EntityID, effect Effect, at float64, payload any, handler Handler) {
	if handler == nil {
		return
	}
	s.queue.Enqueue(&pending{
		action:  Action{Owner: owner, Effect: effect, At: at, Payload: payload},
		handler: handler,
	}, at)
}

// Update advances the clock by dt and fires every action whose trigger time
// has elapsed. Handlers run synchronously in firing order.
func (s *Scheduler) Update(dt float64) {
	s.clock += dt
	for {
		p, ok := s.queue.PopDue(s.clock)
		if !ok {
			return
		}
		if p.cancelled {
			continue
		}
		p.handler(p.action)
	}
}

// Cancel drops every pending action owned by owner. If effects are given, only
// those effect kinds are dropped. Returns the number of cancelled actions.
func (s *Scheduler) Cancel(owner model.EntityID, effects ...Effect) int {
	return s.queue.RemoveIf(func(p *pending) bool {
		if p.action.Owner != owner {
			return false
		}
		if len(effects) == 0 {
			p.cancelled = true
			return true
		}
		for _, ef := range effects {
			if p.action.Effect == ef {
				p.cancelled = true
				return true
			}
		}
		return false
	})
}
