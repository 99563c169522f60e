package server

import (
	"github.com/riftcore/riftcore/internal/core/game"
	"github.com/riftcore/riftcore/internal/core/model"
)

// EntityView is the per-entity slice of a snapshot. Field layout is internal
// to this feed; it is not a wire-protocol contract.
type EntityView struct {
	ID     uint64  `json:"id"`
	Kind   string  `json:"kind"`
	Side   uint8   `json:"side"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// Snapshot is what one side's clients receive after a tick: exactly the
// entities that side can see, at their collision-resolved positions.
type Snapshot struct {
	Tick     uint64       `json:"tick"`
	Entities []EntityView `json:"entities"`
}

// BuildSnapshot renders the viewing side's visible entities for the
// just-completed tick. It must be called from the tick goroutine, after the
// tick has fully resolved.
func BuildSnapshot(w *game.World, viewer model.Side) Snapshot {
	visible := w.VisibleEntitiesForSide(viewer)
	snap := Snapshot{
		Tick:     w.Tick(),
		Entities: make([]EntityView, 0, len(visible)),
	}
	for _, e := range visible {
		pos := e.Position()
		snap.Entities = append(snap.Entities, EntityView{
			ID:     uint64(e.ID()),
			Kind:   e.Kind().String(),
			Side:   uint8(e.Side()),
			X:      pos.X,
			Y:      pos.Y,
			Radius: e.Radius(),
		})
	}
	return snap
}
