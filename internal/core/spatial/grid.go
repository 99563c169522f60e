package spatial

import (
	"math"

	"github.com/riftcore/riftcore/internal/core/geom"
	"github.com/riftcore/riftcore/internal/core/model"
)

// Entry is one inserted body: a center point plus a circular extent.
type Entry struct {
	ID     model.EntityID
	Pos    geom.Vec2
	Radius float64
}

type cellKey struct{ cx, cy int32 }

// Grid is a uniform spatial hash used for broad-phase collision pruning and
// radius queries. It is rebuilt from scratch every tick: Clear, then Insert each
// live body. Rebuilding keeps the per-tick cost predictable and avoids stale
// entries for moved or removed bodies.
type Grid struct {
	cellSize  float64
	cells     map[cellKey][]Entry
	maxRadius float64
	count     int
}

// NewGrid creates a grid with the given cell size. Cell size must be positive;
// a good value is slightly above the largest common hitbox diameter.
func NewGrid(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]Entry),
	}
}

// Clear drops every entry but keeps allocated cell slices for reuse.
func (g *Grid) Clear() {
	for k, bucket := range g.cells {
		g.cells[k] = bucket[:0]
	}
	g.maxRadius = 0
	g.count = 0
}

// Insert adds a body to the grid at its current position.
func (g *Grid) Insert(id model.EntityID, pos geom.Vec2, radius float64) {
	k := g.keyFor(pos)
	g.cells[k] = append(g.cells[k], Entry{ID: id, Pos: pos, Radius: radius})
	if radius > g.maxRadius {
		g.maxRadius = radius
	}
	g.count++
}

// Len returns the number of inserted entries.
func (g *Grid) Len() int { return g.count }

// MaxRadius returns the largest radius inserted since the last Clear.
func (g *Grid) MaxRadius() float64 { return g.maxRadius }

// QueryRadius appends to dst every entry whose center lies within dist of pos
// and returns the extended slice. The entry's own radius is not part of the
// test; callers that need overlap semantics extend dist accordingly.
func (g *Grid) QueryRadius(dst []Entry, pos geom.Vec2, dist float64) []Entry {
	minX, maxX := g.cellCoord(pos.X-dist), g.cellCoord(pos.X+dist)
	minY, maxY := g.cellCoord(pos.Y-dist), g.cellCoord(pos.Y+dist)
	for cy := minY; cy <= maxY; cy++ {
		for cx := minX; cx <= maxX; cx++ {
			for _, e := range g.cells[cellKey{cx, cy}] {
				if geom.Dist(e.Pos, pos) <= dist {
					dst = append(dst, e)
				}
			}
		}
	}
	return dst
}

// QueryNeighbors appends every entry in the cells that a body at pos with the
// given radius could overlap, accounting for the largest radius present in the
// grid. No distance filtering is applied; that is the caller's narrow phase.
func (g *Grid) QueryNeighbors(dst []Entry, pos geom.Vec2, radius float64) []Entry {
	reach := radius + g.maxRadius
	minX, maxX := g.cellCoord(pos.X-reach), g.cellCoord(pos.X+reach)
	minY, maxY := g.cellCoord(pos.Y-reach), g.cellCoord(pos.Y+reach)
	for cy := minY; cy <= maxY; cy++ {
		for cx := minX; cx <= maxX; cx++ {
			dst = append(dst, g.cells[cellKey{cx, cy}]...)
		}
	}
	return dst
}

func (g *Grid) keyFor(pos geom.Vec2) cellKey {
	return cellKey{g.cellCoord(pos.X), g.cellCoord(pos.Y)}
}

func (g *Grid) cellCoord(v float64) int32 {
	return int32(math.Floor(v / g.cellSize))
}
