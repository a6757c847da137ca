// Package navigation finds walking routes through a multi-floor garage.
package navigation

import (
	"math"
	"slices"

	"github.com/smartpark/smartpark/internal/parking"
)

// GridNode is a position in meters on a floor.
type GridNode struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Floor int     `json:"floor"`
}

// Cell addresses one grid square on a floor.
type Cell struct {
	Col   int `json:"col"`
	Row   int `json:"row"`
	Floor int `json:"floor"`
}

// Elevator connects the same cell across the floors it serves.
type Elevator struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Floors []int   `json:"floors"`
}

// Grid describes the walkable area of a garage.
type Grid struct {
	Width        float64    `json:"width"`
	Height       float64    `json:"height"`
	CellSize     float64    `json:"cellSize"`
	Floors       []int      `json:"floors"`
	Elevators    []Elevator `json:"elevators"`
	Blocked      []Cell     `json:"blocked,omitempty"`
	ElevatorCost float64    `json:"elevatorCost"`
}

// DefaultGrid returns the demo garage layout.
func DefaultGrid() *Grid {
	return &Grid{
		Width:    200,
		Height:   150,
		CellSize: 5,
		Floors:   []int{1, 2, 3},
		Elevators: []Elevator{
			{ID: "E1", X: 50, Y: 50, Floors: []int{1, 2, 3}},
			{ID: "E2", X: 150, Y: 100, Floors: []int{1, 2, 3}},
		},
		ElevatorCost: 15,
	}
}

// DefaultEntrance is the pedestrian entrance of the demo garage.
var DefaultEntrance = GridNode{X: 100, Y: 0, Floor: 1}

// MaxStep is the longest single same-floor move, a diagonal across one cell.
func (g *Grid) MaxStep() float64 {
	return g.CellSize * math.Sqrt2
}

// Validate checks the grid dimensions.
func (g *Grid) Validate() error {
	if g == nil {
		return parking.Invalid("grid", "grid is required")
	}
	if !parking.Positive(g.Width) || !parking.Positive(g.Height) {
		return parking.Invalid("grid", "width and height must be positive, got %vx%v", g.Width, g.Height)
	}
	if !parking.Positive(g.CellSize) {
		return parking.Invalid("grid.cellSize", "must be a positive number, got %v", g.CellSize)
	}
	if len(g.Floors) == 0 {
		return parking.Invalid("grid.floors", "at least one floor is required")
	}
	if g.ElevatorCost < 0 || math.IsNaN(g.ElevatorCost) {
		return parking.Invalid("grid.elevatorCost", "must be non-negative, got %v", g.ElevatorCost)
	}
	return nil
}

func (g *Grid) cols() int { return int(math.Ceil(g.Width / g.CellSize)) }
func (g *Grid) rows() int { return int(math.Ceil(g.Height / g.CellSize)) }

func (g *Grid) hasFloor(floor int) bool {
	return slices.Contains(g.Floors, floor)
}

// cellOf snaps a node to the cell containing it. The far edges belong to
// the last column and row.
func (g *Grid) cellOf(n GridNode) Cell {
	col := int(n.X / g.CellSize)
	row := int(n.Y / g.CellSize)
	return Cell{
		Col:   min(col, g.cols()-1),
		Row:   min(row, g.rows()-1),
		Floor: n.Floor,
	}
}

// center returns the node at the middle of c.
func (g *Grid) center(c Cell) GridNode {
	return GridNode{
		X:     (float64(c.Col) + 0.5) * g.CellSize,
		Y:     (float64(c.Row) + 0.5) * g.CellSize,
		Floor: c.Floor,
	}
}

func (g *Grid) inBounds(c Cell) bool {
	return c.Col >= 0 && c.Row >= 0 && c.Col < g.cols() && c.Row < g.rows()
}

// validNode checks that a node can start or end a route.
func (g *Grid) validNode(field string, n GridNode, blocked map[Cell]bool) error {
	if math.IsNaN(n.X) || math.IsNaN(n.Y) || n.X < 0 || n.Y < 0 || n.X > g.Width || n.Y > g.Height {
		return parking.Invalid(field, "position (%v, %v) is outside the %vx%v grid", n.X, n.Y, g.Width, g.Height)
	}
	if !g.hasFloor(n.Floor) {
		return parking.Invalid(field+".floor", "floor %d does not exist", n.Floor)
	}
	if blocked[g.cellOf(n)] {
		return parking.Invalid(field, "position (%v, %v) on floor %d is blocked", n.X, n.Y, n.Floor)
	}
	return nil
}

// elevatorLinks maps every elevator cell to the cells it reaches on other floors.
func (g *Grid) elevatorLinks() map[Cell][]Cell {
	links := make(map[Cell][]Cell)
	for _, e := range g.Elevators {
		for _, from := range e.Floors {
			if !g.hasFloor(from) {
				continue
			}
			src := g.cellOf(GridNode{X: e.X, Y: e.Y, Floor: from})
			for _, to := range e.Floors {
				if to == from || !g.hasFloor(to) {
					continue
				}
				links[src] = append(links[src], Cell{Col: src.Col, Row: src.Row, Floor: to})
			}
		}
	}
	return links
}

func (g *Grid) blockedSet() map[Cell]bool {
	set := make(map[Cell]bool, len(g.Blocked))
	for _, c := range g.Blocked {
		set[c] = true
	}
	return set
}
