package navigation

import (
	"container/heap"
	"math"
	"slices"

	"github.com/smartpark/smartpark/internal/geo"
	"github.com/smartpark/smartpark/internal/parking"
)

// DefaultMaxIterations bounds the search when Options leaves it unset.
const DefaultMaxIterations = 10000

// WalkingSpeed is the assumed walking pace in meters per minute.
const WalkingSpeed = 80.0

// Heuristic selects the remaining-cost estimate.
type Heuristic string

const (
	HeuristicManhattan Heuristic = "manhattan"
	HeuristicEuclidean Heuristic = "euclidean"
)

// Valid reports whether h is a known heuristic.
func (h Heuristic) Valid() bool {
	return h == HeuristicManhattan || h == HeuristicEuclidean
}

// Options tunes a search. Zero fields take defaults.
type Options struct {
	// Heuristic for the remaining-cost estimate.
	// Default: manhattan
	Heuristic Heuristic `json:"heuristic,omitempty"`

	// MaxIterations caps the number of expanded nodes.
	// Default: 10000
	MaxIterations int `json:"maxIterations,omitempty"`

	// GoalTolerance is how close in meters a node must be to the goal.
	// Default: half a cell
	GoalTolerance float64 `json:"goalTolerance,omitempty"`
}

// DefaultOptions returns the default search options.
func DefaultOptions() Options {
	return Options{
		Heuristic:     HeuristicManhattan,
		MaxIterations: DefaultMaxIterations,
	}
}

// NodeType tags a node of a returned path.
type NodeType string

const (
	NodeStart            NodeType = "start"
	NodeWaypoint         NodeType = "waypoint"
	NodeElevatorEntrance NodeType = "elevator_entrance"
	NodeElevatorExit     NodeType = "elevator_exit"
	NodeDestination      NodeType = "destination"
)

// PathNode is one step of a route.
type PathNode struct {
	GridNode
	Type NodeType `json:"type"`
}

// PathResult is the outcome of a search. A failed search carries no path.
type PathResult struct {
	Path             []PathNode    `json:"path"`
	Instructions     []Instruction `json:"instructions"`
	TotalDistance    float64       `json:"totalDistance"`
	EstimatedMinutes int           `json:"estimatedTime"`
	Floors           []int         `json:"floors"`
	SameFloor        bool          `json:"sameFloor"`
	FloorChanges     int           `json:"floorChanges"`
	ExploredNodes    int           `json:"exploredNodes"`
	Iterations       int           `json:"iterations"`
	Failed           bool          `json:"failed"`
}

// FindPath runs A* from start to goal. Both ends snap to their cell centres.
// An unreachable goal or an exhausted iteration budget yields a result with
// Failed set, not an error.
func FindPath(start, goal GridNode, grid *Grid, opts Options) (*PathResult, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	opts, err := resolveOptions(opts, grid)
	if err != nil {
		return nil, err
	}

	blocked := grid.blockedSet()
	if err := grid.validNode("start", start, blocked); err != nil {
		return nil, err
	}
	if err := grid.validNode("goal", goal, blocked); err != nil {
		return nil, err
	}

	s := searcher{
		grid:    grid,
		opts:    opts,
		blocked: blocked,
		links:   grid.elevatorLinks(),
		goal:    grid.center(grid.cellOf(goal)),
	}
	cells, explored, iterations := s.run(grid.cellOf(start))

	result := &PathResult{
		Path:          []PathNode{},
		Instructions:  []Instruction{},
		Floors:        []int{},
		SameFloor:     start.Floor == goal.Floor,
		ExploredNodes: explored,
		Iterations:    iterations,
	}
	if cells == nil {
		result.Failed = true
		return result, nil
	}

	result.Path = s.typedPath(cells)
	summarize(result)
	result.Instructions = buildInstructions(result.Path)
	return result, nil
}

func resolveOptions(opts Options, grid *Grid) (Options, error) {
	if opts.Heuristic == "" {
		opts.Heuristic = HeuristicManhattan
	}
	if !opts.Heuristic.Valid() {
		return opts, parking.Invalid("heuristic", "unknown heuristic %q", opts.Heuristic)
	}
	if opts.MaxIterations < 0 {
		return opts, parking.Invalid("maxIterations", "must not be negative, got %d", opts.MaxIterations)
	}
	if opts.MaxIterations == 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.GoalTolerance < 0 || math.IsNaN(opts.GoalTolerance) {
		return opts, parking.Invalid("goalTolerance", "must not be negative, got %v", opts.GoalTolerance)
	}
	if opts.GoalTolerance == 0 {
		opts.GoalTolerance = grid.CellSize / 2
	}
	return opts, nil
}

type searcher struct {
	grid    *Grid
	opts    Options
	blocked map[Cell]bool
	links   map[Cell][]Cell
	goal    GridNode
}

// run returns the cells from start to goal, or nil when the search fails.
func (s *searcher) run(start Cell) ([]Cell, int, int) {
	open := &openSet{}
	g := map[Cell]float64{start: 0}
	cameFrom := make(map[Cell]Cell)
	closed := make(map[Cell]bool)

	var seq int
	push := func(c Cell, cost float64) {
		heap.Push(open, &openItem{cell: c, g: cost, f: cost + s.estimate(c), seq: seq})
		seq++
	}
	push(start, 0)

	iterations := 0
	for open.Len() > 0 && iterations < s.opts.MaxIterations {
		current := heap.Pop(open).(*openItem)
		if closed[current.cell] {
			continue
		}
		iterations++
		closed[current.cell] = true

		if s.reached(current.cell) {
			return reconstruct(cameFrom, current.cell), len(closed), iterations
		}

		for _, e := range s.neighbors(current.cell) {
			if closed[e.to] {
				continue
			}
			cost := current.g + e.cost
			if known, ok := g[e.to]; ok && cost >= known {
				continue
			}
			g[e.to] = cost
			cameFrom[e.to] = current.cell
			push(e.to, cost)
		}
	}
	return nil, len(closed), iterations
}

func (s *searcher) reached(c Cell) bool {
	n := s.grid.center(c)
	return n.Floor == s.goal.Floor && geo.Euclidean(n.X, n.Y, s.goal.X, s.goal.Y) <= s.opts.GoalTolerance
}

// estimate is the heuristic distance to the goal plus one elevator ride when
// the floors differ.
func (s *searcher) estimate(c Cell) float64 {
	n := s.grid.center(c)
	var h float64
	if s.opts.Heuristic == HeuristicEuclidean {
		h = geo.Euclidean(n.X, n.Y, s.goal.X, s.goal.Y)
	} else {
		h = geo.Manhattan(n.X, n.Y, s.goal.X, s.goal.Y)
	}
	if n.Floor != s.goal.Floor {
		h += s.grid.ElevatorCost
	}
	return h
}

type edge struct {
	to   Cell
	cost float64
}

var directions = [8][2]int{
	{1, 0}, {0, 1}, {-1, 0}, {0, -1},
	{1, 1}, {-1, 1}, {-1, -1}, {1, -1},
}

func (s *searcher) neighbors(c Cell) []edge {
	out := make([]edge, 0, 8+len(s.links[c]))
	for _, d := range directions {
		next := Cell{Col: c.Col + d[0], Row: c.Row + d[1], Floor: c.Floor}
		if !s.grid.inBounds(next) || s.blocked[next] {
			continue
		}
		cost := s.grid.CellSize
		if d[0] != 0 && d[1] != 0 {
			cost = s.grid.MaxStep()
		}
		out = append(out, edge{to: next, cost: cost})
	}
	for _, next := range s.links[c] {
		if s.blocked[next] {
			continue
		}
		out = append(out, edge{to: next, cost: s.grid.ElevatorCost})
	}
	return out
}

func reconstruct(cameFrom map[Cell]Cell, end Cell) []Cell {
	path := []Cell{end}
	for {
		prev, ok := cameFrom[path[len(path)-1]]
		if !ok {
			break
		}
		path = append(path, prev)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// typedPath converts cells to nodes. A floor change marks the nodes on
// either side as elevator entrance and exit. The path always opens with a
// start node and closes with a destination node; when an end cell is also
// an elevator stop, the end node is repeated at the same position.
func (s *searcher) typedPath(cells []Cell) []PathNode {
	out := make([]PathNode, 0, len(cells)+2)
	last := len(cells) - 1
	for i, c := range cells {
		pos := s.grid.center(c)
		t := NodeWaypoint
		switch {
		case i < last && cells[i+1].Floor != c.Floor:
			t = NodeElevatorEntrance
		case i > 0 && cells[i-1].Floor != c.Floor:
			t = NodeElevatorExit
		case i == 0:
			t = NodeStart
		case i == last:
			t = NodeDestination
		}
		if i == 0 && t != NodeStart {
			out = append(out, PathNode{GridNode: pos, Type: NodeStart})
		}
		out = append(out, PathNode{GridNode: pos, Type: t})
		if i == last && t != NodeDestination {
			out = append(out, PathNode{GridNode: pos, Type: NodeDestination})
		}
	}
	return out
}

// summarize fills the distance and floor fields from the path.
func summarize(r *PathResult) {
	for i, n := range r.Path {
		if !slices.Contains(r.Floors, n.Floor) {
			r.Floors = append(r.Floors, n.Floor)
		}
		if i == 0 {
			continue
		}
		prev := r.Path[i-1]
		if prev.Floor != n.Floor {
			r.FloorChanges++
			continue
		}
		r.TotalDistance += geo.Euclidean(prev.X, prev.Y, n.X, n.Y)
	}
	r.EstimatedMinutes = int(math.Ceil(r.TotalDistance / WalkingSpeed))
}

// openItem is a frontier entry. seq breaks f ties in insertion order.
type openItem struct {
	cell Cell
	g    float64
	f    float64
	seq  int
}

type openSet []*openItem

func (o openSet) Len() int { return len(o) }

func (o openSet) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	return o[i].seq < o[j].seq
}

func (o openSet) Swap(i, j int) { o[i], o[j] = o[j], o[i] }

func (o *openSet) Push(x any) { *o = append(*o, x.(*openItem)) }

func (o *openSet) Pop() any {
	old := *o
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*o = old[:n-1]
	return item
}
