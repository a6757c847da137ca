package navigation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartpark/smartpark/internal/geo"
	"github.com/smartpark/smartpark/internal/navigation"
	"github.com/smartpark/smartpark/internal/parking"
)

func node(x, y float64, floor int) navigation.GridNode {
	return navigation.GridNode{X: x, Y: y, Floor: floor}
}

func nodeTypes(path []navigation.PathNode) []navigation.NodeType {
	out := make([]navigation.NodeType, 0, len(path))
	for _, n := range path {
		out = append(out, n.Type)
	}
	return out
}

func instructionTypes(ins []navigation.Instruction) []navigation.InstructionType {
	out := make([]navigation.InstructionType, 0, len(ins))
	for _, in := range ins {
		out = append(out, in.Type)
	}
	return out
}

// assertWellFormed checks step lengths and elevator bracketing.
func assertWellFormed(t *testing.T, grid *navigation.Grid, path []navigation.PathNode) {
	t.Helper()
	for i := 1; i < len(path); i++ {
		prev, cur := path[i-1], path[i]
		if prev.Floor == cur.Floor {
			step := geo.Euclidean(prev.X, prev.Y, cur.X, cur.Y)
			assert.LessOrEqual(t, step, grid.MaxStep()+1e-9, "step %d", i)
			continue
		}
		assert.Equal(t, navigation.NodeElevatorEntrance, prev.Type, "step %d", i)
		assert.Equal(t, navigation.NodeElevatorExit, cur.Type, "step %d", i)
		assert.Equal(t, prev.X, cur.X)
		assert.Equal(t, prev.Y, cur.Y)
	}
}

func TestFindPath_StraightLine(t *testing.T) {
	grid := navigation.DefaultGrid()

	res, err := navigation.FindPath(node(2.5, 2.5, 1), node(22.5, 2.5, 1), grid, navigation.DefaultOptions())
	require.NoError(t, err)
	require.False(t, res.Failed)

	assert.Equal(t, []navigation.NodeType{
		navigation.NodeStart,
		navigation.NodeWaypoint,
		navigation.NodeWaypoint,
		navigation.NodeWaypoint,
		navigation.NodeDestination,
	}, nodeTypes(res.Path))
	assert.InDelta(t, 20.0, res.TotalDistance, 1e-9)
	assert.Equal(t, 1, res.EstimatedMinutes)
	assert.True(t, res.SameFloor)
	assert.Zero(t, res.FloorChanges)
	assert.Equal(t, []int{1}, res.Floors)
	assert.Positive(t, res.ExploredNodes)
	assert.Positive(t, res.Iterations)

	require.Len(t, res.Instructions, 2)
	assert.Equal(t, navigation.InstructionDepart, res.Instructions[0].Type)
	assert.Equal(t, 1, res.Instructions[0].Step)
	assert.Zero(t, res.Instructions[0].Distance)
	assert.Equal(t, navigation.HeadingEast, res.Instructions[0].Heading)

	arrival := res.Instructions[1]
	assert.Equal(t, navigation.InstructionArrival, arrival.Type)
	assert.Equal(t, 2, arrival.Step)
	assert.InDelta(t, 20.0, arrival.Distance, 1e-9)
	assert.InDelta(t, 0.25, arrival.DurationMinutes, 1e-9)
}

func TestFindPath_Diagonal(t *testing.T) {
	grid := navigation.DefaultGrid()

	res, err := navigation.FindPath(node(2.5, 2.5, 1), node(12.5, 12.5, 1), grid, navigation.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Path, 3)
	assert.InDelta(t, 2*grid.MaxStep(), res.TotalDistance, 1e-9)
	assertWellFormed(t, grid, res.Path)
}

func TestFindPath_SnapsToCellCentres(t *testing.T) {
	grid := navigation.DefaultGrid()

	res, err := navigation.FindPath(node(0, 0, 1), node(200, 150, 1), grid, navigation.DefaultOptions())
	require.NoError(t, err)
	require.False(t, res.Failed)

	first, last := res.Path[0], res.Path[len(res.Path)-1]
	assert.Equal(t, node(2.5, 2.5, 1), first.GridNode)
	assert.Equal(t, node(197.5, 147.5, 1), last.GridNode)
	assertWellFormed(t, grid, res.Path)
}

func TestFindPath_ChangesFloorThroughElevator(t *testing.T) {
	grid := navigation.DefaultGrid()

	res, err := navigation.FindPath(node(2.5, 2.5, 1), node(2.5, 2.5, 2), grid, navigation.DefaultOptions())
	require.NoError(t, err)
	require.False(t, res.Failed)

	assert.False(t, res.SameFloor)
	assert.Equal(t, 1, res.FloorChanges)
	assert.Equal(t, []int{1, 2}, res.Floors)
	assert.Equal(t, navigation.NodeStart, res.Path[0].Type)
	assert.Equal(t, navigation.NodeDestination, res.Path[len(res.Path)-1].Type)
	assertWellFormed(t, grid, res.Path)

	assert.Equal(t, []navigation.InstructionType{
		navigation.InstructionDepart,
		navigation.InstructionWalkToElevator,
		navigation.InstructionElevator,
		navigation.InstructionArrival,
	}, instructionTypes(res.Instructions))

	walk, ride, arrival := res.Instructions[1], res.Instructions[2], res.Instructions[3]
	assert.Equal(t, 1, ride.Floor)
	assert.Equal(t, 2, ride.ToFloor)
	assert.Equal(t, navigation.ElevatorRideMinutes, ride.DurationMinutes)
	assert.InDelta(t, res.TotalDistance, walk.Distance+arrival.Distance, 1e-9)
	assert.InDelta(t, walk.Distance/navigation.WalkingSpeed, walk.DurationMinutes, 1e-9)
	for i, in := range res.Instructions {
		assert.Equal(t, i+1, in.Step)
	}
}

func TestFindPath_EndpointsOnElevatorCells(t *testing.T) {
	grid := navigation.DefaultGrid()
	// E1 sits in the cell centred at (52.5, 52.5).
	elevator := func(floor int) navigation.GridNode { return node(52.5, 52.5, floor) }

	tests := []struct {
		name  string
		start navigation.GridNode
		goal  navigation.GridNode
		want  []navigation.NodeType
	}{
		{
			name:  "start on elevator",
			start: elevator(1),
			goal:  node(67.5, 52.5, 2),
		},
		{
			name:  "goal on elevator",
			start: node(37.5, 52.5, 1),
			goal:  elevator(2),
		},
		{
			name:  "elevator to elevator",
			start: elevator(1),
			goal:  elevator(3),
			want: []navigation.NodeType{
				navigation.NodeStart,
				navigation.NodeElevatorEntrance,
				navigation.NodeElevatorExit,
				navigation.NodeDestination,
			},
		},
		{
			name:  "same cell",
			start: node(21, 21, 1),
			goal:  node(23, 24, 1),
			want:  []navigation.NodeType{navigation.NodeStart, navigation.NodeDestination},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := navigation.FindPath(tt.start, tt.goal, grid, navigation.DefaultOptions())
			require.NoError(t, err)
			require.False(t, res.Failed)
			require.GreaterOrEqual(t, len(res.Path), 2)

			first, last := res.Path[0], res.Path[len(res.Path)-1]
			assert.Equal(t, navigation.NodeStart, first.Type)
			assert.Equal(t, navigation.NodeDestination, last.Type)
			assert.Equal(t, tt.start.Floor, first.Floor)
			assert.Equal(t, tt.goal.Floor, last.Floor)
			if tt.want != nil {
				assert.Equal(t, tt.want, nodeTypes(res.Path))
			}
			assertWellFormed(t, grid, res.Path)

			assert.Equal(t, navigation.InstructionDepart, res.Instructions[0].Type)
			assert.Equal(t, navigation.InstructionArrival, res.Instructions[len(res.Instructions)-1].Type)
		})
	}

	t.Run("elevator end nodes share the start position", func(t *testing.T) {
		res, err := navigation.FindPath(elevator(1), node(67.5, 52.5, 2), grid, navigation.DefaultOptions())
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(res.Path), 3)

		assert.Equal(t, navigation.NodeElevatorEntrance, res.Path[1].Type)
		assert.Equal(t, res.Path[0].GridNode, res.Path[1].GridNode)
		assert.Equal(t, 1, res.FloorChanges)
		assert.InDelta(t, 15.0, res.TotalDistance, 1e-9)
	})
}

func TestFindPath_EuclideanHeuristic(t *testing.T) {
	grid := navigation.DefaultGrid()
	opts := navigation.Options{Heuristic: navigation.HeuristicEuclidean}

	res, err := navigation.FindPath(node(2.5, 2.5, 1), node(22.5, 2.5, 1), grid, opts)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, res.TotalDistance, 1e-9)
}

func TestFindPath_Deterministic(t *testing.T) {
	grid := navigation.DefaultGrid()

	a, err := navigation.FindPath(node(2.5, 2.5, 1), node(120, 80, 3), grid, navigation.DefaultOptions())
	require.NoError(t, err)
	b, err := navigation.FindPath(node(2.5, 2.5, 1), node(120, 80, 3), grid, navigation.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFindPath_IterationCap(t *testing.T) {
	grid := navigation.DefaultGrid()

	res, err := navigation.FindPath(node(2.5, 2.5, 1), node(197.5, 147.5, 3), grid, navigation.Options{MaxIterations: 3})
	require.NoError(t, err)
	assert.True(t, res.Failed)
	assert.Equal(t, 3, res.Iterations)
	assert.Equal(t, 3, res.ExploredNodes)
	assert.Empty(t, res.Path)
	assert.Empty(t, res.Instructions)
}

func TestFindPath_Unreachable(t *testing.T) {
	grid := navigation.DefaultGrid()
	for col := 4; col <= 6; col++ {
		for row := 4; row <= 6; row++ {
			if col == 5 && row == 5 {
				continue
			}
			grid.Blocked = append(grid.Blocked, navigation.Cell{Col: col, Row: row, Floor: 1})
		}
	}

	res, err := navigation.FindPath(node(2.5, 2.5, 1), node(27.5, 27.5, 1), grid, navigation.DefaultOptions())
	require.NoError(t, err)
	assert.True(t, res.Failed)
	assert.Less(t, res.Iterations, navigation.DefaultMaxIterations)
}

func TestFindPath_RoutesAroundBlockedCells(t *testing.T) {
	grid := navigation.DefaultGrid()
	for row := 0; row <= 3; row++ {
		grid.Blocked = append(grid.Blocked, navigation.Cell{Col: 2, Row: row, Floor: 1})
	}

	res, err := navigation.FindPath(node(2.5, 2.5, 1), node(22.5, 2.5, 1), grid, navigation.DefaultOptions())
	require.NoError(t, err)
	require.False(t, res.Failed)
	assert.Greater(t, res.TotalDistance, 20.0)
	for _, n := range res.Path {
		assert.False(t, n.X == 12.5 && n.Y <= 17.5 && n.Floor == 1, "path crosses blocked cell at %v", n.GridNode)
	}
	assertWellFormed(t, grid, res.Path)
}

func TestFindPath_InvalidInput(t *testing.T) {
	grid := navigation.DefaultGrid()
	grid.Blocked = []navigation.Cell{{Col: 0, Row: 0, Floor: 1}}

	tests := []struct {
		name  string
		start navigation.GridNode
		goal  navigation.GridNode
		grid  *navigation.Grid
		opts  navigation.Options
	}{
		{"start off grid", node(-1, 5, 1), node(20, 20, 1), grid, navigation.Options{}},
		{"goal off grid", node(20, 20, 1), node(20, 151, 1), grid, navigation.Options{}},
		{"unknown floor", node(20, 20, 1), node(20, 20, 9), grid, navigation.Options{}},
		{"blocked start", node(1, 1, 1), node(20, 20, 1), grid, navigation.Options{}},
		{"nil grid", node(1, 1, 1), node(20, 20, 1), nil, navigation.Options{}},
		{"zero cell size", node(1, 1, 1), node(20, 20, 1), &navigation.Grid{Width: 10, Height: 10, Floors: []int{1}}, navigation.Options{}},
		{"unknown heuristic", node(20, 20, 1), node(30, 30, 1), grid, navigation.Options{Heuristic: "dijkstra"}},
		{"negative iterations", node(20, 20, 1), node(30, 30, 1), grid, navigation.Options{MaxIterations: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := navigation.FindPath(tt.start, tt.goal, tt.grid, tt.opts)
			assert.ErrorIs(t, err, parking.ErrInvalidInput)
		})
	}
}
