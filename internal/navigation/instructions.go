package navigation

import (
	"math"

	"github.com/smartpark/smartpark/internal/geo"
)

// ElevatorRideMinutes is the time budgeted for one elevator ride.
const ElevatorRideMinutes = 1.0

// InstructionType tags a turn-by-turn step.
type InstructionType string

const (
	InstructionDepart         InstructionType = "depart"
	InstructionWalkToElevator InstructionType = "walk_to_elevator"
	InstructionElevator       InstructionType = "elevator"
	InstructionArrival        InstructionType = "arrival"
)

// Heading is a compass direction in grid terms, with y pointing north.
type Heading string

const (
	HeadingEast  Heading = "east"
	HeadingNorth Heading = "north"
	HeadingWest  Heading = "west"
	HeadingSouth Heading = "south"
)

// Instruction is one step of a route description. Rendering it as text is
// left to the caller.
type Instruction struct {
	Step            int             `json:"step"`
	Type            InstructionType `json:"type"`
	Icon            string          `json:"icon"`
	Floor           int             `json:"floor"`
	ToFloor         int             `json:"toFloor,omitempty"`
	Distance        float64         `json:"distance"`
	DurationMinutes float64         `json:"duration"`
	Heading         Heading         `json:"heading,omitempty"`
}

// leg is a same-floor run of nodes.
type leg struct {
	nodes []PathNode
}

func (l leg) distance() float64 {
	var d float64
	for i := 1; i < len(l.nodes); i++ {
		d += geo.Euclidean(l.nodes[i-1].X, l.nodes[i-1].Y, l.nodes[i].X, l.nodes[i].Y)
	}
	return d
}

func (l leg) heading() Heading {
	first, last := l.nodes[0], l.nodes[len(l.nodes)-1]
	return headingOf(last.X-first.X, last.Y-first.Y)
}

func headingOf(dx, dy float64) Heading {
	switch {
	case dx == 0 && dy == 0:
		return ""
	case math.Abs(dx) >= math.Abs(dy) && dx > 0:
		return HeadingEast
	case math.Abs(dx) >= math.Abs(dy):
		return HeadingWest
	case dy > 0:
		return HeadingNorth
	default:
		return HeadingSouth
	}
}

func splitLegs(path []PathNode) []leg {
	var legs []leg
	current := leg{}
	for i, n := range path {
		if i > 0 && path[i-1].Floor != n.Floor {
			legs = append(legs, current)
			current = leg{}
		}
		current.nodes = append(current.nodes, n)
	}
	return append(legs, current)
}

// buildInstructions describes a path as depart, one walk and ride per floor
// change, then arrival.
func buildInstructions(path []PathNode) []Instruction {
	if len(path) == 0 {
		return []Instruction{}
	}

	legs := splitLegs(path)
	out := make([]Instruction, 0, 2*len(legs))
	add := func(in Instruction) {
		in.Step = len(out) + 1
		out = append(out, in)
	}

	add(Instruction{
		Type:    InstructionDepart,
		Icon:    "start",
		Floor:   path[0].Floor,
		Heading: legs[0].heading(),
	})

	for i, l := range legs {
		d := l.distance()
		floor := l.nodes[0].Floor
		if i == len(legs)-1 {
			add(Instruction{
				Type:            InstructionArrival,
				Icon:            "flag",
				Floor:           floor,
				Distance:        d,
				DurationMinutes: d / WalkingSpeed,
				Heading:         l.heading(),
			})
			break
		}
		add(Instruction{
			Type:            InstructionWalkToElevator,
			Icon:            "walk",
			Floor:           floor,
			Distance:        d,
			DurationMinutes: d / WalkingSpeed,
			Heading:         l.heading(),
		})
		add(Instruction{
			Type:            InstructionElevator,
			Icon:            "elevator",
			Floor:           floor,
			ToFloor:         legs[i+1].nodes[0].Floor,
			DurationMinutes: ElevatorRideMinutes,
		})
	}
	return out
}
