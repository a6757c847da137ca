// Package simulate fabricates demo parking data from an injected random source.
package simulate

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/smartpark/smartpark/internal/allocation"
	"github.com/smartpark/smartpark/internal/credit"
	"github.com/smartpark/smartpark/internal/insights"
	"github.com/smartpark/smartpark/internal/navigation"
	"github.com/smartpark/smartpark/internal/parking"
	"github.com/smartpark/smartpark/internal/store"
)

// campus is the centre of the demo lots.
var campus = parking.Coordinates{Lat: 41.7655, Lng: 123.4190}

type lotTemplate struct {
	name      string
	building  string
	total     int
	available int
	basePrice float64
}

var lotTemplates = []lotTemplate{
	{"Mechatronics Hall Parking", "Mechatronics Hall", 500, 125, 5},
	{"Architecture Hall Parking", "Architecture Hall", 800, 234, 3},
	{"Dacheng Parking", "Dacheng Teaching Building", 1200, 456, 4},
	{"Yifu Parking", "Yifu Teaching Building", 600, 178, 2},
	{"He Shili Parking", "He Shili Teaching Building", 650, 210, 3},
	{"Mining Hall Parking", "Mining Hall", 450, 132, 4},
	{"Metallurgy Hall Parking", "Metallurgy Hall", 380, 95, 3},
}

var (
	areas         = []string{"A", "B", "C", "D"}
	spotsPerArea  = 10
	demoUserNames = []string{"Zhang San", "Li Si", "Wang Wu"}
	vehicleTypes  = []parking.VehicleType{parking.VehicleSedan, parking.VehicleSUV, parking.VehicleMPV, parking.VehicleCompact}
)

// Generator produces demo data. It is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
	now time.Time
}

// New creates a generator over rng with now as the reference time.
func New(rng *rand.Rand, now time.Time) *Generator {
	return &Generator{rng: rng, now: now}
}

// NewSeeded creates a generator with a PCG source built from seed.
func NewSeeded(seed uint64, now time.Time) *Generator {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), now)
}

// Lots returns the demo lots around the campus.
func (g *Generator) Lots() []parking.Lot {
	lots := make([]parking.Lot, 0, len(lotTemplates))
	for i, t := range lotTemplates {
		lots = append(lots, parking.Lot{
			ID:            fmt.Sprintf("lot-%d", i+1),
			Name:          t.name,
			Address:       t.building + ", Nanhu Campus, Heping District, Shenyang",
			District:      "Heping",
			TotalSpots:    t.total,
			OccupiedSpots: t.total - t.available,
			BasePrice:     t.basePrice,
			Rating:        round1(3.5 + g.rng.Float64()*1.5),
			Location: parking.Coordinates{
				Lat: campus.Lat + (g.rng.Float64()-0.5)*0.012,
				Lng: campus.Lng + (g.rng.Float64()-0.5)*0.012,
			},
			HasDiscount:  g.rng.Float64() < 0.3,
			HasEVCharger: g.rng.Float64() < 0.5,
		})
	}
	return lots
}

// Spots returns a sample of spots across the floors of grid. Each area gets
// its own occupancy level around the lot's rate.
func (g *Generator) Spots(lot parking.Lot, grid *navigation.Grid) []allocation.Spot {
	lotRate, err := lot.OccupancyRate()
	if err != nil {
		lotRate = 0.5
	}

	var spots []allocation.Spot
	for _, floor := range grid.Floors {
		for ai, area := range areas {
			areaRate := clamp(lotRate+(g.rng.Float64()-0.5)*0.8, 0, 1)
			start := len(spots)
			occupied := 0
			for n := 0; n < spotsPerArea; n++ {
				s := allocation.Spot{
					ID:                 fmt.Sprintf("F%d-%s-%02d", floor, area, n+1),
					Floor:              floor,
					Area:               area,
					Location:           fmt.Sprintf("Floor %d, Area %s, No. %d", floor, area, n+1),
					Length:             round1(5.0 + g.rng.Float64()*0.6),
					Width:              round1(2.2 + g.rng.Float64()*0.4),
					DistanceToEntrance: math.Round(10 + float64(ai)*40 + g.rng.Float64()*40 + float64(floor-1)*30),
					Price:              lot.BasePrice,
					Occupied:           g.rng.Float64() < areaRate,
				}
				if s.Occupied {
					occupied++
				}
				spots = append(spots, s)
			}
			for i := start; i < len(spots); i++ {
				spots[i].AreaOccupancy = parking.Occupancy{Occupied: occupied, Total: spotsPerArea}
			}
		}
	}
	return spots
}

// Snapshot summarizes spots into the operational snapshot of a lot.
func (g *Generator) Snapshot(lot parking.Lot, spots []allocation.Spot) *insights.Snapshot {
	var stats []insights.AreaStat
	index := make(map[string]int)
	for _, s := range spots {
		id := fmt.Sprintf("F%d-%s", s.Floor, s.Area)
		i, ok := index[id]
		if !ok {
			i = len(stats)
			index[id] = i
			stats = append(stats, insights.AreaStat{ID: id, Name: fmt.Sprintf("Floor %d Area %s", s.Floor, s.Area)})
		}
		stats[i].TotalSpots++
		if s.Occupied {
			stats[i].OccupiedSpots++
		}
	}

	history := make([]insights.DailyStat, 0, 30)
	day := time.Date(g.now.Year(), g.now.Month(), g.now.Day(), 0, 0, 0, 0, g.now.Location())
	for i := 0; i < 30; i++ {
		history = append(history, insights.DailyStat{
			Date:          day.AddDate(0, 0, -i),
			Revenue:       math.Round(40000 + g.rng.Float64()*10000),
			Vehicles:      800 + g.rng.IntN(200),
			OccupancyRate: 0.6 + g.rng.Float64()*0.3,
		})
	}

	return &insights.Snapshot{
		LotID:          lot.ID,
		At:             g.now,
		DailyRevenue:   history[0].Revenue,
		AvgDuration:    round1(1.5 + g.rng.Float64()*3),
		ShortTermRatio: round2(0.2 + g.rng.Float64()*0.5),
		Areas:          stats,
		History:        history,
		Devices:        g.Devices(lot),
	}
}

// Devices returns the equipment of a lot with random faults.
func (g *Generator) Devices(lot parking.Lot) []insights.Device {
	templates := []struct {
		kind     string
		location string
		level    insights.CriticalLevel
	}{
		{"Entrance camera", "Main entrance, floor 1", insights.CriticalHigh},
		{"Barrier controller", "Exit, floor 1", insights.CriticalHigh},
		{"Spot sensor", "Floor 2, Area C", insights.CriticalMedium},
		{"Guidance display", "Elevator lobby, floor 1", insights.CriticalLow},
	}

	devices := make([]insights.Device, 0, len(templates))
	for i, t := range templates {
		d := insights.Device{
			ID:            fmt.Sprintf("%s-dev-%02d", lot.ID, i+1),
			Name:          t.kind,
			Location:      t.location,
			Status:        insights.DeviceNormal,
			CriticalLevel: t.level,
		}
		if g.rng.Float64() < 0.15 {
			faultAt := g.now.Add(-time.Duration(g.rng.IntN(12*60)) * time.Minute)
			d.Status = insights.DeviceFault
			d.FaultTime = &faultAt
		}
		devices = append(devices, d)
	}
	return devices
}

// Users returns the demo drivers with parking history at lots.
func (g *Generator) Users(lots []parking.Lot) []*store.User {
	users := make([]*store.User, 0, len(demoUserNames))
	for i, name := range demoUserNames {
		vt := vehicleTypes[g.rng.IntN(len(vehicleTypes))]
		history := g.history(lots, vt)

		total := len(history) + g.rng.IntN(20)
		users = append(users, &store.User{
			ID:             fmt.Sprintf("user-%d", i+1),
			Name:           name,
			VehicleType:    vt,
			NeedsEVCharger: g.rng.Float64() < 0.3,
			Credit: credit.Stats{
				TotalPayments:      total,
				OnTimePayments:     total - g.rng.IntN(min(3, total)+1),
				MissedReservations: g.rng.IntN(3),
				Complaints:         g.rng.IntN(2),
				PositiveReviews:    g.rng.IntN(12),
				TotalParkingTimes:  len(history) + g.rng.IntN(60),
			},
			History: history,
		})
	}
	return users
}

// history favours the first three lots so that profiles have frequent lots.
func (g *Generator) history(lots []parking.Lot, vt parking.VehicleType) []parking.HistoryRecord {
	if len(lots) == 0 {
		return nil
	}
	n := 5 + g.rng.IntN(11)
	records := make([]parking.HistoryRecord, 0, n)
	for i := 0; i < n; i++ {
		lot := lots[g.rng.IntN(min(3, len(lots)))]
		if g.rng.Float64() < 0.25 {
			lot = lots[g.rng.IntN(len(lots))]
		}
		records = append(records, parking.HistoryRecord{
			LotID:       lot.ID,
			Fee:         math.Round(5 + g.rng.Float64()*35),
			Duration:    round1(0.5 + g.rng.Float64()*4.5),
			Distance:    math.Round(50 + g.rng.Float64()*750),
			VehicleType: vt,
			Timestamp:   g.now.AddDate(0, 0, -(n - i)),
		})
	}
	return records
}

// ParkedVehicles places up to n vehicles on occupied spots of the lot.
func (g *Generator) ParkedVehicles(lot parking.Lot, spots []allocation.Spot, grid *navigation.Grid, n int) []navigation.ParkedVehicle {
	var vehicles []navigation.ParkedVehicle
	for _, s := range spots {
		if len(vehicles) == n {
			break
		}
		if !s.Occupied {
			continue
		}
		vehicles = append(vehicles, navigation.ParkedVehicle{
			Plate:      fmt.Sprintf("LN-%05d", g.rng.IntN(100000)),
			LotID:      lot.ID,
			SpotID:     s.ID,
			Position:   gridPosition(s, grid),
			ParkedAt:   g.now.Add(-time.Duration(15+g.rng.IntN(8*60)) * time.Minute),
			FeePaid:    0,
			HourlyRate: lot.BasePrice,
		})
	}
	return vehicles
}

// gridPosition lays areas out as columns and spot numbers as rows.
func gridPosition(s allocation.Spot, grid *navigation.Grid) navigation.GridNode {
	col := 0
	for i, a := range areas {
		if a == s.Area {
			col = i
		}
	}
	num, err := strconv.Atoi(s.ID[len(s.ID)-2:])
	if err != nil {
		num = 1
	}

	colWidth := grid.Width / float64(len(areas))
	rowHeight := grid.Height / float64(spotsPerArea)
	return navigation.GridNode{
		X:     (float64(col) + 0.5) * colWidth,
		Y:     (float64(max(num-1, 0)) + 0.5) * rowHeight,
		Floor: s.Floor,
	}
}

// Seed fills repo with a complete demo data set and returns the lots.
func (g *Generator) Seed(repo *store.InMemoryRepository, grid *navigation.Grid) []parking.Lot {
	lots := g.Lots()
	for _, lot := range lots {
		repo.PutLot(lot)
		spots := g.Spots(lot, grid)
		repo.PutSpots(lot.ID, spots)
		repo.PutSnapshot(g.Snapshot(lot, spots))
		for _, v := range g.ParkedVehicles(lot, spots, grid, 2) {
			repo.PutVehicle(v)
		}
	}
	for _, u := range g.Users(lots) {
		repo.PutUser(u)
	}
	return lots
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
