package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/smartpark/smartpark/internal/allocation"
	"github.com/smartpark/smartpark/internal/api/handler"
	"github.com/smartpark/smartpark/internal/credit"
	"github.com/smartpark/smartpark/internal/featureflags"
	"github.com/smartpark/smartpark/internal/insights"
	"github.com/smartpark/smartpark/internal/navigation"
	"github.com/smartpark/smartpark/internal/parking"
	"github.com/smartpark/smartpark/internal/store"
	"github.com/smartpark/smartpark/internal/weather"
)

// fixedNow is a Wednesday afternoon outside peak hours and holidays.
var fixedNow = time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)

var (
	centralLot = parking.Lot{
		ID:            "lot-1",
		Name:          "Central",
		TotalSpots:    100,
		OccupiedSpots: 50,
		BasePrice:     10,
		Rating:        4.6,
		Location:      parking.Coordinates{Lat: 31.2304, Lng: 121.4737},
		HasEVCharger:  true,
	}
	riversideLot = parking.Lot{
		ID:            "lot-2",
		Name:          "Riverside",
		TotalSpots:    40,
		OccupiedSpots: 38,
		BasePrice:     8,
		Rating:        3.9,
		Location:      parking.Coordinates{Lat: 31.2340, Lng: 121.4737},
	}
	farLot = parking.Lot{
		ID:            "lot-3",
		Name:          "Airport",
		TotalSpots:    500,
		OccupiedSpots: 100,
		BasePrice:     6,
		Rating:        4.0,
		Location:      parking.Coordinates{Lat: 31.1443, Lng: 121.8083},
	}
)

func fixtureRepository() *store.InMemoryRepository {
	repo := store.NewInMemoryRepository()
	repo.PutLot(centralLot)
	repo.PutLot(riversideLot)
	repo.PutLot(farLot)

	repo.PutSpots("lot-1", []allocation.Spot{
		{ID: "F1-A-01", Floor: 1, Area: "A", Length: 5.5, Width: 2.5, DistanceToEntrance: 20, Price: 10,
			AreaOccupancy: parking.Occupancy{Occupied: 2, Total: 10}},
		{ID: "F1-A-02", Floor: 1, Area: "A", Length: 5.5, Width: 2.5, DistanceToEntrance: 10, Price: 10,
			Occupied: true, AreaOccupancy: parking.Occupancy{Occupied: 2, Total: 10}},
		{ID: "F2-B-01", Floor: 2, Area: "B", Length: 5.0, Width: 2.3, DistanceToEntrance: 60, Price: 8,
			AreaOccupancy: parking.Occupancy{Occupied: 5, Total: 10}},
	})

	repo.PutUser(&store.User{
		ID:             "user-1",
		Name:           "Driver",
		VehicleType:    parking.VehicleSedan,
		NeedsEVCharger: true,
		Credit: credit.Stats{
			TotalPayments:     10,
			OnTimePayments:    10,
			PositiveReviews:   2,
			TotalParkingTimes: 12,
		},
		History: []parking.HistoryRecord{
			{LotID: "lot-1", Fee: 20, Distance: 200, Duration: 2},
			{LotID: "lot-1", Fee: 24, Distance: 200, Duration: 2},
		},
	})

	repo.PutSnapshot(&insights.Snapshot{
		LotID: "lot-1",
		At:    fixedNow,
		Areas: []insights.AreaStat{
			{ID: "A", Name: "Area A", TotalSpots: 50, OccupiedSpots: 15},
			{ID: "B", Name: "Area B", TotalSpots: 80, OccupiedSpots: 60},
		},
		Devices: []insights.Device{
			{ID: "gate-02", Name: "Barrier controller", Status: insights.DeviceFault, CriticalLevel: insights.CriticalHigh},
		},
	})

	repo.PutVehicle(navigation.ParkedVehicle{
		Plate:      "LN-00001",
		LotID:      "lot-1",
		SpotID:     "F2-B-01",
		Position:   navigation.GridNode{X: 60, Y: 80, Floor: 2},
		ParkedAt:   fixedNow.Add(-2 * time.Hour),
		HourlyRate: 10,
	})
	return repo
}

// newFlags returns a flag service with the given stored values on top of the defaults.
func newFlags(t *testing.T, values map[string]any) *featureflags.Service {
	t.Helper()
	svc := featureflags.NewService(featureflags.ServiceConfig{
		Repository: featureflags.NewInMemoryRepository(),
		Logger:     zerolog.Nop(),
	})
	if len(values) > 0 {
		updates := make([]featureflags.FlagUpdate, 0, len(values))
		for k, v := range values {
			updates = append(updates, featureflags.FlagUpdate{Key: k, Value: v})
		}
		require.NoError(t, svc.Update(context.Background(), updates))
	}
	return svc
}

func testDeps(t *testing.T) handler.Dependencies {
	t.Helper()
	return handler.Dependencies{
		Store:  fixtureRepository(),
		Flags:  newFlags(t, nil),
		Now:    func() time.Time { return fixedNow },
		Logger: zerolog.New(io.Discard),
	}
}

// testRouter mounts the parking handlers the way the API router does.
func testRouter(deps handler.Dependencies) http.Handler {
	r := chi.NewRouter()

	lots := handler.NewLotsHandler(deps)
	alloc := handler.NewAllocationHandler(deps)
	prices := handler.NewPricingHandler(deps)
	recs := handler.NewRecommendationHandler(deps)
	nav := handler.NewNavigationHandler(deps)
	ins := handler.NewInsightsHandler(deps)
	creditH := handler.NewCreditHandler(deps)
	flags := handler.NewFeatureFlagsHandler(deps.Flags, deps.Logger)

	r.Get("/v1/lots", lots.ListLots)
	r.Get("/v1/lots/{lotId}", lots.GetLot)
	r.Post("/v1/spots:allocate", alloc.Allocate)
	r.Post("/v1/prices:quote", prices.Quote)
	r.Get("/v1/lots/{lotId}/price-trend", prices.PriceTrend)
	r.Post("/v1/lots:recommend", recs.Recommend)
	r.Post("/v1/navigation:path", nav.FindPath)
	r.Get("/v1/vehicles/{plate}/location", nav.LocateVehicle)
	r.Get("/v1/lots/{lotId}/insights", ins.GetInsights)
	r.Get("/v1/users/{userId}/credit", creditH.GetCredit)
	r.Get("/v1/admin/feature-flags", flags.ListFeatureFlags)
	r.Put("/v1/admin/feature-flags", flags.UpsertFeatureFlags)
	r.Post("/v1/admin/feature-flags/invalidate", flags.InvalidateCache)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		if raw, ok := body.(string); ok {
			reader = bytes.NewBufferString(raw)
		} else {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			reader = bytes.NewReader(b)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// fakeWeather is a weather provider with a fixed answer.
type fakeWeather struct {
	obs   *weather.Observation
	err   error
	calls int
}

func (f *fakeWeather) GetCurrentWeather(_ context.Context, lat, lon float64) (*weather.Observation, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	obs := *f.obs
	obs.Lat, obs.Lon = lat, lon
	return &obs, nil
}

func (f *fakeWeather) Name() string { return "fake" }

func weatherService(p *fakeWeather) *weather.Service {
	return weather.NewService(weather.ServiceConfig{Provider: p, Logger: zerolog.Nop()})
}

var errProviderDown = errors.New("provider down")
