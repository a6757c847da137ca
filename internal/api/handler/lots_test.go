package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartpark/smartpark/internal/api/models"
)

func TestListLots(t *testing.T) {
	router := testRouter(testDeps(t))

	w := do(t, router, http.MethodGet, "/v1/lots", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[models.LotListResponse](t, w)
	assert.Equal(t, 3, resp.Meta.Count)
	require.Len(t, resp.Lots, 3)
	assert.Equal(t, "lot-1", resp.Lots[0].ID)
	assert.InDelta(t, 0.5, resp.Lots[0].OccupancyRate, 1e-9)
	assert.Equal(t, 50, resp.Lots[0].AvailableSpots)
	assert.Nil(t, resp.Lots[0].Distance)
}

func TestListLots_Near(t *testing.T) {
	router := testRouter(testDeps(t))

	w := do(t, router, http.MethodGet, "/v1/lots?near=31.2340,121.4737&radius=1000", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[models.LotListResponse](t, w)
	require.Len(t, resp.Lots, 2)
	assert.Equal(t, "lot-2", resp.Lots[0].ID)
	assert.Equal(t, "lot-1", resp.Lots[1].ID)
	require.NotNil(t, resp.Lots[0].Distance)
	assert.InDelta(t, 0, *resp.Lots[0].Distance, 1e-6)
	assert.InDelta(t, 400, *resp.Lots[1].Distance, 5)
}

func TestListLots_NearWithoutRadiusKeepsAll(t *testing.T) {
	router := testRouter(testDeps(t))

	resp := decode[models.LotListResponse](t, do(t, router, http.MethodGet, "/v1/lots?near=31.2304,121.4737", nil))
	require.Len(t, resp.Lots, 3)
	assert.Equal(t, "lot-3", resp.Lots[2].ID)
}

func TestListLots_BadQuery(t *testing.T) {
	router := testRouter(testDeps(t))

	for _, path := range []string{
		"/v1/lots?near=31.2",
		"/v1/lots?near=abc,121",
		"/v1/lots?near=95,121",
		"/v1/lots?near=31,121&radius=-1",
		"/v1/lots?radius=wide",
	} {
		t.Run(path, func(t *testing.T) {
			w := do(t, router, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestGetLot(t *testing.T) {
	router := testRouter(testDeps(t))

	w := do(t, router, http.MethodGet, "/v1/lots/lot-2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	lot := decode[models.LotSummary](t, w)
	assert.Equal(t, "Riverside", lot.Name)
	assert.Equal(t, 2, lot.AvailableSpots)
	assert.InDelta(t, 0.95, lot.OccupancyRate, 1e-9)

	w = do(t, router, http.MethodGet, "/v1/lots/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
