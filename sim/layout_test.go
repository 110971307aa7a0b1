package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validLayoutParts() ([]CrusherLocation, []Shovel, []Road, []Route) {
	crushers := []CrusherLocation{{Servers: 2, EmptyTimeMean: 5, EmptyTimeSD: 1}}
	shovels := []Shovel{{FillTimeMean: 10, FillTimeSD: 2}}
	roads := []Road{
		{TravelTimeMean: [2]float64{8, 8}, TravelTimeSD: [2]float64{1, 1}},
		{TravelTimeMean: [2]float64{4, 4}, TravelTimeSD: [2]float64{1, 1}, OneLane: true},
	}
	routes := []Route{{Roads: []int{0, 1}, Directions: []int{0, 0}, Crusher: 0, Shovel: 0}}
	return crushers, shovels, roads, routes
}

func TestNewLayout_Valid_DerivesIndexes(t *testing.T) {
	// GIVEN a two-segment layout with one one-lane road
	crushers, shovels, roads, routes := validLayoutParts()

	// WHEN building it
	layout, err := NewLayout(4, crushers, shovels, roads, routes, 1.2)
	require.NoError(t, err)

	// THEN the light and route indexes are derived
	assert.Equal(t, 1, layout.NumLights())
	assert.Equal(t, -1, layout.LightIndex(0))
	assert.Equal(t, 0, layout.LightIndex(1))
	assert.Equal(t, 1, layout.LightRoad(0))
	assert.Equal(t, 0, layout.DefaultRoute(0))
	assert.InDelta(t, 0.4, layout.CrushingRate(), 1e-9)
}

func TestNewLayout_RejectsBadInput(t *testing.T) {
	crushers, shovels, roads, routes := validLayoutParts()

	cases := []struct {
		name  string
		build func() (*Layout, error)
	}{
		{"no trucks", func() (*Layout, error) {
			return NewLayout(0, crushers, shovels, roads, routes, 1.0)
		}},
		{"no shovels", func() (*Layout, error) {
			return NewLayout(2, crushers, nil, roads, routes, 1.0)
		}},
		{"bad slowdown", func() (*Layout, error) {
			return NewLayout(2, crushers, shovels, roads, routes, 0)
		}},
		{"empty route", func() (*Layout, error) {
			return NewLayout(2, crushers, shovels, roads, []Route{{Crusher: 0, Shovel: 0}}, 1.0)
		}},
		{"direction mismatch", func() (*Layout, error) {
			r := []Route{{Roads: []int{0, 1}, Directions: []int{0}, Crusher: 0, Shovel: 0}}
			return NewLayout(2, crushers, shovels, roads, r, 1.0)
		}},
		{"unknown road", func() (*Layout, error) {
			r := []Route{{Roads: []int{5}, Directions: []int{0}, Crusher: 0, Shovel: 0}}
			return NewLayout(2, crushers, shovels, roads, r, 1.0)
		}},
		{"unknown crusher", func() (*Layout, error) {
			r := []Route{{Roads: []int{0}, Directions: []int{0}, Crusher: 3, Shovel: 0}}
			return NewLayout(2, crushers, shovels, roads, r, 1.0)
		}},
		{"illegal direction", func() (*Layout, error) {
			r := []Route{{Roads: []int{0}, Directions: []int{2}, Crusher: 0, Shovel: 0}}
			return NewLayout(2, crushers, shovels, roads, r, 1.0)
		}},
		{"crusher without route", func() (*Layout, error) {
			twoCrushers := append([]CrusherLocation{}, crushers...)
			twoCrushers = append(twoCrushers, CrusherLocation{Servers: 1, EmptyTimeMean: 5, EmptyTimeSD: 1})
			return NewLayout(2, twoCrushers, shovels, roads, routes, 1.0)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.build()
			assert.Error(t, err)
		})
	}
}

func TestLayout_CrushingRate_SumsServerRates(t *testing.T) {
	// GIVEN two crusher locations with different capacities
	crushers := []CrusherLocation{
		{Servers: 2, EmptyTimeMean: 5, EmptyTimeSD: 1},
		{Servers: 1, EmptyTimeMean: 10, EmptyTimeSD: 1},
	}
	shovels := []Shovel{{FillTimeMean: 10, FillTimeSD: 2}}
	roads := []Road{{TravelTimeMean: [2]float64{8, 8}, TravelTimeSD: [2]float64{1, 1}}}
	routes := []Route{
		{Roads: []int{0}, Directions: []int{0}, Crusher: 0, Shovel: 0},
		{Roads: []int{0}, Directions: []int{0}, Crusher: 1, Shovel: 0},
	}

	// WHEN building the layout
	layout, err := NewLayout(3, crushers, shovels, roads, routes, 1.0)
	require.NoError(t, err)

	// THEN the net rate is 2/5 + 1/10 truckloads per time unit
	assert.InDelta(t, 0.5, layout.CrushingRate(), 1e-9)
	assert.Equal(t, 1, layout.DefaultRoute(1))
}
