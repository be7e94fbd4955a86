package ports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/foodaccess-cli/internal/geo"
	"github.com/sells-group/foodaccess-cli/internal/model"
)

func TestStaticDemographics(t *testing.T) {
	d := &StaticDemographics{Cells: []DensityCell{
		{
			Bounds:  geo.BBox{South: 35.0, North: 35.01, West: -80.01, East: -80.0},
			Density: 0.9,
		},
		{
			Bounds:  geo.BBox{South: 35.01, North: 35.02, West: -80.01, East: -80.0},
			Density: 1.7, // clamped
		},
	}}

	v, err := d.Density(context.Background(), geo.Point{Lat: 35.005, Lng: -80.005})
	require.NoError(t, err)
	assert.Equal(t, 0.9, v)

	v, err = d.Density(context.Background(), geo.Point{Lat: 35.015, Lng: -80.005})
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	// Outside every cell: neutral.
	v, err = d.Density(context.Background(), geo.Point{Lat: 36.0, Lng: -81.0})
	require.NoError(t, err)
	assert.Equal(t, NeutralDensity, v)
}

func TestStaticSoil(t *testing.T) {
	s := &StaticSoil{Cells: []SoilCell{
		{
			Bounds: geo.BBox{South: 35.0, North: 35.01, West: -80.01, East: -80.0},
			Sample: SoilSample{PH: 6.5, Category: "loam", Score: 0.85},
		},
		{
			Bounds: geo.BBox{South: 35.01, North: 35.02, West: -80.01, East: -80.0},
			Sample: SoilSample{Category: "fill", Score: 1.3}, // clamped
		},
	}}

	sample, err := s.Assess(context.Background(), geo.Point{Lat: 35.005, Lng: -80.005})
	require.NoError(t, err)
	assert.Equal(t, "loam", sample.Category)
	assert.Equal(t, 0.85, sample.Score)

	sample, err = s.Assess(context.Background(), geo.Point{Lat: 35.015, Lng: -80.005})
	require.NoError(t, err)
	assert.Equal(t, 1.0, sample.Score)

	// Outside every cell: neutral sample.
	sample, err = s.Assess(context.Background(), geo.Point{Lat: 36.0, Lng: -81.0})
	require.NoError(t, err)
	assert.Equal(t, "unknown", sample.Category)
	assert.Equal(t, 0.5, sample.Score)
}

func TestStaticVulnerability(t *testing.T) {
	v := &StaticVulnerability{Cells: []VulnerabilityCell{
		{
			Bounds: geo.BBox{South: 35.0, North: 35.01, West: -80.01, East: -80.0},
			Index:  0.8,
		},
	}}

	idx, err := v.Index(context.Background(), geo.Point{Lat: 35.005, Lng: -80.005})
	require.NoError(t, err)
	assert.Equal(t, 0.8, idx)

	idx, err = v.Index(context.Background(), geo.Point{Lat: 36.0, Lng: -81.0})
	require.NoError(t, err)
	assert.Equal(t, NeutralVulnerability, idx)
}

func TestStaticVacantSpacesFiltersByBBox(t *testing.T) {
	q := &StaticVacantSpaces{All: []model.CandidateLocation{
		{ID: "lot-1", Center: geo.Point{Lat: 35.005, Lng: -80.005}, AreaM2: 1200},
		{ID: "lot-2", Center: geo.Point{Lat: 36.0, Lng: -81.0}, AreaM2: 900},
	}}

	lots, err := q.Query(context.Background(), geo.BBox{South: 35.0, North: 35.01, West: -80.01, East: -80.0})
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, "lot-1", lots[0].ID)
}

func TestStaticOutletsFiltersByBBox(t *testing.T) {
	src := &StaticOutlets{All: []Outlet{
		{Location: geo.Point{Lat: 35.005, Lng: -80.005}, Category: "grocery"},
		{Location: geo.Point{Lat: 36.0, Lng: -81.0}, Category: "supermarket"},
	}}

	out, err := src.Outlets(context.Background(), geo.BBox{South: 35.0, North: 35.01, West: -80.01, East: -80.0})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "grocery", out[0].Category)
}

func TestStaticClimateClampsScore(t *testing.T) {
	c := &StaticClimate{Value: ClimateSummary{Solar: 0.8, Score: 1.4}}

	s, err := c.Summary(context.Background(), geo.Point{})
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Score)
	assert.Equal(t, 0.8, s.Solar)
}
