package candidate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/foodaccess-cli/internal/geo"
	"github.com/sells-group/foodaccess-cli/internal/model"
)

func TestNewGeneratorRejectsBadResolution(t *testing.T) {
	_, err := NewGenerator(0)
	require.Error(t, err)

	_, err = NewGenerator(-0.01)
	require.Error(t, err)
}

func TestGenerateGrid(t *testing.T) {
	g, err := NewGenerator(0.01)
	require.NoError(t, err)

	// A 0.02 x 0.02 degree box at 0.01 resolution yields a 2x2 grid.
	bbox := geo.BBox{South: 0, North: 0.02, West: 0, East: 0.02}
	pool, err := g.Generate(context.Background(), bbox, nil)
	require.NoError(t, err)
	require.Len(t, pool, 4)

	assert.Equal(t, "cell-0-0", pool[0].ID)
	assert.Equal(t, "cell-1-1", pool[3].ID)

	// Cell centers are offset half a resolution from the cell corner.
	assert.InDelta(t, 0.005, pool[0].Center.Lat, 1e-9)
	assert.InDelta(t, 0.005, pool[0].Center.Lng, 1e-9)
	assert.InDelta(t, 0.015, pool[3].Center.Lat, 1e-9)

	for _, c := range pool {
		assert.Equal(t, "grid", c.Source)
		assert.Positive(t, c.AreaM2)
		assert.True(t, bbox.Contains(c.Center))
	}
}

func TestGenerateInvalidBBox(t *testing.T) {
	g, err := NewGenerator(0.01)
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), geo.BBox{South: 1, North: 0, West: 0, East: 1}, nil)
	require.Error(t, err)
}

func TestGenerateAppendsParcels(t *testing.T) {
	g, err := NewGenerator(0.01)
	require.NoError(t, err)

	parcel := model.CandidateLocation{
		ID:     "parcel-17",
		Center: geo.Point{Lat: 0.003, Lng: 0.007},
		AreaM2: 1200,
		Source: "parcel",
	}

	bbox := geo.BBox{South: 0, North: 0.01, West: 0, East: 0.01}
	pool, err := g.Generate(context.Background(), bbox, []model.CandidateLocation{parcel})
	require.NoError(t, err)
	require.Len(t, pool, 2)

	// Parcels are carried verbatim, not grid-snapped.
	assert.Equal(t, parcel, pool[1])
}

func TestGenerateViabilityCheck(t *testing.T) {
	// Exclude the southern row.
	g, err := NewGenerator(0.01, WithViabilityCheck(func(c model.CandidateLocation) bool {
		return c.Center.Lat > 0.01
	}))
	require.NoError(t, err)

	bbox := geo.BBox{South: 0, North: 0.02, West: 0, East: 0.02}
	pool, err := g.Generate(context.Background(), bbox, nil)
	require.NoError(t, err)
	require.Len(t, pool, 2)
	for _, c := range pool {
		assert.Greater(t, c.Center.Lat, 0.01)
	}
}

func TestGenerateCancelled(t *testing.T) {
	g, err := NewGenerator(0.01)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = g.Generate(ctx, geo.BBox{South: 0, North: 1, West: 0, East: 1}, nil)
	require.Error(t, err)
}
