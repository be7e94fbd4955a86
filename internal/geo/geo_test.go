package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBBoxValidate(t *testing.T) {
	tests := []struct {
		name    string
		box     BBox
		wantErr bool
	}{
		{"valid", BBox{South: 35.0, North: 35.2, West: -81.0, East: -80.7}, false},
		{"south equals north", BBox{South: 35.0, North: 35.0, West: -81.0, East: -80.7}, true},
		{"south above north", BBox{South: 35.3, North: 35.0, West: -81.0, East: -80.7}, true},
		{"west equals east", BBox{South: 35.0, North: 35.2, West: -80.7, East: -80.7}, true},
		{"west beyond east", BBox{South: 35.0, North: 35.2, West: -80.5, East: -80.7}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.box.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestBBoxCenterAndContains(t *testing.T) {
	box := BBox{South: 10, North: 12, West: 20, East: 24}

	center := box.Center()
	assert.Equal(t, 11.0, center.Lat)
	assert.Equal(t, 22.0, center.Lng)

	assert.True(t, box.Contains(center))
	assert.True(t, box.Contains(Point{Lat: 10, Lng: 20}), "boundary is inclusive")
	assert.False(t, box.Contains(Point{Lat: 9.99, Lng: 22}))
	assert.False(t, box.Contains(Point{Lat: 11, Lng: 24.01}))
}

func TestHaversine(t *testing.T) {
	// One degree of latitude is roughly 111km.
	a := Point{Lat: 35.0, Lng: -80.0}
	b := Point{Lat: 36.0, Lng: -80.0}
	d := Haversine(a, b)
	assert.InDelta(t, 111195, d, 200)

	assert.Zero(t, Haversine(a, a))

	// Symmetric.
	assert.InDelta(t, d, Haversine(b, a), 1e-6)
}

func TestCellAreaM2(t *testing.T) {
	// At the equator a 0.01 x 0.01 degree cell is about 1.11km x 1.11km.
	atEquator := CellAreaM2(0, 0.01, 0.01)
	assert.InDelta(t, 1.236e6, atEquator, 5e4)

	// Cells shrink with latitude by cos(lat).
	at60 := CellAreaM2(60, 0.01, 0.01)
	assert.InDelta(t, atEquator*0.5, at60, 5e4)
}

func TestZoneContains(t *testing.T) {
	z := Zone{Center: Point{Lat: 35.0, Lng: -80.0}, RadiusM: 1000}

	assert.True(t, z.Contains(Point{Lat: 35.0, Lng: -80.0}))
	assert.True(t, z.Contains(Point{Lat: 35.005, Lng: -80.0}), "roughly 550m north")
	assert.False(t, z.Contains(Point{Lat: 35.02, Lng: -80.0}), "roughly 2.2km north")
}

func TestBBoxExtents(t *testing.T) {
	box := BBox{South: 35.0, North: 35.1, West: -81.0, East: -80.9}

	assert.InDelta(t, 11120, box.HeightM(), 100)
	// Width is measured at the central latitude, so it is shorter than at
	// the equator.
	assert.InDelta(t, 9100, box.WidthM(), 200)
}

func TestCirclePolygon(t *testing.T) {
	poly := CirclePolygon(Point{Lat: 35.0, Lng: -80.0}, 500, 16)
	require.NotNil(t, poly)

	coords := poly.FlatCoords()
	// segments+1 points, closed ring.
	require.Len(t, coords, 17*2)
	assert.InDelta(t, coords[0], coords[len(coords)-2], 1e-9)
	assert.InDelta(t, coords[1], coords[len(coords)-1], 1e-9)
}
