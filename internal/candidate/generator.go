// Package candidate builds the candidate-location pool: a regular grid over
// the target bounding box merged with externally supplied vacant or
// underutilized parcels.
package candidate

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/foodaccess-cli/internal/geo"
	"github.com/sells-group/foodaccess-cli/internal/model"
)

// ViabilityCheck is an extension point for excluding cells during grid
// generation (wetlands, rights-of-way, water bodies). A check failure
// excludes the cell; it never aborts generation.
type ViabilityCheck func(model.CandidateLocation) bool

// Generator produces candidate locations for one plan run.
// Generation cost is O((Δlat/res) · (Δlng/res)); a 0.01° resolution over a
// typical city bbox yields a few hundred to a few thousand cells.
type Generator struct {
	resolution float64
	viable     ViabilityCheck
}

// Option configures the Generator.
type Option func(*Generator)

// WithViabilityCheck installs a custom cell viability check.
func WithViabilityCheck(check ViabilityCheck) Option {
	return func(g *Generator) {
		g.viable = check
	}
}

// NewGenerator creates a Generator with the given grid resolution in degrees.
// The resolution must be positive.
func NewGenerator(resolutionDeg float64, opts ...Option) (*Generator, error) {
	if resolutionDeg <= 0 {
		return nil, eris.Errorf("candidate: grid resolution must be positive, got %f", resolutionDeg)
	}
	g := &Generator{
		resolution: resolutionDeg,
		viable:     func(model.CandidateLocation) bool { return true },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate steps across the bounding box at the configured resolution and
// returns grid cells plus the supplied parcels verbatim (parcels are not
// grid-snapped). Cells failing the viability check are skipped.
func (g *Generator) Generate(ctx context.Context, bbox geo.BBox, parcels []model.CandidateLocation) ([]model.CandidateLocation, error) {
	if err := bbox.Validate(); err != nil {
		return nil, err
	}

	var pool []model.CandidateLocation
	var skipped int

	row := 0
	for lat := bbox.South; lat < bbox.North; lat += g.resolution {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "candidate: generation cancelled")
		}
		col := 0
		for lng := bbox.West; lng < bbox.East; lng += g.resolution {
			cell := g.cell(row, col, lat, lng)
			if g.viable(cell) {
				pool = append(pool, cell)
			} else {
				skipped++
			}
			col++
		}
		row++
	}

	pool = append(pool, parcels...)

	zap.L().Info("candidate pool generated",
		zap.Int("grid_cells", len(pool)-len(parcels)),
		zap.Int("skipped_cells", skipped),
		zap.Int("parcels", len(parcels)),
	)
	return pool, nil
}

func (g *Generator) cell(row, col int, lat, lng float64) model.CandidateLocation {
	centerLat := lat + g.resolution/2
	centerLng := lng + g.resolution/2
	return model.CandidateLocation{
		ID:     fmt.Sprintf("cell-%d-%d", row, col),
		Center: geo.Point{Lat: centerLat, Lng: centerLng},
		Bounds: geo.BBox{
			South: lat,
			North: lat + g.resolution,
			West:  lng,
			East:  lng + g.resolution,
		},
		AreaM2: geo.CellAreaM2(centerLat, g.resolution, g.resolution),
		Source: "grid",
	}
}
