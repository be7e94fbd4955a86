package candidate

import (
	"fmt"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/foodaccess-cli/internal/geo"
	"github.com/sells-group/foodaccess-cli/internal/model"
)

// Attribute names probed in parcel shapefiles, lowercased.
var (
	parcelIDFields       = []string{"parcel_id", "id", "apn"}
	parcelCategoryFields = []string{"category", "use", "landuse"}
)

// LoadParcelShapefile reads vacant/underutilized parcels from a shapefile in
// WGS84 and returns them as candidate locations. Geometry is reduced to the
// shape's bounding box; area uses the same spherical-cap approximation as
// grid cells. Records without geometry are skipped.
func LoadParcelShapefile(path string) ([]model.CandidateLocation, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "candidate: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	var parcels []model.CandidateLocation
	var skipped int

	for i := 0; reader.Next(); i++ {
		_, shape := reader.Shape()
		if shape == nil {
			skipped++
			continue
		}

		box := shape.BBox()
		bounds := geo.BBox{South: box.MinY, North: box.MaxY, West: box.MinX, East: box.MaxX}
		center := geo.Point{Lat: (box.MinY + box.MaxY) / 2, Lng: (box.MinX + box.MaxX) / 2}

		dLat := box.MaxY - box.MinY
		dLng := box.MaxX - box.MinX
		area := geo.CellAreaM2(center.Lat, dLat, dLng)

		id := attribute(reader, fieldIdx, parcelIDFields)
		if id == "" {
			id = fmt.Sprintf("parcel-%d", i)
		}
		category := attribute(reader, fieldIdx, parcelCategoryFields)
		if category == "" {
			category = "vacant"
		}

		parcels = append(parcels, model.CandidateLocation{
			ID:       id,
			Center:   center,
			Bounds:   bounds,
			AreaM2:   area,
			Source:   "parcel",
			Category: category,
		})
	}

	if skipped > 0 {
		zap.L().Debug("candidate: skipped shapefile records without geometry",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return parcels, nil
}

func attribute(reader *shp.Reader, fieldIdx map[string]int, names []string) string {
	for _, name := range names {
		if idx, ok := fieldIdx[name]; ok {
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
			if val != "" {
				return val
			}
		}
	}
	return ""
}
