package main

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/foodaccess-cli/internal/candidate"
	"github.com/sells-group/foodaccess-cli/internal/catalog"
	"github.com/sells-group/foodaccess-cli/internal/engine"
	"github.com/sells-group/foodaccess-cli/internal/geo"
	"github.com/sells-group/foodaccess-cli/internal/model"
	"github.com/sells-group/foodaccess-cli/internal/optimizer"
	"github.com/sells-group/foodaccess-cli/internal/ports"
	"github.com/sells-group/foodaccess-cli/internal/scorer"
	"github.com/sells-group/foodaccess-cli/internal/store"
)

// initStore opens the configured store backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.Pool)
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}

// loadCatalog builds the intervention catalog, merging file overrides when
// configured.
func loadCatalog() (*catalog.Catalog, error) {
	cat := catalog.Default()
	if cfg.Plan.CatalogPath == "" {
		return cat, nil
	}
	if err := cat.LoadOverrides(cfg.Plan.CatalogPath); err != nil {
		return nil, err
	}
	return cat, nil
}

// engineConfig maps the plan config onto engine tuning.
func engineConfig() engine.Config {
	ec := engine.DefaultConfig()
	ec.GridResolution = cfg.Plan.GridResolution
	ec.MaxSuggestions = cfg.Plan.MaxSuggestions
	ec.EquityWeight = cfg.Plan.EquityWeight
	ec.MinCoverage = cfg.Plan.MinCoverage
	ec.MaxClusterDistanceM = cfg.Plan.MaxClusterDistanceM
	ec.ScoreConcurrency = cfg.Plan.ScoreConcurrency
	ec.Seed = cfg.Plan.Seed
	ec.Optimizer = optimizer.Config{
		PopulationSize: cfg.Plan.PopulationSize,
		Generations:    cfg.Plan.Generations,
		CrossoverRate:  cfg.Plan.CrossoverRate,
		MutationRate:   cfg.Plan.MutationRate,
	}
	return ec
}

// newOverpassSource builds the OSM backend from config.
func newOverpassSource() *ports.OverpassSource {
	return ports.NewOverpassSource(
		cfg.Overpass.Endpoint,
		cfg.Overpass.RateLimit,
		time.Duration(cfg.Overpass.TimeoutSecs)*time.Second,
	)
}

// parseBBox parses "south,west,north,east" in degrees.
func parseBBox(s string) (geo.BBox, error) {
	parts, err := parseFloats(s, 4)
	if err != nil {
		return geo.BBox{}, eris.Wrapf(err, "parse bbox %q (want south,west,north,east)", s)
	}
	box := geo.BBox{South: parts[0], West: parts[1], North: parts[2], East: parts[3]}
	return box, box.Validate()
}

// parsePoint parses "lat,lng" in degrees.
func parsePoint(s string) (geo.Point, error) {
	parts, err := parseFloats(s, 2)
	if err != nil {
		return geo.Point{}, eris.Wrapf(err, "parse point %q (want lat,lng)", s)
	}
	return geo.Point{Lat: parts[0], Lng: parts[1]}, nil
}

func parseFloats(s string, n int) ([]float64, error) {
	fields := strings.Split(s, ",")
	if len(fields) != n {
		return nil, eris.Errorf("expected %d comma-separated values, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "value %d", i+1)
		}
		out[i] = v
	}
	return out, nil
}

// loadJSON reads a JSON file into out.
func loadJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "read %s", path)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrapf(err, "parse %s", path)
	}
	return nil
}

// loadZones reads underserved zones from a JSON file.
func loadZones(path string) ([]geo.Zone, error) {
	if path == "" {
		return nil, nil
	}
	var zones []geo.Zone
	if err := loadJSON(path, &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

// loadOutlets reads an existing-outlet inventory from a JSON file.
func loadOutlets(path string) ([]ports.Outlet, error) {
	if path == "" {
		return nil, nil
	}
	var outlets []ports.Outlet
	if err := loadJSON(path, &outlets); err != nil {
		return nil, err
	}
	return outlets, nil
}

// loadParcels reads parcels from a shapefile (.shp) or a JSON candidate list.
func loadParcels(path string) ([]model.CandidateLocation, error) {
	if path == "" {
		return nil, nil
	}
	if strings.HasSuffix(strings.ToLower(path), ".shp") {
		return candidate.LoadParcelShapefile(path)
	}
	var parcels []model.CandidateLocation
	if err := loadJSON(path, &parcels); err != nil {
		return nil, err
	}
	return parcels, nil
}

// loadDensity reads a demographic density grid from a JSON file.
func loadDensity(path string) (*ports.StaticDemographics, error) {
	if path == "" {
		return nil, nil
	}
	var cells []ports.DensityCell
	if err := loadJSON(path, &cells); err != nil {
		return nil, err
	}
	return &ports.StaticDemographics{Cells: cells}, nil
}

// loadSoil reads a soil-assessment grid from a JSON file.
func loadSoil(path string) (*ports.StaticSoil, error) {
	if path == "" {
		return nil, nil
	}
	var cells []ports.SoilCell
	if err := loadJSON(path, &cells); err != nil {
		return nil, err
	}
	return &ports.StaticSoil{Cells: cells}, nil
}

// loadClimate reads an area-wide climate summary from a JSON file.
func loadClimate(path string) (*ports.StaticClimate, error) {
	if path == "" {
		return nil, nil
	}
	var summary ports.ClimateSummary
	if err := loadJSON(path, &summary); err != nil {
		return nil, err
	}
	return &ports.StaticClimate{Value: summary}, nil
}

// loadVulnerability reads a social-vulnerability grid from a JSON file.
func loadVulnerability(path string) (*ports.StaticVulnerability, error) {
	if path == "" {
		return nil, nil
	}
	var cells []ports.VulnerabilityCell
	if err := loadJSON(path, &cells); err != nil {
		return nil, err
	}
	return &ports.StaticVulnerability{Cells: cells}, nil
}

// loadVacant reads a vacant-parcel inventory from a JSON file.
func loadVacant(path string) (*ports.StaticVacantSpaces, error) {
	if path == "" {
		return nil, nil
	}
	var lots []model.CandidateLocation
	if err := loadJSON(path, &lots); err != nil {
		return nil, err
	}
	return &ports.StaticVacantSpaces{All: lots}, nil
}

// loadCollaborators builds the scorer ports from the static data files.
// Typed nil pointers are never assigned into the interfaces, so an absent
// file leaves the factor degraded rather than backed by a nil collaborator.
func loadCollaborators(soilPath, climatePath, vulnPath, densityPath string) (scorer.Ports, error) {
	var sp scorer.Ports

	soil, err := loadSoil(soilPath)
	if err != nil {
		return sp, err
	}
	if soil != nil {
		sp.Soil = soil
	}

	climate, err := loadClimate(climatePath)
	if err != nil {
		return sp, err
	}
	if climate != nil {
		sp.Climate = climate
	}

	vuln, err := loadVulnerability(vulnPath)
	if err != nil {
		return sp, err
	}
	if vuln != nil {
		sp.Vulnerability = vuln
	}

	density, err := loadDensity(densityPath)
	if err != nil {
		return sp, err
	}
	if density != nil {
		sp.Demographics = density
	}
	return sp, nil
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
