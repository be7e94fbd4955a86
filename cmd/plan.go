package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/foodaccess-cli/internal/engine"
	"github.com/sells-group/foodaccess-cli/internal/export"
	"github.com/sells-group/foodaccess-cli/internal/model"
)

var planFlags struct {
	city        string
	bbox        string
	center      string
	types       []string
	zonesPath   string
	outletsPath string
	parcelsPath string
	densityPath string
	soilPath    string
	climatePath string
	vulnPath    string
	vacantPath  string
	maxSuggest  int
	resolution  float64
	seed        uint64
	useOSM      bool
	persist     bool
	jsonOut     string
	xlsxOut     string
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run a placement analysis over a bounding box",
	Long:  "Generates a candidate grid over the target area, scores every candidate for each intervention type, applies equity adjustment, and optimizes a placement portfolio.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		bbox, err := parseBBox(planFlags.bbox)
		if err != nil {
			return err
		}
		center := bbox.Center()
		if planFlags.center != "" {
			if center, err = parsePoint(planFlags.center); err != nil {
				return err
			}
		}

		zones, err := loadZones(planFlags.zonesPath)
		if err != nil {
			return err
		}
		outlets, err := loadOutlets(planFlags.outletsPath)
		if err != nil {
			return err
		}
		parcels, err := loadParcels(planFlags.parcelsPath)
		if err != nil {
			return err
		}
		cat, err := loadCatalog()
		if err != nil {
			return err
		}

		ec := engineConfig()
		if planFlags.maxSuggest > 0 {
			ec.MaxSuggestions = planFlags.maxSuggest
		}
		if planFlags.resolution > 0 {
			ec.GridResolution = planFlags.resolution
		}
		if planFlags.seed > 0 {
			ec.Seed = planFlags.seed
		}

		sp, err := loadCollaborators(planFlags.soilPath, planFlags.climatePath, planFlags.vulnPath, planFlags.densityPath)
		if err != nil {
			return err
		}

		var opts []engine.Option
		vacant, err := loadVacant(planFlags.vacantPath)
		if err != nil {
			return err
		}
		if vacant != nil {
			opts = append(opts, engine.WithVacantSource(vacant))
		}
		if planFlags.useOSM {
			osm := newOverpassSource()
			sp.Transit = osm
			opts = append(opts, engine.WithOutletSource(osm))
		}
		if planFlags.persist {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return err
			}
			opts = append(opts, engine.WithStore(st))
		}

		eng := engine.New(ec, cat, sp, opts...)
		result, err := eng.Plan(ctx, engine.Request{
			City:       planFlags.city,
			BBox:       bbox,
			CityCenter: center,
			Types:      planFlags.types,
			Parcels:    parcels,
			Zones:      zones,
			Outlets:    outlets,
		})
		if err != nil {
			return eris.Wrap(err, "plan")
		}

		if planFlags.jsonOut != "" {
			if err := writeJSON(planFlags.jsonOut, result); err != nil {
				return err
			}
		}
		if planFlags.xlsxOut != "" {
			if err := export.WriteWorkbook(planFlags.xlsxOut, result); err != nil {
				return err
			}
		}

		printPlanSummary(result)
		return nil
	},
}

func init() {
	planCmd.Flags().StringVar(&planFlags.city, "city", "", "city name for the run record")
	planCmd.Flags().StringVar(&planFlags.bbox, "bbox", "", "target area as south,west,north,east (required)")
	planCmd.Flags().StringVar(&planFlags.center, "center", "", "city center as lat,lng (default: bbox midpoint)")
	planCmd.Flags().StringSliceVar(&planFlags.types, "types", nil, "restrict to these intervention type keys")
	planCmd.Flags().StringVar(&planFlags.zonesPath, "zones", "", "JSON file of underserved zones")
	planCmd.Flags().StringVar(&planFlags.outletsPath, "outlets", "", "JSON file of existing food outlets")
	planCmd.Flags().StringVar(&planFlags.parcelsPath, "parcels", "", "parcel shapefile (.shp) or JSON candidate list")
	planCmd.Flags().StringVar(&planFlags.densityPath, "density", "", "JSON file of population density cells")
	planCmd.Flags().StringVar(&planFlags.soilPath, "soil", "", "JSON file of soil assessment cells")
	planCmd.Flags().StringVar(&planFlags.climatePath, "climate", "", "JSON file with the area climate summary")
	planCmd.Flags().StringVar(&planFlags.vulnPath, "vulnerability", "", "JSON file of social vulnerability cells")
	planCmd.Flags().StringVar(&planFlags.vacantPath, "vacant", "", "JSON file of vacant or underutilized parcels")
	planCmd.Flags().IntVar(&planFlags.maxSuggest, "max-suggestions", 0, "cap on recommendations (default from config)")
	planCmd.Flags().Float64Var(&planFlags.resolution, "resolution", 0, "grid resolution in degrees (default from config)")
	planCmd.Flags().Uint64Var(&planFlags.seed, "seed", 0, "optimizer random seed for reproducible runs")
	planCmd.Flags().BoolVar(&planFlags.useOSM, "osm", false, "query OpenStreetMap for transit stops and outlets")
	planCmd.Flags().BoolVar(&planFlags.persist, "persist", true, "record the run in the store")
	planCmd.Flags().StringVar(&planFlags.jsonOut, "json", "", "write the full result to a JSON file")
	planCmd.Flags().StringVar(&planFlags.xlsxOut, "xlsx", "", "write a spreadsheet workbook")
	_ = planCmd.MarkFlagRequired("bbox")

	rootCmd.AddCommand(planCmd)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	defer f.Close() //nolint:errcheck

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode result")
}

// printPlanSummary writes a human-readable digest to stdout.
func printPlanSummary(result *model.PlanResult) {
	p := message.NewPrinter(language.English)

	p.Printf("Candidates evaluated: %d\n", result.CandidateCount)
	p.Printf("Recommendations: %d (portfolio fitness %.3f)\n\n", len(result.Recommendations), result.Fitness)

	for i, r := range result.Recommendations {
		p.Printf("%2d. [%s] %s at (%.5f, %.5f)\n", i+1, r.Priority, r.TypeName, r.Center.Lat, r.Center.Lng)
		p.Printf("    score %.2f (adjusted %.2f), reaches %d people, %d jobs, setup $%d\n",
			r.Score, r.AdjustedScore, r.Impact.PopulationServed, r.Impact.Jobs, int(r.Implementation.SetupCost))
		p.Printf("    %s\n", r.Justification)
	}

	s := result.Impact
	p.Printf("\nTotals: %d people served, %d jobs, $%d investment, $%d economic impact\n",
		s.TotalPopulationServed, s.TotalJobs, int(s.TotalInvestment), int(s.TotalEconomicImpact))

	for _, d := range result.Diagnostics {
		p.Printf("note: %s\n", d)
	}
}
