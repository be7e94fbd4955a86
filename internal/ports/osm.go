package ports

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"github.com/serjvanilla/go-overpass"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/foodaccess-cli/internal/geo"
	"github.com/sells-group/foodaccess-cli/internal/resilience"
)

// shopCategories maps OSM shop tag values to outlet categories used by the
// competition factor.
var shopCategories = map[string]string{
	"supermarket": "supermarket",
	"greengrocer": "grocery",
	"grocery":     "grocery",
	"convenience": "convenience",
	"farm":        "farm",
}

// OverpassSource queries OpenStreetMap via the Overpass API for transit stops
// and existing food outlets. Calls are rate limited to respect the public
// endpoint's usage policy and retried on transient failures.
type OverpassSource struct {
	client  overpass.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewOverpassSource creates an OverpassSource against the given endpoint with
// the given request-per-second budget.
func NewOverpassSource(endpoint string, rps float64, timeout time.Duration) *OverpassSource {
	if rps <= 0 {
		rps = 1
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}
	return &OverpassSource{
		client:  overpass.NewWithSettings(endpoint, 2, httpClient),
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		retry:   resilience.DefaultRetryConfig(),
	}
}

// HasStopNear implements TransitLocator using bus stops and rail stations.
func (s *OverpassSource) HasStopNear(ctx context.Context, p geo.Point, radiusM float64) (bool, error) {
	query := fmt.Sprintf(`
		[out:json];
		(
			node["highway"="bus_stop"](around:%.0f,%f,%f);
			node["railway"="station"](around:%.0f,%f,%f);
			node["railway"="tram_stop"](around:%.0f,%f,%f);
		);
		out body;`,
		radiusM, p.Lat, p.Lng,
		radiusM, p.Lat, p.Lng,
		radiusM, p.Lat, p.Lng,
	)

	result, err := s.query(ctx, query)
	if err != nil {
		return false, eris.Wrap(err, "osm: transit stop query")
	}
	return len(result.Nodes) > 0, nil
}

// Outlets implements OutletSource using OSM shop and amenity tags.
func (s *OverpassSource) Outlets(ctx context.Context, bbox geo.BBox) ([]Outlet, error) {
	box := fmt.Sprintf("%f,%f,%f,%f", bbox.South, bbox.West, bbox.North, bbox.East)
	query := fmt.Sprintf(`
		[out:json];
		(
			node["shop"~"supermarket|greengrocer|grocery|convenience|farm"](%s);
			node["amenity"="marketplace"](%s);
		);
		out body;`,
		box, box,
	)

	result, err := s.query(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "osm: outlet query")
	}

	var outlets []Outlet
	for _, node := range result.Nodes {
		category := "grocery"
		if c, ok := shopCategories[node.Tags["shop"]]; ok {
			category = c
		} else if node.Tags["amenity"] == "marketplace" {
			category = "farmers_market"
		}
		outlets = append(outlets, Outlet{
			Location: geo.Point{Lat: node.Lat, Lng: node.Lon},
			Category: category,
			Quality:  0.5, // OSM carries no quality signal
		})
	}

	zap.L().Debug("osm: outlets fetched", zap.Int("count", len(outlets)))
	return outlets, nil
}

func (s *OverpassSource) query(ctx context.Context, q string) (*overpass.Result, error) {
	return resilience.DoVal(ctx, s.retry, func(ctx context.Context) (*overpass.Result, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		result, err := s.client.Query(q)
		if err != nil {
			return nil, err
		}
		return &result, nil
	})
}
