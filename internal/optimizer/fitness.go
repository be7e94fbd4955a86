package optimizer

import (
	"math"
	"sort"

	"github.com/sells-group/foodaccess-cli/internal/catalog"
	"github.com/sells-group/foodaccess-cli/internal/geo"
)

// Fitness term weights. They sum to 1 so fitness stays in [0, 1].
const (
	weightCoverage   = 0.25
	weightEquity     = 0.25
	weightEfficiency = 0.20
	weightDiversity  = 0.15
	weightSynergy    = 0.15

	// coverageCellM is the rasterization cell size for the coverage term.
	coverageCellM = 500

	// efficiencyScale is the people-per-dollar ratio treated as a perfect
	// efficiency score. 0.05 corresponds to reaching one person per $20 of
	// first-year spend.
	efficiencyScale = 0.05
)

// Evaluator scores solutions. It precomputes a raster over the planning
// bounding box so the coverage term is a cell-set union rather than repeated
// geometry work.
type Evaluator struct {
	bbox        geo.BBox
	catalogSize int

	cols, rows int
	mPerDegLat float64
	mPerDegLng float64
}

// NewEvaluator builds an evaluator for the given planning area. catalogSize
// is the number of distinct intervention types available, used to normalize
// the diversity term.
func NewEvaluator(bbox geo.BBox, catalogSize int) *Evaluator {
	rad := math.Pi / 180.0
	midLat := (bbox.South + bbox.North) / 2

	e := &Evaluator{
		bbox:        bbox,
		catalogSize: catalogSize,
		mPerDegLat:  geo.EarthRadiusM * rad,
		mPerDegLng:  geo.EarthRadiusM * rad * math.Cos(midLat*rad),
	}
	e.cols = int(math.Ceil(bbox.WidthM()/coverageCellM)) + 1
	e.rows = int(math.Ceil(bbox.HeightM()/coverageCellM)) + 1
	return e
}

// Fitness returns the weighted sum of the five terms, in [0, 1]. The empty
// solution scores zero.
func (e *Evaluator) Fitness(s Solution) float64 {
	if s.Len() == 0 {
		return 0
	}
	return weightCoverage*e.coverage(s) +
		weightEquity*e.equity(s) +
		weightEfficiency*e.efficiency(s) +
		weightDiversity*e.diversity(s) +
		weightSynergy*e.synergy(s)
}

// coverage is the fraction of raster cells whose center falls inside at
// least one member's service radius.
func (e *Evaluator) coverage(s Solution) float64 {
	total := e.cols * e.rows
	if total == 0 {
		return 0
	}

	covered := make(map[int]struct{})
	for _, m := range s.members {
		e.markCovered(covered, m)
	}
	return float64(len(covered)) / float64(total)
}

func (e *Evaluator) markCovered(covered map[int]struct{}, m Member) {
	// Member position in raster coordinates (meters from the SW corner).
	cx := (m.Center.Lng - e.bbox.West) * e.mPerDegLng
	cy := (m.Center.Lat - e.bbox.South) * e.mPerDegLat
	r := m.ServiceRadiusM

	minCol := int(math.Floor((cx - r) / coverageCellM))
	maxCol := int(math.Ceil((cx + r) / coverageCellM))
	minRow := int(math.Floor((cy - r) / coverageCellM))
	maxRow := int(math.Ceil((cy + r) / coverageCellM))

	minCol = max(minCol, 0)
	minRow = max(minRow, 0)
	maxCol = min(maxCol, e.cols-1)
	maxRow = min(maxRow, e.rows-1)

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			cellX := (float64(col) + 0.5) * coverageCellM
			cellY := (float64(row) + 0.5) * coverageCellM
			if math.Hypot(cellX-cx, cellY-cy) <= r {
				covered[row*e.cols+col] = struct{}{}
			}
		}
	}
}

// equity is 1 minus the Gini coefficient of population served across
// members, rewarding evenly distributed reach.
func (e *Evaluator) equity(s Solution) float64 {
	values := make([]float64, 0, s.Len())
	for _, m := range s.members {
		values = append(values, m.PopulationServed)
	}
	return 1 - gini(values)
}

// gini computes the Gini coefficient of the values in [0, 1]. Fewer than two
// values, or an all-zero set, yields zero.
func gini(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum, weighted float64
	for i, v := range sorted {
		sum += v
		weighted += float64(2*(i+1)-n-1) * v
	}
	if sum == 0 {
		return 0
	}
	return weighted / (float64(n) * sum)
}

// efficiency is total population served per dollar of first-year cost
// (setup plus twelve months of operation), scaled against efficiencyScale
// and clamped to 1.
func (e *Evaluator) efficiency(s Solution) float64 {
	var served, cost float64
	for _, m := range s.members {
		served += m.PopulationServed
		cost += m.SetupCost + 12*m.OperatingCostMonthly
	}
	if cost == 0 {
		return 0
	}
	v := served / cost / efficiencyScale
	if v > 1 {
		v = 1
	}
	return v
}

// diversity is the number of distinct intervention types over the catalog
// size.
func (e *Evaluator) diversity(s Solution) float64 {
	if e.catalogSize == 0 {
		return 0
	}
	seen := make(map[string]struct{}, s.Len())
	for _, m := range s.members {
		seen[m.Type] = struct{}{}
	}
	return float64(len(seen)) / float64(e.catalogSize)
}

// synergy is the mean pairwise synergy across all member pairs. Solutions
// too small to form a pair get a flat 0.3.
func (e *Evaluator) synergy(s Solution) float64 {
	n := s.Len()
	if n < 2 {
		return 0.3
	}

	var total float64
	pairs := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			total += pairSynergy(s.members[i], s.members[j])
			pairs++
		}
	}
	return total / float64(pairs)
}

// pairSynergy encodes how well two placements reinforce each other:
// duplicated types only help when kept apart, a farm next to a market feeds
// it, and a hub lifts anything within distribution range.
func pairSynergy(a, b Member) float64 {
	d := geo.Haversine(a.Center, b.Center)

	if a.Type == b.Type {
		if d > 2000 {
			return 0.5
		}
		return 0
	}
	if isPair(a.Type, b.Type, catalog.UrbanFarm, catalog.FarmersMarket) {
		if d <= 1000 {
			return 1.0
		}
		return 0.5
	}
	if a.Type == catalog.FoodHub || b.Type == catalog.FoodHub {
		if d <= 5000 {
			return 0.7
		}
		return 0.3
	}
	return 0.3
}

func isPair(a, b, x, y string) bool {
	return (a == x && b == y) || (a == y && b == x)
}
