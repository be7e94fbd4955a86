// Package recommend turns the optimizer's winning placements into
// user-facing recommendation records with justifications, synergy notes,
// risks, and implementation details.
package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/foodaccess-cli/internal/catalog"
	"github.com/sells-group/foodaccess-cli/internal/geo"
	"github.com/sells-group/foodaccess-cli/internal/model"
)

// Economic-impact model: monthly operating spend circulates for three years
// with a 1.5x local multiplier.
const (
	economicYears      = 3
	economicMultiplier = 1.5
)

// Builder assembles recommendations from scored candidates and their
// assigned types.
type Builder struct {
	catalog *catalog.Catalog
}

// NewBuilder creates a Builder backed by the given catalog.
func NewBuilder(cat *catalog.Catalog) *Builder {
	return &Builder{catalog: cat}
}

// Selection pairs a scored candidate with the intervention type the
// optimizer assigned to it.
type Selection struct {
	Candidate model.ScoredCandidate
	Type      string
}

// Build produces one recommendation per selection, in input order. The type
// assigned to each selection must be present in the candidate's scored set.
func (b *Builder) Build(selections []Selection) ([]model.Recommendation, error) {
	recs := make([]model.Recommendation, 0, len(selections))
	for _, sel := range selections {
		rec, err := b.build(sel, selections)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (b *Builder) build(sel Selection, all []Selection) (model.Recommendation, error) {
	typ, err := b.catalog.Get(sel.Type)
	if err != nil {
		return model.Recommendation{}, eris.Wrapf(err, "recommend: selection %s", sel.Candidate.Location.ID)
	}
	ts, ok := sel.Candidate.Scores[sel.Type]
	if !ok {
		return model.Recommendation{}, eris.Errorf(
			"recommend: candidate %s has no score for type %s", sel.Candidate.Location.ID, sel.Type)
	}

	return model.Recommendation{
		ID:            uuid.NewString(),
		LocationID:    sel.Candidate.Location.ID,
		Type:          typ.Key,
		TypeName:      typ.Name,
		Icon:          typ.Icon,
		Center:        sel.Candidate.Location.Center,
		Bounds:        sel.Candidate.Location.Bounds,
		Score:         ts.Score,
		AdjustedScore: sel.Candidate.AdjustedScore,
		Factors:       ts.Factors,
		Priority:      model.PriorityFor(sel.Candidate.AdjustedScore),
		Justification: justification(typ, ts),
		Implementation: model.Implementation{
			SetupCost:            typ.SetupCost,
			OperatingCostMonthly: typ.OperatingCostMonthly,
			Timeframe:            typ.Timeframe,
			RequiredUtilities:    typ.Requirements.Utilities,
			Partners:             typ.Partners,
		},
		Impact: model.ExpectedImpact{
			PopulationServed:  ts.Impact.PopulationReached,
			DesertReduction:   ts.Impact.DesertReduction,
			AccessImprovement: ts.Impact.AccessDelta,
			EquityImprovement: ts.Impact.EquityDelta,
			Jobs:              typ.Jobs,
			EconomicImpact:    typ.OperatingCostMonthly * 12 * economicYears * economicMultiplier,
		},
		Synergies:      b.synergies(sel, all),
		Risks:          risks(ts),
		SuccessFactors: successFactors(ts),
	}, nil
}

// justification composes a short narrative from the strongest factor signals.
func justification(typ catalog.Type, ts model.TypeScore) string {
	var clauses []string
	if v, ok := ts.Factors[catalog.FactorEquity]; ok && v > 0.7 {
		clauses = append(clauses, "serves a highly vulnerable population")
	}
	if v, ok := ts.Factors[catalog.FactorCommunity]; ok && v >= 1.0 {
		clauses = append(clauses, "sits inside an identified food desert")
	}
	if v, ok := ts.Factors[catalog.FactorAccessibility]; ok && v > 0.7 {
		clauses = append(clauses, "is well connected by transit")
	}
	if v, ok := ts.Factors[catalog.FactorCompetition]; ok && v > 0.7 {
		clauses = append(clauses, "faces little nearby competition")
	}
	if v, ok := ts.Factors[catalog.FactorPopulation]; ok && v > 0.7 {
		clauses = append(clauses, "reaches a dense surrounding population")
	}

	if len(clauses) == 0 {
		return fmt.Sprintf("This location rates %s overall for a %s.",
			strings.ToLower(ts.Suitability), strings.ToLower(typ.Name))
	}
	return fmt.Sprintf("This location %s, making it a %s fit for a %s.",
		joinClauses(clauses), strings.ToLower(ts.Suitability), strings.ToLower(typ.Name))
}

func joinClauses(clauses []string) string {
	switch len(clauses) {
	case 1:
		return clauses[0]
	case 2:
		return clauses[0] + " and " + clauses[1]
	default:
		return strings.Join(clauses[:len(clauses)-1], ", ") + ", and " + clauses[len(clauses)-1]
	}
}

// synergies describes how this placement interacts with the other selected
// placements, using the same distance thresholds the optimizer scores with.
func (b *Builder) synergies(sel Selection, all []Selection) []string {
	var notes []string
	for _, other := range all {
		if other.Candidate.Location.ID == sel.Candidate.Location.ID {
			continue
		}
		d := geo.Haversine(sel.Candidate.Location.Center, other.Candidate.Location.Center)
		otherName := b.typeName(other.Type)

		switch {
		case isPair(sel.Type, other.Type, catalog.UrbanFarm, catalog.FarmersMarket) && d <= 1000:
			notes = append(notes, fmt.Sprintf(
				"A %s %.0fm away can supply fresh produce directly.", otherName, d))
		case (sel.Type == catalog.FoodHub || other.Type == catalog.FoodHub) && sel.Type != other.Type && d <= 5000:
			notes = append(notes, fmt.Sprintf(
				"Within distribution range (%.0fm) of the planned %s.", d, otherName))
		case sel.Type == other.Type && d <= 2000:
			notes = append(notes, fmt.Sprintf(
				"Overlaps with another planned %s %.0fm away; consider staggering schedules.", otherName, d))
		}
	}
	sort.Strings(notes)
	return notes
}

func (b *Builder) typeName(key string) string {
	if typ, err := b.catalog.Get(key); err == nil {
		return strings.ToLower(typ.Name)
	}
	return strings.ToLower(key)
}

func isPair(a, b, x, y string) bool {
	return (a == x && b == y) || (a == y && b == x)
}

// risks lists the weak signals a planner should investigate before
// committing.
func risks(ts model.TypeScore) []string {
	var out []string
	if ts.Score < 0.5 {
		out = append(out, "Overall suitability is marginal; validate with a site visit.")
	}
	if v, ok := ts.Factors[catalog.FactorSoil]; ok && v < 0.3 {
		out = append(out, "Poor soil quality; raised beds or remediation may be required.")
	}
	if v, ok := ts.Factors[catalog.FactorInfrastructure]; ok && v < 0.5 {
		out = append(out, "Missing utility hookups will add to setup cost.")
	}
	if v, ok := ts.Factors[catalog.FactorCompetition]; ok && v < 0.3 {
		out = append(out, "Heavy nearby competition may limit uptake.")
	}
	return out
}

// successFactors lists the strong signals worth highlighting to funders.
func successFactors(ts model.TypeScore) []string {
	keys := make([]string, 0, len(ts.Factors))
	for k, v := range ts.Factors {
		if v > 0.6 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("Strong %s signal (%.2f).", k, ts.Factors[k]))
	}
	return out
}
