// Package export writes plan results to spreadsheet workbooks for sharing
// with planners and funders.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/foodaccess-cli/internal/model"
)

var recommendationHeader = []string{
	"ID", "Type", "Priority", "Suitability Score", "Adjusted Score",
	"Latitude", "Longitude", "Population Served", "Jobs",
	"Setup Cost", "Monthly Operating Cost", "Economic Impact",
	"Timeframe", "Justification",
}

// WriteWorkbook writes a two-sheet workbook (Recommendations, Summary) for
// the given result.
func WriteWorkbook(path string, result *model.PlanResult) error {
	f := xlsx.NewFile()

	if err := addRecommendationsSheet(f, result.Recommendations); err != nil {
		return err
	}
	if err := addSummarySheet(f, result); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save workbook %s", path)
	}
	return nil
}

func addRecommendationsSheet(f *xlsx.File, recs []model.Recommendation) error {
	sheet, err := f.AddSheet("Recommendations")
	if err != nil {
		return eris.Wrap(err, "export: add recommendations sheet")
	}

	header := sheet.AddRow()
	for _, h := range recommendationHeader {
		header.AddCell().SetString(h)
	}

	for _, r := range recs {
		row := sheet.AddRow()
		row.AddCell().SetString(r.ID)
		row.AddCell().SetString(r.TypeName)
		row.AddCell().SetString(r.Priority)
		row.AddCell().SetFloat(r.Score)
		row.AddCell().SetFloat(r.AdjustedScore)
		row.AddCell().SetFloat(r.Center.Lat)
		row.AddCell().SetFloat(r.Center.Lng)
		row.AddCell().SetInt(r.Impact.PopulationServed)
		row.AddCell().SetInt(r.Impact.Jobs)
		row.AddCell().SetFloat(r.Implementation.SetupCost)
		row.AddCell().SetFloat(r.Implementation.OperatingCostMonthly)
		row.AddCell().SetFloat(r.Impact.EconomicImpact)
		row.AddCell().SetString(r.Implementation.Timeframe)
		row.AddCell().SetString(r.Justification)
	}
	return nil
}

func addSummarySheet(f *xlsx.File, result *model.PlanResult) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}

	addKV := func(key string, value any) {
		row := sheet.AddRow()
		row.AddCell().SetString(key)
		switch v := value.(type) {
		case string:
			row.AddCell().SetString(v)
		case int:
			row.AddCell().SetInt(v)
		case int64:
			row.AddCell().SetInt64(v)
		case float64:
			row.AddCell().SetFloat(v)
		default:
			row.AddCell().SetString(fmt.Sprint(v))
		}
	}

	s := result.Impact
	addKV("Recommendations", len(result.Recommendations))
	addKV("Candidates Evaluated", result.CandidateCount)
	addKV("Portfolio Fitness", result.Fitness)
	addKV("Total Population Served", s.TotalPopulationServed)
	addKV("Total Jobs", s.TotalJobs)
	addKV("Total Investment", s.TotalInvestment)
	addKV("Total Economic Impact", s.TotalEconomicImpact)
	addKV("Average Access Improvement", s.AvgAccessImprovement)
	addKV("Average Equity Improvement", s.AvgEquityImprovement)
	addKV("Average Score", s.AverageScore)
	addKV("Run Duration (ms)", result.DurationMS)

	if len(s.PriorityCounts) > 0 {
		priorities := make([]string, 0, len(s.PriorityCounts))
		for p := range s.PriorityCounts {
			priorities = append(priorities, fmt.Sprintf("%s=%d", p, s.PriorityCounts[p]))
		}
		sort.Strings(priorities)
		addKV("Priority Breakdown", strings.Join(priorities, ", "))
	}
	return nil
}
