package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/foodaccess-cli/internal/geo"
	"github.com/sells-group/foodaccess-cli/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testRunRequest(city string) model.RunRequest {
	return model.RunRequest{
		City:           city,
		BBox:           geo.BBox{South: 35.0, North: 35.1, West: -80.1, East: -80.0},
		CityCenter:     geo.Point{Lat: 35.05, Lng: -80.05},
		Types:          []string{"FARMERS_MARKET"},
		MaxSuggestions: 10,
		GridResolution: 0.01,
		Seed:           42,
	}
}

func TestSQLiteRunLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, testRunRequest("durham"))
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "durham", got.Request.City)
	assert.Equal(t, []string{"FARMERS_MARKET"}, got.Request.Types)
	assert.Nil(t, got.Result)

	require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning))
	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusRunning, got.Status)

	result := &model.PlanResult{
		Fitness:        0.82,
		CandidateCount: 120,
		Recommendations: []model.Recommendation{
			{ID: "rec-1", LocationID: "cell-3-4", Type: "FARMERS_MARKET"},
		},
	}
	require.NoError(t, s.UpdateRunResult(ctx, run.ID, result))

	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, 0.82, got.Result.Fitness)
	assert.Equal(t, 120, got.Result.CandidateCount)
	require.Len(t, got.Result.Recommendations, 1)
	assert.Equal(t, "cell-3-4", got.Result.Recommendations[0].LocationID)
}

func TestSQLiteGetRunNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetRun(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteUpdateMissingRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.UpdateRunStatus(ctx, "nope", model.RunStatusFailed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	err = s.UpdateRunResult(ctx, "nope", &model.PlanResult{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteListRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.CreateRun(ctx, testRunRequest("durham"))
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, testRunRequest("durham"))
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, testRunRequest("raleigh"))
	require.NoError(t, err)

	require.NoError(t, s.UpdateRunResult(ctx, a.ID, &model.PlanResult{Fitness: 0.5}))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	complete, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, a.ID, complete[0].ID)
	require.NotNil(t, complete[0].Result)

	durham, err := s.ListRuns(ctx, RunFilter{City: "durham"})
	require.NoError(t, err)
	assert.Len(t, durham, 2)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
