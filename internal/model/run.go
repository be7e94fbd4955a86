package model

import (
	"time"

	"github.com/sells-group/foodaccess-cli/internal/geo"
)

// RunStatus is the lifecycle state of a stored plan run.
type RunStatus string

// Run lifecycle states.
const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunRequest captures the inputs of a plan run for persistence.
type RunRequest struct {
	City           string    `json:"city,omitempty"`
	BBox           geo.BBox  `json:"bbox"`
	CityCenter     geo.Point `json:"city_center"`
	Types          []string  `json:"types,omitempty"`
	MaxSuggestions int       `json:"max_suggestions"`
	GridResolution float64   `json:"grid_resolution"`
	Seed           int64     `json:"seed,omitempty"`
}

// Run is a persisted placement analysis run.
type Run struct {
	ID        string      `json:"id"`
	Request   RunRequest  `json:"request"`
	Status    RunStatus   `json:"status"`
	Result    *PlanResult `json:"result,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
