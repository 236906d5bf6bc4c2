package planner

import (
	"log/slog"
	"time"

	"github.com/joshharrison/linesched/internal/cds"
	"github.com/joshharrison/linesched/internal/flowshop"
	"github.com/joshharrison/linesched/internal/schedule"
)

// Plan is the complete, serializable outcome of one scheduling run.
type Plan struct {
	ID         string              `json:"id"`
	CreatedAt  time.Time           `json:"created_at"`
	Machines   flowshop.MachineSet `json:"machines"`
	Quantities map[string]int      `json:"quantities"`
	Profit     *int                `json:"profit,omitempty"` // set when the mix was optimized
	Jobs       []flowshop.Job      `json:"jobs"`
	Sequence   flowshop.Sequence   `json:"sequence"`
	Makespan   int                 `json:"makespan"`
	Split      int                 `json:"split"`
	Candidates []cds.Candidate     `json:"candidates,omitempty"`
	Schedule   *schedule.Result    `json:"schedule"`
	Config     PlanConfig          `json:"config"`
}

// PlanConfig holds the knobs of a scheduling run.
type PlanConfig struct {
	Parallelism int          `json:"parallelism"`
	CatalogPath string       `json:"catalog_path,omitempty"`
	Logger      *slog.Logger `json:"-"`
}

// TotalUnits returns the number of scheduled jobs.
func (p *Plan) TotalUnits() int {
	return len(p.Jobs)
}
