package schedule

// JobRecord is the timeline of one job, in dispatch order.
type JobRecord struct {
	Product string `json:"product"`
	Start   []int  `json:"start"` // per machine
	End     []int  `json:"end"`   // per machine
}

// Result is the simulated schedule handed to charting and reporting.
type Result struct {
	Jobs     []JobRecord `json:"jobs"`
	Idle     []int       `json:"idle"`              // per machine, includes unused trailing capacity
	Busy     []int       `json:"busy"`              // per machine processing time
	Overrun  []int       `json:"overrun,omitempty"` // per machine time beyond capacity, nil when none
	Makespan int         `json:"makespan"`
}

// Overloaded returns the indices of machines that run past their capacity.
func (r *Result) Overloaded() []int {
	var out []int
	for j, o := range r.Overrun {
		if o > 0 {
			out = append(out, j)
		}
	}
	return out
}

// Utilization returns busy/(busy+idle) per machine as a fraction.
func (r *Result) Utilization() []float64 {
	u := make([]float64, len(r.Busy))
	for j, b := range r.Busy {
		if total := b + r.Idle[j]; total > 0 {
			u[j] = float64(b) / float64(total)
		}
	}
	return u
}
