package schedule

// Operation is one job's pass through one machine.
type Operation struct {
	Position int    `json:"position"` // index into Result.Jobs
	Machine  int    `json:"machine"`
	Product  string `json:"product"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
}

// Slack computes, for every operation, how far it could slip without
// delaying the makespan. Operation (i, j) precedes (i+1, j) on the same
// machine and (i, j+1) for the same job; the simulated start times are the
// earliest starts, so only a backward pass is needed.
func (r *Result) Slack() [][]int {
	n := len(r.Jobs)
	if n == 0 {
		return nil
	}
	m := len(r.Jobs[0].Start)

	latestStart := make([][]int, n)
	for i := range latestStart {
		latestStart[i] = make([]int, m)
	}
	slack := make([][]int, n)

	for i := n - 1; i >= 0; i-- {
		slack[i] = make([]int, m)
		rec := r.Jobs[i]
		for j := m - 1; j >= 0; j-- {
			lf := r.Makespan
			if i+1 < n {
				lf = min(lf, latestStart[i+1][j])
			}
			if j+1 < m {
				lf = min(lf, latestStart[i][j+1])
			}
			latestStart[i][j] = lf - (rec.End[j] - rec.Start[j])
			slack[i][j] = latestStart[i][j] - rec.Start[j]
		}
	}
	return slack
}

// CriticalPath returns the zero-slack operations in dispatch order, machine
// by machine within a job. Lengthening any of them lengthens the makespan.
func (r *Result) CriticalPath() []Operation {
	slack := r.Slack()
	var ops []Operation
	for i, rec := range r.Jobs {
		for j := range rec.Start {
			if slack[i][j] != 0 {
				continue
			}
			ops = append(ops, Operation{
				Position: i,
				Machine:  j,
				Product:  rec.Product,
				Start:    rec.Start[j],
				End:      rec.End[j],
			})
		}
	}
	return ops
}

// Bottleneck returns the machine carrying the most critical processing time,
// or -1 when there are no jobs.
func (r *Result) Bottleneck() int {
	ops := r.CriticalPath()
	if len(ops) == 0 {
		return -1
	}
	load := make(map[int]int)
	best := ops[0].Machine
	for _, op := range ops {
		load[op.Machine] += op.End - op.Start
		if load[op.Machine] > load[best] || (load[op.Machine] == load[best] && op.Machine < best) {
			best = op.Machine
		}
	}
	return best
}
