package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/joshharrison/linesched/internal/planner"
	"github.com/joshharrison/linesched/internal/schedule"
	"github.com/joshharrison/linesched/internal/ui"
)

// maxChartWidth caps the Gantt chart at this many columns.
const maxChartWidth = 64

// Reporter renders a plan for the terminal or as JSON.
type Reporter struct {
	Plan *planner.Plan
}

// New creates a new Reporter.
func New(plan *planner.Plan) *Reporter {
	return &Reporter{Plan: plan}
}

// PrintReport writes the full terminal report: header, dispatch order,
// Gantt chart and idle table. Candidates are included when verbose is set.
func (r *Reporter) PrintReport(w io.Writer, verbose bool) {
	r.printHeader(w)
	r.PrintSequence(w)
	fmt.Fprintln(w)
	r.PrintGantt(w)
	r.PrintCriticalPath(w)
	fmt.Fprintln(w)
	r.PrintIdle(w)
	if verbose && len(r.Plan.Candidates) > 0 {
		fmt.Fprintln(w)
		r.PrintCandidates(w)
	}
}

func (r *Reporter) printHeader(w io.Writer) {
	p := r.Plan
	fmt.Fprintf(w, "%s %s\n", ui.BoldCyan("📋 Schedule"), ui.Dim(p.ID))
	fmt.Fprintf(w, "%s\n", ui.Cyan("══════════════════════════"))
	fmt.Fprintf(w, "Units:     %s across %d machines\n", ui.Bold(p.TotalUnits()), len(p.Machines))
	fmt.Fprintf(w, "Makespan:  %s\n", ui.BoldYellow(p.Makespan))
	if p.Split > 0 {
		fmt.Fprintf(w, "Split:     k=%d of %d\n", p.Split, len(p.Machines)-1)
	}
	if p.Profit != nil {
		fmt.Fprintf(w, "Profit:    %s\n", ui.BoldGreen(*p.Profit))
	}
	if b := p.Schedule.Bottleneck(); b >= 0 {
		fmt.Fprintf(w, "Bottleneck: %s %s\n", ui.BoldMagenta(p.Machines[b].Name), ui.Dim("(most critical-path time)"))
	}
	fmt.Fprintln(w)
}

// PrintSequence writes the dispatch order, collapsing consecutive units of
// the same product into one entry.
func (r *Reporter) PrintSequence(w io.Writer) {
	jobs := r.Plan.Schedule.Jobs
	if len(jobs) == 0 {
		fmt.Fprintf(w, "%s nothing to schedule\n", ui.Dim("∅"))
		return
	}

	var parts []string
	for i := 0; i < len(jobs); {
		j := i
		for j < len(jobs) && jobs[j].Product == jobs[i].Product {
			j++
		}
		label := ui.ProductLabel(jobs[i].Product)
		if n := j - i; n > 1 {
			label += ui.Dim(fmt.Sprintf("×%d", n))
		}
		parts = append(parts, label)
		i = j
	}
	fmt.Fprintf(w, "%s %s\n", ui.Bold("Order:"), strings.Join(parts, ui.Dim(" → ")))
}

// PrintGantt writes one bar per machine. Each job occupies its [start, end)
// span scaled to the chart width; idle time within capacity is dotted.
func (r *Reporter) PrintGantt(w io.Writer) {
	p := r.Plan
	res := p.Schedule

	horizon := res.Makespan
	for _, m := range p.Machines {
		horizon = max(horizon, m.Capacity)
	}
	if horizon == 0 {
		fmt.Fprintf(w, "%s empty horizon\n", ui.Dim("∅"))
		return
	}
	width := chartWidth(horizon)
	col := func(t int) int { return t * width / horizon }

	nameWidth := 0
	for _, m := range p.Machines {
		nameWidth = max(nameWidth, len(m.Name))
	}

	for j, m := range p.Machines {
		owner := make([]int, width)
		for c := range owner {
			owner[c] = -1
		}
		for i, rec := range res.Jobs {
			for c := col(rec.Start[j]); c < col(rec.End[j]) && c < width; c++ {
				owner[c] = i
			}
		}
		capCol := col(m.Capacity)

		var b strings.Builder
		for c := 0; c < width; {
			e := c
			for e < width && owner[e] == owner[c] {
				e++
			}
			if owner[c] >= 0 {
				rec := res.Jobs[owner[c]]
				b.WriteString(ui.ProductBar(rec.Product, strings.Repeat(shortLabel(rec.Product), e-c)))
			} else {
				for k := c; k < e; k++ {
					if k < capCol {
						b.WriteString(ui.Dim("·"))
					} else {
						b.WriteByte(' ')
					}
				}
			}
			c = e
		}
		fmt.Fprintf(w, "  %-*s │%s│\n", nameWidth, m.Name, b.String())
	}
	fmt.Fprintf(w, "  %-*s  0%s%d\n", nameWidth, "", strings.Repeat(" ", max(0, width-len(fmt.Sprint(horizon))-1)), horizon)
}

// PrintIdle writes the per-machine busy/idle/capacity table.
func (r *Reporter) PrintIdle(w io.Writer) {
	p := r.Plan
	res := p.Schedule
	util := res.Utilization()

	fmt.Fprintf(w, "  %-12s %8s %8s %8s %6s  %s\n", "MACHINE", "CAPACITY", "BUSY", "IDLE", "UTIL", "OVERRUN")
	for j, m := range p.Machines {
		over := 0
		if res.Overrun != nil {
			over = res.Overrun[j]
		}
		fmt.Fprintf(w, "  %-12s %8d %8d %8d %6s  %s\n",
			m.Name, m.Capacity, res.Busy[j], res.Idle[j], ui.Utilization(util[j]), ui.Overrun(over))
	}

	if over := res.Overloaded(); len(over) > 0 {
		names := make([]string, len(over))
		for i, j := range over {
			names[i] = p.Machines[j].Name
		}
		fmt.Fprintf(w, "\n%s capacity exceeded on %s\n", ui.BoldRed("⚠"), strings.Join(names, ", "))
	}
}

// PrintCriticalPath writes the chain of operations that fixes the makespan.
func (r *Reporter) PrintCriticalPath(w io.Writer) {
	ops := r.Plan.Schedule.CriticalPath()
	if len(ops) == 0 {
		return
	}
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = fmt.Sprintf("%s@%s[%d-%d]", shortLabel(op.Product), r.Plan.Machines[op.Machine].Name, op.Start, op.End)
	}
	fmt.Fprintf(w, "%s %s\n", ui.BoldYellow("⚡ Critical:"), strings.Join(parts, ui.Dim(" → ")))
}

// PrintCandidates writes the makespan obtained for every split point.
func (r *Reporter) PrintCandidates(w io.Writer) {
	fmt.Fprintf(w, "%s\n", ui.Bold("Split candidates:"))
	for _, c := range r.Plan.Candidates {
		marker := " "
		if c.Split == r.Plan.Split {
			marker = ui.BoldYellow("★")
		}
		fmt.Fprintf(w, "  %s k=%-3d makespan=%d\n", marker, c.Split, c.Makespan)
	}
}

// JSON returns the schedule in its chart/report data contract.
func (r *Reporter) JSON() ([]byte, error) {
	type output struct {
		PlanID   string               `json:"plan_id"`
		Machines []string             `json:"machines"`
		Jobs     []schedule.JobRecord `json:"jobs"`
		Idle     []int                `json:"idle"`
		Overrun  []int                `json:"overrun,omitempty"`
		Makespan int                  `json:"makespan"`
		Profit   *int                 `json:"profit,omitempty"`
		Critical []schedule.Operation `json:"critical_path,omitempty"`
	}

	res := r.Plan.Schedule
	o := output{
		PlanID:   r.Plan.ID,
		Machines: r.Plan.Machines.Names(),
		Jobs:     res.Jobs,
		Idle:     res.Idle,
		Overrun:  res.Overrun,
		Makespan: res.Makespan,
		Profit:   r.Plan.Profit,
		Critical: res.CriticalPath(),
	}
	if o.Jobs == nil {
		o.Jobs = []schedule.JobRecord{}
	}
	return json.MarshalIndent(o, "", "  ")
}

// Summary returns a one-paragraph summary of the plan.
func (r *Reporter) Summary() string {
	p := r.Plan
	var b strings.Builder

	fmt.Fprintf(&b, "\n✅ %s\n", ui.BoldCyan("Schedule Ready"))
	fmt.Fprintf(&b, "%s\n", ui.Cyan("══════════════════"))
	fmt.Fprintf(&b, "Plan:      %s\n", ui.Dim(p.ID))
	fmt.Fprintf(&b, "Units:     %d\n", p.TotalUnits())
	fmt.Fprintf(&b, "Makespan:  %d\n", p.Makespan)

	idle := make([]string, len(p.Machines))
	for j, m := range p.Machines {
		idle[j] = fmt.Sprintf("%s=%d", m.Name, p.Schedule.Idle[j])
	}
	fmt.Fprintf(&b, "Idle:      %s\n", strings.Join(idle, ", "))

	if over := p.Schedule.Overloaded(); len(over) > 0 {
		fmt.Fprintf(&b, "Status:    %s\n", ui.BoldRed(fmt.Sprintf("%d machine(s) over capacity", len(over))))
	} else {
		fmt.Fprintf(&b, "Status:    %s\n", ui.BoldGreen("within capacity"))
	}
	return b.String()
}

// chartWidth picks a column count: up to four columns per time unit for
// short horizons, never more than maxChartWidth.
func chartWidth(horizon int) int {
	perUnit := min(4, max(1, maxChartWidth/horizon))
	return min(maxChartWidth, horizon*perUnit)
}

// shortLabel is the glyph used to draw a product's bar: the first letter of
// its last word ("Product A" -> "A").
func shortLabel(product string) string {
	fields := strings.Fields(product)
	if len(fields) == 0 {
		return "#"
	}
	last := []rune(fields[len(fields)-1])
	return string(last[0])
}
