package flowshop

// Job is one physical unit to be produced. Several jobs may share a product label.
type Job struct {
	Product   string `json:"product"`
	Durations []int  `json:"durations"` // one per machine stage, in stage order
}

// Machine is a single stage of the line.
type Machine struct {
	Name     string `json:"name" yaml:"name"`
	Capacity int    `json:"capacity" yaml:"capacity"` // usable time per scheduling horizon
}

// MachineSet is the ordered line of machines every job visits.
type MachineSet []Machine

// Sequence is a dispatch order: a permutation of job indices.
type Sequence []int

// Capacities returns the capacity of each machine in stage order.
func (ms MachineSet) Capacities() []int {
	caps := make([]int, len(ms))
	for i, m := range ms {
		caps[i] = m.Capacity
	}
	return caps
}

// Names returns the machine names in stage order.
func (ms MachineSet) Names() []string {
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.Name
	}
	return names
}

// Apply returns the jobs reordered by seq.
func (s Sequence) Apply(jobs []Job) []Job {
	out := make([]Job, len(s))
	for i, idx := range s {
		out[i] = jobs[idx]
	}
	return out
}

// Identity returns the sequence 0..n-1.
func Identity(n int) Sequence {
	seq := make(Sequence, n)
	for i := range seq {
		seq[i] = i
	}
	return seq
}
