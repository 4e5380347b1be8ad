package router

import (
	"sort"

	"github.com/qazfin/fireroute/engine/model"
)

// pick selects one agent from a non-empty pool using weighted round-robin.
//
// The pool is sorted ascending by (load, name). When the load spread
// exceeds the threshold the strictly least-loaded agent wins — this
// fairness override keeps accumulated rotation from starving a
// lightly-loaded agent. Otherwise rotation alternates over the two
// least-loaded agents, using a counter keyed by (office, language). The
// key deliberately excludes category and segment: finer keys create many
// near-empty counters and destroy rotation.
func (r *Router) pick(pool []*agent, office string, language model.Language, trace *model.Trace) *agent {
	sorted := make([]*agent, len(pool))
	copy(sorted, pool)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].load != sorted[j].load {
			return sorted[i].load < sorted[j].load
		}
		return sorted[i].name < sorted[j].name
	})

	spread := sorted[len(sorted)-1].load - sorted[0].load

	top2 := sorted
	if len(top2) > 2 {
		top2 = top2[:2]
	}
	// Stable rotation order: the top-2 membership shifts as loads move,
	// so rotate by name to keep alternation meaningful across tickets.
	rotation := make([]*agent, len(top2))
	copy(rotation, top2)
	sort.Slice(rotation, func(i, j int) bool { return rotation[i].name < rotation[j].name })

	trace.Top2 = make([]string, len(rotation))
	trace.Top2Loads = make([]int, len(rotation))
	for i, a := range rotation {
		trace.Top2[i] = a.name
		trace.Top2Loads[i] = a.load
	}

	if spread > r.cfg.RRSpreadThreshold {
		return sorted[0]
	}

	key := rrKey{office: office, language: language}
	idx := r.rrCounters[key]
	r.rrCounters[key] = idx + 1

	rrIdx := idx
	trace.RRIndex = &rrIdx
	return rotation[idx%len(rotation)]
}
