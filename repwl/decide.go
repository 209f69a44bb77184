package repwl

import "github.com/bbchallenge/bbchallenge-deciders/tm"

// Result is the decider's two-way verdict.
type Result uint8

const (
	CannotProve Result = iota
	Proven
)

func (r Result) String() string {
	if r == Proven {
		return "Proven"
	}
	return "CannotProve"
}

// Outcome is the decider's verdict plus statistics about the search.
type Outcome struct {
	Result Result

	// VisitedCount is the number of distinct regex-tape fingerprints the
	// search settled on before returning.
	VisitedCount int

	// Branched reports whether the search ever faced a plus block and had
	// to split into two successor tapes.
	Branched bool
}

// Tracer records the search's DFS as a graph: one node per visited regex
// tape plus a macro-step or branch edge for every transition between them.
// A nil Tracer is always safe to call methods on through Decide's tr
// wrapper (Decide only calls a non-nil Tracer).
type Tracer interface {
	Node(key, label string)
	Edge(from, to, label string)
	Sink(from, kind string)
}

// Decide runs deciderRep_WL's DFS: pop a tape off the stack, skip it if its
// fingerprint (Tape.String) was already visited, otherwise macro-step it (or
// branch it, if the facing block is unbounded) and push whatever results.
// PROVEN is returned once the stack empties with no halt, timeout, or
// visited-set overflow along the way.
func Decide(m *tm.Machine, blockSize, plusThreshold, blockStepBudget, maxVisited int) Outcome {
	return decide(m, blockSize, plusThreshold, blockStepBudget, maxVisited, nil)
}

// DecideTraced is Decide with a Tracer attached, for building a DOT
// execution graph of the search alongside the verdict.
func DecideTraced(m *tm.Machine, blockSize, plusThreshold, blockStepBudget, maxVisited int, tr Tracer) Outcome {
	return decide(m, blockSize, plusThreshold, blockStepBudget, maxVisited, tr)
}

func decide(m *tm.Machine, blockSize, plusThreshold, blockStepBudget, maxVisited int, tr Tracer) Outcome {
	start := New(blockSize, plusThreshold)
	start.normalise()

	visited := map[string]bool{}
	stack := []*Tape{start}
	branched := false

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		key := cur.String()
		if visited[key] {
			continue
		}
		visited[key] = true
		if tr != nil {
			tr.Node(key, key)
		}
		if len(visited) > maxVisited {
			if tr != nil {
				tr.Sink(key, "MAX_VISITED")
			}
			return Outcome{Result: CannotProve, VisitedCount: len(visited), Branched: branched}
		}

		if cur.readBlock().Plus {
			branched = true
			keep, collapse := cur.plusBranches()
			if tr != nil {
				tr.Edge(key, keep.String(), "branch: keep")
				tr.Edge(key, collapse.String(), "branch: collapse")
			}
			stack = append(stack, keep, collapse)
			continue
		}

		switch cur.macroStep(m, blockStepBudget) {
		case macroHalt:
			if tr != nil {
				tr.Sink(key, "HALT")
			}
			return Outcome{Result: CannotProve, VisitedCount: len(visited), Branched: branched}
		case macroTimeout:
			if tr != nil {
				tr.Sink(key, "TIMEOUT")
			}
			return Outcome{Result: CannotProve, VisitedCount: len(visited), Branched: branched}
		case macroOK:
			if tr != nil {
				tr.Edge(key, cur.String(), "macro-step")
			}
			stack = append(stack, cur)
		}
	}
	if tr != nil {
		tr.Sink("", "SUCCESS")
	}
	return Outcome{Result: Proven, VisitedCount: len(visited), Branched: branched}
}
