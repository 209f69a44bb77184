// Package closedstates implements the ClosedStates decider: a machine never
// halts if it has a closed set of states (every defined transition inside
// the set stays inside the set) that excludes every state carrying an
// undefined transition.
package closedstates

import "github.com/bbchallenge/bbchallenge-deciders/tm"

// Result is the outcome of running the decider on one machine.
type Result struct {
	NonHalting bool
	// Witness is the closed, undefined-transition-free set of states the
	// machine is guaranteed to enter, valid only when NonHalting is true.
	Witness []tm.State
}

// Decide computes the set U of states with at least one undefined
// transition, then for each state s computes R(s), the states reachable
// from s in the transition digraph. If some R(s) avoids U entirely, the
// machine is non-halting: every state in the machine carrying a defined
// transition is reached from the blank tape at some point in an actual run
// (a property of the bbchallenge enumeration), so R(s) is reached and, since
// it contains no undefined transition, the machine loops inside it forever.
func Decide(m *tm.Machine) Result {
	undefined := statesWithUndefinedTransition(m)

	for s := tm.State(0); s < tm.NumStates; s++ {
		reachable := reachableFrom(m, s)

		closed := true
		for r := range reachable {
			if undefined[r] {
				closed = false
				break
			}
		}
		if closed {
			witness := make([]tm.State, 0, len(reachable))
			for r := range reachable {
				witness = append(witness, r)
			}
			return Result{NonHalting: true, Witness: witness}
		}
	}
	return Result{}
}

func statesWithUndefinedTransition(m *tm.Machine) map[tm.State]bool {
	out := make(map[tm.State]bool)
	for s := tm.State(0); s < tm.NumStates; s++ {
		for sym := uint8(0); sym < tm.NumSymbols; sym++ {
			if m.At(s, sym).Undefined {
				out[s] = true
			}
		}
	}
	return out
}

// reachableFrom runs a BFS over the transition digraph (ignoring tape
// content) from s, ignoring undefined transitions, which are dead ends.
func reachableFrom(m *tm.Machine, s tm.State) map[tm.State]bool {
	visited := map[tm.State]bool{}
	queue := []tm.State{s}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true

		for sym := uint8(0); sym < tm.NumSymbols; sym++ {
			tr := m.At(cur, sym)
			if tr.Undefined {
				continue
			}
			if !visited[tr.Next] {
				queue = append(queue, tr.Next)
			}
		}
	}
	return visited
}
