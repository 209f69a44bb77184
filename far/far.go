// Package far implements the finite-automata-reduction decider: a DFA that
// reads the tape behind the head drives an NFA over (DFA state, machine
// state) pairs plus a sink state; closing the NFA's transition matrices
// under a monotone fixed point and finding the initial configuration
// unreachable from the sink proves the machine never halts.
package far

import (
	"fmt"

	"github.com/bbchallenge/bbchallenge-deciders/internal/bitmatrix"
	"github.com/bbchallenge/bbchallenge-deciders/tm"
)

// Direction selects which end of the tape the DFA reads.
type Direction uint8

const (
	LeftToRight Direction = 0
	RightToLeft Direction = 1
)

func (d Direction) String() string {
	if d == RightToLeft {
		return "R->L"
	}
	return "L->R"
}

// effectiveMove flips a transition's move under RightToLeft, so the
// solver and verifier can always reason in terms of "right-going" and
// "left-going" relative to the direction the DFA is reading.
func effectiveMove(mv tm.Move, dir Direction) tm.Move {
	if dir == RightToLeft {
		if mv == tm.Left {
			return tm.Right
		}
		return tm.Left
	}
	return mv
}

// DFA is a binary-alphabet automaton with a fixed start state 0 and
// δ(0,0) = 0. Delta[i] holds [δ(i,0), δ(i,1)].
type DFA struct {
	D     int
	Delta [][2]int
}

// nfaIndex encodes NFA state (i, f), DFA state i and machine state f, as
// 5i+f; the sink state is n-1 where n = 5*D+1.
func nfaIndex(i int, f tm.State) int { return 5*i + int(f) }

// Proof is a solved or loaded FAR certificate: the direction, the DFA, the
// two n×n NFA transition matrices (one per read symbol) and the accept
// vector.
type Proof struct {
	Direction Direction
	DFA       DFA
	R         [2]*bitmatrix.Matrix
	A         *bitmatrix.Vector
}

// N is the NFA's state count, 5*D+1.
func (p *Proof) N() int { return 5*p.DFA.D + 1 }

// Sink is the NFA's steady/sink state index.
func (p *Proof) Sink() int { return p.N() - 1 }

// Solve runs the direct-method solver for one (machine, DFA, direction)
// triple: it initialises R from the machine's right-going and halting
// transitions, saturates it over the left-going ones, then saturates the
// accept vector from the sink. The machine is proven non-halting under
// this certificate iff the initial NFA state (DFA state 0, machine state A)
// never reaches an accepting state.
func Solve(m *tm.Machine, dfa DFA, dir Direction) (*Proof, bool) {
	n := 5*dfa.D + 1
	sink := n - 1
	r0, r1 := bitmatrix.New(n), bitmatrix.New(n)
	R := [2]*bitmatrix.Matrix{r0, r1}

	R[0].Set(sink, sink, true)
	R[1].Set(sink, sink, true)

	for f := tm.State(0); f < tm.NumStates; f++ {
		for r := uint8(0); r < tm.NumSymbols; r++ {
			tr := m.At(f, r)
			if tr.Undefined {
				for i := 0; i < dfa.D; i++ {
					R[r].Set(nfaIndex(i, f), sink, true)
				}
				continue
			}
			if effectiveMove(tr.Move, dir) == tm.Right {
				for i := 0; i < dfa.D; i++ {
					j := dfa.Delta[i][tr.Write]
					R[r].Set(nfaIndex(i, f), nfaIndex(j, tr.Next), true)
				}
			}
		}
	}

	for changed := true; changed; {
		changed = false
		for f := tm.State(0); f < tm.NumStates; f++ {
			for r := uint8(0); r < tm.NumSymbols; r++ {
				tr := m.At(f, r)
				if tr.Undefined || effectiveMove(tr.Move, dir) != tm.Left {
					continue
				}
				w, fPrime := tr.Write, tr.Next
				for b := uint8(0); b < tm.NumSymbols; b++ {
					p := bitmatrix.Mul(R[b], R[w])
					for i := 0; i < dfa.D; i++ {
						j := dfa.Delta[i][b]
						if R[r].OrRowInto(nfaIndex(j, f), p.Row(nfaIndex(i, fPrime))) {
							changed = true
						}
					}
				}
			}
		}
	}

	// a <- R0*a is not monotone in general; it converges here only because
	// R[0][sink][sink] = true keeps the sink bit pinned on across iterations.
	a := bitmatrix.NewVector(n)
	a.Set(sink, true)
	for {
		next := bitmatrix.MulVec(R[0], a)
		if next.Equal(a) {
			break
		}
		a = next
	}

	proof := &Proof{Direction: dir, DFA: dfa, R: R, A: a}
	return proof, !a.Get(0)
}

// EnumerateDFAs generates every canonical d-state binary DFA with δ(0,0)=0,
// using the running-maximum backtracking scheme that only emits the
// lexicographically-least transition table in each state-relabelling
// class: the k-th remaining transition slot ranges over
// [0, min(m_{k-1}+1, d-1)], and m_k tracks the highest state index used so
// far.
func EnumerateDFAs(d int) []DFA {
	if d <= 0 {
		return nil
	}
	type slot struct{ state, sym int }
	slots := make([]slot, 0, 2*d-1)
	for s := 0; s < d; s++ {
		for sym := 0; sym < tm.NumSymbols; sym++ {
			if s == 0 && sym == 0 {
				continue
			}
			slots = append(slots, slot{state: s, sym: sym})
		}
	}

	var out []DFA
	t := make([]int, len(slots))
	var rec func(k, mPrev int)
	rec = func(k, mPrev int) {
		if k == len(slots) {
			delta := make([][2]int, d)
			for idx, sl := range slots {
				delta[sl.state][sl.sym] = t[idx]
			}
			out = append(out, DFA{D: d, Delta: delta})
			return
		}
		limit := mPrev + 1
		if limit > d-1 {
			limit = d - 1
		}
		for v := 0; v <= limit; v++ {
			t[k] = v
			next := mPrev
			if v > next {
				next = v
			}
			rec(k+1, next)
		}
	}
	rec(0, 0)
	return out
}

// Search tries every canonical DFA with 1..maxD states, both directions,
// returning the first certificate that proves non-halting.
func Search(m *tm.Machine, maxD int) (*Proof, bool) {
	for d := 1; d <= maxD; d++ {
		for _, dfa := range EnumerateDFAs(d) {
			for _, dir := range [2]Direction{LeftToRight, RightToLeft} {
				if p, ok := Solve(m, dfa, dir); ok {
					return p, true
				}
			}
		}
	}
	return nil, false
}

// ErrFailedCondition names which of the verifier's 8 closure conditions
// failed.
type ErrFailedCondition struct{ Condition int }

func (e *ErrFailedCondition) Error() string {
	return fmt.Sprintf("FAR verifier condition %d failed", e.Condition)
}
