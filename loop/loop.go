// Package loop implements the Loop decider: it simulates a machine and
// watches its trace of concrete tape configurations for a repeating
// (state, head-symbol) pattern whose tape content is related by a constant
// shift, witnessing an infinite periodic translation of the tape.
package loop

import "github.com/bbchallenge/bbchallenge-deciders/tm"

// Result is the three-way outcome of a gas-budgeted run.
type Result uint8

const (
	Unknown Result = iota
	NonHalting
	Halting
)

func (r Result) String() string {
	switch r {
	case NonHalting:
		return "NonHalting"
	case Halting:
		return "Halting"
	default:
		return "Unknown"
	}
}

// Outcome is the decider's verdict plus the step count at which it fired.
type Outcome struct {
	Result Result
	Steps  int
}

// config is a concrete tape configuration: two symbol runs flanking the
// head, closest cell first, with the head symbol and state held out.
// Reading past the end of either run is an implicit 0, same as the blank
// tape beyond the machine's visited region.
type config struct {
	left, right []uint8
	head        uint8
	state       tm.State
}

// entry pairs a configuration with its head displacement from the start
// cell at the time it was recorded.
type entry struct {
	cfg  config
	disp int
}

func sameContext(a, b config) bool {
	return a.state == b.state && a.head == b.head
}

func dirOf(mv tm.Move) int {
	if mv == tm.Right {
		return 1
	}
	return -1
}

func prepend(s []uint8, v uint8) []uint8 {
	out := make([]uint8, len(s)+1)
	out[0] = v
	copy(out[1:], s)
	return out
}

// applyStep advances a configuration by one transition. The symbol left
// behind by the head is pushed onto the run for the side being departed;
// the new head symbol is popped off the front of the run on the arrival
// side, or 0 if that run is empty.
func applyStep(c config, tr tm.Transition) config {
	next := config{state: tr.Next}
	switch tr.Move {
	case tm.Right:
		next.left = prepend(c.left, tr.Write)
		if len(c.right) > 0 {
			next.head = c.right[0]
			next.right = c.right[1:]
		}
	case tm.Left:
		next.right = prepend(c.right, tr.Write)
		if len(c.left) > 0 {
			next.head = c.left[0]
			next.left = c.left[1:]
		}
	}
	return next
}

// Decide simulates m for up to gas steps, returning Halting if the machine
// halts, NonHalting as soon as the loop predicate fires, or Unknown once gas
// is exhausted with neither.
func Decide(m *tm.Machine, gas int) Outcome {
	es := config{state: 0}
	d := 0
	var history []entry

	for i := 0; i < gas; i++ {
		tr := m.At(es.state, es.head)
		if tr.Undefined {
			return Outcome{Result: Halting, Steps: i}
		}

		esPrime := applyStep(es, tr)
		dPrime := d + dirOf(tr.Move)

		if findLoop10(entry{esPrime, dPrime}, entry{es, d}, history) {
			return Outcome{Result: NonHalting, Steps: i + 1}
		}

		history = append([]entry{{es, d}}, history...)
		es, d = esPrime, dPrime
	}
	return Outcome{Result: Unknown, Steps: gas}
}

// findLoop10 seeds the tortoise-and-hare search: h1 is the configuration one
// step behind h0, and the trailing history ls supplies both the older
// candidate h2 (two steps behind h0) and the chain each candidate is
// compared against.
func findLoop10(h0, h1 entry, ls []entry) bool {
	if len(ls) == 0 {
		return false
	}
	h2 := ls[0]
	ls2 := ls[1:]
	ls0 := append([]entry{h1}, ls...)
	return findLoop1(h0, h1, h2, ls0, ls, ls2, 0)
}

// findLoop1 walks h1 and h2 back through history, h1 one entry at a time and
// h2 two, while h0 and its chain ls0 stay fixed. At every position it checks
// whether h0, h1 and h2 share a (state, head-symbol) and, if so, asks
// verifyLoop1 whether the chains starting at h0 and h1 stay in lock-step
// under a constant shift for at least n+1 further entries.
func findLoop1(h0, h1, h2 entry, ls0, ls1, ls2 []entry, n int) bool {
	for {
		if sameContext(h0.cfg, h1.cfg) && sameContext(h0.cfg, h2.cfg) &&
			verifyLoop1(h0, h1, ls0, ls1, n+1, h0.disp-h1.disp) {
			return true
		}

		if len(ls2) < 2 || len(ls1) < 1 {
			return false
		}
		h2, ls2 = ls2[1], ls2[2:]
		h1, ls1 = ls1[0], ls1[1:]
		n++
	}
}

// verifyLoop1 descends ls0 and ls1 in lock-step, requiring a matching
// (state, head-symbol) pair at every level. Once n reaches zero it also
// checks, at each remaining level, whether the displacement alignment
// condition holds for dpos = disp(h0) - disp(h1): equal displacements when
// dpos is zero, or — for a net rightward (leftward) drift — that the
// older configuration h1's run on the drift side is empty and its
// displacement lies strictly behind h0's in the drift direction.
func verifyLoop1(h0, h1 entry, ls0, ls1 []entry, n, dpos int) bool {
	for {
		if !sameContext(h0.cfg, h1.cfg) {
			return false
		}

		if n == 0 {
			var aligned bool
			switch {
			case dpos == 0:
				aligned = h1.disp == h0.disp
			case dpos > 0:
				aligned = len(h1.cfg.right) == 0 && h1.disp < h0.disp
			default:
				aligned = len(h1.cfg.left) == 0 && h0.disp < h1.disp
			}
			if aligned {
				return true
			}
		}

		if len(ls0) == 0 || len(ls1) == 0 {
			return false
		}
		h0, ls0 = ls0[0], ls0[1:]
		h1, ls1 = ls1[0], ls1[1:]
		if n > 0 {
			n--
		}
	}
}
