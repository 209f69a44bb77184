package repwl

import "github.com/bbchallenge/bbchallenge-deciders/tm"

// boundedTape is a finite concrete tape used only to materialise and
// simulate the single block the head currently faces. Unlike a real
// machine tape it has no implicit zeros past either end: running off
// either edge is the macro-step's success signal, not a definition default.
type boundedTape struct {
	before, after []uint8 // farthest-first; before[last]/after[last] sit next to the head
	state         tm.State
	facingAfter   bool
}

func (t *boundedTape) atExtremity() bool {
	if t.facingAfter {
		return len(t.after) == 0
	}
	return len(t.before) == 0
}

type stepOutcome uint8

const (
	stepContinue stepOutcome = iota
	stepHalt
	stepExit
)

// step advances the bounded tape by one transition, or reports stepExit
// without moving if the head is already facing past either edge.
func (t *boundedTape) step(m *tm.Machine) stepOutcome {
	if t.atExtremity() {
		return stepExit
	}

	var symbol uint8
	if t.facingAfter {
		symbol = t.after[len(t.after)-1]
	} else {
		symbol = t.before[len(t.before)-1]
	}

	tr := m.At(t.state, symbol)
	if tr.Undefined {
		return stepHalt
	}

	if t.facingAfter {
		t.after[len(t.after)-1] = tr.Write
	} else {
		t.before[len(t.before)-1] = tr.Write
	}

	switch tr.Move {
	case tm.Left:
		if t.facingAfter {
			t.facingAfter = false
		} else {
			v := t.before[len(t.before)-1]
			t.before = t.before[:len(t.before)-1]
			t.after = append(t.after, v)
		}
	case tm.Right:
		if !t.facingAfter {
			t.facingAfter = true
		} else {
			v := t.after[len(t.after)-1]
			t.after = t.after[:len(t.after)-1]
			t.before = append(t.before, v)
		}
	}
	t.state = tr.Next
	return stepContinue
}
