package repwl

import (
	"fmt"
	"strings"

	"github.com/bbchallenge/bbchallenge-deciders/tm"
)

// Tape is the regex-tape abstraction: two block lists flanking the head,
// farthest-from-head first, the state, and which side the head faces.
type Tape struct {
	before, after []Block
	state         tm.State
	facingAfter   bool

	blockSize     int
	plusThreshold int
}

// New builds the initial regex tape for a machine starting on the blank
// tape in state A: no blocks on either side (the whole tape reads as the
// implicit zero block), facing right.
func New(blockSize, plusThreshold int) *Tape {
	return &Tape{
		state:         0,
		facingAfter:   true,
		blockSize:     blockSize,
		plusThreshold: plusThreshold,
	}
}

func (t *Tape) clone() *Tape {
	c := *t
	c.before = append([]Block(nil), t.before...)
	c.after = append([]Block(nil), t.after...)
	return &c
}

// normalise merges adjacent same-word blocks and caps any run at or past
// the plus threshold to an unbounded block. Idempotent: normalising an
// already-normalised tape changes nothing.
func (t *Tape) normalise() {
	t.before = compressSide(t.before)
	t.after = compressSide(t.after)
	generaliseSide(t.before, t.plusThreshold)
	generaliseSide(t.after, t.plusThreshold)
}

// readBlock returns the block immediately facing the head, or the implicit
// zero block if that side has nothing stored yet.
func (t *Tape) readBlock() Block {
	if t.facingAfter {
		if n := len(t.after); n > 0 {
			return t.after[n-1]
		}
	} else if n := len(t.before); n > 0 {
		return t.before[n-1]
	}
	return zeroBlock(t.blockSize)
}

// String is the tape's fingerprint: the two block runs as stored, separated
// by the head, state and facing marker in the middle. String does not
// normalise the tape, so two tapes that are equal only after normalisation
// can render differently.
func (t *Tape) String() string {
	var sb strings.Builder
	sb.WriteString("0∞ ")
	for _, b := range t.before {
		fmt.Fprintf(&sb, "%s ", b)
	}
	if t.facingAfter {
		fmt.Fprintf(&sb, "%s> ", t.state)
	} else {
		fmt.Fprintf(&sb, "<%s ", t.state)
	}
	rev := make([]Block, len(t.after))
	for i, b := range t.after {
		rev[len(t.after)-1-i] = b
	}
	for _, b := range rev {
		fmt.Fprintf(&sb, "%s ", b)
	}
	sb.WriteString("0∞")
	return sb.String()
}

type macroOutcome uint8

const (
	macroOK macroOutcome = iota
	macroHalt
	macroTimeout
	macroFacingBlock
)

// macroStep advances the head across the block it currently faces: it
// materialises that block as a bounded concrete tape, simulates up to
// stepBudget concrete steps, and on success re-abstracts whatever the
// simulation produced back into blocks spliced in place of the one
// consumed. Reports macroFacingBlock without mutating the tape if the
// facing block is unbounded — the caller must branch first.
func (t *Tape) macroStep(m *tm.Machine, stepBudget int) macroOutcome {
	bh := t.readBlock()
	if bh.Plus {
		return macroFacingBlock
	}

	local := boundedTape{state: t.state, facingAfter: t.facingAfter}
	content := bh.repeatedSymbols()
	if t.facingAfter {
		local.after = content
	} else {
		local.before = content
	}

simulate:
	for steps := 0; ; steps++ {
		if steps >= stepBudget {
			return macroTimeout
		}
		switch local.step(m) {
		case stepHalt:
			return macroHalt
		case stepExit:
			break simulate
		}
	}

	newBefore := chunkPad(local.before, t.blockSize)
	newAfter := chunkPad(local.after, t.blockSize)

	if t.facingAfter {
		if n := len(t.after); n > 0 {
			t.after = t.after[:n-1]
		}
		t.after = append(t.after, newAfter...)
		t.before = append(t.before, newBefore...)
	} else {
		if n := len(t.before); n > 0 {
			t.before = t.before[:n-1]
		}
		t.before = append(t.before, newBefore...)
		t.after = append(t.after, newAfter...)
	}
	t.facingAfter = local.facingAfter
	t.state = local.state
	t.normalise()
	return macroOK
}

// plusBranches splits the unbounded block facing the head into two
// successor tapes, per the fixed point: either the plus block's tail is
// still at least as deep as its threshold behind one extra concrete copy,
// or the threshold copies are exactly what's there and the plus simply
// collapses to a concrete run, splitting off one more concrete copy if any
// repeats remain behind it. Neither branch is normalised: compressing them
// back would immediately re-merge the split-off copy into the run it came
// from and re-cap it to a plus block, making the branch indistinguishable
// from the tape it started from. plusBranches panics if the facing block
// isn't a plus block; callers check via readBlock first.
func (t *Tape) plusBranches() (*Tape, *Tape) {
	bh := t.readBlock()
	if !bh.Plus {
		panic("repwl: plusBranches called on a concrete facing block")
	}

	keepExtra := Block{B: bh.B, Repeat: 1}
	var collapseTail []Block
	if bh.Repeat > 1 {
		collapseTail = []Block{{B: bh.B, Repeat: bh.Repeat - 1}, {B: bh.B, Repeat: 1}}
	} else {
		collapseTail = []Block{{B: bh.B, Repeat: 1}}
	}

	keep := t.clone()
	collapse := t.clone()

	if t.facingAfter {
		keep.after = append(append([]Block(nil), t.after...), keepExtra)
		collapse.after = append(append([]Block(nil), t.after[:len(t.after)-1]...), collapseTail...)
	} else {
		keep.before = append(append([]Block(nil), t.before...), keepExtra)
		collapse.before = append(append([]Block(nil), t.before[:len(t.before)-1]...), collapseTail...)
	}

	return keep, collapse
}
