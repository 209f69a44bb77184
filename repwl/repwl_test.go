package repwl

import (
	"strings"
	"testing"

	"github.com/bbchallenge/bbchallenge-deciders/tm"
)

func TestCompressSideMergesAdjacentSameWordBlocks(t *testing.T) {
	blocks := []Block{
		{B: []uint8{0, 1}, Repeat: 2},
		{B: []uint8{0, 1}, Repeat: 1},
		{B: []uint8{1, 1}, Repeat: 3, Plus: true},
	}
	got := compressSide(blocks)
	if len(got) != 2 {
		t.Fatalf("got %d blocks, want 2: %v", len(got), got)
	}
	if got[0].Repeat != 3 || got[0].Plus {
		t.Errorf("merged block = %+v, want Repeat 3 not plus", got[0])
	}
	if !got[1].Plus || got[1].Repeat != 3 {
		t.Errorf("second block = %+v, want unchanged plus run", got[1])
	}
}

func TestGeneraliseSideCapsAtThreshold(t *testing.T) {
	blocks := []Block{{B: []uint8{1}, Repeat: 7}}
	generaliseSide(blocks, 4)
	if !blocks[0].Plus || blocks[0].Repeat != 4 {
		t.Fatalf("got %+v, want capped at (Repeat 4, Plus true)", blocks[0])
	}
}

func TestChunkPadAlignsToBlockSize(t *testing.T) {
	seq := []uint8{1, 0, 1}
	blocks := chunkPad(seq, 2)
	total := 0
	for _, b := range blocks {
		if len(b.B) != 2 {
			t.Fatalf("block word length = %d, want 2: %+v", len(b.B), b)
		}
		total += len(b.B) * b.Repeat
	}
	if total != 4 {
		t.Fatalf("padded length = %d, want 4 (a multiple of blockSize)", total)
	}
	// The original symbols land at the end (zeros padded onto the free
	// side), so the final block's final symbol must be the run's last bit.
	last := blocks[len(blocks)-1]
	if last.B[len(last.B)-1] != 1 {
		t.Fatalf("last block = %+v, want to end in the run's final bit", last)
	}
}

func TestChunkPadOfEmptyRunIsNoBlocks(t *testing.T) {
	if got := chunkPad(nil, 3); got != nil {
		t.Fatalf("got %v, want no blocks for an empty run", got)
	}
}

func TestTapeStringRendersHeadAndBothSides(t *testing.T) {
	tp := New(2, 4)
	tp.before = []Block{{B: []uint8{0, 1}, Repeat: 3, Plus: true}}
	tp.after = []Block{{B: []uint8{1, 1}, Repeat: 2}}
	s := tp.String()
	if !strings.Contains(s, "(01)^3+") || !strings.Contains(s, "(11)^2") || !strings.Contains(s, "A>") {
		t.Fatalf("rendered tape %q missing expected blocks or head marker", s)
	}
}

func TestDecideProvesKnownMachine(t *testing.T) {
	m, err := tm.ParseText("1RB1LC_1LA1RD_1LD1LA_1RA1RE_---1RB")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	out := Decide(m, 2, 6, 200, 5000)
	if out.Result != Proven {
		t.Fatalf("got %v, want Proven (visited=%d, branched=%v)", out.Result, out.VisitedCount, out.Branched)
	}
}

func TestDecideFailsOnHaltingMachine(t *testing.T) {
	m, err := tm.ParseText("1RB1LC_1RC1RB_1RD0LE_1LA1LD_---0LA")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	out := Decide(m, 2, 6, 200, 5000)
	if out.Result != CannotProve {
		t.Fatalf("got %v, want CannotProve for the BB5 champion", out.Result)
	}
}

func TestDecideWithThresholdOneAlwaysBranches(t *testing.T) {
	// ℓ=1, T=1: the very first block materialised on either side is
	// immediately generalised to a plus block, so any search that runs
	// more than one macro-step must branch at least once.
	m, err := tm.ParseText("0RB0LC_1LA1RB_1LB0LD_0RA1RE_0LE---")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	out := Decide(m, 1, 1, 50, 200)
	if !out.Branched {
		t.Fatalf("got Branched=false, want true with threshold 1")
	}
}

func TestDecideTracedProducesAValidLookingDigraph(t *testing.T) {
	m, err := tm.ParseText("1RB1LC_1LA1RD_1LD1LA_1RA1RE_---1RB")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	tr := NewDOTTracer()
	out := DecideTraced(m, 2, 6, 200, 5000, tr)
	if out.Result != Proven {
		t.Fatalf("got %v, want Proven", out.Result)
	}
	dot := tr.DOT()
	if !strings.HasPrefix(dot, "digraph repwl {") || !strings.Contains(dot, "SUCCESS") {
		t.Fatalf("DOT output missing expected structure:\n%s", dot)
	}
}
