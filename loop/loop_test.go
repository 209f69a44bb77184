package loop

import (
	"testing"

	"github.com/bbchallenge/bbchallenge-deciders/tm"
)

func TestDecideFindsKnownLoop(t *testing.T) {
	m, err := tm.ParseText("0RB0LC_1LA1RB_1LB1RB_------_------")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	out := Decide(m, 130)
	if out.Result != NonHalting {
		t.Fatalf("got %v, want NonHalting", out.Result)
	}
}

func TestDecideHaltsOnTrivialHalt(t *testing.T) {
	m, err := tm.ParseText("1RB---_------_------_------_------")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	out := Decide(m, 10)
	if out.Result != Halting {
		t.Fatalf("got %v, want Halting", out.Result)
	}
	if out.Steps != 1 {
		t.Errorf("Steps: got %d, want 1", out.Steps)
	}
}

func TestDecideNeverDeclaresBB5ChampionNonHalting(t *testing.T) {
	// BB5 champion halts after 47,176,870 steps. Loop must never return
	// NonHalting for it, regardless of the gas budget.
	m, err := tm.ParseText("1RB1LC_1RC1RB_1RD0LE_1LA1LD_---0LA")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	out := Decide(m, 2000)
	if out.Result == NonHalting {
		t.Fatalf("got NonHalting for BB5 champion, which must never happen")
	}
}

func TestDecideUnknownWhenGasExhausted(t *testing.T) {
	// A machine with no loop-eligible pattern and no halting transition
	// inside a tiny gas budget should report Unknown, not a false positive.
	m, err := tm.ParseText("1RB1LC_1RC1RB_1RD0LE_1LA1LD_---0LA")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	out := Decide(m, 3)
	if out.Result != Unknown {
		t.Fatalf("got %v, want Unknown", out.Result)
	}
	if out.Steps != 3 {
		t.Errorf("Steps: got %d, want 3", out.Steps)
	}
}
