package ngramcps

import (
	"testing"

	"github.com/bbchallenge/bbchallenge-deciders/tm"
)

func TestDecidePlainProvesKnownMachine(t *testing.T) {
	m, err := tm.ParseText("1RB1LE_1LC0RD_0LA1LA_0LB0RD_1LB---")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if got := DecidePlain(m, 2, 2, 100); got != Proven {
		t.Fatalf("got %v, want Proven", got)
	}
}

func TestDecidePlainCannotProveOnInsufficientGas(t *testing.T) {
	m, err := tm.ParseText("1RB1LE_1LC0RD_0LA1LA_0LB0RD_1LB---")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if got := DecidePlain(m, 2, 2, 1); got != CannotProve {
		t.Fatalf("got %v, want CannotProve with a tiny gas budget", got)
	}
}

func TestDecideOneGramReducesToClosedStates(t *testing.T) {
	// With ℓ=r=1 the abstraction collapses to reachable (state, symbol)
	// pairs: it should decide exactly machines with no undefined
	// transition anywhere in the reachable digraph.
	m, err := tm.ParseText("0RB0LC_1LA1RB_1LB0LD_0RA1RA_0LE---")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if got := DecidePlain(m, 1, 1, 200); got != Proven {
		t.Fatalf("got %v, want Proven", got)
	}
}

func TestDecideFailsOnHaltingMachine(t *testing.T) {
	m, err := tm.ParseText("1RB1LC_1RC1RB_1RD0LE_1LA1LD_---0LA")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if got := DecidePlain(m, 2, 2, 500); got != CannotProve {
		t.Fatalf("got %v, want CannotProve for a halting machine", got)
	}
}

func TestLengthHistoryAndLRUAlphabetsRunToCompletion(t *testing.T) {
	m, err := tm.ParseText("1RB1LE_1LC0RD_0LA1LA_0LB0RD_1LB---")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if got := Decide[HistorySymbol](m, LengthHistory(3), 2, 2, 500); got != Proven {
		t.Errorf("length-history alphabet: got %v, want Proven", got)
	}
	if got := Decide[HistorySymbol](m, LRU(), 2, 2, 500); got != Proven {
		t.Errorf("LRU alphabet: got %v, want Proven", got)
	}
}
