package harness

import (
	"testing"

	"github.com/bbchallenge/bbchallenge-deciders/tm"
)

func TestRunPreservesInputOrder(t *testing.T) {
	indices := []int64{5, 1, 9, 2, 7, 3, 0, 8}
	for _, cores := range []int{1, 2, 4, 16} {
		got := Run(indices, cores, func(idx int64) int64 { return idx * idx })
		for i, idx := range indices {
			if got[i] != idx*idx {
				t.Fatalf("cores=%d: got[%d]=%d, want %d", cores, i, got[i], idx*idx)
			}
		}
	}
}

func TestRunEmptyInput(t *testing.T) {
	got := Run[int64](nil, 4, func(idx int64) int64 { return idx })
	if len(got) != 0 {
		t.Fatalf("got %d results for empty input, want 0", len(got))
	}
}

func TestRunTaggedCarriesOriginatingIndex(t *testing.T) {
	indices := []int64{10, 20, 30}
	got := RunTagged(indices, 3, func(idx int64) string {
		if idx == 20 {
			return "twenty"
		}
		return "other"
	})
	for i, idx := range indices {
		if got[i].Index != idx {
			t.Fatalf("result %d: got index %d, want %d", i, got[i].Index, idx)
		}
	}
	if got[1].Result != "twenty" {
		t.Fatalf("got %q for index 20, want %q", got[1].Result, "twenty")
	}
}

func TestStatsTotalsAcrossWorkers(t *testing.T) {
	s := NewStats(4)
	s.Record(0, true)
	s.Record(1, false)
	s.Record(2, true)
	s.Record(3, true)
	s.Record(0, false)

	decided, proven := s.Totals()
	if decided != 5 {
		t.Fatalf("got %d decided, want 5", decided)
	}
	if proven != 3 {
		t.Fatalf("got %d proven, want 3", proven)
	}
}

func TestPrefilterEmptyTokensMatchesEverything(t *testing.T) {
	pf, err := NewPrefilter(nil)
	if err != nil {
		t.Fatalf("NewPrefilter(nil): %v", err)
	}
	m, err := tm.ParseText("0RB0LC_1LA1RB_1LB0LD_0RA1RE_0LE---")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if !pf.MatchesText(m) {
		t.Fatal("an empty-token prefilter must match every machine")
	}
}

func TestPrefilterMatchesOnPresentToken(t *testing.T) {
	pf, err := NewPrefilter([]string{"---", "9RQ"})
	if err != nil {
		t.Fatalf("NewPrefilter: %v", err)
	}
	m, err := tm.ParseText("0RB0LC_1LA1RB_1LB0LD_0RA1RE_0LE---")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if !pf.MatchesText(m) {
		t.Fatal("machine contains the literal \"---\" token, prefilter should match")
	}
}

func TestPrefilterRejectsOnAbsentTokens(t *testing.T) {
	pf, err := NewPrefilter([]string{"9RQ", "8LZ"})
	if err != nil {
		t.Fatalf("NewPrefilter: %v", err)
	}
	m, err := tm.ParseText("0RB0LC_1LA1RB_1LB0LD_0RA1RE_0LE---")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if pf.MatchesText(m) {
		t.Fatal("machine contains neither token, prefilter should not match")
	}
}
