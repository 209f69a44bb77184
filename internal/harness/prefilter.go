package harness

import (
	"github.com/coregx/ahocorasick"

	"github.com/bbchallenge/bbchallenge-deciders/tm"
)

// Prefilter fast-rejects machines from a DB sweep that can't possibly match
// any of a set of literal transition tokens (e.g. "1RB", "---") before
// handing the survivors to a decider. It plays the same multi-literal-
// alternation role ahocorasick.Automaton plays for the teacher's regex
// engine dispatch, here repurposed from "does this regex have a literal
// match" to "does this machine's textual encoding contain one of these
// transition tokens".
type Prefilter struct {
	automaton *ahocorasick.Automaton
}

// NewPrefilter builds a prefilter over a set of literal tokens, such as
// bbchallenge transition tokens ("1RB", "0LC") or "---" for undefined
// transitions. An empty token list is a valid, always-matching prefilter.
func NewPrefilter(tokens []string) (*Prefilter, error) {
	if len(tokens) == 0 {
		return &Prefilter{}, nil
	}
	builder := ahocorasick.NewBuilder()
	for _, tok := range tokens {
		builder.AddPattern([]byte(tok))
	}
	automaton, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return &Prefilter{automaton: automaton}, nil
}

// MatchesText reports whether the machine's bbchallenge textual encoding
// contains any of the prefilter's tokens. A prefilter built from no tokens
// always matches, so callers that don't configure one see every machine
// pass through unfiltered.
func (p *Prefilter) MatchesText(m *tm.Machine) bool {
	if p.automaton == nil {
		return true
	}
	return p.automaton.IsMatch([]byte(m.Text()))
}
