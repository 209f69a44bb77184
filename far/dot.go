package far

import (
	"fmt"
	"strings"
)

func (p *Proof) nfaStateName(i int) string {
	if i == p.Sink() {
		return "⊥"
	}
	dfaState := i / 5
	letter := string(rune('A' + i%5))
	return fmt.Sprintf("%d%s", dfaState, letter)
}

// DOT renders the proof's DFA and NFA as a single Graphviz digraph, the
// DFA transitions unlabelled-shape and the NFA states shaped by whether
// they're accepting, mirroring a proof viewer's combined view of a
// certificate.
func (p *Proof) DOT() string {
	var sb strings.Builder
	sb.WriteString("digraph far {\n")

	sb.WriteString("  subgraph cluster_dfa {\n    label=\"DFA\";\n")
	for i := 0; i < p.DFA.D; i++ {
		for r := 0; r < 2; r++ {
			fmt.Fprintf(&sb, "    \"dfa%d\" -> \"dfa%d\" [label=%q];\n", i, p.DFA.Delta[i][r], fmt.Sprint(r))
		}
	}
	sb.WriteString("  }\n")

	sb.WriteString("  subgraph cluster_nfa {\n    label=\"NFA\";\n")
	for i := 0; i < p.N(); i++ {
		shape := "circle"
		if p.A.Get(i) {
			shape = "doublecircle"
		}
		fmt.Fprintf(&sb, "    %q [shape=%s];\n", p.nfaStateName(i), shape)
	}
	for r := 0; r < 2; r++ {
		for i := 0; i < p.N(); i++ {
			for j := 0; j < p.N(); j++ {
				if p.R[r].Get(i, j) {
					fmt.Fprintf(&sb, "    %q -> %q [label=%q];\n", p.nfaStateName(i), p.nfaStateName(j), fmt.Sprint(r))
				}
			}
		}
	}
	sb.WriteString("  }\n}\n")
	return sb.String()
}
