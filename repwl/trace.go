package repwl

import (
	"fmt"
	"strings"
)

// DOTTracer collects a search into a Graphviz digraph: one node per visited
// tape, a darkgreen edge per macro-step, blue dashed edges per branch, and a
// labelled sink node for whichever terminal outcome ended the search.
type DOTTracer struct {
	nodes    map[string]bool
	edges    []string
	sinks    []string
	sinkSeen map[string]bool
}

// NewDOTTracer returns an empty tracer ready to pass to DecideTraced.
func NewDOTTracer() *DOTTracer {
	return &DOTTracer{nodes: map[string]bool{}, sinkSeen: map[string]bool{}}
}

func truncateLabel(s string) string {
	const max = 80
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func (g *DOTTracer) Node(key, label string) {
	if g.nodes[key] {
		return
	}
	g.nodes[key] = true
}

func (g *DOTTracer) Edge(from, to, label string) {
	g.nodes[from] = true
	g.nodes[to] = true
	color := "darkgreen"
	style := "solid"
	if strings.HasPrefix(label, "branch") {
		color = "blue"
		style = "dashed"
	}
	g.edges = append(g.edges, fmt.Sprintf("  %q -> %q [label=%q color=%s style=%s];",
		from, to, label, color, style))
}

func (g *DOTTracer) Sink(from, kind string) {
	if g.sinkSeen[kind] {
		return
	}
	g.sinkSeen[kind] = true
	if from == "" {
		g.sinks = append(g.sinks, fmt.Sprintf("  %q [shape=doublecircle color=green];", kind))
		return
	}
	g.sinks = append(g.sinks, fmt.Sprintf("  %q [shape=box color=red];", kind))
	g.edges = append(g.edges, fmt.Sprintf("  %q -> %q;", from, kind))
}

// DOT renders the recorded search as a Graphviz digraph source.
func (g *DOTTracer) DOT() string {
	var sb strings.Builder
	sb.WriteString("digraph repwl {\n")
	for key := range g.nodes {
		fmt.Fprintf(&sb, "  %q [label=%q];\n", key, truncateLabel(key))
	}
	for _, s := range g.sinks {
		sb.WriteString(s)
		sb.WriteByte('\n')
	}
	for _, e := range g.edges {
		sb.WriteString(e)
		sb.WriteByte('\n')
	}
	sb.WriteString("}\n")
	return sb.String()
}
