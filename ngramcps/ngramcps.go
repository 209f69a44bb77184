// Package ngramcps implements the NGramCPS decider: an abstract domain of
// local tape contexts, each a (left n-gram, right n-gram, head symbol,
// state) tuple, closed under a saturation loop over the machine's
// transitions. If the closure never needs a halting transition and
// eventually stops growing, the machine is proven never to halt.
package ngramcps

import "github.com/bbchallenge/bbchallenge-deciders/tm"

// Result is the decider's two-way verdict; there is no third "it halts"
// answer because NGramCPS only ever tries to prove non-halting.
type Result uint8

const (
	CannotProve Result = iota
	Proven
)

func (r Result) String() string {
	if r == Proven {
		return "Proven"
	}
	return "CannotProve"
}

// Symbol is a tape alphabet value. Besides the bit the machine itself reads
// and writes, an alphabet may attach history that only sharpens the
// abstraction's n-gram sets; Key gives that value a unique string encoding
// suitable for use as a map key.
type Symbol interface {
	Bit() uint8
	Key() string
}

// Alphabet mints the blank symbol and computes the symbol that results from
// writing a bit at a cell whose previous occupant (and, transitively, its
// history) is prev.
type Alphabet[S Symbol] interface {
	Zero() S
	Write(prev S, bit uint8, state tm.State) S
}

// PlainSymbol is the {0,1} alphabet with no history augmentation.
type PlainSymbol uint8

func (s PlainSymbol) Bit() uint8   { return uint8(s) }
func (s PlainSymbol) Key() string  { return string([]byte{uint8(s)}) }

type plainAlphabet struct{}

func (plainAlphabet) Zero() PlainSymbol { return 0 }
func (plainAlphabet) Write(_ PlainSymbol, bit uint8, _ tm.State) PlainSymbol {
	return PlainSymbol(bit)
}

// Plain is the decider's base alphabet: a cell's value is just its bit.
func Plain() Alphabet[PlainSymbol] { return plainAlphabet{} }

type historyEvent struct {
	state tm.State
	bit   uint8
}

// HistorySymbol is a bit plus a bounded, most-recent-first log of the
// (state, bit) pairs written to its cell, used by the history and LRU
// alphabet variants.
type HistorySymbol struct {
	bit     uint8
	history []historyEvent
}

func (s HistorySymbol) Bit() uint8 { return s.bit }

func (s HistorySymbol) Key() string {
	buf := make([]byte, 1, 1+2*len(s.history))
	buf[0] = s.bit
	for _, e := range s.history {
		buf = append(buf, byte(e.state), e.bit)
	}
	return string(buf)
}

type lengthHistoryAlphabet struct{ n int }

func (a lengthHistoryAlphabet) Zero() HistorySymbol { return HistorySymbol{} }

func (a lengthHistoryAlphabet) Write(prev HistorySymbol, bit uint8, state tm.State) HistorySymbol {
	hist := append([]historyEvent{{state, bit}}, prev.history...)
	if len(hist) > a.n {
		hist = hist[:a.n]
	}
	return HistorySymbol{bit: bit, history: hist}
}

// LengthHistory returns the length-n history alphabet: each cell keeps the
// n most recent (state, written-bit) events, most recent first, from the
// writes it has seen.
func LengthHistory(n int) Alphabet[HistorySymbol] { return lengthHistoryAlphabet{n: n} }

type lruAlphabet struct{}

func (lruAlphabet) Zero() HistorySymbol { return HistorySymbol{} }

func (lruAlphabet) Write(prev HistorySymbol, bit uint8, state tm.State) HistorySymbol {
	filtered := make([]historyEvent, 0, len(prev.history))
	for _, e := range prev.history {
		if e.state != state {
			filtered = append(filtered, e)
		}
	}
	hist := append([]historyEvent{{state, bit}}, filtered...)
	return HistorySymbol{bit: bit, history: hist}
}

// LRU returns the LRU alphabet: each cell keeps at most one event per
// state, the new write moved to the front and any stale entry for the same
// state evicted.
func LRU() Alphabet[HistorySymbol] { return lruAlphabet{} }

// localContext is one element of the abstract state's frontier: the left
// and right n-grams flanking the head, the head symbol, and the state.
type localContext[S Symbol] struct {
	left, right []S
	center      S
	state       tm.State
}

func encodeSeq[S Symbol](syms []S) string {
	buf := make([]byte, 0, len(syms)*2)
	for _, s := range syms {
		k := s.Key()
		buf = append(buf, byte(len(k)))
		buf = append(buf, k...)
	}
	return string(buf)
}

func (lc localContext[S]) key() string {
	return encodeSeq(lc.left) + "|" + encodeSeq(lc.right) + "|" + lc.center.Key() + "|" + string(rune(lc.state))
}

// ngramSet maps an (n-1)-gram, encoded as a string, to the set of symbols
// observed to precede (left set) or follow (right set) it.
type ngramSet[S Symbol] map[string]map[string]S

func (ns ngramSet[S]) insert(key string, sym S) {
	m, ok := ns[key]
	if !ok {
		m = map[string]S{}
		ns[key] = m
	}
	m[sym.Key()] = sym
}

type abstractState[S Symbol] struct {
	left, right ngramSet[S]
	contexts    map[string]localContext[S]
}

func newAbstractState[S Symbol](a Alphabet[S], lenL, lenR int) *abstractState[S] {
	zero := a.Zero()

	leftGram := make([]S, lenL-1)
	rightGram := make([]S, lenR-1)
	for i := range leftGram {
		leftGram[i] = zero
	}
	for i := range rightGram {
		rightGram[i] = zero
	}

	s := &abstractState[S]{
		left:     ngramSet[S]{},
		right:    ngramSet[S]{},
		contexts: map[string]localContext[S]{},
	}
	s.left.insert(encodeSeq(leftGram), zero)
	s.right.insert(encodeSeq(rightGram), zero)

	initLeft := make([]S, lenL)
	initRight := make([]S, lenR)
	for i := range initLeft {
		initLeft[i] = zero
	}
	for i := range initRight {
		initRight[i] = zero
	}
	init := localContext[S]{left: initLeft, right: initRight, center: zero, state: 0}
	s.contexts[init.key()] = init
	return s
}

func (s *abstractState[S]) insLeftNgram(ngram []S) {
	s.left.insert(encodeSeq(ngram[1:]), ngram[0])
}

func (s *abstractState[S]) insRightNgram(ngram []S) {
	s.right.insert(encodeSeq(ngram[:len(ngram)-1]), ngram[len(ngram)-1])
}

// expandLocalContext tries to step lc forward. If the machine has no
// transition for (lc.state, lc.center.Bit()), it reports halting and the
// closure attempt fails. Otherwise it records the n-gram that just fell out
// of the window and returns every not-yet-seen successor context reachable
// for each symbol the abstraction admits on the growing side.
func expandLocalContext[S Symbol](m *tm.Machine, a Alphabet[S], lc localContext[S], s *abstractState[S]) ([]localContext[S], bool) {
	tr := m.At(lc.state, lc.center.Bit())
	if tr.Undefined {
		return nil, true
	}

	var out []localContext[S]
	written := a.Write(lc.center, tr.Write, lc.state)

	switch tr.Move {
	case tm.Right:
		s.insLeftNgram(lc.left)
		for _, sym := range s.right[encodeSeq(lc.right[1:])] {
			newLeft := append(append([]S{}, lc.left[1:]...), written)
			newRight := append(append([]S{}, lc.right[1:]...), sym)
			newLC := localContext[S]{left: newLeft, right: newRight, center: lc.right[0], state: tr.Next}
			if _, exists := s.contexts[newLC.key()]; !exists {
				s.contexts[newLC.key()] = newLC
				out = append(out, newLC)
			}
		}
	case tm.Left:
		s.insRightNgram(lc.right)
		for _, sym := range s.left[encodeSeq(lc.left[:len(lc.left)-1])] {
			newLeft := append([]S{sym}, lc.left[:len(lc.left)-1]...)
			newRight := append([]S{written}, lc.right[:len(lc.right)-1]...)
			newLC := localContext[S]{left: newLeft, right: newRight, center: lc.left[len(lc.left)-1], state: tr.Next}
			if _, exists := s.contexts[newLC.key()]; !exists {
				s.contexts[newLC.key()] = newLC
				out = append(out, newLC)
			}
		}
	}
	return out, false
}

// Decide runs the saturation loop: repeatedly drain the current frontier of
// local contexts through expandLocalContext, decrementing gas per
// expansion. A full sweep that adds nothing new closes the abstraction and
// proves non-halting; hitting a halting transition or exhausting gas first
// reports CannotProve.
func Decide[S Symbol](m *tm.Machine, a Alphabet[S], lenL, lenR, gas int) Result {
	s := newAbstractState(a, lenL, lenR)

	for gas > 0 {
		toVisit := make([]localContext[S], 0, len(s.contexts))
		for _, c := range s.contexts {
			toVisit = append(toVisit, c)
		}

		anyUpdates := false
		for len(toVisit) > 0 && gas > 0 {
			cur := toVisit[0]
			toVisit = toVisit[1:]

			newCtxs, halting := expandLocalContext(m, a, cur, s)
			if halting {
				return CannotProve
			}
			if len(newCtxs) > 0 {
				anyUpdates = true
			}
			toVisit = append(newCtxs, toVisit...)
			gas--
		}
		if !anyUpdates {
			return Proven
		}
	}
	return CannotProve
}

// DecidePlain runs Decide with the plain {0,1} alphabet, the common case.
func DecidePlain(m *tm.Machine, lenL, lenR, gas int) Result {
	return Decide[PlainSymbol](m, Plain(), lenL, lenR, gas)
}
