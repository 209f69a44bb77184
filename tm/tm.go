// Package tm implements the 5-state 2-symbol Turing machine model shared by
// every decider: the bbchallenge binary/textual encodings, the transition
// table, and a concrete tape with single-step semantics.
package tm

import (
	"errors"
	"fmt"
	"strings"
)

// NumStates is the number of states a bbchallenge machine has.
const NumStates = 5

// NumSymbols is the size of the tape alphabet.
const NumSymbols = 2

// WireSize is the length in bytes of a machine's binary (DB) encoding:
// 5 states * 2 symbols * 3 bytes per transition.
const WireSize = NumStates * NumSymbols * 3

// Move is the direction the head travels after a transition.
type Move uint8

const (
	Right Move = 0
	Left  Move = 1
)

// String renders the move as "R" or "L".
func (m Move) String() string {
	if m == Left {
		return "L"
	}
	return "R"
}

// State identifies one of the machine's 5 states, A through E.
type State uint8

// String renders a state as its letter, 'A'..'E'.
func (s State) String() string {
	return string(rune('A') + rune(s))
}

// ErrMalformedMachine indicates a machine encoding of the wrong length or
// with invalid field values.
var ErrMalformedMachine = errors.New("malformed machine encoding")

// Transition is one (write, move, next) triple. Undefined is true when the
// transition is a halting transition (next state unset).
type Transition struct {
	Write     uint8
	Move      Move
	Next      State
	Undefined bool
}

// Machine is a parsed 5-state 2-symbol transition table.
type Machine struct {
	table [NumStates][NumSymbols]Transition
}

// Parse decodes the 30-byte bbchallenge wire encoding of a machine: 10
// transitions, 3 bytes each, row-major by (state, symbol).
func Parse(raw []byte) (*Machine, error) {
	if len(raw) != WireSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrMalformedMachine, len(raw), WireSize)
	}

	var m Machine
	for s := 0; s < NumStates; s++ {
		for sym := 0; sym < NumSymbols; sym++ {
			off := 3 * (NumSymbols*s + sym)
			write, move, next := raw[off], raw[off+1], raw[off+2]
			if next == 0 {
				m.table[s][sym] = Transition{Undefined: true}
				continue
			}
			if write > 1 || move > 1 || next > NumStates {
				return nil, fmt.Errorf("%w: state %s symbol %d has invalid transition bytes (%d,%d,%d)",
					ErrMalformedMachine, State(s), sym, write, move, next)
			}
			m.table[s][sym] = Transition{
				Write: write,
				Move:  Move(move),
				Next:  State(next - 1),
			}
		}
	}
	return &m, nil
}

// Bytes re-encodes the machine to its 30-byte wire form.
func (m *Machine) Bytes() []byte {
	out := make([]byte, WireSize)
	for s := 0; s < NumStates; s++ {
		for sym := 0; sym < NumSymbols; sym++ {
			off := 3 * (NumSymbols*s + sym)
			tr := m.table[s][sym]
			if tr.Undefined {
				continue
			}
			out[off] = tr.Write
			out[off+1] = uint8(tr.Move)
			out[off+2] = uint8(tr.Next) + 1
		}
	}
	return out
}

// ParseText parses the bbchallenge textual notation, e.g.
// "1RB1LC_1RC1RB_1RD0LE_1LA1LD_---0LA", underscore-separated per-state
// blocks of two 3-character transitions ("1RB") or "---" for undefined.
func ParseText(s string) (*Machine, error) {
	states := strings.Split(s, "_")
	if len(states) != NumStates {
		return nil, fmt.Errorf("%w: expected %d state blocks, got %d", ErrMalformedMachine, NumStates, len(states))
	}

	var m Machine
	for si, block := range states {
		if len(block) != 2*3 {
			return nil, fmt.Errorf("%w: state block %q has wrong length", ErrMalformedMachine, block)
		}
		for sym := 0; sym < NumSymbols; sym++ {
			tok := block[3*sym : 3*sym+3]
			if tok == "---" {
				m.table[si][sym] = Transition{Undefined: true}
				continue
			}
			write := tok[0]
			if write != '0' && write != '1' {
				return nil, fmt.Errorf("%w: invalid write symbol in %q", ErrMalformedMachine, tok)
			}
			var move Move
			switch tok[1] {
			case 'R':
				move = Right
			case 'L':
				move = Left
			default:
				return nil, fmt.Errorf("%w: invalid move in %q", ErrMalformedMachine, tok)
			}
			next := tok[2]
			if next < 'A' || next >= 'A'+NumStates {
				return nil, fmt.Errorf("%w: invalid next state in %q", ErrMalformedMachine, tok)
			}
			m.table[si][sym] = Transition{
				Write: write - '0',
				Move:  move,
				Next:  State(next - 'A'),
			}
		}
	}
	return &m, nil
}

// Text renders the machine in bbchallenge textual notation.
func (m *Machine) Text() string {
	var sb strings.Builder
	for s := 0; s < NumStates; s++ {
		if s > 0 {
			sb.WriteByte('_')
		}
		for sym := 0; sym < NumSymbols; sym++ {
			tr := m.table[s][sym]
			if tr.Undefined {
				sb.WriteString("---")
				continue
			}
			fmt.Fprintf(&sb, "%d%s%s", tr.Write, tr.Move, tr.Next)
		}
	}
	return sb.String()
}

// At returns the transition for (state, symbol).
func (m *Machine) At(s State, symbol uint8) Transition {
	return m.table[s][symbol]
}

// PrettyTable renders the machine as a tabular string, one row per state,
// columns for symbols 0 and 1, mirroring the original corpus's pptm view.
func (m *Machine) PrettyTable() string {
	var sb strings.Builder
	sb.WriteString("s   0     1\n")
	for s := 0; s < NumStates; s++ {
		fmt.Fprintf(&sb, "%s  ", State(s))
		for sym := 0; sym < NumSymbols; sym++ {
			tr := m.table[s][sym]
			if tr.Undefined {
				sb.WriteString("---   ")
				continue
			}
			fmt.Fprintf(&sb, "%d%s%s   ", tr.Write, tr.Move, tr.Next)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
