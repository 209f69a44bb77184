// Package dvf implements the binary codec for decider verification files:
// a sequence of FAR certificates on disk, readable either by a single
// forward scan or, after one indexing pass, by random access to the i-th
// entry.
package dvf

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bbchallenge/bbchallenge-deciders/far"
	"github.com/bbchallenge/bbchallenge-deciders/internal/bitmatrix"
)

// Type is the decider-type tag stored in each entry header.
type Type uint32

const (
	DFAOnly Type = 10
	DFANFA  Type = 11
)

func (t Type) String() string {
	switch t {
	case DFAOnly:
		return "DFA_ONLY"
	case DFANFA:
		return "DFA_NFA"
	default:
		return fmt.Sprintf("Type(%d)", uint32(t))
	}
}

// ErrMalformed covers every structural problem the codec can detect: a
// payload whose declared length doesn't match what decoding consumes, or an
// unrecognised decider-type tag.
var ErrMalformed = errors.New("malformed dvf entry")

const headerSize = 4 + 4 + 4 // machine_id, decider_type, info_length

// Entry is one raw DVF record: a machine id, a decider-type tag, and the
// opaque payload bytes. DFA_NFA payloads can be further decoded with
// DecodeFAR; DFA_ONLY payloads are passed through uninterpreted, since
// spec.md leaves that format out of scope for this codec.
type Entry struct {
	MachineID uint32
	Type      Type
	Payload   []byte
}

// ReadAll performs a scan-mode read: the 4-byte entry count, then each
// entry in file order. It does not validate payload contents; callers
// decode entries (e.g. via DecodeFAR) as needed.
func ReadAll(r io.Reader) ([]Entry, error) {
	br := bufio.NewReader(r)

	var n uint32
	if err := binary.Read(br, binary.BigEndian, &n); err != nil {
		return nil, fmt.Errorf("%w: reading entry count: %v", ErrMalformed, err)
	}

	out := make([]Entry, 0, n)
	for i := uint32(0); i < n; i++ {
		e, err := readEntry(br)
		if err != nil {
			return out, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func readEntry(r io.Reader) (Entry, error) {
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Entry{}, fmt.Errorf("%w: reading header: %v", ErrMalformed, err)
	}
	e := Entry{
		MachineID: binary.BigEndian.Uint32(hdr[0:4]),
		Type:      Type(binary.BigEndian.Uint32(hdr[4:8])),
	}
	infoLen := binary.BigEndian.Uint32(hdr[8:12])
	e.Payload = make([]byte, infoLen)
	if _, err := io.ReadFull(r, e.Payload); err != nil {
		return Entry{}, fmt.Errorf("%w: reading %d-byte payload: %v", ErrMalformed, infoLen, err)
	}
	return e, nil
}

// WriteAll encodes entries in scan-mode order: a 4-byte count followed by
// each entry's header and payload.
func WriteAll(w io.Writer, entries []Entry) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		if err := writeEntry(w, e); err != nil {
			return err
		}
	}
	return nil
}

func writeEntry(w io.Writer, e Entry) error {
	var hdr [12]byte
	binary.BigEndian.PutUint32(hdr[0:4], e.MachineID)
	binary.BigEndian.PutUint32(hdr[4:8], uint32(e.Type))
	binary.BigEndian.PutUint32(hdr[8:12], uint32(len(e.Payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(e.Payload)
	return err
}

// Index is a pre-indexed DVF: one pass over the file records the byte
// offset of every entry's header, after which any entry can be read by a
// single seek instead of re-scanning from the start.
type Index struct {
	path    string
	offsets []int64
}

// BuildIndex opens path and walks its entries once, recording each one's
// starting offset without holding its payload in memory.
func BuildIndex(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	var n uint32
	if err := binary.Read(br, binary.BigEndian, &n); err != nil {
		return nil, fmt.Errorf("%w: reading entry count: %v", ErrMalformed, err)
	}

	idx := &Index{path: path, offsets: make([]int64, 0, n)}
	off := int64(4)
	for i := uint32(0); i < n; i++ {
		idx.offsets = append(idx.offsets, off)

		var hdr [12]byte
		if _, err := io.ReadFull(br, hdr[:]); err != nil {
			return nil, fmt.Errorf("%w: entry %d: reading header: %v", ErrMalformed, i, err)
		}
		infoLen := binary.BigEndian.Uint32(hdr[8:12])
		if _, err := io.CopyN(io.Discard, br, int64(infoLen)); err != nil {
			return nil, fmt.Errorf("%w: entry %d: skipping %d-byte payload: %v", ErrMalformed, i, infoLen, err)
		}
		off += headerSize + int64(infoLen)
	}
	return idx, nil
}

// Len returns the number of indexed entries.
func (idx *Index) Len() int { return len(idx.offsets) }

// Entry reads entry i by seeking directly to its recorded offset.
func (idx *Index) Entry(i int) (Entry, error) {
	if i < 0 || i >= len(idx.offsets) {
		return Entry{}, fmt.Errorf("%w: entry index %d out of range [0,%d)", ErrMalformed, i, len(idx.offsets))
	}
	f, err := os.Open(idx.path)
	if err != nil {
		return Entry{}, err
	}
	defer f.Close()

	if _, err := f.Seek(idx.offsets[i], io.SeekStart); err != nil {
		return Entry{}, err
	}
	return readEntry(bufio.NewReader(f))
}

func bitmatrixPackedRowSize(n int) int { return (n + 7) / 8 }

func packBits(n int, get func(i int) bool) []byte {
	out := make([]byte, bitmatrixPackedRowSize(n))
	for i := 0; i < n; i++ {
		if get(i) {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

func unpackBit(b []byte, i int) bool {
	return b[i/8]&(1<<uint(i%8)) != 0
}

// EncodeFAR serialises a FAR proof into a DFA_NFA payload per §6: a
// direction byte, the DFA and NFA sizes, the DFA transition table, the two
// NFA transition matrices bit-packed little-endian per row, and the
// bit-packed accept vector.
func EncodeFAR(p *far.Proof) []byte {
	d := p.DFA.D
	n := p.N()
	rowBytes := bitmatrixPackedRowSize(n)

	buf := make([]byte, 0, 5+2*d+2*n*rowBytes+rowBytes)
	buf = append(buf, byte(p.Direction))

	var u16 [2]byte
	binary.BigEndian.PutUint16(u16[:], uint16(d))
	buf = append(buf, u16[:]...)
	binary.BigEndian.PutUint16(u16[:], uint16(n))
	buf = append(buf, u16[:]...)

	for i := 0; i < d; i++ {
		buf = append(buf, byte(p.DFA.Delta[i][0]), byte(p.DFA.Delta[i][1]))
	}

	for r := 0; r < 2; r++ {
		m := p.R[r]
		for i := 0; i < n; i++ {
			buf = append(buf, packBits(n, func(j int) bool { return m.Get(i, j) })...)
		}
	}

	buf = append(buf, packBits(n, func(i int) bool { return p.A.Get(i) })...)
	return buf
}

// DecodeFAR parses a DFA_NFA payload back into a Proof. It rejects an
// unknown decider-type tag and any payload whose declared length doesn't
// match the number of bytes the format requires to decode.
func DecodeFAR(e Entry) (*far.Proof, error) {
	if e.Type != DFANFA {
		return nil, fmt.Errorf("%w: unknown decider-type tag %s", ErrMalformed, e.Type)
	}
	payload := e.Payload
	if len(payload) < 5 {
		return nil, fmt.Errorf("%w: DFA_NFA payload too short: %d bytes", ErrMalformed, len(payload))
	}

	dir := far.Direction(payload[0])
	d := int(binary.BigEndian.Uint16(payload[1:3]))
	n := int(binary.BigEndian.Uint16(payload[3:5]))
	rowBytes := bitmatrixPackedRowSize(n)

	want := 5 + 2*d + 2*n*rowBytes + rowBytes
	if len(payload) != want {
		return nil, fmt.Errorf("%w: DFA_NFA payload declares %d bytes, decoding needs %d",
			ErrMalformed, len(payload), want)
	}

	off := 5
	delta := make([][2]int, d)
	for i := 0; i < d; i++ {
		delta[i] = [2]int{int(payload[off]), int(payload[off+1])}
		off += 2
	}

	R := [2]*bitmatrix.Matrix{bitmatrix.New(n), bitmatrix.New(n)}
	for r := 0; r < 2; r++ {
		for i := 0; i < n; i++ {
			row := payload[off : off+rowBytes]
			off += rowBytes
			for j := 0; j < n; j++ {
				if unpackBit(row, j) {
					R[r].Set(i, j, true)
				}
			}
		}
	}

	a := bitmatrix.NewVector(n)
	accBytes := payload[off : off+rowBytes]
	for i := 0; i < n; i++ {
		if unpackBit(accBytes, i) {
			a.Set(i, true)
		}
	}

	return &far.Proof{
		Direction: dir,
		DFA:       far.DFA{D: d, Delta: delta},
		R:         R,
		A:         a,
	}, nil
}
