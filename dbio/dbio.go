// Package dbio provides random-access readers for the bbchallenge machine
// database file and its companion big-endian index files.
package dbio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bbchallenge/bbchallenge-deciders/tm"
)

// ErrMalformedDB indicates the DB file is not a whole number of 30-byte
// records (after accounting for an optional header).
var ErrMalformedDB = errors.New("malformed machine DB file")

// ErrMalformedIndex indicates the index file length is not a multiple of 4.
var ErrMalformedIndex = errors.New("malformed index file")

// DB is a random-access reader over a fixed-record machine database file.
// Machine i starts at byte offset 30*(i+h), where h is 1 if the DB carries
// the optional 30-byte global header, else 0.
type DB struct {
	f         *os.File
	hasHeader bool
	size      int64
}

// Open opens a machine DB file. hasHeader reflects whether the file begins
// with an extra 30-byte global header record before machine 0.
func Open(path string, hasHeader bool) (*DB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	h := int64(0)
	if hasHeader {
		h = 1
	}
	if (info.Size()-h*tm.WireSize)%tm.WireSize != 0 {
		f.Close()
		return nil, fmt.Errorf("%w: size %d is not a whole number of %d-byte records",
			ErrMalformedDB, info.Size(), tm.WireSize)
	}

	return &DB{f: f, hasHeader: hasHeader, size: info.Size()}, nil
}

// Close closes the underlying file.
func (d *DB) Close() error { return d.f.Close() }

// Count returns the number of machine records in the file.
func (d *DB) Count() int64 {
	h := int64(0)
	if d.hasHeader {
		h = 1
	}
	return d.size/tm.WireSize - h
}

// Machine reads and parses the machine at index i.
func (d *DB) Machine(i int64) (*tm.Machine, error) {
	raw, err := d.MachineBytes(i)
	if err != nil {
		return nil, err
	}
	return tm.Parse(raw)
}

// MachineBytes reads the raw 30-byte record for machine i, performing a
// random (non-shared-cursor) seek so concurrent callers on separate DB
// handles never interfere.
func (d *DB) MachineBytes(i int64) ([]byte, error) {
	h := int64(0)
	if d.hasHeader {
		h = 1
	}
	off := tm.WireSize * (i + h)
	buf := make([]byte, tm.WireSize)
	if _, err := d.f.ReadAt(buf, off); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: machine index %d out of range", ErrMalformedDB, i)
		}
		return nil, err
	}
	return buf, nil
}

// ReadIndex reads a big-endian u32 index file in full, returning the
// machine indices it lists in order.
func ReadIndex(path string) ([]int64, error) {
	bin, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(bin)%4 != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of 4", ErrMalformedIndex, len(bin))
	}

	out := make([]int64, len(bin)/4)
	for i := range out {
		out[i] = int64(binary.BigEndian.Uint32(bin[4*i : 4*i+4]))
	}
	return out, nil
}
