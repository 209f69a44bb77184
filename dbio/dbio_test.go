package dbio

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/bbchallenge/bbchallenge-deciders/tm"
)

func writeDB(t *testing.T, hasHeader bool, texts ...string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "db.bin")

	var raw []byte
	if hasHeader {
		raw = append(raw, make([]byte, tm.WireSize)...)
	}
	for _, text := range texts {
		m, err := tm.ParseText(text)
		if err != nil {
			t.Fatalf("ParseText: %v", err)
		}
		raw = append(raw, m.Bytes()...)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDBReadsMachinesByIndex(t *testing.T) {
	texts := []string{
		"0RB0LC_1LA1RB_1LB0LD_0RA1RE_0LE---",
		"1RB1LC_1RC1RB_1RD0LE_1LA1LD_---0LA",
	}

	for _, hasHeader := range []bool{false, true} {
		path := writeDB(t, hasHeader, texts...)
		db, err := Open(path, hasHeader)
		if err != nil {
			t.Fatalf("Open(header=%v): %v", hasHeader, err)
		}
		if db.Count() != int64(len(texts)) {
			t.Errorf("Count(): got %d, want %d", db.Count(), len(texts))
		}
		for i, want := range texts {
			m, err := db.Machine(int64(i))
			if err != nil {
				t.Fatalf("Machine(%d): %v", i, err)
			}
			if got := m.Text(); got != want {
				t.Errorf("Machine(%d): got %q, want %q", i, got, want)
			}
		}
		db.Close()
	}
}

func TestOpenRejectsMalformedSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.bin")
	if err := os.WriteFile(path, make([]byte, tm.WireSize+1), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Open(path, false); err == nil {
		t.Error("expected error for malformed DB size")
	}
}

func TestReadIndex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.bin")

	want := []int64{4, 9, 5, 207}
	var raw []byte
	for _, v := range want {
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(v))
		raw = append(raw, buf...)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := ReadIndex(path)
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("len: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index[%d]: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestReadIndexRejectsMalformedLength(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad-index.bin")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := ReadIndex(path); err == nil {
		t.Error("expected error for malformed index length")
	}
}
