package config

import (
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrips(t *testing.T) {
	want := &Config{
		DB:             "/data/machines.db",
		Cores:          8,
		LimitDFAStates: 6,
		Gas:            100000,
		Radius:         2,
		BlockSize:      2,
		PlusThreshold:  6,
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := Save(want, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error loading a nonexistent config file")
	}
}
