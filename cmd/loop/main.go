// Command loop runs the Loop decider over a machine DB.
package main

import (
	"os"

	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/levels"

	"github.com/bbchallenge/bbchallenge-deciders/dbio"
	"github.com/bbchallenge/bbchallenge-deciders/internal/harness"
	"github.com/bbchallenge/bbchallenge-deciders/loop"
)

type options struct {
	db        string
	index     string
	hasHeader bool
	cores     int
	entry     int
	gas       int
	verbose   bool
}

func parseFlags() *options {
	opts := &options{}
	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription("Decide non-halting via tape-configuration repetition (fingerprint-triple search).")

	flagSet.CreateGroup("input", "Input",
		flagSet.StringVar(&opts.db, "db", "", "machine DB file (required)"),
		flagSet.StringVar(&opts.index, "index", "", "optional big-endian u32 index file restricting which machines to decide"),
		flagSet.BoolVar(&opts.hasHeader, "has-header", false, "set if the DB file carries the optional 30-byte global header"),
	)
	flagSet.CreateGroup("run", "Run",
		flagSet.IntVar(&opts.cores, "cores", 1, "worker count for the dispatch harness"),
		flagSet.IntVar(&opts.entry, "entry", -1, "decide only this one machine index, ignoring --index"),
		flagSet.IntVar(&opts.gas, "gas", 100000, "simulated-step budget before returning Unknown"),
		flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log every machine's verdict, not just the summary"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("could not read flags: %s", err)
	}
	if opts.verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if opts.db == "" {
		gologger.Fatal().Msg("--db is required")
	}
	return opts
}

func main() {
	opts := parseFlags()

	db, err := dbio.Open(opts.db, opts.hasHeader)
	if err != nil {
		gologger.Fatal().Msgf("opening DB: %s", err)
	}
	defer db.Close()

	indices, err := resolveIndices(opts, db)
	if err != nil {
		gologger.Fatal().Msgf("resolving indices: %s", err)
	}

	ioErrors := 0
	results := harness.Run(indices, opts.cores, func(idx int64) *loop.Outcome {
		m, err := db.Machine(idx)
		if err != nil {
			gologger.Error().Msgf("machine %d: %s", idx, err)
			return nil
		}
		o := loop.Decide(m, opts.gas)
		return &o
	})

	var nonHalting, halting, unknown int
	for i, idx := range indices {
		r := results[i]
		if r == nil {
			ioErrors++
			continue
		}
		switch r.Result {
		case loop.NonHalting:
			nonHalting++
		case loop.Halting:
			halting++
		default:
			unknown++
		}
		if opts.verbose {
			gologger.Info().Msgf("machine %d: %s after %d steps", idx, r.Result, r.Steps)
		}
	}
	gologger.Info().Msgf("decided %d machines: %d non-halting, %d halting, %d unknown, %d IO errors",
		len(indices), nonHalting, halting, unknown, ioErrors)
	if ioErrors > 0 {
		os.Exit(1)
	}
}

func resolveIndices(opts *options, db *dbio.DB) ([]int64, error) {
	if opts.entry >= 0 {
		return []int64{int64(opts.entry)}, nil
	}
	if opts.index != "" {
		return dbio.ReadIndex(opts.index)
	}
	n := db.Count()
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i)
	}
	return out, nil
}
