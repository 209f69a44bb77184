// Command ngram-cps runs the NGramCPS decider over a machine DB, with a
// choice of the plain, length-history, or LRU alphabet.
package main

import (
	"os"

	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/levels"

	"github.com/bbchallenge/bbchallenge-deciders/dbio"
	"github.com/bbchallenge/bbchallenge-deciders/internal/harness"
	"github.com/bbchallenge/bbchallenge-deciders/ngramcps"
)

type options struct {
	db         string
	index      string
	hasHeader  bool
	cores      int
	entry      int
	radius     int
	gas        int
	alphabet   string
	historyLen int
	verbose    bool
}

func parseFlags() *options {
	opts := &options{}
	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription("Decide non-halting via closed-position-set abstract interpretation over local tape contexts.")

	flagSet.CreateGroup("input", "Input",
		flagSet.StringVar(&opts.db, "db", "", "machine DB file (required)"),
		flagSet.StringVar(&opts.index, "index", "", "optional big-endian u32 index file restricting which machines to decide"),
		flagSet.BoolVar(&opts.hasHeader, "has-header", false, "set if the DB file carries the optional 30-byte global header"),
	)
	flagSet.CreateGroup("run", "Run",
		flagSet.IntVar(&opts.cores, "cores", 1, "worker count for the dispatch harness"),
		flagSet.IntVar(&opts.entry, "entry", -1, "decide only this one machine index, ignoring --index"),
		flagSet.IntVar(&opts.radius, "radius", 2, "left/right n-gram length"),
		flagSet.IntVar(&opts.gas, "gas", 20000, "saturation-loop expansion budget"),
		flagSet.StringVar(&opts.alphabet, "alphabet", "plain", "alphabet variant: plain, history, or lru"),
		flagSet.IntVar(&opts.historyLen, "history-len", 2, "history length, only used when --alphabet=history"),
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
	switch opts.alphabet {
	case "plain", "history", "lru":
	default:
		gologger.Fatal().Msgf("unknown --alphabet %q: want plain, history, or lru", opts.alphabet)
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

	type outcome struct {
		result ngramcps.Result
		ioErr  bool
	}
	results := harness.RunTagged(indices, opts.cores, func(idx int64) outcome {
		m, err := db.Machine(idx)
		if err != nil {
			gologger.Error().Msgf("machine %d: %s", idx, err)
			return outcome{ioErr: true}
		}
		switch opts.alphabet {
		case "history":
			return outcome{result: ngramcps.Decide(m, ngramcps.LengthHistory(opts.historyLen), opts.radius, opts.radius, opts.gas)}
		case "lru":
			return outcome{result: ngramcps.Decide(m, ngramcps.LRU(), opts.radius, opts.radius, opts.gas)}
		default:
			return outcome{result: ngramcps.DecidePlain(m, opts.radius, opts.radius, opts.gas)}
		}
	})

	var proven, ioErrors int
	for _, r := range results {
		if r.Result.ioErr {
			ioErrors++
			continue
		}
		if r.Result.result == ngramcps.Proven {
			proven++
		}
		if opts.verbose {
			gologger.Info().Msgf("machine %d: %s", r.Index, r.Result.result)
		}
	}
	gologger.Info().Msgf("decided %d machines, %d proven non-halting, %d IO errors", len(indices), proven, ioErrors)
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
