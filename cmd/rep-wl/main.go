// Command rep-wl runs the RepWL decider over a machine DB: regex-tape
// macro-simulation with plus-branching.
package main

import (
	"os"

	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/levels"

	"github.com/bbchallenge/bbchallenge-deciders/dbio"
	"github.com/bbchallenge/bbchallenge-deciders/internal/harness"
	"github.com/bbchallenge/bbchallenge-deciders/repwl"
)

type options struct {
	db              string
	index           string
	hasHeader       bool
	cores           int
	entry           int
	blockSize       int
	plusThreshold   int
	blockStepBudget int
	maxVisited      int
	stats           bool
	verbose         bool
}

func parseFlags() *options {
	opts := &options{}
	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription("Decide non-halting via repeated-word-list regex-tape macro-simulation.")

	flagSet.CreateGroup("input", "Input",
		flagSet.StringVar(&opts.db, "db", "", "machine DB file (required)"),
		flagSet.StringVar(&opts.index, "index", "", "optional big-endian u32 index file restricting which machines to decide"),
		flagSet.BoolVar(&opts.hasHeader, "has-header", false, "set if the DB file carries the optional 30-byte global header"),
	)
	flagSet.CreateGroup("run", "Run",
		flagSet.IntVar(&opts.cores, "cores", 1, "worker count for the dispatch harness"),
		flagSet.IntVar(&opts.entry, "entry", -1, "decide only this one machine index, ignoring --index"),
		flagSet.IntVar(&opts.blockSize, "block-size", 2, "regex-tape block word length"),
		flagSet.IntVar(&opts.plusThreshold, "plus-threshold", 6, "repeat count at which a block becomes unbounded"),
		flagSet.IntVar(&opts.blockStepBudget, "block-steps", 1000, "concrete step budget per macro-step simulation"),
		flagSet.IntVar(&opts.maxVisited, "max-visited", 100000, "visited regex-tape cap before giving up"),
		flagSet.BoolVar(&opts.stats, "stats", false, "aggregate branching and visited-count stats across the batch"),
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

type outcome struct {
	out   repwl.Outcome
	ioErr bool
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

	results := harness.RunTagged(indices, opts.cores, func(idx int64) outcome {
		m, err := db.Machine(idx)
		if err != nil {
			gologger.Error().Msgf("machine %d: %s", idx, err)
			return outcome{ioErr: true}
		}
		return outcome{out: repwl.Decide(m, opts.blockSize, opts.plusThreshold, opts.blockStepBudget, opts.maxVisited)}
	})

	var proven, ioErrors, branched int
	var minVisited, maxVisited, sumVisited int
	for i, r := range results {
		if r.Result.ioErr {
			ioErrors++
			continue
		}
		o := r.Result.out
		if o.Result == repwl.Proven {
			proven++
		}
		if o.Branched {
			branched++
		}
		if i == 0 || o.VisitedCount < minVisited {
			minVisited = o.VisitedCount
		}
		if o.VisitedCount > maxVisited {
			maxVisited = o.VisitedCount
		}
		sumVisited += o.VisitedCount
		if opts.verbose {
			gologger.Info().Msgf("machine %d: %s (visited=%d branched=%v)", r.Index, o.Result, o.VisitedCount, o.Branched)
		}
	}
	gologger.Info().Msgf("decided %d machines, %d proven non-halting, %d IO errors", len(indices), proven, ioErrors)
	if opts.stats && len(indices)-ioErrors > 0 {
		n := len(indices) - ioErrors
		gologger.Info().Msgf("visited: min=%d max=%d avg=%.1f; branched=%d/%d (%.1f%%)",
			minVisited, maxVisited, float64(sumVisited)/float64(n), branched, n, 100*float64(branched)/float64(n))
	}
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
