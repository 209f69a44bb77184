// Command far runs the FAR decider: DFA enumeration plus the direct-method
// NFA solver, proof verification, and DVF read/write. It is the one decider
// binary with a DVF-shaped mode (--check-dvf) because FAR is the only
// decider family with a certificate format.
package main

import (
	"fmt"
	"os"

	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/levels"

	"github.com/bbchallenge/bbchallenge-deciders/dbio"
	"github.com/bbchallenge/bbchallenge-deciders/far"
	"github.com/bbchallenge/bbchallenge-deciders/far/dvf"
	"github.com/bbchallenge/bbchallenge-deciders/internal/harness"
)

type options struct {
	db             string
	index          string
	hasHeader      bool
	dvfPath        string
	writeDVF       string
	checkDVF       bool
	limitDFAStates int
	cores          int
	entry          int
	graphviz       bool
	verbose        bool
}

func parseFlags() *options {
	opts := &options{}
	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription("Solve and verify FAR (finite-automata-reduction) non-halting certificates.")

	flagSet.CreateGroup("input", "Input",
		flagSet.StringVar(&opts.db, "db", "", "machine DB file (required for solve mode)"),
		flagSet.StringVar(&opts.index, "index", "", "optional big-endian u32 index file restricting which machines to solve"),
		flagSet.BoolVar(&opts.hasHeader, "has-header", false, "set if the DB file carries the optional 30-byte global header"),
		flagSet.StringVar(&opts.dvfPath, "dvf", "", "DVF file to verify in --check-dvf mode (solve mode writes to the --write-dvf path instead)"),
	)
	flagSet.CreateGroup("run", "Run",
		flagSet.BoolVar(&opts.checkDVF, "check-dvf", false, "re-run the solver on every DVF entry and compare against the stored proof"),
		flagSet.StringVar(&opts.writeDVF, "write-dvf", "", "path to write solved proofs to as a DVF file"),
		flagSet.IntVar(&opts.limitDFAStates, "limit-dfa-states", 4, "DFA-size enumeration ceiling"),
		flagSet.IntVar(&opts.cores, "cores", 1, "worker count for the dispatch harness"),
		flagSet.IntVar(&opts.entry, "entry", -1, "process only this one DVF entry or machine index"),
		flagSet.BoolVar(&opts.graphviz, "graphviz", false, "with --entry, print the proof's DFA/NFA as Graphviz DOT"),
		flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log every machine's verdict, not just the summary"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("could not read flags: %s", err)
	}
	if opts.verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if opts.graphviz && opts.entry < 0 {
		gologger.Fatal().Msg("--graphviz only makes sense together with --entry")
	}
	return opts
}

func main() {
	opts := parseFlags()

	switch {
	case opts.checkDVF:
		runCheckDVF(opts)
	case opts.db != "":
		runSolve(opts)
	default:
		gologger.Fatal().Msg("either --db (solve mode) or --check-dvf --dvf (verify mode) is required")
	}
}

func runSolve(opts *options) {
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
		proof *far.Proof
		ok    bool
		ioErr bool
	}
	results := harness.RunTagged(indices, opts.cores, func(idx int64) outcome {
		m, err := db.Machine(idx)
		if err != nil {
			gologger.Error().Msgf("machine %d: %s", idx, err)
			return outcome{ioErr: true}
		}
		proof, ok := far.Search(m, opts.limitDFAStates)
		return outcome{proof: proof, ok: ok}
	})

	var proven, ioErrors int
	var dvfEntries []dvf.Entry
	for _, r := range results {
		if r.Result.ioErr {
			ioErrors++
			continue
		}
		if r.Result.ok {
			proven++
			dvfEntries = append(dvfEntries, dvf.Entry{
				MachineID: uint32(r.Index),
				Type:      dvf.DFANFA,
				Payload:   dvf.EncodeFAR(r.Result.proof),
			})
			if opts.graphviz && opts.entry >= 0 {
				fmt.Println(r.Result.proof.DOT())
			}
		}
		if opts.verbose {
			gologger.Info().Msgf("machine %d: proven=%v", r.Index, r.Result.ok)
		}
	}
	gologger.Info().Msgf("decided %d machines, %d proven non-halting, %d IO errors", len(indices), proven, ioErrors)

	if opts.writeDVF != "" {
		f, err := os.Create(opts.writeDVF)
		if err != nil {
			gologger.Fatal().Msgf("creating DVF file: %s", err)
		}
		defer f.Close()
		if err := dvf.WriteAll(f, dvfEntries); err != nil {
			gologger.Fatal().Msgf("writing DVF file: %s", err)
		}
	}
	if ioErrors > 0 {
		os.Exit(1)
	}
}

func runCheckDVF(opts *options) {
	if opts.dvfPath == "" {
		gologger.Fatal().Msg("--check-dvf requires --dvf")
	}
	if opts.db == "" {
		gologger.Fatal().Msg("--check-dvf requires --db to re-run the solver")
	}

	db, err := dbio.Open(opts.db, opts.hasHeader)
	if err != nil {
		gologger.Fatal().Msgf("opening DB: %s", err)
	}
	defer db.Close()

	idx, err := dvf.BuildIndex(opts.dvfPath)
	if err != nil {
		gologger.Fatal().Msgf("indexing DVF file: %s", err)
	}

	entryIdxs := make([]int, idx.Len())
	for i := range entryIdxs {
		entryIdxs[i] = i
	}
	if opts.entry >= 0 {
		if opts.entry >= idx.Len() {
			gologger.Fatal().Msgf("--entry %d out of range [0,%d)", opts.entry, idx.Len())
		}
		entryIdxs = []int{opts.entry}
	}

	failures := 0
	for _, i := range entryIdxs {
		e, err := idx.Entry(i)
		if err != nil {
			gologger.Error().Msgf("entry %d: %s", i, err)
			failures++
			continue
		}
		stored, err := dvf.DecodeFAR(e)
		if err != nil {
			gologger.Error().Msgf("entry %d (machine %d): decoding stored proof: %s", i, e.MachineID, err)
			failures++
			continue
		}

		m, err := db.Machine(int64(e.MachineID))
		if err != nil {
			gologger.Error().Msgf("entry %d: reading machine %d: %s", i, e.MachineID, err)
			failures++
			continue
		}

		recomputed, ok := far.Solve(m, stored.DFA, stored.Direction)
		if !ok {
			gologger.Error().Msgf("entry %d (machine %d): re-solve did not prove non-halting", i, e.MachineID)
			failures++
			continue
		}
		if !proofsEqual(stored, recomputed) {
			gologger.Error().Msgf("entry %d (machine %d): re-solved proof does not match stored proof", i, e.MachineID)
			failures++
			continue
		}
		if pass, verr := far.Verify(m, stored); !pass {
			gologger.Error().Msgf("entry %d (machine %d): stored proof failed verification: %s", i, e.MachineID, verr)
			failures++
			continue
		}
		if opts.verbose {
			gologger.Info().Msgf("entry %d (machine %d): PASS", i, e.MachineID)
		}
	}

	gologger.Info().Msgf("checked %d DVF entries, %d failures", len(entryIdxs), failures)
	if failures > 0 {
		os.Exit(1)
	}
}

func proofsEqual(a, b *far.Proof) bool {
	if a.Direction != b.Direction || a.DFA.D != b.DFA.D {
		return false
	}
	for i := 0; i < a.DFA.D; i++ {
		if a.DFA.Delta[i] != b.DFA.Delta[i] {
			return false
		}
	}
	for r := 0; r < 2; r++ {
		if !a.R[r].Equal(b.R[r]) {
			return false
		}
	}
	return a.A.Equal(b.A)
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
