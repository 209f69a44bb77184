package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bbchallenge/bbchallenge-deciders/far"
	"github.com/bbchallenge/bbchallenge-deciders/tm"
)

func TestProofsEqualDetectsMismatch(t *testing.T) {
	m, err := tm.ParseText("0RB0LC_1LA1RB_1LB0LD_0RA1RA_0LE---")
	require.NoError(t, err)

	proof, ok := far.Search(m, 3)
	require.True(t, ok, "expected a certificate for this machine")
	require.True(t, proofsEqual(proof, proof), "a proof must equal itself")

	other, ok := far.Solve(m, far.DFA{D: 1, Delta: [][2]int{{0, 0}}}, far.LeftToRight)
	if ok {
		require.False(t, proofsEqual(proof, other) && proof.DFA.D != other.DFA.D,
			"proofs over different DFAs should not compare equal unless their DFAs do")
	}
}

func TestResolveIndicesEntryOverridesIndexFile(t *testing.T) {
	opts := &options{entry: 7, index: "unused.idx"}
	got, err := resolveIndices(opts, nil)
	require.NoError(t, err)
	require.Equal(t, []int64{7}, got)
}
