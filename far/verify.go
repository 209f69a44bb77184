package far

import (
	"github.com/bbchallenge/bbchallenge-deciders/internal/bitmatrix"
	"github.com/bbchallenge/bbchallenge-deciders/tm"
)

// Verify checks a proof's 8 closure conditions against the machine it
// claims to decide, returning (true, nil) on PASS or (false,
// *ErrFailedCondition) naming the first condition that fails.
func Verify(m *tm.Machine, p *Proof) (bool, error) {
	d := p.DFA.D
	sink := p.Sink()

	if p.DFA.Delta[0][0] != 0 {
		return false, &ErrFailedCondition{1}
	}
	if !bitmatrix.MulVec(p.R[0], p.A).Equal(p.A) {
		return false, &ErrFailedCondition{2}
	}
	if !p.A.Get(sink) {
		return false, &ErrFailedCondition{3}
	}
	if !p.R[0].Get(sink, sink) || !p.R[1].Get(sink, sink) {
		return false, &ErrFailedCondition{4}
	}

	for f := tm.State(0); f < tm.NumStates; f++ {
		for r := uint8(0); r < tm.NumSymbols; r++ {
			tr := m.At(f, r)
			if tr.Undefined {
				for i := 0; i < d; i++ {
					if !p.R[r].Get(nfaIndex(i, f), sink) {
						return false, &ErrFailedCondition{5}
					}
				}
				continue
			}

			w, fPrime := tr.Write, tr.Next
			if effectiveMove(tr.Move, p.Direction) == tm.Left {
				for b := uint8(0); b < tm.NumSymbols; b++ {
					prod := bitmatrix.Mul(p.R[b], p.R[w])
					for i := 0; i < d; i++ {
						j := p.DFA.Delta[i][b]
						if !prod.RowSubsetOf(nfaIndex(i, fPrime), p.R[r], nfaIndex(j, f)) {
							return false, &ErrFailedCondition{6}
						}
					}
				}
				continue
			}

			for i := 0; i < d; i++ {
				j := p.DFA.Delta[i][w]
				if !p.R[r].Get(nfaIndex(i, f), nfaIndex(j, fPrime)) {
					return false, &ErrFailedCondition{7}
				}
			}
		}
	}

	if p.A.Get(0) {
		return false, &ErrFailedCondition{8}
	}
	return true, nil
}
