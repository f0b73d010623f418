package loom

// file match.go implements the depth-aware phrase matcher described in spec
// section 4.4: deciding whether a pattern phrase unifies with a concrete
// phrase, producing variable bindings, with variables able to span nested
// sub-phrases.

// contentEqual compares two tokens for the purposes of the non-variable
// branch of match: same lexeme and same prefix classification, ignoring the
// structural open/close depth fields (those are checked separately via the
// running dp/dc accumulators).
func contentEqual(t, u Token) bool {
	return t.Text == u.Text &&
		t.IsNegated == u.IsNegated &&
		t.IsSide == u.IsSide &&
		t.IsStage == u.IsStage &&
		t.BackwardsPred == u.BackwardsPred
}

// Match decides whether pattern unifies with concrete given a set of
// previously-established bindings. On success it returns the full binding
// set (prior bindings plus any newly captured ones); on failure it returns
// (nil, false).
func Match(pattern, concrete Phrase, prior Bindings) (Bindings, bool) {
	return matchWalk(pattern, concrete, prior, false)
}

// CheapPreMatch is the wildcard variant used to index candidate state
// facts: variables are treated as wildcards (no binding consistency is
// enforced), and only concrete-token equality outside variable spans is
// checked.
func CheapPreMatch(pattern, concrete Phrase) bool {
	_, ok := matchWalk(pattern, concrete, nil, true)
	return ok
}

func matchWalk(pattern, concrete Phrase, prior Bindings, cheap bool) (Bindings, bool) {
	bindings := prior.Clone()

	dp, dc := 0, 0
	i, j := 0, 0

	for i < len(pattern) {
		t := pattern[i]
		dp += t.OpenDepth

		if j >= len(concrete) {
			return nil, false
		}
		u := concrete[j]
		dc += u.OpenDepth
		j++

		if !t.IsVar {
			if dp != dc || !contentEqual(t, u) {
				return nil, false
			}
			dp -= t.CloseDepth
			dc -= u.CloseDepth
			i++
			continue
		}

		// Variable: begin a capture with u, pulling further concrete tokens
		// until depth rebalances to dp.
		capStart := j - 1
		for dp < dc {
			if j >= len(concrete) {
				return nil, false
			}
			u2 := concrete[j]
			dc += u2.OpenDepth
			dc -= u2.CloseDepth
			j++
		}
		capEnd := j // exclusive

		captured := normalizeCapture(concrete[capStart:capEnd], t)

		if !cheap {
			if existing, ok := bindings.Lookup(t.Text); ok {
				if !existing.Equal(captured) {
					return nil, false
				}
			} else {
				bindings = bindings.With(t.Text, captured)
			}
		}

		dp -= t.CloseDepth
		dc -= u.CloseDepth
		i++
	}

	if j != len(concrete) {
		return nil, false
	}

	return bindings, true
}

// normalizeCapture produces the self-contained Phrase value to bind a
// variable to: a length-1 capture has both depths zeroed (it stands alone
// as a plain atom); a longer capture has the
// pattern variable's own open/close depth subtracted from its first/last
// tokens so the captured sub-phrase balances to zero on its own.
func normalizeCapture(captured Phrase, patternVar Token) Phrase {
	out := captured.Clone()

	if len(out) == 1 {
		out[0].OpenDepth = 0
		out[0].CloseDepth = 0
		return out
	}

	out[0].OpenDepth -= patternVar.OpenDepth
	out[len(out)-1].CloseDepth -= patternVar.CloseDepth
	return out
}
