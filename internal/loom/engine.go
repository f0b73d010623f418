package loom

import "github.com/holsten/loom/internal/util"

// file engine.go implements the rule-match engine: enumerating permutations
// of state facts that jointly satisfy a rule's positive, backward, side,
// and negative premises under a shared binding.

// ConcreteRule is the result of a successful try_fire: the ground facts to
// remove from state and the ground facts to append, with side-tagged
// outputs already fired and excluded.
type ConcreteRule struct {
	Rule     Rule
	Consumed []Phrase
	Produced []Phrase
}

// tryFire attempts to find a single satisfying permutation of state facts
// for rule's positive premises, consistent with its backward, side, and
// negated premises. state is assumed to already be in the driver's chosen
// (shuffled) order; candidate indices are built in that order, so which
// permutation is tried first is exactly the driver's fairness mechanism,
// not this function's.
func tryFire(rule Rule, state []Phrase, si *StringInterner, cb SideCallback) (ConcreteRule, bool) {
	parts := partitionInputs(rule.Inputs)

	candidates := make([][]int, len(parts.positive))
	for i, pattern := range parts.positive {
		for idx, fact := range state {
			if CheapPreMatch(pattern, fact) {
				candidates[i] = append(candidates[i], idx)
			}
		}
		if len(candidates[i]) == 0 {
			return ConcreteRule{}, false
		}
	}

	total := 1
	for _, c := range candidates {
		total *= len(c)
	}

	for p := 0; p < total; p++ {
		chosen, bindings, ok := tryPermutation(p, candidates, parts.positive, state)
		if !ok {
			continue
		}

		bindings, ok = evalBackwardChain(si, parts.backward, bindings)
		if !ok {
			continue
		}

		bindings, ok = evalSideChain(cb, parts.side, bindings)
		if !ok {
			continue
		}

		if negationBlocks(parts.negated, state, chosen, bindings) {
			continue
		}

		concrete, ok := buildConcreteRule(rule, parts, state, chosen, bindings, cb)
		if !ok {
			continue
		}
		return concrete, true
	}

	return ConcreteRule{}, false
}

// tryPermutation derives the per-input state index for permutation p via
// mixed-radix decomposition, rejects permutations that reuse a state index
// across two positive inputs (linear consumption), and runs the full phrase
// matcher over the chosen facts, accumulating bindings.
func tryPermutation(p int, candidates [][]int, patterns []Phrase, state []Phrase) (map[int]bool, Bindings, bool) {
	used := util.NewKeySet[int]()
	chosen := make(map[int]bool)
	var bindings Bindings

	radix := p
	for i := len(candidates) - 1; i >= 0; i-- {
		n := len(candidates[i])
		idx := radix % n
		radix /= n

		stateIdx := candidates[i][idx]
		if used.Has(stateIdx) {
			return nil, nil, false
		}
		used.Add(stateIdx)
		chosen[stateIdx] = true

		var ok bool
		bindings, ok = Match(patterns[i], state[stateIdx], bindings)
		if !ok {
			return nil, nil, false
		}
	}

	return chosen, bindings, true
}

func evalBackwardChain(si *StringInterner, patterns []Phrase, bindings Bindings) (Bindings, bool) {
	for _, pattern := range patterns {
		ground := SubstitutePartial(pattern, bindings)

		var okEval bool
		bindings, okEval = si.EvalBackward(ground, bindings)
		if !okEval {
			return nil, false
		}
	}
	return bindings, true
}

func evalSideChain(cb SideCallback, patterns []Phrase, bindings Bindings) (Bindings, bool) {
	for _, pattern := range patterns {
		ground := SubstitutePartial(pattern, bindings)

		var okEval bool
		bindings, okEval = evalSide(cb, ground, bindings)
		if !okEval {
			return nil, false
		}
	}
	return bindings, true
}

// negationBlocks reports whether any negated premise has a matching fact
// among the state facts not consumed by this permutation's positive
// inputs.
func negationBlocks(negated []Phrase, state []Phrase, chosen map[int]bool, bindings Bindings) bool {
	if len(negated) == 0 {
		return false
	}

	for _, pattern := range negated {
		bare := stripHeadNegation(pattern)
		for idx, fact := range state {
			if chosen[idx] {
				continue
			}
			if _, ok := Match(bare, fact, bindings); ok {
				return true
			}
		}
	}
	return false
}

// buildConcreteRule substitutes bindings into the rule's consumed inputs
// and non-side outputs, fires the side callback for side-tagged outputs
// (discarding the reply), and assembles the result.
func buildConcreteRule(rule Rule, parts partitionedInputs, state []Phrase, chosen map[int]bool, bindings Bindings, cb SideCallback) (ConcreteRule, bool) {
	consumed := make([]Phrase, 0, len(parts.positive))
	for _, pattern := range parts.positive {
		ground, ok := Substitute(pattern, bindings)
		if !ok {
			return ConcreteRule{}, false
		}
		consumed = append(consumed, ground)
	}

	var produced []Phrase
	for _, out := range rule.Outputs {
		ground, ok := Substitute(out, bindings)
		if !ok {
			return ConcreteRule{}, false
		}

		if ground.Head().IsSide {
			fireSideOutput(cb, ground)
			continue
		}
		produced = append(produced, ground)
	}

	return ConcreteRule{Rule: rule, Consumed: consumed, Produced: produced}, true
}
