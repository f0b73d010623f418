package loom

import (
	"math"
	"strconv"
)

// file builtins.go implements the fixed built-in predicate evaluator: +, <,
// >, <=, >=, %%, each a partial function over a phrase's argument tokens
// and the current bindings.

const numericEpsilon = 1e-4

// EvalBackward attempts to complete phrase (whose head token's
// BackwardsPred names one of the fixed built-in relations) to a fully
// ground phrase, synthesizing at most one unknown numeric argument. On
// success it returns bindings extended with any newly synthesized variable
// values; on failure (wrong arity, non-numeric argument, more than one
// unknown, or a relation that simply doesn't hold) it returns (nil, false) —
// this is never surfaced to the host, it is an ordinary match failure.
func (si *StringInterner) EvalBackward(phrase Phrase, bindings Bindings) (Bindings, bool) {
	if len(phrase) == 0 {
		return nil, false
	}
	kind := phrase[0].BackwardsPred
	args := phrase[1:]

	switch kind {
	case BackwardsPlus:
		return si.evalPlus(args, bindings)
	case BackwardsLt:
		return si.evalCompare(args, bindings, func(a, b float32) bool { return a < b })
	case BackwardsGt:
		return si.evalCompare(args, bindings, func(a, b float32) bool { return a > b })
	case BackwardsLte:
		return si.evalCompare(args, bindings, func(a, b float32) bool { return a <= b })
	case BackwardsGte:
		return si.evalCompare(args, bindings, func(a, b float32) bool { return a >= b })
	case BackwardsModNeg:
		return si.evalModNeg(args, bindings)
	default:
		return nil, false
	}
}

// numArg is the resolved state of one backward-predicate argument token.
type numArg struct {
	value Token
	num   float32
	known bool
}

func (si *StringInterner) resolveNumArg(t Token, bindings Bindings) (numArg, bool) {
	if !t.IsVar {
		n, ok := parseFloat32(si.TextOf(t.Text))
		if !ok {
			return numArg{}, false
		}
		return numArg{value: t, num: n, known: true}, true
	}

	val, ok := bindings.Lookup(t.Text)
	if !ok {
		return numArg{value: t, known: false}, true
	}
	if len(val) != 1 {
		return numArg{}, false
	}
	n, ok := parseFloat32(si.TextOf(val[0].Text))
	if !ok {
		return numArg{}, false
	}
	return numArg{value: t, num: n, known: true}, true
}

func parseFloat32(s string) (float32, bool) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, false
	}
	return float32(f), true
}

// formatNumber renders a synthesized numeric result as its minimal decimal
// string form.
func formatNumber(v float32) string {
	if v == float32(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}

func (si *StringInterner) bindSynthesized(t Token, v float32, bindings Bindings) Bindings {
	atom := si.Intern(formatNumber(v))
	return bindings.With(t.Text, Phrase{{Text: atom}})
}

func (si *StringInterner) evalPlus(args []Token, bindings Bindings) (Bindings, bool) {
	if len(args) != 3 {
		return nil, false
	}

	a, ok := si.resolveNumArg(args[0], bindings)
	if !ok {
		return nil, false
	}
	b, ok := si.resolveNumArg(args[1], bindings)
	if !ok {
		return nil, false
	}
	c, ok := si.resolveNumArg(args[2], bindings)
	if !ok {
		return nil, false
	}

	unknownCount := 0
	if !a.known {
		unknownCount++
	}
	if !b.known {
		unknownCount++
	}
	if !c.known {
		unknownCount++
	}
	if unknownCount > 1 {
		return nil, false
	}

	switch {
	case unknownCount == 0:
		if math.Abs(float64(a.num+b.num-c.num)) > numericEpsilon {
			return nil, false
		}
		return bindings, true
	case !c.known:
		return si.bindSynthesized(args[2], a.num+b.num, bindings), true
	case !b.known:
		return si.bindSynthesized(args[1], c.num-a.num, bindings), true
	default: // !a.known
		return si.bindSynthesized(args[0], c.num-b.num, bindings), true
	}
}

func (si *StringInterner) evalCompare(args []Token, bindings Bindings, rel func(a, b float32) bool) (Bindings, bool) {
	if len(args) != 2 {
		return nil, false
	}

	a, ok := si.resolveNumArg(args[0], bindings)
	if !ok || !a.known {
		return nil, false
	}
	b, ok := si.resolveNumArg(args[1], bindings)
	if !ok || !b.known {
		return nil, false
	}

	if !rel(a.num, b.num) {
		return nil, false
	}
	return bindings, true
}

func (si *StringInterner) evalModNeg(args []Token, bindings Bindings) (Bindings, bool) {
	if len(args) != 3 {
		return nil, false
	}

	a, ok := si.resolveNumArg(args[0], bindings)
	if !ok {
		return nil, false
	}
	b, ok := si.resolveNumArg(args[1], bindings)
	if !ok {
		return nil, false
	}
	c, ok := si.resolveNumArg(args[2], bindings)
	if !ok {
		return nil, false
	}

	// only defined when C is unknown and A, B are known.
	if !a.known || !b.known || c.known {
		return nil, false
	}
	if b.num == 0 {
		return nil, false
	}

	result := a.num - b.num*float32(math.Floor(float64(a.num/b.num)))
	return si.bindSynthesized(args[2], result, bindings), true
}
