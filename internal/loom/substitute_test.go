package loom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Substitute_groundPhraseUnchanged(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	pattern := si.Tokenize("at room1")

	out, ok := Substitute(pattern, nil)
	assert.True(ok)
	assert.True(pattern.Equal(out))
}

func Test_Substitute_singleVariable(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	pattern := si.Tokenize("at X")
	bindings, ok := Match(pattern, si.Tokenize("at room1"), nil)
	assert.True(ok)

	out, ok := Substitute(pattern, bindings)
	assert.True(ok)
	assert.True(out.Equal(si.Tokenize("at room1")))
}

func Test_Substitute_unboundVariableFails(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	pattern := si.Tokenize("at X")

	_, ok := Substitute(pattern, nil)
	assert.False(ok)
}

func Test_Substitute_nestedCaptureReanchorsAtVariablePosition(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	matchPattern := si.Tokenize("holding X")
	concrete := si.Tokenize("holding (cup red)")
	bindings, ok := Match(matchPattern, concrete, nil)
	assert.True(ok)

	out, ok := Substitute(matchPattern, bindings)
	assert.True(ok)
	assert.Len(out, 3)
	assert.Equal("holding", si.TextOf(out[0].Text))
	assert.Equal("cup", si.TextOf(out[1].Text))
	assert.Equal("red", si.TextOf(out[2].Text))

	// The capture spans more than one token, so its own open paren survives
	// re-anchoring rather than being overwritten by X's (zero) open_depth;
	// the last token's close_depth is the capture's own plus X's.
	assert.Equal(1, out[1].OpenDepth)
	assert.Equal(2, out[2].CloseDepth)
}

func Test_SubstitutePartial_leavesUnboundVariablesInPlace(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	pattern := si.Tokenize("+ A 1 B")
	bindings, ok := Match(si.Tokenize("A"), si.Tokenize("2"), nil)
	assert.True(ok)

	out := SubstitutePartial(pattern, bindings)
	assert.Len(out, 3)
	assert.Equal("2", si.TextOf(out[0].Text))
	assert.Equal("1", si.TextOf(out[1].Text))
	assert.True(out[2].IsVar)
	assert.Equal("B", si.TextOf(out[2].Text))
}

func Test_Substitute_samePatternReappliedToItsOwnCaptureRoundTrips(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	pattern := si.Tokenize("a X")
	concrete := si.Tokenize("a (b)")
	bindings, ok := Match(pattern, concrete, nil)
	assert.True(ok)

	out, ok := Substitute(pattern, bindings)
	assert.True(ok)
	assert.Len(out, 2)
	assert.Equal("a", si.TextOf(out[0].Text))
	assert.Equal("b", si.TextOf(out[1].Text))
}
