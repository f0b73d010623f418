package loom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Match_groundPhraseAgainstItself(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	pattern := si.Tokenize("at room1")
	concrete := si.Tokenize("at room1")

	b, ok := Match(pattern, concrete, nil)
	assert.True(ok)
	assert.Empty(b)
}

func Test_Match_variableCapturesSingleAtom(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	pattern := si.Tokenize("at X")
	concrete := si.Tokenize("at room1")

	b, ok := Match(pattern, concrete, nil)
	assert.True(ok)

	xAtom, _ := si.LookupExisting("X")
	v, ok := b.Lookup(xAtom)
	assert.True(ok)
	assert.Equal("room1", si.TextOf(v[0].Text))
}

func Test_Match_variableCapturesNestedSpan(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	pattern := si.Tokenize("holding X")
	concrete := si.Tokenize("holding (cup red)")

	b, ok := Match(pattern, concrete, nil)
	assert.True(ok)

	xAtom, _ := si.LookupExisting("X")
	v, ok := b.Lookup(xAtom)
	assert.True(ok)
	assert.Equal(0, v.DepthBalance())
	assert.Len(v, 2)
}

func Test_Match_repeatedVariableMustMatchConsistently(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	pattern := si.Tokenize("pair X X")

	match := si.Tokenize("pair a a")
	b, ok := Match(pattern, match, nil)
	assert.True(ok)
	assert.Len(b, 1)

	mismatch := si.Tokenize("pair a b")
	_, ok = Match(pattern, mismatch, nil)
	assert.False(ok)
}

func Test_Match_failsOnDifferentHead(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	pattern := si.Tokenize("at X")
	concrete := si.Tokenize("in X")

	_, ok := Match(pattern, concrete, nil)
	assert.False(ok)
}

func Test_Match_respectsExistingBindings(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	roomAtom := si.Intern("room1")
	prior := Bindings{{Name: si.Intern("X"), Value: Phrase{{Text: roomAtom}}}}

	pattern := si.Tokenize("at X")

	consistent := si.Tokenize("at room1")
	_, ok := Match(pattern, consistent, prior)
	assert.True(ok)

	inconsistent := si.Tokenize("at room2")
	_, ok = Match(pattern, inconsistent, prior)
	assert.False(ok)
}

func Test_CheapPreMatch_ignoresVariableConsistency(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	pattern := si.Tokenize("pair X X")
	concrete := si.Tokenize("pair a b")

	assert.True(CheapPreMatch(pattern, concrete))
}
