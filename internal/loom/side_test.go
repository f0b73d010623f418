package loom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_evalSide_nilCallbackDeclines(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	pattern := si.Tokenize("roll X")

	_, ok := evalSide(nil, pattern, nil)
	assert.False(ok)
}

func Test_evalSide_declinedReplyFails(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	pattern := si.Tokenize("roll X")

	cb := func(p Phrase) (Phrase, bool) { return nil, false }

	_, ok := evalSide(cb, pattern, nil)
	assert.False(ok)
}

func Test_evalSide_replyBindsVariable(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	pattern := si.Tokenize("roll X")
	reply := si.Tokenize("roll 4")

	cb := func(p Phrase) (Phrase, bool) { return reply, true }

	b, ok := evalSide(cb, pattern, nil)
	assert.True(ok)

	xAtom := si.Intern("X")
	v, ok := b.Lookup(xAtom)
	assert.True(ok)
	assert.Equal("4", si.TextOf(v[0].Text))
}

func Test_evalSide_replyMustUnifyWithPattern(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	pattern := si.Tokenize("roll 4")
	reply := si.Tokenize("roll 5")

	cb := func(p Phrase) (Phrase, bool) { return reply, true }

	_, ok := evalSide(cb, pattern, nil)
	assert.False(ok)
}

func Test_fireSideOutput_invokesCallback(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	ground := si.Tokenize("announce done")

	var seen Phrase
	cb := func(p Phrase) (Phrase, bool) {
		seen = p
		return nil, false
	}

	fireSideOutput(cb, ground)
	assert.True(ground.Equal(seen))
}

func Test_fireSideOutput_nilCallbackIsNoop(t *testing.T) {
	si := NewStringInterner()
	ground := si.Tokenize("announce done")

	assert.NotPanics(t, func() {
		fireSideOutput(nil, ground)
	})
}
