package loom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_tryFire_consumesMatchAndProducesOutput(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	rule := Rule{
		Inputs:  []Phrase{si.Tokenize("holding X")},
		Outputs: []Phrase{si.Tokenize("dropped X")},
	}
	state := []Phrase{si.Tokenize("holding cup")}

	concrete, ok := tryFire(rule, state, si, nil)
	assert.True(ok)
	assert.Len(concrete.Consumed, 1)
	assert.True(concrete.Consumed[0].Equal(si.Tokenize("holding cup")))
	assert.Len(concrete.Produced, 1)
	assert.True(concrete.Produced[0].Equal(si.Tokenize("dropped cup")))
}

func Test_tryFire_failsWhenNoCandidateFact(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	rule := Rule{Inputs: []Phrase{si.Tokenize("holding X")}}
	state := []Phrase{si.Tokenize("at room1")}

	_, ok := tryFire(rule, state, si, nil)
	assert.False(ok)
}

func Test_tryFire_linearConsumptionRejectsSharedFact(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	rule := Rule{Inputs: []Phrase{
		si.Tokenize("holding X"),
		si.Tokenize("holding Y"),
	}}
	state := []Phrase{si.Tokenize("holding cup")}

	_, ok := tryFire(rule, state, si, nil)
	assert.False(ok)
}

func Test_tryFire_distinctFactsSatisfyTwoPositivePremises(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	rule := Rule{
		Inputs:  []Phrase{si.Tokenize("holding X"), si.Tokenize("holding Y")},
		Outputs: []Phrase{si.Tokenize("pair X Y")},
	}
	state := []Phrase{si.Tokenize("holding cup"), si.Tokenize("holding fork")}

	concrete, ok := tryFire(rule, state, si, nil)
	assert.True(ok)
	assert.Len(concrete.Consumed, 2)
}

func Test_tryFire_negatedPremiseBlocksWhenFactPresent(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	rule := Rule{Inputs: []Phrase{
		si.Tokenize("at X"),
		si.Tokenize("!locked X"),
	}}
	state := []Phrase{si.Tokenize("at room1"), si.Tokenize("locked room1")}

	_, ok := tryFire(rule, state, si, nil)
	assert.False(ok)
}

func Test_tryFire_negatedPremiseAllowsWhenFactAbsent(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	rule := Rule{Inputs: []Phrase{
		si.Tokenize("at X"),
		si.Tokenize("!locked X"),
	}}
	state := []Phrase{si.Tokenize("at room1")}

	_, ok := tryFire(rule, state, si, nil)
	assert.True(ok)
}

func Test_tryFire_backwardPremiseMustHold(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	rule := Rule{Inputs: []Phrase{
		si.Tokenize("score X"),
		si.Tokenize("+ X 1 2"),
	}}

	state := []Phrase{si.Tokenize("score 1")}
	_, ok := tryFire(rule, state, si, nil)
	assert.True(ok)

	state = []Phrase{si.Tokenize("score 5")}
	_, ok = tryFire(rule, state, si, nil)
	assert.False(ok)
}

func Test_tryFire_sidePremiseUsesCallbackReply(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	rule := Rule{Inputs: []Phrase{si.Tokenize("^roll X")}}
	state := []Phrase{}

	cb := func(p Phrase) (Phrase, bool) { return si.Tokenize("^roll 4"), true }

	_, ok := tryFire(rule, state, si, cb)
	assert.True(ok)
}

func Test_tryFire_sideOutputFiresAndIsExcludedFromProduced(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	rule := Rule{
		Inputs:  []Phrase{si.Tokenize("done X")},
		Outputs: []Phrase{si.Tokenize("^announce X")},
	}
	state := []Phrase{si.Tokenize("done task1")}

	var seen Phrase
	cb := func(p Phrase) (Phrase, bool) {
		seen = p
		return nil, false
	}

	concrete, ok := tryFire(rule, state, si, cb)
	assert.True(ok)
	assert.Empty(concrete.Produced)
	assert.True(seen.Equal(si.Tokenize("^announce task1")))
}

func Test_negationBlocks_ignoresFactsConsumedByThisPermutation(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	negated := []Phrase{si.Tokenize("!locked room1")}
	state := []Phrase{si.Tokenize("locked room1")}
	chosen := map[int]bool{0: true}

	assert.False(negationBlocks(negated, state, chosen, nil))
}
