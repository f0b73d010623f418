package loom

import (
	"math/rand"

	"github.com/holsten/loom/internal/loomerrors"
)

// file driver.go implements the driver loop: randomized rule/state order,
// first-success-wins rule application, and the two-phase quiescence
// protocol built around the reserved "qui" sentinel.

// Context owns a Program, its current State, the StringInterner that gives
// the program's atoms meaning, and the randomness source used to shuffle
// rule and state order each step. It is the exclusive owner of State during
// a step; nothing outside this package observes State mid-step.
type Context struct {
	Program    Program
	State      []Phrase
	Interner   *StringInterner
	quiescence bool
	rng        *rand.Rand
}

// FromText loads program text into a fresh Context backed by a new
// StringInterner. rng may be nil, in which case a new default-seeded source
// is created; callers that need determinism (tests, replay) should pass
// their own.
func FromText(text string, rng *rand.Rand) (*Context, error) {
	si := NewStringInterner()

	prog, err := Load(si, text)
	if err != nil {
		return nil, err
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	return &Context{
		Program:  prog,
		State:    append([]Phrase(nil), prog.InitialState...),
		Interner: si,
		rng:      rng,
	}, nil
}

// AppendState adds phrase directly to the current State, bypassing rule
// matching. It is how a host seeds facts that did not come from program
// text, e.g. after a side predicate reports an event.
func (c *Context) AppendState(phrase Phrase) {
	c.State = append(c.State, phrase)
}

// Intern, LookupExisting, and TextOf expose the Context's StringInterner so
// a host can build query phrases without reaching into an internal field.
func (c *Context) Intern(text string) Atom                 { return c.Interner.Intern(text) }
func (c *Context) LookupExisting(text string) (Atom, bool) { return c.Interner.LookupExisting(text) }
func (c *Context) TextOf(a Atom) string                    { return c.Interner.TextOf(a) }

// Step runs step_until_quiescent: it fires rules, one per iteration, until
// no rule can fire, then performs the two-phase quiescence handshake and
// returns. cb is the side-predicate oracle; it may be nil if the loaded
// program uses no side predicates.
func (c *Context) Step(cb SideCallback) error {
	for {
		c.shuffle()

		if c.quiescence {
			c.State = append(c.State, c.quiescenceSentinel())
		}

		fired, err := c.fireOne(cb)
		if err != nil {
			return err
		}

		if fired {
			c.quiescence = false
			continue
		}

		if !c.quiescence {
			c.quiescence = true
			continue
		}

		return c.settleQuiescence()
	}
}

// shuffle randomizes rule and state order in place (Fisher-Yates). This is
// the engine's sole source of fairness between permutations and candidate
// rules that could otherwise starve.
func (c *Context) shuffle() {
	c.rng.Shuffle(len(c.Program.Rules), func(i, j int) {
		c.Program.Rules[i], c.Program.Rules[j] = c.Program.Rules[j], c.Program.Rules[i]
	})
	c.rng.Shuffle(len(c.State), func(i, j int) {
		c.State[i], c.State[j] = c.State[j], c.State[i]
	})
}

func (c *Context) quiescenceSentinel() Phrase {
	return c.Interner.Tokenize(quiescenceSentinelText)
}

// fireOne tries every rule in its current (shuffled) order and stops at the
// first one that fires, applying its consumed/produced facts to State. The
// stage-fact pre-check is an optimization over try_fire's own cheap
// pre-match and is applied here as an early skip before paying for full
// permutation enumeration.
func (c *Context) fireOne(cb SideCallback) (bool, error) {
	stageFacts := currentStageFacts(c.State)

	for _, rule := range c.Program.Rules {
		if !passesStageGuard(rule, stageFacts) {
			continue
		}

		concrete, ok := tryFire(rule, c.State, c.Interner, cb)
		if !ok {
			continue
		}

		if err := c.apply(concrete); err != nil {
			return false, err
		}
		return true, nil
	}

	return false, nil
}

// currentStageFacts collects the state facts whose head token is a stage
// fact (#-prefixed), for the guard optimization in passesStageGuard.
func currentStageFacts(state []Phrase) []Phrase {
	var out []Phrase
	for _, fact := range state {
		if fact.Head().IsStage {
			out = append(out, fact)
		}
	}
	return out
}

// passesStageGuard requires that every positive, non-negated, stage-tagged
// input of rule has at least one current stage fact passing the cheap
// pre-match; semantics are identical to letting try_fire discover the same
// absence via its own candidate search, this just avoids paying for full
// permutation enumeration on rules that plainly cannot fire this step.
func passesStageGuard(rule Rule, stageFacts []Phrase) bool {
	for _, input := range rule.Inputs {
		head := input.Head()
		if !head.IsStage || head.IsNegated {
			continue
		}

		found := false
		for _, fact := range stageFacts {
			if CheapPreMatch(input, fact) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// apply removes concrete's consumed facts from State by value (one
// occurrence per consumed fact) and appends its produced facts.
func (c *Context) apply(concrete ConcreteRule) error {
	for _, consumed := range concrete.Consumed {
		if !c.removeOneByValue(consumed) {
			return loomerrors.Invariantf("rule %d fired but its consumed fact was not found in state", concrete.Rule.ID)
		}
	}
	c.State = append(c.State, concrete.Produced...)
	return nil
}

func (c *Context) removeOneByValue(phrase Phrase) bool {
	for i, fact := range c.State {
		if fact.Equal(phrase) {
			c.State = append(c.State[:i], c.State[i+1:]...)
			return true
		}
	}
	return false
}

// settleQuiescence asserts that exactly one qui fact remains in state,
// removes it, clears the quiescence flag, and returns.
func (c *Context) settleQuiescence() error {
	quiAtom, ok := c.Interner.LookupExisting(quiescenceSentinelText)
	if !ok {
		return loomerrors.Invariant("reached quiescence but the qui atom was never interned")
	}

	count := 0
	idx := -1
	for i, fact := range c.State {
		if len(fact) == 1 && fact[0].Text == quiAtom {
			count++
			idx = i
		}
	}

	if count != 1 {
		return loomerrors.Invariantf("expected exactly one qui fact at quiescence, found %d", count)
	}

	c.State = append(c.State[:idx], c.State[idx+1:]...)
	c.quiescence = false
	return nil
}
