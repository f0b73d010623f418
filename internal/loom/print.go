package loom

import (
	"fmt"

	"github.com/dekarrin/rosed"
)

// file print.go implements the human-readable debug dump described in spec
// section 6: a tabular rendering of current state and loaded rules,
// intended for the console host's STATE/RULES commands.

// Print renders the Context's current state and rule set as two tables
// suitable for a terminal, following the corpus convention of building
// fixed-width report tables with rosed.
func (c *Context) Print() string {
	out := c.printState()
	out += "\n"
	out += c.printRules()
	return out
}

func (c *Context) printState() string {
	data := [][]string{{"#", "fact"}}
	for i, fact := range c.State {
		data = append(data, []string{fmt.Sprintf("%d", i), c.PhraseText(fact)})
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 80, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

func (c *Context) printRules() string {
	data := [][]string{{"id", "inputs", "outputs"}}
	for _, r := range c.Program.Rules {
		data = append(data, []string{
			fmt.Sprintf("%d", r.ID),
			c.phraseListText(r.Inputs),
			c.phraseListText(r.Outputs),
		})
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 80, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

func (c *Context) phraseListText(phrases []Phrase) string {
	s := ""
	for i, p := range phrases {
		if i > 0 {
			s += " . "
		}
		s += c.PhraseText(p)
	}
	return s
}

// PhraseText renders phrase back to a readable surface form by replaying
// its open/close depth tags as literal parentheses around interned atom
// text, with the negation sigil reattached (the side and stage sigils are
// already part of the interned atom text). It is a debug aid, not
// guaranteed to round-trip through Tokenize byte-for-byte (normalizeParens
// may have dropped redundant groupings the original source had).
func (c *Context) PhraseText(phrase Phrase) string {
	s := ""
	for i, t := range phrase {
		if i > 0 {
			s += " "
		}
		for j := 0; j < t.OpenDepth; j++ {
			s += "("
		}

		if t.IsNegated {
			s += "!"
		}
		s += c.Interner.TextOf(t.Text)

		for j := 0; j < t.CloseDepth; j++ {
			s += ")"
		}
	}
	return s
}
