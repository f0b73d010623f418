// Package loom implements a small forward-chaining rewrite engine in the
// Ceptre tradition: rules whose left-hand side is a multiset of patterns are
// matched against a multiset of facts (the State), the matched facts are
// consumed, and the rule's right-hand side is appended as new facts. This
// repeats until no rule can fire (quiescence).
package loom

// Atom is an opaque, O(1)-comparable handle for an interned piece of text.
// Atoms are produced only by a StringInterner and are stable for the life of
// the Program that created them.
type Atom int

// StringInterner maps text to small dense integer Atoms and back. It never
// reclaims an Atom once issued, so two calls to Intern with the same text
// always return the same Atom.
type StringInterner struct {
	atomToString []string
	stringToAtom map[string]Atom
}

// NewStringInterner creates an empty interner.
func NewStringInterner() *StringInterner {
	return &StringInterner{
		stringToAtom: make(map[string]Atom),
	}
}

// Intern returns the Atom for text, creating one if this is the first time
// text has been seen. Intern is idempotent: interning the same text twice
// returns the same Atom.
func (si *StringInterner) Intern(text string) Atom {
	if a, ok := si.stringToAtom[text]; ok {
		return a
	}

	a := Atom(len(si.atomToString))
	si.atomToString = append(si.atomToString, text)
	si.stringToAtom[text] = a
	return a
}

// LookupExisting returns the Atom already assigned to text, if any. Unlike
// Intern, it never creates a new Atom.
func (si *StringInterner) LookupExisting(text string) (Atom, bool) {
	a, ok := si.stringToAtom[text]
	return a, ok
}

// TextOf returns the text that was interned to produce a. It is a total
// function over every Atom this interner has ever issued.
func (si *StringInterner) TextOf(a Atom) string {
	return si.atomToString[a]
}

// Len returns the number of distinct atoms interned so far.
func (si *StringInterner) Len() int {
	return len(si.atomToString)
}
