package loom

// file query.go implements the query API: a prefix positional lookup into
// State, the host's only read path.

// FindPhrase returns the first state fact whose leading tokens equal head
// followed by rest (positions beyond len(rest)+1 are wildcards), or false
// if none matches. If head or any of rest names text with no existing
// atom, it returns false immediately: no fact can reference a symbol the
// interner has never seen.
func (c *Context) FindPhrase(head string, rest ...string) (Phrase, bool) {
	prefix, ok := c.prefixAtoms(head, rest)
	if !ok {
		return nil, false
	}

	for _, fact := range c.State {
		if matchesPrefix(fact, prefix) {
			return fact, true
		}
	}
	return nil, false
}

// FindPhrases returns every state fact matching the same prefix rule as
// FindPhrase.
func (c *Context) FindPhrases(head string, rest ...string) []Phrase {
	prefix, ok := c.prefixAtoms(head, rest)
	if !ok {
		return nil
	}

	var out []Phrase
	for _, fact := range c.State {
		if matchesPrefix(fact, prefix) {
			out = append(out, fact)
		}
	}
	return out
}

// prefixAtoms resolves head and rest to already existing atoms; it fails
// fast if any position's text was never interned. It puts no upper bound on
// the number of positions.
func (c *Context) prefixAtoms(head string, rest []string) ([]Atom, bool) {
	prefix := make([]Atom, 0, 1+len(rest))

	a, ok := c.Interner.LookupExisting(head)
	if !ok {
		return nil, false
	}
	prefix = append(prefix, a)

	for _, text := range rest {
		a, ok := c.Interner.LookupExisting(text)
		if !ok {
			return nil, false
		}
		prefix = append(prefix, a)
	}

	return prefix, true
}

func matchesPrefix(fact Phrase, prefix []Atom) bool {
	if len(fact) < len(prefix) {
		return false
	}
	for i, a := range prefix {
		if fact[i].Text != a {
			return false
		}
	}
	return true
}
