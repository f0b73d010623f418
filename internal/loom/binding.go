package loom

// Binding associates a variable's Atom with the concrete Phrase it matched.
// Order of insertion is preserved; a variable already bound must re-match
// the same Phrase exactly on any later occurrence.
type Binding struct {
	Name  Atom
	Value Phrase
}

// Bindings is an ordered list of Binding pairs.
type Bindings []Binding

// Lookup returns the Phrase bound to name, if any.
func (b Bindings) Lookup(name Atom) (Phrase, bool) {
	for _, bind := range b {
		if bind.Name == name {
			return bind.Value, true
		}
	}
	return nil, false
}

// With returns a new Bindings with (name, value) appended. It does not check
// for an existing binding of name; callers must do that via Lookup first.
func (b Bindings) With(name Atom, value Phrase) Bindings {
	out := make(Bindings, len(b), len(b)+1)
	copy(out, b)
	return append(out, Binding{Name: name, Value: value})
}

// Clone returns an independent copy of b.
func (b Bindings) Clone() Bindings {
	out := make(Bindings, len(b))
	copy(out, b)
	return out
}
