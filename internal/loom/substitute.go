package loom

// Substitute replaces every variable token in pattern with the phrase it is
// bound to in bindings, producing a fully concrete Phrase. It fails if
// pattern references a variable that bindings does not cover.
//
// The first token of a substituted span always takes the pattern variable's
// is_negated. For a single-token span it also takes the variable's
// open_depth outright, since a single token carries no inner grouping of its
// own to preserve. For a span of more than one token, the variable's
// open_depth is added instead, so the captured group's own opening paren
// survives being re-anchored at the variable's position. The last token's
// close_depth is always increased additively by the variable's close_depth,
// since the captured value's own close_depth already accounts for the
// structure internal to the capture.
func Substitute(pattern Phrase, bindings Bindings) (Phrase, bool) {
	var out Phrase

	for _, t := range pattern {
		if !t.IsVar {
			out = append(out, t)
			continue
		}

		val, ok := bindings.Lookup(t.Text)
		if !ok {
			return nil, false
		}

		out = append(out, reanchorSpan(val, t)...)
	}

	return out, true
}

// SubstitutePartial replaces every variable token that bindings covers and
// leaves the rest as variable tokens, for grounding a pattern before handing
// it to a backward predicate or a side-predicate oracle that itself must
// solve for the remaining unknowns.
func SubstitutePartial(pattern Phrase, bindings Bindings) Phrase {
	var out Phrase

	for _, t := range pattern {
		if !t.IsVar {
			out = append(out, t)
			continue
		}

		val, ok := bindings.Lookup(t.Text)
		if !ok {
			out = append(out, t)
			continue
		}

		out = append(out, reanchorSpan(val, t)...)
	}

	return out
}

// reanchorSpan re-anchors a bound value's span at the position of pattern
// variable t: the first token always takes t's is_negated. For a
// single-token span it also takes t's open_depth outright, since a single
// token carries no inner grouping of its own to preserve. For a span of more
// than one token, t's open_depth is added instead, so the captured group's
// own opening paren survives the move. The last token's close_depth is
// always increased additively by t's close_depth, since the captured
// value's own close_depth already accounts for the structure internal to
// the capture.
func reanchorSpan(val Phrase, t Token) Phrase {
	span := val.Clone()
	span[0].IsNegated = t.IsNegated
	if len(span) == 1 {
		span[0].OpenDepth = t.OpenDepth
	} else if t.OpenDepth > 0 {
		span[0].OpenDepth += t.OpenDepth
	}
	span[len(span)-1].CloseDepth += t.CloseDepth
	return span
}
