package loom

// SideCallback is the host-supplied oracle for side predicates. It
// receives a ground-substituted pattern phrase (every variable the engine
// already knows has been filled in; variables the engine still needs
// answered are left as-is) and returns a fully concrete phrase of the same
// shape as its reply, or ok=false to decline.
//
// The callback must be synchronous and must not re-enter the engine;
// side-callback reentrancy is undefined behavior.
type SideCallback func(pattern Phrase) (reply Phrase, ok bool)

// evalSide invokes cb with pattern and, on a reply, unifies the reply
// against pattern via the phrase matcher to extract additional bindings.
func evalSide(cb SideCallback, pattern Phrase, bindings Bindings) (Bindings, bool) {
	if cb == nil {
		return nil, false
	}

	reply, ok := cb(pattern)
	if !ok {
		return nil, false
	}

	return Match(pattern, reply, bindings)
}

// fireSideOutput invokes cb purely for effect when a side-tagged phrase
// appears in a rule's outputs; its reply, if any, is discarded.
func fireSideOutput(cb SideCallback, ground Phrase) {
	if cb == nil {
		return
	}
	cb(ground)
}
