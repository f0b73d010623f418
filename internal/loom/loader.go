package loom

import (
	"regexp"
	"strings"

	"github.com/holsten/loom/internal/loomerrors"
)

// file loader.go implements the program loader: splitting program text into
// rules and initial-state declarations, desugaring stage labels into
// per-rule stage guards, and handling persistent ($) inputs.

// Program is a loaded rule set together with the Phrases its source
// declared as initial state.
type Program struct {
	Rules        []Rule
	InitialState []Phrase
}

var stageLabelPattern = regexp.MustCompile(`^#(\S+):\s*$`)

const persistentPrefix = '$'

// Load splits text into lines, desugars stage scopes, and classifies each
// resulting line as a rule or an initial-state declaration.
func Load(si *StringInterner, text string) (Program, error) {
	lines := strings.Split(text, "\n")

	rewritten, err := rewriteStageScopes(lines)
	if err != nil {
		return Program{}, err
	}

	var prog Program
	for id, line := range rewritten {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if !strings.Contains(line, " =") {
			for _, phraseText := range splitPhrases(line) {
				prog.InitialState = append(prog.InitialState, si.Tokenize(phraseText))
			}
			continue
		}

		rule, err := parseRule(si, id, line)
		if err != nil {
			return Program{}, err
		}
		prog.Rules = append(prog.Rules, rule)
	}

	return prog, nil
}

// rewriteStageScopes desugars stage labels into per-rule guards. A label
// line "#name:" opens a scope that runs until the next blank line.
// Every non-label line inside the scope is rewritten to either
// "label . line" (if the line already mentions the qui atom, ending the
// scope) or "label . line . label" (carrying the scope forward to the next
// rule). Lines outside any scope pass through unchanged.
func rewriteStageScopes(lines []string) ([]string, error) {
	out := make([]string, 0, len(lines))
	label := ""

	for _, raw := range lines {
		trimmed := strings.TrimSpace(raw)

		if m := stageLabelPattern.FindStringSubmatch(trimmed); m != nil {
			label = "#" + m[1]
			continue
		}

		if trimmed == "" {
			label = ""
			out = append(out, raw)
			continue
		}

		if label == "" {
			out = append(out, raw)
			continue
		}

		if mentionsQuiAtom(trimmed) {
			out = append(out, label+" . "+trimmed)
		} else {
			out = append(out, label+" . "+trimmed+" . "+label)
		}
	}

	return out, nil
}

// mentionsQuiAtom reports whether line contains the whole atom "qui" on
// either side of an " =" split or as one of the " . "-separated phrases —
// the decision that a scope is being consumed rather than carried forward.
// Matching is against the whole atom, not a substring, so an atom like
// "quiet" never falsely closes a scope.
func mentionsQuiAtom(line string) bool {
	lhs, rhs, hasEq := strings.Cut(line, " =")
	parts := []string{lhs}
	if hasEq {
		parts = append(parts, rhs)
	}

	for _, part := range parts {
		for _, phrase := range strings.Split(part, " . ") {
			if hasWholeAtom(phrase, quiescenceSentinelText) {
				return true
			}
		}
	}
	return false
}

// hasWholeAtom reports whether any whitespace/paren-delimited lexeme within
// text equals atom exactly, ignoring a leading sigil prefix such as "$" or
// "!" so that "$qui" and "!qui" both count.
func hasWholeAtom(text string, atom string) bool {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '(' || r == ')' || r == ' ' || r == '\t'
	})
	for _, f := range fields {
		f = strings.TrimLeft(f, "$!^#")
		if f == atom {
			return true
		}
	}
	return false
}

// parseRule splits line on the first " =" into lhs/rhs, splits each side on
// " . " into phrases, and handles persistent ($) inputs by adding the
// stripped phrase to both Inputs and Outputs.
func parseRule(si *StringInterner, id int, line string) (Rule, error) {
	lhsText, rhsText, ok := strings.Cut(line, " =")
	if !ok {
		return Rule{}, loomerrors.Loadf("rule line %d has no ' =' separator: %q", id, line)
	}

	rule := Rule{ID: id}

	for _, phraseText := range splitPhrases(lhsText) {
		phraseText = strings.TrimSpace(phraseText)

		persistent := false
		if strings.HasPrefix(phraseText, string(persistentPrefix)) {
			persistent = true
			phraseText = phraseText[1:]
		}

		phrase := si.Tokenize(phraseText)
		rule.Inputs = append(rule.Inputs, phrase)
		if persistent {
			rule.Outputs = append(rule.Outputs, phrase.Clone())
		}
	}

	for _, phraseText := range splitPhrases(rhsText) {
		rule.Outputs = append(rule.Outputs, si.Tokenize(phraseText))
	}

	return rule, nil
}

// splitPhrases splits one side of a rule (or a whole initial-state line) on
// " . " into individual phrase texts, trimming surrounding space.
func splitPhrases(side string) []string {
	parts := strings.Split(side, " . ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
