package loom

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// file lexer.go implements the tokenizer: it turns a textual phrase into a
// flat, depth-tagged Phrase.

const (
	literalParenOpen  = "("
	literalParenClose = ")"

	prefixNegated = '!'
	prefixSide    = '^'
	prefixStage   = '#'

	quiescenceSentinelText = "qui"
)

// sanitizeInput normalizes text to NFC and removes Unicode format (Cf)
// characters such as a BOM or zero-width joiner before lexing, so they do
// not silently become atom text. Control (Cc) characters are not removed.
var inputSanitizer = transform.Chain(norm.NFC, runes.Remove(runes.In(unicode.Cf)))

func sanitizeInput(s string) string {
	out, _, err := transform.String(inputSanitizer, s)
	if err != nil {
		return s
	}
	return out
}

// rawToken is a single lexical element before depth accounting: either a
// structural paren or a maximal run of non-whitespace, non-paren characters.
type rawToken struct {
	text   string
	isOpen bool
	isAtom bool
}

// rawLex splits s into a stream of '(', ')' and atom-lexeme raw tokens.
func rawLex(s string) []rawToken {
	var toks []rawToken
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, rawToken{text: cur.String(), isAtom: true})
			cur.Reset()
		}
	}

	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			flush()
		case r == '(':
			flush()
			toks = append(toks, rawToken{text: literalParenOpen, isOpen: true})
		case r == ')':
			flush()
			toks = append(toks, rawToken{text: literalParenClose})
		default:
			cur.WriteRune(r)
		}
	}
	flush()

	return toks
}

// normalizeParens wraps s in one outer pair of parentheses if it does not
// already have a single enclosing pair, then repeatedly strips any pair of
// parens that directly surrounds a single atom — wherever in the token
// stream it occurs, not just at the top level — until no such pair remains.
// A redundant single-atom wrap like "a (v) b" loses its parens just as
// "(v)" on its own does. If the whole phrase is then a lone atom, it gets
// one outer pair back, so every phrase (a lone atom included) carries the
// same outer grouping.
func normalizeParens(toks []rawToken) []rawToken {
	if len(toks) == 0 || !(toks[0].isOpen && toks[len(toks)-1].text == literalParenClose) {
		wrapped := make([]rawToken, 0, len(toks)+2)
		wrapped = append(wrapped, rawToken{text: literalParenOpen, isOpen: true})
		wrapped = append(wrapped, toks...)
		wrapped = append(wrapped, rawToken{text: literalParenClose})
		toks = wrapped
	}

	toks = stripRedundantAtomParens(toks)

	if len(toks) == 1 && toks[0].isAtom {
		wrapped := make([]rawToken, 0, 3)
		wrapped = append(wrapped, rawToken{text: literalParenOpen, isOpen: true})
		wrapped = append(wrapped, toks[0])
		wrapped = append(wrapped, rawToken{text: literalParenClose})
		toks = wrapped
	}

	return toks
}

// stripRedundantAtomParens removes every occurrence of an open paren
// immediately followed by a single atom immediately followed by a close
// paren, anywhere in toks, re-scanning from the start after each removal
// since stripping one such triple can expose another one level out (as in
// "((v))"). It runs to a fixed point.
func stripRedundantAtomParens(toks []rawToken) []rawToken {
	for {
		changed := false
		for i := 0; i+2 < len(toks); i++ {
			if toks[i].isOpen && toks[i+1].isAtom && toks[i+2].text == literalParenClose {
				next := make([]rawToken, 0, len(toks)-2)
				next = append(next, toks[:i]...)
				next = append(next, toks[i+1])
				next = append(next, toks[i+3:]...)
				toks = next
				changed = true
				break
			}
		}
		if !changed {
			return toks
		}
	}
}

// Tokenize lexes one textual phrase into a Phrase. The empty program token
// "()" is pre-rewritten to the reserved atom "qui" before tokenization.
func (si *StringInterner) Tokenize(text string) Phrase {
	text = sanitizeInput(text)

	if strings.TrimSpace(text) == literalParenOpen+literalParenClose {
		text = quiescenceSentinelText
	}

	raw := rawLex(text)
	raw = normalizeParens(raw)

	var phrase Phrase
	openRun := 0

	for i := 0; i < len(raw); i++ {
		rt := raw[i]
		switch {
		case rt.isOpen:
			openRun++
		case !rt.isAtom:
			// a close-paren with no preceding atom in this run attaches to
			// the most recently emitted token.
			if len(phrase) > 0 {
				phrase[len(phrase)-1].CloseDepth++
			}
		default:
			tok := buildToken(si, rt.text, openRun)
			openRun = 0

			// count immediately-following close parens.
			j := i + 1
			for j < len(raw) && !raw[j].isAtom && !raw[j].isOpen {
				tok.CloseDepth++
				j++
			}
			i = j - 1

			phrase = append(phrase, tok)
		}
	}

	return phrase
}

// buildToken strips only the negation sigil from lexeme before interning;
// the side (^) and stage (#) sigils are classified but left in place in the
// interned atom text, so "#s1" and "s1" remain distinct atoms. openDepth is
// the count of '(' immediately preceding this atom.
func buildToken(si *StringInterner, lexeme string, openDepth int) Token {
	var tok Token
	tok.OpenDepth = openDepth

	for len(lexeme) > 0 && lexeme[0] == prefixNegated {
		tok.IsNegated = true
		lexeme = lexeme[1:]
	}

	if len(lexeme) > 0 && lexeme[0] == prefixSide {
		tok.IsSide = true
	}
	if len(lexeme) > 0 && lexeme[0] == prefixStage {
		tok.IsStage = true
	}

	if kind, ok := backwardsPredSymbols[lexeme]; ok {
		tok.BackwardsPred = kind
	}

	tok.IsVar = isVariableLexeme(lexeme)
	tok.Text = si.Intern(lexeme)

	return tok
}

// isVariableLexeme reports whether lexeme begins with an ASCII uppercase
// letter and contains no ASCII lowercase letters (digits are fine).
func isVariableLexeme(lexeme string) bool {
	if lexeme == "" {
		return false
	}
	if lexeme[0] < 'A' || lexeme[0] > 'Z' {
		return false
	}
	for i := 0; i < len(lexeme); i++ {
		c := lexeme[i]
		if c >= 'a' && c <= 'z' {
			return false
		}
	}
	return true
}
