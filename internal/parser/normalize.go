package parser

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// punctuation characters that become spaces during normalization
const punctuation = ",.;+-/()[]:"

// Token is one run of the normalized line, either whitespace or content.
// Concatenating all tokens in order rebuilds the normalized line exactly,
// which the quantity assigner relies on for its character distances.
type Token struct {
	Text         string
	Offset       int  // character offset in the normalized line
	Whitespace   bool
	ContentIndex int // sequential index among content tokens, -1 for whitespace
}

// Normalize prepares one raw line for matching: lower-case, strip
// diacritics, split digit/letter boundaries, split glued number words and
// turn punctuation into spaces. Normalizing an already-normalized line is
// a no-op.
func Normalize(line string) string {
	line = strings.ToLower(line)
	line = stripDiacritics(line)
	line = splitDigitLetter(line)
	line = splitNumberWords(line)
	return replacePunctuation(line)
}

// stripDiacritics removes accents ("maçã" -> "maca")
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// splitDigitLetter inserts a space at every digit-letter boundary so that
// "2kg" and "manga3" tokenize as separate words
func splitDigitLetter(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for i, r := range s {
		if i > 0 {
			if (unicode.IsDigit(prev) && unicode.IsLetter(r)) ||
				(unicode.IsLetter(prev) && unicode.IsDigit(r)) {
				b.WriteByte(' ')
			}
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// splitNumberWords breaks apart words that are entirely a run of glued
// number words ("vinteecinco" -> "vinte e cinco"). Decomposition tries the
// longest lexicon entries first so compounds like "dezesseis" are kept
// whole instead of being carved into "dez" + "e" + "seis". Words that do
// not fully decompose are left untouched.
func splitNumberWords(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		word := s[start:end]
		if parts, ok := decomposeNumberWord(word); ok {
			b.WriteString(strings.Join(parts, " "))
		} else {
			b.WriteString(word)
		}
		start = -1
	}
	for i, r := range s {
		if unicode.IsSpace(r) {
			flush(i)
			b.WriteRune(r)
		} else if start < 0 {
			start = i
		}
	}
	flush(len(s))
	return b.String()
}

// decomposeNumberWord greedily splits a word into number-lexicon parts
// (the connector "e" included). It succeeds only when the whole word is
// consumed and more than one part came out.
func decomposeNumberWord(word string) ([]string, bool) {
	if _, ok := numberWords[word]; ok {
		return nil, false // already a single lexicon word
	}
	var parts []string
	rest := word
	for rest != "" {
		matched := ""
		for _, w := range numberWordsByLength {
			if strings.HasPrefix(rest, w) {
				matched = w
				break
			}
		}
		if matched == "" && strings.HasPrefix(rest, "e") {
			matched = "e"
		}
		if matched == "" {
			return nil, false
		}
		parts = append(parts, matched)
		rest = rest[len(matched):]
	}
	if len(parts) < 2 {
		return nil, false
	}
	return parts, true
}

func replacePunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return ' '
		}
		return r
	}, s)
}

// Tokenize splits a normalized line into alternating whitespace and
// content runs, keeping offsets and numbering the content tokens
func Tokenize(line string) []Token {
	var tokens []Token
	runes := []rune(line)
	contentIndex := 0
	i := 0
	for i < len(runes) {
		ws := unicode.IsSpace(runes[i])
		j := i
		for j < len(runes) && unicode.IsSpace(runes[j]) == ws {
			j++
		}
		tok := Token{
			Text:         string(runes[i:j]),
			Offset:       i,
			Whitespace:   ws,
			ContentIndex: -1,
		}
		if !ws {
			tok.ContentIndex = contentIndex
			contentIndex++
		}
		tokens = append(tokens, tok)
		i = j
	}
	return tokens
}
