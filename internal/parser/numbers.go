package parser

import (
	"sort"
	"strconv"
)

// magnitude classes for Portuguese number words
const (
	classUnit = iota + 1
	classTeen
	classTen
	classHundred
)

type numberWord struct {
	value int
	class int
}

// numberWords is the Portuguese number lexicon: units, teens, tens and
// hundreds, in their diacritic-free normalized form
var numberWords = map[string]numberWord{
	"zero":   {0, classUnit},
	"um":     {1, classUnit},
	"uma":    {1, classUnit},
	"dois":   {2, classUnit},
	"duas":   {2, classUnit},
	"tres":   {3, classUnit},
	"quatro": {4, classUnit},
	"cinco":  {5, classUnit},
	"seis":   {6, classUnit},
	"sete":   {7, classUnit},
	"oito":   {8, classUnit},
	"nove":   {9, classUnit},

	"dez":       {10, classTeen},
	"onze":      {11, classTeen},
	"doze":      {12, classTeen},
	"treze":     {13, classTeen},
	"catorze":   {14, classTeen},
	"quatorze":  {14, classTeen},
	"quinze":    {15, classTeen},
	"dezesseis": {16, classTeen},
	"dezessete": {17, classTeen},
	"dezoito":   {18, classTeen},
	"dezenove":  {19, classTeen},

	"vinte":     {20, classTen},
	"trinta":    {30, classTen},
	"quarenta":  {40, classTen},
	"cinquenta": {50, classTen},
	"sessenta":  {60, classTen},
	"setenta":   {70, classTen},
	"oitenta":   {80, classTen},
	"noventa":   {90, classTen},

	"cem":          {100, classHundred},
	"cento":        {100, classHundred},
	"duzentos":     {200, classHundred},
	"trezentos":    {300, classHundred},
	"quatrocentos": {400, classHundred},
	"quinhentos":   {500, classHundred},
	"seiscentos":   {600, classHundred},
	"setecentos":   {700, classHundred},
	"oitocentos":   {800, classHundred},
	"novecentos":   {900, classHundred},
}

// numberWordsByLength lists the lexicon words longest-first, used when
// splitting glued number words
var numberWordsByLength = func() []string {
	words := make([]string, 0, len(numberWords))
	for w := range numberWords {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})
	return words
}()

// NumberToken is one quantity extracted from a line
type NumberToken struct {
	Value        int
	TokenIndex   int // index of the first matched token in the full token slice
	ContentIndex int // content-token index of the first matched token
}

// isDigits reports whether the token text is a bare digit string
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isNumberToken reports whether a content token belongs to a quantity
// (digit string or number word, the connector "e" excluded)
func isNumberToken(s string) bool {
	if isDigits(s) {
		return true
	}
	_, ok := numberWords[s]
	return ok
}

// canFollow tells whether a number word of class next may extend a
// compound whose last word had class prev ("cento e vinte", "vinte e um")
func canFollow(prev, next int) bool {
	switch prev {
	case classHundred:
		return next == classTen || next == classTeen || next == classUnit
	case classTen:
		return next == classUnit
	default:
		return false
	}
}

// ExtractNumbers scans the content tokens left to right and collects every
// quantity: bare digit strings, single number words and additive compounds
// joined directly or through a single "e". Runs that evaluate to zero are
// invalid and skipped.
func ExtractNumbers(tokens []Token) []NumberToken {
	var contents []int // indexes of content tokens in the full slice
	for i, tok := range tokens {
		if !tok.Whitespace {
			contents = append(contents, i)
		}
	}

	var numbers []NumberToken
	for i := 0; i < len(contents); {
		tok := tokens[contents[i]]

		if isDigits(tok.Text) {
			if v, err := strconv.Atoi(tok.Text); err == nil && v > 0 {
				numbers = append(numbers, NumberToken{
					Value:        v,
					TokenIndex:   contents[i],
					ContentIndex: tok.ContentIndex,
				})
			}
			i++
			continue
		}

		word, ok := numberWords[tok.Text]
		if !ok {
			i++
			continue
		}

		total := word.value
		last := word.class
		j := i + 1
		for j < len(contents) {
			next := j
			if tokens[contents[next]].Text == "e" && next+1 < len(contents) {
				next++
			}
			nw, ok := numberWords[tokens[contents[next]].Text]
			if !ok || !canFollow(last, nw.class) {
				break
			}
			total += nw.value
			last = nw.class
			j = next + 1
		}

		if total > 0 {
			numbers = append(numbers, NumberToken{
				Value:        total,
				TokenIndex:   contents[i],
				ContentIndex: tok.ContentIndex,
			})
		}
		i = j
	}
	return numbers
}
