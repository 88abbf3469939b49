package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Maçã", "maca"},
		{"2kg", "2 kg"},
		{"manga3", "manga 3"},
		{"QUERO 2 MANGAS", "quero 2 mangas"},
		{"limão, tomate", "limao  tomate"},
		{"arroz/feijao", "arroz feijao"},
		{"vinteecinco", "vinte e cinco"},
		{"dezesseis", "dezesseis"},
		{"", ""},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, Normalize(test.input), "Normalize(%q)", test.input)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Quero 2kg de MAÇÃ, por favor",
		"manda 3 mangas; 2 queijos",
		"dezesseis bananas e vinteecinco limões",
		"   espaços   preservados   ",
	}
	for _, input := range inputs {
		once := Normalize(input)
		assert.Equal(t, once, Normalize(once), "normalizing twice changed %q", input)
	}
}

func TestSplitNumberWordsKeepsOrdinaryWords(t *testing.T) {
	// words that merely contain number words inside must not be carved up
	for _, word := range []string{"umbu", "semente", "cimento", "adeus"} {
		assert.Equal(t, word, splitNumberWords(word))
	}
}

func TestTokenizeRoundTrip(t *testing.T) {
	line := Normalize("quero  2 mangas e   3 queijos")
	tokens := Tokenize(line)

	var rebuilt string
	for _, tok := range tokens {
		rebuilt += tok.Text
	}
	assert.Equal(t, line, rebuilt, "concatenated tokens must rebuild the line")
}

func TestTokenizeContentIndexes(t *testing.T) {
	tokens := Tokenize("2 mangas e 3")

	var contents []Token
	for _, tok := range tokens {
		if !tok.Whitespace {
			contents = append(contents, tok)
		}
	}
	assert.Len(t, contents, 4)
	for i, tok := range contents {
		assert.Equal(t, i, tok.ContentIndex)
	}
	// whitespace runs carry no content index
	for _, tok := range tokens {
		if tok.Whitespace {
			assert.Equal(t, -1, tok.ContentIndex)
		}
	}
}
