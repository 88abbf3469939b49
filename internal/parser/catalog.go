package parser

import (
	"strings"

	"github.com/zapedido/zapedido-backend/internal/models"
)

// connectorWords join parts of a phrase without carrying meaning
var connectorWords = map[string]bool{
	"de": true, "da": true, "do": true, "das": true, "dos": true,
	"com": true, "em": true, "e": true, "no": true, "na": true,
}

// fillerWords show up around orders but never name a product by themselves
var fillerWords = map[string]bool{
	"quero": true, "queria": true, "manda": true, "me": true, "ve": true,
	"vou": true, "por": true, "favor": true, "mais": true,
	"kg": true, "kilo": true, "kilos": true, "quilo": true, "quilos": true,
	"unidade": true, "unidades": true, "g": true, "gramas": true,
}

// catalogIndex is the per-parse alias lookup built from the product list
type catalogIndex struct {
	products []models.Product
	names    []string                  // normalized canonical names, catalog order
	aliases  map[string]models.Product // normalized phrase -> product
	words    map[string]bool           // every single word of every alias
	maxWords int
}

// normalizePhrase folds an alias into its lookup key: normalized words
// joined by single spaces
func normalizePhrase(s string) string {
	return strings.Join(strings.Fields(Normalize(s)), " ")
}

func newCatalogIndex(catalog []models.Product) *catalogIndex {
	idx := &catalogIndex{
		products: catalog,
		aliases:  make(map[string]models.Product),
		words:    make(map[string]bool),
	}
	for _, product := range catalog {
		idx.names = append(idx.names, normalizePhrase(product.Name))
		for _, name := range product.AllNames() {
			key := normalizePhrase(name)
			if key == "" {
				continue
			}
			if _, taken := idx.aliases[key]; !taken {
				idx.aliases[key] = product
			}
			words := strings.Fields(key)
			if len(words) > idx.maxWords {
				idx.maxWords = len(words)
			}
			for _, w := range words {
				idx.words[w] = true
			}
		}
	}
	return idx
}

// skippable reports whether a word may be consumed without counting toward
// the phrase window. Words that are part of some product name are never
// skipped.
func (idx *catalogIndex) skippable(word string) bool {
	if idx.words[word] {
		return false
	}
	return connectorWords[word] || fillerWords[word]
}
