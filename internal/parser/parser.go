// Package parser turns free-form Portuguese order messages into
// structured (product, quantity) lines with tolerance for misspellings,
// synonyms and written-out numbers.
package parser

import (
	"strings"

	"github.com/zapedido/zapedido-backend/internal/models"
)

// DefaultThreshold is the minimum fuzzy similarity for a mention
const DefaultThreshold = 65

// OrderLine is one recognized item of a message
type OrderLine struct {
	Product  models.Product
	Quantity int
	Score    int
}

// DisabledHit is a recognized item whose product is currently disabled;
// its quantity is reported but never applied to the ledger
type DisabledHit struct {
	Product  models.Product
	Quantity int
}

// Result collects everything one message produced
type Result struct {
	Lines    []OrderLine
	Disabled []DisabledHit
}

// Parser extracts order lines from messages. It carries no state between
// calls; the caller owns the ledger it hands in.
type Parser struct {
	Threshold int
}

// New returns a parser with the default similarity threshold
func New() *Parser {
	return &Parser{Threshold: DefaultThreshold}
}

// ParseMessage runs every line of the message through the matching
// pipeline, accumulating enabled hits into the ledger as it goes so later
// lines of the same message see earlier quantities.
func (p *Parser) ParseMessage(text string, ledger *Ledger, catalog []models.Product) Result {
	idx := newCatalogIndex(catalog)
	var result Result
	for _, line := range strings.Split(text, "\n") {
		p.parseLine(line, idx, ledger, &result)
	}
	return result
}

func (p *Parser) parseLine(line string, idx *catalogIndex, ledger *Ledger, result *Result) {
	tokens := Tokenize(Normalize(line))
	if len(tokens) == 0 {
		return
	}
	numbers := ExtractNumbers(tokens)
	mentions := resolveOverlaps(findMentions(tokens, idx, p.Threshold))
	assignQuantities(tokens, mentions, numbers)

	for _, m := range mentions {
		if !m.Enabled {
			result.Disabled = append(result.Disabled, DisabledHit{
				Product:  m.Product,
				Quantity: m.Quantity,
			})
			continue
		}
		ledger.Add(m.Product, m.Quantity)
		result.Lines = append(result.Lines, OrderLine{
			Product:  m.Product,
			Quantity: m.Quantity,
			Score:    m.Score,
		})
	}
}
