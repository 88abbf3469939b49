package parser

// tokenDistance measures how far apart two token positions sit in the
// line: every whitespace run in between counts its characters, every
// content token in between counts one, plus one
func tokenDistance(tokens []Token, a, b int) int {
	if a > b {
		a, b = b, a
	}
	dist := 1
	for i := a + 1; i < b; i++ {
		if tokens[i].Whitespace {
			dist += len([]rune(tokens[i].Text))
		} else {
			dist++
		}
	}
	return dist
}

// assignQuantities pairs the extracted numbers with the accepted mentions.
// Numbers are taken left to right and each one goes to the nearest still
// unassigned mention; equal distances favor the product that comes first
// in the catalog. Numbers with no mention left are dropped, mentions with
// no number default to quantity one.
func assignQuantities(tokens []Token, mentions []Mention, numbers []NumberToken) {
	for _, num := range numbers {
		best := -1
		bestDist := 0
		for i := range mentions {
			if mentions[i].assigned {
				continue
			}
			dist := tokenDistance(tokens, num.TokenIndex, mentions[i].Start)
			if best < 0 || dist < bestDist ||
				(dist == bestDist && mentions[i].Product.Position < mentions[best].Product.Position) {
				best = i
				bestDist = dist
			}
		}
		if best >= 0 {
			mentions[best].assigned = true
			mentions[best].Quantity = num.Value
		}
	}
	for i := range mentions {
		if !mentions[i].assigned {
			mentions[i].Quantity = 1
		}
	}
}
