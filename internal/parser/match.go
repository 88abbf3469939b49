package parser

import (
	"sort"
	"strings"

	"github.com/zapedido/zapedido-backend/internal/models"
)

// Mention is a span of text judged to reference a catalog product
type Mention struct {
	Start    int // first token of the span in the full token slice
	End      int // last token of the span, inclusive
	Product  models.Product
	Words    int // phrase length in words
	Score    int // 0-100
	Enabled  bool
	Quantity int
	assigned bool
}

// levenshtein computes the edit distance between two strings, single-row
// variant
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		prev := row[0]
		row[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur := row[j]
			row[j] = minInt(row[j]+1, minInt(row[j-1]+1, prev+cost))
			prev = cur
		}
	}
	return row[len(rb)]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// similarity scores two phrases 0-100 from their edit distance relative to
// the longer phrase, so each allowed edit costs more on short names
func similarity(a, b string) int {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 100
	}
	dist := levenshtein(a, b)
	if dist >= longest {
		return 0
	}
	return (longest - dist) * 100 / longest
}

// findMentions generates every candidate product mention of the line. For
// each content-token start and for every window size from the longest
// catalog alias down to one word, it collects content tokens (consuming
// connector and filler words without counting them), joins them and tries
// an exact alias hit first, then the best fuzzy catalog name at or above
// the threshold. Windows that run into a quantity are abandoned.
func findMentions(tokens []Token, idx *catalogIndex, threshold int) []Mention {
	var contents []int
	for i, tok := range tokens {
		if !tok.Whitespace {
			contents = append(contents, i)
		}
	}

	var mentions []Mention
	for start := 0; start < len(contents); start++ {
		for size := idx.maxWords; size >= 1; size-- {
			var words []string
			first, last := -1, -1
			for j := start; j < len(contents) && len(words) < size; j++ {
				text := tokens[contents[j]].Text
				if isNumberToken(text) {
					words = nil
					break
				}
				if idx.skippable(text) {
					continue
				}
				words = append(words, text)
				if first < 0 {
					first = contents[j]
				}
				last = contents[j]
			}
			if len(words) != size {
				continue
			}
			phrase := strings.Join(words, " ")

			if product, ok := idx.aliases[phrase]; ok {
				mentions = append(mentions, Mention{
					Start:   first,
					End:     last,
					Product: product,
					Words:   size,
					Score:   100,
					Enabled: product.Enabled,
				})
				continue
			}

			best := -1
			var bestProduct models.Product
			for p, name := range idx.names {
				score := similarity(phrase, name)
				if score > best {
					best = score
					bestProduct = idx.products[p]
				}
			}
			if best >= threshold {
				mentions = append(mentions, Mention{
					Start:   first,
					End:     last,
					Product: bestProduct,
					Words:   size,
					Score:   best,
					Enabled: bestProduct.Enabled,
				})
			}
		}
	}
	return mentions
}

// resolveOverlaps keeps a maximal non-overlapping subset of the candidate
// mentions, preferring higher scores, then longer phrases, then earlier
// positions. Survivors come back ordered by position for quantity
// assignment.
func resolveOverlaps(candidates []Mention) []Mention {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].Words != candidates[j].Words {
			return candidates[i].Words > candidates[j].Words
		}
		return candidates[i].Start < candidates[j].Start
	})

	var accepted []Mention
	for _, cand := range candidates {
		overlaps := false
		for _, acc := range accepted {
			if cand.Start <= acc.End && acc.Start <= cand.End {
				overlaps = true
				break
			}
		}
		if !overlaps {
			accepted = append(accepted, cand)
		}
	}

	sort.Slice(accepted, func(i, j int) bool {
		return accepted[i].Start < accepted[j].Start
	})
	return accepted
}
