package parser

import "github.com/zapedido/zapedido-backend/internal/models"

// LedgerItem is one product row of the ledger
type LedgerItem struct {
	Product  models.Product
	Quantity int
}

// Ledger is the running per-session mapping of product to accumulated
// quantity, kept in catalog order. Every catalog product starts at zero.
type Ledger struct {
	items []LedgerItem
	index map[string]int
}

// NewLedger builds a zeroed ledger over the given catalog
func NewLedger(catalog []models.Product) *Ledger {
	l := &Ledger{index: make(map[string]int, len(catalog))}
	for _, product := range catalog {
		l.index[product.Name] = len(l.items)
		l.items = append(l.items, LedgerItem{Product: product})
	}
	return l
}

// Add accumulates quantity for a product, appending the product if the
// catalog gained it after the ledger was created
func (l *Ledger) Add(product models.Product, qty int) {
	i, ok := l.index[product.Name]
	if !ok {
		i = len(l.items)
		l.index[product.Name] = i
		l.items = append(l.items, LedgerItem{Product: product})
	}
	l.items[i].Quantity += qty
}

// Quantity returns the accumulated quantity for a product name
func (l *Ledger) Quantity(name string) int {
	if i, ok := l.index[name]; ok {
		return l.items[i].Quantity
	}
	return 0
}

// Reset zeroes every quantity
func (l *Ledger) Reset() {
	for i := range l.items {
		l.items[i].Quantity = 0
	}
}

// Items returns the rows with a non-zero quantity, in catalog order
func (l *Ledger) Items() []LedgerItem {
	var items []LedgerItem
	for _, item := range l.items {
		if item.Quantity > 0 {
			items = append(items, item)
		}
	}
	return items
}

// Empty reports whether every quantity is zero
func (l *Ledger) Empty() bool {
	for _, item := range l.items {
		if item.Quantity > 0 {
			return false
		}
	}
	return true
}
