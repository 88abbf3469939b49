package models

import (
	"strings"
	"time"
)

// Product is one catalog entry the parser can match against
type Product struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex"`
	Aliases   string    `json:"aliases"`  // comma-separated alternate names ("aka" forms)
	Enabled   bool      `json:"enabled"`  // disabled products are recognized but never added to an order
	Position  int       `json:"position"` // catalog order, also the quantity-assignment tie-break
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AliasList splits the stored alias string into individual aliases
func (p *Product) AliasList() []string {
	if p.Aliases == "" {
		return nil
	}
	parts := strings.Split(p.Aliases, ",")
	aliases := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			aliases = append(aliases, part)
		}
	}
	return aliases
}

// AllNames returns the canonical name followed by every alias
func (p *Product) AllNames() []string {
	return append([]string{p.Name}, p.AliasList()...)
}
