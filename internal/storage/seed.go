package storage

import (
	"log"

	"github.com/zapedido/zapedido-backend/internal/models"
)

// defaultCatalog is the hortifruti catalog loaded on first boot
var defaultCatalog = []models.Product{
	{Name: "manga", Aliases: "mangas", Enabled: true},
	{Name: "queijo", Aliases: "queijos,queijo minas", Enabled: true},
	{Name: "banana", Aliases: "bananas,banana prata", Enabled: true},
	{Name: "laranja", Aliases: "laranjas", Enabled: true},
	{Name: "limao", Aliases: "limoes,limão", Enabled: true},
	{Name: "tomate", Aliases: "tomates", Enabled: true},
	{Name: "cebola", Aliases: "cebolas", Enabled: true},
	{Name: "alface", Aliases: "alfaces", Enabled: true},
	{Name: "batata doce", Aliases: "batatas doces", Enabled: true},
	{Name: "batata", Aliases: "batatas,batata inglesa", Enabled: true},
	{Name: "cenoura", Aliases: "cenouras", Enabled: true},
	{Name: "abacaxi", Aliases: "abacaxis", Enabled: true},
	{Name: "melancia", Aliases: "melancias", Enabled: true},
	{Name: "mamao", Aliases: "mamoes,mamão", Enabled: true},
	{Name: "ovos", Aliases: "ovo,duzia de ovos", Enabled: true},
}

// SeedDefaultCatalog loads the default product list when the catalog is
// empty, so a fresh deployment can take orders immediately
func SeedDefaultCatalog(store Store) error {
	count, err := store.CountProducts()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	log.Println("🌱 Seeding default product catalog...")
	for i := range defaultCatalog {
		product := defaultCatalog[i]
		if _, err := store.CreateProduct(&product); err != nil {
			return err
		}
	}
	log.Printf("✅ Catalog seeded with %d products", len(defaultCatalog))
	return nil
}
