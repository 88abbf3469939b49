package storage

import (
	"github.com/zapedido/zapedido-backend/internal/models"
)

var storeInstance Store

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the interface for storage operations
type Store interface {
	// Catalog operations
	GetProducts() ([]models.Product, error)
	GetProductByName(name string) (*models.Product, error)
	CreateProduct(product *models.Product) (*models.Product, error)
	SetProductEnabled(name string, enabled bool) error
	CountProducts() (int64, error)

	// Order operations
	AddConfirmedOrder(order *models.Order) (*models.Order, error)
	AddPendingOrder(order *models.Order) (*models.Order, error)
	GetOrders(status models.OrderStatus) ([]*models.Order, error)

	// Product totals
	IncrementProductTotal(productName string, qty int) error
	GetProductTotals() ([]*models.ProductTotal, error)

	// Client operations
	UpsertClient(client *models.Client) (*models.Client, error)
	GetClientByPhone(phone string) (*models.Client, error)
	GetAllClients() ([]*models.Client, error)
	SetClientAnswered(phone string, answered bool) error
	SetClientBotActive(phone string, active bool) error
}
