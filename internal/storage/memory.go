package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zapedido/zapedido-backend/internal/models"
)

// MemoryStore holds all data in memory, for tests and local development
type MemoryStore struct {
	products []models.Product
	orders   map[string]*models.Order
	totals   map[string]*models.ProductTotal
	clients  map[string]*models.Client

	productMu sync.RWMutex
	orderMu   sync.RWMutex
	totalMu   sync.RWMutex
	clientMu  sync.RWMutex

	productCounter uint
	clientCounter  uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders:  make(map[string]*models.Order),
		totals:  make(map[string]*models.ProductTotal),
		clients: make(map[string]*models.Client),
	}
}

// Catalog operations

func (m *MemoryStore) GetProducts() ([]models.Product, error) {
	m.productMu.RLock()
	defer m.productMu.RUnlock()

	products := make([]models.Product, len(m.products))
	copy(products, m.products)
	return products, nil
}

func (m *MemoryStore) GetProductByName(name string) (*models.Product, error) {
	m.productMu.RLock()
	defer m.productMu.RUnlock()

	for i := range m.products {
		if m.products[i].Name == name {
			product := m.products[i]
			return &product, nil
		}
	}
	return nil, fmt.Errorf("product not found")
}

func (m *MemoryStore) CreateProduct(product *models.Product) (*models.Product, error) {
	m.productMu.Lock()
	defer m.productMu.Unlock()

	for i := range m.products {
		if m.products[i].Name == product.Name {
			return nil, fmt.Errorf("product already exists")
		}
	}

	m.productCounter++
	product.ID = m.productCounter
	product.Position = len(m.products)
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	m.products = append(m.products, *product)
	return product, nil
}

func (m *MemoryStore) SetProductEnabled(name string, enabled bool) error {
	m.productMu.Lock()
	defer m.productMu.Unlock()

	for i := range m.products {
		if m.products[i].Name == name {
			m.products[i].Enabled = enabled
			m.products[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("product not found")
}

func (m *MemoryStore) CountProducts() (int64, error) {
	m.productMu.RLock()
	defer m.productMu.RUnlock()
	return int64(len(m.products)), nil
}

// Order operations

func (m *MemoryStore) addOrder(order *models.Order, status models.OrderStatus) (*models.Order, error) {
	m.orderMu.Lock()
	defer m.orderMu.Unlock()

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	order.Status = status
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()

	m.orders[order.ID] = order
	return order, nil
}

func (m *MemoryStore) AddConfirmedOrder(order *models.Order) (*models.Order, error) {
	return m.addOrder(order, models.OrderStatusConfirmed)
}

func (m *MemoryStore) AddPendingOrder(order *models.Order) (*models.Order, error) {
	return m.addOrder(order, models.OrderStatusPending)
}

func (m *MemoryStore) GetOrders(status models.OrderStatus) ([]*models.Order, error) {
	m.orderMu.RLock()
	defer m.orderMu.RUnlock()

	var orders []*models.Order
	for _, order := range m.orders {
		if status == "" || order.Status == status {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

// Product totals

func (m *MemoryStore) IncrementProductTotal(productName string, qty int) error {
	m.totalMu.Lock()
	defer m.totalMu.Unlock()

	total, exists := m.totals[productName]
	if !exists {
		total = &models.ProductTotal{ProductName: productName}
		m.totals[productName] = total
	}
	total.Total += qty
	total.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) GetProductTotals() ([]*models.ProductTotal, error) {
	m.totalMu.RLock()
	defer m.totalMu.RUnlock()

	var totals []*models.ProductTotal
	for _, total := range m.totals {
		totals = append(totals, total)
	}
	return totals, nil
}

// Client operations

func (m *MemoryStore) UpsertClient(client *models.Client) (*models.Client, error) {
	m.clientMu.Lock()
	defer m.clientMu.Unlock()

	if existing, exists := m.clients[client.Phone]; exists {
		if client.Name != "" {
			existing.Name = client.Name
		}
		if client.OrderType != "" {
			existing.OrderType = client.OrderType
		}
		existing.UpdatedAt = time.Now()
		return existing, nil
	}

	m.clientCounter++
	client.ID = m.clientCounter
	client.BotActive = true
	client.CreatedAt = time.Now()
	client.UpdatedAt = time.Now()

	m.clients[client.Phone] = client
	return client, nil
}

func (m *MemoryStore) GetClientByPhone(phone string) (*models.Client, error) {
	m.clientMu.RLock()
	defer m.clientMu.RUnlock()

	client, exists := m.clients[phone]
	if !exists {
		return nil, fmt.Errorf("client not found")
	}
	return client, nil
}

func (m *MemoryStore) GetAllClients() ([]*models.Client, error) {
	m.clientMu.RLock()
	defer m.clientMu.RUnlock()

	var clients []*models.Client
	for _, client := range m.clients {
		clients = append(clients, client)
	}
	return clients, nil
}

func (m *MemoryStore) SetClientAnswered(phone string, answered bool) error {
	m.clientMu.Lock()
	defer m.clientMu.Unlock()

	client, exists := m.clients[phone]
	if !exists {
		return fmt.Errorf("client not found")
	}
	client.Answered = answered
	client.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) SetClientBotActive(phone string, active bool) error {
	m.clientMu.Lock()
	defer m.clientMu.Unlock()

	client, exists := m.clients[phone]
	if !exists {
		return fmt.Errorf("client not found")
	}
	client.BotActive = active
	client.UpdatedAt = time.Now()
	return nil
}
