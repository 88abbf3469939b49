package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zapedido/zapedido-backend/internal/models"
)

// DatabaseStore persists everything in PostgreSQL through GORM
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a store backed by the given database
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Catalog operations

func (d *DatabaseStore) GetProducts() ([]models.Product, error) {
	var products []models.Product
	if err := d.db.Order("position asc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (d *DatabaseStore) GetProductByName(name string) (*models.Product, error) {
	var product models.Product
	if err := d.db.Where("name = ?", name).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (d *DatabaseStore) CreateProduct(product *models.Product) (*models.Product, error) {
	var count int64
	if err := d.db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return nil, err
	}
	product.Position = int(count)
	if err := d.db.Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (d *DatabaseStore) SetProductEnabled(name string, enabled bool) error {
	result := d.db.Model(&models.Product{}).Where("name = ?", name).Update("enabled", enabled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product not found")
	}
	return nil
}

func (d *DatabaseStore) CountProducts() (int64, error) {
	var count int64
	err := d.db.Model(&models.Product{}).Count(&count).Error
	return count, err
}

// Order operations

func (d *DatabaseStore) addOrder(order *models.Order, status models.OrderStatus) (*models.Order, error) {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	order.Status = status
	if err := d.db.Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (d *DatabaseStore) AddConfirmedOrder(order *models.Order) (*models.Order, error) {
	return d.addOrder(order, models.OrderStatusConfirmed)
}

func (d *DatabaseStore) AddPendingOrder(order *models.Order) (*models.Order, error) {
	return d.addOrder(order, models.OrderStatusPending)
}

func (d *DatabaseStore) GetOrders(status models.OrderStatus) ([]*models.Order, error) {
	var orders []*models.Order
	query := d.db.Preload("Items").Order("created_at desc")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Product totals

func (d *DatabaseStore) IncrementProductTotal(productName string, qty int) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		var total models.ProductTotal
		err := tx.Where("product_name = ?", productName).First(&total).Error
		if err == gorm.ErrRecordNotFound {
			total = models.ProductTotal{ProductName: productName, Total: qty}
			return tx.Create(&total).Error
		}
		if err != nil {
			return err
		}
		total.Total += qty
		total.UpdatedAt = time.Now()
		return tx.Save(&total).Error
	})
}

func (d *DatabaseStore) GetProductTotals() ([]*models.ProductTotal, error) {
	var totals []*models.ProductTotal
	if err := d.db.Order("total desc").Find(&totals).Error; err != nil {
		return nil, err
	}
	return totals, nil
}

// Client operations

func (d *DatabaseStore) UpsertClient(client *models.Client) (*models.Client, error) {
	var existing models.Client
	err := d.db.Where("phone = ?", client.Phone).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		client.BotActive = true
		if err := d.db.Create(client).Error; err != nil {
			return nil, err
		}
		return client, nil
	}
	if err != nil {
		return nil, err
	}

	if client.Name != "" {
		existing.Name = client.Name
	}
	if client.OrderType != "" {
		existing.OrderType = client.OrderType
	}
	if err := d.db.Save(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (d *DatabaseStore) GetClientByPhone(phone string) (*models.Client, error) {
	var client models.Client
	if err := d.db.Where("phone = ?", phone).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (d *DatabaseStore) GetAllClients() ([]*models.Client, error) {
	var clients []*models.Client
	if err := d.db.Order("created_at asc").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (d *DatabaseStore) SetClientAnswered(phone string, answered bool) error {
	return d.db.Model(&models.Client{}).Where("phone = ?", phone).Update("answered", answered).Error
}

func (d *DatabaseStore) SetClientBotActive(phone string, active bool) error {
	return d.db.Model(&models.Client{}).Where("phone = ?", phone).Update("bot_active", active).Error
}
