package models

import "time"

// OrderStatus marks how an order reached the store
type OrderStatus string

const (
	// OrderStatusConfirmed means the client replied to the summary
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusPending means the reminder cycle ran out without a reply
	OrderStatusPending OrderStatus = "pending"
)

// Order is a persisted shopping order built from one conversation cycle
type Order struct {
	ID           string      `json:"id" gorm:"primaryKey"`
	Phone        string      `json:"phone" gorm:"index"`
	ClientName   string      `json:"client_name"`
	OrderType    string      `json:"order_type"` // business-operator tag (e.g. "entrega", "retirada")
	Status       OrderStatus `json:"status" gorm:"index"`
	OriginalText string      `json:"original_text"` // raw messages that produced the items
	Items        []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// OrderItem is one recognized (product, quantity) pair of an order
type OrderItem struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	OrderID     string `json:"order_id" gorm:"index"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Score       int    `json:"score"` // match score at parse time (0-100)
}

// ProductTotal accumulates how much of each product was ever ordered
type ProductTotal struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ProductName string    `json:"product_name" gorm:"uniqueIndex"`
	Total       int       `json:"total"`
	UpdatedAt   time.Time `json:"updated_at"`
}
