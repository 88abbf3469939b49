package models

import "time"

// Client is a known WhatsApp contact
type Client struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Phone       string     `json:"phone" gorm:"uniqueIndex"`
	Name        string     `json:"name"`
	OrderType   string     `json:"order_type"`
	BotActive   bool       `json:"bot_active"` // false after the client asked for a human
	Answered    bool       `json:"answered"`   // set on any inbound message, consulted by broadcasts
	LastOrderAt *time.Time `json:"last_order_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
