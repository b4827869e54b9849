package model

// Customer is the party an order belongs to.
type Customer struct {
	ID    int64  `gorm:"primaryKey"`
	Email string `gorm:"size:255;uniqueIndex;not null"`
}
