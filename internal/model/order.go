package model

// Order records a customer's interest in a robot serial.
// RobotSerial is matched against Robot.Serial by value; there is no foreign key.
type Order struct {
	ID          int64  `gorm:"primaryKey"`
	CustomerID  int64  `gorm:"index;not null"`
	RobotSerial string `gorm:"size:5;index;not null"`
	Notified    bool   `gorm:"not null"`

	// Associations
	Customer Customer `gorm:"constraint:OnDelete:CASCADE"`
}
