package model

import (
	"time"

	"gorm.io/gorm"
)

// Robot is a single produced unit of a model/version pair.
type Robot struct {
	ID        int64     `gorm:"primaryKey" json:"-"`
	Serial    string    `gorm:"size:5;index;not null" json:"serial" validate:"required,serial"`
	Model     string    `gorm:"size:2;not null" json:"model" validate:"required,max=2"`
	Version   string    `gorm:"size:2;not null" json:"version" validate:"required,max=2"`
	Created   time.Time `gorm:"not null;index" json:"created" validate:"required"`
	Available bool      `gorm:"not null" json:"available"`
}

// BeforeSave stores Created in UTC. SQLite keeps timestamps as text and
// compares them lexically, so every row must carry the same offset.
func (r *Robot) BeforeSave(tx *gorm.DB) error {
	r.Created = r.Created.UTC()
	return nil
}
