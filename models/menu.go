package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Slug  string `json:"slug" gorm:"uniqueIndex;not null"`
	Title string `json:"title" gorm:"not null"`
}

type MenuItem struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	Title      string          `json:"title" gorm:"not null"`
	Price      decimal.Decimal `json:"price" gorm:"type:decimal(8,2);not null"`
	Featured   bool            `json:"featured" gorm:"default:false"`
	CategoryID uint            `json:"category_id" gorm:"not null"`
	Category   Category        `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
