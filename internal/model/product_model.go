package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uuid.UUID       `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `gorm:"not null" json:"description"`
	Price       decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"price"`
	Stock       int             `gorm:"not null;check:stock >= 0" json:"stock"`
	IsActive    bool            `gorm:"not null;index" json:"isActive"`
	BaseModel
}

type CreateProductModel struct {
	Name        string          `json:"name" validate:"required,min=1"`
	Description string          `json:"description" validate:"required,min=1"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Stock       int             `json:"stock" validate:"min=0"`
	IsActive    *bool           `json:"isActive"`
}
