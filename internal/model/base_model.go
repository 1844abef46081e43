package model

import "time"

// BaseModel 所有 gorm entity 共用的時間欄位, 由 gorm 自動維護
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}
