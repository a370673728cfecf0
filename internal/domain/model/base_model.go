package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:now()" json:"date"`
	UpdatedAt time.Time `gorm:"null" json:"updatedAt"`
}

// 統一由hook產生主鍵, 呼叫端有給值就沿用
func newID(current string) string {
	if current != "" {
		return current
	}
	return uuid.New().String()
}

// gorm hooks
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	p.ID = newID(p.ID)
	return nil
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	o.ID = newID(o.ID)
	return nil
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	a.ID = newID(a.ID)
	return nil
}
