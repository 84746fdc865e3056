package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id" firestore:"-"`             // 물품 ID
	Name      string    `gorm:"not null;index" json:"name" firestore:"name"`                     // 물품명
	Price     int       `gorm:"not null;default:0" json:"price" firestore:"price"`               // 포인트 단가
	Barcode   string    `gorm:"type:varchar(64);uniqueIndex" json:"barcode" firestore:"barcode"` // 바코드 (카탈로그 내 고유)
	Category  string    `gorm:"type:varchar(50)" json:"category,omitempty" firestore:"category"` // 분류
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`                                // 생성 시각
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`                                // 수정 시각
}

func (Product) TableName() string {
	return "products"
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
