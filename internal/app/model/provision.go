package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Provision 물품 제공 기록. 한 번 기록되면 변경하지 않는다.
type Provision struct {
	ID            string     `gorm:"primaryKey;type:varchar(64)" json:"id" firestore:"-"`                       // 제공 기록 ID
	CustomerID    string     `gorm:"type:varchar(64);not null;index" json:"customer_id" firestore:"customerId"` // 이용자 ID
	CustomerName  string     `gorm:"not null" json:"customer_name" firestore:"customerName"`                    // 이용자 이름 (스냅샷)
	CustomerBirth string     `json:"customer_birth" firestore:"customerBirth"`                                  // 생년월일 (스냅샷)
	Items         []CartLine `gorm:"serializer:json;type:text" json:"items" firestore:"items"`                  // 제공 물품
	Total         int        `gorm:"not null" json:"total" firestore:"total"`                                   // 사용 포인트
	Timestamp     time.Time  `gorm:"not null;index" json:"timestamp" firestore:"timestamp"`                     // 제공 시각
	HandledBy     string     `gorm:"type:varchar(255);not null" json:"handled_by" firestore:"handledBy"`        // 처리 직원
	LifeLove      bool       `gorm:"not null;default:false" json:"lifelove" firestore:"lifelove"`               // 생활사랑 제공 여부
	QuarterKey    string     `gorm:"type:varchar(10);index" json:"quarter_key" firestore:"quarterKey"`          // 분기 키
	PeriodKey     string     `gorm:"type:varchar(10);index" json:"period_key" firestore:"periodKey"`            // 회계 기간 키
	VisitDate     string     `gorm:"type:varchar(10);index" json:"visit_date" firestore:"visitDate"`            // 방문 일자
}

func (Provision) TableName() string {
	return "provisions"
}

func (p *Provision) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
