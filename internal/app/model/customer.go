package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatusActiveSupport 지원 대상 상태 (제공 가능한 유일한 상태)
const StatusActiveSupport = "지원"

// Visits 회계 기간 키("24-25") -> 방문 일자 목록 (중복 없음, 정렬)
type Visits map[string][]string

// LifeLove 분기 키("2024-Q1") -> 생활사랑 제공 여부 (한 번 설정되면 해제되지 않음)
type LifeLove map[string]bool

type Customer struct {
	ID        string         `gorm:"primaryKey;type:varchar(64)" json:"id" firestore:"-"`            // 이용자 ID (문서 ID)
	Name      string         `gorm:"not null;index" json:"name" firestore:"name"`                    // 이름
	Birth     string         `gorm:"type:varchar(20)" json:"birth" firestore:"birth"`                // 생년월일
	Gender    string         `gorm:"type:varchar(10)" json:"gender" firestore:"gender"`              // 성별
	Status    string         `gorm:"type:varchar(20);index" json:"status" firestore:"status"`        // 지원 상태
	Address   string         `json:"address" firestore:"address"`                                    // 주소
	Phone     string         `gorm:"type:varchar(20)" json:"phone" firestore:"phone"`                // 연락처
	Note      string         `gorm:"type:text" json:"note" firestore:"note"`                         // 비고
	Visits    Visits         `gorm:"serializer:json;type:text" json:"visits" firestore:"visits"`     // 방문 기록
	LifeLove  LifeLove       `gorm:"serializer:json;type:text" json:"lifelove" firestore:"lifelove"` // 생활사랑 분기 기록
	CreatedAt time.Time      `json:"created_at" firestore:"createdAt"`                               // 생성 시각
	UpdatedAt time.Time      `json:"updated_at" firestore:"updatedAt"`                               // 수정 시각
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-" firestore:"-"`                                   // 삭제 시각(소프트 삭제)
}

func (Customer) TableName() string {
	return "customers"
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// IsActiveSupport reports whether the customer may receive provisions.
func (c *Customer) IsActiveSupport() bool {
	return c.Status == StatusActiveSupport
}

// VisitCount returns the number of distinct visit dates recorded in period.
func (c *Customer) VisitCount(period string) int {
	return len(c.Visits[period])
}
