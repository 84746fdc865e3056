package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StaffRole string // 직원 권한 타입

const (
	RoleStaff StaffRole = "staff" // 일반 직원
	RoleAdmin StaffRole = "admin" // 관리자 (직원 승인 가능)
)

type Staff struct {
	ID           string         `gorm:"primaryKey;type:varchar(64)" json:"id" firestore:"-"`           // 직원 ID
	Email        string         `gorm:"uniqueIndex;not null" json:"email" firestore:"email"`           // 이메일
	PasswordHash string         `json:"-" firestore:"passwordHash"`                                    // 비밀번호 해시 (firebase 인증 시 비어 있음)
	Name         string         `gorm:"not null" json:"name" firestore:"name"`                         // 이름
	Role         StaffRole      `gorm:"type:varchar(20);default:'staff'" json:"role" firestore:"role"` // 권한
	Approved     bool           `gorm:"not null;default:false" json:"approved" firestore:"approved"`   // 관리자 승인 여부
	ApprovedBy   string         `json:"approved_by,omitempty" firestore:"approvedBy"`                  // 승인한 관리자
	ApprovedAt   *time.Time     `json:"approved_at,omitempty" firestore:"approvedAt"`                  // 승인 시각
	CreatedAt    time.Time      `json:"created_at" firestore:"createdAt"`                              // 생성 시각
	UpdatedAt    time.Time      `json:"updated_at" firestore:"updatedAt"`                              // 수정 시각
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-" firestore:"-"`                                  // 삭제 시각(소프트 삭제)
}

func (Staff) TableName() string {
	return "staff"
}

func (s *Staff) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
