package model

import (
	"time"

	"github.com/google/uuid"
)

type Finding struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey"`
	CaseId        uuid.UUID `gorm:"type:uuid;not null;index:idx_findings_case_created,priority:1"`
	Source        string    `gorm:"type:varchar(30);not null"`
	SourceDetails string    `gorm:"type:varchar(255)"`
	Text          string    `gorm:"type:text;not null"`
	Importance    string    `gorm:"type:varchar(20);not null;default:'minor'"`
	IsNew         bool      `gorm:"default:true"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index:idx_findings_case_created,priority:2"`
}

func (Finding) TableName() string {
	return "findings"
}
