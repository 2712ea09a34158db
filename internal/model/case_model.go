package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Case struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerId    uuid.UUID `gorm:"type:uuid;not null;index"`
	Title      string    `gorm:"type:varchar(255);not null"`
	Difficulty string    `gorm:"type:varchar(20);not null"`
	Status     string    `gorm:"type:varchar(20);not null;default:'active';index"`

	Story         string `gorm:"type:text;not null"`
	EnhancedStory string `gorm:"type:text;not null"`
	Intro         string `gorm:"type:text;not null"`

	Clues     datatypes.JSON `gorm:"type:jsonb;not null"`
	Suspects  datatypes.JSON `gorm:"type:jsonb;not null"`
	Locations datatypes.JSON `gorm:"type:jsonb;not null"`

	MapImageURL *string `gorm:"type:text"`

	EstimatedMinutes int            `gorm:"default:0"`
	Tags             datatypes.JSON `gorm:"type:jsonb"`

	// Progress is the only mutable part of the row. ProgressVersion backs the
	// compare-and-set in UpdateProgress.
	Progress        datatypes.JSON `gorm:"type:jsonb;not null"`
	ProgressVersion int            `gorm:"not null;default:0"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Case) TableName() string {
	return "cases"
}
