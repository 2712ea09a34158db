package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnedBy restricts rows to one owner
type OwnedBy struct {
	OwnerID uuid.UUID
}

func (s OwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("owner_id = ?", s.OwnerID)
}

// ByStatus filters cases by lifecycle status
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ByCaseID filters findings (or other case-owned rows) by case
type ByCaseID struct {
	CaseID uuid.UUID
}

func (s ByCaseID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("case_id = ?", s.CaseID)
}

// NewOnly keeps findings the player has not viewed yet
type NewOnly struct{}

func (s NewOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_new = true")
}
