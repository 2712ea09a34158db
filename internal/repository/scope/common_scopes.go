package scope

import "gorm.io/gorm"

// OrderByCreatedDesc is the default listing order for findings: the case
// notebook reads newest entries first.
func OrderByCreatedDesc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}
