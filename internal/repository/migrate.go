package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates the store schema for every table the
// repositories own.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&propertyModel{},
		&reservationModel{},
		&hostUserModel{},
	)
}
