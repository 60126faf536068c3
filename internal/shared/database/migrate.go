package database

import (
	"gorm.io/gorm"

	"neontix/internal/bookings"
	"neontix/internal/events"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&events.Event{},
		&bookings.Booking{},
	); err != nil {
		return err
	}
	return MigrateIndexes(db)
}
