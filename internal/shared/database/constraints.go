package database

import (
	"fmt"

	"gorm.io/gorm"
)

// indexStatements back the admin listings and the seat overlap check
var indexStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_bookings_event_status ON bookings (event_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_seats_gin ON bookings USING GIN (seats jsonb_path_ops)`,
	`CREATE INDEX IF NOT EXISTS idx_events_created_at ON events (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_events_title_lower ON events (LOWER(title))`,
}

// MigrateIndexes adds the indexes AutoMigrate cannot express
func MigrateIndexes(db *gorm.DB) error {
	for _, stmt := range indexStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to apply %q: %w", stmt, err)
		}
	}
	return nil
}
