package database

import (
	"github.com/carryalong/carryalong-backend/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Travel{},
		&models.Parcel{},
		&models.Payment{},
		&models.Rating{},
		&models.Message{},
	)
	if err != nil {
		return err
	}

	// Enum-style CHECK constraints; the status columns back the lifecycle
	// tables, so reject anything outside the known sets at the database too.
	checks := []struct {
		table      string
		constraint string
		definition string
	}{
		{"parcels", "parcels_status_check", `CHECK (status IN ('requested', 'accepted', 'picked_up', 'delivered', 'completed', 'cancelled'))`},
		{"parcels", "parcels_size_check", `CHECK (parcel_size IN ('small', 'medium'))`},
		{"parcels", "parcels_reward_bounds_check", `CHECK (reward_amount >= 1 AND reward_amount <= 10000)`},
		{"travels", "travels_status_check", `CHECK (status IN ('active', 'inactive', 'completed'))`},
		{"travels", "travels_space_check", `CHECK (available_space IN ('small', 'medium'))`},
		{"payments", "payments_status_check", `CHECK (status IN ('held', 'released', 'refunded'))`},
		{"ratings", "ratings_rating_range_check", `CHECK (rating >= 1 AND rating <= 5)`},
	}

	for _, c := range checks {
		db.Exec(`ALTER TABLE ` + c.table + ` DROP CONSTRAINT IF EXISTS ` + c.constraint)
		if err := db.Exec(`ALTER TABLE ` + c.table + ` ADD CONSTRAINT ` + c.constraint + ` ` + c.definition).Error; err != nil {
			return err
		}
	}

	// One payment and one rating per parcel. AutoMigrate creates these from
	// the model tags; keep them here as well for databases migrated before
	// the tags existed.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_parcel_id ON payments (parcel_id)`).Error; err != nil {
		return err
	}
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_ratings_parcel_id ON ratings (parcel_id)`).Error; err != nil {
		return err
	}

	return nil
}
