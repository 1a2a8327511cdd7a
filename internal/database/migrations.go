package database

import (
	"github.com/karmanya-engineer/uber-clone/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Ride{},
	)
	if err != nil {
		return err
	}

	// Enum-style constraints; sqlite test databases skip these.
	if db.Dialector.Name() == "postgres" {
		db.Exec(`ALTER TABLE users DROP CONSTRAINT IF EXISTS users_role_check`)
		db.Exec(`ALTER TABLE users ADD CONSTRAINT users_role_check CHECK (role IN ('user', 'driver'))`)

		db.Exec(`ALTER TABLE rides DROP CONSTRAINT IF EXISTS rides_status_check`)
		db.Exec(`ALTER TABLE rides ADD CONSTRAINT rides_status_check CHECK (status IN ('pending', 'accepted', 'driver-assigned', 'in-progress', 'completed', 'cancelled'))`)

		db.Exec(`ALTER TABLE rides DROP CONSTRAINT IF EXISTS rides_payment_method_check`)
		db.Exec(`ALTER TABLE rides ADD CONSTRAINT rides_payment_method_check CHECK (payment_method IN ('cash', 'card'))`)
	}

	return nil
}
