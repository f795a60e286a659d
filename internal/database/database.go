package database

import (
	"reviewhub/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Init(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		// Unique-index violations come back as gorm.ErrDuplicatedKey, which
		// is what makes concurrent duplicate reactions/reports safe to
		// translate into conflict responses.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate applies the schema; split out so tests can run it against other
// dialects.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Product{},
		&models.ProductImage{},
		&models.Review{},
		&models.ReviewComment{},
		&models.Interaction{},
		&models.Report{},
		&models.Notification{},
	)
}
