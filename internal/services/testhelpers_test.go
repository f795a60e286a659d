package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"reviewhub/internal/database"
	"reviewhub/internal/models"
	"reviewhub/internal/permissions"
)

var testDBSeq int64

// setupTestDB opens a fresh in-memory sqlite database with the full schema.
// The named shared-cache DSN keeps gorm's connection pool on one database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:reviewhub_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string, isStaff bool) *models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "testpass123",
		IsStaff:  isStaff,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return &user
}

func actorFor(user *models.User) permissions.Actor {
	return permissions.Actor{ID: user.ID, Username: user.Username, IsStaff: user.IsStaff}
}

func createProduct(t *testing.T, db *gorm.DB, name string) *models.Product {
	t.Helper()
	product := models.Product{Name: name, Description: "test product", Price: 19.99}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return &product
}

func createReview(t *testing.T, db *gorm.DB, productID, userID uint, rating int, text string, visible bool) *models.Review {
	t.Helper()
	review := models.Review{
		ProductID:  productID,
		UserID:     userID,
		Rating:     rating,
		ReviewText: text,
		IsVisible:  visible,
	}
	if err := db.Create(&review).Error; err != nil {
		t.Fatalf("create review: %v", err)
	}
	return &review
}
