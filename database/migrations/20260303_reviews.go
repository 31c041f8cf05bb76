package migrations

import (
	"gorm.io/gorm"

	"github.com/cupcakery/storefront/app/models"
	"github.com/cupcakery/storefront/pkg/migration"
)

func init() {
	migration.Register("20260303000000_create_reviews_table", migration.Funcs{
		Up:   func(db *gorm.DB) error { return db.AutoMigrate(&models.Review{}) },
		Down: func(db *gorm.DB) error { return db.Migrator().DropTable("reviews") },
	})
	migration.Register("20260303000001_create_favorites_table", migration.Funcs{
		Up:   func(db *gorm.DB) error { return db.AutoMigrate(&models.Favorite{}) },
		Down: func(db *gorm.DB) error { return db.Migrator().DropTable("favorites") },
	})
}
