package migrations

import (
	"gorm.io/gorm"

	"github.com/cupcakery/storefront/app/models"
	"github.com/cupcakery/storefront/pkg/migration"
)

func init() {
	migration.Register("20260301000000_create_categories_table", migration.Funcs{
		Up:   func(db *gorm.DB) error { return db.AutoMigrate(&models.Category{}) },
		Down: func(db *gorm.DB) error { return db.Migrator().DropTable("categories") },
	})
	migration.Register("20260301000001_create_users_table", migration.Funcs{
		Up:   func(db *gorm.DB) error { return db.AutoMigrate(&models.User{}) },
		Down: func(db *gorm.DB) error { return db.Migrator().DropTable("users") },
	})
	migration.Register("20260301000002_create_products_table", migration.Funcs{
		Up:   func(db *gorm.DB) error { return db.AutoMigrate(&models.Product{}) },
		Down: func(db *gorm.DB) error { return db.Migrator().DropTable("products") },
	})
}
