package migrations

import (
	"gorm.io/gorm"

	"github.com/cupcakery/storefront/app/models"
	"github.com/cupcakery/storefront/pkg/migration"
)

func init() {
	migration.Register("20260302000000_create_orders_table", migration.Funcs{
		Up:   func(db *gorm.DB) error { return db.AutoMigrate(&models.Order{}) },
		Down: func(db *gorm.DB) error { return db.Migrator().DropTable("orders") },
	})
	migration.Register("20260302000001_create_order_items_table", migration.Funcs{
		Up:   func(db *gorm.DB) error { return db.AutoMigrate(&models.OrderItem{}) },
		Down: func(db *gorm.DB) error { return db.Migrator().DropTable("order_items") },
	})
}
