package migrations

import (
	"gorm.io/gorm"

	"github.com/cupcakery/storefront/pkg/migration"
	"github.com/cupcakery/storefront/pkg/queue"
)

func init() {
	migration.Register("20260304000000_create_failed_jobs_table", migration.Funcs{
		Up:   func(db *gorm.DB) error { return db.AutoMigrate(&queue.FailedJobRecord{}) },
		Down: func(db *gorm.DB) error { return db.Migrator().DropTable(&queue.FailedJobRecord{}) },
	})
}
