package models

import (
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cupcakery/storefront/pkg/storage"
)

// Category names.
const (
	CategorySweet     = "doce"
	CategorySavory    = "salgado"
	CategorySugarFree = "diet"
)

var categoryLabels = map[string]string{
	CategorySweet:     "Doce",
	CategorySavory:    "Salgado",
	CategorySugarFree: "Diet",
}

// Category groups products by type. Reference data seeded at install time.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:50;not null;uniqueIndex" json:"name"`
}

// Label is the display name shown in the filter menu.
func (c Category) Label() string {
	if l, ok := categoryLabels[c.Name]; ok {
		return l
	}
	return c.Name
}

// ValidCategory reports whether name is one of the known category names.
func ValidCategory(name string) bool {
	_, ok := categoryLabels[name]
	return ok
}

// Product is a cupcake in the catalog.
type Product struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Name       string          `gorm:"size:100;not null;index" json:"name"`
	Flavor     string          `gorm:"size:100;not null;index" json:"flavor"`
	Image      string          `gorm:"size:255" json:"image"`
	Slug       string          `gorm:"size:140;not null;uniqueIndex" json:"slug"`
	Price      decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"price"`
	Stock      int             `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	CategoryID *uint           `gorm:"index" json:"category_id"`
	Category   *Category       `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	ImageURL string `gorm:"-" json:"image_url,omitempty"`
}

// InStock reports whether the product is visible in the public catalog.
func (p Product) InStock() bool { return p.Stock > 0 }

// BeforeCreate derives a unique slug from name and flavor.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.Slug != "" {
		return nil
	}
	base := slug.Make(p.Name + " " + p.Flavor)
	if base == "" {
		base = "cupcake"
	}

	candidate := base
	for i := 2; ; i++ {
		var n int64
		if err := tx.Session(&gorm.Session{NewDB: true}).
			Model(&Product{}).Where("slug = ?", candidate).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			break
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	p.Slug = candidate
	return nil
}

// AfterFind resolves the public image URL on the default storage disk.
func (p *Product) AfterFind(*gorm.DB) error {
	p.ImageURL = storage.URL(p.Image)
	return nil
}
