package seeders

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cupcakery/storefront/app/models"
	"github.com/cupcakery/storefront/config"
	"github.com/cupcakery/storefront/pkg/auth"
)

// Registration order matters: products reference categories.
func init() {
	Register("categories", seedCategories)
	Register("products", seedProducts)
	Register("staff", seedStaff)
}

func seedCategories(db *gorm.DB) error {
	for _, name := range []string{models.CategorySweet, models.CategorySavory, models.CategorySugarFree} {
		if err := db.Where(models.Category{Name: name}).FirstOrCreate(&models.Category{Name: name}).Error; err != nil {
			return err
		}
	}
	return nil
}

type sampleProduct struct {
	name, flavor, image, price, category string
	stock                                int
}

var samples = []sampleProduct{
	{"Cupcake Clássico", "Chocolate", "cupcakes/chocolate.jpg", "8.50", models.CategorySweet, 40},
	{"Cupcake Clássico", "Baunilha", "cupcakes/baunilha.jpg", "8.00", models.CategorySweet, 35},
	{"Red Velvet", "Cream cheese", "cupcakes/red-velvet.jpg", "11.90", models.CategorySweet, 20},
	{"Cupcake de Festa", "Brigadeiro", "cupcakes/brigadeiro.jpg", "9.50", models.CategorySweet, 50},
	{"Cupcake Salgado", "Queijo e presunto", "cupcakes/queijo-presunto.jpg", "10.00", models.CategorySavory, 15},
	{"Cupcake Salgado", "Frango com catupiry", "cupcakes/frango.jpg", "10.50", models.CategorySavory, 15},
	{"Cupcake Fit", "Cacau 70%", "cupcakes/cacau-diet.jpg", "12.00", models.CategorySugarFree, 10},
	{"Cupcake Fit", "Limão", "cupcakes/limao-diet.jpg", "12.00", models.CategorySugarFree, 0},
}

func seedProducts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var categories []models.Category
	if err := db.Find(&categories).Error; err != nil {
		return err
	}
	ids := map[string]uint{}
	for _, c := range categories {
		ids[c.Name] = c.ID
	}

	for _, s := range samples {
		p := models.Product{
			Name:   s.name,
			Flavor: s.flavor,
			Image:  s.image,
			Price:  decimal.RequireFromString(s.price),
			Stock:  s.stock,
		}
		if id, ok := ids[s.category]; ok {
			p.CategoryID = &id
		}
		if err := db.Create(&p).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedStaff creates the dashboard account from ADMIN_USERNAME/ADMIN_PASSWORD.
func seedStaff(db *gorm.DB) error {
	username := config.Get("ADMIN_USERNAME", "admin")
	password := config.Get("ADMIN_PASSWORD", "")
	if password == "" {
		return errors.New("ADMIN_PASSWORD must be set to seed the staff account")
	}

	var existing models.User
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return db.Create(&models.User{
		Username: username,
		Email:    config.Get("ADMIN_EMAIL", "admin@cupcakery.local"),
		CPF:      config.Get("ADMIN_CPF", "000.000.000-00"),
		IsStaff:  true,
		Password: hash,
	}).Error
}
