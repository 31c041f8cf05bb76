package models

import (
	"time"

	"github.com/cupcakery/storefront/pkg/auth"
)

// User is a shop customer or staff member.
type User struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Username          string    `gorm:"size:150;not null;uniqueIndex" json:"username"`
	Email             string    `gorm:"size:254;not null" json:"email"`
	CPF               string    `gorm:"column:cpf;size:14;not null;uniqueIndex" json:"cpf"`
	Phone             string    `gorm:"size:15" json:"phone"`
	Address           string    `gorm:"type:text" json:"address"`
	ReceivePromotions bool      `gorm:"not null" json:"receive_promotions"`
	IsStaff           bool      `gorm:"not null" json:"is_staff"`
	Password          string    `gorm:"size:255;not null" json:"-"` // bcrypt hash
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Role maps the staff flag to an auth role.
func (u User) Role() string {
	if u.IsStaff {
		return auth.RoleStaff
	}
	return auth.RoleCustomer
}
