package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Delivery types.
const (
	DeliveryShip   = "entrega"
	DeliveryPickup = "retirada"
)

// Order statuses, in fulfilment order, plus cancelled.
const (
	StatusReceived       = "recebido"
	StatusPreparing      = "em_preparo"
	StatusOutForDelivery = "saiu_para_entrega"
	StatusDelivered      = "entregue"
	StatusCancelled      = "cancelado"
)

var statusLabels = map[string]string{
	StatusReceived:       "Recebido",
	StatusPreparing:      "Em Preparo",
	StatusOutForDelivery: "Saiu para Entrega",
	StatusDelivered:      "Entregue",
	StatusCancelled:      "Cancelado",
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	_, ok := statusLabels[s]
	return ok
}

// ValidDelivery reports whether d is a known delivery type.
func ValidDelivery(d string) bool {
	return d == DeliveryShip || d == DeliveryPickup
}

// Order is a completed purchase. The user reference survives user deletion
// as NULL.
type Order struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	UserID           *uint           `gorm:"index" json:"user_id"`
	User             *User           `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	DeliveryType     string          `gorm:"size:10;not null" json:"delivery_type"`
	Total            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	Shipping         decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"shipping"`
	Status           string          `gorm:"size:20;not null;index" json:"status"`
	PaymentConfirmed bool            `gorm:"not null;index" json:"payment_confirmed"`
	Reference        string          `gorm:"size:36;not null;uniqueIndex" json:"reference"`
	Items            []OrderItem     `json:"items,omitempty"`
	CreatedAt        time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// StatusLabel is the human-readable status.
func (o Order) StatusLabel() string {
	return statusLabels[o.Status]
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.Reference == "" {
		o.Reference = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = StatusReceived
	}
	if o.DeliveryType == "" {
		o.DeliveryType = DeliveryShip
	}
	return nil
}

// OrderItem is one line of an order with the unit price at purchase time.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	Order     *Order          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ProductID *uint           `gorm:"index" json:"product_id"`
	Product   *Product        `gorm:"constraint:OnDelete:SET NULL" json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"unit_price"`
}

// LineTotal is UnitPrice × Quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
