package services

import (
	"context"
	"fmt"
	"html/template"

	"gorm.io/gorm"

	"github.com/cupcakery/storefront/app/models"
	"github.com/cupcakery/storefront/config"
	"github.com/cupcakery/storefront/pkg/event"
	"github.com/cupcakery/storefront/pkg/logger"
	"github.com/cupcakery/storefront/pkg/mail"
	"github.com/cupcakery/storefront/pkg/queue"
)

const jobOrderConfirmation = "orders.confirmation"

var confirmationTmpl = template.Must(template.New("order_confirmation").Parse(`<h2>Pedido #{{.Order.ID}} recebido</h2>
<p>Olá, {{.User.Username}}! Seu pagamento foi confirmado e o pedido já está na nossa cozinha.</p>
<table>
{{range .Order.Items}}<tr><td>{{.Quantity}}x {{if .Product}}{{.Product.Name}} ({{.Product.Flavor}}){{else}}produto removido{{end}}</td><td>R$ {{.LineTotal.StringFixed 2}}</td></tr>
{{end}}</table>
<p>Frete: R$ {{.Order.Shipping.StringFixed 2}}<br>Total: <strong>R$ {{.Order.Total.StringFixed 2}}</strong></p>
<p>Referência do pagamento: {{.Order.Reference}}</p>`))

// SendOrderConfirmation e-mails the customer (and the shop, when
// SHOP_NOTIFY_ADDRESS is set) about a new order.
type SendOrderConfirmation struct {
	OrderID uint `json:"order_id"`

	db *gorm.DB
}

func (SendOrderConfirmation) JobName() string { return jobOrderConfirmation }

func (j *SendOrderConfirmation) Handle(ctx context.Context) error {
	var order models.Order
	err := j.db.WithContext(ctx).
		Preload("User").
		Preload("Items.Product").
		First(&order, j.OrderID).Error
	if err != nil {
		return fmt.Errorf("load order %d: %w", j.OrderID, err)
	}
	if order.User == nil || order.User.Email == "" {
		logger.WithCtx(ctx).Info("mail: order has no reachable customer", "order_id", order.ID)
		return nil
	}

	data := map[string]interface{}{"Order": order, "User": order.User}
	recipients := []string{order.User.Email}
	if shop := config.ShopNotifyAddress(); shop != "" {
		recipients = append(recipients, shop)
	}
	return mail.To(recipients...).
		Subject(fmt.Sprintf("Pedido #%d recebido", order.ID)).
		Template(confirmationTmpl, data).
		Send()
}

// RegisterListeners wires the order.placed event to the confirmation job.
func RegisterListeners(db *gorm.DB) {
	queue.Register(jobOrderConfirmation, func() queue.Job {
		return &SendOrderConfirmation{db: db}
	})
	event.Listen(EventOrderPlaced, func(ctx context.Context, payload any) error {
		placed, ok := payload.(OrderPlaced)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}
		return queue.Dispatch(&SendOrderConfirmation{OrderID: placed.OrderID, db: db})
	})
}
