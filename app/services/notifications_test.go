package services_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupcakery/storefront/app/models"
	"github.com/cupcakery/storefront/app/services"
	"github.com/cupcakery/storefront/pkg/mail"
	"github.com/cupcakery/storefront/pkg/queue"
)

type outbox struct {
	mu   sync.Mutex
	sent []string
	to   [][]string
}

func (o *outbox) Send(_ mail.SMTP, _ string, to []string, raw []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, string(raw))
	o.to = append(o.to, to)
	return nil
}

func (o *outbox) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.sent)
}

func TestOrderConfirmationMail(t *testing.T) {
	s := newShop(t, services.SimulatedPayment{})
	box := &outbox{}
	t.Cleanup(mail.UseSender(box))

	queue.SetDriver(queue.NewMemoryDriver(10))
	ctx, cancel := context.WithCancel(context.Background())
	wg := queue.StartWorkers(ctx, 1)
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	services.RegisterListeners(s.db)

	user := makeUser(t, s.db, "dora")
	p := makeProduct(t, s.db, "Clássico", "Baunilha", "12.00", 5)
	order, err := s.checkout.Confirm(context.Background(), user.ID, cartWith(t, map[uint]int{p.ID: 1}), models.DeliveryShip)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return box.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	box.mu.Lock()
	defer box.mu.Unlock()
	assert.Equal(t, []string{"dora@example.com"}, box.to[0])
	body := box.sent[0]
	assert.True(t, strings.Contains(body, "Baunilha"), "lists the ordered flavor")
	assert.Contains(t, body, order.Reference)
}

func TestConfirmationJobSkipsOrphanOrder(t *testing.T) {
	s := newShop(t, services.SimulatedPayment{})
	box := &outbox{}
	t.Cleanup(mail.UseSender(box))

	o := models.Order{Total: money("20.00"), Shipping: money("10.00"), PaymentConfirmed: true}
	require.NoError(t, s.db.Omit("Items").Create(&o).Error)

	queue.SetDriver(queue.NewMemoryDriver(10))
	ctx, cancel := context.WithCancel(context.Background())
	wg := queue.StartWorkers(ctx, 1)
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	services.RegisterListeners(s.db)
	require.NoError(t, queue.Dispatch(&services.SendOrderConfirmation{OrderID: o.ID}))

	assert.Never(t, func() bool { return box.count() > 0 }, 200*time.Millisecond, 10*time.Millisecond)
}
