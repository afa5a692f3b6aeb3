// internal/pkg/email/notifier.go
package email

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eticaret/storefront/internal/config"
	"github.com/eticaret/storefront/internal/domain/order"
	"github.com/eticaret/storefront/internal/domain/user"
	"github.com/eticaret/storefront/internal/pkg/pdf"
	"github.com/sirupsen/logrus"
)

const sendTimeout = 30 * time.Second

var statusMessages = map[order.OrderStatus]string{
	order.OrderStatusConfirmed: "Siparişiniz onaylandı ve hazırlanmak üzere sıraya alındı.",
	order.OrderStatusPreparing: "Siparişiniz hazırlanıyor.",
	order.OrderStatusShipped:   "Siparişiniz kargoya verildi.",
	order.OrderStatusDelivered: "Siparişiniz teslim edildi. Bizi tercih ettiğiniz için teşekkür ederiz.",
	order.OrderStatusCancelled: "Siparişiniz iptal edildi.",
	order.OrderStatusReturned:  "Siparişinizin iadesi işleme alındı.",
}

// UserLookup resolves the recipient of an order mail
type UserLookup interface {
	GetProfile(ctx context.Context, userID uint) (*user.User, error)
}

// Notifier mails customers about their orders. It implements
// order.EventPublisher; events are queued and sent by a single worker.
type Notifier struct {
	mail     *Service
	users    UserLookup
	currency string
	baseURL  string
	log      *logrus.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan order.Event
	done   chan struct{}
}

// NewNotifier starts the mail worker. Close stops it.
func NewNotifier(cfg *config.Config, mail *Service, users UserLookup, log *logrus.Logger) *Notifier {
	size := cfg.Email.QueueSize
	if size <= 0 {
		size = 100
	}

	n := &Notifier{
		mail:     mail,
		users:    users,
		currency: cfg.Store.Currency,
		baseURL:  cfg.Email.BaseURL,
		log:      log,
		queue:    make(chan order.Event, size),
		done:     make(chan struct{}),
	}
	go n.run()
	return n
}

// Publish queues event. A full queue drops the mail.
func (n *Notifier) Publish(event order.Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return
	}

	select {
	case n.queue <- event:
	default:
		n.log.WithField("order_number", event.OrderNumber).Warn("email queue full, dropping notification")
	}
}

// Close sends what is already queued and stops the worker
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	close(n.queue)
	n.mu.Unlock()

	<-n.done
}

func (n *Notifier) run() {
	defer close(n.done)
	for event := range n.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := n.handle(ctx, event); err != nil {
			n.log.WithError(err).WithFields(logrus.Fields{
				"event":        event.Type,
				"order_number": event.OrderNumber,
			}).Error("order notification failed")
		}
		cancel()
	}
}

func (n *Notifier) handle(ctx context.Context, event order.Event) error {
	customer, err := n.users.GetProfile(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("failed to load customer: %w", err)
	}

	orderURL := fmt.Sprintf("%s/orders/%d", n.baseURL, event.OrderID)

	switch event.Type {
	case order.EventOrderCreated:
		return n.mail.SendOrderConfirmationEmail(ctx, OrderConfirmationData{
			TemplateData: TemplateData{UserName: customer.GetDisplayName()},
			UserEmail:    customer.Email,
			OrderNumber:  event.OrderNumber,
			OrderTotal:   pdf.FormatMoney(event.GrandTotal, n.currency),
			OrderURL:     orderURL,
		})
	case order.EventOrderStatusChanged, order.EventOrderCancelled:
		return n.mail.SendOrderStatusUpdateEmail(ctx, OrderStatusUpdateData{
			TemplateData:  TemplateData{UserName: customer.GetDisplayName()},
			UserEmail:     customer.Email,
			OrderNumber:   event.OrderNumber,
			Status:        event.Status.Label(),
			StatusMessage: statusMessages[event.Status],
			OrderURL:      orderURL,
		})
	}
	return nil
}
