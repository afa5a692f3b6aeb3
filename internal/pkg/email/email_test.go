package email

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/eticaret/storefront/internal/config"
	"github.com/eticaret/storefront/internal/domain/order"
	"github.com/eticaret/storefront/internal/domain/user"
	"github.com/eticaret/storefront/internal/pkg/apperr"
	"github.com/eticaret/storefront/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []*Email
	err  error
}

func (r *recordingSender) Send(_ context.Context, email *Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, email)
	return nil
}

type users map[uint]*user.User

func (u users) GetProfile(_ context.Context, id uint) (*user.User, error) {
	if found, ok := u[id]; ok {
		return found, nil
	}
	return nil, apperr.NotFound("user")
}

func testConfig() *config.Config {
	return &config.Config{
		Store: config.StoreConfig{Currency: "TRY"},
		Email: config.EmailConfig{
			FromName:  "E-Ticaret",
			FromEmail: "noreply@eticaret.local",
			BaseURL:   "https://magaza.example",
			QueueSize: 10,
		},
	}
}

func newTestNotifier(sender Sender) *Notifier {
	cfg := testConfig()
	log := logger.Discard()
	customers := users{7: {ID: 7, Email: "ayse@example.com", FirstName: "Ayşe", LastName: "Yılmaz"}}
	return NewNotifier(cfg, NewService(cfg, sender, log), customers, log)
}

func TestNotifierOrderConfirmation(t *testing.T) {
	sender := &recordingSender{}
	n := newTestNotifier(sender)

	n.Publish(order.Event{
		Type:        order.EventOrderCreated,
		OrderID:     3,
		OrderNumber: "ORD202610150001",
		UserID:      7,
		Status:      order.OrderStatusPending,
		GrandTotal:  22500,
	})
	n.Close()

	require.Len(t, sender.sent, 1)
	mail := sender.sent[0]
	assert.Equal(t, []string{"ayse@example.com"}, mail.To)
	assert.Equal(t, EmailTypeOrderConfirmation, mail.Type)
	assert.Equal(t, "Sipariş Onayı - #ORD202610150001", mail.Subject)
	assert.Contains(t, mail.HTMLContent, "Ayşe Yılmaz")
	assert.Contains(t, mail.HTMLContent, "225,00 TRY")
	assert.Contains(t, mail.HTMLContent, "https://magaza.example/orders/3")
}

func TestNotifierStatusUpdate(t *testing.T) {
	sender := &recordingSender{}
	n := newTestNotifier(sender)

	n.Publish(order.Event{Type: order.EventOrderStatusChanged, OrderID: 3, OrderNumber: "ORD1", UserID: 7, Status: order.OrderStatusShipped})
	n.Publish(order.Event{Type: order.EventOrderCancelled, OrderID: 4, OrderNumber: "ORD2", UserID: 7, Status: order.OrderStatusCancelled})
	n.Close()

	require.Len(t, sender.sent, 2)
	assert.Equal(t, EmailTypeOrderStatusUpdate, sender.sent[0].Type)
	assert.Contains(t, sender.sent[0].HTMLContent, "kargoya verildi")
	assert.Contains(t, sender.sent[1].Subject, "ORD2")
}

func TestNotifierSkipsUnknownUserAndSendFailures(t *testing.T) {
	sender := &recordingSender{}
	n := newTestNotifier(sender)
	n.Publish(order.Event{Type: order.EventOrderCreated, OrderNumber: "ORD3", UserID: 99})
	n.Close()
	assert.Empty(t, sender.sent)

	failing := &recordingSender{err: errors.New("relay down")}
	n = newTestNotifier(failing)
	n.Publish(order.Event{Type: order.EventOrderCreated, OrderNumber: "ORD4", UserID: 7})
	n.Close()
	assert.Empty(t, failing.sent)
}

func TestNotifierCloseIsIdempotent(t *testing.T) {
	n := newTestNotifier(&recordingSender{})
	n.Close()
	n.Close()

	assert.NotPanics(t, func() {
		n.Publish(order.Event{Type: order.EventOrderCreated, UserID: 7})
	})
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("E-Ticaret", "noreply@eticaret.local", &Email{
		To:          []string{"a@example.com", "b@example.com"},
		Subject:     "Sipariş Onayı",
		HTMLContent: "<p>merhaba</p>",
	}))

	head, body, found := strings.Cut(msg, "\r\n\r\n")
	require.True(t, found)
	assert.Equal(t, "<p>merhaba</p>", body)
	assert.Contains(t, head, "From: E-Ticaret <noreply@eticaret.local>")
	assert.Contains(t, head, "To: a@example.com, b@example.com")
	assert.Contains(t, head, "Subject: =?utf-8?q?")
	assert.Contains(t, head, "Content-Type: text/html")
}

func TestSMTPSenderRequiresHost(t *testing.T) {
	err := NewSMTPSender(testConfig()).Send(context.Background(), &Email{To: []string{"a@example.com"}})
	assert.Error(t, err)
}
