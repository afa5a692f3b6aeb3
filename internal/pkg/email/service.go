// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/eticaret/storefront/internal/config"
	"github.com/sirupsen/logrus"
)

var templates = map[EmailType]*template.Template{
	EmailTypeOrderConfirmation: template.Must(template.New("order_confirmation").Parse(layoutTemplate + orderConfirmationTemplate)),
	EmailTypeOrderStatusUpdate: template.Must(template.New("order_status_update").Parse(layoutTemplate + orderStatusUpdateTemplate)),
}

// Service renders and sends storefront mail
type Service struct {
	config config.EmailConfig
	sender Sender
	log    *logrus.Logger
}

// NewService creates a new email service
func NewService(cfg *config.Config, sender Sender, log *logrus.Logger) *Service {
	return &Service{config: cfg.Email, sender: sender, log: log}
}

// SendOrderConfirmationEmail sends order confirmation email
func (s *Service) SendOrderConfirmationEmail(ctx context.Context, data OrderConfirmationData) error {
	data.TemplateData = baseTemplateData(s.config.FromName, s.config.BaseURL, data.UserName)

	htmlContent, err := render(EmailTypeOrderConfirmation, data)
	if err != nil {
		return err
	}

	return s.send(ctx, &Email{
		To:          []string{data.UserEmail},
		Subject:     fmt.Sprintf("Sipariş Onayı - #%s", data.OrderNumber),
		HTMLContent: htmlContent,
		Type:        EmailTypeOrderConfirmation,
	})
}

// SendOrderStatusUpdateEmail sends order status update notification
func (s *Service) SendOrderStatusUpdateEmail(ctx context.Context, data OrderStatusUpdateData) error {
	data.TemplateData = baseTemplateData(s.config.FromName, s.config.BaseURL, data.UserName)

	htmlContent, err := render(EmailTypeOrderStatusUpdate, data)
	if err != nil {
		return err
	}

	return s.send(ctx, &Email{
		To:          []string{data.UserEmail},
		Subject:     fmt.Sprintf("Sipariş Durumu - #%s: %s", data.OrderNumber, data.Status),
		HTMLContent: htmlContent,
		Type:        EmailTypeOrderStatusUpdate,
	})
}

func (s *Service) send(ctx context.Context, email *Email) error {
	if err := s.sender.Send(ctx, email); err != nil {
		return fmt.Errorf("failed to send %s email: %w", email.Type, err)
	}
	s.log.WithFields(logrus.Fields{
		"type":       email.Type,
		"recipients": len(email.To),
	}).Info("email sent")
	return nil
}

func render(kind EmailType, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates[kind].ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", kind, err)
	}
	return buf.String(), nil
}

const layoutTemplate = `{{define "layout"}}<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.SiteName}}</title>
</head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4;">
    <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
        {{template "content" .}}
        <br>
        <p>{{.SiteName}} Ekibi</p>
        <hr>
        <p style="font-size: 12px; color: #666;">&copy; {{.Year}} {{.SiteName}}</p>
    </div>
</body>
</html>{{end}}`

const orderConfirmationTemplate = `{{define "content"}}
        <h2>Siparişiniz Alındı!</h2>
        <p>Sayın {{.UserName}},</p>
        <p>Siparişiniz başarıyla alınmıştır.</p>
        <p><strong>Sipariş Numarası:</strong> #{{.OrderNumber}}</p>
        <p><strong>Toplam Tutar:</strong> {{.OrderTotal}}</p>
        <p>Siparişinizin durumunu <a href="{{.OrderURL}}">hesabınızdan</a> takip edebilirsiniz.</p>
        <p>Teşekkür ederiz!</p>
{{end}}`

const orderStatusUpdateTemplate = `{{define "content"}}
        <h2>Sipariş Durumu Güncellendi</h2>
        <p>Sayın {{.UserName}},</p>
        <p><strong>#{{.OrderNumber}}</strong> numaralı siparişinizin yeni durumu: <strong>{{.Status}}</strong></p>
        <p>{{.StatusMessage}}</p>
        <p><a href="{{.OrderURL}}">Siparişi görüntüle</a></p>
{{end}}`
