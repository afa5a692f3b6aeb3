// internal/pkg/email/types.go
package email

import (
	"time"
)

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeOrderConfirmation EmailType = "order_confirmation"
	EmailTypeOrderStatusUpdate EmailType = "order_status_update"
)

// Email represents an email message
type Email struct {
	To          []string
	Subject     string
	HTMLContent string
	Type        EmailType
}

// TemplateData contains common data for all email templates
type TemplateData struct {
	SiteName string
	SiteURL  string
	UserName string
	Year     int
}

// OrderConfirmationData contains data for order confirmation email
type OrderConfirmationData struct {
	TemplateData
	UserEmail   string
	OrderNumber string
	OrderTotal  string
	OrderURL    string
}

// OrderStatusUpdateData contains data for order status updates
type OrderStatusUpdateData struct {
	TemplateData
	UserEmail     string
	OrderNumber   string
	Status        string
	StatusMessage string
	OrderURL      string
}

func baseTemplateData(siteName, siteURL, userName string) TemplateData {
	return TemplateData{
		SiteName: siteName,
		SiteURL:  siteURL,
		UserName: userName,
		Year:     time.Now().Year(),
	}
}
