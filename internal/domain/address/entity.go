// internal/domain/address/entity.go
package address

import (
	"time"

	"gorm.io/gorm"
)

// Address is a user's delivery address
type Address struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Title       string    `gorm:"not null;size:50" json:"title"`
	FullName    string    `gorm:"not null;size:100" json:"full_name"`
	Phone       string    `gorm:"not null;size:20" json:"phone"`
	City        string    `gorm:"not null;size:50" json:"city"`
	District    string    `gorm:"not null;size:50" json:"district"`
	FullAddress string    `gorm:"not null;size:500" json:"full_address"`
	IsDefault   bool      `gorm:"default:false" json:"is_default"`
	IsActive    bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Address) TableName() string {
	return "addresses"
}

func Active(db *gorm.DB) *gorm.DB {
	return db.Where("addresses.is_active = ?", true)
}

// OneLine renders the address for invoices and order listings
func (a *Address) OneLine() string {
	return a.FullAddress + ", " + a.District + "/" + a.City
}
