// internal/domain/address/service.go
package address

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eticaret/storefront/internal/pkg/apperr"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service handles address book business logic. Every operation is scoped
// to the owning user.
type Service struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewService creates a new address service
func NewService(db *gorm.DB, log *logrus.Logger) *Service {
	return &Service{
		db:  db,
		log: log,
	}
}

// AddressRequest represents address creation and update data
type AddressRequest struct {
	Title       string `json:"title" binding:"required,max=50"`
	FullName    string `json:"full_name" binding:"required,max=100"`
	Phone       string `json:"phone" binding:"required,max=20"`
	City        string `json:"city" binding:"required,max=50"`
	District    string `json:"district" binding:"required,max=50"`
	FullAddress string `json:"full_address" binding:"required,max=500"`
	IsDefault   bool   `json:"is_default"`
}

func (r *AddressRequest) normalize() error {
	fields := []*string{&r.Title, &r.FullName, &r.Phone, &r.City, &r.District, &r.FullAddress}
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
		if *f == "" {
			return apperr.Validation("all address fields are required")
		}
	}
	if !validPhone(r.Phone) {
		return apperr.Validation("invalid phone number")
	}
	return nil
}

// validPhone accepts digits with optional leading + and spaces, dashes or
// parentheses between them.
func validPhone(phone string) bool {
	digits := 0
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 10 && digits <= 15
}

func owned(db *gorm.DB, addressID, userID uint) *gorm.DB {
	return db.Scopes(Active).Where("id = ? AND user_id = ?", addressID, userID)
}

// GetUserAddresses returns the user's active addresses, default first
func (s *Service) GetUserAddresses(ctx context.Context, userID uint) ([]Address, error) {
	var addresses []Address
	err := s.db.WithContext(ctx).
		Scopes(Active).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC, id DESC").
		Find(&addresses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve addresses: %w", err)
	}
	return addresses, nil
}

// GetAddress returns one active address of the user
func (s *Service) GetAddress(ctx context.Context, addressID, userID uint) (*Address, error) {
	var address Address
	if err := owned(s.db.WithContext(ctx), addressID, userID).First(&address).Error; err != nil {
		return nil, apperr.FromGorm(err, "address")
	}
	return &address, nil
}

// GetDefaultAddress returns the user's default address, or the newest one
// when none is flagged
func (s *Service) GetDefaultAddress(ctx context.Context, userID uint) (*Address, error) {
	var address Address
	err := s.db.WithContext(ctx).
		Scopes(Active).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC, id DESC").
		First(&address).Error
	if err != nil {
		return nil, apperr.FromGorm(err, "address")
	}
	return &address, nil
}

// CreateAddress creates a new address for a user. The user's first address
// becomes the default.
func (s *Service) CreateAddress(ctx context.Context, userID uint, req *AddressRequest) (*Address, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var existing int64
	if err := tx.Model(&Address{}).Scopes(Active).Where("user_id = ?", userID).Count(&existing).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to count addresses: %w", err)
	}

	isDefault := req.IsDefault || existing == 0
	if isDefault {
		if err := unsetDefault(tx, userID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	address := Address{
		UserID:      userID,
		Title:       req.Title,
		FullName:    req.FullName,
		Phone:       req.Phone,
		City:        req.City,
		District:    req.District,
		FullAddress: req.FullAddress,
		IsDefault:   isDefault,
		IsActive:    true,
	}

	if err := tx.Create(&address).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &address, nil
}

// UpdateAddress overwrites the address fields. Returns false when the
// address is not an active address of the user.
func (s *Service) UpdateAddress(ctx context.Context, addressID, userID uint, req *AddressRequest) (bool, error) {
	if err := req.normalize(); err != nil {
		return false, err
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var address Address
	if err := owned(tx, addressID, userID).First(&address).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to retrieve address: %w", err)
	}

	if req.IsDefault && !address.IsDefault {
		if err := unsetDefault(tx, userID); err != nil {
			tx.Rollback()
			return false, err
		}
	}

	updates := map[string]interface{}{
		"title":        req.Title,
		"full_name":    req.FullName,
		"phone":        req.Phone,
		"city":         req.City,
		"district":     req.District,
		"full_address": req.FullAddress,
	}
	if req.IsDefault {
		updates["is_default"] = true
	}

	if err := tx.Model(&address).Updates(updates).Error; err != nil {
		tx.Rollback()
		return false, fmt.Errorf("failed to update address: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

// DeleteAddress deactivates an address. Rows are kept because orders
// reference them.
func (s *Service) DeleteAddress(ctx context.Context, addressID, userID uint) (bool, error) {
	result := owned(s.db.WithContext(ctx).Model(&Address{}), addressID, userID).
		Updates(map[string]interface{}{"is_active": false, "is_default": false})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete address: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// SetDefaultAddress makes the address the user's only default
func (s *Service) SetDefaultAddress(ctx context.Context, addressID, userID uint) (bool, error) {
	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var count int64
	if err := owned(tx.Model(&Address{}), addressID, userID).Count(&count).Error; err != nil {
		tx.Rollback()
		return false, fmt.Errorf("failed to check address: %w", err)
	}
	if count == 0 {
		tx.Rollback()
		return false, nil
	}

	if err := unsetDefault(tx, userID); err != nil {
		tx.Rollback()
		return false, err
	}

	if err := tx.Model(&Address{}).Where("id = ?", addressID).Update("is_default", true).Error; err != nil {
		tx.Rollback()
		return false, fmt.Errorf("failed to set default address: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

// IsUsableAddress reports whether the address exists, is active and belongs
// to the user. It runs on the caller's transaction.
func (s *Service) IsUsableAddress(tx *gorm.DB, addressID, userID uint) (bool, error) {
	var count int64
	if err := owned(tx.Model(&Address{}), addressID, userID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check address: %w", err)
	}
	return count > 0, nil
}

func unsetDefault(tx *gorm.DB, userID uint) error {
	err := tx.Model(&Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
	if err != nil {
		return fmt.Errorf("failed to unset default addresses: %w", err)
	}
	return nil
}
