// internal/domain/order/sequence.go
package order

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	orderNumberPrefix = "ORD"
	dayLayout         = "20060102"
	maxDailySequence  = 9999
)

// ErrSequenceExhausted is returned once a day's order numbers run out
var ErrSequenceExhausted = errors.New("daily order number capacity reached")

// OrderSequence is the per-day order number counter
type OrderSequence struct {
	Day       string    `gorm:"primaryKey;size:8" json:"day"`
	LastValue int       `gorm:"not null" json:"last_value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (OrderSequence) TableName() string {
	return "order_sequences"
}

// Sequencer allocates order numbers of the form ORDyyyyMMddNNNN. The
// sequence restarts every day.
type Sequencer struct {
	now func() time.Time
}

// NewSequencer creates a sequencer reading the given clock. A nil clock
// means time.Now.
func NewSequencer(now func() time.Time) *Sequencer {
	if now == nil {
		now = time.Now
	}
	return &Sequencer{now: now}
}

// Prefix returns the order number prefix for the current day
func (s *Sequencer) Prefix() string {
	return orderNumberPrefix + s.now().Format(dayLayout)
}

// Next allocates the next order number on the caller's transaction. The
// counter row stays locked until that transaction ends, so concurrent
// allocations for the same day serialize.
func (s *Sequencer) Next(tx *gorm.DB) (string, error) {
	now := s.now()
	day := now.Format(dayLayout)
	prefix := orderNumberPrefix + day

	seed := 0
	var existing OrderSequence
	err := tx.Where("day = ?", day).First(&existing).Error
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		if seed, err = highestSequence(tx, prefix); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("failed to read order sequence: %w", err)
	}

	row := OrderSequence{Day: day, LastValue: seed + 1, UpdatedAt: now}
	err = tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_value": gorm.Expr("order_sequences.last_value + 1"),
			"updated_at": now,
		}),
	}).Create(&row).Error
	if err != nil {
		return "", fmt.Errorf("failed to advance order sequence: %w", err)
	}

	var current OrderSequence
	if err := tx.Where("day = ?", day).First(&current).Error; err != nil {
		return "", fmt.Errorf("failed to read order sequence: %w", err)
	}

	if current.LastValue > maxDailySequence {
		return "", fmt.Errorf("%w: %s", ErrSequenceExhausted, day)
	}
	return FormatOrderNumber(prefix, current.LastValue), nil
}

// FormatOrderNumber joins a day prefix and a sequence value. Values above
// 9999 would print five digits; Next never hands them out.
func FormatOrderNumber(prefix string, seq int) string {
	return fmt.Sprintf("%s%04d", prefix, seq)
}

// highestSequence returns the largest sequence already used with prefix,
// so a fresh counter never collides with rows written before it existed.
func highestSequence(tx *gorm.DB, prefix string) (int, error) {
	var last string
	err := tx.Model(&Order{}).
		Select("order_number").
		Where("order_number LIKE ?", prefix+"%").
		Order("LENGTH(order_number) DESC, order_number DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read last order number: %w", err)
	}
	if last == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(strings.TrimPrefix(last, prefix))
	if err != nil {
		return 0, fmt.Errorf("malformed order number %q: %w", last, err)
	}
	return n, nil
}
