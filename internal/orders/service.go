package orders

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Jirayuth/frame_shop/internal/models"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
)

// Kind selects which of the three order tables an operation works on.
type Kind string

const (
	KindGeneric Kind = "generic"
	KindFrame   Kind = "frame"
	KindPlaque  Kind = "plaque"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindGeneric, KindFrame, KindPlaque:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: unknown order kind %q", ErrValidation, s)
}

type Service struct {
	DB *gorm.DB
}

func (k Kind) model() interface{} {
	switch k {
	case KindFrame:
		return &models.FrameOrder{}
	case KindPlaque:
		return &models.PlaqueOrder{}
	default:
		return &models.Order{}
	}
}

// SetStatus overwrites an order's status. Any transition between valid
// statuses is allowed; only the value itself is checked. Staff-only, which
// the router enforces.
func (s *Service) SetStatus(ctx context.Context, kind Kind, orderID uint, status string) error {
	if !models.ValidStatus(status) {
		return fmt.Errorf("%w: invalid status %q", ErrValidation, status)
	}

	res := s.DB.WithContext(ctx).Model(kind.model()).
		Where("id = ?", orderID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s order %d", ErrNotFound, kind, orderID)
	}
	return nil
}

// Delete permanently removes an order. Generic orders drop their lines in
// the same transaction so no child rows are orphaned.
func (s *Service) Delete(ctx context.Context, kind Kind, orderID uint) error {
	if kind != KindGeneric {
		res := s.DB.WithContext(ctx).Delete(kind.model(), orderID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s order %d", ErrNotFound, kind, orderID)
		}
		return nil
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Order{}, orderID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: generic order %d", ErrNotFound, orderID)
		}
		return nil
	})
}

// ListGeneric returns generic orders newest first, lines included.
func (s *Service) ListGeneric(ctx context.Context, limit, offset int) ([]models.Order, error) {
	var out []models.Order
	err := s.DB.WithContext(ctx).Preload("Items").
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

func (s *Service) ListFrame(ctx context.Context, limit, offset int) ([]models.FrameOrder, error) {
	var out []models.FrameOrder
	err := s.DB.WithContext(ctx).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

func (s *Service) ListPlaque(ctx context.Context, limit, offset int) ([]models.PlaqueOrder, error) {
	var out []models.PlaqueOrder
	err := s.DB.WithContext(ctx).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

// ListForUser returns the customer's own generic orders, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var out []models.Order
	err := s.DB.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}
