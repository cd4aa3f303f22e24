package cart

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

// Identity is the caller of a cart operation: an authenticated user
// (UserID != 0), or an anonymous browser session.
type Identity struct {
	UserID     uint
	SessionKey string
}

func (id Identity) Authenticated() bool { return id.UserID != 0 }

type Service struct {
	DB *gorm.DB
}

// Resolve maps an identity to exactly one cart, creating it if none exists.
//
// For an authenticated caller the user's cart wins. Failing that, an
// unclaimed cart left over from the caller's anonymous session is claimed:
// ownership moves to the user and the session key is cleared, so no orphan
// cart is left behind. For an anonymous caller a cart that has since been
// claimed by a user counts as not found and a fresh session cart is created.
func (s *Service) Resolve(ctx context.Context, id Identity) (*models.Cart, error) {
	if !id.Authenticated() && id.SessionKey == "" {
		return nil, fmt.Errorf("%w: no user and no session", ErrValidation)
	}

	var cart models.Cart
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if id.Authenticated() {
			err := tx.Where("user_id = ?", id.UserID).First(&cart).Error
			if err == nil {
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			if id.SessionKey != "" {
				err = tx.Where("session_key = ? AND user_id IS NULL", id.SessionKey).First(&cart).Error
				if err == nil {
					cart.UserID = &id.UserID
					cart.SessionKey = nil
					return tx.Save(&cart).Error
				}
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
			}

			cart = models.Cart{UserID: &id.UserID}
			return tx.Create(&cart).Error
		}

		// A claimed cart (user set) belongs to someone now; treat it as
		// not found rather than reusing it.
		err := tx.Where("session_key = ? AND user_id IS NULL", id.SessionKey).First(&cart).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		key := id.SessionKey
		cart = models.Cart{SessionKey: &key}
		return tx.Create(&cart).Error
	})
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Add puts quantity units of a product into the identity's cart, merging
// with an existing line for the same product. Stock is not checked here;
// checkout enforces it.
func (s *Service) Add(ctx context.Context, id Identity, productID uint, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	cart, err := s.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := s.DB.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
		}
		return nil, err
	}

	item := models.CartItem{
		CartID:    cart.ID,
		ProductID: productID,
		Quantity:  uint(quantity),
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("cart_id = ? AND product_id = ?", cart.ID, productID).
			Update("quantity", gorm.Expr("quantity + ?", quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID).First(&item).Error
		}
		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateLine sets a line's quantity. A non-positive quantity deletes the
// line; a quantity above the product's stock is clamped to the stock, with
// the clamped flag telling the caller a warning is due. The line must belong
// to the identity's cart.
func (s *Service) UpdateLine(ctx context.Context, id Identity, lineID uint, quantity int) (item *models.CartItem, clamped bool, err error) {
	cart, err := s.Resolve(ctx, id)
	if err != nil {
		return nil, false, err
	}

	var line models.CartItem
	if err := s.DB.WithContext(ctx).Where("id = ? AND cart_id = ?", lineID, cart.ID).First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fmt.Errorf("%w: cart line %d", ErrNotFound, lineID)
		}
		return nil, false, err
	}

	if quantity <= 0 {
		if err := s.DB.WithContext(ctx).Delete(&line).Error; err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}

	var product models.Product
	if err := s.DB.WithContext(ctx).First(&product, line.ProductID).Error; err != nil {
		return nil, false, err
	}
	if quantity > product.Stock {
		quantity = product.Stock
		clamped = true
	}
	if quantity <= 0 {
		if err := s.DB.WithContext(ctx).Delete(&line).Error; err != nil {
			return nil, false, err
		}
		return nil, true, nil
	}

	line.Quantity = uint(quantity)
	if err := s.DB.WithContext(ctx).Save(&line).Error; err != nil {
		return nil, false, err
	}
	return &line, clamped, nil
}

// RemoveLine deletes a line from the identity's cart. A line ID alone is not
// authorization; lines outside the resolved cart read as not found.
func (s *Service) RemoveLine(ctx context.Context, id Identity, lineID uint) error {
	cart, err := s.Resolve(ctx, id)
	if err != nil {
		return err
	}

	res := s.DB.WithContext(ctx).
		Where("id = ? AND cart_id = ?", lineID, cart.ID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: cart line %d", ErrNotFound, lineID)
	}
	return nil
}

// Line pairs a cart line with its product for display; the price shown is
// the live catalog price, not a snapshot.
type Line struct {
	Item      models.CartItem `json:"item"`
	Product   models.Product  `json:"product"`
	LineTotal float64         `json:"line_total"`
}

func (s *Service) Detail(ctx context.Context, id Identity) (*models.Cart, []Line, float64, error) {
	cart, err := s.Resolve(ctx, id)
	if err != nil {
		return nil, nil, 0, err
	}

	var items []models.CartItem
	if err := s.DB.WithContext(ctx).Where("cart_id = ?", cart.ID).Find(&items).Error; err != nil {
		return nil, nil, 0, err
	}

	lines := make([]Line, 0, len(items))
	var total float64
	for _, it := range items {
		var p models.Product
		if err := s.DB.WithContext(ctx).First(&p, it.ProductID).Error; err != nil {
			return nil, nil, 0, err
		}
		lt := float64(it.Quantity) * p.Price
		lines = append(lines, Line{Item: it, Product: p, LineTotal: lt})
		total += lt
	}
	return cart, lines, total, nil
}

// TotalPrice sums quantity times current catalog price over the cart.
func (s *Service) TotalPrice(ctx context.Context, id Identity) (float64, error) {
	_, _, total, err := s.Detail(ctx, id)
	return total, err
}
