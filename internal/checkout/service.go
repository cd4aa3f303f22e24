package checkout

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Jirayuth/frame_shop/internal/models"
	"github.com/Jirayuth/frame_shop/internal/pricing"
)

var (
	ErrValidation        = errors.New("validation")
	ErrNotFound          = errors.New("not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrSlipRequired      = errors.New("payment slip required")
)

type Service struct {
	DB *gorm.DB
}

// Input carries the shipping/payment choices of a checkout submission.
// PaymentSlip is the stored path of the uploaded slip, empty if none.
type Input struct {
	ShippingMethod string
	PaymentMethod  string
	PaymentSlip    string
}

func (in Input) validateSlip() error {
	if in.PaymentMethod == models.PaymentTransfer && in.PaymentSlip == "" {
		return ErrSlipRequired
	}
	return nil
}

// takeStock decrements a product's stock inside tx, serialized by a
// conditional update so two concurrent checkouts cannot drive it negative.
func takeStock(tx *gorm.DB, productID, quantity uint) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: product %d", ErrInsufficientStock, productID)
	}
	return nil
}

// CheckoutCart converts the user's cart into an order: one header, one
// snapshot line per cart line, one stock decrement per line, cart cleared.
// All of it commits or none of it does; any line short on stock rejects the
// whole checkout.
func (s *Service) CheckoutCart(ctx context.Context, userID uint, in Input) (*models.Order, error) {
	if err := in.validateSlip(); err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, err
	}

	var items []models.CartItem
	if err := s.DB.WithContext(ctx).Where("cart_id = ?", cart.ID).Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	var order models.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var subtotal float64
		products := make(map[uint]models.Product, len(items))
		for _, it := range items {
			var p models.Product
			if err := tx.First(&p, it.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: product %d", ErrNotFound, it.ProductID)
				}
				return err
			}
			products[it.ProductID] = p
			subtotal += float64(it.Quantity) * p.Price
		}

		shippingCost := pricing.ShippingCost(in.ShippingMethod)
		order = models.Order{
			UserID:         userID,
			ShippingMethod: in.ShippingMethod,
			ShippingCost:   shippingCost,
			TotalPrice:     subtotal + shippingCost,
			PaymentMethod:  in.PaymentMethod,
			PaymentSlip:    in.PaymentSlip,
			Status:         models.StatusPending,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, it := range items {
			oi := models.OrderItem{
				OrderID:   order.ID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: products[it.ProductID].Price,
			}
			if err := tx.Create(&oi).Error; err != nil {
				return err
			}
			order.Items = append(order.Items, oi)

			if err := takeStock(tx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}

		// The cart row itself stays; only its lines go.
		return tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CheckoutSingle is the buy-now path: one product, hard stock validation up
// front, no cart involved.
func (s *Service) CheckoutSingle(ctx context.Context, userID, productID uint, quantity int, in Input) (*models.Order, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	if err := in.validateSlip(); err != nil {
		return nil, err
	}

	var product models.Product
	if err := s.DB.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
		}
		return nil, err
	}
	if quantity > product.Stock {
		return nil, fmt.Errorf("%w: product %d has %d left", ErrInsufficientStock, productID, product.Stock)
	}

	qty := uint(quantity)
	shippingCost := pricing.ShippingCost(in.ShippingMethod)

	var order models.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order = models.Order{
			UserID:         userID,
			ShippingMethod: in.ShippingMethod,
			ShippingCost:   shippingCost,
			TotalPrice:     pricing.GrandTotal(product.Price, qty, in.ShippingMethod),
			PaymentMethod:  in.PaymentMethod,
			PaymentSlip:    in.PaymentSlip,
			Status:         models.StatusPending,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		oi := models.OrderItem{
			OrderID:   order.ID,
			ProductID: productID,
			Quantity:  qty,
			UnitPrice: product.Price,
		}
		if err := tx.Create(&oi).Error; err != nil {
			return err
		}
		order.Items = append(order.Items, oi)

		return takeStock(tx, productID, qty)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

type FrameInput struct {
	UploadedImage  string
	SizeOption     string
	StyleOption    string
	MountingOption string
	Note           string
}

// CreateFrameOrder opens a frame order at the estimated single-unit price;
// quantity, shipping and payment come in at confirmation.
func (s *Service) CreateFrameOrder(ctx context.Context, userID uint, in FrameInput) (*models.FrameOrder, error) {
	if in.UploadedImage == "" {
		return nil, fmt.Errorf("%w: customer image required", ErrValidation)
	}
	unit, ok := pricing.FramePrice(in.SizeOption)
	if !ok {
		return nil, fmt.Errorf("%w: unknown frame size %q", ErrValidation, in.SizeOption)
	}

	order := models.FrameOrder{
		UserID:         userID,
		UploadedImage:  in.UploadedImage,
		SizeOption:     in.SizeOption,
		StyleOption:    in.StyleOption,
		MountingOption: in.MountingOption,
		Quantity:       1,
		Note:           in.Note,
		TotalPrice:     unit,
		Status:         models.StatusPending,
	}
	if err := s.DB.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

type ConfirmInput struct {
	Quantity       int
	ShippingMethod string
	PaymentMethod  string
	PaymentSlip    string
}

// ConfirmFrameOrder finalizes quantity, shipping and payment and recomputes
// the grand total from the size table. Only the owner may confirm.
func (s *Service) ConfirmFrameOrder(ctx context.Context, userID, orderID uint, in ConfirmInput) (*models.FrameOrder, error) {
	var order models.FrameOrder
	if err := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: frame order %d", ErrNotFound, orderID)
		}
		return nil, err
	}

	if in.Quantity < 1 {
		in.Quantity = 1
	}
	if err := (Input{PaymentMethod: in.PaymentMethod, PaymentSlip: in.PaymentSlip}).validateSlip(); err != nil {
		return nil, err
	}

	unit, ok := pricing.FramePrice(order.SizeOption)
	if !ok {
		return nil, fmt.Errorf("%w: unknown frame size %q", ErrValidation, order.SizeOption)
	}

	order.Quantity = uint(in.Quantity)
	order.ShippingMethod = in.ShippingMethod
	order.ShippingCost = pricing.ShippingCost(in.ShippingMethod)
	order.PaymentMethod = in.PaymentMethod
	order.PaymentSlip = in.PaymentSlip
	order.TotalPrice = pricing.GrandTotal(unit, order.Quantity, in.ShippingMethod)
	order.Status = models.StatusPending

	if err := s.DB.WithContext(ctx).Save(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

type PlaqueInput struct {
	DeceasedName  string
	DeceasedPhoto string
	BirthDate     string
	DeathDate     string
	StoneStyle    string
	Size          string
	Note          string
}

// CreatePlaqueOrder opens a plaque order priced from the size table;
// shipping and the slip come in at checkout.
func (s *Service) CreatePlaqueOrder(ctx context.Context, userID uint, in PlaqueInput) (*models.PlaqueOrder, error) {
	if in.DeceasedName == "" {
		return nil, fmt.Errorf("%w: deceased name required", ErrValidation)
	}
	if in.DeceasedPhoto == "" {
		return nil, fmt.Errorf("%w: photo required", ErrValidation)
	}
	price, ok := pricing.PlaquePrice(in.Size)
	if !ok {
		return nil, fmt.Errorf("%w: unknown plaque size %q", ErrValidation, in.Size)
	}

	order := models.PlaqueOrder{
		UserID:        userID,
		DeceasedName:  in.DeceasedName,
		DeceasedPhoto: in.DeceasedPhoto,
		StoneStyle:    in.StoneStyle,
		Size:          in.Size,
		Note:          in.Note,
		Price:         price,
		Status:        models.StatusPending,
	}
	if bd, err := parseDate(in.BirthDate); err == nil {
		order.BirthDate = bd
	}
	if dd, err := parseDate(in.DeathDate); err == nil {
		order.DeathDate = dd
	}

	if err := s.DB.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// CheckoutPlaque sets shipping on an open plaque order and derives the final
// price as plaque price plus shipping. Only the owner may check out.
func (s *Service) CheckoutPlaque(ctx context.Context, userID, orderID uint, in ConfirmInput) (*models.PlaqueOrder, error) {
	var order models.PlaqueOrder
	if err := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: plaque order %d", ErrNotFound, orderID)
		}
		return nil, err
	}

	if in.PaymentMethod == "" {
		in.PaymentMethod = order.PaymentMethod
	}
	if err := (Input{PaymentMethod: in.PaymentMethod, PaymentSlip: in.PaymentSlip}).validateSlip(); err != nil {
		return nil, err
	}

	order.ShippingMethod = in.ShippingMethod
	order.ShippingCost = pricing.ShippingCost(in.ShippingMethod)
	order.PaymentMethod = in.PaymentMethod
	order.PaymentSlip = in.PaymentSlip
	order.FinalPrice = order.Price + order.ShippingCost
	order.Status = models.StatusPending

	if err := s.DB.WithContext(ctx).Save(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}
