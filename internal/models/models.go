package models

import (
	"time"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusCancelled  = "cancelled"
)

// PaidStatuses are the statuses the dashboard counts as realized revenue.
var PaidStatuses = []string{StatusProcessing, StatusShipped}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusCancelled:
		return true
	}
	return false
}

const (
	PaymentTransfer = "transfer"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
	Active       bool   `gorm:"default:true"             json:"active"`
	Superuser    bool   `gorm:"default:false"            json:"superuser"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"          json:"id"`
	Token     string `gorm:"unique;not null"     json:"token"`
	UserID    uint   `gorm:"index;not null"      json:"user_id"`
	Role      string `json:"role"`
	ExpiresAt int64  `gorm:"not null"            json:"expires_at"`
	Revoked   bool   `gorm:"default:false"       json:"revoked"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"unique;not null"          json:"name"`
	Slug string `gorm:"unique;not null"          json:"slug"`
}

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID  *uint     `gorm:"index"                    json:"category_id"`
	Name        string    `gorm:"not null"                 json:"name"`
	Description string    `gorm:"not null"                 json:"description"`
	Price       float64   `gorm:"not null"                 json:"price"`
	Stock       int       `gorm:"default:0"                json:"stock"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Cart belongs to a user or, before login, to an anonymous session.
// Once claimed by a user the session key is cleared.
type Cart struct {
	ID         uint       `gorm:"primaryKey"   json:"id"`
	UserID     *uint      `gorm:"index"        json:"user_id"`
	SessionKey *string    `gorm:"index"        json:"session_key"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"                                       json:"id"`
	CartID    uint `gorm:"index;not null;uniqueIndex:ux_cart_items_product" json:"cart_id"`
	ProductID uint `gorm:"not null;uniqueIndex:ux_cart_items_product"       json:"product_id"`
	Quantity  uint `gorm:"default:1;check:quantity>0"                       json:"quantity"`
}

type Order struct {
	ID             uint        `gorm:"primaryKey"     json:"id"`
	UserID         uint        `gorm:"index;not null" json:"user_id"`
	ShippingMethod string      `gorm:"not null"       json:"shipping_method"`
	ShippingCost   float64     `gorm:"not null"       json:"shipping_cost"`
	TotalPrice     float64     `gorm:"not null"       json:"total_price"`
	PaymentMethod  string      `gorm:"not null"       json:"payment_method"`
	PaymentSlip    string      `json:"payment_slip"`
	Status         string      `gorm:"index;not null" json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	Items          []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem snapshots the unit price at purchase time; it never changes
// when the catalog price does.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey"     json:"id"`
	OrderID   uint    `gorm:"index;not null" json:"order_id"`
	ProductID uint    `gorm:"not null"       json:"product_id"`
	Quantity  uint    `gorm:"not null"       json:"quantity"`
	UnitPrice float64 `gorm:"not null"       json:"unit_price"`
}

// FrameOrder is a single-line custom order; the customization itself is the
// line item, priced from a fixed size table.
type FrameOrder struct {
	ID             uint      `gorm:"primaryKey"       json:"id"`
	UserID         uint      `gorm:"index;not null"   json:"user_id"`
	UploadedImage  string    `gorm:"not null"         json:"uploaded_image"`
	SizeOption     string    `gorm:"not null"         json:"size_option"`
	StyleOption    string    `gorm:"default:wood"     json:"style_option"`
	MountingOption string    `json:"mounting_option"`
	Quantity       uint      `gorm:"default:1"        json:"quantity"`
	Note           string    `json:"note"`
	ShippingMethod string    `gorm:"default:standard" json:"shipping_method"`
	ShippingCost   float64   `json:"shipping_cost"`
	PaymentMethod  string    `gorm:"default:transfer" json:"payment_method"`
	PaymentSlip    string    `json:"payment_slip"`
	TotalPrice     float64   `json:"total_price"`
	Status         string    `gorm:"index;not null"   json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

type PlaqueOrder struct {
	ID             uint       `gorm:"primaryKey"            json:"id"`
	UserID         uint       `gorm:"index;not null"        json:"user_id"`
	DeceasedName   string     `gorm:"not null"              json:"deceased_name"`
	DeceasedPhoto  string     `gorm:"not null"              json:"deceased_photo"`
	BirthDate      *time.Time `json:"birth_date"`
	DeathDate      *time.Time `json:"death_date"`
	StoneStyle     string     `gorm:"default:black_granite" json:"stone_style"`
	Size           string     `gorm:"default:15x20"         json:"size"`
	Note           string     `json:"note"`
	ShippingMethod string     `gorm:"default:pickup"        json:"shipping_method"`
	ShippingCost   float64    `json:"shipping_cost"`
	PaymentMethod  string     `gorm:"default:transfer"      json:"payment_method"`
	PaymentSlip    string     `json:"payment_slip"`
	Price          float64    `json:"price"`
	FinalPrice     float64    `json:"final_price"`
	Status         string     `gorm:"index;not null"        json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
}
