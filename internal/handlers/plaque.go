package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Jirayuth/frame_shop/internal/checkout"
	"github.com/Jirayuth/frame_shop/internal/models"
	"github.com/Jirayuth/frame_shop/internal/mykafka"
	"github.com/Jirayuth/frame_shop/internal/service/token"
	"github.com/Jirayuth/frame_shop/internal/storage"
)

type PlaqueHandler struct {
	DB       *gorm.DB
	Checkout *checkout.Service
	Files    *storage.FileStore
	Producer *mykafka.Producer
}

// CreateOrder opens a memorial plaque order with the engraving details;
// shipping and the slip follow at checkout.
func (h *PlaqueHandler) CreateOrder(c echo.Context) error {
	userID := token.UserID(c)

	fh, err := c.FormFile("deceased_photo")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "photo required")
	}
	photoPath, err := h.Files.Save(fh)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	order, err := h.Checkout.CreatePlaqueOrder(c.Request().Context(), userID, checkout.PlaqueInput{
		DeceasedName:  c.FormValue("deceased_name"),
		DeceasedPhoto: photoPath,
		BirthDate:     c.FormValue("birth_date"),
		DeathDate:     c.FormValue("death_date"),
		StoneStyle:    c.FormValue("stone_style"),
		Size:          c.FormValue("size"),
		Note:          c.FormValue("note"),
	})
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "order_events", map[string]any{
		"type":    "plaque_order_created",
		"userID":  userID,
		"orderID": order.ID,
	})
	return c.JSON(http.StatusCreated, order)
}

// CheckoutOrder sets shipping and payment on an open plaque order and
// locks in the final price.
func (h *PlaqueHandler) CheckoutOrder(c echo.Context) error {
	userID := token.UserID(c)

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil || orderID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var slip string
	if fh, err := c.FormFile("payment_slip"); err == nil {
		if slip, err = h.Files.Save(fh); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	order, err := h.Checkout.CheckoutPlaque(c.Request().Context(), userID, uint(orderID), checkout.ConfirmInput{
		ShippingMethod: c.FormValue("shipping_method"),
		PaymentMethod:  c.FormValue("payment_method"),
		PaymentSlip:    slip,
	})
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "order_events", map[string]any{
		"type":    "plaque_order_checked_out",
		"userID":  userID,
		"orderID": order.ID,
		"total":   order.FinalPrice,
	})
	return c.JSON(http.StatusOK, order)
}

// ListMine returns the caller's plaque orders, newest first.
func (h *PlaqueHandler) ListMine(c echo.Context) error {
	userID := token.UserID(c)

	var out []models.PlaqueOrder
	if err := h.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}
