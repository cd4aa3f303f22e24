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

type FrameHandler struct {
	DB       *gorm.DB
	Checkout *checkout.Service
	Files    *storage.FileStore
	Producer *mykafka.Producer
}

// CreateOrder opens a custom frame order from the customer's photo and the
// chosen size/style/mounting. Confirmation follows as a second step.
func (h *FrameHandler) CreateOrder(c echo.Context) error {
	userID := token.UserID(c)

	fh, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "customer image required")
	}
	imagePath, err := h.Files.Save(fh)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	order, err := h.Checkout.CreateFrameOrder(c.Request().Context(), userID, checkout.FrameInput{
		UploadedImage:  imagePath,
		SizeOption:     c.FormValue("size_option"),
		StyleOption:    c.FormValue("style_option"),
		MountingOption: c.FormValue("mounting_option"),
		Note:           c.FormValue("note"),
	})
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "order_events", map[string]any{
		"type":    "frame_order_created",
		"userID":  userID,
		"orderID": order.ID,
	})
	return c.JSON(http.StatusCreated, order)
}

// ConfirmOrder finalizes quantity, shipping and payment on an open frame
// order.
func (h *FrameHandler) ConfirmOrder(c echo.Context) error {
	userID := token.UserID(c)

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil || orderID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	quantity, err := strconv.Atoi(c.FormValue("quantity"))
	if err != nil {
		quantity = 1
	}

	var slip string
	if fh, err := c.FormFile("payment_slip"); err == nil {
		if slip, err = h.Files.Save(fh); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	order, err := h.Checkout.ConfirmFrameOrder(c.Request().Context(), userID, uint(orderID), checkout.ConfirmInput{
		Quantity:       quantity,
		ShippingMethod: c.FormValue("shipping_method"),
		PaymentMethod:  c.FormValue("payment_method"),
		PaymentSlip:    slip,
	})
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "order_events", map[string]any{
		"type":    "frame_order_confirmed",
		"userID":  userID,
		"orderID": order.ID,
		"total":   order.TotalPrice,
	})
	return c.JSON(http.StatusOK, order)
}

// ListMine returns the caller's frame orders, newest first.
func (h *FrameHandler) ListMine(c echo.Context) error {
	userID := token.UserID(c)

	var out []models.FrameOrder
	if err := h.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}
