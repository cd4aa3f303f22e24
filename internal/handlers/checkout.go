package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Jirayuth/frame_shop/internal/checkout"
	"github.com/Jirayuth/frame_shop/internal/mykafka"
	"github.com/Jirayuth/frame_shop/internal/service/token"
	"github.com/Jirayuth/frame_shop/internal/storage"
)

type CheckoutHandler struct {
	Checkout *checkout.Service
	Files    *storage.FileStore
	Producer *mykafka.Producer
}

// slipPath stores an uploaded payment slip, if any, and returns its path.
// Absence is not an error here; the checkout service decides whether the
// payment method demands a slip.
func (h *CheckoutHandler) slipPath(c echo.Context) (string, error) {
	fh, err := c.FormFile("payment_slip")
	if err != nil {
		return "", nil
	}
	return h.Files.Save(fh)
}

func (h *CheckoutHandler) checkoutInput(c echo.Context) (checkout.Input, error) {
	slip, err := h.slipPath(c)
	if err != nil {
		return checkout.Input{}, err
	}
	return checkout.Input{
		ShippingMethod: c.FormValue("shipping_method"),
		PaymentMethod:  c.FormValue("payment_method"),
		PaymentSlip:    slip,
	}, nil
}

// CheckoutCart turns the caller's cart into a pending order.
func (h *CheckoutHandler) CheckoutCart(c echo.Context) error {
	userID := token.UserID(c)

	in, err := h.checkoutInput(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	order, err := h.Checkout.CheckoutCart(c.Request().Context(), userID, in)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "order_events", map[string]any{
		"type":    "order_created",
		"userID":  userID,
		"orderID": order.ID,
		"total":   order.TotalPrice,
	})
	return c.JSON(http.StatusCreated, order)
}

// BuyNow checks out a single product directly, skipping the cart.
func (h *CheckoutHandler) BuyNow(c echo.Context) error {
	userID := token.UserID(c)

	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil || productID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	quantity, err := strconv.Atoi(c.FormValue("quantity"))
	if err != nil {
		quantity = 1
	}

	in, err := h.checkoutInput(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	order, err := h.Checkout.CheckoutSingle(c.Request().Context(), userID, uint(productID), quantity, in)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "order_events", map[string]any{
		"type":    "order_created",
		"userID":  userID,
		"orderID": order.ID,
		"total":   order.TotalPrice,
	})
	return c.JSON(http.StatusCreated, order)
}
