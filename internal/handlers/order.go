package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Jirayuth/frame_shop/internal/orders"
	"github.com/Jirayuth/frame_shop/internal/service/token"
)

type OrderHandler struct {
	Orders *orders.Service
}

// ListMine returns the caller's catalog orders, newest first, lines included.
func (h *OrderHandler) ListMine(c echo.Context) error {
	out, err := h.Orders.ListForUser(c.Request().Context(), token.UserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}
