package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Jirayuth/frame_shop/internal/cart"
	"github.com/Jirayuth/frame_shop/internal/mykafka"
)

type CartHandler struct {
	Cart     *cart.Service
	Producer *mykafka.Producer
}

func (h *CartHandler) GetCart(c echo.Context) error {
	id := identity(c)

	crt, lines, total, err := h.Cart.Detail(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "cart_events", map[string]any{
		"type":   "get_cart",
		"userID": id.UserID,
		"cartID": crt.ID,
	})
	return c.JSON(http.StatusOK, echo.Map{
		"cart":        crt,
		"items":       lines,
		"total_price": total,
	})
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	id := identity(c)

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  int  `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Cart.Add(c.Request().Context(), id, req.ProductID, req.Quantity)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "cart_events", map[string]any{
		"type":      "cart_item_added",
		"userID":    id.UserID,
		"productID": item.ProductID,
		"quantity":  item.Quantity,
	})
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	id := identity(c)

	lineID, err := strconv.Atoi(c.Param("id"))
	if err != nil || lineID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, clamped, err := h.Cart.UpdateLine(c.Request().Context(), id, uint(lineID), req.Quantity)
	if err != nil {
		return httpError(err)
	}

	if item == nil {
		publish(c, h.Producer, "cart_events", map[string]any{
			"type":   "cart_item_deleted",
			"userID": id.UserID,
			"lineID": lineID,
		})
		return c.JSON(http.StatusOK, echo.Map{"deleted_item": lineID})
	}

	publish(c, h.Producer, "cart_events", map[string]any{
		"type":     "cart_item_updated",
		"userID":   id.UserID,
		"lineID":   item.ID,
		"quantity": item.Quantity,
	})
	resp := echo.Map{"item": item}
	if clamped {
		resp["warning"] = "quantity limited to available stock"
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CartHandler) DeleteItem(c echo.Context) error {
	id := identity(c)

	lineID, err := strconv.Atoi(c.Param("id"))
	if err != nil || lineID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.Cart.RemoveLine(c.Request().Context(), id, uint(lineID)); err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "cart_events", map[string]any{
		"type":   "cart_item_deleted",
		"userID": id.UserID,
		"lineID": lineID,
	})
	return c.JSON(http.StatusOK, echo.Map{"deleted_item": lineID})
}
