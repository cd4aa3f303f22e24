package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Jirayuth/frame_shop/internal/dashboard"
	"github.com/Jirayuth/frame_shop/internal/models"
	"github.com/Jirayuth/frame_shop/internal/mykafka"
	"github.com/Jirayuth/frame_shop/internal/orders"
	"github.com/Jirayuth/frame_shop/internal/service/token"
	"github.com/Jirayuth/frame_shop/internal/util"
)

// AdminHandler serves the staff dashboard and order/user management. Every
// route it backs sits behind the admin middleware.
type AdminHandler struct {
	DB        *gorm.DB
	Orders    *orders.Service
	Dashboard *dashboard.Service
	Producer  *mykafka.Producer
}

func (h *AdminHandler) GetDashboard(c echo.Context) error {
	totals, err := h.Dashboard.Compute(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, totals)
}

func (h *AdminHandler) ListOrders(c echo.Context) error {
	kind, err := orders.ParseKind(c.Param("kind"))
	if err != nil {
		return httpError(err)
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, limit := util.Calculate(page, size)

	ctx := c.Request().Context()
	switch kind {
	case orders.KindFrame:
		out, err := h.Orders.ListFrame(ctx, limit, from)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, out)
	case orders.KindPlaque:
		out, err := h.Orders.ListPlaque(ctx, limit, from)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, out)
	default:
		out, err := h.Orders.ListGeneric(ctx, limit, from)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, out)
	}
}

func (h *AdminHandler) UpdateOrderStatus(c echo.Context) error {
	kind, err := orders.ParseKind(c.Param("kind"))
	if err != nil {
		return httpError(err)
	}
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil || orderID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Orders.SetStatus(c.Request().Context(), kind, uint(orderID), req.Status); err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "order_events", map[string]any{
		"type":    "order_status_updated",
		"userID":  token.UserID(c),
		"kind":    string(kind),
		"orderID": orderID,
		"status":  req.Status,
	})
	return c.JSON(http.StatusOK, echo.Map{"id": orderID, "status": req.Status})
}

func (h *AdminHandler) DeleteOrder(c echo.Context) error {
	kind, err := orders.ParseKind(c.Param("kind"))
	if err != nil {
		return httpError(err)
	}
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil || orderID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	if err := h.Orders.Delete(c.Request().Context(), kind, uint(orderID)); err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "order_events", map[string]any{
		"type":    "order_deleted",
		"userID":  token.UserID(c),
		"kind":    string(kind),
		"orderID": orderID,
	})
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	var users []models.User
	if err := h.DB.Order("id DESC").Find(&users).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, users)
}

// ToggleUserActive flips a user's active flag. Superusers and the acting
// staff member stay untouchable.
func (h *AdminHandler) ToggleUserActive(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	if user.Superuser || user.ID == token.UserID(c) {
		return echo.NewHTTPError(http.StatusForbidden, "cannot suspend a superuser or yourself")
	}

	user.Active = !user.Active
	if err := h.DB.Save(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	if user.Superuser || user.ID == token.UserID(c) {
		return echo.NewHTTPError(http.StatusForbidden, "cannot delete a superuser or yourself")
	}

	if err := h.DB.Delete(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
