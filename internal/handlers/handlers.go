package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Jirayuth/frame_shop/internal/cart"
	"github.com/Jirayuth/frame_shop/internal/checkout"
	"github.com/Jirayuth/frame_shop/internal/mykafka"
	"github.com/Jirayuth/frame_shop/internal/orders"
	"github.com/Jirayuth/frame_shop/internal/service/token"
)

const sessionCookie = "cartSession"

// identity builds the cart identity for the current request, minting a
// session cookie for first-time guests.
func identity(c echo.Context) cart.Identity {
	id := cart.Identity{UserID: token.UserID(c)}

	if ck, err := c.Cookie(sessionCookie); err == nil && ck.Value != "" {
		id.SessionKey = ck.Value
		return id
	}

	key := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    key,
		Path:     "/",
		Expires:  time.Now().Add(30 * 24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	id.SessionKey = key
	return id
}

// httpError maps service sentinel errors onto HTTP responses; everything
// unrecognized is a 500.
func httpError(err error) error {
	switch {
	case errors.Is(err, cart.ErrNotFound),
		errors.Is(err, checkout.ErrNotFound),
		errors.Is(err, orders.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, cart.ErrValidation),
		errors.Is(err, checkout.ErrValidation),
		errors.Is(err, orders.ErrValidation),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrSlipRequired):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, checkout.ErrInsufficientStock):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func publish(c echo.Context, p *mykafka.Producer, topic string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}
