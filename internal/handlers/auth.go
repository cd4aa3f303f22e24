package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Jirayuth/frame_shop/internal/hash"
	"github.com/Jirayuth/frame_shop/internal/models"
	"github.com/Jirayuth/frame_shop/internal/mykafka"
	"github.com/Jirayuth/frame_shop/internal/service/token"
)

type AuthHandler struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
	Producer      *mykafka.Producer
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password required")
	}

	var existing models.User
	err := h.DB.Where("username = ?", req.Username).First(&existing).Error
	if err == nil {
		return echo.NewHTTPError(http.StatusConflict, "user already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: pwHash,
		Role:         token.RoleUser,
		Active:       true,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Producer, "user_events", map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var user models.User
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}
	if !user.Active {
		return echo.NewHTTPError(http.StatusForbidden, "account suspended")
	}

	accessToken, err := token.SignAccessToken(user.ID, user.Role, h.JWTSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	refreshToken, err := token.SignRefreshToken(user.ID, user.Role, h.RefreshSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := token.SaveRefreshToken(h.DB, refreshToken, user.ID, user.Role); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	c.SetCookie(token.CreateCookie("accessToken", accessToken, "/", time.Now().Add(15*time.Minute)))
	c.SetCookie(token.CreateCookie("refreshToken", refreshToken, "/", time.Now().Add(7*24*time.Hour)))

	publish(c, h.Producer, "user_events", map[string]any{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"is_admin":      user.Role == token.RoleAdmin,
	})
}

func (h *AuthHandler) LogOut(c echo.Context) error {
	refreshCookie, err := c.Cookie("refreshToken")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "refresh token missing")
	}

	result := h.DB.Model(&models.RefreshToken{}).
		Where("token = ?", refreshCookie.Value).
		Update("revoked", true)
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, result.Error.Error())
	}

	expired := time.Now().Add(-1 * time.Hour)
	c.SetCookie(token.CreateCookie("accessToken", "", "/", expired))
	c.SetCookie(token.CreateCookie("refreshToken", "", "/", expired))

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
