package token

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const (
	accessTTL  = 15 * time.Minute
	refreshTTL = 7 * 24 * time.Hour

	RoleUser  = "user"
	RoleAdmin = "admin"
)

type TokenService struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
}

func CreateCookie(name, value, path string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (t *TokenService) parseAccess(raw string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(raw, func(j *jwt.Token) (interface{}, error) {
		if _, ok := j.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.JWTSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("invalid token")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

func (t *TokenService) RotateToken(rawRefresh string) (newAccess, newRefresh string, claims jwt.MapClaims, err error) {
	claims, err = ValidateRefresh(rawRefresh, t.RefreshSecret, t.DB)
	if err != nil {
		return "", "", nil, err
	}

	userID := uint(claims["sub"].(float64))
	role, _ := claims["role"].(string)

	newAccess, err = SignAccessToken(userID, role, t.JWTSecret)
	if err != nil {
		return "", "", nil, err
	}
	newRefresh, err = SignRefreshToken(userID, role, t.RefreshSecret)
	if err != nil {
		return "", "", nil, err
	}
	if err = SaveRefreshToken(t.DB, newRefresh, userID, role); err != nil {
		return "", "", nil, err
	}
	return newAccess, newRefresh, claims, nil
}

// authenticate resolves the caller from the access cookie, rotating through
// the refresh token when the access token has expired.
func (t *TokenService) authenticate(c echo.Context) (jwt.MapClaims, error) {
	if asCookie, err := c.Cookie("accessToken"); err == nil {
		claims, perr := t.parseAccess(asCookie.Value)
		if perr == nil {
			return claims, nil
		}
		if !errors.Is(perr, jwt.ErrTokenExpired) {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}
	}

	rfCookie, err := c.Cookie("refreshToken")
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}
	newAccess, newRefresh, claims, err := t.RotateToken(rfCookie.Value)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "cannot rotate token")
	}

	c.SetCookie(CreateCookie("accessToken", newAccess, "/", time.Now().Add(accessTTL)))
	c.SetCookie(CreateCookie("refreshToken", newRefresh, "/", time.Now().Add(refreshTTL)))
	return claims, nil
}

// AutoRefreshMiddleware requires an authenticated caller.
func (t *TokenService) AutoRefreshMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := t.authenticate(c)
		if err != nil {
			return err
		}
		setUserContext(c, claims)
		return next(c)
	}
}

// AutoRefreshMiddlewareAdmin requires an authenticated staff caller. This is
// the single capability check for every admin action.
func (t *TokenService) AutoRefreshMiddlewareAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := t.authenticate(c)
		if err != nil {
			return err
		}
		if role, _ := claims["role"].(string); role != RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
		}
		setUserContext(c, claims)
		return next(c)
	}
}

// OptionalAuth sets the user context when valid credentials are present and
// lets anonymous callers through untouched. Cart browsing uses this: guests
// keep a session cart, logged-in users get theirs.
func (t *TokenService) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if asCookie, err := c.Cookie("accessToken"); err == nil {
			if claims, perr := t.parseAccess(asCookie.Value); perr == nil {
				setUserContext(c, claims)
				return next(c)
			}
		}
		if rfCookie, err := c.Cookie("refreshToken"); err == nil {
			if newAccess, newRefresh, claims, rerr := t.RotateToken(rfCookie.Value); rerr == nil {
				c.SetCookie(CreateCookie("accessToken", newAccess, "/", time.Now().Add(accessTTL)))
				c.SetCookie(CreateCookie("refreshToken", newRefresh, "/", time.Now().Add(refreshTTL)))
				setUserContext(c, claims)
			}
		}
		return next(c)
	}
}

func setUserContext(c echo.Context, claims jwt.MapClaims) {
	if sub, ok := claims["sub"].(float64); ok {
		c.Set("userID", uint(sub))
	}
	if role, ok := claims["role"].(string); ok {
		c.Set("role", role)
	}
}

// UserID returns the authenticated caller's ID, zero for anonymous callers.
func UserID(c echo.Context) uint {
	if v, ok := c.Get("userID").(uint); ok {
		return v
	}
	return 0
}

func IsStaff(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == RoleAdmin
}
