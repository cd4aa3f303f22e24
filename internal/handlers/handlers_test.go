package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Jirayuth/frame_shop/internal/cart"
	"github.com/Jirayuth/frame_shop/internal/hash"
	"github.com/Jirayuth/frame_shop/internal/models"
	"github.com/Jirayuth/frame_shop/internal/service/token"
)

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	DB     *gorm.DB
	Auth   *AuthHandler
	Cart   *CartHandler
	Tokens *token.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
	))

	jwtSecret := []byte("test-jwt-secret")
	refreshSecret := []byte("test-refresh-secret")

	return &testEnv{
		T:      t,
		E:      echo.New(),
		DB:     db,
		Auth:   &AuthHandler{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret},
		Cart:   &CartHandler{Cart: &cart.Service{DB: db}},
		Tokens: &token.TokenService{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret},
	}
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return rec, env.E.NewContext(req, rec)
}

func register(t *testing.T, env *testEnv, username string) {
	t.Helper()
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/register", map[string]string{
		"username": username,
		"password": "password",
	})
	require.NoError(t, env.Auth.Register(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func login(t *testing.T, env *testEnv, username string) (access, refresh string) {
	t.Helper()
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/login", map[string]string{
		"username": username,
		"password": "password",
	})
	require.NoError(t, env.Auth.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken, resp.RefreshToken
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	register(t, env, "somsri")
	access, refresh := login(t, env, "somsri")
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	// Registering the same username again conflicts.
	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/register", map[string]string{
		"username": "somsri",
		"password": "password",
	})
	err := env.Auth.Register(c)
	require.Error(t, err)
	require.Equal(t, http.StatusConflict, err.(*echo.HTTPError).Code)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "somsri")

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/login", map[string]string{
		"username": "somsri",
		"password": "wrong",
	})
	err := env.Auth.Login(c)
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, err.(*echo.HTTPError).Code)
}

func TestLoginRejectsSuspendedAccount(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "somsri")
	require.NoError(t, env.DB.Model(&models.User{}).Where("username = ?", "somsri").Update("active", false).Error)

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/login", map[string]string{
		"username": "somsri",
		"password": "password",
	})
	err := env.Auth.Login(c)
	require.Error(t, err)
	require.Equal(t, http.StatusForbidden, err.(*echo.HTTPError).Code)
}

func TestLogOutRevokesRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "somsri")
	_, refresh := login(t, env, "somsri")

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/logout", nil,
		&http.Cookie{Name: "refreshToken", Value: refresh, Path: "/"})
	require.NoError(t, env.Auth.LogOut(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.RefreshToken
	require.NoError(t, env.DB.Where("token = ?", refresh).First(&stored).Error)
	require.True(t, stored.Revoked)
}

func TestGuestCartViaSessionCookie(t *testing.T) {
	env := newTestEnv(t)

	p := models.Product{Name: "frame", Description: "wooden", Price: 100, Stock: 10}
	require.NoError(t, env.DB.Create(&p).Error)

	session := &http.Cookie{Name: "cartSession", Value: "guest-session", Path: "/"}

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/cart/items", map[string]any{
		"product_id": p.ID,
		"quantity":   2,
	}, session)
	require.NoError(t, env.Cart.AddToCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, c = env.doJSONRequest(http.MethodGet, "/api/v1/cart", nil, session)
	require.NoError(t, env.Cart.GetCart(c))

	var resp struct {
		Items      []cart.Line `json:"items"`
		TotalPrice float64     `json:"total_price"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	require.Equal(t, 200.0, resp.TotalPrice)
}

func TestFirstCartRequestMintsSessionCookie(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/cart", nil)
	require.NoError(t, env.Cart.GetCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var minted bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "cartSession" && ck.Value != "" {
			minted = true
		}
	}
	require.True(t, minted)
}

func TestAdminMiddlewareBlocksCustomers(t *testing.T) {
	env := newTestEnv(t)

	pwHash, err := hash.HashPassword("password")
	require.NoError(t, err)
	require.NoError(t, env.DB.Create(&models.User{
		Username: "staff", PasswordHash: pwHash, Role: token.RoleAdmin, Active: true,
	}).Error)

	register(t, env, "customer")

	env.E.GET("/admin/ping", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, env.Tokens.AutoRefreshMiddlewareAdmin)

	serve := func(access string) int {
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: access, Path: "/"})
		rec := httptest.NewRecorder()
		env.E.ServeHTTP(rec, req)
		return rec.Code
	}

	customerAccess, _ := login(t, env, "customer")
	require.Equal(t, http.StatusForbidden, serve(customerAccess))

	staffAccess, _ := login(t, env, "staff")
	require.Equal(t, http.StatusOK, serve(staffAccess))
}
