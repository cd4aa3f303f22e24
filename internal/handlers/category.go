package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Jirayuth/frame_shop/internal/models"
)

type CategoryHandler struct {
	DB *gorm.DB
}

func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	return strings.Join(strings.Fields(s), "-")
}

func (h *CategoryHandler) GetCategories(c echo.Context) error {
	var categories []models.Category
	if err := h.DB.Find(&categories).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name required")
	}
	if req.Slug == "" {
		req.Slug = slugify(req.Name)
	}

	cat := models.Category{Name: req.Name, Slug: req.Slug}
	if err := h.DB.Create(&cat).Error; err != nil {
		return echo.NewHTTPError(http.StatusConflict, "category already exists")
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHandler) PatchCategory(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var cat models.Category
	if err := h.DB.First(&cat, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "category not found")
	}

	if req.Name != "" {
		cat.Name = req.Name
	}
	if req.Slug != "" {
		cat.Slug = req.Slug
	} else if req.Name != "" {
		cat.Slug = slugify(req.Name)
	}

	if err := h.DB.Save(&cat).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	// Products keep their rows; the category reference just goes stale null.
	if err := h.DB.Model(&models.Product{}).
		Where("category_id = ?", id).
		Update("category_id", nil).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.DB.Delete(&models.Category{}, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
