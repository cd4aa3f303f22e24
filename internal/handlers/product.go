package handlers

import (
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Jirayuth/frame_shop/internal/models"
	"github.com/Jirayuth/frame_shop/internal/mykafka"
	"github.com/Jirayuth/frame_shop/internal/service/search"
	"github.com/Jirayuth/frame_shop/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	Index    string
}

func (h *ProductHandler) index(c echo.Context, p *models.Product) {
	if h.ES == nil {
		return
	}
	if err := search.IndexProduct(c.Request().Context(), h.ES, h.Index, p); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}
	return c.JSON(http.StatusOK, product)
}

// GetProducts lists the catalog with optional category filter, name/description
// substring search and pagination.
func (h *ProductHandler) GetProducts(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.Product{})
	if cat := c.QueryParam("category"); cat != "" {
		q = q.Where("category_id = ?", cat)
	}
	if term := c.QueryParam("q"); term != "" {
		like := "%" + term + "%"
		q = q.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var products []models.Product
	if err := q.Offset(from).Limit(limit).Find(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": products})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Stock       int     `json:"stock"`
		CategoryID  *uint   `json:"category_id"`
		Image       string  `json:"image"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name required")
	}
	if req.Price < 0 || req.Stock < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "price and stock must not be negative")
	}

	prod := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		Image:       req.Image,
	}
	if err := h.DB.Create(&prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.index(c, &prod)
	publish(c, h.Producer, "product_events", map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
	})
	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Stock       int     `json:"stock"`
		CategoryID  *uint   `json:"category_id"`
		Image       string  `json:"image"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	prod.Name = req.Name
	prod.Description = req.Description
	prod.Price = req.Price
	prod.Stock = req.Stock
	prod.CategoryID = req.CategoryID
	prod.Image = req.Image

	if err := h.DB.Save(&prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.index(c, &prod)
	publish(c, h.Producer, "product_events", map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"name":      prod.Name,
	})
	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.DB.Delete(&models.Product{}, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if h.ES != nil {
		if err := search.DeleteProduct(c.Request().Context(), h.ES, h.Index, uint(id)); err != nil {
			c.Logger().Errorf("ES delete error: %v", err)
		}
	}
	publish(c, h.Producer, "product_events", map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	return c.NoContent(http.StatusNoContent)
}
