package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/Jirayuth/frame_shop/internal/service/search"
	"github.com/Jirayuth/frame_shop/internal/util"
)

type SearchHandler struct {
	ES    *elasticsearch.Client
	Index string
}

// Search answers GET /search?q=...&page=...&size=... against the product
// index.
func (h *SearchHandler) Search(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, limit := util.Calculate(page, size)

	total, products, err := search.Search(c.Request().Context(), h.ES, h.Index, query, from, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total":    total,
		"products": products,
	})
}
