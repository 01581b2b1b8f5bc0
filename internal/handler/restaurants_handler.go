package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	domainmodel "michelin-maps/internal/domain/model"
	"michelin-maps/internal/domain/repository"
	"michelin-maps/model"
)

// RestaurantsHandler レストランデータソースのHTTPハンドラー
type RestaurantsHandler struct {
	restaurantsRepo repository.RestaurantsRepository
}

// NewRestaurantsHandler RestaurantsHandlerの新しいインスタンスを作成
func NewRestaurantsHandler(restaurantsRepo repository.RestaurantsRepository) *RestaurantsHandler {
	return &RestaurantsHandler{
		restaurantsRepo: restaurantsRepo,
	}
}

// ListRestaurants GET /api/restaurants - 条件付きレストラン一覧の取得
// 絞り込みパラメータはすべて任意で、省略は「そのフィールドに制約なし」を意味する
func (h *RestaurantsHandler) ListRestaurants(c *gin.Context) {
	filters := &repository.RestaurantFilters{
		Stars:       parseAwardList(c.Query("stars")),
		Countries:   splitList(c.Query("countries")),
		Cities:      splitList(c.Query("cities")),
		Cuisines:    splitList(c.Query("cuisines")),
		PriceLevels: parsePriceList(c.Query("priceLevel")),
		Search:      c.Query("search"),
	}

	if v := c.Query("greenStar"); v != "" {
		greenStar, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_parameter",
				"message": "greenStar must be a boolean literal",
			})
			return
		}
		filters.GreenStar = &greenStar
	}

	limit := parseNonNegativeInt(c.Query("limit"), 0)
	offset := parseNonNegativeInt(c.Query("offset"), 0)

	restaurants, count, err := h.restaurantsRepo.List(c.Request.Context(), filters, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to get restaurants: " + err.Error(),
		})
		return
	}

	if restaurants == nil {
		restaurants = []domainmodel.Restaurant{}
	}

	c.JSON(http.StatusOK, model.RestaurantsResponse{
		Data:  restaurants,
		Count: count,
		Pagination: model.Pagination{
			Limit:  limit,
			Offset: offset,
			Total:  count,
		},
	})
}

// GetRestaurant GET /api/restaurants/:id - レストラン詳細の取得
func (h *RestaurantsHandler) GetRestaurant(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "missing_parameter",
			"message": "Restaurant ID is required",
		})
		return
	}

	restaurant, err := h.restaurantsRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Restaurant not found: " + id,
		})
		return
	}

	c.JSON(http.StatusOK, restaurant)
}

// GetFilterOptions GET /api/restaurants/filters - 絞り込み選択肢の取得
func (h *RestaurantsHandler) GetFilterOptions(c *gin.Context) {
	options, err := h.restaurantsRepo.FilterOptions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to load filter options: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, model.FilterOptionsResponse{
		Countries: options.Countries,
		Cities:    options.Cities,
		Cuisines:  options.Cuisines,
	})
}

// splitList カンマ区切りパラメータをスライスへ分解する（空要素は捨てる）
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var result []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

// parseAwardList アワード値のリストを解析し、列挙外の値を捨てる
func parseAwardList(v string) []int {
	var result []int
	for _, part := range splitList(v) {
		n, err := strconv.Atoi(part)
		if err != nil || !domainmodel.IsValidAward(n) {
			continue
		}
		result = append(result, n)
	}
	return result
}

// parsePriceList 価格帯のリストを解析し、1〜4以外の値を捨てる
func parsePriceList(v string) []int {
	var result []int
	for _, part := range splitList(v) {
		n, err := strconv.Atoi(part)
		if err != nil || !domainmodel.IsValidPriceLevel(n) {
			continue
		}
		result = append(result, n)
	}
	return result
}

func parseNonNegativeInt(v string, fallback int) int {
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
