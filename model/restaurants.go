package model

import (
	domain "michelin-maps/internal/domain/model"
)

// Pagination ページング情報
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// RestaurantsResponse GET /api/restaurants のレスポンス
type RestaurantsResponse struct {
	Data       []domain.Restaurant `json:"data"`
	Count      int                 `json:"count"`
	Pagination Pagination          `json:"pagination"`
}

// FilterOptionsResponse GET /api/restaurants/filters のレスポンス
type FilterOptionsResponse struct {
	Countries []string `json:"countries"`
	Cities    []string `json:"cities"`
	Cuisines  []string `json:"cuisines"`
}

// CitySuggestionsResponse GET /api/cities のレスポンス
type CitySuggestionsResponse struct {
	Cities []domain.City `json:"cities"`
}
