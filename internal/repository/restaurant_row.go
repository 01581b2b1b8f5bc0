package repository

import (
	"michelin-maps/internal/domain/model"
)

// restaurantRow restaurantsテーブルの行をそのまま受け取るための構造体
// DB側のカラム名（latitude/longitude）とAPI側のフィールド名（lat/lng）の
// 差異はここで吸収し、変換はtoRestaurantの1箇所に集約する
type restaurantRow struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Location    string   `json:"location"`
	City        string   `json:"city"`
	Country     string   `json:"country"`
	Stars       int      `json:"stars"`
	Cuisine     string   `json:"cuisine"`
	PriceLevel  int      `json:"price_level"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Phone       *string  `json:"phone"`
	Website     *string  `json:"website"`
	MichelinURL *string  `json:"michelin_url"`
	GreenStar   bool     `json:"green_star"`
	Facilities  []string `json:"facilities"`
	Description string   `json:"description"`
}

// toRestaurant 行をドメインモデルへ変換する
// 既知の全フィールドを漏れなく写す（変換はこの関数だけが行う）
func (row *restaurantRow) toRestaurant() model.Restaurant {
	facilities := row.Facilities
	if facilities == nil {
		facilities = []string{}
	}
	return model.Restaurant{
		ID:          row.ID,
		Name:        row.Name,
		Address:     row.Address,
		Location:    row.Location,
		City:        row.City,
		Country:     row.Country,
		Stars:       row.Stars,
		Cuisine:     row.Cuisine,
		PriceLevel:  row.PriceLevel,
		Lat:         row.Latitude,
		Lng:         row.Longitude,
		Phone:       row.Phone,
		Website:     row.Website,
		MichelinURL: row.MichelinURL,
		GreenStar:   row.GreenStar,
		Facilities:  facilities,
		Description: row.Description,
	}
}
