// Package dataset はミシュランの生データセット（restaurants_v2.json）の
// 読み込みと正規化を提供する。シーディングと都市ディレクトリ生成の両方が使う。
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"michelin-maps/internal/domain/model"
)

// RawRestaurant 生データセットの1レコード
// フィールド名は掲載元CSV由来の表記のまま
type RawRestaurant struct {
	Name                  string `json:"Name"`
	Address               string `json:"Address"`
	Location              string `json:"Location"` // "Munich, Germany" 形式
	Award                 string `json:"Award"`    // "3 Stars" / "Bib Gourmand" など
	Price                 string `json:"Price"`    // "€€€" のような通貨記号の繰り返し
	Cuisine               string `json:"Cuisine"` // "Modern Cuisine, Creative" 形式
	Latitude              string `json:"Latitude"`
	Longitude             string `json:"Longitude"`
	PhoneNumber           string `json:"PhoneNumber"`
	WebsiteURL            string `json:"WebsiteUrl"`
	URL                   string `json:"Url"`
	GreenStar             string `json:"GreenStar"` // "1" / "0"
	FacilitiesAndServices string `json:"FacilitiesAndServices"`
	Description           string `json:"Description"`
}

// Load 生データセットをファイルから読み込む
func Load(path string) ([]RawRestaurant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("データセットの読み込み失敗: %w", err)
	}

	var rows []RawRestaurant
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("データセットのJSONアンマーシャル失敗: %w", err)
	}
	return rows, nil
}

// ParseAward アワード表記を区分値へ変換する
func ParseAward(award string) int {
	switch {
	case strings.Contains(award, "3 Star"):
		return model.AwardThreeStars
	case strings.Contains(award, "2 Star"):
		return model.AwardTwoStars
	case strings.Contains(award, "1 Star"):
		return model.AwardOneStar
	case strings.Contains(award, "Bib Gourmand"):
		return model.AwardBibGourmand
	default:
		return model.AwardSelected
	}
}

// ParsePriceLevel 通貨記号の数を1〜4の価格帯へ変換する
// 通貨は地域によって異なる（€, $, ¥, £, ₩ など）
func ParsePriceLevel(price string) int {
	count := 0
	for _, r := range price {
		switch r {
		case '€', '$', '¥', '£', '₩', '₫', '฿':
			count++
		}
	}
	if count < model.PriceLevelMin {
		return model.PriceLevelMin
	}
	if count > model.PriceLevelMax {
		return model.PriceLevelMax
	}
	return count
}

// SplitLocation "City, Country" 形式の位置表記を都市と国に分解する
// 中間の行政区分（"Hong Kong, Hong Kong SAR China" 等）は末尾を国として扱う
func SplitLocation(location string) (city, country string) {
	parts := strings.Split(location, ", ")
	if len(parts) >= 2 {
		return parts[0], parts[len(parts)-1]
	}
	return location, ""
}

// Coordinates 文字列の緯度経度をパースする
func (r *RawRestaurant) Coordinates() (lat, lng float64, err error) {
	lat, err = strconv.ParseFloat(r.Latitude, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("緯度のパース失敗 (%s): %w", r.Name, err)
	}
	lng, err = strconv.ParseFloat(r.Longitude, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("経度のパース失敗 (%s): %w", r.Name, err)
	}
	return lat, lng, nil
}

// Facilities 設備タグをスライスへ分解する
func (r *RawRestaurant) Facilities() []string {
	if r.FacilitiesAndServices == "" {
		return nil
	}
	var result []string
	for _, f := range strings.Split(r.FacilitiesAndServices, ",") {
		if f = strings.TrimSpace(f); f != "" {
			result = append(result, f)
		}
	}
	return result
}
