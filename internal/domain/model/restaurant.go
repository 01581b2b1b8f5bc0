package model

// LatLng 緯度経度を表す基本的な型（地図表示・距離計算で使用）
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// アワード区分の定数。星1〜3に加えて、ビブグルマン(0)と
// セレクテッドレストラン(-1)の擬似区分を持つ
const (
	AwardThreeStars  = 3
	AwardTwoStars    = 2
	AwardOneStar     = 1
	AwardBibGourmand = 0
	AwardSelected    = -1
)

// 価格帯の範囲（1=手頃, 4=高級）
const (
	PriceLevelMin = 1
	PriceLevelMax = 4
)

// Restaurant ミシュラン掲載レストランを表すモデル
type Restaurant struct {
	ID          string   `json:"id" db:"id"`                   // ユニークなレストランID
	Name        string   `json:"name" db:"name"`               // 店名
	Address     string   `json:"address" db:"address"`         // 住所
	Location    string   `json:"location" db:"location"`       // 掲載元の位置表記（"Munich, Germany" 形式）
	City        string   `json:"city" db:"city"`               // 都市名（Locationから導出）
	Country     string   `json:"country" db:"country"`         // 国名（Locationから導出）
	Stars       int      `json:"stars" db:"stars"`             // アワード区分（-1〜3）
	Cuisine     string   `json:"cuisine" db:"cuisine"`         // 料理カテゴリ
	PriceLevel  int      `json:"price_level" db:"price_level"` // 価格帯（1〜4）
	Lat         float64  `json:"lat" db:"latitude"`            // 緯度
	Lng         float64  `json:"lng" db:"longitude"`           // 経度
	Phone       *string  `json:"phone,omitempty" db:"phone"`   // 電話番号（NULLABLE）
	Website     *string  `json:"website,omitempty" db:"website"`
	MichelinURL *string  `json:"michelin_url,omitempty" db:"michelin_url"`
	GreenStar   bool     `json:"green_star" db:"green_star"` // グリーンスター（サステナビリティ認定）
	Facilities  []string `json:"facilities" db:"facilities"` // 設備・サービスタグ
	Description string   `json:"description" db:"description"`
}

// ToLatLng レストランの位置情報をLatLng型に変換
func (r *Restaurant) ToLatLng() LatLng {
	return LatLng{Lat: r.Lat, Lng: r.Lng}
}

// AwardLabel アワード区分の表示名を取得
func (r *Restaurant) AwardLabel() string {
	switch r.Stars {
	case AwardThreeStars:
		return "3 Stars"
	case AwardTwoStars:
		return "2 Stars"
	case AwardOneStar:
		return "1 Star"
	case AwardBibGourmand:
		return "Bib Gourmand"
	default:
		return "Selected Restaurants"
	}
}

// ValidAwards 有効なアワード区分の一覧（高い順）
func ValidAwards() []int {
	return []int{AwardThreeStars, AwardTwoStars, AwardOneStar, AwardBibGourmand, AwardSelected}
}

// IsValidAward 値が有効なアワード区分かチェック
func IsValidAward(n int) bool {
	return n >= AwardSelected && n <= AwardThreeStars
}

// IsValidPriceLevel 値が有効な価格帯かチェック
func IsValidPriceLevel(n int) bool {
	return n >= PriceLevelMin && n <= PriceLevelMax
}
