package model

// City 都市ディレクトリの1エントリ
// データセットから事前生成される静的な参照データで、実行時には変更されない
type City struct {
	Name            string  `json:"name"`            // 都市名
	Country         string  `json:"country"`         // 国名
	FullName        string  `json:"fullName"`        // "City, Country" 形式の正規名
	Latitude        float64 `json:"latitude"`        // 重心緯度（所属レストラン座標の算術平均）
	Longitude       float64 `json:"longitude"`       // 重心経度
	RestaurantCount int     `json:"restaurantCount"` // 所属レストラン数
}

// ToLatLng 都市の重心座標をLatLng型に変換
func (c *City) ToLatLng() LatLng {
	return LatLng{Lat: c.Latitude, Lng: c.Longitude}
}
