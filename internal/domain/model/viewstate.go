package model

// デフォルトの地図表示（アメリカ中心・世界が見えるズーム）
const (
	DefaultZoom      = 2
	CityZoom         = 11 // 都市選択時のズーム
	CoordinateZoom   = 12 // 座標パラメータ復元時のズーム
	RestaurantZoom   = 13 // レストラン選択時のズーム
	DefaultCenterLat = 39.8
	DefaultCenterLng = -98.6
)

// ViewState 地図の表示状態と選択中レストランを保持する
// SelectedIDは絞り込み結果に存在しないレストランを指すこともある（弱参照）
type ViewState struct {
	SelectedID string `json:"selected_id"` // 選択中レストランID（空文字=未選択）
	Center     LatLng `json:"center"`      // 地図の中心座標
	Zoom       int    `json:"zoom"`        // ズームレベル
}

// DefaultViewState デフォルトの表示状態
func DefaultViewState() ViewState {
	return ViewState{
		Center: LatLng{Lat: DefaultCenterLat, Lng: DefaultCenterLng},
		Zoom:   DefaultZoom,
	}
}

// IsDefaultViewport 中心・ズームがデフォルトのままか（URLエンコード時の省略判定）
func (v *ViewState) IsDefaultViewport() bool {
	d := DefaultViewState()
	return v.Center == d.Center && v.Zoom == d.Zoom
}
