// Package urlstate は絞り込み条件と地図表示状態を共有可能なクエリ文字列へ
// 双方向に変換するコーデックを提供する。
// encodeはデフォルト値のフィールドを省略し、decodeは不正値を黙って既存値へ
// フォールバックする（ユーザーにエラーを見せない）。
package urlstate

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"michelin-maps/internal/domain/model"
)

// クエリパラメータのキー
const (
	ParamSelectedID  = "id"     // 選択中レストランID
	ParamStars       = "s"      // アワード区分（カンマ区切り）
	ParamCuisines    = "c"      // 料理カテゴリ（カンマ区切り）
	ParamPrice       = "p"      // 価格帯（"min-max" 形式）
	ParamCities      = "cities" // ロケーションテキスト
	ParamCitiesAlias = "l"      // ロケーションテキストの別名（旧URL互換）
	ParamSearch      = "q"      // 店名検索テキスト
	ParamCenter      = "ll"     // 地図中心（"lat,lng" 形式）
	ParamZoom        = "z"      // ズームレベル
)

// CityResolver 都市名から単一の都市を決定するためのインターフェース
// ll パラメータがないときの地図中心の復元に使う
type CityResolver interface {
	ResolveByName(name string) (model.City, bool)
}

// State コーデックが扱う状態の組（絞り込み条件＋表示状態）
type State struct {
	Filters model.Filters
	View    model.ViewState
}

// DefaultState デフォルト状態
func DefaultState() State {
	return State{
		Filters: model.DefaultFilters(),
		View:    model.DefaultViewState(),
	}
}

// Encode 状態をクエリ文字列へ変換する
// デフォルト値と等しいフィールドはURLを短く保つため省略される
func Encode(s State) string {
	params := url.Values{}

	if s.View.SelectedID != "" {
		params.Set(ParamSelectedID, s.View.SelectedID)
	}

	if len(s.Filters.Stars) > 0 && !s.Filters.HasAllAwards() {
		params.Set(ParamStars, joinInts(s.Filters.Stars))
	}

	if len(s.Filters.Cuisines) > 0 {
		params.Set(ParamCuisines, strings.Join(s.Filters.Cuisines, ","))
	}

	if !s.Filters.IsDefaultPriceRange() {
		params.Set(ParamPrice, strconv.Itoa(s.Filters.PriceMin)+"-"+strconv.Itoa(s.Filters.PriceMax))
	}

	if s.Filters.LocationQuery != "" {
		params.Set(ParamCities, s.Filters.LocationQuery)
	}

	if s.Filters.Search != "" {
		params.Set(ParamSearch, s.Filters.Search)
	}

	if !s.View.IsDefaultViewport() {
		params.Set(ParamCenter, formatLatLng(s.View.Center))
		params.Set(ParamZoom, strconv.Itoa(s.View.Zoom))
	}

	return params.Encode()
}

// Decode クエリ文字列から状態を復元する
// 不正な値は対応するフィールドをprevのまま残す（エラーにしない）
// 座標パラメータは都市名による中心決めより常に優先される
func Decode(raw string, prev State, resolver CityResolver) State {
	s := prev

	params, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return s
	}

	if params.Has(ParamSelectedID) {
		s.View.SelectedID = params.Get(ParamSelectedID)
	}

	if v := params.Get(ParamStars); v != "" {
		if stars := parseStarsList(v); len(stars) > 0 {
			s.Filters.Stars = stars
		}
	}

	if v := params.Get(ParamCuisines); v != "" {
		s.Filters.Cuisines = splitNonEmpty(v)
	}

	if v := params.Get(ParamPrice); v != "" {
		if min, max, ok := parsePriceRange(v); ok {
			s.Filters.PriceMin, s.Filters.PriceMax = min, max
		}
	}

	location := params.Get(ParamCities)
	if location == "" {
		location = params.Get(ParamCitiesAlias)
	}
	if location != "" {
		s.Filters.LocationQuery = location
	}

	if v := params.Get(ParamSearch); v != "" {
		s.Filters.Search = v
	}

	coordsSet := false
	if v := params.Get(ParamCenter); v != "" {
		if center, ok := parseLatLng(v); ok {
			s.View.Center = center
			s.View.Zoom = model.CoordinateZoom
			coordsSet = true
		}
	}

	zoomSet := false
	if v := params.Get(ParamZoom); v != "" {
		if z, err := strconv.Atoi(v); err == nil {
			s.View.Zoom = z
			zoomSet = true
		}
	}

	// 座標がないときだけ都市名から中心を解決する
	if location != "" && !coordsSet && resolver != nil {
		if c, ok := resolver.ResolveByName(location); ok {
			s.View.Center = c.ToLatLng()
			if !zoomSet {
				s.View.Zoom = model.CityZoom
			}
		}
	}

	s.Filters.Normalize()
	return s
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// parseStarsList カンマ区切りのアワード値を解析し、閉じた列挙に含まれない値を捨てる
func parseStarsList(v string) []int {
	var stars []int
	for _, part := range strings.Split(v, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || !model.IsValidAward(n) {
			continue
		}
		stars = append(stars, n)
	}
	return stars
}

func parsePriceRange(v string) (int, int, bool) {
	minStr, maxStr, found := strings.Cut(v, "-")
	if !found {
		return 0, 0, false
	}
	min, err := strconv.Atoi(minStr)
	if err != nil {
		return 0, 0, false
	}
	max, err := strconv.Atoi(maxStr)
	if err != nil {
		return 0, 0, false
	}
	if !model.IsValidPriceLevel(min) || !model.IsValidPriceLevel(max) || min > max {
		return 0, 0, false
	}
	return min, max, true
}

func parseLatLng(v string) (model.LatLng, bool) {
	latStr, lngStr, found := strings.Cut(v, ",")
	if !found {
		return model.LatLng{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return model.LatLng{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return model.LatLng{}, false
	}
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return model.LatLng{}, false
	}
	return model.LatLng{Lat: lat, Lng: lng}, true
}

func formatLatLng(p model.LatLng) string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}

func splitNonEmpty(v string) []string {
	var result []string
	for _, part := range strings.Split(v, ",") {
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
