package model

import (
	"sort"
	"strings"
)

// Filters ユーザーの絞り込み条件を保持する状態
// Starsは空になってはいけない（UIが最後の1つの解除を防ぐ前提）
type Filters struct {
	Stars         []int    `json:"stars"`          // アワード区分の集合
	Cuisines      []string `json:"cuisines"`       // 料理カテゴリ（サーバー側絞り込みのみで使用）
	PriceMin      int      `json:"price_min"`      // 価格帯下限（1〜4）
	PriceMax      int      `json:"price_max"`      // 価格帯上限（1〜4）
	LocationQuery string   `json:"location_query"` // "city country" に対する部分一致テキスト
	Search        string   `json:"search"`         // 店名に対する部分一致テキスト
}

// DefaultFilters デフォルトの絞り込み条件（全アワード・全価格帯・テキストなし）
func DefaultFilters() Filters {
	return Filters{
		Stars:    ValidAwards(),
		Cuisines: nil,
		PriceMin: PriceLevelMin,
		PriceMax: PriceLevelMax,
	}
}

// Matches レストランが現在の条件に合致するか判定する純粋関数
// アワード・価格帯・ロケーション・店名の4条件のANDで評価される
func (f *Filters) Matches(r *Restaurant) bool {
	starOK := false
	for _, s := range f.Stars {
		if r.Stars == s {
			starOK = true
			break
		}
	}
	if !starOK {
		return false
	}

	if r.PriceLevel < f.PriceMin || r.PriceLevel > f.PriceMax {
		return false
	}

	if f.LocationQuery != "" {
		loc := strings.ToLower(r.City + " " + r.Country)
		if !strings.Contains(loc, strings.ToLower(f.LocationQuery)) {
			return false
		}
	}

	if f.Search != "" {
		if !strings.Contains(strings.ToLower(r.Name), strings.ToLower(f.Search)) {
			return false
		}
	}

	return true
}

// Apply レストランのスライスから条件に合致するものだけを抽出する
func (f *Filters) Apply(restaurants []Restaurant) []Restaurant {
	result := make([]Restaurant, 0, len(restaurants))
	for i := range restaurants {
		if f.Matches(&restaurants[i]) {
			result = append(result, restaurants[i])
		}
	}
	return result
}

// Normalize 不正な値を保存前に矯正する
// アワード集合が空になる変更と価格帯の逸脱はここで食い止める
func (f *Filters) Normalize() {
	valid := f.Stars[:0:0]
	for _, s := range f.Stars {
		if IsValidAward(s) {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		valid = ValidAwards()
	}
	sort.Sort(sort.Reverse(sort.IntSlice(valid)))
	f.Stars = dedupInts(valid)

	if f.PriceMin < PriceLevelMin {
		f.PriceMin = PriceLevelMin
	}
	if f.PriceMax > PriceLevelMax {
		f.PriceMax = PriceLevelMax
	}
	if f.PriceMin > f.PriceMax {
		f.PriceMin, f.PriceMax = PriceLevelMin, PriceLevelMax
	}
}

// HasAllAwards 全アワード区分が選択されているか（URLエンコード時の省略判定）
func (f *Filters) HasAllAwards() bool {
	return len(dedupInts(f.Stars)) == len(ValidAwards())
}

// IsDefaultPriceRange 価格帯がデフォルトの全範囲か
func (f *Filters) IsDefaultPriceRange() bool {
	return f.PriceMin == PriceLevelMin && f.PriceMax == PriceLevelMax
}

// ServerFilteredFieldsChanged サーバー側絞り込みの対象フィールドが変化したか
// refetch-on-filter-change モードでの再取得要否の判定に使う
func (f *Filters) ServerFilteredFieldsChanged(prev Filters) bool {
	if f.LocationQuery != prev.LocationQuery || f.Search != prev.Search {
		return true
	}
	if f.PriceMin != prev.PriceMin || f.PriceMax != prev.PriceMax {
		return true
	}
	if !equalInts(f.Stars, prev.Stars) {
		return true
	}
	return !equalStrings(f.Cuisines, prev.Cuisines)
}

func dedupInts(values []int) []int {
	seen := make(map[int]struct{}, len(values))
	result := values[:0:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
