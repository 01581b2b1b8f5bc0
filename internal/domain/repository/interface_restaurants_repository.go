package repository

import (
	"context"

	"michelin-maps/internal/domain/model"
)

// RestaurantFilters サーバー側絞り込みの条件
// nil/空のフィールドは「そのフィールドに制約なし」を意味する
type RestaurantFilters struct {
	Stars       []int    // アワード区分
	Countries   []string // 国名
	Cities      []string // 都市名
	Cuisines    []string // 料理カテゴリ
	PriceLevels []int    // 価格帯
	GreenStar   *bool    // グリーンスターの有無
	Search      string   // 店名の部分一致
}

// IsEmpty 制約が1つもないか
func (f *RestaurantFilters) IsEmpty() bool {
	if f == nil {
		return true
	}
	return len(f.Stars) == 0 && len(f.Countries) == 0 && len(f.Cities) == 0 &&
		len(f.Cuisines) == 0 && len(f.PriceLevels) == 0 && f.GreenStar == nil && f.Search == ""
}

// FilterOptions 絞り込みUIに提示する選択肢の一覧
type FilterOptions struct {
	Countries []string `json:"countries"`
	Cities    []string `json:"cities"`
	Cuisines  []string `json:"cuisines"`
}

// RestaurantsRepository レストランデータソースへのアクセスを抽象化する
type RestaurantsRepository interface {
	// List 条件に合致するレストラン一覧と総件数を取得
	// limit=0 は制限なし、offset はページング用
	List(ctx context.Context, filters *RestaurantFilters, limit, offset int) ([]model.Restaurant, int, error)

	// GetByID IDでレストランを1件取得
	GetByID(ctx context.Context, id string) (*model.Restaurant, error)

	// FilterOptions 国・都市・料理カテゴリの選択肢を取得
	FilterOptions(ctx context.Context) (*FilterOptions, error)
}
