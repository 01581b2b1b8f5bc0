package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"michelin-maps/internal/domain/model"
	"michelin-maps/internal/domain/repository"
	"michelin-maps/internal/infrastructure/database"
)

type SupabaseRestaurantsRepository struct {
	client *database.SupabaseClient
}

func NewSupabaseRestaurantsRepository(client *database.SupabaseClient) repository.RestaurantsRepository {
	return &SupabaseRestaurantsRepository{
		client: client,
	}
}

// List 条件に合致するレストラン一覧と総件数を取得
// パラメータが指定されたフィールドだけPostgREST側で絞り込む
func (r *SupabaseRestaurantsRepository) List(ctx context.Context, filters *repository.RestaurantFilters, limit, offset int) ([]model.Restaurant, int, error) {
	query := r.client.GetClient().From("restaurants").Select("*", "exact", false)

	if filters != nil {
		if len(filters.Stars) > 0 {
			query = query.In("stars", intsToStrings(filters.Stars))
		}
		if len(filters.Countries) > 0 {
			query = query.In("country", filters.Countries)
		}
		if len(filters.Cities) > 0 {
			query = query.In("city", filters.Cities)
		}
		if len(filters.Cuisines) > 0 {
			query = query.In("cuisine", filters.Cuisines)
		}
		if len(filters.PriceLevels) > 0 {
			query = query.In("price_level", intsToStrings(filters.PriceLevels))
		}
		if filters.GreenStar != nil {
			query = query.Eq("green_star", strconv.FormatBool(*filters.GreenStar))
		}
		if filters.Search != "" {
			query = query.Ilike("name", "%"+filters.Search+"%")
		}
	}

	if limit > 0 {
		if offset > 0 {
			query = query.Range(offset, offset+limit-1, "")
		} else {
			query = query.Limit(limit, "")
		}
	}

	data, count, err := query.Execute()
	if err != nil {
		return nil, 0, fmt.Errorf("レストランデータの取得失敗: %w", err)
	}

	var rows []restaurantRow
	if err := json.Unmarshal([]byte(data), &rows); err != nil {
		return nil, 0, fmt.Errorf("レストランデータのJSONアンマーシャル失敗: %w", err)
	}

	restaurants := make([]model.Restaurant, len(rows))
	for i := range rows {
		restaurants[i] = rows[i].toRestaurant()
	}

	// 星の多い順、同点は店名順
	sort.SliceStable(restaurants, func(i, j int) bool {
		if restaurants[i].Stars != restaurants[j].Stars {
			return restaurants[i].Stars > restaurants[j].Stars
		}
		return restaurants[i].Name < restaurants[j].Name
	})

	return restaurants, int(count), nil
}

// GetByID IDでレストランを1件取得
func (r *SupabaseRestaurantsRepository) GetByID(ctx context.Context, id string) (*model.Restaurant, error) {
	data, _, err := r.client.GetClient().From("restaurants").Select("*", "exact", false).Eq("id", id).Execute()
	if err != nil {
		return nil, fmt.Errorf("レストランデータの取得失敗: %w", err)
	}

	var rows []restaurantRow
	if err := json.Unmarshal([]byte(data), &rows); err != nil {
		return nil, fmt.Errorf("レストランデータのJSONアンマーシャル失敗: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("レストランID %s が見つかりません", id)
	}

	restaurant := rows[0].toRestaurant()
	return &restaurant, nil
}

// FilterOptions 国・都市・料理カテゴリの選択肢を取得
func (r *SupabaseRestaurantsRepository) FilterOptions(ctx context.Context) (*repository.FilterOptions, error) {
	countries, err := r.distinctColumn("country")
	if err != nil {
		return nil, err
	}
	cities, err := r.distinctColumn("city")
	if err != nil {
		return nil, err
	}
	cuisines, err := r.distinctColumn("cuisine")
	if err != nil {
		return nil, err
	}

	return &repository.FilterOptions{
		Countries: countries,
		Cities:    cities,
		Cuisines:  cuisines,
	}, nil
}

// distinctColumn 1カラムの重複を除いた値一覧をソートして返す
// PostgRESTにDISTINCTがないためクライアント側で集合化する
func (r *SupabaseRestaurantsRepository) distinctColumn(column string) ([]string, error) {
	data, _, err := r.client.GetClient().From("restaurants").Select(column, "exact", false).Neq(column, "").Execute()
	if err != nil {
		return nil, fmt.Errorf("%sの選択肢取得失敗: %w", column, err)
	}

	var rows []map[string]string
	if err := json.Unmarshal([]byte(data), &rows); err != nil {
		return nil, fmt.Errorf("%sの選択肢のJSONアンマーシャル失敗: %w", column, err)
	}

	seen := make(map[string]struct{}, len(rows))
	var values []string
	for _, row := range rows {
		v := row[column]
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values, nil
}

func intsToStrings(values []int) []string {
	result := make([]string, len(values))
	for i, v := range values {
		result[i] = strconv.Itoa(v)
	}
	return result
}
