package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"michelin-maps/internal/domain/model"
	"michelin-maps/internal/domain/repository"
	apimodel "michelin-maps/model"
)

// APIRestaurantsRepository レストランデータAPIをデータソースとして使うリポジトリ
// 探索クライアントがサーバーの /api/restaurants 群を叩くときに使う
type APIRestaurantsRepository struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPIRestaurantsRepository(baseURL string) repository.RestaurantsRepository {
	return &APIRestaurantsRepository{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// List 条件に合致するレストラン一覧と総件数を取得
func (r *APIRestaurantsRepository) List(ctx context.Context, filters *repository.RestaurantFilters, limit, offset int) ([]model.Restaurant, int, error) {
	params := url.Values{}
	if filters != nil {
		if len(filters.Stars) > 0 {
			params.Set("stars", joinIntList(filters.Stars))
		}
		if len(filters.Countries) > 0 {
			params.Set("countries", strings.Join(filters.Countries, ","))
		}
		if len(filters.Cities) > 0 {
			params.Set("cities", strings.Join(filters.Cities, ","))
		}
		if len(filters.Cuisines) > 0 {
			params.Set("cuisines", strings.Join(filters.Cuisines, ","))
		}
		if len(filters.PriceLevels) > 0 {
			params.Set("priceLevel", joinIntList(filters.PriceLevels))
		}
		if filters.GreenStar != nil {
			params.Set("greenStar", strconv.FormatBool(*filters.GreenStar))
		}
		if filters.Search != "" {
			params.Set("search", filters.Search)
		}
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}

	endpoint := r.baseURL + "/api/restaurants"
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var response apimodel.RestaurantsResponse
	if err := r.getJSON(ctx, endpoint, &response); err != nil {
		return nil, 0, fmt.Errorf("レストラン一覧の取得失敗: %w", err)
	}
	return response.Data, response.Count, nil
}

// GetByID IDでレストランを1件取得
func (r *APIRestaurantsRepository) GetByID(ctx context.Context, id string) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	if err := r.getJSON(ctx, r.baseURL+"/api/restaurants/"+url.PathEscape(id), &restaurant); err != nil {
		return nil, fmt.Errorf("レストラン詳細の取得失敗 (%s): %w", id, err)
	}
	return &restaurant, nil
}

// FilterOptions 国・都市・料理カテゴリの選択肢を取得
func (r *APIRestaurantsRepository) FilterOptions(ctx context.Context) (*repository.FilterOptions, error) {
	var response apimodel.FilterOptionsResponse
	if err := r.getJSON(ctx, r.baseURL+"/api/restaurants/filters", &response); err != nil {
		return nil, fmt.Errorf("絞り込み選択肢の取得失敗: %w", err)
	}
	return &repository.FilterOptions{
		Countries: response.Countries,
		Cities:    response.Cities,
		Cuisines:  response.Cuisines,
	}, nil
}

func (r *APIRestaurantsRepository) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("リクエストの作成失敗: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("APIへのリクエスト失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("APIがエラーステータスを返しました: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("レスポンスのJSONデコード失敗: %w", err)
	}
	return nil
}

func joinIntList(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
