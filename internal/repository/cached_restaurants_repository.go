package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"michelin-maps/internal/domain/model"
	"michelin-maps/internal/domain/repository"
	"michelin-maps/internal/infrastructure/cache"
)

// CachedRestaurantsRepository Redisによるリードスルーキャッシュのデコレータ
// キャッシュ障害時は黙って元のリポジトリへフォールバックする
type CachedRestaurantsRepository struct {
	source repository.RestaurantsRepository
	cache  *cache.RedisCache
}

func NewCachedRestaurantsRepository(source repository.RestaurantsRepository, cache *cache.RedisCache) repository.RestaurantsRepository {
	return &CachedRestaurantsRepository{
		source: source,
		cache:  cache,
	}
}

// listCacheEntry List結果のキャッシュ表現
type listCacheEntry struct {
	Data  []model.Restaurant `json:"data"`
	Count int                `json:"count"`
}

// List キャッシュ経由で一覧を取得する
func (r *CachedRestaurantsRepository) List(ctx context.Context, filters *repository.RestaurantFilters, limit, offset int) ([]model.Restaurant, int, error) {
	key := listCacheKey(filters, limit, offset)

	if data, ok, err := r.cache.Get(ctx, key); err != nil {
		log.Printf("⚠️ キャッシュ読み取り失敗、データソースへフォールバック: %v", err)
	} else if ok {
		var entry listCacheEntry
		if err := json.Unmarshal(data, &entry); err == nil {
			return entry.Data, entry.Count, nil
		}
	}

	restaurants, count, err := r.source.List(ctx, filters, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	if data, err := json.Marshal(listCacheEntry{Data: restaurants, Count: count}); err == nil {
		if err := r.cache.Set(ctx, key, data); err != nil {
			log.Printf("⚠️ キャッシュ書き込み失敗: %v", err)
		}
	}

	return restaurants, count, nil
}

// GetByID キャッシュ経由で1件取得する
func (r *CachedRestaurantsRepository) GetByID(ctx context.Context, id string) (*model.Restaurant, error) {
	key := "restaurant:" + id

	if data, ok, err := r.cache.Get(ctx, key); err == nil && ok {
		var restaurant model.Restaurant
		if err := json.Unmarshal(data, &restaurant); err == nil {
			return &restaurant, nil
		}
	}

	restaurant, err := r.source.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(restaurant); err == nil {
		if err := r.cache.Set(ctx, key, data); err != nil {
			log.Printf("⚠️ キャッシュ書き込み失敗: %v", err)
		}
	}

	return restaurant, nil
}

// FilterOptions キャッシュ経由で選択肢を取得する
func (r *CachedRestaurantsRepository) FilterOptions(ctx context.Context) (*repository.FilterOptions, error) {
	const key = "restaurants:filter-options"

	if data, ok, err := r.cache.Get(ctx, key); err == nil && ok {
		var options repository.FilterOptions
		if err := json.Unmarshal(data, &options); err == nil {
			return &options, nil
		}
	}

	options, err := r.source.FilterOptions(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(options); err == nil {
		if err := r.cache.Set(ctx, key, data); err != nil {
			log.Printf("⚠️ キャッシュ書き込み失敗: %v", err)
		}
	}

	return options, nil
}

// listCacheKey 絞り込み条件からキャッシュキーを組み立てる
func listCacheKey(filters *repository.RestaurantFilters, limit, offset int) string {
	var b strings.Builder
	b.WriteString("restaurants:list:")
	if filters != nil {
		fmt.Fprintf(&b, "s=%v|co=%v|ci=%v|cu=%v|p=%v|q=%s",
			filters.Stars, filters.Countries, filters.Cities, filters.Cuisines,
			filters.PriceLevels, filters.Search)
		if filters.GreenStar != nil {
			fmt.Fprintf(&b, "|g=%t", *filters.GreenStar)
		}
	}
	fmt.Fprintf(&b, "|l=%d|o=%d", limit, offset)
	return b.String()
}
