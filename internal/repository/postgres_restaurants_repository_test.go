package repository

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/joho/godotenv"

	"michelin-maps/internal/domain/model"
	"michelin-maps/internal/domain/repository"
	"michelin-maps/internal/infrastructure/database"
)

// プーラー経由の直接接続に対する統合テスト
// 環境変数が設定されていない場合はスキップされる
func setupPostgresRepo(t *testing.T) repository.RestaurantsRepository {
	t.Helper()

	_ = godotenv.Load("../../.env")

	supabaseURL := os.Getenv("SUPABASE_URL")
	dbPassword := os.Getenv("SUPABASE_DB_PASSWORD")
	if supabaseURL == "" || dbPassword == "" {
		t.Skip("必要な環境変数が設定されていません。統合テストをスキップします。")
	}

	client, err := database.NewPostgreSQLClient(supabaseURL, dbPassword)
	if err != nil {
		t.Fatalf("PostgreSQLクライアントの初期化失敗: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return NewPostgresRestaurantsRepository(client)
}

func TestPostgresRestaurantsRepository_List(t *testing.T) {
	repo := setupPostgresRepo(t)
	ctx := context.Background()

	t.Run("条件なしの一覧取得", func(t *testing.T) {
		restaurants, count, err := repo.List(ctx, &repository.RestaurantFilters{}, 10, 0)
		if err != nil {
			t.Fatalf("一覧取得に失敗: %v", err)
		}
		if count == 0 {
			t.Fatal("レストランが1件も登録されていません")
		}
		log.Printf("✅ %d件中%d件を取得", count, len(restaurants))

		for i := 1; i < len(restaurants); i++ {
			prev, cur := restaurants[i-1], restaurants[i]
			if prev.Stars < cur.Stars {
				t.Errorf("星の降順が崩れている: %s(%d) の後に %s(%d)", prev.Name, prev.Stars, cur.Name, cur.Stars)
			}
		}
	})

	t.Run("アワード区分と価格帯で絞り込む", func(t *testing.T) {
		filters := &repository.RestaurantFilters{
			Stars:       []int{model.AwardThreeStars, model.AwardTwoStars},
			PriceLevels: []int{3, 4},
		}
		restaurants, _, err := repo.List(ctx, filters, 10, 0)
		if err != nil {
			t.Fatalf("絞り込み取得に失敗: %v", err)
		}
		for _, r := range restaurants {
			if r.Stars < model.AwardTwoStars {
				t.Errorf("2つ星未満が混入: %s (stars=%d)", r.Name, r.Stars)
			}
			if r.PriceLevel < 3 {
				t.Errorf("価格帯3未満が混入: %s (level=%d)", r.Name, r.PriceLevel)
			}
		}
	})

	t.Run("店名の部分一致とページング", func(t *testing.T) {
		filters := &repository.RestaurantFilters{Search: "a"}
		page1, total, err := repo.List(ctx, filters, 5, 0)
		if err != nil {
			t.Fatalf("1ページ目の取得に失敗: %v", err)
		}
		page2, _, err := repo.List(ctx, filters, 5, 5)
		if err != nil {
			t.Fatalf("2ページ目の取得に失敗: %v", err)
		}
		if total > 5 && len(page1) > 0 && len(page2) > 0 && page1[0].ID == page2[0].ID {
			t.Error("ページングが効いていない（同じ先頭要素）")
		}
	})
}

func TestPostgresRestaurantsRepository_GetByID(t *testing.T) {
	repo := setupPostgresRepo(t)
	ctx := context.Background()

	restaurants, _, err := repo.List(ctx, &repository.RestaurantFilters{}, 1, 0)
	if err != nil || len(restaurants) == 0 {
		t.Fatalf("テスト対象のレストラン取得に失敗: %v", err)
	}

	found, err := repo.GetByID(ctx, restaurants[0].ID)
	if err != nil {
		t.Fatalf("ID取得に失敗: %v", err)
	}
	if found.ID != restaurants[0].ID {
		t.Errorf("別のレストランが返った: %s != %s", found.ID, restaurants[0].ID)
	}

	if _, err := repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000"); err == nil {
		t.Error("存在しないIDでエラーが返らなかった")
	}
}

func TestPostgresRestaurantsRepository_FilterOptions(t *testing.T) {
	repo := setupPostgresRepo(t)

	options, err := repo.FilterOptions(context.Background())
	if err != nil {
		t.Fatalf("選択肢の取得に失敗: %v", err)
	}
	if len(options.Countries) == 0 || len(options.Cities) == 0 {
		t.Error("国・都市の選択肢が空です")
	}
	log.Printf("✅ 選択肢: %d国 %d都市 %dカテゴリ", len(options.Countries), len(options.Cities), len(options.Cuisines))
}
