package main

import (
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/lib/pq"

	"michelin-maps/internal/config"
	"michelin-maps/internal/dataset"
	"michelin-maps/internal/infrastructure/database"
)

const (
	defaultDatasetPath = "data/restaurants_v2.json"
	batchSize          = 100
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込み失敗: %v", err)
	}

	client, err := database.NewPostgreSQLClient(cfg.SupabaseURL, cfg.SupabaseDBPassword)
	if err != nil {
		log.Fatalf("PostgreSQLクライアント初期化失敗: %v", err)
	}
	defer client.Close()

	command := ""
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "seed":
		path := defaultDatasetPath
		if len(os.Args) > 2 {
			path = os.Args[2]
		}
		count, err := seedRestaurants(client, path)
		if err != nil {
			log.Fatalf("❌ シーディング失敗: %v", err)
		}
		fmt.Printf("✅ %d件のレストランを投入しました\n", count)

	case "clear":
		if err := clearRestaurants(client); err != nil {
			log.Fatalf("❌ データ削除失敗: %v", err)
		}
		fmt.Println("✅ 全レストランを削除しました")

	case "count":
		count, err := countRestaurants(client)
		if err != nil {
			log.Fatalf("❌ 件数取得失敗: %v", err)
		}
		fmt.Printf("📊 現在のレストラン件数: %d\n", count)

	default:
		fmt.Println("Usage: seed [seed|clear|count]")
		fmt.Println("")
		fmt.Println("Commands:")
		fmt.Println("  seed [path]  - データセットをデータベースへ投入する")
		fmt.Println("  clear        - 全レストランを削除する")
		fmt.Println("  count        - 現在の件数を表示する")
		os.Exit(1)
	}
}

// seedRestaurants 生データセットを変換してバッチ投入する
func seedRestaurants(client *database.PostgreSQLClient, path string) (int, error) {
	fmt.Println("Starting restaurant data seeding...")

	rows, err := dataset.Load(path)
	if err != nil {
		return 0, err
	}

	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := insertBatch(client, rows[start:end]); err != nil {
			return 0, fmt.Errorf("バッチ %d の投入失敗: %w", start/batchSize+1, err)
		}
		fmt.Printf("Inserted batch %d (%d restaurants)\n", start/batchSize+1, end-start)
	}

	return len(rows), nil
}

// insertBatch 1バッチをトランザクション内でCOPY投入する
func insertBatch(client *database.PostgreSQLClient, rows []dataset.RawRestaurant) error {
	tx, err := client.DB.Begin()
	if err != nil {
		return fmt.Errorf("トランザクション開始失敗: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(pq.CopyIn("restaurants",
		"id", "name", "address", "location", "city", "country", "stars", "cuisine",
		"price_level", "latitude", "longitude", "phone", "website", "michelin_url",
		"green_star", "facilities", "description",
	))
	if err != nil {
		return fmt.Errorf("COPY文の準備失敗: %w", err)
	}

	for _, raw := range rows {
		lat, lng, err := raw.Coordinates()
		if err != nil {
			// 座標が壊れている行はスキップして続行
			log.Printf("⚠️ %v", err)
			continue
		}

		city, country := dataset.SplitLocation(raw.Location)
		_, err = stmt.Exec(
			uuid.New().String(),
			raw.Name,
			raw.Address,
			raw.Location,
			city,
			country,
			dataset.ParseAward(raw.Award),
			raw.Cuisine,
			dataset.ParsePriceLevel(raw.Price),
			lat,
			lng,
			nullable(raw.PhoneNumber),
			nullable(raw.WebsiteURL),
			nullable(raw.URL),
			raw.GreenStar == "1",
			pq.Array(raw.Facilities()),
			raw.Description,
		)
		if err != nil {
			return fmt.Errorf("行の追加失敗 (%s): %w", raw.Name, err)
		}
	}

	if _, err := stmt.Exec(); err != nil {
		return fmt.Errorf("COPYのフラッシュ失敗: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("COPY文のクローズ失敗: %w", err)
	}

	return tx.Commit()
}

func clearRestaurants(client *database.PostgreSQLClient) error {
	_, err := client.DB.Exec("DELETE FROM restaurants")
	if err != nil {
		return fmt.Errorf("レストランデータの削除失敗: %w", err)
	}
	return nil
}

func countRestaurants(client *database.PostgreSQLClient) (int, error) {
	var count int
	if err := client.DB.QueryRow("SELECT COUNT(*) FROM restaurants").Scan(&count); err != nil {
		return 0, fmt.Errorf("レストラン件数の取得失敗: %w", err)
	}
	return count, nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
