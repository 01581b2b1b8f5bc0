package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"

	"michelin-maps/internal/config"
	"michelin-maps/internal/domain/city"
	"michelin-maps/internal/domain/model"
	"michelin-maps/internal/infrastructure/analytics"
	"michelin-maps/internal/infrastructure/geolocate"
	"michelin-maps/internal/repository"
	"michelin-maps/internal/usecase"
)

// consoleURLWriter 共有URLを保持し、urlコマンドで表示する
type consoleURLWriter struct {
	mu   sync.Mutex
	last string
}

func (w *consoleURLWriter) Replace(query string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = query
}

func (w *consoleURLWriter) Push(query string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = query
}

func (w *consoleURLWriter) current() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.last == "" {
		return "/"
	}
	return "/?" + w.last
}

// consoleNotifier 通知を標準出力へ出す
type consoleNotifier struct{}

func (consoleNotifier) Notify(title, message string) {
	fmt.Printf("⚠️ %s: %s\n", title, message)
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatalf("設定の読み込み失敗: %v", err)
	}

	directory, err := city.Load()
	if err != nil {
		log.Fatalf("都市ディレクトリの読み込み失敗: %v", err)
	}

	urlWriter := &consoleURLWriter{}
	explore := usecase.NewExploreUseCase(
		repository.NewAPIRestaurantsRepository(cfg.APIBaseURL),
		directory,
		urlWriter,
		consoleNotifier{},
		analytics.NewTelemetryClient(cfg.MixpanelToken),
		geolocate.NewIPGeolocationProvider(),
		usecase.ParseFetchMode(cfg.FetchMode),
	)

	ctx := context.Background()

	rawQuery := ""
	if len(os.Args) > 1 {
		rawQuery = os.Args[1]
	}
	if err := explore.Init(ctx, rawQuery); err != nil {
		log.Fatalf("初期化に失敗: %v", err)
	}
	fmt.Printf("✅ %d件のレストランを読み込みました (mode=%s)\n", len(explore.Filtered()), cfg.FetchMode)
	fmt.Println("コマンド一覧は help を入力してください")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		command, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		arg = strings.TrimSpace(arg)

		switch command {
		case "", "list":
			printRestaurants(explore.Filtered())

		case "search":
			f := explore.Filters()
			f.Search = arg
			explore.UpdateFilters(ctx, f)
			printRestaurants(explore.Filtered())

		case "stars":
			f := explore.Filters()
			f.Stars = parseStars(arg)
			explore.UpdateFilters(ctx, f)
			printRestaurants(explore.Filtered())

		case "price":
			f := explore.Filters()
			if min, max, ok := parseRange(arg); ok {
				f.PriceMin, f.PriceMax = min, max
				explore.UpdateFilters(ctx, f)
			} else {
				fmt.Println("使い方: price <min>-<max> (1〜4)")
			}
			printRestaurants(explore.Filtered())

		case "city":
			suggestions := directory.FindByName(arg)
			if len(suggestions) == 0 {
				fmt.Printf("都市が見つかりません: %s\n", arg)
				continue
			}
			explore.SelectCity(ctx, suggestions[0], "cli")
			fmt.Printf("📍 %s に移動しました\n", suggestions[0].FullName)
			printRestaurants(explore.Filtered())

		case "near":
			explore.UseMyLocation(ctx)
			printRestaurants(explore.NearbyFrom(explore.View().Center))

		case "fit":
			explore.FitToResults(ctx)
			view := explore.View()
			fmt.Printf("📍 地図中心を (%.4f, %.4f) に合わせました\n", view.Center.Lat, view.Center.Lng)

		case "select":
			explore.SelectRestaurant(ctx, arg, nil)
			if r := explore.Selected(); r != nil {
				printDetail(r)
			} else {
				fmt.Printf("レストランが見つかりません: %s\n", arg)
			}

		case "clear":
			explore.ClearSelection(ctx)

		case "reset":
			explore.ResetFilters(ctx)
			printRestaurants(explore.Filtered())

		case "url":
			fmt.Println(urlWriter.current())

		case "help":
			printHelp()

		case "quit", "exit":
			return

		default:
			fmt.Printf("不明なコマンド: %s (help で一覧を表示)\n", command)
		}
	}
}

func printRestaurants(restaurants []model.Restaurant) {
	const maxRows = 15
	fmt.Printf("📊 %d件が条件に合致\n", len(restaurants))
	for i, r := range restaurants {
		if i == maxRows {
			fmt.Printf("  ... 他%d件\n", len(restaurants)-maxRows)
			break
		}
		fmt.Printf("  %-36s  %-22s  %s / %s\n", r.ID, r.AwardLabel(), r.Name, r.City)
	}
}

func printDetail(r *model.Restaurant) {
	fmt.Printf("🍽 %s (%s)\n", r.Name, r.AwardLabel())
	fmt.Printf("   %s, %s / 価格帯 %d / %s\n", r.City, r.Country, r.PriceLevel, r.Cuisine)
	if r.Website != nil {
		fmt.Printf("   %s\n", *r.Website)
	}
}

func printHelp() {
	fmt.Println("  list              現在の条件に合致する一覧を表示")
	fmt.Println("  search <text>     店名で検索")
	fmt.Println("  stars <3,2,...>   アワード区分で絞り込み (-1〜3)")
	fmt.Println("  price <min>-<max> 価格帯で絞り込み (1〜4)")
	fmt.Println("  city <name>       都市を選択して移動")
	fmt.Println("  near              現在地の近くを表示")
	fmt.Println("  fit               絞り込み結果全体へ地図中心を合わせる")
	fmt.Println("  select <id>       レストランを選択して詳細表示")
	fmt.Println("  clear / reset     選択解除 / 条件リセット")
	fmt.Println("  url               共有可能なURLを表示")
	fmt.Println("  quit              終了")
}

func parseStars(arg string) []int {
	var stars []int
	for _, part := range strings.Split(arg, ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			stars = append(stars, n)
		}
	}
	return stars
}

func parseRange(arg string) (int, int, bool) {
	minStr, maxStr, found := strings.Cut(arg, "-")
	if !found {
		return 0, 0, false
	}
	min, err := strconv.Atoi(strings.TrimSpace(minStr))
	if err != nil {
		return 0, 0, false
	}
	max, err := strconv.Atoi(strings.TrimSpace(maxStr))
	if err != nil {
		return 0, 0, false
	}
	return min, max, true
}
