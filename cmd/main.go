package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"michelin-maps/internal/config"
	"michelin-maps/internal/domain/city"
	domainrepo "michelin-maps/internal/domain/repository"
	"michelin-maps/internal/handler"
	"michelin-maps/internal/infrastructure/analytics"
	"michelin-maps/internal/infrastructure/cache"
	"michelin-maps/internal/infrastructure/database"
	"michelin-maps/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込み失敗: %v", err)
	}

	var restaurantsRepo domainrepo.RestaurantsRepository
	if cfg.DBDriver == "postgres" {
		fmt.Println("Initializing PostgreSQL client...")
		pgClient, err := database.NewPostgreSQLClient(cfg.SupabaseURL, cfg.SupabaseDBPassword)
		if err != nil {
			log.Fatalf("PostgreSQLクライアント初期化失敗: %v", err)
		}
		fmt.Println("✅ PostgreSQL connection successful!")
		restaurantsRepo = repository.NewPostgresRestaurantsRepository(pgClient)
	} else {
		fmt.Println("Initializing Supabase client...")
		supabaseClient, err := database.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		if err != nil {
			log.Fatalf("Supabaseクライアント初期化失敗: %v", err)
		}

		fmt.Println("Performing Supabase health check...")
		if err := supabaseClient.HealthCheck(); err != nil {
			log.Fatalf("Supabaseヘルスチェック失敗: %v", err)
		}
		fmt.Println("✅ Supabase connection successful!")
		restaurantsRepo = repository.NewSupabaseRestaurantsRepository(supabaseClient)
	}

	// Redisが設定されていればリードスルーキャッシュを挟む
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, 10*time.Minute)
		if err != nil {
			log.Fatalf("Redisキャッシュ初期化失敗: %v", err)
		}
		restaurantsRepo = repository.NewCachedRestaurantsRepository(restaurantsRepo, redisCache)
		fmt.Println("✅ Redis cache enabled")
	} else {
		fmt.Println("REDIS_ADDR未設定のためキャッシュなしで起動します")
	}

	fmt.Println("Loading city directory...")
	directory, err := city.Load()
	if err != nil {
		log.Fatalf("都市ディレクトリの読み込み失敗: %v", err)
	}
	fmt.Printf("✅ City directory loaded (%d cities)\n", directory.Len())

	telemetry := analytics.NewTelemetryClient(cfg.MixpanelToken)

	restaurantsHandler := handler.NewRestaurantsHandler(restaurantsRepo)
	citiesHandler := handler.NewCitiesHandler(directory, telemetry)

	router := gin.Default()
	api := router.Group("/api")
	{
		api.GET("/health", healthHandler)
		api.GET("/restaurants", restaurantsHandler.ListRestaurants)
		api.GET("/restaurants/filters", restaurantsHandler.GetFilterOptions)
		api.GET("/restaurants/:id", restaurantsHandler.GetRestaurant)
		api.GET("/cities", citiesHandler.SearchCities)
	}

	// ブラウザのフロントエンドから呼ばれるためCORSを許可する
	corsHandler := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet},
	}).Handler(router)

	fmt.Printf("michelin-maps server starting on :%s...\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, corsHandler))
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "michelin-maps"})
}
