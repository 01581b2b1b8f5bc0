package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config アプリケーション全体の設定
// godotenvが.envを読み込んだあと、環境変数からまとめてパースする
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	SupabaseURL        string `env:"SUPABASE_URL,required"`
	SupabaseAnonKey    string `env:"SUPABASE_ANON_KEY,required"`
	SupabaseDBPassword string `env:"SUPABASE_DB_PASSWORD"`

	// DBDriver "supabase"=PostgREST経由（デフォルト）
	// "postgres"=プーラー経由の直接接続（SUPABASE_DB_PASSWORDが必要）
	DBDriver string `env:"DB_DRIVER" envDefault:"supabase"`

	// RedisAddr 未設定ならキャッシュなしで動作する
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// MixpanelToken 未設定ならテレメトリはno-opになる
	MixpanelToken string `env:"MIXPANEL_TOKEN"`
}

// ClientConfig 探索クライアント（cmd/explore）の設定
type ClientConfig struct {
	// APIBaseURL レストランデータAPIのベースURL
	APIBaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8080"`

	// MixpanelToken 未設定ならテレメトリはno-opになる
	MixpanelToken string `env:"MIXPANEL_TOKEN"`

	// FetchMode "client"=起動時一括取得＋クライアント絞り込み（デフォルト）
	// "server"=絞り込み変更のたびに再取得
	FetchMode string `env:"FETCH_MODE" envDefault:"client"`
}

// Load 環境変数からサーバー設定を読み込む
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("環境変数のパースに失敗: %w", err)
	}
	return cfg, nil
}

// LoadClient 環境変数からクライアント設定を読み込む
func LoadClient() (*ClientConfig, error) {
	cfg := &ClientConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("環境変数のパースに失敗: %w", err)
	}
	return cfg, nil
}
