package database

import (
	"fmt"

	"github.com/supabase-community/supabase-go"
)

// SupabaseClient Supabaseクライアントのラッパー
type SupabaseClient struct {
	Client *supabase.Client
	url    string
}

// NewSupabaseClient 新しいSupabaseクライアントを作成
// 接続情報は環境変数を直接読まず、呼び出し側（config）から明示的に受け取る
func NewSupabaseClient(supabaseURL, anonKey string) (*SupabaseClient, error) {
	if supabaseURL == "" {
		return nil, fmt.Errorf("SupabaseのURLが指定されていません")
	}
	if anonKey == "" {
		return nil, fmt.Errorf("Supabaseの匿名キーが指定されていません")
	}

	client, err := supabase.NewClient(supabaseURL, anonKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("Supabaseクライアントの初期化に失敗: %w", err)
	}

	return &SupabaseClient{Client: client, url: supabaseURL}, nil
}

// GetClient Supabaseクライアントを取得
func (sc *SupabaseClient) GetClient() *supabase.Client {
	return sc.Client
}

// HealthCheck データベース接続のヘルスチェック
func (sc *SupabaseClient) HealthCheck() error {
	if sc.Client == nil {
		return fmt.Errorf("Supabaseクライアントが初期化されていません")
	}

	// restaurantsテーブルへの軽量な問い合わせで接続を確認
	_, _, err := sc.Client.From("restaurants").Select("id", "exact", false).Limit(1, "").Execute()
	if err != nil {
		return fmt.Errorf("Supabaseへの接続確認に失敗: %w", err)
	}
	return nil
}
