package analytics

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"michelin-maps/internal/domain/repository"
)

const mixpanelTrackURL = "https://api.mixpanel.com/track"

// MixpanelClient Mixpanel HTTP APIを使用したテレメトリクライアント
// 起動時に一度だけ構築し、必要なコンポーネントへ注入する
type MixpanelClient struct {
	token      string
	endpoint   string
	httpClient *http.Client
}

// NewMixpanelClient 新しいクライアントを生成する
func NewMixpanelClient(token string) *MixpanelClient {
	return NewMixpanelClientWithEndpoint(token, mixpanelTrackURL)
}

// NewMixpanelClientWithEndpoint 送信先を指定してクライアントを生成する（テスト用）
func NewMixpanelClientWithEndpoint(token, endpoint string) *MixpanelClient {
	return &MixpanelClient{
		token:      token,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Track イベントをMixpanelへ送信する
// 送信失敗はログに残すだけで呼び出し側へは伝播させない
func (m *MixpanelClient) Track(event string, properties map[string]any) {
	props := map[string]any{
		"token": m.token,
		"time":  time.Now().Unix(),
	}
	for k, v := range properties {
		props[k] = v
	}

	payload, err := json.Marshal(map[string]any{
		"event":      event,
		"properties": props,
	})
	if err != nil {
		log.Printf("⚠️ テレメトリイベントのJSONマーシャル失敗: %v", err)
		return
	}

	// Mixpanelの/trackはbase64エンコードしたJSONをdataパラメータで受け取る
	form := url.Values{}
	form.Set("data", base64.StdEncoding.EncodeToString(payload))

	resp, err := m.httpClient.Post(m.endpoint, "application/x-www-form-urlencoded",
		bytes.NewBufferString(form.Encode()))
	if err != nil {
		log.Printf("⚠️ テレメトリイベントの送信失敗: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("⚠️ Mixpanelからエラーステータスが返されました: %s", resp.Status)
	}
}

// NoopTelemetry トークン未設定時のフォールバック（何もしない）
type NoopTelemetry struct{}

// Track 何もしない
func (NoopTelemetry) Track(event string, properties map[string]any) {}

// NewTelemetryClient トークンの有無に応じて実クライアントかno-opを返す
func NewTelemetryClient(token string) repository.TelemetryClient {
	if token == "" {
		fmt.Println("Mixpanelトークン未設定のためテレメトリは無効です")
		return NoopTelemetry{}
	}
	return NewMixpanelClient(token)
}
