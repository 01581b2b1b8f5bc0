package geolocate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"michelin-maps/internal/domain/model"
)

const defaultEndpoint = "http://ip-api.com/json/"

// IPGeolocationProvider IPアドレスベースの位置推定プロバイダ
// ブラウザの位置情報APIの代わりに、接続元IPから大まかな現在地を得る
type IPGeolocationProvider struct {
	endpoint   string
	httpClient *http.Client
}

// NewIPGeolocationProvider 新しいプロバイダを生成する
func NewIPGeolocationProvider() *IPGeolocationProvider {
	return &IPGeolocationProvider{
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewIPGeolocationProviderWithEndpoint エンドポイントを指定して生成（テスト用）
func NewIPGeolocationProviderWithEndpoint(endpoint string) *IPGeolocationProvider {
	return &IPGeolocationProvider{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// ipAPIResponse ip-api.comのレスポンスをパースするための構造体
type ipAPIResponse struct {
	Status  string  `json:"status"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Message string  `json:"message,omitempty"`
}

// Locate 現在位置を取得する
// ctxのタイムアウト（呼び出し側が7秒を設定する）を尊重する
func (p *IPGeolocationProvider) Locate(ctx context.Context) (model.LatLng, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", p.endpoint, nil)
	if err != nil {
		return model.LatLng{}, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return model.LatLng{}, fmt.Errorf("位置情報APIへのリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.LatLng{}, fmt.Errorf("位置情報APIからエラーステータスが返されました: %s", resp.Status)
	}

	var apiResp ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return model.LatLng{}, fmt.Errorf("位置情報レスポンスのパースに失敗: %w", err)
	}

	if apiResp.Status != "success" {
		return model.LatLng{}, fmt.Errorf("位置の取得に失敗: %s", apiResp.Message)
	}

	return model.LatLng{Lat: apiResp.Lat, Lng: apiResp.Lon}, nil
}
