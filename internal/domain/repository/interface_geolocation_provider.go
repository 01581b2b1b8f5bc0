package repository

import (
	"context"

	"michelin-maps/internal/domain/model"
)

// GeolocationProvider 「現在地を使う」機能のための位置取得を抽象化する
// 実装はctxのタイムアウト・キャンセルを尊重しなければならない
type GeolocationProvider interface {
	// Locate 現在位置を取得する
	Locate(ctx context.Context) (model.LatLng, error)
}
