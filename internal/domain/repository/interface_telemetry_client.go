package repository

// TelemetryClient 利用状況イベントの送信を抽象化する
// 遅延初期化のグローバル変数ではなく、起動時に構築して必要なコンポーネントへ
// 明示的に注入する
type TelemetryClient interface {
	// Track イベントを記録する（失敗してもアプリの動作には影響させない）
	Track(event string, properties map[string]any)
}
