package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"michelin-maps/internal/domain/city"
	"michelin-maps/internal/domain/helper"
	"michelin-maps/internal/domain/model"
	"michelin-maps/internal/domain/repository"
	"michelin-maps/internal/urlstate"
)

// Status 画面状態のライフサイクル
type Status int

const (
	StatusUninitialized Status = iota // 初期化前
	StatusLoading                     // データ取得中
	StatusReady                       // 表示可能（取得失敗時も空集合でReadyになる）
)

// FetchMode データ取得の構成
type FetchMode int

const (
	// FetchOnce 起動時に一度だけ取得し、以降はクライアント側で絞り込む（デフォルト）
	FetchOnce FetchMode = iota
	// FetchOnFilterChange サーバー側絞り込み対象のフィールドが変わるたびに再取得する
	// （データセットが大きいデプロイ向け）
	FetchOnFilterChange
)

// ParseFetchMode 設定文字列を取得モードへ変換する（不明な値はFetchOnce）
func ParseFetchMode(s string) FetchMode {
	if s == "server" {
		return FetchOnFilterChange
	}
	return FetchOnce
}

// 位置情報取得のタイムアウト
const geolocationTimeout = 7 * time.Second

// NearMeQuery 位置情報が取得できなかったときのフォールバック検索語
const NearMeQuery = "near me"

// URLWriter 共有可能URLへの反映を抽象化する
// Replaceは履歴を汚さない置き換え、Pushは履歴に積む遷移
type URLWriter interface {
	Replace(query string)
	Push(query string)
}

// Notifier ユーザーへの一時通知（トースト相当）を抽象化する
type Notifier interface {
	Notify(title, message string)
}

// ExploreUseCase レストラン探索画面の状態と操作をまとめるユースケース
// 絞り込み条件・表示状態・URLの三者を常に同期させる
type ExploreUseCase interface {
	// Init URLのクエリ文字列から初期状態を復元し、データを取得する
	Init(ctx context.Context, rawQuery string) error

	// Refresh データソースから作業セットを再取得する
	Refresh(ctx context.Context)

	// UpdateFilters 絞り込み条件を差し替える（不正値は保存前に矯正される）
	UpdateFilters(ctx context.Context, f model.Filters)

	// ResetFilters 絞り込み条件をデフォルトに戻す
	ResetFilters(ctx context.Context)

	// SelectRestaurant レストランを選択し、位置があれば地図を寄せる
	SelectRestaurant(ctx context.Context, id string, pos *model.LatLng)

	// ClearSelection 選択を解除する
	ClearSelection(ctx context.Context)

	// SelectCity 都市を選択して地図中心とロケーション条件を設定する
	SelectCity(ctx context.Context, c model.City, source string)

	// MoveViewport 地図操作（パン・ズーム）を反映する
	MoveViewport(center model.LatLng, zoom int)

	// FitToResults 絞り込み結果全体の境界ボックス中心へ地図を寄せる
	FitToResults(ctx context.Context)

	// UseMyLocation 現在地を取得して地図を寄せる
	// タイムアウト・拒否時は "near me" テキスト検索へフォールバックする
	UseMyLocation(ctx context.Context)

	// Filtered 現在の条件に合致するレストラン一覧
	Filtered() []model.Restaurant

	// NearbyFrom 指定座標に近い順に絞り込み結果を並べ替えて返す
	NearbyFrom(origin model.LatLng) []model.Restaurant

	// Selected 選択中レストラン（絞り込み結果を優先して解決、なければnil）
	Selected() *model.Restaurant

	Status() Status
	Filters() model.Filters
	View() model.ViewState
}

// exploreUseCaseImpl ExploreUseCaseの実装
type exploreUseCaseImpl struct {
	restaurantsRepo repository.RestaurantsRepository
	directory       *city.Directory
	urlWriter       URLWriter
	notifier        Notifier
	telemetry       repository.TelemetryClient
	locator         repository.GeolocationProvider
	fetchMode       FetchMode

	mu       sync.Mutex
	filters  model.Filters
	view     model.ViewState
	data     []model.Restaurant
	status   Status
	fetchSeq int64 // 単調増加するリクエストトークン（古いレスポンスの破棄に使う）
}

// NewExploreUseCase 新しいExploreUseCaseインスタンスを作成
func NewExploreUseCase(
	restaurantsRepo repository.RestaurantsRepository,
	directory *city.Directory,
	urlWriter URLWriter,
	notifier Notifier,
	telemetry repository.TelemetryClient,
	locator repository.GeolocationProvider,
	fetchMode FetchMode,
) ExploreUseCase {
	return &exploreUseCaseImpl{
		restaurantsRepo: restaurantsRepo,
		directory:       directory,
		urlWriter:       urlWriter,
		notifier:        notifier,
		telemetry:       telemetry,
		locator:         locator,
		fetchMode:       fetchMode,
		filters:         model.DefaultFilters(),
		view:            model.DefaultViewState(),
		status:          StatusUninitialized,
	}
}

// Init URLのクエリ文字列から初期状態を復元し、データを取得する
// デコードは同期的に完了し、その後の取得だけが中断可能な操作になる
func (u *exploreUseCaseImpl) Init(ctx context.Context, rawQuery string) error {
	u.mu.Lock()
	decoded := urlstate.Decode(rawQuery, urlstate.DefaultState(), u.directory)
	u.filters = decoded.Filters
	u.view = decoded.View
	u.mu.Unlock()

	u.syncURL()
	u.Refresh(ctx)
	return nil
}

// Refresh データソースから作業セットを再取得する
// 取得中に新しい取得が始まった場合、古い方の結果は破棄される
func (u *exploreUseCaseImpl) Refresh(ctx context.Context) {
	u.mu.Lock()
	u.fetchSeq++
	seq := u.fetchSeq
	u.status = StatusLoading
	serverFilters := u.serverFilters()
	u.mu.Unlock()

	restaurants, _, err := u.restaurantsRepo.List(ctx, serverFilters, 0, 0)

	u.mu.Lock()
	defer u.mu.Unlock()

	// 自分より新しい取得が始まっていたら結果を捨てる
	if seq != u.fetchSeq {
		log.Printf("古い取得結果を破棄 (seq=%d, latest=%d)", seq, u.fetchSeq)
		return
	}

	u.status = StatusReady
	if err != nil {
		// 自動リトライはしない。通知を一度出して空集合（または前回の結果）のまま待つ
		log.Printf("⚠️ レストランデータの取得失敗: %v", err)
		u.notifier.Notify("Failed to load data", "Please try again later.")
		return
	}

	u.data = restaurants
}

// UpdateFilters 絞り込み条件を差し替える
// 変更はURLへreplaceで反映され、途中経過が履歴を汚すことはない
func (u *exploreUseCaseImpl) UpdateFilters(ctx context.Context, f model.Filters) {
	f.Normalize()

	u.mu.Lock()
	prev := u.filters
	u.filters = f
	refetch := u.fetchMode == FetchOnFilterChange && u.status != StatusUninitialized &&
		f.ServerFilteredFieldsChanged(prev)
	u.mu.Unlock()

	u.syncURL()
	if refetch {
		u.Refresh(ctx)
	}
}

// ResetFilters 絞り込み条件をデフォルトに戻す
func (u *exploreUseCaseImpl) ResetFilters(ctx context.Context) {
	u.UpdateFilters(ctx, model.DefaultFilters())
}

// SelectRestaurant レストランを選択し、位置があれば地図を寄せる
func (u *exploreUseCaseImpl) SelectRestaurant(ctx context.Context, id string, pos *model.LatLng) {
	u.mu.Lock()
	u.view.SelectedID = id
	if pos != nil {
		u.view.Center = *pos
		u.view.Zoom = model.RestaurantZoom
	}
	u.mu.Unlock()

	u.syncURL()
}

// ClearSelection 選択を解除する
func (u *exploreUseCaseImpl) ClearSelection(ctx context.Context) {
	u.mu.Lock()
	u.view.SelectedID = ""
	u.mu.Unlock()

	u.syncURL()
}

// SelectCity 都市を選択して地図中心とロケーション条件を設定する
func (u *exploreUseCaseImpl) SelectCity(ctx context.Context, c model.City, source string) {
	u.mu.Lock()
	u.view.Center = c.ToLatLng()
	u.view.Zoom = model.CityZoom
	f := u.filters
	u.mu.Unlock()

	u.telemetry.Track("City Selected", map[string]any{
		"city":   c.Name,
		"source": source,
	})

	f.LocationQuery = c.Name
	u.UpdateFilters(ctx, f)
}

// MoveViewport 地図操作（パン・ズーム）を反映する
func (u *exploreUseCaseImpl) MoveViewport(center model.LatLng, zoom int) {
	u.mu.Lock()
	u.view.Center = center
	u.view.Zoom = zoom
	u.mu.Unlock()

	u.syncURL()
}

// FitToResults 絞り込み結果全体の境界ボックス中心へ地図を寄せる
// 結果が空のときは表示状態を変えない
func (u *exploreUseCaseImpl) FitToResults(ctx context.Context) {
	center, ok := helper.BoundsCenter(u.Filtered())
	if !ok {
		return
	}

	u.mu.Lock()
	u.view.Center = center
	u.mu.Unlock()

	u.syncURL()
}

// UseMyLocation 現在地を取得して地図を寄せる
// 7秒のタイムアウトを超えた場合や取得拒否の場合は、黙って失敗せず
// "near me" のテキスト検索へ決定的にフォールバックする
func (u *exploreUseCaseImpl) UseMyLocation(ctx context.Context) {
	locateCtx, cancel := context.WithTimeout(ctx, geolocationTimeout)
	defer cancel()

	loc, err := u.locator.Locate(locateCtx)
	if err != nil {
		log.Printf("⚠️ 位置情報の取得失敗、テキスト検索へフォールバック: %v", err)
		u.mu.Lock()
		f := u.filters
		u.mu.Unlock()
		f.LocationQuery = NearMeQuery
		u.UpdateFilters(ctx, f)
		return
	}

	u.MoveViewport(loc, model.CoordinateZoom)
}

// Filtered 現在の条件に合致するレストラン一覧
// 評価は純粋な述語を作業セット全体に適用し直すだけで、隠れた状態を持たない
// "near me" はロケーション条件としては扱わず、現在の地図中心からの
// 距離順で全候補を返す
func (u *exploreUseCaseImpl) Filtered() []model.Restaurant {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.filters.LocationQuery == NearMeQuery {
		f := u.filters
		f.LocationQuery = ""
		result := f.Apply(u.data)
		helper.SortByDistanceFromLocation(u.view.Center, result)
		return result
	}

	return u.filters.Apply(u.data)
}

// Selected 選択中レストランを解決する
// SelectedIDは弱参照なので、絞り込み結果→全体の順で探し、なければnil
func (u *exploreUseCaseImpl) Selected() *model.Restaurant {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.view.SelectedID == "" {
		return nil
	}
	filtered := u.filters.Apply(u.data)
	for i := range filtered {
		if filtered[i].ID == u.view.SelectedID {
			return &filtered[i]
		}
	}
	for i := range u.data {
		if u.data[i].ID == u.view.SelectedID {
			r := u.data[i]
			return &r
		}
	}
	return nil
}

// NearbyFrom 指定座標に近い順に絞り込み結果を並べ替えて返す
func (u *exploreUseCaseImpl) NearbyFrom(origin model.LatLng) []model.Restaurant {
	result := u.Filtered()
	helper.SortByDistanceFromLocation(origin, result)
	return result
}

func (u *exploreUseCaseImpl) Status() Status {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.status
}

func (u *exploreUseCaseImpl) Filters() model.Filters {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.filters
}

func (u *exploreUseCaseImpl) View() model.ViewState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.view
}

// syncURL 現在の状態をエンコードしてURLへ反映する
// 置き換え（replace）なので戻るボタンの履歴には残らない
func (u *exploreUseCaseImpl) syncURL() {
	u.mu.Lock()
	state := urlstate.State{Filters: u.filters, View: u.view}
	u.mu.Unlock()

	u.urlWriter.Replace(urlstate.Encode(state))
}

// serverFilters 取得モードに応じてサーバー側絞り込み条件を組み立てる
func (u *exploreUseCaseImpl) serverFilters() *repository.RestaurantFilters {
	if u.fetchMode == FetchOnce {
		// クライアント側絞り込みモードでは全件取得する
		return &repository.RestaurantFilters{}
	}

	filters := &repository.RestaurantFilters{
		Cuisines: u.filters.Cuisines,
		Search:   u.filters.Search,
	}
	if !u.filters.HasAllAwards() {
		filters.Stars = u.filters.Stars
	}
	if !u.filters.IsDefaultPriceRange() {
		for p := u.filters.PriceMin; p <= u.filters.PriceMax; p++ {
			filters.PriceLevels = append(filters.PriceLevels, p)
		}
	}
	// "near me" は距離ソートで処理するのでサーバーへは送らない
	if u.filters.LocationQuery != "" && u.filters.LocationQuery != NearMeQuery {
		filters.Cities = []string{u.filters.LocationQuery}
	}
	return filters
}

// String Statusの表示名
func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}
