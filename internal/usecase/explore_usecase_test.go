package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"michelin-maps/internal/domain/city"
	"michelin-maps/internal/domain/model"
	"michelin-maps/internal/domain/repository"
)

// fakeRestaurantsRepo テスト用のインメモリリポジトリ
// barrierを設定すると、Listがその解放まで待つ（競合レスポンスの再現用）
type fakeRestaurantsRepo struct {
	mu          sync.Mutex
	restaurants []model.Restaurant
	err         error
	listCalls   int
	lastFilters *repository.RestaurantFilters
	barrier     chan struct{}
}

func (r *fakeRestaurantsRepo) List(ctx context.Context, filters *repository.RestaurantFilters, limit, offset int) ([]model.Restaurant, int, error) {
	r.mu.Lock()
	r.listCalls++
	r.lastFilters = filters
	barrier := r.barrier
	r.mu.Unlock()

	if barrier != nil {
		<-barrier
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, 0, r.err
	}
	return r.restaurants, len(r.restaurants), nil
}

func (r *fakeRestaurantsRepo) GetByID(ctx context.Context, id string) (*model.Restaurant, error) {
	for i := range r.restaurants {
		if r.restaurants[i].ID == id {
			return &r.restaurants[i], nil
		}
	}
	return nil, errors.New("見つかりません")
}

func (r *fakeRestaurantsRepo) FilterOptions(ctx context.Context) (*repository.FilterOptions, error) {
	return &repository.FilterOptions{}, nil
}

func (r *fakeRestaurantsRepo) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listCalls
}

// fakeURLWriter URLへの反映を記録するだけのライター
type fakeURLWriter struct {
	mu       sync.Mutex
	replaces []string
	pushes   []string
}

func (w *fakeURLWriter) Replace(query string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.replaces = append(w.replaces, query)
}

func (w *fakeURLWriter) Push(query string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pushes = append(w.pushes, query)
}

func (w *fakeURLWriter) last() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.replaces) == 0 {
		return ""
	}
	return w.replaces[len(w.replaces)-1]
}

// fakeNotifier 通知を数えるだけのノーティファイア
type fakeNotifier struct {
	mu    sync.Mutex
	count int
	title string
}

func (n *fakeNotifier) Notify(title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count++
	n.title = title
}

// fakeTelemetry 送信イベントを記録するだけのテレメトリ
type fakeTelemetry struct {
	events []string
	props  []map[string]any
}

func (t *fakeTelemetry) Track(event string, properties map[string]any) {
	t.events = append(t.events, event)
	t.props = append(t.props, properties)
}

// fakeLocator 固定の結果を返す位置情報プロバイダ
type fakeLocator struct {
	loc model.LatLng
	err error
}

func (l *fakeLocator) Locate(ctx context.Context) (model.LatLng, error) {
	if l.err != nil {
		return model.LatLng{}, l.err
	}
	return l.loc, nil
}

type testEnv struct {
	repo      *fakeRestaurantsRepo
	writer    *fakeURLWriter
	notifier  *fakeNotifier
	telemetry *fakeTelemetry
	locator   *fakeLocator
	uc        ExploreUseCase
}

func newTestEnv(t *testing.T, mode FetchMode) *testEnv {
	t.Helper()

	dir, err := city.Load()
	if err != nil {
		t.Fatalf("都市ディレクトリの読み込み失敗: %v", err)
	}

	env := &testEnv{
		repo: &fakeRestaurantsRepo{
			restaurants: []model.Restaurant{
				{ID: "r1", Name: "Le Petit Bistro", City: "Paris", Country: "France", Stars: 1, PriceLevel: 2, Lat: 48.86, Lng: 2.34},
				{ID: "r2", Name: "Sushi Takumi", City: "Tokyo", Country: "Japan", Stars: 3, PriceLevel: 4, Lat: 35.68, Lng: 139.69},
				{ID: "r3", Name: "Corner Bistro", City: "New York", Country: "USA", Stars: 0, PriceLevel: 1, Lat: 40.71, Lng: -74.0},
			},
		},
		writer:    &fakeURLWriter{},
		notifier:  &fakeNotifier{},
		telemetry: &fakeTelemetry{},
		locator:   &fakeLocator{},
	}
	env.uc = NewExploreUseCase(env.repo, dir, env.writer, env.notifier, env.telemetry, env.locator, mode)
	return env
}

func TestExploreUseCase_Lifecycle(t *testing.T) {
	env := newTestEnv(t, FetchOnce)
	ctx := context.Background()

	t.Run("初期化前はUninitialized", func(t *testing.T) {
		assert.Equal(t, StatusUninitialized, env.uc.Status())
	})

	t.Run("初期化後はReadyになり全件を保持する", func(t *testing.T) {
		if err := env.uc.Init(ctx, ""); err != nil {
			t.Fatalf("初期化に失敗: %v", err)
		}
		assert.Equal(t, StatusReady, env.uc.Status())
		assert.Len(t, env.uc.Filtered(), 3)
	})

	t.Run("URLから条件と選択を復元する", func(t *testing.T) {
		env := newTestEnv(t, FetchOnce)
		if err := env.uc.Init(ctx, "?q=bistro&id=r1"); err != nil {
			t.Fatalf("初期化に失敗: %v", err)
		}
		assert.Equal(t, "bistro", env.uc.Filters().Search)
		assert.Equal(t, "r1", env.uc.View().SelectedID)
		assert.Len(t, env.uc.Filtered(), 2)
	})
}

func TestExploreUseCase_FetchFailure(t *testing.T) {
	env := newTestEnv(t, FetchOnce)
	env.repo.err = errors.New("接続エラー")
	ctx := context.Background()

	if err := env.uc.Init(ctx, ""); err != nil {
		t.Fatalf("初期化に失敗: %v", err)
	}

	// 失敗してもReadyになり、通知は一度だけ出る。自動リトライはしない
	assert.Equal(t, StatusReady, env.uc.Status())
	assert.Empty(t, env.uc.Filtered())
	assert.Equal(t, 1, env.notifier.count)
	assert.Equal(t, "Failed to load data", env.notifier.title)
	assert.Equal(t, 1, env.repo.calls())
}

func TestExploreUseCase_FetchFailureKeepsPreviousData(t *testing.T) {
	env := newTestEnv(t, FetchOnce)
	ctx := context.Background()

	if err := env.uc.Init(ctx, ""); err != nil {
		t.Fatalf("初期化に失敗: %v", err)
	}
	assert.Len(t, env.uc.Filtered(), 3)

	// 2回目の取得が失敗しても前回の作業セットは残る
	env.repo.err = errors.New("一時的なエラー")
	env.uc.Refresh(ctx)

	assert.Equal(t, StatusReady, env.uc.Status())
	assert.Len(t, env.uc.Filtered(), 3)
	assert.Equal(t, 1, env.notifier.count)
}

func TestExploreUseCase_StaleResponseDiscarded(t *testing.T) {
	env := newTestEnv(t, FetchOnce)
	ctx := context.Background()

	// 1本目の取得をバリアで止めたまま2本目を完了させる
	barrier := make(chan struct{})
	env.repo.barrier = barrier

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		env.uc.Refresh(ctx)
	}()

	// 1本目がListへ入るのを待つ
	for env.repo.calls() < 1 {
		time.Sleep(time.Millisecond)
	}

	env.repo.mu.Lock()
	env.repo.barrier = nil
	env.repo.restaurants = env.repo.restaurants[:1]
	env.repo.mu.Unlock()

	env.uc.Refresh(ctx)
	assert.Len(t, env.uc.Filtered(), 1)

	// 1本目（古い方）を解放しても結果は上書きされない
	close(barrier)
	wg.Wait()
	assert.Len(t, env.uc.Filtered(), 1)
	assert.Equal(t, StatusReady, env.uc.Status())
}

func TestExploreUseCase_FetchModes(t *testing.T) {
	ctx := context.Background()

	t.Run("FetchOnceでは条件変更で再取得しない", func(t *testing.T) {
		env := newTestEnv(t, FetchOnce)
		if err := env.uc.Init(ctx, ""); err != nil {
			t.Fatalf("初期化に失敗: %v", err)
		}

		f := env.uc.Filters()
		f.Search = "sushi"
		env.uc.UpdateFilters(ctx, f)

		assert.Equal(t, 1, env.repo.calls())
		// 絞り込みはクライアント側で即時に効く
		assert.Len(t, env.uc.Filtered(), 1)
	})

	t.Run("FetchOnceの取得は常に無条件", func(t *testing.T) {
		env := newTestEnv(t, FetchOnce)
		if err := env.uc.Init(ctx, "?q=bistro"); err != nil {
			t.Fatalf("初期化に失敗: %v", err)
		}
		if !env.repo.lastFilters.IsEmpty() {
			t.Errorf("全件取得を期待したが条件付きだった: %+v", env.repo.lastFilters)
		}
	})

	t.Run("FetchOnFilterChangeでは対象フィールドの変更で再取得する", func(t *testing.T) {
		env := newTestEnv(t, FetchOnFilterChange)
		if err := env.uc.Init(ctx, ""); err != nil {
			t.Fatalf("初期化に失敗: %v", err)
		}

		f := env.uc.Filters()
		f.Search = "sushi"
		env.uc.UpdateFilters(ctx, f)

		assert.Equal(t, 2, env.repo.calls())
		assert.Equal(t, "sushi", env.repo.lastFilters.Search)
	})

	t.Run("FetchOnFilterChangeでも同一条件なら再取得しない", func(t *testing.T) {
		env := newTestEnv(t, FetchOnFilterChange)
		if err := env.uc.Init(ctx, ""); err != nil {
			t.Fatalf("初期化に失敗: %v", err)
		}

		env.uc.UpdateFilters(ctx, env.uc.Filters())
		assert.Equal(t, 1, env.repo.calls())
	})
}

func TestExploreUseCase_URLSync(t *testing.T) {
	env := newTestEnv(t, FetchOnce)
	ctx := context.Background()

	if err := env.uc.Init(ctx, ""); err != nil {
		t.Fatalf("初期化に失敗: %v", err)
	}

	f := env.uc.Filters()
	f.Search = "ramen"
	env.uc.UpdateFilters(ctx, f)

	assert.Contains(t, env.writer.last(), "q=ramen")
	// 画面状態の変更は常にreplaceで反映され、履歴には積まれない
	assert.Empty(t, env.writer.pushes)
}

func TestExploreUseCase_Selection(t *testing.T) {
	env := newTestEnv(t, FetchOnce)
	ctx := context.Background()

	if err := env.uc.Init(ctx, ""); err != nil {
		t.Fatalf("初期化に失敗: %v", err)
	}

	t.Run("位置付きの選択は地図を寄せる", func(t *testing.T) {
		pos := model.LatLng{Lat: 35.68, Lng: 139.69}
		env.uc.SelectRestaurant(ctx, "r2", &pos)

		view := env.uc.View()
		assert.Equal(t, "r2", view.SelectedID)
		assert.Equal(t, pos, view.Center)
		assert.Equal(t, model.RestaurantZoom, view.Zoom)

		selected := env.uc.Selected()
		if selected == nil || selected.ID != "r2" {
			t.Fatalf("r2の解決を期待したが: %+v", selected)
		}
	})

	t.Run("絞り込み結果外でも作業セットから解決できる", func(t *testing.T) {
		f := env.uc.Filters()
		f.Search = "bistro"
		env.uc.UpdateFilters(ctx, f)

		selected := env.uc.Selected()
		if selected == nil || selected.ID != "r2" {
			t.Fatalf("絞り込み外のr2も解決できるはずが: %+v", selected)
		}
	})

	t.Run("選択解除でnilに戻る", func(t *testing.T) {
		env.uc.ClearSelection(ctx)
		assert.Nil(t, env.uc.Selected())
		assert.Empty(t, env.uc.View().SelectedID)
	})
}

func TestExploreUseCase_SelectCity(t *testing.T) {
	env := newTestEnv(t, FetchOnce)
	ctx := context.Background()

	if err := env.uc.Init(ctx, ""); err != nil {
		t.Fatalf("初期化に失敗: %v", err)
	}

	c := model.City{Name: "Paris", Country: "France", FullName: "Paris, France", Latitude: 48.86, Longitude: 2.34}
	env.uc.SelectCity(ctx, c, "suggestion")

	assert.Equal(t, "Paris", env.uc.Filters().LocationQuery)
	view := env.uc.View()
	assert.Equal(t, model.CityZoom, view.Zoom)
	assert.Equal(t, 48.86, view.Center.Lat)

	// テレメトリに選択イベントが送られる
	if assert.Len(t, env.telemetry.events, 1) {
		assert.Equal(t, "City Selected", env.telemetry.events[0])
		assert.Equal(t, "suggestion", env.telemetry.props[0]["source"])
	}
}

func TestExploreUseCase_UseMyLocation(t *testing.T) {
	ctx := context.Background()

	t.Run("取得成功時は現在地へ地図を寄せる", func(t *testing.T) {
		env := newTestEnv(t, FetchOnce)
		if err := env.uc.Init(ctx, ""); err != nil {
			t.Fatalf("初期化に失敗: %v", err)
		}
		env.locator.loc = model.LatLng{Lat: 35.0, Lng: 135.0}

		env.uc.UseMyLocation(ctx)

		view := env.uc.View()
		assert.Equal(t, env.locator.loc, view.Center)
		assert.Equal(t, model.CoordinateZoom, view.Zoom)
	})

	t.Run("取得失敗時はテキスト検索へフォールバックする", func(t *testing.T) {
		env := newTestEnv(t, FetchOnce)
		if err := env.uc.Init(ctx, ""); err != nil {
			t.Fatalf("初期化に失敗: %v", err)
		}
		env.locator.err = fmt.Errorf("位置情報が拒否されました")

		env.uc.UseMyLocation(ctx)

		assert.Equal(t, NearMeQuery, env.uc.Filters().LocationQuery)
	})

	t.Run("near meは地図中心からの距離順で全候補を返す", func(t *testing.T) {
		env := newTestEnv(t, FetchOnce)
		if err := env.uc.Init(ctx, ""); err != nil {
			t.Fatalf("初期化に失敗: %v", err)
		}
		env.uc.MoveViewport(model.LatLng{Lat: 35.68, Lng: 139.69}, 12)
		env.locator.err = fmt.Errorf("タイムアウト")

		env.uc.UseMyLocation(ctx)

		result := env.uc.Filtered()
		if len(result) != 3 {
			t.Fatalf("near meで候補が絞られてしまった: %d件", len(result))
		}
		assert.Equal(t, "r2", result[0].ID)
	})
}

func TestExploreUseCase_FitToResults(t *testing.T) {
	env := newTestEnv(t, FetchOnce)
	ctx := context.Background()

	if err := env.uc.Init(ctx, ""); err != nil {
		t.Fatalf("初期化に失敗: %v", err)
	}

	t.Run("絞り込み結果の境界ボックス中心へ寄せる", func(t *testing.T) {
		f := env.uc.Filters()
		f.Search = "bistro"
		env.uc.UpdateFilters(ctx, f)

		// r1 (48.86, 2.34) と r3 (40.71, -74.0) の境界ボックス中心
		env.uc.FitToResults(ctx)

		view := env.uc.View()
		assert.InDelta(t, 44.785, view.Center.Lat, 1e-9)
		assert.InDelta(t, -35.83, view.Center.Lng, 1e-9)
	})

	t.Run("結果が空なら表示状態を変えない", func(t *testing.T) {
		before := env.uc.View()
		f := env.uc.Filters()
		f.Search = "zzzzzz"
		env.uc.UpdateFilters(ctx, f)

		env.uc.FitToResults(ctx)
		assert.Equal(t, before.Center, env.uc.View().Center)
	})
}

func TestExploreUseCase_NearbyFrom(t *testing.T) {
	env := newTestEnv(t, FetchOnce)
	ctx := context.Background()

	if err := env.uc.Init(ctx, ""); err != nil {
		t.Fatalf("初期化に失敗: %v", err)
	}

	// 東京からの距離順: r2 (東京) -> r1 (パリ) -> r3 (ニューヨーク)
	result := env.uc.NearbyFrom(model.LatLng{Lat: 35.68, Lng: 139.69})
	if len(result) != 3 {
		t.Fatalf("3件を期待したが %d件", len(result))
	}
	assert.Equal(t, "r2", result[0].ID)
	assert.Equal(t, "r1", result[1].ID)
	assert.Equal(t, "r3", result[2].ID)
}
