package urlstate

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"michelin-maps/internal/domain/city"
	"michelin-maps/internal/domain/model"
)

func testResolver(t *testing.T) *city.Directory {
	t.Helper()
	dir, err := city.Load()
	if err != nil {
		t.Fatalf("都市ディレクトリの読み込み失敗: %v", err)
	}
	return dir
}

func TestEncode(t *testing.T) {
	t.Run("デフォルト状態は空のクエリ文字列になる", func(t *testing.T) {
		encoded := Encode(DefaultState())
		if encoded != "" {
			t.Errorf("空文字列を期待したが: %q", encoded)
		}
	})

	t.Run("デフォルト値のパラメータは省略される", func(t *testing.T) {
		s := DefaultState()
		s.Filters.Search = "sushi"
		encoded := Encode(s)

		params, err := url.ParseQuery(encoded)
		if err != nil {
			t.Fatalf("エンコード結果が不正: %v", err)
		}
		assert.Equal(t, "sushi", params.Get(ParamSearch))
		for _, key := range []string{ParamSelectedID, ParamStars, ParamPrice, ParamCities, ParamCenter, ParamZoom} {
			if params.Has(key) {
				t.Errorf("デフォルト値の %q が省略されていない: %q", key, encoded)
			}
		}
	})

	t.Run("全アワード選択時はsを省略する", func(t *testing.T) {
		s := DefaultState()
		s.Filters.Stars = []int{3, 2, 1, 0, -1}
		encoded := Encode(s)
		params, _ := url.ParseQuery(encoded)
		assert.False(t, params.Has(ParamStars))
	})

	t.Run("部分的なアワード選択はカンマ区切りで出力する", func(t *testing.T) {
		s := DefaultState()
		s.Filters.Stars = []int{3, 1}
		params, _ := url.ParseQuery(Encode(s))
		assert.Equal(t, "3,1", params.Get(ParamStars))
	})

	t.Run("座標とズームは組で出力される", func(t *testing.T) {
		s := DefaultState()
		s.View.Center = model.LatLng{Lat: 35.689487, Lng: 139.691711}
		s.View.Zoom = model.CityZoom
		params, _ := url.ParseQuery(Encode(s))
		assert.Equal(t, "35.689487,139.691711", params.Get(ParamCenter))
		assert.Equal(t, "11", params.Get(ParamZoom))
	})
}

func TestDecode(t *testing.T) {
	resolver := testResolver(t)

	t.Run("複合的なクエリの復元", func(t *testing.T) {
		s := Decode("?s=1,2&p=2-3&cities=Paris", DefaultState(), resolver)

		assert.Equal(t, []int{2, 1}, s.Filters.Stars)
		assert.Equal(t, 2, s.Filters.PriceMin)
		assert.Equal(t, 3, s.Filters.PriceMax)
		assert.Equal(t, "Paris", s.Filters.LocationQuery)
		// 都市名が解決されて地図中心が決まる
		assert.Equal(t, model.CityZoom, s.View.Zoom)
		assert.InDelta(t, 48.860721, s.View.Center.Lat, 1e-6)
	})

	t.Run("座標パラメータは都市名より優先される", func(t *testing.T) {
		s := Decode("?cities=Paris&ll=48.85,2.35", DefaultState(), resolver)

		assert.Equal(t, "Paris", s.Filters.LocationQuery)
		// 都市の座標ではなく ll の座標が使われる
		assert.Equal(t, 48.85, s.View.Center.Lat)
		assert.Equal(t, 2.35, s.View.Center.Lng)
		assert.Equal(t, model.CoordinateZoom, s.View.Zoom)
	})

	t.Run("明示的なズームは座標のデフォルトズームを上書きする", func(t *testing.T) {
		s := Decode("?ll=35.0,135.0&z=15", DefaultState(), resolver)
		assert.Equal(t, 15, s.View.Zoom)
	})

	t.Run("旧パラメータ名lでもロケーションを復元できる", func(t *testing.T) {
		s := Decode("?l=Tokyo", DefaultState(), resolver)
		assert.Equal(t, "Tokyo", s.Filters.LocationQuery)
		assert.Equal(t, model.CityZoom, s.View.Zoom)
	})

	t.Run("不正なアワード値は捨てられる", func(t *testing.T) {
		s := Decode("?s=1,99,abc", DefaultState(), resolver)
		assert.Equal(t, []int{1}, s.Filters.Stars)
	})

	t.Run("全て不正なアワード指定は既存値を保つ", func(t *testing.T) {
		prev := DefaultState()
		prev.Filters.Stars = []int{3}
		s := Decode("?s=99,abc", prev, resolver)
		assert.Equal(t, []int{3}, s.Filters.Stars)
	})

	t.Run("不正な価格帯は既存値を保つ", func(t *testing.T) {
		for _, raw := range []string{"?p=abc", "?p=3-2", "?p=0-9", "?p=2"} {
			s := Decode(raw, DefaultState(), resolver)
			assert.Equal(t, model.PriceLevelMin, s.Filters.PriceMin, raw)
			assert.Equal(t, model.PriceLevelMax, s.Filters.PriceMax, raw)
		}
	})

	t.Run("不正な座標は既存値を保つ", func(t *testing.T) {
		s := Decode("?ll=abc,def", DefaultState(), resolver)
		assert.Equal(t, model.DefaultCenterLat, s.View.Center.Lat)
		assert.Equal(t, model.DefaultZoom, s.View.Zoom)
	})

	t.Run("選択IDの復元", func(t *testing.T) {
		s := Decode("?id=rest-123", DefaultState(), resolver)
		assert.Equal(t, "rest-123", s.View.SelectedID)
	})

	t.Run("空のクエリはprevをそのまま返す", func(t *testing.T) {
		prev := DefaultState()
		prev.Filters.Search = "ramen"
		prev.View.Zoom = 9
		s := Decode("", prev, resolver)
		assert.Equal(t, prev, s)
	})
}

// エンコードとデコードの往復で状態が保存されることを確認する
func TestCodec_RoundTrip(t *testing.T) {
	resolver := testResolver(t)

	states := []State{
		{
			Filters: model.Filters{
				Stars:    []int{3, 2},
				Cuisines: []string{"French", "Creative"},
				PriceMin: 2, PriceMax: 4,
				LocationQuery: "Tokyo",
				Search:        "sushi",
			},
			View: model.ViewState{
				SelectedID: "rest-42",
				Center:     model.LatLng{Lat: 35.689487, Lng: 139.691711},
				Zoom:       13,
			},
		},
		{
			Filters: model.DefaultFilters(),
			View:    model.DefaultViewState(),
		},
		{
			Filters: model.Filters{
				Stars:    []int{0},
				PriceMin: 1, PriceMax: 1,
				Search: "noodle house",
			},
			View: model.DefaultViewState(),
		},
	}

	for _, original := range states {
		decoded := Decode("?"+Encode(original), DefaultState(), resolver)
		assert.Equal(t, original, decoded)
	}
}
