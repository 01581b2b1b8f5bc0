package helper

import (
	"math"
	"sort"

	"github.com/paulmach/orb"

	"michelin-maps/internal/domain/model"
)

const earthRadiusKm = 6371.0

// HaversineDistance は2地点間の距離を計算する (km)
func HaversineDistance(p1, p2 model.LatLng) float64 {
	lat1 := p1.Lat * math.Pi / 180
	lng1 := p1.Lng * math.Pi / 180
	lat2 := p2.Lat * math.Pi / 180
	lng2 := p2.Lng * math.Pi / 180
	dLat := lat2 - lat1
	dLng := lng2 - lng1
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// SortByDistanceFromLocation は基準座標からの距離でレストランスライスをソートする
// 「近くのお店」クエリの並び替えに使う
func SortByDistanceFromLocation(origin model.LatLng, restaurants []model.Restaurant) {
	sort.SliceStable(restaurants, func(i, j int) bool {
		distI := HaversineDistance(origin, restaurants[i].ToLatLng())
		distJ := HaversineDistance(origin, restaurants[j].ToLatLng())
		return distI < distJ
	})
}

// BoundsCenter はレストラン群を囲む境界ボックスの中心座標を計算する
// 絞り込み結果全体を地図に収めるときの中心決めに使う
func BoundsCenter(restaurants []model.Restaurant) (model.LatLng, bool) {
	if len(restaurants) == 0 {
		return model.LatLng{}, false
	}

	bound := orb.Bound{
		Min: orb.Point{restaurants[0].Lng, restaurants[0].Lat},
		Max: orb.Point{restaurants[0].Lng, restaurants[0].Lat},
	}
	for _, r := range restaurants[1:] {
		bound = bound.Extend(orb.Point{r.Lng, r.Lat})
	}

	center := bound.Center()
	return model.LatLng{Lat: center.Lat(), Lng: center.Lon()}, true
}

// CentroidOf は座標群の重心（算術平均）を計算する
// 都市ディレクトリ生成時の重心計算で使う
func CentroidOf(points []orb.Point) orb.Point {
	if len(points) == 0 {
		return orb.Point{}
	}
	var sumLng, sumLat float64
	for _, p := range points {
		sumLng += p.Lon()
		sumLat += p.Lat()
	}
	n := float64(len(points))
	return orb.Point{sumLng / n, sumLat / n}
}
