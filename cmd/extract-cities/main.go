package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/paulmach/orb"

	"michelin-maps/internal/dataset"
	"michelin-maps/internal/domain/helper"
	"michelin-maps/internal/domain/model"
)

const (
	defaultDatasetPath = "data/restaurants_v2.json"
	defaultOutputPath  = "internal/domain/city/cities.json"
)

// cityGroup Location文字列ごとのレストラン座標の集約
type cityGroup struct {
	name    string
	country string
	points  []orb.Point
}

func main() {
	input := defaultDatasetPath
	output := defaultOutputPath
	if len(os.Args) > 1 {
		input = os.Args[1]
	}
	if len(os.Args) > 2 {
		output = os.Args[2]
	}

	rows, err := dataset.Load(input)
	if err != nil {
		log.Fatalf("❌ データセットの読み込み失敗: %v", err)
	}

	groups := make(map[string]*cityGroup)
	for _, raw := range rows {
		lat, lng, err := raw.Coordinates()
		if err != nil {
			log.Printf("⚠️ %v", err)
			continue
		}

		g, ok := groups[raw.Location]
		if !ok {
			city, country := dataset.SplitLocation(raw.Location)
			g = &cityGroup{name: city, country: country}
			groups[raw.Location] = g
		}
		g.points = append(g.points, orb.Point{lng, lat})
	}

	cities := make([]model.City, 0, len(groups))
	for fullName, g := range groups {
		centroid := helper.CentroidOf(g.points)
		cities = append(cities, model.City{
			Name:            g.name,
			Country:         g.country,
			FullName:        fullName,
			Latitude:        centroid.Lat(),
			Longitude:       centroid.Lon(),
			RestaurantCount: len(g.points),
		})
	}

	sortCities(cities)

	data, err := json.MarshalIndent(cities, "", "  ")
	if err != nil {
		log.Fatalf("❌ JSONへの変換失敗: %v", err)
	}
	if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
		log.Fatalf("❌ 出力ファイルの書き込み失敗: %v", err)
	}

	fmt.Printf("✅ %d都市を %s へ書き出しました\n", len(cities), output)
}

// sortCities 都市名の昇順に並べる（同名は正規名で安定させる）
// サジェストの提示順と先頭一致の解決がこの並びに依存する
func sortCities(cities []model.City) {
	sort.Slice(cities, func(i, j int) bool {
		if cities[i].Name != cities[j].Name {
			return cities[i].Name < cities[j].Name
		}
		return cities[i].FullName < cities[j].FullName
	})
}
