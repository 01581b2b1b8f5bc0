package city

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	_ "embed"

	"michelin-maps/internal/domain/model"
)

// 検索候補の件数上限とクエリの最小文字数
const (
	MaxSuggestions = 10
	MinQueryLength = 2
)

//go:embed cities.json
var embeddedCities []byte

// Directory 都市ディレクトリ
// cmd/extract-cities で事前生成したデータを起動時に一括ロードし、以降は不変
type Directory struct {
	cities []model.City
}

// Load 埋め込み済みの都市データからディレクトリを生成
func Load() (*Directory, error) {
	return LoadFrom(strings.NewReader(string(embeddedCities)))
}

// LoadFrom 任意のリーダーから都市データを読み込んでディレクトリを生成
// データは都市名のアルファベット順にソート済みであることを前提とする
func LoadFrom(r io.Reader) (*Directory, error) {
	var cities []model.City
	if err := json.NewDecoder(r).Decode(&cities); err != nil {
		return nil, fmt.Errorf("都市データのJSONデコード失敗: %w", err)
	}
	if len(cities) == 0 {
		return nil, fmt.Errorf("都市データが空です")
	}
	return &Directory{cities: cities}, nil
}

// NewDirectory テストや再生成ツールのためにスライスから直接生成
func NewDirectory(cities []model.City) *Directory {
	return &Directory{cities: cities}
}

// Len ディレクトリ内の都市数
func (d *Directory) Len() int {
	return len(d.cities)
}

// Cities 全都市のコピーを取得
func (d *Directory) Cities() []model.City {
	result := make([]model.City, len(d.cities))
	copy(result, d.cities)
	return result
}

// FindByName クエリに部分一致する都市を最大10件返す
// 都市名と "City, Country" 形式の正規名のどちらかに含まれれば候補になる
// 2文字未満のクエリは候補なし（呼び出し側はサジェストを表示しない）
func (d *Directory) FindByName(query string) []model.City {
	// 最小文字数はバイト数ではなく文字数で数える（マルチバイトの都市名対応）
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil
	}

	lower := strings.ToLower(query)
	var results []model.City
	for _, c := range d.cities {
		if strings.Contains(strings.ToLower(c.Name), lower) ||
			strings.Contains(strings.ToLower(c.FullName), lower) {
			results = append(results, c)
			if len(results) == MaxSuggestions {
				break
			}
		}
	}
	return results
}

// ResolveByName URLからの復元などで単一の都市を決定する
// 部分一致候補のうち都市名が完全一致（大文字小文字を区別）するものを優先し、
// なければ先頭の候補を返す
func (d *Directory) ResolveByName(name string) (model.City, bool) {
	results := d.FindByName(name)
	if len(results) == 0 {
		return model.City{}, false
	}
	for _, c := range results {
		if c.Name == name {
			return c, true
		}
	}
	return results[0], true
}
