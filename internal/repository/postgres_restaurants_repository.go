package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"michelin-maps/internal/domain/model"
	"michelin-maps/internal/domain/repository"
	"michelin-maps/internal/infrastructure/database"
)

// PostgresRestaurantsRepository PostgreSQL直接接続によるレストランリポジトリ
// PostgRESTを介さない集計・統合テスト経路として維持する
type PostgresRestaurantsRepository struct {
	client *database.PostgreSQLClient
}

func NewPostgresRestaurantsRepository(client *database.PostgreSQLClient) repository.RestaurantsRepository {
	return &PostgresRestaurantsRepository{
		client: client,
	}
}

const restaurantColumns = `id, name, address, location, city, country, stars, cuisine,
	price_level, latitude, longitude, phone, website, michelin_url, green_star, facilities, description`

// List 条件に合致するレストラン一覧と総件数を取得
func (r *PostgresRestaurantsRepository) List(ctx context.Context, filters *repository.RestaurantFilters, limit, offset int) ([]model.Restaurant, int, error) {
	where, args := buildWhereClause(filters)

	countQuery := "SELECT COUNT(*) FROM restaurants" + where
	var total int
	if err := r.client.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("レストラン件数の取得失敗: %w", err)
	}

	query := "SELECT " + restaurantColumns + " FROM restaurants" + where +
		" ORDER BY stars DESC, name ASC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.client.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("レストランデータの取得失敗: %w", err)
	}
	defer rows.Close()

	var restaurants []model.Restaurant
	for rows.Next() {
		restaurant, err := scanRestaurant(rows)
		if err != nil {
			return nil, 0, err
		}
		restaurants = append(restaurants, *restaurant)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("レストランデータの走査失敗: %w", err)
	}

	return restaurants, total, nil
}

// GetByID IDでレストランを1件取得
func (r *PostgresRestaurantsRepository) GetByID(ctx context.Context, id string) (*model.Restaurant, error) {
	query := "SELECT " + restaurantColumns + " FROM restaurants WHERE id = $1"
	row := r.client.DB.QueryRowContext(ctx, query, id)

	restaurant, err := scanRestaurant(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("レストランID %s が見つかりません", id)
	}
	if err != nil {
		return nil, err
	}
	return restaurant, nil
}

// FilterOptions 国・都市・料理カテゴリの選択肢を取得
func (r *PostgresRestaurantsRepository) FilterOptions(ctx context.Context) (*repository.FilterOptions, error) {
	options := &repository.FilterOptions{}
	targets := []struct {
		column string
		dest   *[]string
	}{
		{"country", &options.Countries},
		{"city", &options.Cities},
		{"cuisine", &options.Cuisines},
	}

	for _, t := range targets {
		query := fmt.Sprintf("SELECT DISTINCT %s FROM restaurants WHERE %s <> '' ORDER BY %s", t.column, t.column, t.column)
		rows, err := r.client.DB.QueryContext(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("%sの選択肢取得失敗: %w", t.column, err)
		}
		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				rows.Close()
				return nil, fmt.Errorf("%sの選択肢の読み取り失敗: %w", t.column, err)
			}
			*t.dest = append(*t.dest, v)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%sの選択肢の走査失敗: %w", t.column, err)
		}
		rows.Close()
	}

	return options, nil
}

// buildWhereClause 指定されたフィールドだけからWHERE句を組み立てる
func buildWhereClause(filters *repository.RestaurantFilters) (string, []any) {
	if filters.IsEmpty() {
		return "", nil
	}

	var conditions []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if len(filters.Stars) > 0 {
		add("stars = ANY($%d)", pq.Array(filters.Stars))
	}
	if len(filters.Countries) > 0 {
		add("country = ANY($%d)", pq.Array(filters.Countries))
	}
	if len(filters.Cities) > 0 {
		add("city = ANY($%d)", pq.Array(filters.Cities))
	}
	if len(filters.Cuisines) > 0 {
		add("cuisine = ANY($%d)", pq.Array(filters.Cuisines))
	}
	if len(filters.PriceLevels) > 0 {
		add("price_level = ANY($%d)", pq.Array(filters.PriceLevels))
	}
	if filters.GreenStar != nil {
		add("green_star = $%d", *filters.GreenStar)
	}
	if filters.Search != "" {
		add("name ILIKE $%d", "%"+filters.Search+"%")
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

// rowScanner QueryRowとQuery双方のScanを受けるための小さなインターフェース
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRestaurant 1行をドメインモデルへ変換する
func scanRestaurant(row rowScanner) (*model.Restaurant, error) {
	var (
		restaurant  model.Restaurant
		phone       sql.NullString
		website     sql.NullString
		michelinURL sql.NullString
		facilities  pq.StringArray
	)

	err := row.Scan(
		&restaurant.ID, &restaurant.Name, &restaurant.Address, &restaurant.Location,
		&restaurant.City, &restaurant.Country, &restaurant.Stars, &restaurant.Cuisine,
		&restaurant.PriceLevel, &restaurant.Lat, &restaurant.Lng,
		&phone, &website, &michelinURL, &restaurant.GreenStar, &facilities, &restaurant.Description,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("レストラン行の読み取り失敗: %w", err)
	}

	if phone.Valid {
		restaurant.Phone = &phone.String
	}
	if website.Valid {
		restaurant.Website = &website.String
	}
	if michelinURL.Valid {
		restaurant.MichelinURL = &michelinURL.String
	}
	restaurant.Facilities = []string(facilities)
	if restaurant.Facilities == nil {
		restaurant.Facilities = []string{}
	}

	return &restaurant, nil
}
