package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"michelin-maps/internal/domain/city"
	domainmodel "michelin-maps/internal/domain/model"
	"michelin-maps/internal/domain/repository"
	"michelin-maps/model"
)

// CitiesHandler 都市ディレクトリ検索のHTTPハンドラー
type CitiesHandler struct {
	directory *city.Directory
	telemetry repository.TelemetryClient
}

// NewCitiesHandler CitiesHandlerの新しいインスタンスを作成
func NewCitiesHandler(directory *city.Directory, telemetry repository.TelemetryClient) *CitiesHandler {
	return &CitiesHandler{
		directory: directory,
		telemetry: telemetry,
	}
}

// SearchCities GET /api/cities?q= - 都市サジェストの取得（最大10件）
// 2文字未満のクエリは候補なしで返す
func (h *CitiesHandler) SearchCities(c *gin.Context) {
	query := c.Query("q")

	results := h.directory.FindByName(query)
	if results == nil {
		results = []domainmodel.City{}
	}

	if len(query) >= city.MinQueryLength {
		h.telemetry.Track("City Searched", map[string]any{
			"query":   query,
			"results": len(results),
		})
	}

	c.JSON(http.StatusOK, model.CitySuggestionsResponse{
		Cities: results,
	})
}
