package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/hoops-oracle/internal/analytics"
	"github.com/stitts-dev/hoops-oracle/internal/mapper"
	"github.com/stitts-dev/hoops-oracle/pkg/utils"
)

const defaultTopN = 10

// AnalysisHandler runs the valuation engine on caller-supplied stat lines
type AnalysisHandler struct {
	analyzer *analytics.CategoryAnalyzer
	engine   *analytics.DraftEngine
}

func NewAnalysisHandler(analyzer *analytics.CategoryAnalyzer, engine *analytics.DraftEngine) *AnalysisHandler {
	return &AnalysisHandler{analyzer: analyzer, engine: engine}
}

type NormalizeRequest struct {
	Players []analytics.PlayerStats `json:"players" binding:"required"`
	// MinGames overrides the configured games played filter
	MinGames *int `json:"min_games"`
}

type PuntRequest struct {
	Roster []analytics.PlayerStats `json:"roster" binding:"required"`
	// Pool, when present, scores the roster against it instead of itself
	Pool []analytics.PlayerStats `json:"pool"`
}

type RecommendRequest struct {
	Pool   []analytics.PlayerStats `json:"pool" binding:"required"`
	Roster []analytics.PlayerStats `json:"roster"`
	TopN   int                     `json:"top_n"`
}

// Normalize scores a cohort and returns it ranked
func (h *AnalysisHandler) Normalize(c *gin.Context) {
	var req NormalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid normalize request", err.Error())
		return
	}

	minGames := h.analyzer.Config().MinGamesPlayed
	if req.MinGames != nil {
		if *req.MinGames < 0 {
			utils.SendValidationError(c, "Invalid min_games", "min_games must not be negative")
			return
		}
		minGames = *req.MinGames
	}

	table := h.analyzer.Normalize(req.Players, minGames)
	utils.SendSuccessWithMeta(c, mapper.FormatTable(table.Scores), &utils.Meta{Total: table.Len()})
}

// DetectPunts flags the roster's weak categories
func (h *AnalysisHandler) DetectPunts(c *gin.Context) {
	var req PuntRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid punt request", err.Error())
		return
	}

	var punts []analytics.Category
	if len(req.Pool) > 0 {
		punts = h.analyzer.DetectPuntCategoriesAgainst(req.Roster, req.Pool)
	} else {
		punts = h.analyzer.DetectPuntCategories(req.Roster)
	}
	utils.SendSuccess(c, gin.H{
		"punt_categories": punts,
		"threshold":       h.analyzer.Config().PuntThreshold,
	})
}

// Recommend suggests picks from the supplied pool for the supplied roster
func (h *AnalysisHandler) Recommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid recommend request", err.Error())
		return
	}
	if req.TopN <= 0 {
		req.TopN = defaultTopN
	}

	board := h.engine.Recommend(req.Pool, req.Roster, req.TopN)
	recs := make([]mapper.PlayerView, 0, len(board.Recommendations))
	for _, rec := range board.Recommendations {
		recs = append(recs, mapper.FormatRecommendation(rec))
	}
	utils.SendSuccess(c, gin.H{
		"recommendations": recs,
		"position_counts": board.PositionCounts,
		"punt_categories": board.PuntCategories,
	})
}
