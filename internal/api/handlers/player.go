package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/hoops-oracle/internal/analytics"
	"github.com/stitts-dev/hoops-oracle/internal/mapper"
	"github.com/stitts-dev/hoops-oracle/internal/services"
	"github.com/stitts-dev/hoops-oracle/pkg/utils"
)

const (
	defaultRankingLimit = 50
	maxRankingLimit     = 500
	defaultSearchLimit  = 25
)

// PlayerService is the league-backed valuation surface used by the handlers
type PlayerService interface {
	Rankings(ctx context.Context, leagueKey string, category *analytics.Category, limit int) ([]mapper.PlayerView, bool, error)
	Search(ctx context.Context, leagueKey, query string, limit int) ([]mapper.PlayerView, error)
	MarginalValue(ctx context.Context, leagueKey, playerID string, replacementRank int) (float64, error)
	DraftRecommendations(ctx context.Context, leagueKey string, drafted, mine []string, topN int) (services.DraftBoardView, error)
	AnalyzeTrade(ctx context.Context, leagueKey string, give, receive []string) (services.TradeAnalysis, error)
	TeamRoster(ctx context.Context, teamKey string) (services.RosterView, error)
}

type PlayerHandler struct {
	players          PlayerService
	defaultLeagueKey string
}

func NewPlayerHandler(players PlayerService, defaultLeagueKey string) *PlayerHandler {
	return &PlayerHandler{players: players, defaultLeagueKey: defaultLeagueKey}
}

// GetRankings returns the available pool ranked overall or by one category
func (h *PlayerHandler) GetRankings(c *gin.Context) {
	leagueKey, ok := leagueFromQuery(c, h.defaultLeagueKey)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", defaultRankingLimit)
	if !ok {
		return
	}
	if limit <= 0 || limit > maxRankingLimit {
		limit = maxRankingLimit
	}

	var category *analytics.Category
	if raw := c.Query("category"); raw != "" {
		parsed, err := analytics.ParseCategory(raw)
		if err != nil {
			utils.SendValidationError(c, "Invalid category", err.Error())
			return
		}
		category = &parsed
	}

	views, cached, err := h.players.Rankings(c.Request.Context(), leagueKey, category, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	meta := &utils.Meta{Total: len(views), Limit: limit, Cached: cached}
	if category != nil {
		meta.Category = string(*category)
	}
	utils.SendSuccessWithMeta(c, views, meta)
}

// SearchPlayers looks players up by name
func (h *PlayerHandler) SearchPlayers(c *gin.Context) {
	leagueKey, ok := leagueFromQuery(c, h.defaultLeagueKey)
	if !ok {
		return
	}
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		utils.SendValidationError(c, "Search query required", "q must not be empty")
		return
	}
	limit, ok := intQuery(c, "limit", defaultSearchLimit)
	if !ok {
		return
	}

	views, err := h.players.Search(c.Request.Context(), leagueKey, query, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SendSuccessWithMeta(c, views, &utils.Meta{Total: len(views), Limit: limit})
}

// GetPlayerValue returns a player's value over replacement level
func (h *PlayerHandler) GetPlayerValue(c *gin.Context) {
	leagueKey, ok := leagueFromQuery(c, h.defaultLeagueKey)
	if !ok {
		return
	}
	replacement, ok := intQuery(c, "replacement", -1)
	if !ok {
		return
	}

	playerID := c.Param("id")
	value, err := h.players.MarginalValue(c.Request.Context(), leagueKey, playerID, replacement)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SendSuccess(c, gin.H{
		"player_id":      playerID,
		"marginal_value": value,
	})
}

// GetTeamRoster scores a fantasy team's roster against its league pool
func (h *PlayerHandler) GetTeamRoster(c *gin.Context) {
	roster, err := h.players.TeamRoster(c.Request.Context(), c.Param("teamKey"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SendSuccess(c, roster)
}

func leagueFromQuery(c *gin.Context, fallback string) (string, bool) {
	leagueKey := c.DefaultQuery("league", fallback)
	if leagueKey == "" {
		utils.SendValidationError(c, "League key required", "set league or YAHOO_LEAGUE_KEY")
		return "", false
	}
	return leagueKey, true
}

func intQuery(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		utils.SendValidationError(c, "Invalid "+name, err.Error())
		return 0, false
	}
	return v, true
}
