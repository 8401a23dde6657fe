package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/hoops-oracle/pkg/utils"
)

type TradeHandler struct {
	players          PlayerService
	defaultLeagueKey string
}

func NewTradeHandler(players PlayerService, defaultLeagueKey string) *TradeHandler {
	return &TradeHandler{players: players, defaultLeagueKey: defaultLeagueKey}
}

type TradeRequest struct {
	LeagueKey string   `json:"league_key"`
	Give      []string `json:"give"`
	Receive   []string `json:"receive"`
}

// AnalyzeTrade compares what a team gives against what it receives
func (h *TradeHandler) AnalyzeTrade(c *gin.Context) {
	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid trade request", err.Error())
		return
	}
	if req.LeagueKey == "" {
		req.LeagueKey = h.defaultLeagueKey
	}
	if req.LeagueKey == "" {
		utils.SendValidationError(c, "League key required", "set league_key or YAHOO_LEAGUE_KEY")
		return
	}
	if len(req.Give) == 0 && len(req.Receive) == 0 {
		utils.SendValidationError(c, "Trade has no players", "give or receive must list at least one player")
		return
	}

	analysis, err := h.players.AnalyzeTrade(c.Request.Context(), req.LeagueKey, req.Give, req.Receive)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SendSuccess(c, analysis)
}
