package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/hoops-oracle/internal/analytics"
	"github.com/stitts-dev/hoops-oracle/internal/mapper"
	"github.com/stitts-dev/hoops-oracle/pkg/logger"
	"github.com/stitts-dev/hoops-oracle/pkg/utils"
)

// minSearchCohort is the smallest search result set that gets Z-scores
const minSearchCohort = 10

// PlayerProvider is the upstream player source
type PlayerProvider interface {
	GetAvailablePlayers(ctx context.Context, leagueKey, position string, count int) ([]mapper.YahooPlayer, error)
	GetPlayersByKeys(ctx context.Context, leagueKey string, playerKeys []string) ([]mapper.YahooPlayer, error)
	SearchPlayers(ctx context.Context, leagueKey, term string, count int) ([]mapper.YahooPlayer, error)
	GetTeamRoster(ctx context.Context, teamKey string) ([]mapper.YahooPlayer, error)
}

// PlayerDataConfig holds the pool settings
type PlayerDataConfig struct {
	PoolSize         int
	CacheTTL         time.Duration
	ReplacementLevel int
}

// PlayerDataService joins the provider, mapper, cache and analytics engine
type PlayerDataService struct {
	provider  PlayerProvider
	mapper    *mapper.YahooMapper
	cache     PoolCache
	snapshots SnapshotStore
	analyzer  *analytics.CategoryAnalyzer
	engine    *analytics.DraftEngine
	config    PlayerDataConfig
	logger    *logrus.Logger
}

// NewPlayerDataService creates a player data service. snapshots may be nil.
func NewPlayerDataService(
	provider PlayerProvider,
	yahooMapper *mapper.YahooMapper,
	cache PoolCache,
	snapshots SnapshotStore,
	analyzer *analytics.CategoryAnalyzer,
	engine *analytics.DraftEngine,
	config PlayerDataConfig,
	logger *logrus.Logger,
) *PlayerDataService {
	if config.PoolSize <= 0 {
		config.PoolSize = 200
	}
	if cache == nil {
		cache = NoopCache{}
	}
	return &PlayerDataService{
		provider:  provider,
		mapper:    yahooMapper,
		cache:     cache,
		snapshots: snapshots,
		analyzer:  analyzer,
		engine:    engine,
		config:    config,
		logger:    logger,
	}
}

// PoolSnapshot is the cached form of a league's available pool
type PoolSnapshot struct {
	LeagueKey string                  `json:"league_key"`
	FetchedAt time.Time               `json:"fetched_at"`
	Players   []analytics.PlayerStats `json:"players"`
}

// DraftBoardView is a formatted draft board
type DraftBoardView struct {
	Recommendations []mapper.PlayerView  `json:"recommendations"`
	PositionCounts  map[string]int       `json:"position_counts"`
	PuntCategories  []analytics.Category `json:"punt_categories"`
	// WeakCategories compares the roster against the whole pool rather than itself
	WeakCategories []analytics.Category `json:"weak_categories"`
}

// RosterView is a fantasy team's roster scored against its league pool
type RosterView struct {
	TeamKey        string               `json:"team_key"`
	Players        []mapper.PlayerView  `json:"players"`
	TotalZ         float64              `json:"total_z"`
	PositionCounts map[string]int       `json:"position_counts"`
	PuntCategories []analytics.Category `json:"punt_categories"`
	WeakCategories []analytics.Category `json:"weak_categories"`
}

// TradeAnalysis is a trade evaluation with the players involved
type TradeAnalysis struct {
	analytics.TradeEvaluation
	Give    []mapper.PlayerView `json:"give"`
	Receive []mapper.PlayerView `json:"receive"`
}

// PlayerKey builds a Yahoo player key from a league key such as "428.l.1234"
func PlayerKey(leagueKey, playerID string) string {
	game, _, _ := strings.Cut(leagueKey, ".")
	return fmt.Sprintf("%s.p.%s", game, playerID)
}

// AvailablePool returns the league's available pool, served from cache when fresh.
// When the provider fails the latest stored snapshot is used instead.
func (s *PlayerDataService) AvailablePool(ctx context.Context, leagueKey string) ([]analytics.PlayerStats, bool, error) {
	var cached PoolSnapshot
	err := s.cache.Get(ctx, PlayerPoolCacheKey(leagueKey), &cached)
	if err == nil {
		return cached.Players, true, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		logger.WithLeagueContext(s.logger, leagueKey).WithError(err).Warn("Player pool cache read failed")
	}

	players, err := s.RefreshPool(ctx, leagueKey)
	if err == nil {
		return players, false, nil
	}
	if s.snapshots == nil || !errors.Is(err, utils.ErrUpstream) {
		return nil, false, err
	}

	stored, storeErr := s.snapshots.LatestPool(ctx)
	if storeErr != nil || len(stored) == 0 {
		return nil, false, err
	}
	logger.WithLeagueContext(s.logger, leagueKey).WithError(err).WithField("players", len(stored)).Warn("Provider unavailable, serving stored snapshot")
	return stored, false, nil
}

// RefreshPool fetches the pool from the provider and replaces the cached copy
func (s *PlayerDataService) RefreshPool(ctx context.Context, leagueKey string) ([]analytics.PlayerStats, error) {
	raw, err := s.provider.GetAvailablePlayers(ctx, leagueKey, "", s.config.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch available players: %w", err)
	}
	players := s.mapper.ParsePlayers(raw)

	snapshot := PoolSnapshot{LeagueKey: leagueKey, FetchedAt: time.Now().UTC(), Players: players}
	if err := s.cache.Set(ctx, PlayerPoolCacheKey(leagueKey), snapshot, s.config.CacheTTL); err != nil {
		logger.WithLeagueContext(s.logger, leagueKey).WithError(err).Warn("Failed to cache player pool")
	}
	return players, nil
}

// Rankings ranks the pool overall, or by one category when category is set
func (s *PlayerDataService) Rankings(ctx context.Context, leagueKey string, category *analytics.Category, limit int) ([]mapper.PlayerView, bool, error) {
	pool, cached, err := s.AvailablePool(ctx, leagueKey)
	if err != nil {
		return nil, false, err
	}

	table := s.analyzer.Normalize(pool, s.analyzer.Config().MinGamesPlayed)
	rows := table.Scores
	if category != nil {
		rows = table.SortedBy(*category)
	}
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return mapper.FormatTable(rows), cached, nil
}

// Search looks players up by name. Results carry Z-scores only when the
// result set is large enough to be a meaningful cohort.
func (s *PlayerDataService) Search(ctx context.Context, leagueKey, query string, limit int) ([]mapper.PlayerView, error) {
	key := PlayerSearchCacheKey(leagueKey, query, limit)
	var lines []analytics.PlayerStats
	if err := s.cache.Get(ctx, key, &lines); err != nil {
		raw, err := s.provider.SearchPlayers(ctx, leagueKey, query, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to search players: %w", err)
		}
		lines = s.mapper.ParsePlayers(raw)
		if err := s.cache.Set(ctx, key, lines, s.config.CacheTTL); err != nil {
			logger.WithLeagueContext(s.logger, leagueKey).WithError(err).WithField("query", query).Warn("Failed to cache search results")
		}
	}

	views := make([]mapper.PlayerView, 0, len(lines))
	if len(lines) < minSearchCohort {
		for _, line := range lines {
			views = append(views, mapper.FormatPlayer(line, nil))
		}
		return views, nil
	}

	table := s.analyzer.Normalize(lines, s.analyzer.Config().MinGamesPlayed)
	for _, line := range lines {
		if row, ok := table.Get(line.PlayerID); ok {
			views = append(views, mapper.FormatPlayer(line, &row))
			continue
		}
		views = append(views, mapper.FormatPlayer(line, nil))
	}
	return views, nil
}

// DraftRecommendations suggests picks from the pool minus every drafted player.
// mine lists the drafted players on the user's roster.
func (s *PlayerDataService) DraftRecommendations(ctx context.Context, leagueKey string, drafted, mine []string, topN int) (DraftBoardView, error) {
	pool, _, err := s.AvailablePool(ctx, leagueKey)
	if err != nil {
		return DraftBoardView{}, err
	}

	roster, err := s.lookup(ctx, leagueKey, pool, mine)
	if err != nil {
		return DraftBoardView{}, err
	}

	taken := make(map[string]bool, len(drafted))
	for _, id := range drafted {
		taken[id] = true
	}
	available := make([]analytics.PlayerStats, 0, len(pool))
	for _, p := range pool {
		if !taken[p.PlayerID] {
			available = append(available, p)
		}
	}

	board := s.engine.Recommend(available, roster, topN)
	view := DraftBoardView{
		Recommendations: make([]mapper.PlayerView, 0, len(board.Recommendations)),
		PositionCounts:  board.PositionCounts,
		PuntCategories:  board.PuntCategories,
		WeakCategories:  s.analyzer.DetectPuntCategoriesAgainst(roster, pool),
	}
	for _, rec := range board.Recommendations {
		view.Recommendations = append(view.Recommendations, mapper.FormatRecommendation(rec))
	}
	return view, nil
}

// AnalyzeTrade scores both sides of a trade inside the pool plus the traded players
func (s *PlayerDataService) AnalyzeTrade(ctx context.Context, leagueKey string, give, receive []string) (TradeAnalysis, error) {
	if len(give) == 0 && len(receive) == 0 {
		return TradeAnalysis{}, fmt.Errorf("%w: trade has no players", utils.ErrInvalidInput)
	}

	pool, _, err := s.AvailablePool(ctx, leagueKey)
	if err != nil {
		return TradeAnalysis{}, err
	}
	involved, err := s.lookup(ctx, leagueKey, pool, append(append([]string{}, give...), receive...))
	if err != nil {
		return TradeAnalysis{}, err
	}

	table := s.analyzer.Normalize(mergeCohort(pool, involved), 0)
	eval, err := analytics.EvaluateTrade(table, give, receive)
	if err != nil {
		return TradeAnalysis{}, err
	}

	analysis := TradeAnalysis{TradeEvaluation: eval}
	analysis.Give = formatIDs(table, give)
	analysis.Receive = formatIDs(table, receive)
	return analysis, nil
}

// TeamRoster scores a team's roster inside its league's available pool
func (s *PlayerDataService) TeamRoster(ctx context.Context, teamKey string) (RosterView, error) {
	leagueKey, _, ok := strings.Cut(teamKey, ".t.")
	if !ok || leagueKey == "" {
		return RosterView{}, fmt.Errorf("%w: malformed team key %q", utils.ErrInvalidInput, teamKey)
	}

	raw, err := s.provider.GetTeamRoster(ctx, teamKey)
	if err != nil {
		return RosterView{}, fmt.Errorf("failed to fetch team roster: %w", err)
	}
	roster := s.mapper.ParsePlayers(raw)

	pool, _, err := s.AvailablePool(ctx, leagueKey)
	if err != nil {
		return RosterView{}, err
	}

	table := s.analyzer.Normalize(mergeCohort(pool, roster), 0)
	ids := make([]string, len(roster))
	for i, p := range roster {
		ids[i] = p.PlayerID
	}

	view := RosterView{
		TeamKey:        teamKey,
		Players:        formatIDs(table, ids),
		PositionCounts: analytics.RosterPositions(roster),
		PuntCategories: s.analyzer.DetectPuntCategories(roster),
		WeakCategories: s.analyzer.DetectPuntCategoriesAgainst(roster, pool),
	}
	for _, id := range ids {
		if row, ok := table.Get(id); ok {
			view.TotalZ += row.TotalZ
		}
	}
	return view, nil
}

// MarginalValue returns a player's value over the replacement level of the pool
func (s *PlayerDataService) MarginalValue(ctx context.Context, leagueKey, playerID string, replacementRank int) (float64, error) {
	pool, _, err := s.AvailablePool(ctx, leagueKey)
	if err != nil {
		return 0, err
	}
	players, err := s.lookup(ctx, leagueKey, pool, []string{playerID})
	if err != nil {
		return 0, err
	}
	if replacementRank < 0 {
		replacementRank = s.config.ReplacementLevel
	}
	return s.analyzer.MarginalValue(players[0], mergeCohort(pool, players), replacementRank)
}

// lookup resolves player ids from the pool, fetching the rest from the provider
func (s *PlayerDataService) lookup(ctx context.Context, leagueKey string, pool []analytics.PlayerStats, ids []string) ([]analytics.PlayerStats, error) {
	byID := make(map[string]analytics.PlayerStats, len(pool))
	for _, p := range pool {
		byID[p.PlayerID] = p
	}

	var missing []string
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, PlayerKey(leagueKey, id))
		}
	}
	if len(missing) > 0 {
		raw, err := s.provider.GetPlayersByKeys(ctx, leagueKey, missing)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch players: %w", err)
		}
		for _, line := range s.mapper.ParsePlayers(raw) {
			byID[line.PlayerID] = line
		}
	}

	found := make([]analytics.PlayerStats, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", analytics.ErrPlayerNotFound, id)
		}
		found = append(found, p)
	}
	return found, nil
}

func mergeCohort(pool, extra []analytics.PlayerStats) []analytics.PlayerStats {
	seen := make(map[string]bool, len(pool))
	cohort := make([]analytics.PlayerStats, 0, len(pool)+len(extra))
	for _, p := range pool {
		seen[p.PlayerID] = true
		cohort = append(cohort, p)
	}
	for _, p := range extra {
		if !seen[p.PlayerID] {
			seen[p.PlayerID] = true
			cohort = append(cohort, p)
		}
	}
	return cohort
}

func formatIDs(table *analytics.ScoreTable, ids []string) []mapper.PlayerView {
	views := make([]mapper.PlayerView, 0, len(ids))
	for _, id := range ids {
		if row, ok := table.Get(id); ok {
			views = append(views, mapper.FormatPlayer(row.Player, &row))
		}
	}
	return views
}
