package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/hoops-oracle/internal/analytics"
	"github.com/stitts-dev/hoops-oracle/internal/mapper"
	"github.com/stitts-dev/hoops-oracle/pkg/utils"
)

const testLeague = "428.l.1234"

// MockCacheService for testing
type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

// MockPlayerProvider for testing
type MockPlayerProvider struct {
	mock.Mock
}

func (m *MockPlayerProvider) GetAvailablePlayers(ctx context.Context, leagueKey, position string, count int) ([]mapper.YahooPlayer, error) {
	args := m.Called(ctx, leagueKey, position, count)
	players, _ := args.Get(0).([]mapper.YahooPlayer)
	return players, args.Error(1)
}

func (m *MockPlayerProvider) GetPlayersByKeys(ctx context.Context, leagueKey string, playerKeys []string) ([]mapper.YahooPlayer, error) {
	args := m.Called(ctx, leagueKey, playerKeys)
	players, _ := args.Get(0).([]mapper.YahooPlayer)
	return players, args.Error(1)
}

func (m *MockPlayerProvider) SearchPlayers(ctx context.Context, leagueKey, term string, count int) ([]mapper.YahooPlayer, error) {
	args := m.Called(ctx, leagueKey, term, count)
	players, _ := args.Get(0).([]mapper.YahooPlayer)
	return players, args.Error(1)
}

func (m *MockPlayerProvider) GetTeamRoster(ctx context.Context, teamKey string) ([]mapper.YahooPlayer, error) {
	args := m.Called(ctx, teamKey)
	players, _ := args.Get(0).([]mapper.YahooPlayer)
	return players, args.Error(1)
}

type fakeSnapshotStore struct {
	pool  []analytics.PlayerStats
	saved [][]analytics.PlayerStats
}

func (f *fakeSnapshotStore) SavePool(ctx context.Context, leagueKey string, lines []analytics.PlayerStats, asOf time.Time) (int, error) {
	f.saved = append(f.saved, lines)
	return len(lines), nil
}

func (f *fakeSnapshotStore) LatestPool(ctx context.Context) ([]analytics.PlayerStats, error) {
	return f.pool, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

// rawPlayer builds a Yahoo record with 40 games of season totals. Points and
// rebounds are per game values; everything else is flat across players.
func rawPlayer(id int, points, rebounds float64) mapper.YahooPlayer {
	const gp = 40
	stats := []map[string]string{
		{"stat_id": "0", "value": fmt.Sprint(gp)},
		{"stat_id": "9004003", "value": fmt.Sprintf("%d/%d", 5*gp, 10*gp)},
		{"stat_id": "9007006", "value": fmt.Sprintf("%d/%d", 3*gp, 4*gp)},
		{"stat_id": "10", "value": fmt.Sprint(2 * gp)},
		{"stat_id": "12", "value": fmt.Sprint(points * gp)},
		{"stat_id": "15", "value": fmt.Sprint(rebounds * gp)},
		{"stat_id": "16", "value": fmt.Sprint(3 * gp)},
		{"stat_id": "17", "value": fmt.Sprint(1 * gp)},
		{"stat_id": "18", "value": fmt.Sprint(1 * gp)},
		{"stat_id": "19", "value": fmt.Sprint(2 * gp)},
	}
	raw, _ := json.Marshal(stats)
	return mapper.YahooPlayer{
		PlayerKey:         fmt.Sprintf("428.p.%d", id),
		PlayerID:          fmt.Sprint(id),
		Name:              fmt.Sprintf("Player %d", id),
		Team:              "NYK",
		EligiblePositions: []string{"PG", "SG"},
		Stats:             raw,
	}
}

// rawPool returns n players with ids 1..n where lower ids score more points
func rawPool(n int) []mapper.YahooPlayer {
	players := make([]mapper.YahooPlayer, n)
	for i := range players {
		players[i] = rawPlayer(i+1, float64(30-i), float64(5+i%3))
	}
	return players
}

func newTestService(provider PlayerProvider, cache PoolCache, snapshots SnapshotStore) *PlayerDataService {
	analyzer := analytics.NewCategoryAnalyzer(analytics.DefaultAnalyzerConfig())
	return NewPlayerDataService(
		provider,
		mapper.NewYahooMapper(nil, quietLogger()),
		cache,
		snapshots,
		analyzer,
		analytics.NewDraftEngine(analyzer),
		PlayerDataConfig{PoolSize: 50, CacheTTL: time.Hour, ReplacementLevel: 5},
		quietLogger(),
	)
}

func TestPlayerKey(t *testing.T) {
	assert.Equal(t, "428.p.5583", PlayerKey("428.l.1234", "5583"))
	assert.Equal(t, "nba.p.1", PlayerKey("nba.l.99", "1"))
}

func TestAvailablePool_CacheHit(t *testing.T) {
	provider := new(MockPlayerProvider)
	cache := new(MockCacheService)

	cached := PoolSnapshot{
		LeagueKey: testLeague,
		Players:   []analytics.PlayerStats{{PlayerID: "1", GamesPlayed: 30}},
	}
	cache.On("Get", mock.Anything, PlayerPoolCacheKey(testLeague), mock.AnythingOfType("*services.PoolSnapshot")).
		Run(func(args mock.Arguments) {
			*args.Get(2).(*PoolSnapshot) = cached
		}).
		Return(nil)

	service := newTestService(provider, cache, nil)
	pool, fromCache, err := service.AvailablePool(context.Background(), testLeague)

	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, cached.Players, pool)
	provider.AssertNotCalled(t, "GetAvailablePlayers", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	cache.AssertExpectations(t)
}

func TestAvailablePool_CacheMissFetchesAndCaches(t *testing.T) {
	provider := new(MockPlayerProvider)
	cache := new(MockCacheService)

	cache.On("Get", mock.Anything, PlayerPoolCacheKey(testLeague), mock.Anything).Return(ErrCacheMiss)
	cache.On("Set", mock.Anything, PlayerPoolCacheKey(testLeague), mock.AnythingOfType("services.PoolSnapshot"), time.Hour).Return(nil)
	provider.On("GetAvailablePlayers", mock.Anything, testLeague, "", 50).Return(rawPool(3), nil)

	service := newTestService(provider, cache, nil)
	pool, fromCache, err := service.AvailablePool(context.Background(), testLeague)

	require.NoError(t, err)
	assert.False(t, fromCache)
	require.Len(t, pool, 3)
	assert.InDelta(t, 30.0, pool[0].Points, 1e-9)
	assert.Equal(t, 40, pool[0].GamesPlayed)
	provider.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestAvailablePool_FallsBackToSnapshot(t *testing.T) {
	provider := new(MockPlayerProvider)
	provider.On("GetAvailablePlayers", mock.Anything, testLeague, "", 50).
		Return(nil, fmt.Errorf("%w: status 503", utils.ErrUpstream))

	stored := []analytics.PlayerStats{{PlayerID: "77", GamesPlayed: 50}}
	service := newTestService(provider, nil, &fakeSnapshotStore{pool: stored})

	pool, _, err := service.AvailablePool(context.Background(), testLeague)
	require.NoError(t, err)
	assert.Equal(t, stored, pool)
}

func TestAvailablePool_UpstreamErrorWithoutSnapshot(t *testing.T) {
	provider := new(MockPlayerProvider)
	provider.On("GetAvailablePlayers", mock.Anything, testLeague, "", 50).
		Return(nil, fmt.Errorf("%w: status 503", utils.ErrUpstream))

	service := newTestService(provider, nil, &fakeSnapshotStore{})

	_, _, err := service.AvailablePool(context.Background(), testLeague)
	assert.ErrorIs(t, err, utils.ErrUpstream)
}

func TestRankings(t *testing.T) {
	provider := new(MockPlayerProvider)
	provider.On("GetAvailablePlayers", mock.Anything, testLeague, "", 50).Return(rawPool(12), nil)
	service := newTestService(provider, nil, nil)

	overall, _, err := service.Rankings(context.Background(), testLeague, nil, 5)
	require.NoError(t, err)
	require.Len(t, overall, 5)
	assert.Equal(t, 1, overall[0].Rank)
	require.NotNil(t, overall[0].TotalValue)
	assert.GreaterOrEqual(t, *overall[0].TotalValue, *overall[4].TotalValue)

	reb := analytics.CategoryRebounds
	byRebounds, _, err := service.Rankings(context.Background(), testLeague, &reb, 0)
	require.NoError(t, err)
	require.Len(t, byRebounds, 12)
	assert.Equal(t, 7.0, byRebounds[0].Stats[analytics.CategoryRebounds])
	assert.Equal(t, 5.0, byRebounds[11].Stats[analytics.CategoryRebounds])
}

func TestSearch_ZScoresOnlyForLargeResults(t *testing.T) {
	provider := new(MockPlayerProvider)
	provider.On("SearchPlayers", mock.Anything, testLeague, "small", 25).Return(rawPool(3), nil)
	provider.On("SearchPlayers", mock.Anything, testLeague, "large", 25).Return(rawPool(10), nil)
	service := newTestService(provider, nil, nil)

	small, err := service.Search(context.Background(), testLeague, "small", 25)
	require.NoError(t, err)
	require.Len(t, small, 3)
	assert.Nil(t, small[0].ZScores)

	large, err := service.Search(context.Background(), testLeague, "large", 25)
	require.NoError(t, err)
	require.Len(t, large, 10)
	assert.NotNil(t, large[0].ZScores)
	assert.NotNil(t, large[0].TotalValue)
}

func TestDraftRecommendations_ExcludesDraftedPlayers(t *testing.T) {
	provider := new(MockPlayerProvider)
	provider.On("GetAvailablePlayers", mock.Anything, testLeague, "", 50).Return(rawPool(30), nil)
	service := newTestService(provider, nil, nil)

	board, err := service.DraftRecommendations(context.Background(), testLeague, []string{"1", "2", "3"}, []string{"2"}, 5)
	require.NoError(t, err)

	require.Len(t, board.Recommendations, 5)
	for _, rec := range board.Recommendations {
		assert.NotContains(t, []string{"1", "2", "3"}, rec.PlayerID)
	}
	assert.Equal(t, 1, board.Recommendations[0].Rank)
	assert.NotEmpty(t, board.Recommendations[0].CategoryFit)
	assert.Equal(t, 1, board.PositionCounts["PG"])
	assert.Equal(t, 0, board.PositionCounts["C"])
	provider.AssertNotCalled(t, "GetPlayersByKeys", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyzeTrade_FetchesRosteredPlayers(t *testing.T) {
	provider := new(MockPlayerProvider)
	provider.On("GetAvailablePlayers", mock.Anything, testLeague, "", 50).Return(rawPool(12), nil)
	provider.On("GetPlayersByKeys", mock.Anything, testLeague, []string{"428.p.100"}).
		Return([]mapper.YahooPlayer{rawPlayer(100, 40, 12)}, nil)
	service := newTestService(provider, nil, nil)

	analysis, err := service.AnalyzeTrade(context.Background(), testLeague, []string{"12"}, []string{"100"})
	require.NoError(t, err)

	assert.Equal(t, analytics.TradeAccept, analysis.Recommendation)
	assert.Greater(t, analysis.NetValueChange, 0.5)
	require.Len(t, analysis.Give, 1)
	require.Len(t, analysis.Receive, 1)
	assert.Equal(t, "100", analysis.Receive[0].PlayerID)
	provider.AssertExpectations(t)
}

func TestAnalyzeTrade_UnknownPlayer(t *testing.T) {
	provider := new(MockPlayerProvider)
	provider.On("GetAvailablePlayers", mock.Anything, testLeague, "", 50).Return(rawPool(12), nil)
	provider.On("GetPlayersByKeys", mock.Anything, testLeague, []string{"428.p.404"}).Return([]mapper.YahooPlayer{}, nil)
	service := newTestService(provider, nil, nil)

	_, err := service.AnalyzeTrade(context.Background(), testLeague, []string{"404"}, []string{"1"})
	assert.ErrorIs(t, err, analytics.ErrPlayerNotFound)

	_, err = service.AnalyzeTrade(context.Background(), testLeague, nil, nil)
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
}

func TestMarginalValue(t *testing.T) {
	provider := new(MockPlayerProvider)
	provider.On("GetAvailablePlayers", mock.Anything, testLeague, "", 50).Return(rawPool(12), nil)
	service := newTestService(provider, nil, nil)

	// player 3 leads the pool: best points and rebounds mix
	top, err := service.MarginalValue(context.Background(), testLeague, "3", -1)
	require.NoError(t, err)
	assert.Greater(t, top, 0.0)

	atReplacement, err := service.MarginalValue(context.Background(), testLeague, "3", 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, atReplacement, 1e-9)
}

func TestSearch_ServedFromCache(t *testing.T) {
	provider := new(MockPlayerProvider)
	cache := new(MockCacheService)

	key := PlayerSearchCacheKey(testLeague, "Curry", 25)
	assert.Equal(t, PlayerSearchCacheKey(testLeague, "curry", 25), key)

	cached := []analytics.PlayerStats{{PlayerID: "5", Name: "Stephen Curry", GamesPlayed: 60}}
	cache.On("Get", mock.Anything, key, mock.AnythingOfType("*[]analytics.PlayerStats")).
		Run(func(args mock.Arguments) {
			*args.Get(2).(*[]analytics.PlayerStats) = cached
		}).
		Return(nil)

	service := newTestService(provider, cache, nil)
	views, err := service.Search(context.Background(), testLeague, "Curry", 25)

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Stephen Curry", views[0].Name)
	provider.AssertNotCalled(t, "SearchPlayers", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTeamRoster(t *testing.T) {
	provider := new(MockPlayerProvider)
	provider.On("GetTeamRoster", mock.Anything, testLeague+".t.3").
		Return([]mapper.YahooPlayer{rawPlayer(100, 40, 12), rawPlayer(101, 35, 11)}, nil)
	provider.On("GetAvailablePlayers", mock.Anything, testLeague, "", 50).Return(rawPool(12), nil)
	service := newTestService(provider, nil, nil)

	view, err := service.TeamRoster(context.Background(), testLeague+".t.3")
	require.NoError(t, err)

	assert.Equal(t, testLeague+".t.3", view.TeamKey)
	require.Len(t, view.Players, 2)
	assert.Equal(t, "100", view.Players[0].PlayerID)
	assert.Greater(t, view.TotalZ, 0.0)
	assert.Equal(t, 2, view.PositionCounts["PG"])
	assert.Equal(t, 0, view.PositionCounts["C"])
	assert.NotContains(t, view.WeakCategories, analytics.CategoryPoints)
	provider.AssertExpectations(t)
}

func TestTeamRoster_MalformedKey(t *testing.T) {
	provider := new(MockPlayerProvider)
	service := newTestService(provider, nil, nil)

	_, err := service.TeamRoster(context.Background(), "428.l.1")
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
	provider.AssertNotCalled(t, "GetTeamRoster", mock.Anything, mock.Anything)
}

func TestMarginalValue_NoPlayerMeetsGamesMinimum(t *testing.T) {
	provider := new(MockPlayerProvider)
	provider.On("GetAvailablePlayers", mock.Anything, testLeague, "", 50).Return(rawPool(1), nil)

	analyzer := analytics.NewCategoryAnalyzer(analytics.AnalyzerConfig{MinGamesPlayed: 50, PuntThreshold: analytics.DefaultPuntThreshold})
	service := NewPlayerDataService(
		provider,
		mapper.NewYahooMapper(nil, quietLogger()),
		nil,
		nil,
		analyzer,
		analytics.NewDraftEngine(analyzer),
		PlayerDataConfig{PoolSize: 50},
		quietLogger(),
	)

	_, err := service.MarginalValue(context.Background(), testLeague, "1", -1)
	assert.ErrorIs(t, err, analytics.ErrEmptyCohort)
}
