package analytics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pointsLadder builds n players whose only difference is points per game
func pointsLadder(n int) []PlayerStats {
	players := make([]PlayerStats, 0, n)
	for i := 1; i <= n; i++ {
		p := baseline(fmt.Sprintf("p%02d", i), 30)
		p.Points = float64(i)
		players = append(players, p)
	}
	return players
}

func TestFitFor_Thresholds(t *testing.T) {
	tests := []struct {
		z        float64
		expected FitLabel
	}{
		{2.0, FitExcellent},
		{1.51, FitExcellent},
		{1.5, FitGood},
		{0.51, FitGood},
		{0.5, FitNeutral},
		{0.0, FitNeutral},
		{-0.49, FitNeutral},
		{-0.5, FitWeak},
		{-3.0, FitWeak},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FitFor(tt.z), "z=%v", tt.z)
	}
}

func TestRecommend_EmptyRosterTopN(t *testing.T) {
	engine := NewDraftEngine(newTestAnalyzer())
	pool := pointsLadder(25)

	board := engine.Recommend(pool, nil, 5)
	require.Len(t, board.Recommendations, 5)

	expectedIDs := []string{"p25", "p24", "p23", "p22", "p21"}
	for i, rec := range board.Recommendations {
		assert.Equal(t, expectedIDs[i], rec.Player.PlayerID)
		assert.Equal(t, i+1, rec.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, board.Recommendations[i-1].Value, rec.Value)
		}
		for c, z := range rec.CategoryZ {
			assert.Equal(t, FitFor(z), rec.CategoryFit[c])
		}
		assert.Len(t, rec.CategoryFit, 9)
	}

	assert.Empty(t, board.PuntCategories)
	assert.Equal(t, map[string]int{"PG": 0, "SG": 0, "SF": 0, "PF": 0, "C": 0}, board.PositionCounts)
}

func TestRecommend_NeverLooksPastCandidatePool(t *testing.T) {
	engine := NewDraftEngine(newTestAnalyzer())
	board := engine.Recommend(pointsLadder(25), nil, 50)

	require.Len(t, board.Recommendations, CandidatePoolSize)
	for _, rec := range board.Recommendations {
		assert.NotContains(t, []string{"p01", "p02", "p03", "p04", "p05"}, rec.Player.PlayerID)
	}
}

func TestRecommend_RosterContext(t *testing.T) {
	engine := NewDraftEngine(newTestAnalyzer())

	center := baseline("big", 30)
	center.Positions = []string{"PF", "C"}
	guard := baseline("guard", 30)

	board := engine.Recommend(pointsLadder(10), []PlayerStats{center, guard}, 3)
	assert.Equal(t, 1, board.PositionCounts["PG"])
	assert.Equal(t, 1, board.PositionCounts["SG"])
	assert.Equal(t, 0, board.PositionCounts["SF"])
	assert.Equal(t, 1, board.PositionCounts["PF"])
	assert.Equal(t, 1, board.PositionCounts["C"])
	assert.Len(t, board.Recommendations, 3)
}

func TestRecommend_EmptyPoolAndZeroTopN(t *testing.T) {
	engine := NewDraftEngine(newTestAnalyzer())

	assert.Empty(t, engine.Recommend(nil, nil, 10).Recommendations)
	assert.Empty(t, engine.Recommend(pointsLadder(5), nil, 0).Recommendations)
}

func TestDetectPuntCategories(t *testing.T) {
	a := newTestAnalyzer()

	t.Run("empty roster", func(t *testing.T) {
		assert.Empty(t, a.DetectPuntCategories(nil))
		assert.Empty(t, a.DetectPuntCategories([]PlayerStats{}))
	})

	t.Run("roster scored against itself stays centred", func(t *testing.T) {
		roster := pointsLadder(4)
		roster[0].Blocks = 0
		assert.Empty(t, a.DetectPuntCategories(roster))
	})

	t.Run("roster without blocks against a shot-blocking pool", func(t *testing.T) {
		reference := make([]PlayerStats, 0, 10)
		for i := 0; i < 10; i++ {
			p := baseline(fmt.Sprintf("ref%d", i), 30)
			p.Blocks = 1.0 + float64(i)*0.1
			reference = append(reference, p)
		}
		first, second := baseline("mine1", 30), baseline("mine2", 30)
		first.Blocks, second.Blocks = 0, 0

		weak := a.DetectPuntCategoriesAgainst([]PlayerStats{first, second}, reference)
		assert.Equal(t, []Category{CategoryBlocks}, weak)
	})

	t.Run("threshold is tunable", func(t *testing.T) {
		strict := NewCategoryAnalyzer(AnalyzerConfig{PuntThreshold: 5})
		weak := strict.DetectPuntCategories([]PlayerStats{baseline("only", 10)})
		assert.Equal(t, Categories(), weak)
	})
}

func TestMarginalValue(t *testing.T) {
	a := newTestAnalyzer()
	pool := pointsLadder(5)

	t.Run("replacement player is worth zero", func(t *testing.T) {
		table := a.Normalize(pool, a.Config().MinGamesPlayed)
		replacement := table.Scores[2].Player

		value, err := a.MarginalValue(replacement, pool, 2)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, value, 1e-12)
	})

	t.Run("rank beyond pool clamps to last", func(t *testing.T) {
		value, err := a.MarginalValue(pool[0], pool, 100)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, value, 1e-12)

		best, err := a.MarginalValue(pool[4], pool, 100)
		require.NoError(t, err)
		assert.Greater(t, best, 0.0)
	})

	t.Run("missing player is reported", func(t *testing.T) {
		_, err := a.MarginalValue(baseline("ghost", 30), pool, 2)
		assert.ErrorIs(t, err, ErrPlayerNotFound)
	})

	t.Run("empty cohort is reported", func(t *testing.T) {
		_, err := a.MarginalValue(pool[0], pointsLadder(0), 2)
		assert.ErrorIs(t, err, ErrEmptyCohort)
	})
}

func TestEvaluateTrade(t *testing.T) {
	table := newTestAnalyzer().Normalize(pointsLadder(6), 0)

	eval, err := EvaluateTrade(table, []string{"p01"}, []string{"p06"})
	require.NoError(t, err)
	assert.Equal(t, TradeAccept, eval.Recommendation)
	assert.Greater(t, eval.CategoryImpact[CategoryPoints], 0.0)
	assert.InDelta(t, eval.ReceiveTotalZ-eval.GiveTotalZ, eval.NetValueChange, 1e-12)

	reverse, err := EvaluateTrade(table, []string{"p06"}, []string{"p01"})
	require.NoError(t, err)
	assert.Equal(t, TradeDecline, reverse.Recommendation)

	wide := newTestAnalyzer().Normalize(pointsLadder(20), 0)
	even, err := EvaluateTrade(wide, []string{"p10"}, []string{"p11"})
	require.NoError(t, err)
	assert.Equal(t, TradeEven, even.Recommendation)

	_, err = EvaluateTrade(table, []string{"nobody"}, []string{"p01"})
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}
