package mapper

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/hoops-oracle/internal/analytics"
)

func TestParseStatArray_Shapes(t *testing.T) {
	m := NewYahooMapper(nil, nil)

	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "stats wrapper with nested stat",
			raw:  `{"stats":[{"stat":{"stat_id":"0","value":"10"}},{"stat":{"stat_id":"12","value":"250"}}]}`,
		},
		{
			name: "stat wrapper",
			raw:  `{"stat":[{"stat_id":"0","value":"10"},{"stat_id":"12","value":"250"}]}`,
		},
		{
			name: "bare array",
			raw:  `[{"stat_id":"0","value":"10"},{"stat_id":12,"value":250}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, err := m.ParseStatArray(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, 10.0, stats[StatGamesPlayed])
			assert.Equal(t, 250.0, stats[StatPoints])
		})
	}
}

func TestParseStatArray_DashesAndUnknownIDs(t *testing.T) {
	m := NewYahooMapper(nil, nil)

	stats, err := m.ParseStatArray(json.RawMessage(
		`[{"stat_id":"9004003","value":"-/-"},{"stat_id":"19","value":"-"},{"stat_id":"999","value":"7"}]`))
	require.NoError(t, err)

	assert.Equal(t, 0.0, stats[StatFGM])
	assert.Equal(t, 0.0, stats[StatFGA])
	assert.Equal(t, 0.0, stats[StatTurnovers])
	assert.Len(t, stats, 3)
}

func TestParseStatArray_EmptyAndInvalid(t *testing.T) {
	m := NewYahooMapper(nil, nil)

	stats, err := m.ParseStatArray(nil)
	require.NoError(t, err)
	assert.Empty(t, stats)

	_, err = m.ParseStatArray(json.RawMessage(`"nope"`))
	assert.Error(t, err)
}

func TestParsePlayer_SeasonTotalsToPerGame(t *testing.T) {
	m := NewYahooMapper(nil, nil)

	player := YahooPlayer{
		PlayerKey:         "428.p.5583",
		PlayerID:          "5583",
		Name:              "Test Guard",
		Team:              "BOS",
		EligiblePositions: []string{"PG", "SG", "G", "Util"},
		Stats: json.RawMessage(`[
			{"stat_id":"0","value":"50"},
			{"stat_id":"9004003","value":"400/800"},
			{"stat_id":"9007006","value":"200/250"},
			{"stat_id":"10","value":"100"},
			{"stat_id":"12","value":"1100"},
			{"stat_id":"15","value":"250"},
			{"stat_id":"16","value":"300"},
			{"stat_id":"17","value":"60"},
			{"stat_id":"18","value":"25"},
			{"stat_id":"19","value":"150"}
		]`),
	}

	line, err := m.ParsePlayer(player)
	require.NoError(t, err)

	assert.Equal(t, "5583", line.PlayerID)
	assert.Equal(t, []string{"PG", "SG", "G"}, line.Positions)
	assert.Equal(t, 50, line.GamesPlayed)
	assert.InDelta(t, 8.0, line.FGMade, 1e-9)
	assert.InDelta(t, 16.0, line.FGAttempted, 1e-9)
	assert.InDelta(t, 4.0, line.FTMade, 1e-9)
	assert.InDelta(t, 5.0, line.FTAttempted, 1e-9)
	assert.InDelta(t, 22.0, line.Points, 1e-9)
	assert.InDelta(t, 3.0, line.Turnovers, 1e-9)

	pct, ok := line.FGPct()
	assert.True(t, ok)
	assert.InDelta(t, 0.5, pct, 1e-9)
}

func TestParsePlayer_ZeroGamesUsesOne(t *testing.T) {
	m := NewYahooMapper(nil, nil)

	line, err := m.ParsePlayer(YahooPlayer{
		PlayerID: "1",
		Stats:    json.RawMessage(`[{"stat_id":"0","value":"0"},{"stat_id":"12","value":"12"}]`),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, line.GamesPlayed)
	assert.Equal(t, 12.0, line.Points)
	assert.Equal(t, "FA", line.Team)
	assert.Equal(t, "Unknown", line.Name)
	assert.Equal(t, []string{"UTIL"}, line.Positions)
}

func TestParsePlayer_NoStatsKeepsIdentity(t *testing.T) {
	m := NewYahooMapper(nil, nil)

	line, err := m.ParsePlayer(YahooPlayer{PlayerID: "7", Name: "Rookie", Team: "SAS", EligiblePositions: []string{"C"}})
	require.NoError(t, err)

	assert.Equal(t, 0, line.GamesPlayed)
	assert.Equal(t, 0.0, line.Points)
	assert.Equal(t, []string{"C"}, line.Positions)
}

func TestParsePlayers_DropsBrokenRecords(t *testing.T) {
	m := NewYahooMapper(nil, nil)

	lines := m.ParsePlayers([]YahooPlayer{
		{PlayerID: "1", Stats: json.RawMessage(`[{"stat_id":"0","value":"10"}]`)},
		{PlayerID: "2", Stats: json.RawMessage(`true`)},
	})

	require.Len(t, lines, 1)
	assert.Equal(t, "1", lines[0].PlayerID)
}

func TestCustomStatIDMap(t *testing.T) {
	m := NewYahooMapper(map[string]string{"5": StatPoints}, nil)

	stats, err := m.ParseStatArray(json.RawMessage(`[{"stat_id":"5","value":"30"},{"stat_id":"12","value":"99"}]`))
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{StatPoints: 30}, stats)
}

func TestFormatPlayer(t *testing.T) {
	line := analytics.PlayerStats{
		PlayerID:    "9",
		Name:        "Wing",
		Positions:   []string{"SF"},
		Team:        "MIA",
		GamesPlayed: 60,
		FGMade:      7.26,
		FGAttempted: 15.1,
		Points:      19.449,
	}

	view := FormatPlayer(line, nil)
	assert.Equal(t, 48.1, view.Stats[analytics.CategoryFGPct])
	assert.Equal(t, 0.0, view.Stats[analytics.CategoryFTPct])
	assert.Equal(t, 19.4, view.Stats[analytics.CategoryPoints])
	assert.Nil(t, view.ZScores)
	assert.Nil(t, view.TotalValue)

	score := &analytics.PlayerScore{
		Z:      analytics.CategoryScores{analytics.CategoryPoints: 1.23456},
		TotalZ: 4.567,
		Rank:   3,
	}
	view = FormatPlayer(line, score)
	assert.Equal(t, 1.23, view.ZScores[analytics.CategoryPoints])
	require.NotNil(t, view.TotalValue)
	assert.Equal(t, 4.57, *view.TotalValue)
	assert.Equal(t, 3, view.Rank)
}
