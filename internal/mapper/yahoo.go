package mapper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/hoops-oracle/internal/analytics"
)

// Stat names produced by the stat id map
const (
	StatGamesPlayed = "GP"
	StatFGA         = "FGA"
	StatFGM         = "FGM"
	StatFTA         = "FTA"
	StatFTM         = "FTM"
	StatThrees      = "3PM"
	StatPoints      = "PTS"
	StatRebounds    = "REB"
	StatAssists     = "AST"
	StatSteals      = "STL"
	StatBlocks      = "BLK"
	StatTurnovers   = "TO"

	// composite made/attempted entries returned by 9-cat leagues
	StatFGMadeAttempted = "FGM/FGA"
	StatFTMadeAttempted = "FTM/FTA"
)

// DefaultStatIDMap maps Yahoo NBA stat ids to stat names
var DefaultStatIDMap = map[string]string{
	"0":       StatGamesPlayed,
	"3":       StatFGA,
	"4":       StatFGM,
	"6":       StatFTA,
	"7":       StatFTM,
	"10":      StatThrees,
	"12":      StatPoints,
	"15":      StatRebounds,
	"16":      StatAssists,
	"17":      StatSteals,
	"18":      StatBlocks,
	"19":      StatTurnovers,
	"9004003": StatFGMadeAttempted,
	"9007006": StatFTMadeAttempted,
}

// eligiblePositions are kept from a player's position list; anything else is dropped
var eligiblePositions = []string{"PG", "SG", "SF", "PF", "C", "G", "F"}

// YahooPlayer is a player record flattened out of Yahoo's nested response format.
// Stats holds the raw stats container in whichever shape the endpoint returned.
type YahooPlayer struct {
	PlayerKey         string          `json:"player_key"`
	PlayerID          string          `json:"player_id"`
	Name              string          `json:"name"`
	Team              string          `json:"editorial_team_abbr"`
	Status            string          `json:"status,omitempty"`
	EligiblePositions []string        `json:"eligible_positions"`
	Stats             json.RawMessage `json:"stats,omitempty"`
}

// YahooMapper converts Yahoo player records into stat lines
type YahooMapper struct {
	statIDs map[string]string
	logger  *logrus.Logger
}

// NewYahooMapper creates a mapper; a nil statIDs uses DefaultStatIDMap
func NewYahooMapper(statIDs map[string]string, logger *logrus.Logger) *YahooMapper {
	if statIDs == nil {
		statIDs = DefaultStatIDMap
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &YahooMapper{statIDs: statIDs, logger: logger}
}

type statEntry struct {
	StatID json.RawMessage `json:"stat_id"`
	Value  json.RawMessage `json:"value"`
}

type wrappedStat struct {
	Stat *statEntry `json:"stat"`
}

// ParseStatArray reads a stats container into stat name -> value.
// Accepted shapes:
//
//	{"stats": [{"stat": {"stat_id": "0", "value": "10"}}, ...]}
//	{"stat": [{"stat_id": "0", "value": "10"}, ...]}
//	[{"stat_id": "0", "value": "10"}, ...]
//
// Unknown stat ids are ignored; unparseable values read as 0.
func (m *YahooMapper) ParseStatArray(raw json.RawMessage) (map[string]float64, error) {
	stats := make(map[string]float64)
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return stats, nil
	}

	var items []json.RawMessage
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("failed to decode stat array: %w", err)
		}
	case '{':
		var container struct {
			Stats []json.RawMessage `json:"stats"`
			Stat  []json.RawMessage `json:"stat"`
		}
		if err := json.Unmarshal(raw, &container); err != nil {
			return nil, fmt.Errorf("failed to decode stat container: %w", err)
		}
		items = container.Stats
		if items == nil {
			items = container.Stat
		}
	default:
		return nil, fmt.Errorf("unexpected stats payload starting with %q", raw[0])
	}

	for _, item := range items {
		entry, err := decodeStatEntry(item)
		if err != nil {
			m.logger.WithError(err).Debug("Skipping malformed stat entry")
			continue
		}
		name, ok := m.statIDs[unquote(entry.StatID)]
		if !ok {
			continue
		}
		value := unquote(entry.Value)

		switch name {
		case StatFGMadeAttempted:
			stats[StatFGM], stats[StatFGA] = parsePair(value)
		case StatFTMadeAttempted:
			stats[StatFTM], stats[StatFTA] = parsePair(value)
		default:
			stats[name] = parseValue(value)
		}
	}
	return stats, nil
}

// ParsePlayer maps a Yahoo player holding season totals into a per-game stat line.
// Games played of 0 is treated as 1 so totals pass through unchanged.
func (m *YahooMapper) ParsePlayer(p YahooPlayer) (analytics.PlayerStats, error) {
	line := analytics.PlayerStats{
		PlayerID:  p.PlayerID,
		Name:      p.Name,
		Positions: ParsePositions(p.EligiblePositions),
		Team:      p.Team,
	}
	if line.Name == "" {
		line.Name = "Unknown"
	}
	if line.Team == "" {
		line.Team = "FA"
	}

	stats, err := m.ParseStatArray(p.Stats)
	if err != nil {
		return line, fmt.Errorf("player %s: %w", p.PlayerKey, err)
	}
	if len(stats) == 0 {
		return line, nil
	}

	gp := int(stats[StatGamesPlayed])
	if gp == 0 {
		gp = 1
	}
	games := float64(gp)

	line.GamesPlayed = gp
	line.FGMade = stats[StatFGM] / games
	line.FGAttempted = stats[StatFGA] / games
	line.FTMade = stats[StatFTM] / games
	line.FTAttempted = stats[StatFTA] / games
	line.ThreePM = stats[StatThrees] / games
	line.Points = stats[StatPoints] / games
	line.Rebounds = stats[StatRebounds] / games
	line.Assists = stats[StatAssists] / games
	line.Steals = stats[StatSteals] / games
	line.Blocks = stats[StatBlocks] / games
	line.Turnovers = stats[StatTurnovers] / games
	return line, nil
}

// ParsePlayers maps every player, dropping the ones that fail to parse
func (m *YahooMapper) ParsePlayers(players []YahooPlayer) []analytics.PlayerStats {
	lines := make([]analytics.PlayerStats, 0, len(players))
	for _, p := range players {
		line, err := m.ParsePlayer(p)
		if err != nil {
			m.logger.WithError(err).WithField("player_key", p.PlayerKey).Warn("Failed to parse player stats")
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// ParsePositions keeps the recognised positions, falling back to UTIL
func ParsePositions(raw []string) []string {
	positions := make([]string, 0, len(raw))
	for _, pos := range raw {
		pos = strings.ToUpper(strings.TrimSpace(pos))
		if slices.Contains(eligiblePositions, pos) && !slices.Contains(positions, pos) {
			positions = append(positions, pos)
		}
	}
	if len(positions) == 0 {
		return []string{"UTIL"}
	}
	return positions
}

func decodeStatEntry(raw json.RawMessage) (statEntry, error) {
	var wrapped wrappedStat
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return statEntry{}, err
	}
	if wrapped.Stat != nil {
		return *wrapped.Stat, nil
	}
	var entry statEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return statEntry{}, err
	}
	return entry, nil
}

// unquote returns the raw JSON scalar as plain text, whether it was a string or a number
func unquote(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func parseValue(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" || value == "-" {
		return 0
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}

func parsePair(value string) (made, attempted float64) {
	parts := strings.SplitN(value, "/", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	return parseValue(parts[0]), parseValue(parts[1])
}
