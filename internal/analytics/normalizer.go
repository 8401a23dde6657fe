package analytics

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultMinGamesPlayed filters low-sample players out of pool-wide valuations
	DefaultMinGamesPlayed = 20

	// DefaultPuntThreshold is the average roster Z below which a category is flagged weak
	DefaultPuntThreshold = -0.5

	// DefaultReplacementLevel is the table index used as the replacement baseline
	DefaultReplacementLevel = 100

	// zeroVarianceTolerance absorbs rounding noise when every value in a column is identical
	zeroVarianceTolerance = 1e-12
)

var (
	ErrEmptyCohort    = errors.New("no players remain after the games played filter")
	ErrPlayerNotFound = errors.New("player not found in scored cohort")
)

// AnalyzerConfig holds the tunable constants of the valuation engine
type AnalyzerConfig struct {
	MinGamesPlayed   int     `json:"min_games_played"`
	PuntThreshold    float64 `json:"punt_threshold"`
	ReplacementLevel int     `json:"replacement_level"`
}

// DefaultAnalyzerConfig returns the stock 9-cat settings
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		MinGamesPlayed:   DefaultMinGamesPlayed,
		PuntThreshold:    DefaultPuntThreshold,
		ReplacementLevel: DefaultReplacementLevel,
	}
}

// CategoryAnalyzer scores players across the nine categories using cohort Z-scores.
// It holds no mutable state and is safe for concurrent use.
type CategoryAnalyzer struct {
	config AnalyzerConfig
}

// NewCategoryAnalyzer creates an analyzer with the given settings
func NewCategoryAnalyzer(config AnalyzerConfig) *CategoryAnalyzer {
	return &CategoryAnalyzer{config: config}
}

// Config returns the analyzer settings
func (a *CategoryAnalyzer) Config() AnalyzerConfig {
	return a.config
}

// PlayerScore is one row of a ScoreTable
type PlayerScore struct {
	Player PlayerStats    `json:"player"`
	Values CategoryScores `json:"values"`
	Z      CategoryScores `json:"z_scores"`
	TotalZ float64        `json:"total_z"`
	Rank   int            `json:"rank"`
}

// ScoreTable is the cohort-relative result of a normalization, sorted by rank.
// It is never mutated after Normalize returns it.
type ScoreTable struct {
	MinGamesPlayed int           `json:"min_games_played"`
	Scores         []PlayerScore `json:"scores"`
	index          map[string]int
}

// Len returns the number of scored players
func (t *ScoreTable) Len() int {
	return len(t.Scores)
}

// Get looks up a player's row by id
func (t *ScoreTable) Get(playerID string) (PlayerScore, bool) {
	i, ok := t.index[playerID]
	if !ok {
		return PlayerScore{}, false
	}
	return t.Scores[i], true
}

// Top returns up to n rows from the head of the table
func (t *ScoreTable) Top(n int) []PlayerScore {
	if n > len(t.Scores) {
		n = len(t.Scores)
	}
	if n <= 0 {
		return []PlayerScore{}
	}
	out := make([]PlayerScore, n)
	copy(out, t.Scores[:n])
	return out
}

// SortedBy returns a copy of the rows ordered by one category's Z-score
func (t *ScoreTable) SortedBy(c Category) []PlayerScore {
	out := make([]PlayerScore, len(t.Scores))
	copy(out, t.Scores)
	sort.SliceStable(out, func(i, j int) bool {
		zi, zj := out[i].Z[c], out[j].Z[c]
		if zi != zj {
			return zi > zj
		}
		return out[i].Player.PlayerID < out[j].Player.PlayerID
	})
	return out
}

// AverageZ returns the mean Z-score per category across the table
func (t *ScoreTable) AverageZ() CategoryScores {
	avg := make(CategoryScores, len(categories))
	if len(t.Scores) == 0 {
		return avg
	}
	column := make([]float64, len(t.Scores))
	for _, c := range categories {
		for i, row := range t.Scores {
			column[i] = row.Z[c]
		}
		avg[c] = stat.Mean(column, nil)
	}
	return avg
}

// Normalize converts a cohort of stat lines into per-category and total Z-scores.
// Players below minGamesPlayed are dropped before any statistic is computed.
// An empty cohort yields an empty table.
func (a *CategoryAnalyzer) Normalize(players []PlayerStats, minGamesPlayed int) *ScoreTable {
	cohort := make([]PlayerStats, 0, len(players))
	for _, p := range players {
		if p.GamesPlayed >= minGamesPlayed {
			cohort = append(cohort, p.clone())
		}
	}

	table := &ScoreTable{
		MinGamesPlayed: minGamesPlayed,
		Scores:         make([]PlayerScore, 0, len(cohort)),
		index:          make(map[string]int, len(cohort)),
	}
	if len(cohort) == 0 {
		return table
	}

	columns := make(map[Category][]float64, len(categories))
	for _, c := range categories {
		var values []float64
		var defined []bool
		if c.IsPercentage() {
			values, defined = percentageImpacts(cohort, c)
		} else {
			values = countingColumn(cohort, c)
		}

		z := zScores(values, defined)
		if c.IsNegative() {
			for i, v := range z {
				if v != 0 {
					z[i] = -v
				}
			}
		}
		columns[c] = z
	}

	row := make([]float64, len(categories))
	for i, p := range cohort {
		score := PlayerScore{
			Player: p,
			Values: p.CategoryValues(),
			Z:      make(CategoryScores, len(categories)),
		}
		for j, c := range categories {
			score.Z[c] = columns[c][i]
			row[j] = columns[c][i]
		}
		score.TotalZ = floats.Sum(row)
		table.Scores = append(table.Scores, score)
	}

	sort.SliceStable(table.Scores, func(i, j int) bool {
		si, sj := table.Scores[i], table.Scores[j]
		if si.TotalZ != sj.TotalZ {
			return si.TotalZ > sj.TotalZ
		}
		return si.Player.PlayerID < sj.Player.PlayerID
	})

	for i := range table.Scores {
		table.Scores[i].Rank = i + 1
		if _, dup := table.index[table.Scores[i].Player.PlayerID]; !dup {
			table.index[table.Scores[i].Player.PlayerID] = i
		}
	}

	return table
}

// countingColumn extracts a per-game counting stat for the whole cohort
func countingColumn(cohort []PlayerStats, c Category) []float64 {
	column := make([]float64, len(cohort))
	for i, p := range cohort {
		column[i] = p.countingValue(c)
	}
	return column
}

// percentageImpacts computes volume-weighted deviation from the cohort average.
// The league average weights every player by games played:
// sum(made * gp) / sum(attempted * gp). A player's impact is
// (pct - league average) * attempts per game. Players without attempts have
// an undefined percentage and are excluded from the column statistics.
func percentageImpacts(cohort []PlayerStats, c Category) ([]float64, []bool) {
	made := make([]float64, len(cohort))
	attempted := make([]float64, len(cohort))
	games := make([]float64, len(cohort))
	for i, p := range cohort {
		made[i], attempted[i] = p.shootingPair(c)
		games[i] = float64(p.EffectiveGames())
	}

	leagueAverage := 0.0
	if totalAttempted := floats.Dot(attempted, games); totalAttempted > 0 {
		leagueAverage = floats.Dot(made, games) / totalAttempted
	}

	impacts := make([]float64, len(cohort))
	defined := make([]bool, len(cohort))
	for i := range cohort {
		if attempted[i] == 0 {
			continue
		}
		pct := made[i] / attempted[i]
		impacts[i] = (pct - leagueAverage) * attempted[i]
		defined[i] = true
	}
	return impacts, defined
}

// zScores standardizes a column with its population mean and standard deviation.
// A nil mask treats every value as defined. Undefined entries and zero-variance
// columns score 0.
func zScores(values []float64, defined []bool) []float64 {
	z := make([]float64, len(values))

	sample := values
	if defined != nil {
		sample = make([]float64, 0, len(values))
		for i, v := range values {
			if defined[i] {
				sample = append(sample, v)
			}
		}
	}
	if len(sample) == 0 {
		return z
	}

	mean, variance := stat.PopMeanVariance(sample, nil)
	std := math.Sqrt(variance)
	// negated comparison also catches NaN from a tiny negative compensated variance
	if !(std > zeroVarianceTolerance) {
		return z
	}

	for i, v := range values {
		if defined != nil && !defined[i] {
			continue
		}
		z[i] = (v - mean) / std
	}
	return z
}
