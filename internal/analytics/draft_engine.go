package analytics

import "sort"

// CandidatePoolSize is how many of the top total-Z players are considered
// before category fit is annotated. A player outside this slice is never
// recommended regardless of roster need.
const CandidatePoolSize = 20

// FitLabel describes how strongly a player contributes to one category
type FitLabel string

const (
	FitExcellent FitLabel = "excellent"
	FitGood      FitLabel = "good"
	FitNeutral   FitLabel = "neutral"
	FitWeak      FitLabel = "weak"
)

// Fit thresholds on a per-category Z-score
const (
	fitExcellentAbove = 1.5
	fitGoodAbove      = 0.5
	fitNeutralAbove   = -0.5
)

// FitFor labels a single category Z-score
func FitFor(z float64) FitLabel {
	switch {
	case z > fitExcellentAbove:
		return FitExcellent
	case z > fitGoodAbove:
		return FitGood
	case z > fitNeutralAbove:
		return FitNeutral
	default:
		return FitWeak
	}
}

// CategoryFit labels every category of a Z-score set
func CategoryFit(z CategoryScores) map[Category]FitLabel {
	fit := make(map[Category]FitLabel, len(categories))
	for _, c := range categories {
		fit[c] = FitFor(z[c])
	}
	return fit
}

// Recommendation is one suggested pick
type Recommendation struct {
	Player      PlayerStats           `json:"player"`
	Value       float64               `json:"value"`
	CategoryZ   CategoryScores        `json:"category_z"`
	CategoryFit map[Category]FitLabel `json:"category_fit"`
	Rank        int                   `json:"rank"`
}

// DraftBoard is the recommendation list plus the roster context it was built from.
// PositionCounts and PuntCategories are informational and do not reorder picks.
type DraftBoard struct {
	Recommendations []Recommendation `json:"recommendations"`
	PositionCounts  map[string]int   `json:"position_counts"`
	PuntCategories  []Category       `json:"punt_categories"`
}

// DraftEngine turns an available pool and a roster snapshot into pick suggestions.
// It keeps no state between calls.
type DraftEngine struct {
	analyzer *CategoryAnalyzer
}

// NewDraftEngine creates a draft engine backed by the analyzer
func NewDraftEngine(analyzer *CategoryAnalyzer) *DraftEngine {
	return &DraftEngine{analyzer: analyzer}
}

// Recommend ranks the available pool for the given roster and returns the first topN picks
func (e *DraftEngine) Recommend(available, roster []PlayerStats, topN int) DraftBoard {
	table := e.analyzer.Normalize(available, e.analyzer.config.MinGamesPlayed)
	return e.recommendFromTable(table, roster, topN)
}

// recommendFromTable runs the recommendation steps against a pre-normalized pool
func (e *DraftEngine) recommendFromTable(table *ScoreTable, roster []PlayerStats, topN int) DraftBoard {
	board := DraftBoard{
		Recommendations: []Recommendation{},
		PositionCounts:  RosterPositions(roster),
		PuntCategories:  e.analyzer.DetectPuntCategories(roster),
	}
	if table.Len() == 0 || topN <= 0 {
		return board
	}

	candidates := table.Top(CandidatePoolSize)
	recs := make([]Recommendation, 0, len(candidates))
	for _, row := range candidates {
		z := make(CategoryScores, len(row.Z))
		for c, v := range row.Z {
			z[c] = v
		}
		recs = append(recs, Recommendation{
			Player:      row.Player,
			Value:       row.TotalZ,
			CategoryZ:   z,
			CategoryFit: CategoryFit(z),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Value != recs[j].Value {
			return recs[i].Value > recs[j].Value
		}
		return recs[i].Player.PlayerID < recs[j].Player.PlayerID
	})

	if topN < len(recs) {
		recs = recs[:topN]
	}
	for i := range recs {
		recs[i].Rank = i + 1
	}
	board.Recommendations = recs
	return board
}

// RosterPositions counts eligible base positions across the roster
func RosterPositions(roster []PlayerStats) map[string]int {
	counts := make(map[string]int, len(BasePositions))
	for _, pos := range BasePositions {
		counts[pos] = 0
	}
	for _, pos := range BasePositions {
		for _, p := range roster {
			if p.HasPosition(pos) {
				counts[pos]++
			}
		}
	}
	return counts
}
