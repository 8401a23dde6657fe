package mapper

import (
	"math"

	"github.com/stitts-dev/hoops-oracle/internal/analytics"
)

// PlayerView is the API representation of a player with optional valuation
type PlayerView struct {
	PlayerID    string                                    `json:"player_id"`
	Name        string                                    `json:"name"`
	Positions   []string                                  `json:"positions"`
	Team        string                                    `json:"team"`
	GamesPlayed int                                       `json:"games_played"`
	Stats       map[analytics.Category]float64            `json:"stats"`
	ZScores     map[analytics.Category]float64            `json:"z_scores,omitempty"`
	TotalValue  *float64                                  `json:"total_value,omitempty"`
	Rank        int                                       `json:"rank,omitempty"`
	CategoryFit map[analytics.Category]analytics.FitLabel `json:"category_fit,omitempty"`
}

// FormatPlayer builds the display view. Percentages are shown out of 100 with
// one decimal, rates with one decimal and Z-scores with two.
func FormatPlayer(line analytics.PlayerStats, score *analytics.PlayerScore) PlayerView {
	view := PlayerView{
		PlayerID:    line.PlayerID,
		Name:        line.Name,
		Positions:   line.Positions,
		Team:        line.Team,
		GamesPlayed: line.GamesPlayed,
		Stats:       make(map[analytics.Category]float64, len(analytics.Categories())),
	}

	values := line.CategoryValues()
	for _, c := range analytics.Categories() {
		v := values[c]
		if c.IsPercentage() {
			v *= 100
		}
		view.Stats[c] = round(v, 1)
	}

	if score != nil {
		view.ZScores = make(map[analytics.Category]float64, len(score.Z))
		for c, z := range score.Z {
			view.ZScores[c] = round(z, 2)
		}
		total := round(score.TotalZ, 2)
		view.TotalValue = &total
		view.Rank = score.Rank
	}
	return view
}

// FormatRecommendation builds the view for a draft pick suggestion
func FormatRecommendation(rec analytics.Recommendation) PlayerView {
	view := FormatPlayer(rec.Player, &analytics.PlayerScore{
		Player: rec.Player,
		Z:      rec.CategoryZ,
		TotalZ: rec.Value,
	})
	view.Rank = rec.Rank
	view.CategoryFit = rec.CategoryFit
	return view
}

// FormatTable formats every row of a score table in rank order
func FormatTable(rows []analytics.PlayerScore) []PlayerView {
	views := make([]PlayerView, 0, len(rows))
	for i := range rows {
		views = append(views, FormatPlayer(rows[i].Player, &rows[i]))
	}
	return views
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
