package analytics

import "slices"

// BasePositions are the five positions tallied for roster composition
var BasePositions = []string{"PG", "SG", "SF", "PF", "C"}

// PlayerStats is one player's per-game statistics for a period.
// Counting stats and made/attempted pairs are per-game averages.
type PlayerStats struct {
	PlayerID    string   `json:"player_id"`
	Name        string   `json:"name"`
	Positions   []string `json:"positions"`
	Team        string   `json:"team"`
	GamesPlayed int      `json:"games_played"`

	FGMade      float64 `json:"fg_made"`
	FGAttempted float64 `json:"fg_attempted"`
	FTMade      float64 `json:"ft_made"`
	FTAttempted float64 `json:"ft_attempted"`
	ThreePM     float64 `json:"three_pm"`
	Points      float64 `json:"points"`
	Rebounds    float64 `json:"rebounds"`
	Assists     float64 `json:"assists"`
	Steals      float64 `json:"steals"`
	Blocks      float64 `json:"blocks"`
	Turnovers   float64 `json:"turnovers"`
}

// FGPct returns field goal percentage; ok is false when no attempts were taken
func (p PlayerStats) FGPct() (pct float64, ok bool) {
	if p.FGAttempted == 0 {
		return 0, false
	}
	return p.FGMade / p.FGAttempted, true
}

// FTPct returns free throw percentage; ok is false when no attempts were taken
func (p PlayerStats) FTPct() (pct float64, ok bool) {
	if p.FTAttempted == 0 {
		return 0, false
	}
	return p.FTMade / p.FTAttempted, true
}

// EffectiveGames is games played with zero replaced by one.
func (p PlayerStats) EffectiveGames() int {
	if p.GamesPlayed == 0 {
		return 1
	}
	return p.GamesPlayed
}

// HasPosition reports whether the player is eligible at pos
func (p PlayerStats) HasPosition(pos string) bool {
	return slices.Contains(p.Positions, pos)
}

// countingValue returns the per-game value of a counting category
func (p PlayerStats) countingValue(c Category) float64 {
	switch c {
	case CategoryThrees:
		return p.ThreePM
	case CategoryPoints:
		return p.Points
	case CategoryRebounds:
		return p.Rebounds
	case CategoryAssists:
		return p.Assists
	case CategorySteals:
		return p.Steals
	case CategoryBlocks:
		return p.Blocks
	case CategoryTurnovers:
		return p.Turnovers
	}
	return 0
}

// shootingPair returns made and attempted per game for a percentage category
func (p PlayerStats) shootingPair(c Category) (made, attempted float64) {
	if c == CategoryFTPct {
		return p.FTMade, p.FTAttempted
	}
	return p.FGMade, p.FGAttempted
}

// CategoryValues returns the raw category values shown next to Z-scores.
// Percentage categories are omitted when undefined.
func (p PlayerStats) CategoryValues() CategoryScores {
	values := make(CategoryScores, len(categories))
	for _, c := range categories {
		if c.IsPercentage() {
			made, attempted := p.shootingPair(c)
			if attempted > 0 {
				values[c] = made / attempted
			}
			continue
		}
		values[c] = p.countingValue(c)
	}
	return values
}

func (p PlayerStats) clone() PlayerStats {
	p.Positions = slices.Clone(p.Positions)
	return p
}
