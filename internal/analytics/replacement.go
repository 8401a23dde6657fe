package analytics

import "fmt"

// MarginalValue returns the player's total Z above the replacement-level player.
// The pool is normalized with the analyzer's games played filter and the
// replacement player is the row at index replacementRank of the sorted table,
// clamped to the last row when the pool is smaller.
func (a *CategoryAnalyzer) MarginalValue(player PlayerStats, pool []PlayerStats, replacementRank int) (float64, error) {
	table := a.Normalize(pool, a.config.MinGamesPlayed)
	return marginalValueIn(table, player.PlayerID, replacementRank)
}

// marginalValueIn computes marginal value against an already normalized table
func marginalValueIn(table *ScoreTable, playerID string, replacementRank int) (float64, error) {
	if table.Len() == 0 {
		return 0, ErrEmptyCohort
	}

	if replacementRank >= table.Len() {
		replacementRank = table.Len() - 1
	}
	if replacementRank < 0 {
		replacementRank = 0
	}
	baseline := table.Scores[replacementRank].TotalZ

	row, ok := table.Get(playerID)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	return row.TotalZ - baseline, nil
}
