package analytics

// DetectPuntCategories flags categories where the roster's average Z-score falls
// below the punt threshold. The roster is normalized on its own with no games
// played filter, so every member counts regardless of sample size.
func (a *CategoryAnalyzer) DetectPuntCategories(roster []PlayerStats) []Category {
	if len(roster) == 0 {
		return []Category{}
	}
	return a.weakCategories(a.Normalize(roster, 0).AverageZ())
}

// DetectPuntCategoriesAgainst scores the roster inside a reference pool and flags
// categories where roster members average below the punt threshold relative to
// that pool. Roster players missing from the reference are added to the cohort.
func (a *CategoryAnalyzer) DetectPuntCategoriesAgainst(roster, reference []PlayerStats) []Category {
	if len(roster) == 0 {
		return []Category{}
	}

	cohort := make([]PlayerStats, 0, len(reference)+len(roster))
	seen := make(map[string]bool, len(reference))
	for _, p := range reference {
		seen[p.PlayerID] = true
		cohort = append(cohort, p)
	}
	for _, p := range roster {
		if !seen[p.PlayerID] {
			cohort = append(cohort, p)
		}
	}

	table := a.Normalize(cohort, 0)
	sums := make(CategoryScores, len(categories))
	members := 0
	for _, p := range roster {
		row, ok := table.Get(p.PlayerID)
		if !ok {
			continue
		}
		members++
		for _, c := range categories {
			sums[c] += row.Z[c]
		}
	}
	if members == 0 {
		return []Category{}
	}
	for _, c := range categories {
		sums[c] /= float64(members)
	}
	return a.weakCategories(sums)
}

func (a *CategoryAnalyzer) weakCategories(avg CategoryScores) []Category {
	weak := make([]Category, 0)
	for _, c := range categories {
		if avg[c] < a.config.PuntThreshold {
			weak = append(weak, c)
		}
	}
	return weak
}
