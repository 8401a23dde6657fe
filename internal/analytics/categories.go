package analytics

import (
	"fmt"
	"strings"
)

// Category is one of the nine scoring categories of a 9-cat head-to-head league
type Category string

const (
	CategoryFGPct     Category = "FG%"
	CategoryFTPct     Category = "FT%"
	CategoryThrees    Category = "3PM"
	CategoryPoints    Category = "PTS"
	CategoryRebounds  Category = "REB"
	CategoryAssists   Category = "AST"
	CategorySteals    Category = "STL"
	CategoryBlocks    Category = "BLK"
	CategoryTurnovers Category = "TO"
)

// categories is the canonical ordering used for every per-category output
var categories = []Category{
	CategoryFGPct,
	CategoryFTPct,
	CategoryThrees,
	CategoryPoints,
	CategoryRebounds,
	CategoryAssists,
	CategorySteals,
	CategoryBlocks,
	CategoryTurnovers,
}

// Categories returns the nine scoring categories in canonical order
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// IsPercentage reports whether the category is a made/attempted ratio
func (c Category) IsPercentage() bool {
	return c == CategoryFGPct || c == CategoryFTPct
}

// IsNegative reports whether a higher raw value is worse
func (c Category) IsNegative() bool {
	return c == CategoryTurnovers
}

// ParseCategory resolves user input such as "pts", "FG%" or "fg_pct"
func ParseCategory(s string) (Category, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "_PCT", "%")
	switch key {
	case "3PTM", "THREES":
		key = "3PM"
	case "ST", "STEALS":
		key = "STL"
	case "TOV", "TURNOVERS":
		key = "TO"
	}
	for _, c := range categories {
		if string(c) == key {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// CategoryScores maps a category to a numeric value (a Z-score or a stat value)
type CategoryScores map[Category]float64

// Sum adds up all category values
func (s CategoryScores) Sum() float64 {
	total := 0.0
	for _, c := range categories {
		total += s[c]
	}
	return total
}
