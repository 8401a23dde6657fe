package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/stitts-dev/hoops-oracle/internal/analytics"
)

// Player is the upstream identity of an NBA player within a fantasy game
type Player struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	YahooPlayerKey string         `gorm:"size:64;uniqueIndex;not null" json:"yahoo_player_key"`
	PlayerID       string         `gorm:"size:32;index;not null" json:"player_id"`
	Name           string         `gorm:"size:128;index" json:"name"`
	Positions      datatypes.JSON `json:"positions"`
	Team           string         `gorm:"size:8" json:"team"`
	Status         string         `gorm:"size:16" json:"status,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Player) TableName() string {
	return "players"
}

// StatPeriod identifies the window a stat snapshot covers
type StatPeriod string

const (
	StatPeriodSeason StatPeriod = "season"
	StatPeriodWeekly StatPeriod = "weekly"
	StatPeriodDaily  StatPeriod = "daily"
)

// PlayerSeasonStats is a raw per-game stat snapshot as mapped from the provider.
// Z-scores are never stored; they depend on the cohort they were computed in.
type PlayerSeasonStats struct {
	ID       uint           `gorm:"primaryKey" json:"id"`
	PlayerID uint           `gorm:"not null;uniqueIndex:uq_player_period_asof" json:"player_id"`
	Period   StatPeriod     `gorm:"size:16;not null;uniqueIndex:uq_player_period_asof" json:"period"`
	AsOf     time.Time      `gorm:"not null;uniqueIndex:uq_player_period_asof" json:"as_of"`
	Stats    datatypes.JSON `json:"stats"`
	Source   string         `gorm:"size:32;default:yahoo" json:"source"`

	Player Player `gorm:"foreignKey:PlayerID;constraint:OnDelete:CASCADE" json:"-"`
}

func (PlayerSeasonStats) TableName() string {
	return "player_stats"
}

// NewPlayerRecords converts a mapped stat line into its database rows
func NewPlayerRecords(playerKey string, line analytics.PlayerStats, asOf time.Time) (Player, PlayerSeasonStats, error) {
	positions, err := json.Marshal(line.Positions)
	if err != nil {
		return Player{}, PlayerSeasonStats{}, fmt.Errorf("failed to encode positions: %w", err)
	}
	stats, err := json.Marshal(line)
	if err != nil {
		return Player{}, PlayerSeasonStats{}, fmt.Errorf("failed to encode stats: %w", err)
	}

	player := Player{
		YahooPlayerKey: playerKey,
		PlayerID:       line.PlayerID,
		Name:           line.Name,
		Positions:      datatypes.JSON(positions),
		Team:           line.Team,
	}
	snapshot := PlayerSeasonStats{
		Period: StatPeriodSeason,
		AsOf:   asOf,
		Stats:  datatypes.JSON(stats),
		Source: "yahoo",
	}
	return player, snapshot, nil
}

// StatLine decodes the stored snapshot back into a stat line
func (s PlayerSeasonStats) StatLine() (analytics.PlayerStats, error) {
	var line analytics.PlayerStats
	if err := json.Unmarshal(s.Stats, &line); err != nil {
		return line, fmt.Errorf("failed to decode stats snapshot %d: %w", s.ID, err)
	}
	return line, nil
}
