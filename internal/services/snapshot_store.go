package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stitts-dev/hoops-oracle/internal/analytics"
	"github.com/stitts-dev/hoops-oracle/internal/models"
)

// SnapshotStore persists raw stat lines so the pool survives a provider outage
type SnapshotStore interface {
	SavePool(ctx context.Context, leagueKey string, lines []analytics.PlayerStats, asOf time.Time) (int, error)
	LatestPool(ctx context.Context) ([]analytics.PlayerStats, error)
}

// GormSnapshotStore writes players and daily season snapshots through GORM
type GormSnapshotStore struct {
	db *gorm.DB
}

func NewGormSnapshotStore(db *gorm.DB) *GormSnapshotStore {
	return &GormSnapshotStore{db: db}
}

// SavePool upserts every player and its season snapshot for asOf's day
func (s *GormSnapshotStore) SavePool(ctx context.Context, leagueKey string, lines []analytics.PlayerStats, asOf time.Time) (int, error) {
	day := asOf.UTC().Truncate(24 * time.Hour)
	saved := 0

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range lines {
			key := PlayerKey(leagueKey, line.PlayerID)
			player, snapshot, err := models.NewPlayerRecords(key, line, day)
			if err != nil {
				return err
			}

			err = tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "yahoo_player_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "positions", "team", "updated_at"}),
			}).Create(&player).Error
			if err != nil {
				return fmt.Errorf("failed to upsert player %s: %w", key, err)
			}

			var stored models.Player
			if err := tx.Where("yahoo_player_key = ?", key).First(&stored).Error; err != nil {
				return fmt.Errorf("failed to reload player %s: %w", key, err)
			}

			snapshot.PlayerID = stored.ID
			err = tx.Omit(clause.Associations).Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "player_id"}, {Name: "period"}, {Name: "as_of"}},
				DoUpdates: clause.AssignmentColumns([]string{"stats", "source"}),
			}).Create(&snapshot).Error
			if err != nil {
				return fmt.Errorf("failed to upsert stats for %s: %w", key, err)
			}
			saved++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return saved, nil
}

// LatestPool returns the stat lines of the most recent season snapshot day
func (s *GormSnapshotStore) LatestPool(ctx context.Context) ([]analytics.PlayerStats, error) {
	var latest models.PlayerSeasonStats
	err := s.db.WithContext(ctx).
		Where("period = ?", models.StatPeriodSeason).
		Order("as_of DESC").
		First(&latest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []analytics.PlayerStats{}, nil
		}
		return nil, fmt.Errorf("failed to find latest snapshot: %w", err)
	}

	var rows []models.PlayerSeasonStats
	err = s.db.WithContext(ctx).
		Where("period = ? AND as_of = ?", models.StatPeriodSeason, latest.AsOf).
		Order("player_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot rows: %w", err)
	}

	lines := make([]analytics.PlayerStats, 0, len(rows))
	for _, row := range rows {
		line, err := row.StatLine()
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}
