package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stitts-dev/hoops-oracle/internal/models"
)

// GormStore persists sessions in the draft_sessions and draft_picks tables
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, session *Session) error {
	row := toModel(session)
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if result.Error != nil {
		return fmt.Errorf("failed to create draft session: %w", result.Error)
	}
	// an existing id leaves the row untouched
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	session.CreatedAt = row.CreatedAt
	session.UpdatedAt = row.UpdatedAt
	return nil
}

func (s *GormStore) Get(ctx context.Context, id string) (*Session, error) {
	var row models.DraftSession
	err := s.db.WithContext(ctx).
		Preload("Picks", func(db *gorm.DB) *gorm.DB { return db.Order("pick_number") }).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load draft session: %w", err)
	}
	return fromModel(row), nil
}

// Update bumps the session row guarded by its version and appends picks the
// database does not have yet. Picks are append-only.
func (s *GormStore) Update(ctx context.Context, session *Session, expectedVersion int) error {
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.DraftSession{}).
			Where("id = ? AND version = ?", session.ID, expectedVersion).
			Updates(map[string]interface{}{
				"status":     string(session.Status),
				"version":    expectedVersion + 1,
				"updated_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update draft session: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.DraftSession{}).Where("id = ?", session.ID).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check draft session: %w", err)
			}
			if count == 0 {
				return ErrSessionNotFound
			}
			return ErrVersionConflict
		}

		var stored int64
		if err := tx.Model(&models.DraftPick{}).Where("session_id = ?", session.ID).Count(&stored).Error; err != nil {
			return fmt.Errorf("failed to count draft picks: %w", err)
		}
		if int(stored) < len(session.Picks) {
			picks := make([]models.DraftPick, 0, len(session.Picks)-int(stored))
			for _, p := range session.Picks[stored:] {
				picks = append(picks, toPickModel(session.ID, p))
			}
			if err := tx.Create(&picks).Error; err != nil {
				return fmt.Errorf("failed to save draft picks: %w", err)
			}
		}

		session.Version = expectedVersion + 1
		session.UpdatedAt = now
		return nil
	})
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&models.DraftPick{}).Error; err != nil {
			return fmt.Errorf("failed to delete draft picks: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&models.DraftSession{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete draft session: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrSessionNotFound
		}
		return nil
	})
}

func toModel(s *Session) models.DraftSession {
	row := models.DraftSession{
		ID:            s.ID,
		LeagueKey:     s.LeagueKey,
		OwnerID:       s.OwnerID,
		DraftPosition: s.DraftPosition,
		LeagueSize:    s.LeagueSize,
		Snake:         s.Snake,
		Status:        string(s.Status),
		Version:       s.Version,
	}
	for _, p := range s.Picks {
		row.Picks = append(row.Picks, toPickModel(s.ID, p))
	}
	return row
}

func toPickModel(sessionID string, p Pick) models.DraftPick {
	return models.DraftPick{
		SessionID:  sessionID,
		PickNumber: p.PickNumber,
		PlayerID:   p.PlayerID,
		Team:       p.Team,
		Mine:       p.Mine,
		CreatedAt:  p.PickedAt,
	}
}

func fromModel(row models.DraftSession) *Session {
	session := &Session{
		ID:            row.ID,
		LeagueKey:     row.LeagueKey,
		OwnerID:       row.OwnerID,
		DraftPosition: row.DraftPosition,
		LeagueSize:    row.LeagueSize,
		Snake:         row.Snake,
		Status:        Status(row.Status),
		Picks:         make([]Pick, 0, len(row.Picks)),
		Version:       row.Version,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	for _, p := range row.Picks {
		session.Picks = append(session.Picks, Pick{
			PickNumber: p.PickNumber,
			PlayerID:   p.PlayerID,
			Team:       p.Team,
			Mine:       p.Mine,
			PickedAt:   p.CreatedAt,
		})
	}
	return session
}
