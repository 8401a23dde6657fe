package models

import "time"

// DraftSession is the persisted form of a draft session
type DraftSession struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	LeagueKey     string    `gorm:"size:64;index" json:"league_key"`
	OwnerID       string    `gorm:"size:64;index" json:"owner_id,omitempty"`
	DraftPosition int       `gorm:"not null" json:"draft_position"`
	LeagueSize    int       `gorm:"not null" json:"league_size"`
	Snake         bool      `gorm:"not null" json:"snake"`
	Status        string    `gorm:"size:16;not null;default:active" json:"status"`
	Version       int       `gorm:"not null;default:0" json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Picks []DraftPick `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"picks"`
}

func (DraftSession) TableName() string {
	return "draft_sessions"
}

// DraftPick is one selection recorded against a session
type DraftPick struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SessionID  string    `gorm:"type:varchar(36);not null;uniqueIndex:uq_session_pick" json:"session_id"`
	PickNumber int       `gorm:"not null;uniqueIndex:uq_session_pick" json:"pick_number"`
	PlayerID   string    `gorm:"size:32;not null" json:"player_id"`
	Team       int       `gorm:"not null" json:"team"`
	Mine       bool      `gorm:"default:false" json:"mine"`
	CreatedAt  time.Time `json:"created_at"`
}

func (DraftPick) TableName() string {
	return "draft_picks"
}
