package models

import "time"

// OAuthToken stores the provider credentials used by the data sync
type OAuthToken struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Provider     string    `gorm:"size:32;uniqueIndex;not null;default:yahoo" json:"provider"`
	AccessToken  string    `gorm:"type:text" json:"-"`
	RefreshToken string    `gorm:"type:text" json:"-"`
	TokenType    string    `gorm:"size:32" json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (OAuthToken) TableName() string {
	return "oauth_tokens"
}

// AllModels lists every table for migrations
func AllModels() []interface{} {
	return []interface{}{
		&Player{},
		&PlayerSeasonStats{},
		&OAuthToken{},
		&DraftSession{},
		&DraftPick{},
	}
}
