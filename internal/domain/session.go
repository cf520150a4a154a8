package domain

import "time"

// Session correlates the utterances of one voice interaction.
type Session struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}
