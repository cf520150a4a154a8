package domain

import "time"

// Profile holds the per-user free-text knowledge base the assistant reads
// contacts and locations from. Version guards concurrent appends.
type Profile struct {
	UserID        string    `json:"user_id" gorm:"primaryKey"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Timezone      string    `json:"timezone"`
	KnowledgeBase string    `json:"knowledge_base" gorm:"type:text"`
	Version       int       `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
