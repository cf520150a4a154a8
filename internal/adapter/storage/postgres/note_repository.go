package postgres

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/vox-assistant/internal/domain"
)

type NoteRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewNoteRepository(db *gorm.DB, log *zap.Logger) *NoteRepository {
	return &NoteRepository{
		db:  db,
		log: log,
	}
}

func (r *NoteRepository) Save(ctx context.Context, note *domain.Note) error {
	return r.db.WithContext(ctx).Save(note).Error
}

func (r *NoteRepository) FindByUser(ctx context.Context, userID string) ([]domain.Note, error) {
	var notes []domain.Note
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&notes).Error
	return notes, err
}
