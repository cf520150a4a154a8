package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/vox-assistant/internal/domain"
)

const maxAppendAttempts = 3

type ProfileRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewProfileRepository(db *gorm.DB, log *zap.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:  db,
		log: log,
	}
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) Save(ctx context.Context, profile *domain.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// AppendKnowledge adds entry with a compare-and-swap on the version column
// and retries when another writer got there first.
func (r *ProfileRepository) AppendKnowledge(ctx context.Context, userID, entry string) error {
	db := r.db.WithContext(ctx)
	for attempt := 1; attempt <= maxAppendAttempts; attempt++ {
		var p domain.Profile
		err := db.First(&p, "user_id = ?", userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = db.Create(&domain.Profile{UserID: userID, KnowledgeBase: entry, Version: 1}).Error
			if err == nil {
				return nil
			}
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return err
		}
		if err != nil {
			return err
		}

		res := db.Model(&domain.Profile{}).
			Where("user_id = ? AND version = ?", userID, p.Version).
			Updates(map[string]any{
				"knowledge_base": p.KnowledgeBase + entry,
				"version":        p.Version + 1,
				"updated_at":     time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			return nil
		}
		r.log.Debug("knowledge base changed underneath, retrying",
			zap.String("user_id", userID),
			zap.Int("attempt", attempt),
		)
	}
	return fmt.Errorf("append knowledge for %s after %d attempts: %w", userID, maxAppendAttempts, domain.ErrConcurrentUpdate)
}
