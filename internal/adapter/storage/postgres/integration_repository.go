package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/seu-repo/vox-assistant/internal/domain"
)

type IntegrationRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewIntegrationRepository(db *gorm.DB, log *zap.Logger) *IntegrationRepository {
	return &IntegrationRepository{
		db:  db,
		log: log,
	}
}

func (r *IntegrationRepository) FindActive(ctx context.Context, userID, provider string) (*domain.Integration, error) {
	var in domain.Integration
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ? AND active = ?", userID, provider, true).
		First(&in).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &in, nil
}

// Save upserts on (user_id, provider); a refreshed grant replaces the old one.
func (r *IntegrationRepository) Save(ctx context.Context, in *domain.Integration) error {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "token_type", "expiry", "active", "updated_at"}),
	}).Create(in).Error
}
