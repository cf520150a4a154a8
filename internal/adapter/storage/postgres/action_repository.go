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

type ActionRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewActionRepository(db *gorm.DB, log *zap.Logger) *ActionRepository {
	return &ActionRepository{
		db:  db,
		log: log,
	}
}

// Create stores timestamps in UTC. SQLite compares them as text, so mixed
// zones would break range queries.
func (r *ActionRepository) Create(ctx context.Context, record *domain.ActionRecord) error {
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	return r.db.WithContext(ctx).Create(record).Error
}

// UpdateResult moves a pending record to its terminal status. A record that
// is missing or already terminal is reported as domain.ErrNotFound.
func (r *ActionRepository) UpdateResult(ctx context.Context, id string, status domain.ActionStatus, result *domain.ExecutionOutcome) error {
	res := r.db.WithContext(ctx).
		Model(&domain.ActionRecord{}).
		Where("id = ? AND status = ?", id, domain.ActionStatusPending).
		Updates(&domain.ActionRecord{Status: status, Result: result})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("pending action %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *ActionRepository) FindByID(ctx context.Context, id string) (*domain.ActionRecord, error) {
	var rec domain.ActionRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *ActionRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.ActionRecord, error) {
	var recs []domain.ActionRecord
	q := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	return recs, nil
}

func (r *ActionRepository) CountTerminalSince(ctx context.Context, kind domain.IntentKind, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.ActionRecord{}).
		Where("intent_kind = ? AND status <> ? AND created_at >= ?", kind, domain.ActionStatusPending, since.UTC()).
		Count(&n).Error
	return n, err
}
