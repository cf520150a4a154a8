package postgres

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/vox-assistant/internal/domain"
)

type TaskRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewTaskRepository(db *gorm.DB, log *zap.Logger) *TaskRepository {
	return &TaskRepository{
		db:  db,
		log: log,
	}
}

func (r *TaskRepository) Save(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *TaskRepository) FindByUser(ctx context.Context, userID string, filter domain.TaskFilter) ([]domain.Task, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.ExcludeStatus != "" {
		q = q.Where("status <> ?", filter.ExcludeStatus)
	}

	var tasks []domain.Task
	err := q.Order("created_at desc").Find(&tasks).Error
	return tasks, err
}
