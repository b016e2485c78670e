package repository

import (
	"context"
	"errors"

	"taskhub/internal/models"
	"taskhub/internal/observability"

	"gorm.io/gorm"
)

// TaskFilter shapes task list queries. A nil Completed means no completion
// filter; a zero Limit means no limit.
type TaskFilter struct {
	Completed  *bool
	SortColumn string
	SortDesc   bool
	Limit      int
	Skip       int
}

// TaskRepository defines persistence operations for tasks. All reads and
// writes are scoped to an owning user; tasks belonging to other users are
// indistinguishable from nonexistent ones.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, userID, id uint) (*models.Task, error)
	List(ctx context.Context, userID uint, filter TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, userID, id uint) error
	DeleteByUser(ctx context.Context, userID uint) error
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository returns a new TaskRepository implementation.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	defer observability.TrackQuery("create", "tasks")()

	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, userID, id uint) (*models.Task, error) {
	defer observability.TrackQuery("get_by_id", "tasks")()

	var task models.Task
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Task", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context, userID uint, filter TaskFilter) ([]models.Task, error) {
	defer observability.TrackQuery("list", "tasks")()

	q := r.db.WithContext(ctx).Where("user_id = ?", userID)

	if filter.Completed != nil {
		q = q.Where("completed = ?", *filter.Completed)
	}
	if filter.SortColumn != "" {
		order := filter.SortColumn
		if filter.SortDesc {
			order += " DESC"
		}
		q = q.Order(order)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Skip > 0 {
		q = q.Offset(filter.Skip)
	}

	var tasks []models.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tasks, nil
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	defer observability.TrackQuery("update", "tasks")()

	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, userID, id uint) error {
	defer observability.TrackQuery("delete", "tasks")()

	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Task{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Task", id)
	}
	return nil
}

// DeleteByUser removes every task owned by the user. Used when the owning
// account is deleted.
func (r *taskRepository) DeleteByUser(ctx context.Context, userID uint) error {
	defer observability.TrackQuery("delete_by_user", "tasks")()

	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Task{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
