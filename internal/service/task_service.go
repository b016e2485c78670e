package service

import (
	"context"
	"strings"

	"taskhub/internal/models"
	"taskhub/internal/repository"
)

// sortColumns whitelists task sort fields and maps them to storage columns.
// Unknown fields fall back to storage order instead of reaching the query.
var sortColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"description": "description",
	"completed":   "completed",
}

// TaskService implements user-scoped task operations.
type TaskService struct {
	taskRepo repository.TaskRepository
}

// ListTasksInput carries raw list query parameters as received from the
// client.
type ListTasksInput struct {
	Completed *bool
	SortBy    string // "field:direction", e.g. "createdAt:desc"
	Limit     int
	Skip      int
}

// UpdateTaskInput carries a partial task update. Nil fields are left
// untouched.
type UpdateTaskInput struct {
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

// Create validates and stores a new task for the user.
func (s *TaskService) Create(ctx context.Context, userID uint, description string) (*models.Task, error) {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return nil, models.NewValidationError("Description is required")
	}

	task := &models.Task{
		Description: trimmed,
		UserID:      userID,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Get returns the user's task or a not-found error. Other users' tasks are
// indistinguishable from nonexistent ones.
func (s *TaskService) Get(ctx context.Context, userID, id uint) (*models.Task, error) {
	return s.taskRepo.GetByID(ctx, userID, id)
}

// List returns the user's tasks shaped by the given filters.
func (s *TaskService) List(ctx context.Context, userID uint, in ListTasksInput) ([]models.Task, error) {
	filter := repository.TaskFilter{
		Completed: in.Completed,
		Limit:     in.Limit,
		Skip:      in.Skip,
	}

	if in.SortBy != "" {
		parts := strings.SplitN(in.SortBy, ":", 2)
		if col, ok := sortColumns[parts[0]]; ok {
			filter.SortColumn = col
			filter.SortDesc = len(parts) == 2 && parts[1] == "desc"
		}
	}

	tasks, err := s.taskRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// Update applies the set fields of the input to the user's task.
func (s *TaskService) Update(ctx context.Context, userID, id uint, in UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Description != nil {
		trimmed := strings.TrimSpace(*in.Description)
		if trimmed == "" {
			return nil, models.NewValidationError("Description is required")
		}
		task.Description = trimmed
	}
	if in.Completed != nil {
		task.Completed = *in.Completed
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes the user's task or reports not found.
func (s *TaskService) Delete(ctx context.Context, userID, id uint) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.taskRepo.Delete(ctx, userID, id); err != nil {
		return nil, err
	}
	return task, nil
}
