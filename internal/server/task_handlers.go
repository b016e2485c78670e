package server

import (
	"encoding/json"

	"taskhub/internal/models"
	"taskhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// allowedTaskUpdates is the set of fields a PATCH on a task may touch.
var allowedTaskUpdates = map[string]bool{
	"description": true,
	"completed":   true,
}

// CreateTask creates a task owned by the authenticated user
func (s *Server) CreateTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	task, err := s.taskService.Create(c.Context(), userID, req.Description)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(task)
}

// GetTasks lists the authenticated user's tasks with optional filtering,
// sorting and pagination: ?completed=true&sortBy=createdAt:desc&limit=10&skip=20
func (s *Server) GetTasks(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	input := service.ListTasksInput{
		SortBy: c.Query("sortBy"),
		Limit:  c.QueryInt("limit", 0),
		Skip:   c.QueryInt("skip", 0),
	}
	// Only filter when the parameter is present; otherwise both states are
	// returned. Anything other than "true" reads as false.
	if raw := c.Query("completed"); raw != "" {
		completed := raw == "true"
		input.Completed = &completed
	}

	tasks, err := s.taskService.List(c.Context(), userID, input)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(tasks)
}

// GetTask fetches a single task. Tasks owned by other users are
// indistinguishable from tasks that do not exist.
func (s *Server) GetTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	taskID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	task, err := s.taskService.Get(c.Context(), userID, taskID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(task)
}

// UpdateTask applies a partial update to an owned task. Any key outside the
// allowed set rejects the whole request.
func (s *Server) UpdateTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	taskID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &raw); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	for key := range raw {
		if !allowedTaskUpdates[key] {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid Updates"))
		}
	}

	var input service.UpdateTaskInput
	if err := json.Unmarshal(c.Body(), &input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	task, err := s.taskService.Update(c.Context(), userID, taskID, input)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(task)
}

// DeleteTask removes an owned task and responds with the deleted record
func (s *Server) DeleteTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	taskID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	task, err := s.taskService.Delete(c.Context(), userID, taskID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(task)
}
