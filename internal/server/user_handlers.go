package server

import (
	"encoding/json"

	"taskhub/internal/models"
	"taskhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// allowedProfileUpdates is the set of fields a PATCH on the profile may touch.
var allowedProfileUpdates = map[string]bool{
	"name":     true,
	"email":    true,
	"password": true,
	"age":      true,
}

// GetMyProfile returns the authenticated user's own profile
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	return c.Status(fiber.StatusOK).JSON(user)
}

// UpdateMyProfile applies a partial update to the authenticated user's
// profile. Any key outside the allowed set rejects the whole request.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &raw); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	for key, value := range raw {
		if !allowedProfileUpdates[key] {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid Updates"))
		}
		// An explicit null would unmarshal to a nil pointer and skip the
		// field's validation entirely.
		if string(value) == "null" {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(key+" cannot be null"))
		}
	}

	input := service.UpdateProfileInput{UserID: userID}
	if err := json.Unmarshal(c.Body(), &input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), input)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

// DeleteMyAccount removes the authenticated user along with their tasks and
// sessions, and responds with the deleted profile.
func (s *Server) DeleteMyAccount(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userService.Delete(c.Context(), userID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(user)
}
