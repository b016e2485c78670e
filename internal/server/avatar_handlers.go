package server

import (
	"io"

	"taskhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UploadAvatar stores a profile image for the authenticated user. The file
// arrives as multipart form field "avatar" and is normalized before storage.
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	file, err := c.FormFile("avatar")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No file uploaded"))
	}

	src, err := file.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}

	if err := s.avatarService.Upload(c.Context(), userID, file.Filename, content); err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Avatar uploaded",
	})
}

// DeleteAvatar clears the authenticated user's profile image
func (s *Server) DeleteAvatar(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := s.avatarService.Delete(c.Context(), userID); err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Avatar deleted",
	})
}

// GetAvatar serves any user's avatar by ID. No authentication required; the
// stored bytes are always PNG.
func (s *Server) GetAvatar(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	avatar, err := s.avatarService.Get(c.Context(), userID)
	if err != nil {
		return mapServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Status(fiber.StatusOK).Send(avatar)
}
