package server

import (
	"taskhub/internal/models"
	"taskhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SignUp handles user registration
func (s *Server) SignUp(c *fiber.Ctx) error {
	var input service.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, token, err := s.userService.Register(c.Context(), input)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":  user,
		"token": token,
	})
}

// Login handles user authentication. Bad credentials come back as a 400 with
// a deliberately vague message; the guard's 401 is reserved for bad tokens.
func (s *Server) Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, token, err := s.userService.Login(c.Context(), input.Email, input.Password)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to login"))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user":  user,
		"token": token,
	})
}

// Logout revokes the session token the request authenticated with. Other
// sessions of the same user stay active.
func (s *Server) Logout(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	token := c.Locals("token").(string)

	if err := s.userService.Logout(c.Context(), userID, token); err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Logged out",
	})
}

// LogoutAll revokes every session token of the authenticated user
func (s *Server) LogoutAll(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := s.userService.LogoutAll(c.Context(), userID); err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Logged out of all sessions",
	})
}
