package service

import (
	"context"

	"taskhub/internal/auth"
	"taskhub/internal/email"
	"taskhub/internal/middleware"
	"taskhub/internal/models"
	"taskhub/internal/observability"
	"taskhub/internal/repository"
	"taskhub/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService implements account lifecycle, credential checks, and session
// list management.
type UserService struct {
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
	tokens   *auth.TokenService
	mailer   email.Sender
}

// RegisterInput carries a new account request.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
}

// UpdateProfileInput carries a partial profile update. Nil fields are left
// untouched.
type UpdateProfileInput struct {
	UserID   uint    `json:"-"`
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Age      *int    `json:"age"`
}

func NewUserService(userRepo repository.UserRepository, taskRepo repository.TaskRepository, tokens *auth.TokenService, mailer email.Sender) *UserService {
	return &UserService{
		userRepo: userRepo,
		taskRepo: taskRepo,
		tokens:   tokens,
		mailer:   mailer,
	}
}

// Register validates and creates a new account, opens its first session, and
// sends a welcome email in the background.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}
	normalizedEmail := validation.NormalizeEmail(in.Email)
	if err := validation.ValidateEmail(normalizedEmail); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}
	if err := validation.ValidateAge(in.Age); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}

	user := &models.User{
		Name:     in.Name,
		Email:    normalizedEmail,
		Password: string(hashed),
		Age:      in.Age,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	observability.SessionsIssued.WithLabelValues("signup").Inc()

	s.sendInBackground("welcome", email.Message{
		To:      user.Email,
		Subject: "Thanks for joining in!",
		Body:    "Welcome to the app, " + user.Name + ". Let me know how you get along with the app.",
	})

	return user, token, nil
}

// Login checks credentials and opens a new session. A missing account and a
// wrong password produce the same error.
func (s *UserService) Login(ctx context.Context, emailAddr, password string) (*models.User, string, error) {
	user, err := s.findByCredentials(ctx, emailAddr, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	observability.SessionsIssued.WithLabelValues("login").Inc()

	return user, token, nil
}

// Logout closes exactly the session identified by token.
func (s *UserService) Logout(ctx context.Context, userID uint, token string) error {
	return s.userRepo.RemoveToken(ctx, userID, token)
}

// LogoutAll closes every session of the user.
func (s *UserService) LogoutAll(ctx context.Context, userID uint) error {
	return s.userRepo.RemoveAllTokens(ctx, userID)
}

// GetByID returns the user or a not-found error.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateProfile applies the set fields of the input. A new password is
// validated and hashed here; the stored hash is never re-hashed.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if err := validation.ValidateName(*in.Name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Name = *in.Name
	}
	if in.Email != nil {
		normalized := validation.NormalizeEmail(*in.Email)
		if err := validation.ValidateEmail(normalized); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Email = normalized
	}
	if in.Password != nil {
		if err := validation.ValidatePassword(*in.Password); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		hashed, hashErr := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			return nil, models.NewInternalError(hashErr)
		}
		user.Password = string(hashed)
	}
	if in.Age != nil {
		if err := validation.ValidateAge(*in.Age); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Age = *in.Age
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the account together with its tasks and sessions, then
// sends a cancellation email in the background.
func (s *UserService) Delete(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.taskRepo.DeleteByUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.userRepo.RemoveAllTokens(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return nil, err
	}

	s.sendInBackground("cancellation", email.Message{
		To:      user.Email,
		Subject: "Sorry to see you go!",
		Body:    "Goodbye, " + user.Name + ". I hope to see you back sometime soon.",
	})

	return user, nil
}

// findByCredentials resolves email+password to a user. The same
// authentication error covers unknown emails and wrong passwords so the
// response never reveals which one failed.
func (s *UserService) findByCredentials(ctx context.Context, emailAddr, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, validation.NormalizeEmail(emailAddr))
	if err != nil {
		return nil, err
	}
	if user == nil {
		observability.AuthFailures.WithLabelValues("unknown_email").Inc()
		return nil, models.NewUnauthorizedError("Unable to login")
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); cmpErr != nil {
		observability.AuthFailures.WithLabelValues("wrong_password").Inc()
		return nil, models.NewUnauthorizedError("Unable to login")
	}
	return user, nil
}

func (s *UserService) openSession(ctx context.Context, userID uint) (string, error) {
	token, err := s.tokens.Issue(userID)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	if err := s.userRepo.AddToken(ctx, userID, token); err != nil {
		return "", err
	}
	return token, nil
}

// sendInBackground fires off a transactional email without blocking the
// request. Failures are logged and counted, never surfaced to the caller.
func (s *UserService) sendInBackground(kind string, msg email.Message) {
	if s.mailer == nil {
		return
	}
	go func() {
		if err := s.mailer.Send(context.Background(), msg); err != nil {
			observability.EmailSends.WithLabelValues(kind, "error").Inc()
			middleware.Logger.Error("email send failed",
				"kind", kind, "to", msg.To, "error", err)
			return
		}
		observability.EmailSends.WithLabelValues(kind, "ok").Inc()
	}()
}
