package service

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"

	"taskhub/internal/models"
	"taskhub/internal/observability"
	"taskhub/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	xdraw "golang.org/x/image/draw"

	_ "image/jpeg" // Register JPEG decoder
)

const (
	// AvatarMaxUploadBytes caps the raw upload size.
	AvatarMaxUploadBytes = 1_000_000
	// AvatarSize is the canonical stored width and height in pixels.
	AvatarSize = 250
)

var allowedAvatarSuffixes = []string{".jpg", ".jpeg", ".png"}

// AvatarService normalizes uploaded avatar images and stores them on the
// user row. Every stored avatar is a 250x250 PNG regardless of the upload
// format.
type AvatarService struct {
	userRepo repository.UserRepository
}

func NewAvatarService(userRepo repository.UserRepository) *AvatarService {
	return &AvatarService{userRepo: userRepo}
}

// Upload validates, normalizes, and stores an avatar for the user.
func (s *AvatarService) Upload(ctx context.Context, userID uint, filename string, content []byte) error {
	// Decode+rescale is the slow part of the request, worth its own span
	span, ctx := observability.NewSpan(ctx, "avatar.normalize")
	span.AddAttributes(attribute.Int("upload.size_bytes", len(content)))
	normalized, err := normalizeAvatar(filename, content)
	span.SetError(err)
	span.End()
	if err != nil {
		observability.AvatarUploads.WithLabelValues("rejected").Inc()
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	user.Avatar = normalized
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	observability.AvatarUploads.WithLabelValues("ok").Inc()
	return nil
}

// Delete clears the user's stored avatar. Deleting an absent avatar is not
// an error.
func (s *AvatarService) Delete(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	user.Avatar = nil
	return s.userRepo.Update(ctx, user)
}

// Get returns the stored avatar bytes of any user. Missing users and users
// without an avatar both report not found.
func (s *AvatarService) Get(ctx context.Context, userID uint) ([]byte, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.Avatar) == 0 {
		return nil, models.NewNotFoundError("Avatar", userID)
	}
	return user.Avatar, nil
}

// normalizeAvatar decodes the upload and re-encodes it as a 250x250 PNG.
func normalizeAvatar(filename string, content []byte) ([]byte, error) {
	if len(content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if len(content) > AvatarMaxUploadBytes {
		return nil, models.NewValidationError("File too large (max 1MB)")
	}
	if !hasAllowedAvatarSuffix(filename) {
		return nil, models.NewValidationError("Please upload an image (jpg, jpeg, or png)")
	}

	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}

	// Scale to exactly 250x250; aspect ratio is intentionally not preserved.
	dst := image.NewRGBA(image.Rect(0, 0, AvatarSize, AvatarSize))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), decoded, decoded.Bounds(), xdraw.Over, nil)

	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, dst); err != nil {
		return nil, models.NewInternalError(err)
	}
	return buf.Bytes(), nil
}

// hasAllowedAvatarSuffix matches the filename extension case-sensitively.
func hasAllowedAvatarSuffix(filename string) bool {
	for _, suffix := range allowedAvatarSuffixes {
		if strings.HasSuffix(filename, suffix) {
			return true
		}
	}
	return false
}
