package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"taskhub/internal/models"
	"taskhub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestImage(t *testing.T, format string, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	buf := bytes.NewBuffer(nil)
	switch format {
	case "png":
		require.NoError(t, png.Encode(buf, img))
	case "jpeg":
		require.NoError(t, jpeg.Encode(buf, img, nil))
	default:
		t.Fatalf("unsupported test image format %q", format)
	}
	return buf.Bytes()
}

func newTestAvatarService(t *testing.T) (*AvatarService, uint) {
	t.Helper()

	db := setupTestDB(t)
	user := &models.User{Name: "Mike", Email: "mike@example.com", Password: "hash"}
	require.NoError(t, db.Create(user).Error)
	return NewAvatarService(repository.NewUserRepository(db)), user.ID
}

func TestAvatarService_UploadNormalizesToPNG(t *testing.T) {
	svc, userID := newTestAvatarService(t)
	ctx := context.Background()

	// A JPEG of arbitrary dimensions comes back as a 250x250 PNG
	require.NoError(t, svc.Upload(ctx, userID, "photo.jpeg", encodeTestImage(t, "jpeg", 600, 400)))

	stored, err := svc.Get(ctx, userID)
	require.NoError(t, err)

	decoded, format, err := image.Decode(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, AvatarSize, decoded.Bounds().Dx())
	assert.Equal(t, AvatarSize, decoded.Bounds().Dy())
}

func TestAvatarService_UploadRejections(t *testing.T) {
	svc, userID := newTestAvatarService(t)
	ctx := context.Background()
	pngBytes := encodeTestImage(t, "png", 10, 10)

	tests := []struct {
		name     string
		filename string
		content  []byte
	}{
		{"Empty upload", "photo.png", nil},
		{"Oversized upload", "photo.png", make([]byte, AvatarMaxUploadBytes+1)},
		{"Wrong extension", "notes.pdf", pngBytes},
		{"Uppercase extension", "photo.PNG", pngBytes},
		{"Not an image", "photo.png", []byte("plain text")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Upload(ctx, userID, tt.filename, tt.content)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		})
	}
}

func TestAvatarService_Delete(t *testing.T) {
	svc, userID := newTestAvatarService(t)
	ctx := context.Background()

	require.NoError(t, svc.Upload(ctx, userID, "photo.png", encodeTestImage(t, "png", 50, 50)))
	require.NoError(t, svc.Delete(ctx, userID))

	_, err := svc.Get(ctx, userID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	// Deleting again is still fine
	assert.NoError(t, svc.Delete(ctx, userID))
}

func TestAvatarService_GetMissingUser(t *testing.T) {
	svc, _ := newTestAvatarService(t)

	_, err := svc.Get(context.Background(), 999)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
