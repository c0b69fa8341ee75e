package media

import (
	"bytes"
	"image"
	"testing"

	"savornshare/internal/models"
	"savornshare/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessValidPNG(t *testing.T) {
	data := testutil.TinyPNG(t, 64, 48)

	out, err := Process(data, "image/png", MaxAvatarBytes)
	require.NoError(t, err)
	assert.NotEmpty(t, out.JPEG)
	assert.NotEmpty(t, out.WebP)

	decoded, format, err := image.Decode(bytes.NewReader(out.JPEG))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 64, decoded.Bounds().Dx())
}

func TestProcessDownscalesLargeImages(t *testing.T) {
	data := testutil.TinyJPEG(t, 2400, 1200)

	out, err := Process(data, "image/jpeg", MaxThumbnailBytes)
	require.NoError(t, err)

	decoded, _, err := image.Decode(bytes.NewReader(out.JPEG))
	require.NoError(t, err)
	assert.LessOrEqual(t, decoded.Bounds().Dx(), 1080)
	assert.LessOrEqual(t, decoded.Bounds().Dy(), 1080)
}

func TestProcessEmptyUpload(t *testing.T) {
	_, err := Process(nil, "image/png", MaxAvatarBytes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No file uploaded")
}

func TestProcessTooBig(t *testing.T) {
	big := make([]byte, MaxAvatarBytes+1)

	_, err := Process(big, "image/png", MaxAvatarBytes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "File too big. File size should be less than 500KB")
}

func TestProcessRejectsNonImage(t *testing.T) {
	_, err := Process([]byte("<!DOCTYPE html><html></html>"), "image/png", MaxAvatarBytes)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestProcessContentTypeMismatch(t *testing.T) {
	data := testutil.TinyPNG(t, 8, 8)

	_, err := Process(data, "image/gif", MaxAvatarBytes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatch")
}

func TestProcessJPEGContentTypeAliases(t *testing.T) {
	data := testutil.TinyJPEG(t, 8, 8)

	_, err := Process(data, "image/jpg", MaxAvatarBytes)
	assert.NoError(t, err, "image/jpg is accepted as an alias for image/jpeg")
}
