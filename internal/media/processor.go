package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"mime"
	"net/http"
	"strings"

	_ "image/gif" // register GIF decoder
	_ "image/png" // register PNG decoder

	"savornshare/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// MaxThumbnailBytes caps post thumbnail uploads.
	MaxThumbnailBytes = 2 * 1024 * 1024
	// MaxAvatarBytes caps profile picture uploads.
	MaxAvatarBytes = 500 * 1024

	maxDimension = 1080
	jpegQuality  = 82
	webpQuality  = 70
)

// Processed holds the encoded outputs of a validated upload.
type Processed struct {
	JPEG []byte
	WebP []byte
}

// Process validates and normalizes an uploaded image: MIME sniffing, decode,
// downscale to fit maxDimension, then JPEG master plus a WebP variant.
func Process(data []byte, contentType string, maxBytes int) (*Processed, error) {
	if len(data) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if len(data) > maxBytes {
		return nil, models.NewValidationError(fmt.Sprintf(
			"File too big. File size should be less than %dKB", maxBytes/1024))
	}

	detected := http.DetectContentType(data)
	if !isAllowedImageMIME(detected) {
		return nil, models.NewValidationError("Invalid image type")
	}
	if provided := normalizeContentType(contentType); strings.HasPrefix(provided, "image/") &&
		!isMatchingContentType(provided, detected) {
		return nil, models.NewValidationError("Image content type mismatch")
	}

	decoded, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	if !isSupportedDecodedFormat(format) {
		return nil, models.NewValidationError("Unsupported image format")
	}

	resized := resizeToFit(decoded, maxDimension, maxDimension)

	jpegBytes, err := encodeJPEG(resized, jpegQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	webpBytes, err := encodeWebP(resized, webpQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &Processed{JPEG: jpegBytes, WebP: webpBytes}, nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

func isSupportedDecodedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}
