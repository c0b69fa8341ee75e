package media

import (
	"context"
	"log/slog"
	"strings"

	"savornshare/internal/middleware"
	"savornshare/internal/models"
	"savornshare/internal/observability"

	"github.com/google/uuid"
)

// Service runs uploads through the image pipeline and into the configured
// store. The canonical media reference is the URL of the JPEG master; a WebP
// variant is stored alongside under the same key with a .webp extension.
type Service struct {
	store Store
}

// NewService creates a media Service on top of the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Store exposes the underlying store, mainly so the HTTP layer can mount a
// static route for locally stored objects.
func (s *Service) Store() Store {
	return s.store
}

// UploadThumbnail processes and stores a post thumbnail, returning its URL.
func (s *Service) UploadThumbnail(ctx context.Context, data []byte, contentType string) (string, error) {
	return s.upload(ctx, "posts", data, contentType, MaxThumbnailBytes)
}

// UploadAvatar processes and stores a profile picture, returning its URL.
func (s *Service) UploadAvatar(ctx context.Context, data []byte, contentType string) (string, error) {
	return s.upload(ctx, "avatars", data, contentType, MaxAvatarBytes)
}

func (s *Service) upload(ctx context.Context, prefix string, data []byte, contentType string, maxBytes int) (string, error) {
	processed, err := Process(data, contentType, maxBytes)
	if err != nil {
		observability.MediaOps.WithLabelValues("put", "rejected").Inc()
		return "", err
	}

	key := prefix + "/" + uuid.New().String()

	url, err := s.store.Put(ctx, key+".jpg", processed.JPEG, "image/jpeg")
	if err != nil {
		observability.MediaOps.WithLabelValues("put", "error").Inc()
		return "", models.NewInternalError(err)
	}
	if _, err := s.store.Put(ctx, key+".webp", processed.WebP, "image/webp"); err != nil {
		// The JPEG master is committed; the variant is an optimization.
		observability.MediaOps.WithLabelValues("put", "variant_error").Inc()
		middleware.Logger.WarnContext(ctx, "webp variant upload failed",
			slog.String("key", key), slog.String("error", err.Error()))
	} else {
		observability.MediaOps.WithLabelValues("put", "ok").Inc()
	}

	return url, nil
}

// Remove deletes a stored object and its WebP variant. URLs the store does
// not own (external avatars, the default asset) are ignored. Failures are
// logged, never surfaced: media cleanup is best-effort by contract.
func (s *Service) Remove(ctx context.Context, url string) {
	if url == "" || url == models.DefaultAvatarURL || url == models.LegacyFallbackAvatarURL {
		return
	}
	if _, ok := s.store.KeyFor(url); !ok {
		return
	}

	if err := s.store.Delete(ctx, url); err != nil {
		observability.MediaOps.WithLabelValues("delete", "error").Inc()
		middleware.Logger.WarnContext(ctx, "media delete failed",
			slog.String("url", url), slog.String("error", err.Error()))
		return
	}
	if variant, ok := webpSibling(url); ok {
		if err := s.store.Delete(ctx, variant); err != nil {
			middleware.Logger.WarnContext(ctx, "media variant delete failed",
				slog.String("url", variant), slog.String("error", err.Error()))
		}
	}
	observability.MediaOps.WithLabelValues("delete", "ok").Inc()
}

func webpSibling(url string) (string, bool) {
	if !strings.HasSuffix(url, ".jpg") {
		return "", false
	}
	return strings.TrimSuffix(url, ".jpg") + ".webp", true
}
