package database

import (
	"context"
	"fmt"
	"log/slog"

	"savornshare/internal/media"
	"savornshare/internal/middleware"

	"gorm.io/gorm"
)

// legacyRow is a post from the earlier schema revision that stored the
// thumbnail inline as encoded binary instead of a URL reference.
type legacyRow struct {
	ID             uint
	ThumbnailImage []byte
}

// MigrateInlineThumbnails converts legacy inline-binary thumbnails to stored
// objects with URL references. The canonical media variant is the URL; after
// conversion the blob column is cleared so the two variants never coexist on
// a row. Rows whose bytes no longer decode are logged and skipped rather
// than blocking the migration.
func MigrateInlineThumbnails(ctx context.Context, db *gorm.DB, uploads *media.Service) (int, error) {
	if !db.Migrator().HasColumn("posts", "thumbnail_image") {
		return 0, nil
	}

	var rows []legacyRow
	err := db.WithContext(ctx).
		Table("posts").
		Select("id", "thumbnail_image").
		Where("thumbnail_image IS NOT NULL AND (image_url IS NULL OR image_url = '')").
		Scan(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("failed to scan legacy posts: %w", err)
	}

	converted := 0
	for _, row := range rows {
		if len(row.ThumbnailImage) == 0 {
			continue
		}

		url, err := uploads.UploadThumbnail(ctx, row.ThumbnailImage, "")
		if err != nil {
			middleware.Logger.WarnContext(ctx, "skipping legacy thumbnail that failed conversion",
				slog.Uint64("post_id", uint64(row.ID)), slog.String("error", err.Error()))
			continue
		}

		err = db.WithContext(ctx).
			Table("posts").
			Where("id = ?", row.ID).
			Updates(map[string]any{"image_url": url, "thumbnail_image": nil}).Error
		if err != nil {
			return converted, fmt.Errorf("failed to update post %d: %w", row.ID, err)
		}
		converted++
	}

	if converted > 0 {
		middleware.Logger.Info("converted legacy inline thumbnails", slog.Int("count", converted))
	}
	return converted, nil
}
