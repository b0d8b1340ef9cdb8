package dlcf_library

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/IsraelDcoder/Dlcf-library/models"
	"gorm.io/gorm"
)

// MigrateStoredPathsToFilenames rewrites legacy absolute paths in
// lib_content.file_path and lib_live_session.recording_path down to bare
// filenames. Early deployments stored full host paths; the storage layer
// now derives directories from the content type, so only the final path
// element belongs in the database.
//
// Safe to run repeatedly; rows already holding bare filenames are skipped.
func (c *LibraryEngine) MigrateStoredPathsToFilenames() error {
	db := c.config.DB

	contentTable := c.config.TablePrefix + "content"
	sessionTable := c.config.TablePrefix + "live_session"
	if !isValidTableName(contentTable) || !isValidTableName(sessionTable) {
		return fmt.Errorf("invalid table prefix: %s", c.config.TablePrefix)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var contents []models.Content
		if err := tx.Select("id", "file_path").
			Where("file_path LIKE ? OR file_path LIKE ?", "%/%", "%\\\\%").
			Find(&contents).Error; err != nil {
			return err
		}
		for _, content := range contents {
			name := bareFilename(content.FilePath)
			if name == content.FilePath {
				continue
			}
			if err := tx.Model(&models.Content{}).Where("id = ?", content.ID).
				Update("file_path", name).Error; err != nil {
				return err
			}
		}
		if len(contents) > 0 {
			log.Printf("migrated %d content paths to filenames", len(contents))
		}

		var sessions []models.LiveSession
		if err := tx.Select("id", "recording_path").
			Where("recording_path LIKE ? OR recording_path LIKE ?", "%/%", "%\\\\%").
			Find(&sessions).Error; err != nil {
			return err
		}
		for _, session := range sessions {
			name := bareFilename(session.RecordingPath)
			if name == session.RecordingPath {
				continue
			}
			if err := tx.Model(&models.LiveSession{}).Where("id = ?", session.ID).
				Update("recording_path", name).Error; err != nil {
				return err
			}
		}
		if len(sessions) > 0 {
			log.Printf("migrated %d recording paths to filenames", len(sessions))
		}
		return nil
	})
}

// bareFilename strips directories, normalizing Windows separators first.
func bareFilename(path string) string {
	return filepath.Base(strings.ReplaceAll(path, "\\", "/"))
}

// isValidTableName guards dynamic table names against injection: letters,
// digits and underscores only.
func isValidTableName(name string) bool {
	for _, c := range name {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') || c == '_') {
			return false
		}
	}
	return len(name) > 0 && len(name) < 64
}
