package dlcf_library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/IsraelDcoder/Dlcf-library/models"
	"github.com/google/uuid"
)

// storage folder per content type, under the configured upload root
var typeFolders = map[string]string{
	models.ContentTypePDF:   "pdfs",
	models.ContentTypeEbook: "ebooks",
	models.ContentTypeAudio: "audio",
	models.ContentTypeVideo: "videos",
	models.ContentTypeLive:  "live",
}

// accepted file extensions per content type
var allowedExtensions = map[string][]string{
	models.ContentTypePDF:   {"pdf"},
	models.ContentTypeEbook: {"epub", "mobi", "pdf"},
	models.ContentTypeAudio: {"mp3", "wav", "ogg", "m4a"},
	models.ContentTypeVideo: {"mp4", "webm", "avi", "mkv", "mov"},
	models.ContentTypeLive:  {"mp3", "wav", "m4a", "ogg"},
}

// allowedFile reports whether the filename's extension is acceptable for
// the given content type. Files without an extension are always rejected.
func allowedFile(filename, contentType string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return false
	}
	for _, allowed := range allowedExtensions[contentType] {
		if ext == allowed {
			return true
		}
	}
	return false
}

// storageFolder maps a content type to its folder name; unknown types land
// in "misc" rather than the root.
func storageFolder(contentType string) string {
	if folder, ok := typeFolders[contentType]; ok {
		return folder
	}
	return "misc"
}

// storagePath resolves the on-disk path for a stored filename. The DB only
// keeps the filename; the directory is derived here, so moving the upload
// root never needs a data migration.
func (c *LibraryEngine) storagePath(contentType, filename string) string {
	return filepath.Join(c.config.UploadDir, storageFolder(contentType), filepath.Base(filename))
}

// ensureStorageDirs creates the per-type folders under the upload root.
func (c *LibraryEngine) ensureStorageDirs() error {
	for _, folder := range typeFolders {
		if err := os.MkdirAll(filepath.Join(c.config.UploadDir, folder), 0o755); err != nil {
			return err
		}
	}
	return os.MkdirAll(filepath.Join(c.config.UploadDir, "misc"), 0o755)
}

// uniqueFilename builds a collision-free stored name keeping the original
// extension.
func uniqueFilename(original string) string {
	ext := filepath.Ext(original)
	return uuid.NewString() + strings.ToLower(ext)
}

// recordingFilename names an uploaded live recording so concurrent uploads
// for different sessions can never collide: <sessionID>_<unixts>_<name>.
func recordingFilename(sessionID uint64, original string) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	return fmt.Sprintf("%d_%d_%s", sessionID, time.Now().Unix(), base)
}
