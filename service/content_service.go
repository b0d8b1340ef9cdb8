package service

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/IsraelDcoder/Dlcf-library/models"
	"gorm.io/gorm"
)

// ContentService manages the library: uploads, browsing, search, counters
// and category bookkeeping.
type ContentService struct {
	*Service
}

func NewContentService(s *Service) *ContentService {
	return &ContentService{Service: s}
}

// CreateParams describes a new library entry. FilePath is the stored
// filename only; the storage folder derives from ContentType.
type CreateParams struct {
	Title       string
	Author      string
	Description string
	ContentType string
	FilePath    string
	FileSize    int64
	CategoryID  *uint64
	IsPublic    bool
	Tags        []string
}

// Create inserts a library entry. Site teachers and admins only.
func (s *ContentService) Create(uploaderID uint64, p CreateParams) (*models.Content, error) {
	var uploader models.User
	if err := s.DB.First(&uploader, uploaderID).Error; err != nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	if !uploader.CanUpload() {
		return nil, fmt.Errorf("%w: upload requires a teacher account", ErrPermissionDenied)
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !models.ValidContentType(p.ContentType) {
		return nil, fmt.Errorf("%w: unknown content type %q", ErrValidation, p.ContentType)
	}
	if strings.TrimSpace(p.FilePath) == "" {
		return nil, fmt.Errorf("%w: file is required", ErrValidation)
	}

	content := &models.Content{
		Title:       strings.TrimSpace(p.Title),
		Author:      p.Author,
		Description: p.Description,
		ContentType: p.ContentType,
		FilePath:    p.FilePath,
		FileSize:    p.FileSize,
		CategoryID:  p.CategoryID,
		UploadedBy:  uploaderID,
		IsPublic:    p.IsPublic,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(content).Error; err != nil {
			return err
		}
		tags, err := findOrCreateTags(tx, p.Tags)
		if err != nil {
			return err
		}
		if len(tags) > 0 {
			return tx.Model(content).Association("Tags").Append(tags)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Activity != nil {
		s.Activity.Log(uploaderID, &content.ID, "upload",
			fmt.Sprintf("Uploaded %s: %s", content.ContentType, content.Title), "", nil)
	}
	return content, nil
}

// ListParams filter and page the public library view.
type ListParams struct {
	ContentType string
	CategoryID  *uint64
	Search      string
	Page        int
	PerPage     int
}

// Page wraps a list result with the pagination envelope.
type Page struct {
	Items   []models.Content `json:"items"`
	Page    int              `json:"page"`
	Pages   int              `json:"pages"`
	Total   int64            `json:"total"`
	HasNext bool             `json:"has_next"`
	HasPrev bool             `json:"has_prev"`
}

// List returns public entries matching the filters, newest first.
func (s *ContentService) List(p ListParams) (*Page, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 || p.PerPage > 50 {
		p.PerPage = 12
	}

	q := s.DB.Model(&models.Content{}).Where("is_public = ?", true)
	if p.ContentType != "" {
		q = q.Where("content_type = ?", p.ContentType)
	}
	if p.CategoryID != nil {
		q = q.Where("category_id = ?", *p.CategoryID)
	}
	if term := strings.TrimSpace(p.Search); term != "" {
		like := "%" + term + "%"
		q = q.Where("title LIKE ? OR description LIKE ? OR author LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.Content
	err := q.Preload("Category").Preload("Tags").Preload("Uploader").
		Order("created_at DESC").
		Offset((p.Page - 1) * p.PerPage).
		Limit(p.PerPage).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	pages := int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	return &Page{
		Items:   items,
		Page:    p.Page,
		Pages:   pages,
		Total:   total,
		HasNext: p.Page < pages,
		HasPrev: p.Page > 1,
	}, nil
}

// Get loads one entry with its relations.
func (s *ContentService) Get(contentID uint64) (*models.Content, error) {
	var content models.Content
	err := s.DB.Preload("Category").Preload("Tags").Preload("Uploader").
		First(&content, contentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: content", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &content, nil
}

// Search is the lightweight typeahead lookup: at least two characters, at
// most ten hits, public entries only.
func (s *ContentService) Search(term string) ([]models.Content, error) {
	term = strings.TrimSpace(term)
	if len(term) < 2 {
		return []models.Content{}, nil
	}
	like := "%" + term + "%"
	var items []models.Content
	err := s.DB.Where("is_public = ?", true).
		Where("title LIKE ? OR author LIKE ?", like, like).
		Limit(10).
		Find(&items).Error
	return items, err
}

// IncrementView bumps the view counter and logs the access.
func (s *ContentService) IncrementView(contentID, userID uint64, ip string) error {
	res := s.DB.Model(&models.Content{}).Where("id = ?", contentID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: content", ErrNotFound)
	}
	if s.Activity != nil && userID != 0 {
		s.Activity.Log(userID, &contentID, "view", "", ip, nil)
	}
	return nil
}

// IncrementDownload bumps the download counter and logs it.
func (s *ContentService) IncrementDownload(contentID, userID uint64, ip string) error {
	res := s.DB.Model(&models.Content{}).Where("id = ?", contentID).
		UpdateColumn("download_count", gorm.Expr("download_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: content", ErrNotFound)
	}
	if s.Activity != nil && userID != 0 {
		s.Activity.Log(userID, &contentID, "download", "", ip, nil)
	}
	return nil
}

// ToggleVisibility flips an entry between public and hidden. Uploader or
// site admin.
func (s *ContentService) ToggleVisibility(contentID, actorID uint64) (bool, error) {
	content, err := s.Get(contentID)
	if err != nil {
		return false, err
	}
	if content.UploadedBy != actorID {
		var actor models.User
		if err := s.DB.First(&actor, actorID).Error; err != nil || !actor.IsAdmin() {
			return false, fmt.Errorf("%w: not the uploader", ErrPermissionDenied)
		}
	}
	next := !content.IsPublic
	err = s.DB.Model(&models.Content{}).Where("id = ?", contentID).
		Update("is_public", next).Error
	return next, err
}

// Stats is the dashboard counter block.
type Stats struct {
	TotalContent   int64            `json:"total_content"`
	TotalUsers     int64            `json:"total_users"`
	TotalDownloads int64            `json:"total_downloads"`
	ByType         map[string]int64 `json:"by_type"`
}

// GetStats aggregates library-wide counters.
func (s *ContentService) GetStats() (*Stats, error) {
	stats := &Stats{ByType: map[string]int64{}}
	if err := s.DB.Model(&models.Content{}).Where("is_public = ?", true).
		Count(&stats.TotalContent).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.User{}).Where("is_active = ?", true).
		Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	row := s.DB.Model(&models.Content{}).
		Select("COALESCE(SUM(download_count), 0)").Row()
	if err := row.Scan(&stats.TotalDownloads); err != nil {
		return nil, err
	}

	type typeCount struct {
		ContentType string
		N           int64
	}
	var counts []typeCount
	err := s.DB.Model(&models.Content{}).
		Select("content_type, COUNT(*) AS n").
		Where("is_public = ?", true).
		Group("content_type").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		stats.ByType[c.ContentType] = c.N
	}
	return stats, nil
}

// CategoryCount pairs a category with how many public entries it holds.
type CategoryCount struct {
	models.Category
	ContentCount int64 `json:"content_count"`
}

// Categories lists all categories with their public-entry counts.
func (s *ContentService) Categories() ([]CategoryCount, error) {
	var cats []models.Category
	if err := s.DB.Order("name ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	out := make([]CategoryCount, 0, len(cats))
	for _, c := range cats {
		var n int64
		err := s.DB.Model(&models.Content{}).
			Where("category_id = ? AND is_public = ?", c.ID, true).
			Count(&n).Error
		if err != nil {
			return nil, err
		}
		out = append(out, CategoryCount{Category: c, ContentCount: n})
	}
	return out, nil
}

// CreateCategory adds a category. Site admin only.
func (s *ContentService) CreateCategory(actorID uint64, name, description string) (*models.Category, error) {
	var actor models.User
	if err := s.DB.First(&actor, actorID).Error; err != nil || !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: admin only", ErrPermissionDenied)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrValidation)
	}
	cat := &models.Category{Name: name, Description: description}
	if err := s.DB.Create(cat).Error; err != nil {
		return nil, err
	}
	return cat, nil
}

// PublishRecording converts a live session's recording into a library entry
// and flags the session saved, all inside the caller's transaction. The
// stored path keeps only the final path element; uploads from Windows hosts
// arrive with backslash separators, so those are normalized first.
func (s *ContentService) PublishRecording(tx *gorm.DB, session *models.LiveSession, uploaderID uint64, makePublic bool) (*models.Content, error) {
	name := strings.ReplaceAll(session.RecordingPath, "\\", "/")
	name = filepath.Base(name)

	content := &models.Content{
		Title:       session.Title,
		Author:      session.Host.Name,
		Description: "Recorded live session: " + session.Title,
		ContentType: models.ContentTypeLive,
		FilePath:    name,
		FileSize:    session.RecordingSize,
		UploadedBy:  uploaderID,
		IsPublic:    makePublic,
	}
	if err := tx.Create(content).Error; err != nil {
		return nil, err
	}
	if len(session.Tags) > 0 {
		if err := tx.Model(content).Association("Tags").Append(session.Tags); err != nil {
			return nil, err
		}
	}

	res := tx.Model(&models.LiveSession{}).
		Where("id = ? AND is_saved = ?", session.ID, false).
		Update("is_saved", true)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadySaved
	}
	session.IsSaved = true
	return content, nil
}

func findOrCreateTags(tx *gorm.DB, names []string) ([]models.Tag, error) {
	var tags []models.Tag
	seen := map[string]bool{}
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		var tag models.Tag
		err := tx.Where("name = ?", name).FirstOrCreate(&tag, models.Tag{Name: name}).Error
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
