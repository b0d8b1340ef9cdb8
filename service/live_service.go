package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IsraelDcoder/Dlcf-library/cons"
	"github.com/IsraelDcoder/Dlcf-library/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentPublisher turns an ended session's recording into a library entry.
// Implemented by ContentService; the indirection keeps the live lifecycle
// independent of library internals.
type ContentPublisher interface {
	PublishRecording(tx *gorm.DB, session *models.LiveSession, uploaderID uint64, makePublic bool) (*models.Content, error)
}

// LiveService owns the session lifecycle: start, recording attach, end,
// save-to-library. State transitions are one-way; End and Save each guard
// against replays.
type LiveService struct {
	*Service
	publisher ContentPublisher
}

func NewLiveService(s *Service, publisher ContentPublisher) *LiveService {
	return &LiveService{Service: s, publisher: publisher}
}

// StartParams are the caller-supplied fields for a new session.
type StartParams struct {
	Title       string
	Description string
	CommunityID *uint64
	Thumbnail   string
}

// Start opens a live session. Only site teachers and admins may host.
func (s *LiveService) Start(hostID uint64, p StartParams) (*models.LiveSession, error) {
	var host models.User
	err := s.DB.First(&host, hostID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if !host.CanUpload() {
		return nil, fmt.Errorf("%w: only teachers may go live", ErrPermissionDenied)
	}

	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = "Live Session"
	}
	session := &models.LiveSession{
		Title:       title,
		HostID:      hostID,
		CommunityID: p.CommunityID,
		IsLive:      true,
		StartedAt:   time.Now(),
		Description: p.Description,
		StreamKey:   uuid.NewString(),
		Thumbnail:   p.Thumbnail,
	}
	if err := s.DB.Create(session).Error; err != nil {
		return nil, err
	}

	s.publishGlobal(cons.EventLiveStarted, map[string]any{
		"id":    session.ID,
		"title": session.Title,
	})
	return session, nil
}

// SessionInfo is the list shape for the live directory.
type SessionInfo struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Host      string    `json:"host"`
	IsLive    bool      `json:"is_live"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   *string   `json:"ended_at"`
}

// NowList returns the 20 most recent sessions, live ones first within the
// started-at ordering.
func (s *LiveService) NowList() ([]SessionInfo, error) {
	var sessions []models.LiveSession
	err := s.DB.Preload("Host").Order("is_live DESC, started_at DESC").Limit(20).Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	infos := make([]SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		info := SessionInfo{
			ID:        sess.ID,
			Title:     sess.Title,
			Host:      sess.Host.Name,
			IsLive:    sess.IsLive,
			StartedAt: sess.StartedAt,
		}
		if sess.EndedAt != nil {
			iso := sess.EndedAt.UTC().Format(time.RFC3339)
			info.EndedAt = &iso
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Get loads a session by id.
func (s *LiveService) Get(sessionID uint64) (*models.LiveSession, error) {
	var session models.LiveSession
	err := s.DB.Preload("Host").Preload("Tags").First(&session, sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: session", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// AttachRecording records the uploaded file against a session. Host only.
// A later upload replaces the earlier one while the session has not been
// saved.
func (s *LiveService) AttachRecording(sessionID, actorID uint64, filename string, size int64) error {
	session, err := s.Get(sessionID)
	if err != nil {
		return err
	}
	if session.HostID != actorID {
		return fmt.Errorf("%w: not the session host", ErrPermissionDenied)
	}
	if session.IsSaved {
		return ErrAlreadySaved
	}

	err = s.DB.Model(&models.LiveSession{}).Where("id = ?", sessionID).
		Updates(map[string]any{
			"recording_path": filename,
			"recording_size": size,
		}).Error
	if err != nil {
		return err
	}

	s.publishGlobal(cons.EventLiveRecordingUploaded, map[string]any{
		"id":   sessionID,
		"path": filename,
	})
	return nil
}

// EndParams carries optional recording metadata delivered with the end call,
// and whether to publish the recording to the library in the same stroke.
type EndParams struct {
	RecordingPath string
	RecordingSize int64
	AutoPublish   bool
	MakePublic    bool
}

// End closes a session. The transition is a conditional update on is_live so
// two racing End calls cannot both win; the loser gets ErrAlreadyEnded.
func (s *LiveService) End(sessionID, actorID uint64, p EndParams) (*models.LiveSession, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session.HostID != actorID {
		var actor models.User
		if err := s.DB.First(&actor, actorID).Error; err != nil || !actor.IsAdmin() {
			return nil, fmt.Errorf("%w: not the session host", ErrPermissionDenied)
		}
	}

	now := time.Now()
	updates := map[string]any{
		"is_live":  false,
		"ended_at": now,
	}
	if p.RecordingPath != "" {
		updates["recording_path"] = p.RecordingPath
		updates["recording_size"] = p.RecordingSize
	}
	res := s.DB.Model(&models.LiveSession{}).
		Where("id = ? AND is_live = ?", sessionID, true).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyEnded
	}

	session.IsLive = false
	session.EndedAt = &now
	if p.RecordingPath != "" {
		session.RecordingPath = p.RecordingPath
		session.RecordingSize = p.RecordingSize
	}

	s.publishGlobal(cons.EventLiveEnded, map[string]any{
		"id":       session.ID,
		"ended_at": now.UTC().Format(time.RFC3339),
	})

	if p.AutoPublish {
		if _, err := s.Save(sessionID, actorID, p.MakePublic); err != nil {
			return session, err
		}
	}
	return session, nil
}

// Save publishes an ended session's recording into the content library.
// One-shot: a saved session rejects further saves, and a session with no
// recording cannot be saved at all.
func (s *LiveService) Save(sessionID, actorID uint64, makePublic bool) (*models.Content, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session.HostID != actorID {
		var actor models.User
		if err := s.DB.First(&actor, actorID).Error; err != nil || !actor.IsAdmin() {
			return nil, fmt.Errorf("%w: not the session host", ErrPermissionDenied)
		}
	}
	if session.IsSaved {
		return nil, ErrAlreadySaved
	}
	if strings.TrimSpace(session.RecordingPath) == "" {
		return nil, ErrNoRecording
	}

	var content *models.Content
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		content, txErr = s.publisher.PublishRecording(tx, session, session.HostID, makePublic)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	if s.Activity != nil {
		s.Activity.Log(actorID, &content.ID, "save_live",
			fmt.Sprintf("Saved live session %d to library as content %d", session.ID, content.ID), "",
			map[string]any{"session_id": session.ID})
	}
	return content, nil
}
