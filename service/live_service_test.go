package service

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/IsraelDcoder/Dlcf-library/models"
	"gorm.io/gorm"
)

type stubPublisher struct {
	called     bool
	makePublic bool
	content    *models.Content
	err        error
}

func (p *stubPublisher) PublishRecording(_ *gorm.DB, _ *models.LiveSession, _ uint64, makePublic bool) (*models.Content, error) {
	p.called = true
	p.makePublic = makePublic
	if p.err != nil {
		return nil, p.err
	}
	return p.content, nil
}

func sessionRows(hostID uint64, isLive bool, recordingPath string, isSaved bool) *sqlmock.Rows {
	started := time.Now().Add(-time.Hour)
	return sqlmock.NewRows([]string{
		"id", "title", "host_id", "is_live", "started_at",
		"recording_path", "recording_size", "is_saved",
	}).AddRow(uint64(10), "Algebra review", hostID, isLive, started, recordingPath, int64(0), isSaved)
}

// expectSessionLoad covers Get's main query plus the Host and Tags
// preloads (tags empty).
func expectSessionLoad(mock sqlmock.Sqlmock, rows *sqlmock.Rows, hostID uint64) {
	mock.ExpectQuery("SELECT \\* FROM `lib_live_session`").WillReturnRows(rows)
	mock.ExpectQuery("SELECT \\* FROM `lib_user`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(hostID, "Ms. Ade"))
	mock.ExpectQuery("SELECT \\* FROM `lib_live_session_tags`").
		WillReturnRows(sqlmock.NewRows([]string{"live_session_id", "tag_id"}))
}

func TestLiveService_End_AlreadyEnded(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	svc := NewLiveService(&Service{DB: gormDB}, &stubPublisher{})

	expectSessionLoad(mock, sessionRows(7, false, "", false), 7)
	mock.ExpectExec("UPDATE `lib_live_session`").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.End(10, 7, EndParams{})
	if !errors.Is(err, ErrAlreadyEnded) {
		t.Fatalf("expected ErrAlreadyEnded, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestLiveService_End_PublishesGlobalEvent(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	var gotEvent string
	var gotPayload map[string]any
	base := &Service{DB: gormDB, PublishGlobal: func(event string, payload map[string]any) {
		gotEvent = event
		gotPayload = payload
	}}
	svc := NewLiveService(base, &stubPublisher{})

	expectSessionLoad(mock, sessionRows(7, true, "", false), 7)
	mock.ExpectExec("UPDATE `lib_live_session`").
		WillReturnResult(sqlmock.NewResult(0, 1))

	session, err := svc.End(10, 7, EndParams{})
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if session.IsLive || session.EndedAt == nil {
		t.Fatalf("expected ended session, got %+v", session)
	}
	if gotEvent != "live:ended" {
		t.Fatalf("expected live:ended, got %q", gotEvent)
	}
	if gotPayload["id"] != uint64(10) {
		t.Fatalf("expected payload id 10, got %v", gotPayload["id"])
	}
	endedAt, ok := gotPayload["ended_at"].(string)
	if !ok || endedAt == "" {
		t.Fatalf("expected an ended_at timestamp in the payload, got %v", gotPayload["ended_at"])
	}
	if _, err := time.Parse(time.RFC3339, endedAt); err != nil {
		t.Fatalf("ended_at not RFC3339: %v", err)
	}
}

func TestLiveService_End_NonHostDenied(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	svc := NewLiveService(&Service{DB: gormDB}, &stubPublisher{})

	expectSessionLoad(mock, sessionRows(7, true, "", false), 7)
	// actor 99 is not the host; the follow-up lookup finds a student account
	mock.ExpectQuery("SELECT \\* FROM `lib_user`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "role"}).AddRow(uint64(99), "Sam", "student"))

	_, err := svc.End(10, 99, EndParams{})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestLiveService_Save_NoRecording(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	pub := &stubPublisher{}
	svc := NewLiveService(&Service{DB: gormDB}, pub)

	expectSessionLoad(mock, sessionRows(7, false, "", false), 7)

	_, err := svc.Save(10, 7, true)
	if !errors.Is(err, ErrNoRecording) {
		t.Fatalf("expected ErrNoRecording, got %v", err)
	}
	if pub.called {
		t.Fatalf("publisher must not run without a recording")
	}
}

func TestLiveService_Save_AlreadySaved(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	pub := &stubPublisher{}
	svc := NewLiveService(&Service{DB: gormDB}, pub)

	expectSessionLoad(mock, sessionRows(7, false, "10_1700000000_lesson.mp4", true), 7)

	_, err := svc.Save(10, 7, true)
	if !errors.Is(err, ErrAlreadySaved) {
		t.Fatalf("expected ErrAlreadySaved, got %v", err)
	}
	if pub.called {
		t.Fatalf("publisher must not run twice for one session")
	}
}

func TestLiveService_Save_RunsPublisherInTransaction(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	pub := &stubPublisher{content: &models.Content{ID: 55, ContentType: models.ContentTypeLive}}
	svc := NewLiveService(&Service{DB: gormDB}, pub)

	expectSessionLoad(mock, sessionRows(7, false, "10_1700000000_lesson.mp4", false), 7)
	mock.ExpectBegin()
	mock.ExpectCommit()

	content, err := svc.Save(10, 7, true)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !pub.called || !pub.makePublic {
		t.Fatalf("expected publisher called with makePublic, got %+v", pub)
	}
	if content.ID != 55 {
		t.Fatalf("expected content 55, got %d", content.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}
