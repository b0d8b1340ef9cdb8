package service

import (
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/IsraelDcoder/Dlcf-library/models"
)

func TestContentService_PublishRecording_StripsDirectories(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	svc := NewContentService(&Service{DB: gormDB})

	session := &models.LiveSession{
		ID:            10,
		Title:         "Algebra review",
		HostID:        7,
		Host:          models.User{ID: 7, Name: "Ms. Ade"},
		RecordingPath: `C:\uploads\live\10_1700000000_lesson.mp4`,
		RecordingSize: 2048,
	}

	mock.ExpectExec("INSERT INTO `lib_content`").
		WillReturnResult(sqlmock.NewResult(55, 1))
	mock.ExpectExec("UPDATE `lib_live_session`").
		WillReturnResult(sqlmock.NewResult(0, 1))

	content, err := svc.PublishRecording(gormDB, session, 7, true)
	if err != nil {
		t.Fatalf("PublishRecording: %v", err)
	}
	if content.FilePath != "10_1700000000_lesson.mp4" {
		t.Fatalf("expected bare filename, got %q", content.FilePath)
	}
	if content.ContentType != models.ContentTypeLive {
		t.Fatalf("expected live content type, got %q", content.ContentType)
	}
	if !strings.HasPrefix(content.Description, "Recorded live session:") {
		t.Fatalf("unexpected description %q", content.Description)
	}
	if content.Author != "Ms. Ade" {
		t.Fatalf("author should come from the session host, got %q", content.Author)
	}
	if !session.IsSaved {
		t.Fatalf("session should be flagged saved")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestContentService_PublishRecording_SecondSaveLoses(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	svc := NewContentService(&Service{DB: gormDB})

	session := &models.LiveSession{ID: 10, Title: "Algebra review", HostID: 7, RecordingPath: "lesson.mp4"}

	mock.ExpectExec("INSERT INTO `lib_content`").
		WillReturnResult(sqlmock.NewResult(56, 1))
	// the conditional update finds is_saved already true
	mock.ExpectExec("UPDATE `lib_live_session`").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if _, err := svc.PublishRecording(gormDB, session, 7, false); err != ErrAlreadySaved {
		t.Fatalf("expected ErrAlreadySaved, got %v", err)
	}
}

func TestContentService_Search_TooShortReturnsNothing(t *testing.T) {
	gormDB, _, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	svc := NewContentService(&Service{DB: gormDB})

	// no query expectations: a one-character term never reaches the DB
	items, err := svc.Search("a")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no hits, got %d", len(items))
	}
}
