package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newChatService(t *testing.T) (*ChatService, sqlmock.Sqlmock, func()) {
	t.Helper()
	gormDB, mock, sqlDB := newMockDB(t)
	base := &Service{DB: gormDB, Mutes: NewMemoryMuteStore()}
	return NewChatService(base), mock, func() { _ = sqlDB.Close() }
}

func TestChatService_SaveMessage_NonMemberPersistsNothing(t *testing.T) {
	svc, mock, done := newChatService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `lib_membership`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	_, err := svc.SaveMessage(context.Background(), 1, 2, "hello")
	if !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}

	// no INSERT expectation registered: any insert attempt would have failed
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestChatService_SaveMessage_MutedPersistsNothing(t *testing.T) {
	svc, mock, done := newChatService(t)
	defer done()

	if err := svc.Mutes.SetMute(context.Background(), 1, 2, 300); err != nil {
		t.Fatalf("SetMute: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `lib_membership`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := svc.SaveMessage(context.Background(), 1, 2, "hello")
	if !errors.Is(err, ErrMuted) {
		t.Fatalf("expected ErrMuted, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestChatService_SaveMessage_MemberNotMutedPersists(t *testing.T) {
	svc, mock, done := newChatService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `lib_membership`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec("INSERT INTO `lib_chat_message`").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	msg, err := svc.SaveMessage(context.Background(), 1, 2, "  hello room  ")
	if err != nil {
		t.Fatalf("SaveMessage: %v", err)
	}
	if msg.ID != 42 {
		t.Fatalf("expected ID 42, got %d", msg.ID)
	}
	if msg.Message != "hello room" {
		t.Fatalf("expected trimmed body, got %q", msg.Message)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestChatService_SaveMessage_Validation(t *testing.T) {
	svc, _, done := newChatService(t)
	defer done()

	if _, err := svc.SaveMessage(context.Background(), 1, 2, "   "); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank message: expected ErrValidation, got %v", err)
	}

	long := strings.Repeat("x", maxChatMessageLen+1)
	if _, err := svc.SaveMessage(context.Background(), 1, 2, long); !errors.Is(err, ErrValidation) {
		t.Fatalf("oversized message: expected ErrValidation, got %v", err)
	}
}
