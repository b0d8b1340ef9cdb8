package service

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/IsraelDcoder/Dlcf-library/models"
)

func membershipRows(role string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "community_id", "role", "joined_at"}).
		AddRow(uint64(1), uint64(2), uint64(3), role, time.Now())
}

func TestMembershipService_RequireRole_StudentBelowTeacher(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	ms := NewMembershipService(&Service{DB: gormDB})

	mock.ExpectQuery("SELECT \\* FROM `lib_membership`").
		WillReturnRows(membershipRows("student"))

	err := ms.RequireRole(2, 3, models.RoleTeacher)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestMembershipService_RequireRole_AdminPassesTeacherGate(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	ms := NewMembershipService(&Service{DB: gormDB})

	mock.ExpectQuery("SELECT \\* FROM `lib_membership`").
		WillReturnRows(membershipRows("admin"))

	if err := ms.RequireRole(2, 3, models.RoleTeacher); err != nil {
		t.Fatalf("admin should pass the teacher gate: %v", err)
	}
}

func TestMembershipService_RequireMember_AbsentFails(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	ms := NewMembershipService(&Service{DB: gormDB})

	empty := sqlmock.NewRows([]string{"id", "user_id", "community_id", "role", "joined_at"})
	mock.ExpectQuery("SELECT \\* FROM `lib_membership`").WillReturnRows(empty)

	err := ms.RequireMember(2, 3)
	if !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
	// ErrNotMember is a permission failure too
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("ErrNotMember should wrap ErrPermissionDenied")
	}
}

func TestMembershipService_RequireRole_AbsentFailsEveryGate(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	ms := NewMembershipService(&Service{DB: gormDB})

	empty := sqlmock.NewRows([]string{"id", "user_id", "community_id", "role", "joined_at"})
	mock.ExpectQuery("SELECT \\* FROM `lib_membership`").WillReturnRows(empty)

	err := ms.RequireRole(2, 3, models.RoleStudent)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("absent membership must fail even the student gate, got %v", err)
	}
}

func TestMembershipService_Upsert_RejectsUnknownRole(t *testing.T) {
	gormDB, _, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	ms := NewMembershipService(&Service{DB: gormDB})

	err := ms.Upsert(2, 3, "moderator")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestMembershipService_Remove_MissingRowIsNotFound(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	ms := NewMembershipService(&Service{DB: gormDB})

	mock.ExpectExec("DELETE FROM `lib_membership`").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := ms.Remove(2, 3)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
