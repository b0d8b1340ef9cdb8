package dlcf_library

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/IsraelDcoder/Dlcf-library/service"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newHandlerMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	return gormDB, mock, sqlDB
}

func newTestContext(t *testing.T, userID uint64, method, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, "/", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	ctx.Request = req
	ctx.Set("user_id", userID)
	return ctx, w
}

// Mass membership management belongs to site admins. A community admin whose
// account holds the student site role must be turned away before any
// membership writes happen.
func TestManageMembers_RequiresSiteAdmin(t *testing.T) {
	gormDB, mock, sqlDB := newHandlerMockDB(t)
	defer sqlDB.Close()

	base := &service.Service{DB: gormDB}
	engine := &LibraryEngine{
		UserService:       service.NewUserService(base),
		MembershipService: service.NewMembershipService(base),
	}

	// the only query is the site-role lookup; no membership row is consulted
	mock.ExpectQuery("SELECT \\* FROM `lib_user`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "role", "is_active"}).
			AddRow(2, "community admin", "student", true))

	ctx, w := newTestContext(t, 2, http.MethodPost, `{"members":{"5":"teacher"}}`)
	ctx.Params = gin.Params{{Key: "id", Value: "3"}}

	engine.GinHandleManageMembers(ctx)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestLiveNow_ReturnsBareArray(t *testing.T) {
	gormDB, mock, sqlDB := newHandlerMockDB(t)
	defer sqlDB.Close()

	base := &service.Service{DB: gormDB}
	engine := &LibraryEngine{
		LiveService: service.NewLiveService(base, nil),
	}

	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM `lib_live_session`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "host_id", "is_live", "started_at"}).
			AddRow(1, "Algebra 101", 7, true, now))
	mock.ExpectQuery("SELECT \\* FROM `lib_user`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(7, "Ms. Ade"))

	ctx, w := newTestContext(t, 0, http.MethodGet, "")
	engine.GinHandleLiveNow(ctx)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var sessions []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &sessions); err != nil {
		t.Fatalf("body is not a JSON array: %v (body %s)", err, w.Body.String())
	}
	if len(sessions) != 1 || sessions[0]["title"] != "Algebra 101" || sessions[0]["host"] != "Ms. Ade" {
		t.Fatalf("unexpected sessions payload: %v", sessions)
	}
}
