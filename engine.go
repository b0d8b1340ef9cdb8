package dlcf_library

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/IsraelDcoder/Dlcf-library/middleware"
	model "github.com/IsraelDcoder/Dlcf-library/models"
	"github.com/IsraelDcoder/Dlcf-library/service"
	"github.com/gin-gonic/gin"
)

type LibraryEngine struct {
	config *Config

	UserService         *service.UserService
	ContentService      *service.ContentService
	CommunityService    *service.CommunityService
	MembershipService   *service.MembershipService
	ModerationService   *service.ModerationService
	ChatService         *service.ChatService
	LiveService         *service.LiveService
	NotificationService *service.NotificationService
	ActivityService     *service.ActivityService
	AuthService         *service.AuthService
	WsServer            *WsServer

	auditProducer *service.AuditProducer
}

var (
	Instance *LibraryEngine
	once     sync.Once
)

// NewEngine builds the singleton engine. Options carry the DB/Redis handles
// and the optional Kafka and SMTP wiring; everything else is derived here.
func NewEngine(opts ...Option) *LibraryEngine {
	once.Do(func() {
		c := &Config{
			TablePrefix: "lib_", // default
			UploadDir:   "./uploads",
		}
		for _, opt := range opts {
			opt(c)
		}

		Instance = &LibraryEngine{config: c}

		Instance.WsServer = NewWsServer()
		go Instance.WsServer.Run()

		// audit mirror is optional; nil producer means DB-only logging
		if len(c.Audit.Brokers) > 0 {
			Instance.auditProducer = service.NewAuditProducer(c.Audit)
		}
		activity := service.NewActivityService(c.DB, Instance.auditProducer)

		// base service with the injected publish callbacks; the mute store
		// backing is selected once, right here
		baseService := &service.Service{
			DB:          c.DB,
			RDB:         c.RDB,
			TablePrefix: c.TablePrefix,
			Mutes:       service.NewMuteStore(c.RDB),
			Activity:    activity,
			PublishRoom: func(room, event string, payload map[string]any) {
				Instance.publishRoomEvent(room, event, payload)
			},
			PublishGlobal: func(event string, payload map[string]any) {
				Instance.publishGlobalEvent(event, payload)
			},
		}

		Instance.ActivityService = activity
		Instance.UserService = service.NewUserService(baseService)
		Instance.MembershipService = service.NewMembershipService(baseService)
		Instance.CommunityService = service.NewCommunityService(baseService, Instance.MembershipService)
		Instance.ModerationService = service.NewModerationService(baseService, Instance.MembershipService)
		Instance.ChatService = service.NewChatService(baseService)
		Instance.ContentService = service.NewContentService(baseService)
		Instance.LiveService = service.NewLiveService(baseService, Instance.ContentService)
		Instance.NotificationService = service.NewNotificationService(baseService, service.NewMailer(c.SMTP))
		Instance.AuthService = service.NewAuthService(c.RDB)

		if err := Instance.AutoMigrate(); err != nil {
			log.Printf("AutoMigrate failed: %v", err)
		}
		if err := Instance.ensureStorageDirs(); err != nil {
			log.Printf("storage dirs: %v", err)
		}

		Instance.bindWsHandlersOnMessage()
	})

	return Instance
}

func (c *LibraryEngine) AutoMigrate() error {
	db := c.config.DB
	log.Println("AutoMigrate...")
	return db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Tag{},
		&model.Content{},
		&model.ActivityLog{},
		&model.Notification{},
		&model.Community{},
		&model.Membership{},
		&model.Post{},
		&model.Comment{},
		&model.ChatMessage{},
		&model.LiveSession{},
	)
}

// publishGlobalEvent fans a lifecycle event out to every live connection.
func (c *LibraryEngine) publishGlobalEvent(event string, payload map[string]any) {
	out := make(map[string]any, len(payload)+1)
	out["type"] = event
	for k, v := range payload {
		out[k] = v
	}
	b, err := json.Marshal(out)
	if err != nil {
		log.Printf("marshal %s event: %v", event, err)
		return
	}
	c.WsServer.BroadcastAll(b)
}

// ServeWS upgrades the request for an authenticated user. The display name
// is looked up so room events can carry it.
func (c *LibraryEngine) ServeWS(w http.ResponseWriter, r *http.Request, userID uint64) {
	name := ""
	if user, err := c.UserService.GetUser(userID); err == nil && user != nil {
		name = user.Name
	}
	c.WsServer.ServeWS(w, r, userID, name)
}

// GinAuthMiddleware returns the auth middleware bound to this engine's
// AuthService.
//
// Usage:
//
//	engine := dlcf_library.NewEngine(...)
//	r := gin.Default()
//	r.Use(engine.GinAuthMiddleware(nil))
func (c *LibraryEngine) GinAuthMiddleware(opt *middleware.AuthOptions) gin.HandlerFunc {
	return middleware.GinAuthMiddleware(c.AuthService, opt)
}

// UploadDir exposes the configured storage root for handlers.
func (c *LibraryEngine) UploadDir() string {
	return c.config.UploadDir
}

// Close releases background resources (currently the Kafka producer).
func (c *LibraryEngine) Close() error {
	if c.auditProducer != nil {
		return c.auditProducer.Close()
	}
	return nil
}
