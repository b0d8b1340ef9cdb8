package main

import (
	"log"

	dlcf "github.com/IsraelDcoder/Dlcf-library"
	"github.com/IsraelDcoder/Dlcf-library/config"
	"github.com/IsraelDcoder/Dlcf-library/service"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}

	// 1. Database connection
	db, err := gorm.Open(mysql.Open(cfg.MySQL.DSN), &gorm.Config{})
	if err != nil {
		log.Fatal("mysql:", err)
	}

	// 2. Redis is needed for token auth and mute tracking
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// 3. Library engine (singleton, construct once)
	engine := dlcf.NewEngine(
		dlcf.WithDB(db),
		dlcf.WithRDB(rdb),
		dlcf.WithTablePrefix("lib_"),
		dlcf.WithUploadDir(cfg.Upload.Dir),
		dlcf.WithAudit(service.AuditConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		}),
		dlcf.WithSMTP(service.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}),
	)
	defer engine.Close()

	// one-time cleanup of legacy absolute upload paths
	if err := engine.MigrateStoredPathsToFilenames(); err != nil {
		log.Println("path migration:", err)
	}

	// 4. Gin routes
	r := gin.Default()

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	dlcf.RegisterSwagger(r, "/swagger/*any")

	auth := engine.GinAuthMiddleware(nil)

	// 5. WebSocket entry
	// Connect with: ws://localhost:8080/ws?token=YOUR_TOKEN
	r.GET("/ws", auth, func(c *gin.Context) {
		uidAny, _ := c.Get("user_id")
		engine.ServeWS(c.Writer, c.Request, uidAny.(uint64))
	})

	// 6. Public endpoints
	pub := r.Group("/api/v1")
	{
		pub.POST("/user/register", engine.GinHandleUserRegister)
		pub.POST("/user/login", engine.GinHandleUserLogin)
		pub.GET("/content/list", engine.GinHandleListContent)
		pub.GET("/content/search", engine.GinHandleSearchContent)
		pub.GET("/content/categories", engine.GinHandleListCategories)
	}

	// live endpoints keep their own top-level prefix and plain JSON bodies
	r.GET("/live/now", engine.GinHandleLiveNow)
	live := r.Group("/live", auth)
	{
		live.POST("/start", engine.GinHandleStartLive)
		live.POST("/upload/:id", engine.GinHandleUploadRecording)
		live.POST("/end/:id", engine.GinHandleEndLive)
		live.POST("/save/:id", engine.GinHandleSaveLive)
	}

	// 7. Authenticated endpoints
	api := r.Group("/api/v1", auth)

	userAPI := api.Group("/user")
	{
		userAPI.POST("/logout", engine.GinHandleUserLogout)
		userAPI.GET("/info", engine.GinHandleGetUserInfo)
		userAPI.POST("/update", engine.GinHandleUpdateUserInfo)
		userAPI.POST("/password", engine.GinHandleUpdateUserPassword)
		userAPI.GET("/history", engine.GinHandleUserHistory)
	}

	adminAPI := api.Group("/admin")
	{
		adminAPI.GET("/users", engine.GinHandleListUsers)
		adminAPI.GET("/stats", engine.GinHandleContentStats)
		adminAPI.GET("/activity", engine.GinHandleRecentActivity)
		adminAPI.POST("/user/role", engine.GinHandleSetSiteRole)
		adminAPI.POST("/user/active", engine.GinHandleSetUserActive)
		adminAPI.POST("/category", engine.GinHandleCreateCategory)
	}

	contentAPI := api.Group("/content")
	{
		contentAPI.POST("/upload", engine.GinHandleUploadContent)
		contentAPI.GET("/:id", engine.GinHandleGetContent)
		contentAPI.GET("/:id/view", engine.GinHandleViewContent)
		contentAPI.GET("/:id/download", engine.GinHandleDownloadContent)
		contentAPI.POST("/:id/visibility", engine.GinHandleToggleContentVisibility)
	}

	communityAPI := api.Group("/community")
	{
		communityAPI.POST("/create", engine.GinHandleCreateCommunity)
		communityAPI.GET("/list", engine.GinHandleListCommunities)
		communityAPI.GET("/mine", engine.GinHandleMyCommunities)
		communityAPI.POST("/:id/join", engine.GinHandleJoinCommunity)
		communityAPI.POST("/:id/leave", engine.GinHandleLeaveCommunity)
		communityAPI.GET("/:id/feed", engine.GinHandleCommunityFeed)
		communityAPI.POST("/:id/post", engine.GinHandleCreatePost)
		communityAPI.POST("/post/:post_id/comment", engine.GinHandleAddComment)
		communityAPI.POST("/post/:post_id/pin", engine.GinHandleTogglePin)
		communityAPI.POST("/post/:post_id/delete", engine.GinHandleDeletePost)
		communityAPI.POST("/:id/mute", engine.GinHandleMuteMember)
		communityAPI.POST("/:id/role", engine.GinHandleSetMemberRole)
		communityAPI.POST("/:id/remove", engine.GinHandleRemoveMember)
		communityAPI.POST("/:id/members", engine.GinHandleManageMembers)
		communityAPI.GET("/:id/chat", engine.GinHandleChatHistory)
	}

	notifyAPI := api.Group("/notification")
	{
		notifyAPI.GET("/list", engine.GinHandleListNotifications)
		notifyAPI.POST("/:id/read", engine.GinHandleMarkNotificationRead)
		notifyAPI.POST("/broadcast", engine.GinHandleBroadcastNotification)
	}

	// 8. Serve
	log.Println("e-Library server listening on", cfg.HTTP.Addr)
	log.Println("Swagger UI: http://localhost:8080/swagger/index.html")
	if err := r.Run(cfg.HTTP.Addr); err != nil {
		log.Fatal("server:", err)
	}
}
