package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	prefix = "lib_"
)

// User is a site account. Role here is the site-wide role; community
// roles live on Membership.
type User struct {
	ID           uint64 `gorm:"primarykey"`
	Name         string `gorm:"size:100;not null"`                // display name
	Email        string `gorm:"size:120;uniqueIndex;not null"`    // login identity
	PasswordHash string `gorm:"size:255;not null"`                // bcrypt hash
	Role         Role   `gorm:"type:varchar(20);default:student"` // site role: student/teacher/admin
	Bio          string `gorm:"type:text"`
	ProfilePhoto string `gorm:"size:255"`
	IsActive     bool   `gorm:"default:true"`
	CreatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`

	Contents    []Content     `gorm:"foreignKey:UploadedBy"`
	Activities  []ActivityLog `gorm:"foreignKey:UserID"`
	Memberships []Membership  `gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return prefix + "user"
}

// IsAdmin reports whether the user holds the site admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsTeacher reports whether the user holds the site teacher role.
func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

// CanUpload reports whether the user may publish library content.
func (u *User) CanUpload() bool {
	return u.Role == RoleTeacher || u.Role == RoleAdmin
}

// Category groups library content for browsing.
type Category struct {
	ID          uint64 `gorm:"primarykey"`
	Name        string `gorm:"size:100;uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time

	Contents []Content `gorm:"foreignKey:CategoryID"`
}

func (Category) TableName() string {
	return prefix + "category"
}

// Tag is shared between content and live sessions through separate
// association tables.
type Tag struct {
	ID   uint64 `gorm:"primarykey"`
	Name string `gorm:"size:50;uniqueIndex;not null"`
}

func (Tag) TableName() string {
	return prefix + "tag"
}

// Content types. "live" marks an archived live-session recording.
const (
	ContentTypePDF   = "pdf"
	ContentTypeEbook = "ebook"
	ContentTypeAudio = "audio"
	ContentTypeVideo = "video"
	ContentTypeLive  = "live"
)

// ValidContentType reports whether t is one of the known content types.
func ValidContentType(t string) bool {
	switch t {
	case ContentTypePDF, ContentTypeEbook, ContentTypeAudio, ContentTypeVideo, ContentTypeLive:
		return true
	}
	return false
}

// Content is a durable, browsable library item.
type Content struct {
	ID            uint64  `gorm:"primarykey"`
	Title         string  `gorm:"size:200;not null"`
	Author        string  `gorm:"size:100"`
	Description   string  `gorm:"type:text"`
	ContentType   string  `gorm:"size:20;not null;index"` // pdf/ebook/audio/video/live
	FilePath      string  `gorm:"size:500;not null"`      // filename only; storage dir derives from ContentType
	FileSize      int64   `gorm:"default:0"`
	CategoryID    *uint64 `gorm:"index"`
	UploadedBy    uint64  `gorm:"index;not null"`
	IsPublic      bool    `gorm:"default:true"`
	ViewCount     int64   `gorm:"default:0"`
	DownloadCount int64   `gorm:"default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Category *Category `gorm:"foreignKey:CategoryID"`
	Uploader User      `gorm:"foreignKey:UploadedBy"`
	Tags     []Tag     `gorm:"many2many:lib_content_tags"`
}

func (Content) TableName() string {
	return prefix + "content"
}

// ActivityLog is the audit trail. Meta carries structured event context so the
// Kafka mirror and the DB row share one payload.
type ActivityLog struct {
	ID        uint64  `gorm:"primarykey"`
	UserID    uint64  `gorm:"index;not null"`
	ContentID *uint64 `gorm:"index"`
	Action    string  `gorm:"size:50;not null"` // login/upload/view/download/mute/unmute/...
	Details   string  `gorm:"type:text"`
	IPAddress string  `gorm:"size:50"`
	Meta      datatypes.JSON
	CreatedAt time.Time

	User User `gorm:"foreignKey:UserID"`
}

func (ActivityLog) TableName() string {
	return prefix + "activity_log"
}

// Notification is an in-app notice; IsGlobal with a nil recipient
// addresses every user.
type Notification struct {
	ID          uint64  `gorm:"primarykey"`
	Title       string  `gorm:"size:200;not null"`
	Message     string  `gorm:"type:text;not null"`
	RecipientID *uint64 `gorm:"index"`
	IsGlobal    bool    `gorm:"default:false"`
	IsRead      bool    `gorm:"default:false"`
	CreatedAt   time.Time
	SentAt      *time.Time

	Recipient *User `gorm:"foreignKey:RecipientID"`
}

func (Notification) TableName() string {
	return prefix + "notification"
}

// Community is a tenant: members, posts, chat and live sessions hang off it.
type Community struct {
	ID          uint64 `gorm:"primarykey"`
	Name        string `gorm:"size:200;not null"`
	Slug        string `gorm:"size:200;uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	Photo       string `gorm:"size:255"`
	IsPrivate   bool   `gorm:"default:true"`
	CreatedAt   time.Time

	Memberships []Membership `gorm:"foreignKey:CommunityID"`
	Posts       []Post       `gorm:"foreignKey:CommunityID"`
}

func (Community) TableName() string {
	return prefix + "community"
}

// Membership binds (user, community) to a role. Unique per pair; the single
// source of truth for every community permission gate.
type Membership struct {
	ID          uint64 `gorm:"primarykey"`
	UserID      uint64 `gorm:"index:idx_user_community,unique;not null"`
	CommunityID uint64 `gorm:"index:idx_user_community,unique;not null"`
	Role        Role   `gorm:"type:varchar(20);default:student"` // student/teacher/admin within the community
	JoinedAt    time.Time

	User      User      `gorm:"foreignKey:UserID"`
	Community Community `gorm:"foreignKey:CommunityID"`
}

func (Membership) TableName() string {
	return prefix + "membership"
}

// Post is a community feed entry. IsDeleted is a soft flag: deleted posts drop out of the
// feed but their comments stay addressable.
type Post struct {
	ID          uint64 `gorm:"primarykey"`
	CommunityID uint64 `gorm:"index;not null"`
	AuthorID    uint64 `gorm:"index;not null"`
	Title       string `gorm:"size:300"`
	Body        string `gorm:"type:text;not null"`
	IsPinned    bool   `gorm:"default:false"`
	IsDeleted   bool   `gorm:"default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Author   User      `gorm:"foreignKey:AuthorID"`
	Comments []Comment `gorm:"foreignKey:PostID"`
}

func (Post) TableName() string {
	return prefix + "post"
}

// Comment belongs to exactly one post.
type Comment struct {
	ID        uint64 `gorm:"primarykey"`
	PostID    uint64 `gorm:"index;not null"`
	AuthorID  uint64 `gorm:"index;not null"`
	Body      string `gorm:"type:text;not null"`
	CreatedAt time.Time

	Author User `gorm:"foreignKey:AuthorID"`
}

func (Comment) TableName() string {
	return prefix + "comment"
}

// ChatMessage is one community chat line. Append-only; IsModerated is the only field
// ever mutated after insert.
type ChatMessage struct {
	ID          uint64 `gorm:"primarykey"`
	CommunityID uint64 `gorm:"index;not null"`
	AuthorID    uint64 `gorm:"index;not null"`
	Message     string `gorm:"type:text;not null"`
	IsModerated bool   `gorm:"default:false"`
	CreatedAt   time.Time

	Author User `gorm:"foreignKey:AuthorID"`
}

func (ChatMessage) TableName() string {
	return prefix + "chat_message"
}

// LiveSession is a hosted real-time broadcast.
// Invariants: EndedAt set <=> IsLive false; IsSaved implies a Content row
// referencing the recording filename exists.
type LiveSession struct {
	ID            uint64  `gorm:"primarykey"`
	Title         string  `gorm:"size:300;not null"`
	HostID        uint64  `gorm:"index;not null"`
	CommunityID   *uint64 `gorm:"index"`
	IsLive        bool    `gorm:"default:true"`
	StartedAt     time.Time
	EndedAt       *time.Time
	RecordingPath string `gorm:"size:500"` // filename inside the live uploads folder
	RecordingSize int64  `gorm:"default:0"`
	Description   string `gorm:"type:text"`
	StreamKey     string `gorm:"size:255"`
	Thumbnail     string `gorm:"size:255"`
	IsSaved       bool   `gorm:"default:false"`
	CreatedAt     time.Time

	Host      User       `gorm:"foreignKey:HostID"`
	Community *Community `gorm:"foreignKey:CommunityID"`
	Tags      []Tag      `gorm:"many2many:lib_live_session_tags"`
}

func (LiveSession) TableName() string {
	return prefix + "live_session"
}
