package cons

// Room-scoped socket events (community rooms).
const (
	EventUserJoined    = "user_joined"    // member subscribed to the room
	EventUserLeft      = "user_left"      // member unsubscribed
	EventMessage       = "message"        // persisted chat message
	EventUserMuted     = "user_muted"     // member muted by a moderator
	EventUserUnmuted   = "user_unmuted"   // mute lifted
	EventPostCreated   = "post_created"   // new feed post
	EventCommentAdded  = "comment_added"  // new comment on a post
	EventPostPinned    = "post_pinned"    // pin flag toggled
	EventPostDeleted   = "post_deleted"   // post soft-deleted
	EventMemberRemoved = "member_removed" // membership deleted
)

// Sender-only socket events.
const (
	EventError = "error" // gate failure, delivered privately
	EventMuted = "muted" // sender is muted, delivered privately
)

// Global live-session lifecycle events (not room-scoped).
const (
	EventLiveStarted           = "live:started"
	EventLiveEnded             = "live:ended"
	EventLiveRecordingUploaded = "live:recording_uploaded"
)
