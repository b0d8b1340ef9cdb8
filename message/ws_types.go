package message

// Client-to-server socket request types.
const (
	WsTypeJoin    = "join"
	WsTypeLeave   = "leave"
	WsTypeMessage = "message"
	WsTypeMute    = "mute"
)

// Req is the envelope every client frame carries. Type selects the handler;
// the remaining fields are read per type.
type Req struct {
	Type         string `json:"type"`                     // join/leave/message/mute
	CommunityID  uint64 `json:"community_id"`             // target room
	Message      string `json:"message,omitempty"`        // message: text body
	TargetUserID uint64 `json:"target_user_id,omitempty"` // mute: who to mute
	Seconds      int    `json:"seconds,omitempty"`        // mute: duration, <=0 unmutes
}
