package dlcf_library

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/IsraelDcoder/Dlcf-library/cons"
	"github.com/IsraelDcoder/Dlcf-library/message"
	"github.com/IsraelDcoder/Dlcf-library/service"
)

// bindWsHandlersOnMessage wires the socket protocol. It lives beside the
// WsServer so it can touch Client directly without a service-layer cycle.
//
// Protocol: every inbound frame carries a type (join/leave/message/mute).
// Gate failures answer the sender privately; successful actions broadcast
// to the community room.
func (c *LibraryEngine) bindWsHandlersOnMessage() {
	c.WsServer.onMessage = func(client *Client, msg []byte) {
		if client == nil {
			return
		}
		var req message.Req
		if err := json.Unmarshal(msg, &req); err != nil {
			log.Printf("invalid socket frame: %v", err)
			return
		}
		if req.CommunityID == 0 {
			c.sendWsError(client, "community_id is required")
			return
		}

		switch req.Type {
		case message.WsTypeJoin:
			c.wsJoin(client, req.CommunityID)
		case message.WsTypeLeave:
			c.wsLeave(client, req.CommunityID)
		case message.WsTypeMessage:
			c.wsMessage(client, req)
		case message.WsTypeMute:
			c.wsMute(client, req)
		default:
			c.sendWsError(client, "unknown message type")
		}
	}
}

func (c *LibraryEngine) wsJoin(client *Client, communityID uint64) {
	if err := c.MembershipService.RequireMember(client.UserID, communityID); err != nil {
		c.sendWsError(client, "not a member of this community")
		return
	}
	room := service.RoomName(communityID)
	c.WsServer.JoinRoom(client, room)

	c.publishRoomEvent(room, cons.EventUserJoined, map[string]any{
		"user":    client.Name,
		"user_id": client.UserID,
	})
}

func (c *LibraryEngine) wsLeave(client *Client, communityID uint64) {
	room := service.RoomName(communityID)
	if !c.WsServer.InRoom(client, room) {
		return
	}
	c.WsServer.LeaveRoom(client, room)

	c.publishRoomEvent(room, cons.EventUserLeft, map[string]any{
		"user":    client.Name,
		"user_id": client.UserID,
	})
}

func (c *LibraryEngine) wsMessage(client *Client, req message.Req) {
	ctx := context.Background()
	saved, err := c.ChatService.SaveMessage(ctx, req.CommunityID, client.UserID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMuted):
			payload := map[string]any{"type": cons.EventMuted, "until": nil}
			if _, until, merr := c.ChatService.Mutes.IsMuted(ctx, req.CommunityID, client.UserID); merr == nil && until != nil {
				payload["until"] = until.UTC().Format(time.RFC3339)
			}
			c.sendWsPrivate(client, payload)
		case errors.Is(err, service.ErrNotMember):
			c.sendWsError(client, "not a member of this community")
		default:
			c.sendWsError(client, err.Error())
		}
		return
	}

	c.publishRoomEvent(service.RoomName(req.CommunityID), cons.EventMessage, map[string]any{
		"id":         saved.ID,
		"author":     client.Name,
		"author_id":  client.UserID,
		"message":    saved.Message,
		"created_at": saved.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func (c *LibraryEngine) wsMute(client *Client, req message.Req) {
	if req.TargetUserID == 0 {
		c.sendWsError(client, "target_user_id is required")
		return
	}
	_, err := c.ModerationService.MuteMember(context.Background(), req.CommunityID, client.UserID, req.TargetUserID, req.Seconds)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPermissionDenied):
			c.sendWsError(client, "mute requires the teacher role")
		case errors.Is(err, service.ErrNotFound):
			c.sendWsError(client, "target is not a member")
		default:
			c.sendWsError(client, err.Error())
		}
	}
	// MuteMember broadcasts user_muted/user_unmuted itself
}

// publishRoomEvent wraps payload in the {type, ...} envelope and fans it
// out to the room.
func (c *LibraryEngine) publishRoomEvent(room, event string, payload map[string]any) {
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
	c.WsServer.Publish(room, b)
}

func (c *LibraryEngine) sendWsError(client *Client, msg string) {
	c.sendWsPrivate(client, map[string]any{"type": cons.EventError, "message": msg})
}

// sendWsPrivate answers only the sending connection, not the user's other
// devices and never the room.
func (c *LibraryEngine) sendWsPrivate(client *Client, payload map[string]any) {
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	select {
	case client.send <- b:
	default:
	}
}
