package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IsraelDcoder/Dlcf-library/cons"
	"github.com/IsraelDcoder/Dlcf-library/models"
	"gorm.io/gorm"
)

// ModerationService enforces the community role ordering for feed and
// member actions. Every gate resolves through the membership directory;
// each successful mutation is followed (never preceded) by a room event.
type ModerationService struct {
	*Service
	members *MembershipService
}

func NewModerationService(s *Service, members *MembershipService) *ModerationService {
	return &ModerationService{Service: s, members: members}
}

// CreatePost inserts a feed post. Any member may post.
func (s *ModerationService) CreatePost(communityID, authorID uint64, title, body string) (*models.Post, error) {
	if err := s.members.RequireMember(authorID, communityID); err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: post body is required", ErrValidation)
	}

	post := &models.Post{
		CommunityID: communityID,
		AuthorID:    authorID,
		Title:       strings.TrimSpace(title),
		Body:        body,
	}
	if err := s.DB.Create(post).Error; err != nil {
		return nil, err
	}

	s.publishRoom(communityID, cons.EventPostCreated, map[string]any{
		"post_id": post.ID,
		"title":   post.Title,
		"body":    post.Body,
	})
	return post, nil
}

// AddComment inserts a comment under a post. Membership is checked against
// the post's community, not the caller-supplied one.
func (s *ModerationService) AddComment(postID, authorID uint64, body string) (*models.Comment, error) {
	post, err := s.getPost(postID)
	if err != nil {
		return nil, err
	}
	if err := s.members.RequireMember(authorID, post.CommunityID); err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: comment body is required", ErrValidation)
	}

	comment := &models.Comment{PostID: post.ID, AuthorID: authorID, Body: body}
	if err := s.DB.Create(comment).Error; err != nil {
		return nil, err
	}

	authorName := s.userName(authorID)
	s.publishRoom(post.CommunityID, cons.EventCommentAdded, map[string]any{
		"post_id":    post.ID,
		"comment_id": comment.ID,
		"body":       comment.Body,
		"author":     authorName,
	})
	return comment, nil
}

// TogglePin flips a post's pin flag. Teacher gate.
func (s *ModerationService) TogglePin(postID, actorID uint64) (*models.Post, error) {
	post, err := s.getPost(postID)
	if err != nil {
		return nil, err
	}
	if err := s.members.RequireRole(actorID, post.CommunityID, models.RoleTeacher); err != nil {
		return nil, err
	}

	post.IsPinned = !post.IsPinned
	if err := s.DB.Model(&models.Post{}).Where("id = ?", post.ID).
		Update("is_pinned", post.IsPinned).Error; err != nil {
		return nil, err
	}

	s.publishRoom(post.CommunityID, cons.EventPostPinned, map[string]any{
		"post_id":   post.ID,
		"is_pinned": post.IsPinned,
	})
	return post, nil
}

// DeletePost soft-deletes a post: it drops out of the feed but the row and
// its comments stay addressable. Teacher gate.
func (s *ModerationService) DeletePost(postID, actorID uint64) error {
	post, err := s.getPost(postID)
	if err != nil {
		return err
	}
	if err := s.members.RequireRole(actorID, post.CommunityID, models.RoleTeacher); err != nil {
		return err
	}

	if err := s.DB.Model(&models.Post{}).Where("id = ?", post.ID).
		Update("is_deleted", true).Error; err != nil {
		return err
	}

	s.publishRoom(post.CommunityID, cons.EventPostDeleted, map[string]any{
		"post_id": post.ID,
	})
	return nil
}

// MuteMember mutes (seconds > 0) or unmutes (seconds <= 0) a member's chat
// privileges. Teacher gate; the mute itself lives in the mute store, the
// audit record in the activity log. Returns the expiry when muting.
func (s *ModerationService) MuteMember(ctx context.Context, communityID, actorID, targetID uint64, seconds int) (*time.Time, error) {
	if err := s.members.RequireRole(actorID, communityID, models.RoleTeacher); err != nil {
		return nil, err
	}
	if _, ok, err := s.members.GetRole(targetID, communityID); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("%w: member", ErrNotFound)
	}

	if err := s.Mutes.SetMute(ctx, communityID, targetID, seconds); err != nil {
		return nil, err
	}

	var until *time.Time
	if seconds > 0 {
		t := time.Now().Add(time.Duration(seconds) * time.Second)
		until = &t
		s.publishRoom(communityID, cons.EventUserMuted, map[string]any{
			"target": targetID,
			"until":  t.UTC().Format(time.RFC3339),
		})
	} else {
		s.publishRoom(communityID, cons.EventUserUnmuted, map[string]any{
			"target": targetID,
		})
	}

	if s.Activity != nil {
		action := "mute"
		details := fmt.Sprintf("Muted user %d for %d seconds in community %d", targetID, seconds, communityID)
		if seconds <= 0 {
			action = "unmute"
			details = fmt.Sprintf("Unmuted user %d in community %d", targetID, communityID)
		}
		s.Activity.Log(actorID, nil, action, details, "", map[string]any{
			"community_id": communityID,
			"target_id":    targetID,
			"seconds":      seconds,
		})
	}
	return until, nil
}

// SetRole changes a member's community role. Admin gate, no broadcast.
func (s *ModerationService) SetRole(communityID, actorID, targetID uint64, role string) error {
	if err := s.members.RequireRole(actorID, communityID, models.RoleAdmin); err != nil {
		return err
	}
	if _, err := models.ParseRole(role); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if _, ok, err := s.members.GetRole(targetID, communityID); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("%w: member", ErrNotFound)
	}
	return s.members.Upsert(targetID, communityID, role)
}

// RemoveMember deletes a membership. Admin gate.
func (s *ModerationService) RemoveMember(communityID, actorID, targetID uint64) error {
	if err := s.members.RequireRole(actorID, communityID, models.RoleAdmin); err != nil {
		return err
	}
	if err := s.members.Remove(targetID, communityID); err != nil {
		return err
	}

	s.publishRoom(communityID, cons.EventMemberRemoved, map[string]any{
		"user_id": targetID,
	})
	return nil
}

// FeedMember is one row of the member list shown alongside the feed.
type FeedMember struct {
	UserID     uint64      `json:"user_id"`
	Name       string      `json:"name"`
	Role       models.Role `json:"role"`
	MutedUntil *string     `json:"muted_until"`
}

// Feed returns a community's visible posts (pinned first, then newest, soft
// deleted excluded) with comments preloaded, plus the member list with live
// mute state. Member gate.
func (s *ModerationService) Feed(ctx context.Context, communityID, actorID uint64) ([]models.Post, []FeedMember, error) {
	if err := s.members.RequireMember(actorID, communityID); err != nil {
		return nil, nil, err
	}

	var posts []models.Post
	err := s.DB.Where("community_id = ? AND is_deleted = ?", communityID, false).
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Preload("Author")
		}).
		Order("is_pinned DESC, created_at DESC").
		Limit(50).
		Find(&posts).Error
	if err != nil {
		return nil, nil, err
	}

	memberships, err := s.members.ListMembers(communityID)
	if err != nil {
		return nil, nil, err
	}
	members := make([]FeedMember, 0, len(memberships))
	for _, m := range memberships {
		fm := FeedMember{UserID: m.UserID, Name: m.User.Name, Role: m.Role}
		if muted, until, err := s.Mutes.IsMuted(ctx, communityID, m.UserID); err == nil && muted && until != nil {
			iso := until.UTC().Format(time.RFC3339)
			fm.MutedUntil = &iso
		}
		members = append(members, fm)
	}
	return posts, members, nil
}

func (s *ModerationService) getPost(postID uint64) (*models.Post, error) {
	var post models.Post
	err := s.DB.First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: post", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *ModerationService) userName(userID uint64) string {
	var user models.User
	if err := s.DB.Select("name").First(&user, userID).Error; err != nil {
		return ""
	}
	return user.Name
}
