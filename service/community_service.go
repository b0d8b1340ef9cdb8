package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/IsraelDcoder/Dlcf-library/models"
	"gorm.io/gorm"
)

var slugStripRe = regexp.MustCompile(`[^a-z0-9]+`)

// CommunityService handles community CRUD. Membership and moderation live
// in their own services.
type CommunityService struct {
	*Service
	members *MembershipService
}

func NewCommunityService(s *Service, members *MembershipService) *CommunityService {
	return &CommunityService{Service: s, members: members}
}

// Slugify lowercases and collapses non-alphanumerics to single hyphens.
func Slugify(name string) string {
	slug := slugStripRe.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// Create adds a community and makes the creator its admin. Site teachers
// and admins only.
func (s *CommunityService) Create(creatorID uint64, name, description string, isPrivate bool) (*models.Community, error) {
	var creator models.User
	if err := s.DB.First(&creator, creatorID).Error; err != nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	if !creator.CanUpload() {
		return nil, fmt.Errorf("%w: creating a community requires a teacher account", ErrPermissionDenied)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: community name is required", ErrValidation)
	}

	slug := Slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("%w: name must contain letters or digits", ErrValidation)
	}
	var count int64
	if err := s.DB.Model(&models.Community{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: a community with this name already exists", ErrValidation)
	}

	community := &models.Community{
		Name:        name,
		Slug:        slug,
		Description: description,
		IsPrivate:   isPrivate,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(community).Error; err != nil {
			return err
		}
		return tx.Create(&models.Membership{
			UserID:      creatorID,
			CommunityID: community.ID,
			Role:        models.RoleAdmin,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return community, nil
}

// List returns all communities with member counts.
type CommunitySummary struct {
	models.Community
	MemberCount int64 `json:"member_count"`
}

func (s *CommunityService) List() ([]CommunitySummary, error) {
	var communities []models.Community
	if err := s.DB.Order("name ASC").Find(&communities).Error; err != nil {
		return nil, err
	}
	out := make([]CommunitySummary, 0, len(communities))
	for _, c := range communities {
		var n int64
		err := s.DB.Model(&models.Membership{}).Where("community_id = ?", c.ID).Count(&n).Error
		if err != nil {
			return nil, err
		}
		out = append(out, CommunitySummary{Community: c, MemberCount: n})
	}
	return out, nil
}

// Get loads one community.
func (s *CommunityService) Get(communityID uint64) (*models.Community, error) {
	var community models.Community
	err := s.DB.First(&community, communityID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: community", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &community, nil
}

// Join adds the caller as a student member. Public communities only; a
// private community's roster is managed by its admins.
func (s *CommunityService) Join(userID, communityID uint64) error {
	community, err := s.Get(communityID)
	if err != nil {
		return err
	}
	if community.IsPrivate {
		return fmt.Errorf("%w: this community is invite only", ErrPermissionDenied)
	}
	if _, ok, err := s.members.GetRole(userID, communityID); err != nil {
		return err
	} else if ok {
		return nil
	}
	return s.members.Upsert(userID, communityID, string(models.RoleStudent))
}

// Leave removes the caller's own membership.
func (s *CommunityService) Leave(userID, communityID uint64) error {
	return s.members.Remove(userID, communityID)
}

// ForUser lists the communities a user belongs to, with their role in each.
type MemberCommunity struct {
	models.Community
	Role models.Role `json:"role"`
}

func (s *CommunityService) ForUser(userID uint64) ([]MemberCommunity, error) {
	var memberships []models.Membership
	err := s.DB.Where("user_id = ?", userID).Find(&memberships).Error
	if err != nil {
		return nil, err
	}
	out := make([]MemberCommunity, 0, len(memberships))
	for _, m := range memberships {
		community, err := s.Get(m.CommunityID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, MemberCommunity{Community: *community, Role: m.Role})
	}
	return out, nil
}
