package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/IsraelDcoder/Dlcf-library/models"
	"gorm.io/gorm"
)

// MembershipService is the authoritative (user, community) -> role
// directory. Every community gate resolves through it; no caller may infer
// permission from cached or denormalized role data.
type MembershipService struct {
	*Service
}

func NewMembershipService(s *Service) *MembershipService {
	return &MembershipService{Service: s}
}

// GetRole looks up the member's role. ok is false when no membership row
// exists.
func (s *MembershipService) GetRole(userID, communityID uint64) (role models.Role, ok bool, err error) {
	var m models.Membership
	err = s.DB.Where("user_id = ? AND community_id = ?", userID, communityID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return m.Role, true, nil
}

// Upsert creates or updates a membership. The role string is validated on
// every write path; unrecognized values are rejected.
func (s *MembershipService) Upsert(userID, communityID uint64, role string) error {
	r, err := models.ParseRole(role)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var m models.Membership
	err = s.DB.Where("user_id = ? AND community_id = ?", userID, communityID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		m = models.Membership{
			UserID:      userID,
			CommunityID: communityID,
			Role:        r,
			JoinedAt:    time.Now(),
		}
		return s.DB.Create(&m).Error
	}
	if err != nil {
		return err
	}
	if m.Role == r {
		return nil
	}
	return s.DB.Model(&m).Update("role", r).Error
}

// Remove deletes the membership row. Missing rows report ErrNotFound.
func (s *MembershipService) Remove(userID, communityID uint64) error {
	res := s.DB.Where("user_id = ? AND community_id = ?", userID, communityID).
		Delete(&models.Membership{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: membership", ErrNotFound)
	}
	return nil
}

// RequireMember is the community_member_required gate: any role passes, a
// missing membership fails.
func (s *MembershipService) RequireMember(userID, communityID uint64) error {
	_, ok, err := s.GetRole(userID, communityID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotMember
	}
	return nil
}

// RequireRole is the role_required gate: the actor's membership role must be
// at least min. Absent membership always fails (below student).
func (s *MembershipService) RequireRole(userID, communityID uint64, min models.Role) error {
	role, ok, err := s.GetRole(userID, communityID)
	if err != nil {
		return err
	}
	if !ok || !role.AtLeast(min) {
		return ErrPermissionDenied
	}
	return nil
}

// ListMembers returns a community's memberships with user records attached.
func (s *MembershipService) ListMembers(communityID uint64) ([]models.Membership, error) {
	var members []models.Membership
	err := s.DB.Where("community_id = ?", communityID).
		Preload("User").
		Find(&members).Error
	return members, err
}

// ManageMembers applies a mass membership assignment for a community:
// users in desired are upserted with the given role, current members absent
// from desired are removed. All role strings are validated up front so a
// single bad value rejects the whole batch.
func (s *MembershipService) ManageMembers(communityID uint64, desired map[uint64]string) error {
	roles := make(map[uint64]models.Role, len(desired))
	for userID, roleStr := range desired {
		r, err := models.ParseRole(roleStr)
		if err != nil {
			return fmt.Errorf("%w: user %d: %v", ErrValidation, userID, err)
		}
		roles[userID] = r
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var existing []models.Membership
		if err := tx.Where("community_id = ?", communityID).Find(&existing).Error; err != nil {
			return err
		}
		current := make(map[uint64]models.Membership, len(existing))
		for _, m := range existing {
			current[m.UserID] = m
		}

		now := time.Now()
		for userID, role := range roles {
			if m, ok := current[userID]; ok {
				if m.Role != role {
					if err := tx.Model(&models.Membership{}).Where("id = ?", m.ID).
						Update("role", role).Error; err != nil {
						return err
					}
				}
				continue
			}
			m := models.Membership{UserID: userID, CommunityID: communityID, Role: role, JoinedAt: now}
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
		}

		for userID, m := range current {
			if _, keep := roles[userID]; !keep {
				if err := tx.Delete(&models.Membership{}, m.ID).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
