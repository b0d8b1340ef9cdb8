package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IsraelDcoder/Dlcf-library/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLen = 6

// UserService handles registration, login and account maintenance.
type UserService struct {
	*Service
	tokenService  *TokenService
	loginTokenTTL time.Duration
}

func NewUserService(s *Service) *UserService {
	return &UserService{
		Service:       s,
		tokenService:  NewTokenService(s.RDB),
		loginTokenTTL: 7 * 24 * time.Hour,
	}
}

type UserDTO struct {
	ID           uint64      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Role         models.Role `json:"role"`
	Bio          string      `json:"bio"`
	ProfilePhoto string      `json:"profile_photo"`
	IsActive     bool        `json:"is_active"`
	CreatedAt    time.Time   `json:"created_at"`
}

type RegisterReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResp struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type UpdateUserReq struct {
	Name         *string `json:"name"`
	Bio          *string `json:"bio"`
	ProfilePhoto *string `json:"profile_photo"`
}

func toUserDTO(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		Bio:          u.Bio,
		ProfilePhoto: u.ProfilePhoto,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Register creates an account with the student role.
func (s *UserService) Register(req RegisterReq) (*UserDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	email := normalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if len(req.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}

	var count int64
	if err := s.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: email already registered", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleStudent,
		IsActive:     true,
	}
	if err := s.DB.Create(user).Error; err != nil {
		return nil, err
	}

	if s.Activity != nil {
		s.Activity.Log(user.ID, nil, "register", "Account created", "", nil)
	}
	return toUserDTO(user), nil
}

// Login verifies credentials and issues a Redis-backed session token.
// Deactivated accounts are rejected with the same message as a bad
// password.
func (s *UserService) Login(ctx context.Context, req LoginReq) (*LoginResp, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	var user models.User
	err := s.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: invalid email or password", ErrValidation)
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrValidation)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: invalid email or password", ErrValidation)
	}

	resp := &LoginResp{User: *toUserDTO(&user)}

	if s.RDB == nil {
		return resp, nil
	}
	token, err := s.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}
	if err := s.tokenService.StoreToken(ctx, token, user.ID, s.loginTokenTTL); err != nil {
		return nil, err
	}
	resp.Token = token

	if s.Activity != nil {
		s.Activity.Log(user.ID, nil, "login", "", "", nil)
	}
	return resp, nil
}

// GetUser returns a sanitized profile.
func (s *UserService) GetUser(userID uint64) (*UserDTO, error) {
	var user models.User
	err := s.DB.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return toUserDTO(&user), nil
}

// UpdateUser applies the non-nil profile fields.
func (s *UserService) UpdateUser(userID uint64, req UpdateUserReq) (*UserDTO, error) {
	updates := make(map[string]any)
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		updates["name"] = name
	}
	if req.Bio != nil {
		updates["bio"] = strings.TrimSpace(*req.Bio)
	}
	if req.ProfilePhoto != nil {
		updates["profile_photo"] = strings.TrimSpace(*req.ProfilePhoto)
	}
	if len(updates) > 0 {
		if err := s.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetUser(userID)
}

// UpdatePassword rehashes and stores a new password.
func (s *UserService) UpdatePassword(userID uint64, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("password_hash", string(hash)).Error
}

// SetSiteRole changes a user's site-wide role. Admin gate.
func (s *UserService) SetSiteRole(actorID, targetID uint64, role string) error {
	var actor models.User
	if err := s.DB.First(&actor, actorID).Error; err != nil || !actor.IsAdmin() {
		return fmt.Errorf("%w: admin only", ErrPermissionDenied)
	}
	parsed, err := models.ParseRole(role)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	res := s.DB.Model(&models.User{}).Where("id = ?", targetID).Update("role", parsed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: user", ErrNotFound)
	}
	return nil
}

// SetActive activates or deactivates an account and, on deactivation,
// revokes every session. Admin gate.
func (s *UserService) SetActive(ctx context.Context, actorID, targetID uint64, active bool) error {
	var actor models.User
	if err := s.DB.First(&actor, actorID).Error; err != nil || !actor.IsAdmin() {
		return fmt.Errorf("%w: admin only", ErrPermissionDenied)
	}
	res := s.DB.Model(&models.User{}).Where("id = ?", targetID).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: user", ErrNotFound)
	}
	if !active && s.RDB != nil {
		return s.tokenService.RevokeAllTokensByUser(ctx, targetID)
	}
	return nil
}

// ListUsers pages through accounts, admin dashboard use.
func (s *UserService) ListUsers(page, perPage int) ([]UserDTO, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	var total int64
	if err := s.DB.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := s.DB.Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	out := make([]UserDTO, 0, len(users))
	for i := range users {
		out = append(out, *toUserDTO(&users[i]))
	}
	return out, total, nil
}
