package service

import (
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/IsraelDcoder/Dlcf-library/models"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"
)

// NotificationService delivers in-app notices, optionally mirrored to
// email. Sending email is best-effort; the DB row is the source of truth.
type NotificationService struct {
	*Service
	mailer *Mailer
}

func NewNotificationService(s *Service, mailer *Mailer) *NotificationService {
	return &NotificationService{Service: s, mailer: mailer}
}

// Notify creates a notice for one user and emails them when a mailer is
// configured.
func (s *NotificationService) Notify(recipientID uint64, title, message string) (*models.Notification, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	now := time.Now()
	n := &models.Notification{
		Title:       title,
		Message:     message,
		RecipientID: &recipientID,
		SentAt:      &now,
	}
	if err := s.DB.Create(n).Error; err != nil {
		return nil, err
	}

	if s.mailer != nil {
		var recipient models.User
		if err := s.DB.Select("email", "name").First(&recipient, recipientID).Error; err == nil {
			go func() {
				if err := s.mailer.Send(recipient.Email, title, message); err != nil {
					log.Printf("notification: email to %s: %v", recipient.Email, err)
				}
			}()
		}
	}
	return n, nil
}

// Broadcast creates a global notice visible to every user. Site admin only.
func (s *NotificationService) Broadcast(actorID uint64, title, message string) (*models.Notification, error) {
	var actor models.User
	if err := s.DB.First(&actor, actorID).Error; err != nil || !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: admin only", ErrPermissionDenied)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	now := time.Now()
	n := &models.Notification{
		Title:    title,
		Message:  message,
		IsGlobal: true,
		SentAt:   &now,
	}
	if err := s.DB.Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// List returns a user's notices plus global ones, newest first.
func (s *NotificationService) List(userID uint64, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var notices []models.Notification
	err := s.DB.Where("recipient_id = ? OR is_global = ?", userID, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&notices).Error
	return notices, err
}

// MarkRead flags a notice read. Only the recipient may do so; global
// notices have no per-user read state here.
func (s *NotificationService) MarkRead(userID, notificationID uint64) error {
	var n models.Notification
	err := s.DB.First(&n, notificationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: notification", ErrNotFound)
	}
	if err != nil {
		return err
	}
	if n.RecipientID == nil || *n.RecipientID != userID {
		return fmt.Errorf("%w: not your notification", ErrPermissionDenied)
	}
	return s.DB.Model(&models.Notification{}).Where("id = ?", notificationID).
		Update("is_read", true).Error
}

// Mailer sends plain SMTP mail.
type Mailer struct {
	cfg SMTPConfig
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func NewMailer(cfg SMTPConfig) *Mailer {
	if cfg.Host == "" {
		return nil
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	d.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	return d.DialAndSend(msg)
}
