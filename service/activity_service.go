package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/IsraelDcoder/Dlcf-library/models"
	"github.com/segmentio/kafka-go"
	"gorm.io/gorm"
)

// ActivityService records audit rows for user actions. When a Kafka producer
// is attached, each row is mirrored to the audit topic after the DB write;
// the mirror is best-effort and never fails the action being logged.
type ActivityService struct {
	db       *gorm.DB
	producer *AuditProducer
}

func NewActivityService(db *gorm.DB, producer *AuditProducer) *ActivityService {
	return &ActivityService{db: db, producer: producer}
}

// Log writes one activity row. Errors are logged, not returned; an audit
// failure must not roll back the action it describes.
func (s *ActivityService) Log(userID uint64, contentID *uint64, action, details, ip string, meta map[string]any) {
	entry := models.ActivityLog{
		UserID:    userID,
		ContentID: contentID,
		Action:    action,
		Details:   details,
		IPAddress: ip,
	}
	if meta != nil {
		if raw, err := json.Marshal(meta); err == nil {
			entry.Meta = raw
		}
	}
	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("activity: log %s for user %d: %v", action, userID, err)
		return
	}
	if s.producer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.producer.SendActivity(ctx, &entry); err != nil {
			log.Printf("activity: kafka mirror for entry %d: %v", entry.ID, err)
		}
	}
}

// Recent returns the newest activity rows, capped at 100.
func (s *ActivityService) Recent(limit int) ([]models.ActivityLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var entries []models.ActivityLog
	err := s.db.Preload("User").Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

// ForUser returns one user's activity, newest first.
func (s *ActivityService) ForUser(userID uint64, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var entries []models.ActivityLog
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

// AuditProducer publishes activity rows to Kafka keyed by user id, so one
// user's actions stay ordered within a partition.
type AuditProducer struct {
	writer *kafka.Writer
	topic  string
}

type AuditConfig struct {
	Brokers []string
	Topic   string
}

func NewAuditProducer(cfg AuditConfig) *AuditProducer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}
	return &AuditProducer{writer: w, topic: cfg.Topic}
}

func (p *AuditProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func (p *AuditProducer) SendActivity(ctx context.Context, entry *models.ActivityLog) error {
	value, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", entry.UserID)),
		Value: value,
	})
}
