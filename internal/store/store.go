package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mundox-portal-bff/internal/model"
)

// Store defines the interface for all local database operations.
type Store interface {
	RecordAudit(ctx context.Context, entry *model.AuditEntry) error
	RecordSecurityEvent(ctx context.Context, event *model.SecurityEvent) error
	ListSecurityEvents(ctx context.Context, filter SecurityEventFilter) ([]model.SecurityEvent, error)
	UpsertPushSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeletePushSubscription(ctx context.Context, endpoint string) error
	ListPushSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) RecordAudit(ctx context.Context, entry *model.AuditEntry) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record audit entry for %s %s: %w", entry.Method, entry.Path, err)
	}
	return nil
}

func (s *gormStore) RecordSecurityEvent(ctx context.Context, event *model.SecurityEvent) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to record security event for %s: %w", event.IP, err)
	}
	return nil
}

// ListSecurityEvents returns the newest events first.
func (s *gormStore) ListSecurityEvents(ctx context.Context, filter SecurityEventFilter) ([]model.SecurityEvent, error) {
	q := s.db.WithContext(ctx).Model(&model.SecurityEvent{})
	if filter.IP != "" {
		q = q.Where("ip = ?", filter.IP)
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}

	var events []model.SecurityEvent
	if err := q.Order("at DESC").Order("id DESC").Limit(filter.limit()).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list security events: %w", err)
	}
	return events, nil
}

// UpsertPushSubscription inserts the subscription or refreshes its keys.
func (s *gormStore) UpsertPushSubscription(ctx context.Context, sub *model.PushSubscription) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "user_id"}),
	}).Create(sub).Error
	if err != nil {
		return fmt.Errorf("failed to upsert push subscription: %w", err)
	}
	return nil
}

func (s *gormStore) DeletePushSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{}, "endpoint = ?", endpoint).Error; err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}
	return nil
}

func (s *gormStore) ListPushSubscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list push subscriptions: %w", err)
	}
	return subs, nil
}
