package facts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStore persists facts in the relational database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&Fact{}); err != nil {
		return nil, fmt.Errorf("migrate facts: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Append(ctx context.Context, fact Fact) error {
	if fact.ID == "" {
		fact.ID = uuid.NewString()
	}
	if fact.CreatedAt.IsZero() {
		fact.CreatedAt = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(&fact).Error; err != nil {
		return fmt.Errorf("append fact: %w", err)
	}
	return nil
}

func (s *GormStore) Enumerate(ctx context.Context, interlocutor string) ([]Fact, error) {
	var list []Fact
	err := s.db.WithContext(ctx).
		Where("interlocutor = ?", interlocutor).
		Order("created_at asc").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("enumerate facts: %w", err)
	}
	return list, nil
}
