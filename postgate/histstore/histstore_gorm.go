package histstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostHistory struct {
	gorm.Model
	UserID     string    `gorm:"index:idx_posthistory_user_community,unique"`
	Community  string    `gorm:"index:idx_posthistory_user_community,unique"`
	LastPostAt time.Time `gorm:"index"`
}

type GormHistStore struct {
	db *gorm.DB
}

var _ HistStore = (*GormHistStore)(nil)

func NewGormHistStore(db *gorm.DB) (*GormHistStore, error) {
	if err := db.AutoMigrate(&PostHistory{}); err != nil {
		return nil, fmt.Errorf("migrating post history table: %w", err)
	}
	return &GormHistStore{db: db}, nil
}

func (s *GormHistStore) Get(ctx context.Context, userID, community string) (*PostRecord, error) {
	var row PostHistory
	err := s.db.WithContext(ctx).First(&row, "user_id = ? AND community = ?", userID, community).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("post history lookup failed: %w", err)
	}
	return &PostRecord{
		UserID:     row.UserID,
		Community:  row.Community,
		LastPostAt: row.LastPostAt,
	}, nil
}

func (s *GormHistStore) GetRecent(ctx context.Context, userID string, since time.Time) ([]PostRecord, error) {
	var rows []PostHistory
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND last_post_at >= ?", userID, since).
		Order("last_post_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("post history query failed: %w", err)
	}
	out := make([]PostRecord, len(rows))
	for i, row := range rows {
		out[i] = PostRecord{
			UserID:     row.UserID,
			Community:  row.Community,
			LastPostAt: row.LastPostAt,
		}
	}
	return out, nil
}

func (s *GormHistStore) ListUsers(ctx context.Context, since time.Time) ([]string, error) {
	var out []string
	err := s.db.WithContext(ctx).
		Model(&PostHistory{}).
		Distinct("user_id").
		Where("last_post_at >= ?", since).
		Order("user_id").
		Pluck("user_id", &out).Error
	if err != nil {
		return nil, fmt.Errorf("post history user listing failed: %w", err)
	}
	return out, nil
}

func (s *GormHistStore) Touch(ctx context.Context, userID, community string, at time.Time) error {
	row := PostHistory{
		UserID:     userID,
		Community:  community,
		LastPostAt: at,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "community"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_post_at", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("updating post history: %w", err)
	}
	return nil
}
