package store

import (
	"context"
	"errors"
	"time"

	"draftdesk/internal/models"
	"draftdesk/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQL stores keys as rows of the kv_entries table through GORM.
type SQL struct {
	db     *gorm.DB
	driver string
}

// NewSQL wraps a GORM handle whose schema already contains kv_entries.
func NewSQL(db *gorm.DB) *SQL {
	return &SQL{db: db, driver: db.Dialector.Name()}
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var entry models.KVEntry
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		observability.StoreErrors.WithLabelValues(s.driver, "get").Inc()
		return nil, err
	}
	return []byte(entry.Value), nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	entry := models.KVEntry{Key: key, Value: string(value), UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		observability.StoreErrors.WithLabelValues(s.driver, "set").Inc()
		return err
	}
	return nil
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&models.KVEntry{}).Error; err != nil {
		observability.StoreErrors.WithLabelValues(s.driver, "delete").Inc()
		return err
	}
	return nil
}

func (s *SQL) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
