package models

import "time"

// KVEntry is one key of the SQL-backed key-value store.
type KVEntry struct {
	Key       string    `gorm:"column:entry_key;primaryKey;size:255"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName pins the table name used by the SQL store.
func (KVEntry) TableName() string {
	return "kv_entries"
}
