package session

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// sessionEntry is one key/value pair belonging to a session.
type sessionEntry struct {
	SessionID string `gorm:"primaryKey"`
	Key       string `gorm:"primaryKey;column:entry_key"`
	Value     string `gorm:"column:entry_value"`
}

func (sessionEntry) TableName() string { return "session_state" }

// SQLBackend persists session state in SQLite so a coordinator restart
// does not lose in-flight intake answers.
type SQLBackend struct {
	db *gorm.DB
}

// NewSQLBackend opens the database at path and migrates the state table.
func NewSQLBackend(path string) (*SQLBackend, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return NewSQLBackendFromDB(db)
}

// NewSQLBackendFromDB wraps an existing handle.
func NewSQLBackendFromDB(db *gorm.DB) (*SQLBackend, error) {
	if err := db.AutoMigrate(&sessionEntry{}); err != nil {
		return nil, err
	}
	return &SQLBackend{db: db}, nil
}

func (b *SQLBackend) Name() string { return "sqlite" }

func (b *SQLBackend) Get(sessionID string) (map[string]string, error) {
	var entries []sessionEntry
	if err := b.db.Where("session_id = ?", sessionID).Find(&entries).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.Key] = e.Value
	}
	return out, nil
}

func (b *SQLBackend) Set(sessionID string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	entries := make([]sessionEntry, 0, len(values))
	for k, v := range values {
		entries = append(entries, sessionEntry{SessionID: sessionID, Key: k, Value: v})
	}
	return b.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"entry_value"}),
	}).Create(&entries).Error
}

func (b *SQLBackend) Clear(sessionID string) error {
	return b.db.Where("session_id = ?", sessionID).Delete(&sessionEntry{}).Error
}
