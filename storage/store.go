// Package storage owns the durable patient intake records. The store is an
// explicitly constructed object holding its own database handle; nothing in
// this package keeps process-wide state.
package storage

import (
	"context"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/carebridge-project/carebridge-multi-agent/types"
)

// PatientRecord is one intake record. Created once per intake interview,
// never updated or deleted, read many times.
type PatientRecord struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Age       int       `gorm:"not null" json:"age"`
	Weight    *float64  `json:"weight"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the table name stable across tools reading the same file.
func (PatientRecord) TableName() string { return "patient_details" }

// View converts the record to its wire representation.
func (r PatientRecord) View() types.RecordView {
	return types.RecordView{
		ID:        r.ID,
		Name:      r.Name,
		Age:       r.Age,
		Weight:    r.Weight,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}

// RecordStore provides append-only access to patient records.
type RecordStore struct {
	db  *gorm.DB
	log *zap.Logger
}

// Open opens (creating if needed) the SQLite database at path and runs
// migrations. The weight column is added automatically on older databases.
func Open(path string, log *zap.Logger) (*RecordStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, &types.PersistenceError{Op: "open", Err: err}
	}
	return NewRecordStore(db, log)
}

// NewRecordStore wraps an existing database handle and migrates the schema.
func NewRecordStore(db *gorm.DB, log *zap.Logger) (*RecordStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := db.AutoMigrate(&PatientRecord{}); err != nil {
		return nil, &types.PersistenceError{Op: "migrate", Err: err}
	}
	log.Info("record store ready")
	return &RecordStore{db: db, log: log}, nil
}

// Insert persists a new patient record atomically. On failure no partial
// record is visible. Age range policy (0-150) is enforced at the intake
// boundary, not here; the store only rejects structurally invalid rows.
func (s *RecordStore) Insert(ctx context.Context, name string, age int, weight *float64) (*PatientRecord, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &types.PersistenceError{Op: "insert", Err: &types.ValidationError{Field: "name", Reason: "empty"}}
	}
	if age < 0 {
		return nil, &types.PersistenceError{Op: "insert", Err: &types.ValidationError{Field: "age", Reason: "negative"}}
	}

	rec := PatientRecord{Name: name, Age: age, Weight: weight}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		s.log.Error("record insert failed", zap.String("name", name), zap.Error(err))
		return nil, &types.PersistenceError{Op: "insert", Err: err}
	}

	s.log.Info("patient record inserted",
		zap.Uint("id", rec.ID),
		zap.String("name", rec.Name),
		zap.Int("age", rec.Age),
	)
	return &rec, nil
}

// ListAll returns every record ordered by identity ascending.
func (s *RecordStore) ListAll(ctx context.Context) ([]PatientRecord, error) {
	var records []PatientRecord
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&records).Error; err != nil {
		s.log.Error("record list failed", zap.Error(err))
		return nil, &types.PersistenceError{Op: "list", Err: err}
	}
	return records, nil
}
