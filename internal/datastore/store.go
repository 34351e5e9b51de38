// Package datastore persists run history in a SQLite database under the
// output directory. The store is best effort: callers log and continue when
// it fails, a broken database never aborts a meshing run.
package datastore

import (
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wr1/b3-2d/internal/errors"
)

// Run is one invocation of the multi-section mesher.
type Run struct {
	ID          string `gorm:"primaryKey"`
	InputPath   string
	OutputDir   string
	Workers     int
	NumSections int
	NumFailed   int
	StartedAt   time.Time
	FinishedAt  time.Time
}

// SectionRecord is the outcome of one section within a run.
type SectionRecord struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	RunID     string `gorm:"index"`
	SectionID int
	Success   bool
	Error     string
	OutputDir string
	ElapsedMS int64
}

// Store wraps the gorm connection.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the SQLite database at path and migrates
// the schema. Relative paths resolve against baseDir.
func Open(path, baseDir string, debug bool) (*Store, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	logLevel := gormlogger.Silent
	if debug {
		logLevel = gormlogger.Warn
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, errors.New(err).Category(errors.CategoryDatabase).
			FileContext(path).Build()
	}
	if err := db.AutoMigrate(&Run{}, &SectionRecord{}); err != nil {
		return nil, errors.New(err).Category(errors.CategoryDatabase).
			Context("operation", "auto_migrate").Build()
	}
	return &Store{db: db}, nil
}

// SaveRun stores a run and its section records in one transaction.
func (s *Store) SaveRun(run *Run, sections []SectionRecord) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return err
		}
		for i := range sections {
			sections[i].RunID = run.ID
		}
		if len(sections) == 0 {
			return nil
		}
		return tx.Create(&sections).Error
	})
	if err != nil {
		return errors.New(err).Category(errors.CategoryDatabase).
			Context("run_id", run.ID).Build()
	}
	return nil
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(limit int) ([]Run, error) {
	var runs []Run
	q := s.db.Order("started_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, errors.New(err).Category(errors.CategoryDatabase).Build()
	}
	return runs, nil
}

// Sections returns the section records of one run, ordered by section id.
func (s *Store) Sections(runID string) ([]SectionRecord, error) {
	var records []SectionRecord
	if err := s.db.Where("run_id = ?", runID).
		Order("section_id asc").Find(&records).Error; err != nil {
		return nil, errors.New(err).Category(errors.CategoryDatabase).
			Context("run_id", runID).Build()
	}
	return records, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.New(err).Category(errors.CategoryDatabase).Build()
	}
	return sqlDB.Close()
}
