// Copyright (c) 2021 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package ledger keeps the splits completed by a runner in a sqlite
// database, so that a run interrupted or partially failed can be resumed
// without reading completed splits again.
package ledger

import (
	"time"

	"github.com/m3db/m3warc/src/split"
	"github.com/m3db/m3warc/src/split/runner"
	"github.com/m3db/m3warc/src/x/instrument"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// CompletedSplit is a split committed to the ledger.
type CompletedSplit struct {
	ID          uint   `gorm:"primarykey"`
	Path        string `gorm:"not null;uniqueIndex:idx_split"`
	Start       int64  `gorm:"not null;uniqueIndex:idx_split"`
	Length      int64  `gorm:"not null;uniqueIndex:idx_split"`
	Records     int64
	Attempts    int
	Bytes       int64
	CompletedAt time.Time
}

// Split returns the split that was completed.
func (c CompletedSplit) Split() split.Split {
	return split.Split{Path: c.Path, Start: c.Start, Length: c.Length}
}

// Ledger is a runner.Ledger backed by sqlite.
type Ledger struct {
	db     *gorm.DB
	logger *zap.Logger
	nowFn  func() time.Time
}

var _ runner.Ledger = (*Ledger)(nil)

// Open opens, creating it if needed, the ledger stored at path.
func Open(path string, iopts instrument.Options) (*Ledger, error) {
	if iopts == nil {
		iopts = instrument.NewOptions()
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open ledger %s", path)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to access ledger connection pool")
	}
	// Concurrent commits queue on the one connection.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&CompletedSplit{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate ledger")
	}

	iopts.Logger().Debug("opened ledger", zap.String("path", path))
	return &Ledger{
		db:     db,
		logger: iopts.Logger(),
		nowFn:  time.Now,
	}, nil
}

// Completed returns whether the split was committed to the ledger.
func (l *Ledger) Completed(s split.Split) (bool, error) {
	var count int64
	q := l.db.Model(&CompletedSplit{}).
		Where("path = ? AND start = ? AND length = ?", s.Path, s.Start, s.Length).
		Count(&count)
	if err := q.Error; err != nil {
		return false, errors.Wrapf(err, "failed to look up split %s", s)
	}
	return count > 0, nil
}

// Commit records the result of a successfully completed split. Committing
// the same split again replaces the earlier entry.
func (l *Ledger) Commit(result runner.SplitResult) error {
	if result.Err != nil {
		return errors.Errorf("cannot commit failed split %s", result.Split)
	}
	row := CompletedSplit{
		Path:        result.Split.Path,
		Start:       result.Split.Start,
		Length:      result.Split.Length,
		Records:     result.Records,
		Attempts:    result.Attempts,
		Bytes:       result.Bytes,
		CompletedAt: l.nowFn(),
	}
	q := l.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "path"}, {Name: "start"}, {Name: "length"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"records", "attempts", "bytes", "completed_at",
		}),
	}).Create(&row)
	if err := q.Error; err != nil {
		return errors.Wrapf(err, "failed to commit split %s", result.Split)
	}
	l.logger.Debug("committed split",
		zap.Stringer("split", result.Split),
		zap.Int64("records", result.Records))
	return nil
}

// List returns every completed split ordered by path.
func (l *Ledger) List() ([]CompletedSplit, error) {
	var completed []CompletedSplit
	if err := l.db.Order("path, start").Find(&completed).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list completed splits")
	}
	return completed, nil
}

// Close closes the ledger database.
func (l *Ledger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
