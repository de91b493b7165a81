// Copyright (c) 2026, The UAVNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

// Package telemetry_store persists run telemetry in a SQL database through gorm.
package telemetry_store

import (
	"strings"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/uavns/uavns/logger"
	"github.com/uavns/uavns/telemetry"
	. "github.com/uavns/uavns/types"
)

const (
	DefaultBatchSize = 500
	memoryDsn        = "file::memory:?cache=shared"
)

// RunRow is one simulation run.
type RunRow struct {
	ID        uint   `gorm:"primarykey"`
	RunId     string `gorm:"uniqueIndex;size:64"`
	CreatedAt time.Time
	StoppedAt *time.Time
}

func (RunRow) TableName() string { return "runs" }

// VehicleRow is a vehicle of a run.
type VehicleRow struct {
	ID           uint   `gorm:"primarykey"`
	RunId        string `gorm:"index;size:64"`
	VehicleId    int    `gorm:"index"`
	ProfileIndex int
	Capacity     float64
	StartX       float64
	StartY       float64
	StartZ       float64
	AoiXMin      float64
	AoiXMax      float64
	AoiYMin      float64
	AoiYMax      float64
	AoiZMin      float64
	AoiZMax      float64
	Closed       bool
	ClosedAtUs   int64
}

func (VehicleRow) TableName() string { return "vehicles" }

// RecordRow is one telemetry record.
type RecordRow struct {
	ID               uint   `gorm:"primarykey"`
	RunId            string `gorm:"index:idx_record_vehicle,priority:1;size:64"`
	VehicleId        int    `gorm:"index:idx_record_vehicle,priority:2"`
	TimestampUs      int64  `gorm:"index:idx_record_vehicle,priority:3"`
	X                float64
	Y                float64
	Z                float64
	Consumed         float64
	Current          float64
	RemainingPercent float64
	Phase            int
	MobilityCurrent  float64
	HardwareCurrent  float64
	ComputeCurrent   float64
	UplinkEnergy     float64
	Depleted         bool
}

func (RecordRow) TableName() string { return "records" }

// Models lists the tables created by the store.
var Models = []interface{}{&RunRow{}, &VehicleRow{}, &RecordRow{}}

// IsPostgresDsn returns true if dsn addresses a Postgres server rather than an sqlite file.
func IsPostgresDsn(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") ||
		strings.HasPrefix(dsn, "host=")
}

// Open connects to the database at dsn. An empty dsn opens a shared in-memory sqlite database.
func Open(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        DefaultBatchSize,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	}

	var dialector gorm.Dialector
	if IsPostgresDsn(dsn) {
		dialector = postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		})
	} else {
		if dsn == "" {
			dsn = memoryDsn
		}
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "open telemetry database")
	}
	if db.Dialector.Name() == "sqlite" {
		for _, pragma := range []string{"PRAGMA journal_mode = MEMORY;", "PRAGMA synchronous = OFF;"} {
			if err = db.Exec(pragma).Error; err != nil {
				return nil, errors.Wrapf(err, "set %s", pragma)
			}
		}
	}
	return db, nil
}

// StoreReporter is a telemetry.Reporter writing records to the database in batches.
type StoreReporter struct {
	mutex     sync.Mutex
	db        *gorm.DB
	ownsDb    bool
	runId     string
	batchSize int
	pending   []RecordRow
	failed    bool
}

// NewStoreReporter creates the tables as needed and registers the run.
func NewStoreReporter(db *gorm.DB, runId string) (*StoreReporter, error) {
	if err := db.AutoMigrate(Models...); err != nil {
		return nil, errors.Wrapf(err, "migrate telemetry schema")
	}
	if err := db.Create(&RunRow{RunId: runId}).Error; err != nil {
		return nil, errors.Wrapf(err, "register run %s", runId)
	}
	return &StoreReporter{
		db:        db,
		runId:     runId,
		batchSize: DefaultBatchSize,
	}, nil
}

// OpenStoreReporter opens the database at dsn and returns a reporter that closes it at Stop.
func OpenStoreReporter(dsn string, runId string) (*StoreReporter, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	sr, err := NewStoreReporter(db, runId)
	if err != nil {
		return nil, err
	}
	sr.ownsDb = true
	return sr, nil
}

func (sr *StoreReporter) DB() *gorm.DB {
	return sr.db
}

func (sr *StoreReporter) SetBatchSize(n int) {
	sr.mutex.Lock()
	defer sr.mutex.Unlock()
	if n < 1 {
		n = 1
	}
	sr.batchSize = n
}

func (sr *StoreReporter) Init() {
}

func (sr *StoreReporter) AddVehicle(info telemetry.VehicleInfo) {
	aoi := info.AreaOfInterest
	row := &VehicleRow{
		RunId:        sr.runId,
		VehicleId:    int(info.Id),
		ProfileIndex: info.ProfileIndex,
		Capacity:     info.Capacity,
		StartX:       info.Start.X,
		StartY:       info.Start.Y,
		StartZ:       info.Start.Z,
		AoiXMin:      aoi.XMin,
		AoiXMax:      aoi.XMax,
		AoiYMin:      aoi.YMin,
		AoiYMax:      aoi.YMax,
		AoiZMin:      aoi.ZMin,
		AoiZMax:      aoi.ZMax,
	}

	sr.mutex.Lock()
	defer sr.mutex.Unlock()
	if sr.failed {
		return
	}
	if err := sr.db.Create(row).Error; err != nil {
		sr.fail(err)
	}
}

func (sr *StoreReporter) Report(rec telemetry.Record) {
	sr.mutex.Lock()
	defer sr.mutex.Unlock()
	if sr.failed {
		return
	}
	sr.pending = append(sr.pending, RecordRow{
		RunId:            sr.runId,
		VehicleId:        int(rec.VehicleId),
		TimestampUs:      int64(rec.Timestamp),
		X:                rec.Position.X,
		Y:                rec.Position.Y,
		Z:                rec.Position.Z,
		Consumed:         rec.Consumed,
		Current:          rec.Current,
		RemainingPercent: rec.RemainingPercent,
		Phase:            int(rec.Phase),
		MobilityCurrent:  rec.MobilityCurrent,
		HardwareCurrent:  rec.HardwareCurrent,
		ComputeCurrent:   rec.ComputeCurrent,
		UplinkEnergy:     rec.UplinkEnergy,
		Depleted:         rec.Depleted,
	})
}

func (sr *StoreReporter) CloseVehicle(id VehicleId, timestamp uint64) {
	sr.mutex.Lock()
	defer sr.mutex.Unlock()
	if sr.failed {
		return
	}
	err := sr.db.Model(&VehicleRow{}).
		Where("run_id = ? AND vehicle_id = ?", sr.runId, int(id)).
		Updates(map[string]interface{}{"closed": true, "closed_at_us": int64(timestamp)}).Error
	if err != nil {
		sr.fail(err)
	}
}

func (sr *StoreReporter) AdvanceTime(_ uint64) {
	sr.mutex.Lock()
	defer sr.mutex.Unlock()
	if len(sr.pending) >= sr.batchSize {
		sr.flush()
	}
}

func (sr *StoreReporter) Stop() {
	sr.mutex.Lock()
	defer sr.mutex.Unlock()
	sr.flush()
	if !sr.failed {
		now := time.Now()
		if err := sr.db.Model(&RunRow{}).Where("run_id = ?", sr.runId).Update("stopped_at", &now).Error; err != nil {
			sr.fail(err)
		}
	}
	if sr.ownsDb {
		if sqlDb, err := sr.db.DB(); err == nil {
			_ = sqlDb.Close()
		}
	}
	logger.Debugf("store reporter stopped (run %s)", sr.runId)
}

func (sr *StoreReporter) flush() {
	if sr.failed || len(sr.pending) == 0 {
		sr.pending = sr.pending[:0]
		return
	}
	if err := sr.db.CreateInBatches(sr.pending, sr.batchSize).Error; err != nil {
		sr.fail(err)
	}
	sr.pending = sr.pending[:0]
}

// fail disables the reporter after the first database error; the simulation continues.
func (sr *StoreReporter) fail(err error) {
	logger.Errorf("telemetry store (run %s) failed, disabling: %v", sr.runId, err)
	sr.failed = true
}

// Records returns the stored records of a vehicle in the run, ordered by time.
func Records(db *gorm.DB, runId string, id VehicleId) ([]RecordRow, error) {
	var rows []RecordRow
	err := db.Where("run_id = ? AND vehicle_id = ?", runId, int(id)).Order("timestamp_us").Find(&rows).Error
	return rows, errors.Wrapf(err, "query records of vehicle %d", id)
}
