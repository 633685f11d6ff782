package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/realrushil/website/internal/core/domain"
)

// SQLiteRepository persists the probe state with GORM and SQLite. The newest
// reading row doubles as latest, so one transaction covers all three effects.
type SQLiteRepository struct {
	db *gorm.DB
}

// ReadingModel is one history entry. The reading itself is a msgpack blob.
type ReadingModel struct {
	ID           uint   `gorm:"primaryKey"`
	DeviceID     string `gorm:"index"`
	ReceivedAtMs int64
	Payload      []byte
}

func (ReadingModel) TableName() string { return "probe_readings" }

// StatsModel is the single aggregate row.
type StatsModel struct {
	ID            uint `gorm:"primaryKey"`
	TotalRequests int64
	LastUpdate    string
}

func (StatsModel) TableName() string { return "probe_stats" }

// DeviceModel is the last report from one sensor.
type DeviceModel struct {
	DeviceID string `gorm:"primaryKey"`
	LastSeen string
	LastData []byte
}

func (DeviceModel) TableName() string { return "probe_devices" }

const statsRowID = 1

// readingBlob is the msgpack layout of a stored reading.
type readingBlob struct {
	DeviceID        string         `msgpack:"device_id"`
	TimestampNum    float64        `msgpack:"ts_num"`
	TimestampText   string         `msgpack:"ts_text"`
	TimestampIsText bool           `msgpack:"ts_is_text"`
	SSIDCounts      map[string]int `msgpack:"ssid_counts"`
	IntervalMs      *int64         `msgpack:"interval_ms,omitempty"`
	ServerTimestamp string         `msgpack:"server_timestamp"`
	ReceivedAtMs    int64          `msgpack:"received_at_ms"`
	SourceIP        string         `msgpack:"source_ip"`
}

// NewSQLiteRepository opens (or creates) the database and migrates schema.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := gorm.Open(sqlite.Open(sqliteDSN(path)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("register tracing plugin: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; a single connection keeps transactions serialized
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&ReadingModel{}, &StatsModel{}, &DeviceModel{}); err != nil {
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

func sqliteDSN(path string) string {
	if path == ":memory:" || strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000&_journal_mode=WAL"
}

func (r *SQLiteRepository) Name() string { return BackendSQLite }

func (r *SQLiteRepository) Record(ctx context.Context, reading domain.Reading, historyCap int) error {
	payload, err := msgpack.Marshal(toBlob(reading))
	if err != nil {
		return fmt.Errorf("encode reading: %w", err)
	}
	lastData, err := msgpack.Marshal(map[string]int(reading.SSIDCounts))
	if err != nil {
		return fmt.Errorf("encode device data: %w", err)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := ReadingModel{
			DeviceID:     reading.DeviceID,
			ReceivedAtMs: reading.ReceivedAtMs,
			Payload:      payload,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		if err := tx.Exec(
			"DELETE FROM probe_readings WHERE id NOT IN (SELECT id FROM probe_readings ORDER BY id DESC LIMIT ?)",
			historyCap,
		).Error; err != nil {
			return err
		}

		stats := StatsModel{ID: statsRowID, TotalRequests: 1, LastUpdate: reading.ServerTimestamp}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total_requests": gorm.Expr("total_requests + 1"),
				"last_update":    reading.ServerTimestamp,
			}),
		}).Create(&stats).Error; err != nil {
			return err
		}

		device := DeviceModel{DeviceID: reading.DeviceID, LastSeen: reading.ServerTimestamp, LastData: lastData}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "device_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_seen", "last_data"}),
		}).Create(&device).Error
	})
}

func (r *SQLiteRepository) Snapshot(ctx context.Context, historyLimit int) (domain.Snapshot, error) {
	snap := domain.EmptySnapshot()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if snap.Latest, err = latestIn(tx); err != nil {
			return err
		}
		if snap.History, err = historyIn(tx, historyLimit); err != nil {
			return err
		}
		snap.Stats, err = statsIn(tx)
		return err
	})
	if err != nil {
		return domain.EmptySnapshot(), err
	}
	return snap, nil
}

func (r *SQLiteRepository) Latest(ctx context.Context) (*domain.Reading, error) {
	return latestIn(r.db.WithContext(ctx))
}

func (r *SQLiteRepository) History(ctx context.Context, limit int) ([]domain.Reading, error) {
	return historyIn(r.db.WithContext(ctx), limit)
}

func (r *SQLiteRepository) Stats(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		stats, err = statsIn(tx)
		return err
	})
	if err != nil {
		return domain.NewStats(), err
	}
	return stats, nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func latestIn(db *gorm.DB) (*domain.Reading, error) {
	var row ReadingModel
	err := db.Order("id DESC").Limit(1).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	reading, err := fromRow(row)
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

func historyIn(db *gorm.DB, limit int) ([]domain.Reading, error) {
	if limit <= 0 {
		return []domain.Reading{}, nil
	}
	var rows []ReadingModel
	if err := db.Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return []domain.Reading{}, err
	}
	out := make([]domain.Reading, 0, len(rows))
	for _, row := range rows {
		reading, err := fromRow(row)
		if err != nil {
			continue // skip corrupt entries
		}
		out = append(out, reading)
	}
	return out, nil
}

func statsIn(db *gorm.DB) (domain.Stats, error) {
	stats := domain.NewStats()

	var row StatsModel
	err := db.Where("id = ?", statsRowID).Take(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return stats, nil
	case err != nil:
		return stats, err
	}
	stats.TotalRequests = row.TotalRequests
	stats.LastUpdate = row.LastUpdate

	var devices []DeviceModel
	if err := db.Find(&devices).Error; err != nil {
		return domain.NewStats(), err
	}
	for _, d := range devices {
		var data map[string]int
		if err := msgpack.Unmarshal(d.LastData, &data); err != nil {
			data = map[string]int{}
		}
		stats.DeviceInfo[d.DeviceID] = domain.DeviceInfo{LastSeen: d.LastSeen, LastData: domain.SSIDCounts(data)}
	}
	return stats, nil
}

func toBlob(r domain.Reading) readingBlob {
	return readingBlob{
		DeviceID:        r.DeviceID,
		TimestampNum:    r.SensorTimestamp.Seconds(),
		TimestampText:   textOf(r.SensorTimestamp),
		TimestampIsText: r.SensorTimestamp.IsText(),
		SSIDCounts:      map[string]int(r.SSIDCounts),
		IntervalMs:      r.IntervalMs,
		ServerTimestamp: r.ServerTimestamp,
		ReceivedAtMs:    r.ReceivedAtMs,
		SourceIP:        r.SourceIP,
	}
}

func textOf(ts domain.SensorTimestamp) string {
	if ts.IsText() {
		return ts.String()
	}
	return ""
}

func fromRow(row ReadingModel) (domain.Reading, error) {
	var b readingBlob
	if err := msgpack.Unmarshal(row.Payload, &b); err != nil {
		return domain.Reading{}, fmt.Errorf("decode reading %d: %w", row.ID, err)
	}
	ts := domain.NumericTimestamp(b.TimestampNum)
	if b.TimestampIsText {
		ts = domain.TextTimestamp(b.TimestampText)
	}
	return domain.Reading{
		DeviceID:        b.DeviceID,
		SensorTimestamp: ts,
		SSIDCounts:      domain.SSIDCounts(b.SSIDCounts),
		IntervalMs:      b.IntervalMs,
		ServerTimestamp: b.ServerTimestamp,
		ReceivedAtMs:    b.ReceivedAtMs,
		SourceIP:        b.SourceIP,
	}, nil
}
