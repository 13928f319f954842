package predictionlog

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wastenet/wastenet-go/internal/errors"
	"github.com/wastenet/wastenet-go/internal/logger"
)

// slowQueryThreshold is where the gorm adapter starts warning.
const slowQueryThreshold = 500 * time.Millisecond

// predictionRow is the table layout. Timestamp is kept in the log's text
// layout so that SQL and CSV logs hold identical values.
type predictionRow struct {
	ID             uint    `gorm:"primaryKey;autoIncrement"`
	Timestamp      string  `gorm:"column:timestamp;size:19;not null;index"`
	PredictedClass string  `gorm:"column:predicted_class;size:255;not null;index"`
	Confidence     float64 `gorm:"column:confidence;not null"`
	ImageName      string  `gorm:"column:image_name;size:1024"`
	DayOfWeek      string  `gorm:"column:day_of_week;size:16"`
	Month          string  `gorm:"column:month;size:16"`
}

func (predictionRow) TableName() string { return "predictions" }

// MySQLConfig holds the connection parameters for OpenMySQL.
type MySQLConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
}

// DSN renders the go-sql-driver connection string.
func (c MySQLConfig) DSN() string {
	cfg := gomysql.NewConfig()
	cfg.User = c.Username
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	cfg.DBName = c.Database
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// SQLStore keeps the log in a relational table through gorm.
type SQLStore struct {
	db      *gorm.DB
	dialect string
	mu      sync.RWMutex
	opts    options
	log     logger.Logger
}

// OpenSQLite opens (creating if needed) a SQLite-backed store at path.
func OpenSQLite(path string, opts ...Option) (*SQLStore, error) {
	o := applyOptions(opts)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.NewGormLoggerAdapter(o.log.Module("gorm"), slowQueryThreshold),
	})
	if err != nil {
		return nil, dbError(err, "open_sqlite")
	}
	return NewSQLStore(db, opts...)
}

// OpenMySQL connects to a MySQL-backed store.
func OpenMySQL(cfg MySQLConfig, opts ...Option) (*SQLStore, error) {
	return OpenMySQLDSN(cfg.DSN(), opts...)
}

// OpenMySQLDSN connects to a MySQL-backed store using a raw DSN.
func OpenMySQLDSN(dsn string, opts ...Option) (*SQLStore, error) {
	o := applyOptions(opts)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.NewGormLoggerAdapter(o.log.Module("gorm"), slowQueryThreshold),
	})
	if err != nil {
		return nil, dbError(err, "open_mysql")
	}
	return NewSQLStore(db, opts...)
}

// NewSQLStore wraps an open gorm connection and migrates the table.
func NewSQLStore(db *gorm.DB, opts ...Option) (*SQLStore, error) {
	o := applyOptions(opts)
	s := &SQLStore{
		db:      db,
		dialect: db.Dialector.Name(),
		opts:    o,
	}
	s.log = o.log.Module("sql").With(logger.String("dialect", s.dialect))

	if err := s.EnsureExists(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// EnsureExists implements Store.
func (s *SQLStore) EnsureExists(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.WithContext(ctx).AutoMigrate(&predictionRow{}); err != nil {
		return dbError(err, "migrate")
	}
	return nil
}

// Append implements Store.
func (s *SQLStore) Append(ctx context.Context, entry Entry) (rec Record, err error) {
	start := time.Now()
	defer func() { s.opts.observe("append", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	rec = NewRecord(s.opts.now(), entry)
	row := predictionRow{
		Timestamp:      rec.Timestamp.Format(TimestampLayout),
		PredictedClass: rec.PredictedClass,
		Confidence:     rec.Confidence,
		ImageName:      rec.ImageName,
		DayOfWeek:      rec.DayOfWeek,
		Month:          rec.Month,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		return Record{}, dbError(err, "append_row")
	}

	s.log.Debug("row appended",
		logger.Uint64("id", uint64(row.ID)),
		logger.String("predicted_class", rec.PredictedClass))

	return rec, nil
}

// ReadAll implements Store. Rows whose timestamp cannot be parsed are
// rejected; RowError.Line carries the row id.
func (s *SQLStore) ReadAll(ctx context.Context) (snap *Snapshot, err error) {
	start := time.Now()
	defer func() { s.opts.observe("read_all", start, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []predictionRow
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, dbError(err, "read_rows")
	}

	snap = &Snapshot{Records: make([]Record, 0, len(rows))}
	for i := range rows {
		row := &rows[i]
		ts, perr := time.ParseInLocation(TimestampLayout, row.Timestamp, s.opts.location)
		if perr != nil {
			snap.Rejected = append(snap.Rejected, &RowError{Line: int(row.ID), Reason: "invalid timestamp " + strconv.Quote(row.Timestamp)})
			continue
		}
		snap.Records = append(snap.Records, Record{
			Timestamp:      ts,
			PredictedClass: row.PredictedClass,
			Confidence:     row.Confidence,
			ImageName:      row.ImageName,
			DayOfWeek:      row.DayOfWeek,
			Month:          row.Month,
		})
	}

	s.opts.reportRejected(snap)
	return snap, nil
}

// Close implements Store.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return dbError(err, "close")
	}
	if err := sqlDB.Close(); err != nil {
		return dbError(err, "close")
	}
	return nil
}

func dbError(err error, operation string) error {
	return errors.New(err).
		Component("predictionlog").
		Category(errors.CategoryDatabase).
		Priority(errors.PriorityHigh).
		Context("operation", operation).
		Build()
}
