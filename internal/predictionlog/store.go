package predictionlog

import (
	"context"
	"fmt"
	"time"

	"github.com/wastenet/wastenet-go/internal/errors"
	"github.com/wastenet/wastenet-go/internal/logger"
)

// Store is the durable prediction log.
//
// Appends are serialized inside the store. ReadAll observes a prefix of whole
// rows and never a partially written one.
type Store interface {
	// EnsureExists creates the backing storage with its header if absent.
	// It never truncates existing data.
	EnsureExists(ctx context.Context) error
	// Append stamps entry with the current time and appends one row.
	Append(ctx context.Context, entry Entry) (Record, error)
	// ReadAll returns every row in insertion order.
	ReadAll(ctx context.Context) (*Snapshot, error)
	// Close releases the backing storage.
	Close() error
}

// Snapshot is the result of a full scan.
type Snapshot struct {
	Records  []Record
	Rejected []*RowError
}

// ErrMalformedRow is wrapped by every RowError.
var ErrMalformedRow = errors.NewStd("malformed prediction log row")

// ErrSchema is returned when the header is missing or does not match.
var ErrSchema = errors.NewStd("prediction log schema mismatch")

// RowError describes one rejected row.
type RowError struct {
	Line   int // 1-based, header is line 1
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

func (e *RowError) Unwrap() error { return ErrMalformedRow }

// Recorder receives store metrics.
type Recorder interface {
	RecordOperation(operation, status string)
	RecordDuration(operation string, seconds float64)
	RecordError(operation, errorType string)
	RecordRejectedRows(count int)
}

// Clock returns the current time.
type Clock func() time.Time

// Option configures a store.
type Option func(*options)

type options struct {
	clock    Clock
	location *time.Location
	log      logger.Logger
	recorder Recorder
	fsync    bool
}

func defaultOptions() options {
	return options{
		clock:    time.Now,
		location: time.Local,
		log:      logger.NewSlogLogger(nil, logger.LogLevelInfo, nil),
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock overrides the time source used to stamp appends.
func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLocation sets the zone timestamps are written and parsed in.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(log logger.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// WithFsync makes the CSV store sync the file after every append.
func WithFsync(enabled bool) Option {
	return func(o *options) { o.fsync = enabled }
}

func (o *options) now() time.Time {
	return o.clock().In(o.location)
}

func (o *options) observe(operation string, start time.Time, err error) {
	if o.recorder == nil {
		return
	}
	o.recorder.RecordDuration(operation, time.Since(start).Seconds())
	if err != nil {
		o.recorder.RecordOperation(operation, "error")
		o.recorder.RecordError(operation, errorType(err))
		return
	}
	o.recorder.RecordOperation(operation, "success")
}

func (o *options) reportRejected(snap *Snapshot) {
	if len(snap.Rejected) == 0 {
		return
	}
	for _, rowErr := range snap.Rejected {
		o.log.Warn("skipping malformed row",
			logger.Int("line", rowErr.Line),
			logger.String("reason", rowErr.Reason))
	}
	if o.recorder != nil {
		o.recorder.RecordRejectedRows(len(snap.Rejected))
	}
}

func errorType(err error) string {
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		return ee.GetCategory()
	}
	return string(errors.CategoryGeneric)
}
