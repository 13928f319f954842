package predictionlog

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/wastenet/wastenet-go/internal/errors"
	"github.com/wastenet/wastenet-go/internal/logger"
)

// DefaultCSVPath is the log file used when none is configured.
const DefaultCSVPath = "predictions_log.csv"

// pathLocks holds one lock per absolute log path so that every CSVStore in
// the process writing the same file shares it.
var (
	pathLocks   = make(map[string]*sync.RWMutex)
	pathLocksMu sync.Mutex
)

func lockFor(path string) *sync.RWMutex {
	key, err := filepath.Abs(path)
	if err != nil {
		key = filepath.Clean(path)
	}

	pathLocksMu.Lock()
	defer pathLocksMu.Unlock()

	mu, ok := pathLocks[key]
	if !ok {
		mu = &sync.RWMutex{}
		pathLocks[key] = mu
	}
	return mu
}

// CSVStore keeps the log in a flat CSV file.
type CSVStore struct {
	path string
	mu   *sync.RWMutex
	opts options
	log  logger.Logger
}

// NewCSVStore returns a store backed by the file at path. The file is created
// lazily by EnsureExists or the first Append.
func NewCSVStore(path string, opts ...Option) *CSVStore {
	if path == "" {
		path = DefaultCSVPath
	}
	o := applyOptions(opts)
	return &CSVStore{
		path: path,
		mu:   lockFor(path),
		opts: o,
		log:  o.log.Module("csv").With(logger.String("path", path)),
	}
}

// Path returns the backing file path.
func (s *CSVStore) Path() string {
	return s.path
}

// EnsureExists implements Store.
func (s *CSVStore) EnsureExists(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ensureLocked()
}

// ensureLocked writes the header when the file is missing or empty.
func (s *CSVStore) ensureLocked() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return s.fileError(err, "create_directory")
		}
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return s.fileError(err, "create_log")
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return s.fileError(err, "stat_log")
	}
	if info.Size() > 0 {
		return nil
	}

	if _, err := io.WriteString(f, headerLine); err != nil {
		return s.fileError(err, "write_header")
	}
	if err := f.Sync(); err != nil {
		return s.fileError(err, "sync_header")
	}

	s.log.Info("created prediction log")
	return nil
}

// Append implements Store. The row is written with a single write call; on a
// failed write the file is truncated back to its previous length.
func (s *CSVStore) Append(ctx context.Context, entry Entry) (rec Record, err error) {
	start := time.Now()
	defer func() { s.opts.observe("append", start, err) }()

	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLocked(); err != nil {
		return Record{}, err
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return Record{}, s.fileError(err, "open_log")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = s.fileError(cerr, "close_log")
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return Record{}, s.fileError(err, "stat_log")
	}

	rec = NewRecord(s.opts.now(), entry)
	if _, err := io.WriteString(f, encodeRow(rec)); err != nil {
		if terr := f.Truncate(info.Size()); terr != nil {
			s.log.Error("failed to roll back partial row", logger.Error(terr))
		}
		return Record{}, s.fileError(err, "append_row")
	}

	if s.opts.fsync {
		if err := f.Sync(); err != nil {
			return Record{}, s.fileError(err, "sync_log")
		}
	}

	s.log.Debug("row appended",
		logger.String("predicted_class", rec.PredictedClass),
		logger.Float64("confidence", rec.Confidence))

	return rec, nil
}

// ReadAll implements Store. A missing file reads as an empty log.
func (s *CSVStore) ReadAll(ctx context.Context) (snap *Snapshot, err error) {
	start := time.Now()
	defer func() { s.opts.observe("read_all", start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &Snapshot{}, nil
	}
	if err != nil {
		return nil, s.fileError(err, "open_log")
	}
	defer func() { _ = f.Close() }()

	snap, err = ParseCSV(bufio.NewReader(f), s.opts.location)
	if err != nil {
		return nil, err
	}

	s.opts.reportRejected(snap)
	return snap, nil
}

// WriteTo streams the raw log file to w under the read lock.
func (s *CSVStore) WriteTo(w io.Writer) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		n, werr := io.WriteString(w, headerLine)
		return int64(n), werr
	}
	if err != nil {
		return 0, s.fileError(err, "open_log")
	}
	defer func() { _ = f.Close() }()

	return io.Copy(w, f)
}

// Close implements Store. The CSV store holds no open handles.
func (s *CSVStore) Close() error {
	return nil
}

func (s *CSVStore) fileError(err error, operation string) error {
	return errors.New(err).
		Component("predictionlog").
		Category(errors.CategoryFileIO).
		Priority(errors.PriorityHigh).
		FileContext(s.path, 0).
		Context("operation", operation).
		Build()
}
