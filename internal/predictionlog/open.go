package predictionlog

import (
	"fmt"
	"strings"

	"github.com/wastenet/wastenet-go/internal/errors"
)

// Backend names accepted by Open.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
)

// Config selects and parameterizes a backend.
type Config struct {
	Backend    string
	CSVPath    string
	SQLitePath string
	MySQL      MySQLConfig
}

// Open returns the store selected by cfg.Backend; an empty backend means CSV.
func Open(cfg Config, opts ...Option) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendCSV:
		return NewCSVStore(cfg.CSVPath, opts...), nil
	case BackendSQLite:
		return OpenSQLite(cfg.SQLitePath, opts...)
	case BackendMySQL:
		return OpenMySQL(cfg.MySQL, opts...)
	default:
		return nil, errors.New(fmt.Errorf("unknown prediction log backend %q", cfg.Backend)).
			Component("predictionlog").
			Category(errors.CategoryConfiguration).
			Build()
	}
}
