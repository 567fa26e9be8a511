package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mchmarny/bureau/pkg/tradeline"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	dateLayout = "2006-01-02"
)

var identRegEx = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// SQLLoader reads every row of a tradeline table.
type SQLLoader struct {
	driver string
	dsn    string
	table  string
}

// NewSQLLoader returns a loader reading table through driver.
func NewSQLLoader(driver, dsn, table string) (*SQLLoader, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("%w: driver %q", ErrUnsupported, driver)
	}
	if dsn == "" {
		return nil, errors.New("dsn not specified")
	}
	if _, err := quoteIdent(table); err != nil {
		return nil, err
	}
	return &SQLLoader{driver: driver, dsn: dsn, table: table}, nil
}

// ParseDSN splits a sqlite://path or postgres:// URI into the driver name
// and the DSN that driver expects.
func ParseDSN(uri string) (driver, dsn string, err error) {
	uri = strings.TrimSpace(uri)
	lower := strings.ToLower(uri)
	switch {
	case strings.HasPrefix(lower, "sqlite://"):
		driver, dsn = DriverSQLite, uri[len("sqlite://"):]
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		driver, dsn = DriverPostgres, uri
	default:
		return "", "", fmt.Errorf("%w: not a database uri: %s", ErrUnsupported, redact(uri))
	}
	if dsn == "" {
		return "", "", errors.New("dsn not specified")
	}
	return driver, dsn, nil
}

// GetDB opens a database handle for the driver.
func GetDB(driver, dsn string) (*sql.DB, error) {
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s database", driver)
	}
	return conn, nil
}

// Name returns the driver and table with the DSN credentials redacted.
func (l *SQLLoader) Name() string {
	return fmt.Sprintf("%s:%s#%s", l.driver, redact(l.dsn), l.table)
}

// Load selects the whole table. NULL cells become empty strings and date
// cells are rendered as YYYY-MM-DD.
func (l *SQLLoader) Load(ctx context.Context) ([]tradeline.Record, error) {
	db, err := GetDB(l.driver, l.dsn)
	if err != nil {
		return nil, unavailable(l.Name(), err)
	}
	defer db.Close()

	list, err := selectRecords(ctx, db, l.table)
	if err != nil {
		return nil, unavailable(l.Name(), err)
	}

	slog.Debug("loaded sql source", "source", l.Name(), "rows", len(list))
	return list, nil
}

func selectRecords(ctx context.Context, db *sql.DB, table string) ([]tradeline.Record, error) {
	name, err := quoteIdent(table)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query table %s", table)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read columns")
	}
	for i, c := range cols {
		cols[i] = strings.TrimSpace(c)
	}
	if !containsColumn(cols, tradeline.ColumnCRN) {
		return nil, fmt.Errorf("missing required column %q", tradeline.ColumnCRN)
	}

	list := make([]tradeline.Record, 0)
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, "failed to scan row")
		}
		r := make(tradeline.Record, len(cols))
		for i, c := range cols {
			r[c] = stringify(vals[i])
		}
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate rows")
	}

	return list, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(dateLayout)
	default:
		return fmt.Sprint(t)
	}
}

func quoteIdent(name string) (string, error) {
	if !identRegEx.MatchString(name) {
		return "", fmt.Errorf("invalid table name: %q", name)
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + p + `"`
	}
	return strings.Join(parts, "."), nil
}
