package prices

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pricecast/pricecast/internal/config"
	"github.com/pricecast/pricecast/internal/logging"
)

// Source supplies snapshots of the price table and a version that changes
// whenever the underlying data does
type Source interface {
	// Name identifies the source in logs and cache keys
	Name() string

	// Version returns the last modification time of the data
	Version(ctx context.Context) (time.Time, error)

	// Load reads and validates the full table
	Load(ctx context.Context) (*Dataset, error)
}

// NewSource creates the source selected by configuration
func NewSource(ctx context.Context, cfg config.DataConfig, logger *logging.Logger) (Source, error) {
	switch cfg.Source {
	case "", config.DataSourceFile:
		return NewFileSource(cfg.Path, logger), nil
	case config.DataSourcePostgres:
		return NewPostgresSource(ctx, cfg.Postgres, logger)
	default:
		return nil, fmt.Errorf("unsupported data source: %s", cfg.Source)
	}
}

// FileSource reads a CSV or XLSX file; its version is the file mtime
type FileSource struct {
	path   string
	logger *logging.Logger
}

// NewFileSource creates a file-backed source
func NewFileSource(path string, logger *logging.Logger) *FileSource {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &FileSource{path: path, logger: logger}
}

func (s *FileSource) Name() string {
	return "file:" + s.path
}

// Path returns the file path
func (s *FileSource) Path() string {
	return s.path
}

func (s *FileSource) Version(ctx context.Context) (time.Time, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat %s: %w", s.path, err)
	}
	return info.ModTime(), nil
}

func (s *FileSource) Load(ctx context.Context) (*Dataset, error) {
	format, err := FormatFromPath(s.path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", s.path, err)
	}

	result, err := Read(f, format)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Loaded price file",
		"path", s.path,
		"records", len(result.Records),
		"dropped", result.Dropped)

	return &Dataset{Records: result.Records, Version: info.ModTime()}, nil
}

// PostgresSource reads the price table from PostgreSQL. The version is the
// maximum of a timestamp column, so the freshness rule is the same as for
// files.
type PostgresSource struct {
	pool          *pgxpool.Pool
	table         string
	versionColumn string
	logger        *logging.Logger
}

// NewPostgresSource connects a pool and verifies connectivity
func NewPostgresSource(ctx context.Context, cfg config.PostgresConfig, logger *logging.Logger) (*PostgresSource, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}

	return &PostgresSource{
		pool:          pool,
		table:         quoteIdentifier(cfg.Table),
		versionColumn: quoteIdentifier(cfg.VersionColumn),
		logger:        logger,
	}, nil
}

// quoteIdentifier quotes a possibly schema-qualified name
func quoteIdentifier(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

func (s *PostgresSource) Name() string {
	return "postgres:" + s.table
}

func (s *PostgresSource) Version(ctx context.Context) (time.Time, error) {
	var version *time.Time
	query := fmt.Sprintf("SELECT MAX(%s) FROM %s", s.versionColumn, s.table)
	if err := s.pool.QueryRow(ctx, query).Scan(&version); err != nil {
		return time.Time{}, fmt.Errorf("failed to read data version: %w", err)
	}
	if version == nil {
		return time.Time{}, nil
	}
	return *version, nil
}

func (s *PostgresSource) Load(ctx context.Context) (*Dataset, error) {
	version, err := s.Version(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT commodity, date, amount, type FROM %s", s.table)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()

	var (
		records []PriceRecord
		dropped int
	)
	for rows.Next() {
		var (
			commodity, typ *string
			date           *time.Time
			amount         *float64
		)
		if err := rows.Scan(&commodity, &date, &amount, &typ); err != nil {
			return nil, fmt.Errorf("failed to scan price row: %w", err)
		}
		if commodity == nil || strings.TrimSpace(*commodity) == "" || date == nil || amount == nil {
			dropped++
			continue
		}

		rec := PriceRecord{
			Commodity: strings.TrimSpace(*commodity),
			Date:      calendarDate(*date),
			Amount:    *amount,
		}
		if typ != nil {
			rec.Type = *typ
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read price rows: %w", err)
	}

	s.logger.Debug("Loaded price table",
		"table", s.table,
		"records", len(records),
		"dropped", dropped)

	return &Dataset{Records: records, Version: version}, nil
}

// Close releases the pool
func (s *PostgresSource) Close() {
	s.pool.Close()
}
