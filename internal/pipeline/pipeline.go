package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/willojs/FARS/internal/domain"
	"github.com/willojs/FARS/internal/observability"
)

// TableReader loads one accident file.
type TableReader interface {
	ReadFile(path string) (domain.Table, error)
}

// Renderer draws the accidents of one state.
type Renderer interface {
	Render(ctx context.Context, m domain.StateMap) error
}

// Publisher ships loaded accident records to a downstream sink.
type Publisher interface {
	Publish(ctx context.Context, tables []domain.YearTable) (int, error)
}

// Service reads FARS year files from a data directory and derives
// summaries and state maps from them.
type Service struct {
	dataDir string
	reader  TableReader
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Service reading files named by domain.MakeFilename from dataDir.
func New(dataDir string, reader TableReader, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		dataDir: dataDir,
		reader:  reader,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil when the data directory can be listed.
func (s *Service) CheckReadiness(_ context.Context) error {
	info, err := os.Stat(s.dataDir)
	if err != nil {
		return fmt.Errorf("data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data directory %s is not a directory", s.dataDir)
	}
	return nil
}

// Path returns the location of the file for year.
func (s *Service) Path(year domain.Year) string {
	return filepath.Join(s.dataDir, domain.MakeFilename(year))
}

// ReadFile reads one accident file and records read metrics.
func (s *Service) ReadFile(path string) (domain.Table, error) {
	start := domain.Now()
	table, err := s.reader.ReadFile(path)
	s.metrics.ReadDuration.Observe(domain.Since(start).Seconds())

	switch {
	case err == nil:
		s.metrics.FilesRead.WithLabelValues("success").Inc()
		s.metrics.RowsLoaded.Add(float64(len(table.Records)))
		s.logger.Debug("file read", "path", path, "rows", len(table.Records))
	case errors.Is(err, domain.ErrFileNotFound):
		s.metrics.FilesRead.WithLabelValues("not_found").Inc()
	default:
		s.metrics.FilesRead.WithLabelValues("error").Inc()
	}
	return table, err
}

// ReadYear reads the file for year and tags it.
func (s *Service) ReadYear(year domain.Year) (domain.YearTable, error) {
	table, err := s.ReadFile(s.Path(year))
	if err != nil {
		return domain.YearTable{}, err
	}
	return domain.YearTable{Year: year, Table: table}, nil
}

// LoadYears reads every requested year in order. A year that fails is logged
// once at WARN and reported in its YearResult; the others still load. The
// returned tables hold only the years that loaded.
func (s *Service) LoadYears(ctx context.Context, years []domain.Year) ([]domain.YearTable, []domain.YearResult) {
	tables := make([]domain.YearTable, 0, len(years))
	results := make([]domain.YearResult, len(years))

	for i, year := range years {
		results[i].Year = year
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}

		table, err := s.loadYear(year)
		if err != nil {
			s.logger.Warn("invalid year", "year", year.String(), "error", err)
			s.metrics.YearLoadFailures.Inc()
			results[i].Err = fmt.Errorf("year %s: %w", year, err)
			continue
		}
		results[i].Rows = table.MonthYears()
		tables = append(tables, table)
	}
	return tables, results
}

// loadYear rejects an unparsed year before its NA file name reaches the disk.
func (s *Service) loadYear(year domain.Year) (domain.YearTable, error) {
	if !year.Valid() {
		return domain.YearTable{}, fmt.Errorf("%w: %s", domain.ErrInvalidYear, s.Path(year))
	}
	return s.ReadYear(year)
}

// ReadYears returns one result per requested year, preserving input order.
func (s *Service) ReadYears(ctx context.Context, years []domain.Year) []domain.YearResult {
	_, results := s.LoadYears(ctx, years)
	return results
}

// SummarizeYears counts accidents by month for each year that loads. It
// fails with domain.ErrNoData when none does.
func (s *Service) SummarizeYears(ctx context.Context, years []domain.Year) (*domain.Summary, error) {
	summary, err := domain.Summarize(s.ReadYears(ctx, years))
	if err != nil {
		return nil, err
	}
	s.metrics.SummariesComputed.Inc()
	return summary, nil
}

// MapState renders the located accidents of state in year. An unknown state
// fails with domain.ErrInvalidState. When nothing is left to draw a notice is
// logged and the renderer is not called.
func (s *Service) MapState(ctx context.Context, state int, year domain.Year, r Renderer) error {
	table, err := s.ReadYear(year)
	if err != nil {
		return err
	}

	m, err := domain.BuildStateMap(table, state)
	if err != nil {
		return err
	}
	if m.Empty() {
		s.logger.Info("no accidents to plot", "state", state, "year", year.String(), "unlocated", m.Skipped)
		return nil
	}

	s.metrics.PointsPlotted.Add(float64(len(m.Points)))
	return r.Render(ctx, m)
}

// PublishYears loads the requested years and hands the tables to p. Years
// that fail are skipped as in LoadYears; if none loads it returns
// domain.ErrNoData.
func (s *Service) PublishYears(ctx context.Context, years []domain.Year, p Publisher) (int, error) {
	tables, _ := s.LoadYears(ctx, years)
	if len(tables) == 0 {
		return 0, fmt.Errorf("publish %d years: %w", len(years), domain.ErrNoData)
	}

	n, err := p.Publish(ctx, tables)
	s.metrics.RecordsPublished.Add(float64(n))
	if err != nil {
		return n, fmt.Errorf("publish: %w", err)
	}
	s.logger.Info("records published", "records", n, "years", len(tables))
	return n, nil
}
