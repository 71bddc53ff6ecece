package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/jengzang/reallocation-screener/internal/cleaning"
	"github.com/jengzang/reallocation-screener/internal/loader"
	"github.com/jengzang/reallocation-screener/internal/metrics"
	"github.com/jengzang/reallocation-screener/internal/models"
	"github.com/jengzang/reallocation-screener/internal/presentation"
	"github.com/jengzang/reallocation-screener/internal/screening"
	"github.com/jengzang/reallocation-screener/internal/upload"
)

// View kinds used as metric labels
const (
	kindView   = "view"
	kindMap    = "map"
	kindExport = "export"
)

// ScreeningService handles business logic for the screening dashboard
type ScreeningService struct {
	cache         *loader.Cache
	cleaner       *cleaning.Cleaner
	mapOpts       presentation.MapOptions
	stationColumn string
	logger        *zap.Logger

	// cleaned result of the current dataset, recomputed after a reload
	mu      sync.Mutex
	source  *loader.Dataset
	cleaned cleaning.Result
}

// ScreeningOptions configures the screening service
type ScreeningOptions struct {
	Map           presentation.MapOptions
	StationColumn string
}

// NewScreeningService creates a new screening service
func NewScreeningService(cache *loader.Cache, cleaner *cleaning.Cleaner, opts ScreeningOptions, logger *zap.Logger) *ScreeningService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScreeningService{
		cache:         cache,
		cleaner:       cleaner,
		mapOpts:       opts.Map,
		stationColumn: opts.StationColumn,
		logger:        logger,
	}
}

// working returns the table the filters operate on, cleaned unless disabled
func (s *ScreeningService) working(ctx context.Context, clean bool) (*loader.Dataset, cleaning.Result, error) {
	ds, err := s.cache.Get(ctx)
	if err != nil {
		return nil, cleaning.Result{}, fmt.Errorf("failed to load reallocation data: %w", err)
	}
	if !clean {
		return ds, s.cleaner.Apply(ds.Table, ds.ExcludeIDs, false), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source != ds {
		s.cleaned = s.cleaner.Apply(ds.Table, ds.ExcludeIDs, true)
		s.source = ds
		for _, step := range s.cleaned.Report.Steps {
			metrics.ObserveCleaning(step.Rule, step.Removed)
		}
		s.logger.Info("cleaning applied",
			zap.Int("before", s.cleaned.Report.Before),
			zap.Int("after", s.cleaned.Report.After),
			zap.Int("excluded", s.cleaned.Report.Excluded),
		)
	}
	return ds, s.cleaned, nil
}

// Options returns the cleaning report and the selectable filter values
func (s *ScreeningService) Options(ctx context.Context, clean bool) (*models.OptionsResponse, error) {
	ds, result, err := s.working(ctx, clean)
	if err != nil {
		return nil, err
	}

	opts, err := screening.BuildOptions(result.Table)
	if err != nil {
		return nil, err
	}

	return &models.OptionsResponse{
		Dataset:  ds.Info(),
		Cleaning: result.Report,
		Options:  opts,
	}, nil
}

// filtered computes the view for a request and records the outcome
func (s *ScreeningService) filtered(ctx context.Context, kind string, req models.ViewRequest) (*models.Table, cleaning.Result, error) {
	_, result, err := s.working(ctx, req.CleaningEnabled())
	if err != nil {
		metrics.ObserveView(kind, metrics.OutcomeError)
		return nil, result, err
	}

	view, err := screening.ComputeView(result.Table, req.Filters)
	switch {
	case errors.Is(err, screening.ErrNoData):
		metrics.ObserveView(kind, metrics.OutcomeNoData)
		return nil, result, err
	case err != nil:
		metrics.ObserveView(kind, metrics.OutcomeError)
		return nil, result, err
	}

	metrics.ObserveView(kind, metrics.OutcomeSuccess)
	return view, result, nil
}

// View returns the summary metrics and the filtered records
func (s *ScreeningService) View(ctx context.Context, req models.ViewRequest) (*models.ViewResponse, error) {
	view, result, err := s.filtered(ctx, kindView, req)
	if err != nil {
		return nil, err
	}

	return &models.ViewResponse{
		Summary:   presentation.Summarize(view),
		Cleaning:  result.Report,
		Highlight: screening.Summarize(stationSets(req)),
		Columns:   view.Columns,
		Rows:      view.Rows(),
	}, nil
}

// Map returns the map layer of the filtered view
func (s *ScreeningService) Map(ctx context.Context, req models.ViewRequest) (*presentation.MapLayer, error) {
	view, _, err := s.filtered(ctx, kindMap, req)
	if err != nil {
		return nil, err
	}
	return presentation.BuildMap(view, screening.HighlightSet(stationSets(req)), s.mapOpts), nil
}

// Export writes the filtered view as CSV and returns the number of rows written
func (s *ScreeningService) Export(ctx context.Context, req models.ViewRequest, w io.Writer) (int, error) {
	view, _, err := s.filtered(ctx, kindExport, req)
	if err != nil {
		return 0, err
	}

	n, err := presentation.WriteCSV(w, view)
	if err != nil {
		return n, fmt.Errorf("failed to export view: %w", err)
	}
	metrics.ObserveExport(n)
	return n, nil
}

// Highlight parses the uploaded collection and allocation lists. Either upload may be nil.
func (s *ScreeningService) Highlight(collection, allocation io.Reader) (models.HighlightSummary, error) {
	parse := func(r io.Reader) (screening.StationSet, error) {
		if r == nil {
			return screening.NewStationSet(nil), nil
		}
		return upload.ParseStationIDs(r, s.stationColumn)
	}

	c, err := parse(collection)
	if err != nil {
		return models.HighlightSummary{}, fmt.Errorf("collection: %w", err)
	}
	a, err := parse(allocation)
	if err != nil {
		return models.HighlightSummary{}, fmt.Errorf("allocation: %w", err)
	}
	return screening.Summarize(c, a), nil
}

// Reload discards the memoized dataset and loads it again
func (s *ScreeningService) Reload(ctx context.Context) (models.DatasetInfo, error) {
	s.cache.Invalidate()
	ds, err := s.cache.Get(ctx)
	if err != nil {
		return models.DatasetInfo{}, fmt.Errorf("failed to reload reallocation data: %w", err)
	}
	s.logger.Info("reallocation data reloaded", zap.Int("rows", ds.Table.Len()))
	return ds.Info(), nil
}

func stationSets(req models.ViewRequest) (collection, allocation screening.StationSet) {
	return screening.NewStationSet(req.CollectionIDs), screening.NewStationSet(req.AllocationIDs)
}
