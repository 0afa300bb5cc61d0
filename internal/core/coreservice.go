package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jo-hoe/cnpdb/internal/backend/alignment"
	"github.com/jo-hoe/cnpdb/internal/backend/cache"
	"github.com/jo-hoe/cnpdb/internal/backend/charts"
	"github.com/jo-hoe/cnpdb/internal/backend/database"
	"github.com/jo-hoe/cnpdb/internal/backend/preprocess"
	"github.com/jo-hoe/cnpdb/internal/backend/properties"
	"github.com/jo-hoe/cnpdb/internal/backend/reference"
	"go.uber.org/multierr"
)

// ErrNotFound is returned for unknown peptide IDs
var ErrNotFound = errors.New("not found")

type CoreService struct {
	config          *ServiceConfig
	databaseService database.DatabaseService
	cache           cache.Cache
	loader          *reference.Loader
	invoker         *preprocess.CommandInvoker
	searcher        *alignment.Searcher
	now             func() time.Time
}

func NewCoreService(config *ServiceConfig) (*CoreService, error) {
	databaseService, err := getDatabaseService(config)
	if err != nil {
		return nil, err
	}

	resultCache, err := cache.New(context.Background(), config.Cache)
	if err != nil {
		_ = databaseService.Close()
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	slog.Info("cache initialized successfully", "type", config.Cache.Type)

	invoker, err := preprocess.NewCommandInvokerFromConfig(preprocess.DefaultRegistry, config.Commands)
	if err != nil {
		_ = multierr.Combine(databaseService.Close(), resultCache.Close())
		return nil, fmt.Errorf("failed to build preprocess pipeline: %w", err)
	}

	return &CoreService{
		config:          config,
		databaseService: databaseService,
		cache:           resultCache,
		loader:          reference.DefaultLoader,
		invoker:         invoker,
		searcher:        alignment.NewSearcher(config.Search.Workers),
		now:             time.Now,
	}, nil
}

func getDatabaseService(config *ServiceConfig) (database.DatabaseService, error) {
	databaseService, err := database.NewDatabase(config.Database.Type, config.Database.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("database initialized successfully", "type", config.Database.Type)
	return databaseService, nil
}

// Config returns the active configuration
func (service *CoreService) Config() *ServiceConfig {
	return service.config
}

// Table returns the reference table, loading it on first use
func (service *CoreService) Table() (*reference.Table, error) {
	ref := service.config.Reference
	table, err := service.loader.Load(ref.Path, ref.Sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference table: %w", err)
	}
	return table, nil
}

// FilterOptions returns the selectable values of every categorical column
func (service *CoreService) FilterOptions() (map[reference.CategoricalColumn][]string, error) {
	table, err := service.Table()
	if err != nil {
		return nil, err
	}
	options := make(map[reference.CategoricalColumn][]string, len(reference.CategoricalColumns))
	for _, column := range reference.CategoricalColumns {
		options[column] = table.UniqueValues(column)
	}
	return options, nil
}

func (service *CoreService) SearchPeptides(filter reference.Filter) ([]reference.Peptide, error) {
	table, err := service.Table()
	if err != nil {
		return nil, err
	}
	return table.Filter(filter), nil
}

func (service *CoreService) Peptide(id int) (reference.Peptide, error) {
	table, err := service.Table()
	if err != nil {
		return reference.Peptide{}, err
	}
	p, ok := table.ByID(id)
	if !ok {
		return reference.Peptide{}, fmt.Errorf("peptide %d: %w", id, ErrNotFound)
	}
	return p, nil
}

// CleanQuery runs the configured preprocessing pipeline, masking low-complexity runs on request
func (service *CoreService) CleanQuery(text string, maskLowComplexity bool) (string, error) {
	invoker := service.invoker
	if maskLowComplexity {
		mask, err := preprocess.DefaultRegistry.Create(preprocess.MaskLowComplexityName,
			map[string]any{"minRun": service.config.Search.MaskMinRun})
		if err != nil {
			return "", err
		}
		invoker = invoker.With(mask)
	}
	return invoker.Execute(text)
}

// DefaultSearchParams are the configured alignment settings
func (service *CoreService) DefaultSearchParams() alignment.Params {
	return service.config.Search.Params
}

// Blast cleans the query and scans the reference table. Results are cached.
func (service *CoreService) Blast(ctx context.Context, rawQuery string, params alignment.Params) (alignment.Result, error) {
	params = params.WithDefaults()
	if err := params.Validate(); err != nil {
		return alignment.Result{}, err
	}
	query, err := service.CleanQuery(rawQuery, params.LowComplexity)
	if err != nil {
		return alignment.Result{}, err
	}
	if err := alignment.ValidateQuery(query); err != nil {
		return alignment.Result{}, err
	}
	table, err := service.Table()
	if err != nil {
		return alignment.Result{}, err
	}

	key := service.blastCacheKey(table, query, params)
	if cached, ok := service.cachedResult(ctx, key); ok {
		slog.Debug("blast result served from cache", "query_length", len(query))
		return cached, nil
	}

	result, err := service.searcher.Search(ctx, query, table, params)
	if err != nil {
		return alignment.Result{}, err
	}
	service.storeResult(ctx, key, result)
	return result, nil
}

// BlastReport runs Blast and renders the plain-text report
func (service *CoreService) BlastReport(ctx context.Context, w io.Writer, rawQuery string, params alignment.Params) error {
	result, err := service.Blast(ctx, rawQuery, params)
	if err != nil {
		return err
	}
	return alignment.WriteReport(w, result)
}

func (service *CoreService) blastCacheKey(table *reference.Table, query string, params alignment.Params) string {
	encoded, _ := json.Marshal(params)
	return cache.Key("blast", table.Source(), table.Version(), query, string(encoded))
}

func (service *CoreService) cachedResult(ctx context.Context, key string) (alignment.Result, bool) {
	data, err := service.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			slog.Warn("blast cache read failed", "error", err)
		}
		return alignment.Result{}, false
	}
	var result alignment.Result
	if err := json.Unmarshal(data, &result); err != nil {
		slog.Warn("blast cache entry unreadable", "error", err)
		return alignment.Result{}, false
	}
	return result, true
}

func (service *CoreService) storeResult(ctx context.Context, key string, result alignment.Result) {
	data, err := json.Marshal(result)
	if err != nil {
		slog.Warn("blast result not cacheable", "error", err)
		return
	}
	if err := service.cache.Set(ctx, key, data, service.config.Cache.TTL); err != nil {
		slog.Warn("blast cache write failed", "error", err)
	}
}

func (service *CoreService) Properties(sequence string) (properties.Properties, error) {
	return properties.Calculate(sequence)
}

// Statistics summarizes the reference table and site usage
type Statistics struct {
	Peptides   int            `json:"peptides"`
	Families   []charts.Bar   `json:"families"`
	Organisms  []charts.Bar   `json:"organisms"`
	Tissues    []charts.Bar   `json:"tissues"`
	PageViews  map[string]int `json:"pageViews"`
	TotalViews int            `json:"totalViews"`
}

func (service *CoreService) Statistics() (Statistics, error) {
	table, err := service.Table()
	if err != nil {
		return Statistics{}, err
	}
	views, err := service.databaseService.CountPageViews()
	if err != nil {
		return Statistics{}, fmt.Errorf("failed to count page views: %w", err)
	}
	total := 0
	for _, n := range views {
		total += n
	}
	limit := service.config.Charts.Limit
	return Statistics{
		Peptides:   table.Len(),
		Families:   charts.Bars(table.CountBy(reference.FamilyColumn), limit),
		Organisms:  charts.Bars(table.CountBy(reference.OrganismColumn), limit),
		Tissues:    charts.Bars(table.CountBy(reference.TissueColumn), limit),
		PageViews:  views,
		TotalViews: total,
	}, nil
}

// CompositionChart renders the peptide count per organism as PNG
func (service *CoreService) CompositionChart() ([]byte, error) {
	table, err := service.Table()
	if err != nil {
		return nil, err
	}
	bars := charts.Bars(table.CountBy(reference.OrganismColumn), service.config.Charts.Limit)
	return charts.PNG(bars, service.config.Charts.Width)
}

func (service *CoreService) RecordPageView(path string) error {
	_, err := service.databaseService.RecordPageView(path, service.now())
	return err
}

// Submit stores a data submission and returns its ID
func (service *CoreService) Submit(submission database.Submission) (string, error) {
	submission.Name = strings.TrimSpace(submission.Name)
	submission.Email = strings.TrimSpace(submission.Email)
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = service.now()
	}
	id, err := service.databaseService.CreateSubmission(submission)
	if err != nil {
		return "", fmt.Errorf("failed to store submission: %w", err)
	}
	slog.Info("submission stored", "submission_id", id)
	return id, nil
}

func (service *CoreService) Submissions() ([]*database.Submission, error) {
	return service.databaseService.ListSubmissions()
}

func (service *CoreService) selected(ids []int) ([]reference.Peptide, error) {
	table, err := service.Table()
	if err != nil {
		return nil, err
	}
	peptides := table.Select(ids)
	if len(peptides) == 0 {
		return nil, fmt.Errorf("no peptides selected: %w", ErrNotFound)
	}
	return peptides, nil
}

func (service *CoreService) ExportFASTA(w io.Writer, ids []int) error {
	peptides, err := service.selected(ids)
	if err != nil {
		return err
	}
	return reference.WriteFASTA(w, peptides)
}

func (service *CoreService) ExportXLSX(w io.Writer, ids []int) error {
	peptides, err := service.selected(ids)
	if err != nil {
		return err
	}
	return reference.WriteXLSX(w, peptides)
}

// ExportZIP bundles the structure and imaging files of the selected peptides
func (service *CoreService) ExportZIP(w io.Writer, ids []int) (int, error) {
	peptides, err := service.selected(ids)
	if err != nil {
		return 0, err
	}
	return reference.WriteAssetsZip(w, service.config.Reference.AssetsDir, peptides)
}

func (service *CoreService) Close() error {
	return multierr.Combine(service.databaseService.Close(), service.cache.Close())
}
