package imports

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/meganoshop/megano-backend/pkg/config"
	"github.com/meganoshop/megano-backend/pkg/db/models"
	"github.com/meganoshop/megano-backend/pkg/enums"
	pkgerrors "github.com/meganoshop/megano-backend/pkg/errors"
	"github.com/meganoshop/megano-backend/pkg/logger"
	"github.com/meganoshop/megano-backend/pkg/metrics"
	"github.com/shopspring/decimal"
)

const metricJob = "seller_listings"

type repository interface {
	SellerExists(ctx context.Context, sellerID uuid.UUID) (bool, error)
	ProductExists(ctx context.Context, productID uuid.UUID) (bool, error)
	UpsertListing(ctx context.Context, sellerID, productID uuid.UUID, price decimal.Decimal, quantity int) error
	CreateJob(ctx context.Context, job *models.ImportJob) error
	UpdateJob(ctx context.Context, job *models.ImportJob) error
}

// ServiceParams groups dependencies for the import service.
type ServiceParams struct {
	Repo    repository
	Config  config.ImportConfig
	Metrics *metrics.ImportJobMetrics
	Logger  *logger.Logger
}

// Service imports seller listing JSON files. A file lands in the success dir
// only when every item imported; any item failure sends it to the failure dir
// while the good items stay imported.
type Service interface {
	ProcessFile(ctx context.Context, path string) (Result, error)
	ScanInbox(ctx context.Context) ([]Result, error)
}

type service struct {
	repo    repository
	cfg     config.ImportConfig
	metrics *metrics.ImportJobMetrics
	logg    *logger.Logger
}

// NewService builds an import service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "import repo is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		repo:    params.Repo,
		cfg:     params.Config,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

// ScanInbox processes every JSON file currently in the inbox. A broken file
// does not stop the scan.
func (s *service) ScanInbox(ctx context.Context) ([]Result, error) {
	paths, err := filepath.Glob(filepath.Join(s.cfg.InboxDir, "*.json"))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "scan inbox")
	}

	var results []Result
	for _, path := range paths {
		result, err := s.ProcessFile(ctx, path)
		if err != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"file":  path,
				"error": err.Error(),
			}), "import file failed")
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

// ProcessFile imports one file and moves it to the success or failure dir.
func (s *service) ProcessFile(ctx context.Context, path string) (Result, error) {
	started := time.Now()
	fileName := filepath.Base(path)

	job := &models.ImportJob{
		FileName:  fileName,
		Status:    enums.ImportStatusRunning,
		StartedAt: &started,
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create import job")
	}

	items, readErr := readItems(path)
	if readErr != nil {
		s.finishJob(ctx, job, 0, 0, readErr.Error())
		dest := s.moveFile(ctx, path, s.cfg.FailureDir)
		s.metrics.IncFailure(metricJob)
		s.metrics.ObserveDuration(metricJob, time.Since(started))
		return Result{FileName: fileName, MovedTo: dest}, nil
	}

	processed, failed := 0, 0
	for index, item := range items {
		if err := s.importItem(ctx, item); err != nil {
			failed++
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"file":  fileName,
				"index": index,
				"error": err.Error(),
			}), "import item rejected")
			continue
		}
		processed++
	}

	message := ""
	destDir := s.cfg.SuccessDir
	if failed > 0 {
		message = fmt.Sprintf("%d of %d items rejected", failed, len(items))
		destDir = s.cfg.FailureDir
		s.metrics.IncFailure(metricJob)
	} else {
		s.metrics.IncSuccess(metricJob)
	}
	s.metrics.AddRows(metricJob, processed)
	s.metrics.ObserveDuration(metricJob, time.Since(started))

	s.finishJob(ctx, job, processed, failed, message)
	dest := s.moveFile(ctx, path, destDir)

	return Result{FileName: fileName, Processed: processed, Failed: failed, MovedTo: dest}, nil
}

// importItem writes one listing. Panics from a malformed item count as item
// failures, not batch failures.
func (s *service) importItem(ctx context.Context, item Item) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("item panicked: %v", rec)
		}
	}()

	if item.SellerID == uuid.Nil {
		return fmt.Errorf("missing seller id")
	}
	if item.ProductID == uuid.Nil {
		return fmt.Errorf("missing product id")
	}
	if !item.Price.IsPositive() {
		return fmt.Errorf("price must be positive")
	}
	if item.Quantity < 0 {
		return fmt.Errorf("quantity must not be negative")
	}

	sellerOK, err := s.repo.SellerExists(ctx, item.SellerID)
	if err != nil {
		return err
	}
	if !sellerOK {
		return fmt.Errorf("unknown seller %s", item.SellerID)
	}
	productOK, err := s.repo.ProductExists(ctx, item.ProductID)
	if err != nil {
		return err
	}
	if !productOK {
		return fmt.Errorf("unknown product %s", item.ProductID)
	}

	return s.repo.UpsertListing(ctx, item.SellerID, item.ProductID, item.Price, item.Quantity)
}

func (s *service) finishJob(ctx context.Context, job *models.ImportJob, processed, failed int, message string) {
	finished := time.Now()
	job.Processed = processed
	job.Failed = failed
	job.Message = message
	job.FinishedAt = &finished
	job.Status = enums.ImportStatusSucceeded
	if failed > 0 || message != "" {
		job.Status = enums.ImportStatusFailed
	}
	if err := s.repo.UpdateJob(ctx, job); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "import job update failed")
	}
}

// moveFile relocates the processed file; returns the destination path, or the
// original on failure.
func (s *service) moveFile(ctx context.Context, path, destDir string) string {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "import dir create failed")
		return path
	}
	dest := filepath.Join(destDir, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "import file move failed")
		return path
	}
	return dest
}

func readItems(path string) ([]Item, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("malformed import file: %w", err)
	}
	return items, nil
}
