package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-cover-api/internal/dto"
	"github.com/noah-isme/sma-cover-api/internal/models"
	appErrors "github.com/noah-isme/sma-cover-api/pkg/errors"
	"github.com/noah-isme/sma-cover-api/pkg/export"
	"github.com/noah-isme/sma-cover-api/pkg/jobs"
	"github.com/noah-isme/sma-cover-api/pkg/storage"
)

const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type datasetSource interface {
	RunDataset(ctx context.Context, runID string) (export.Dataset, *models.CoverageRun, error)
}

type exportJobPayload struct {
	RunID   string
	Format  string
	RelPath string
}

// ExportService renders coverage reports synchronously or through the
// background queue with signed download links.
type ExportService struct {
	data    datasetSource
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	storage *storage.LocalStorage
	signer  *storage.SignedURLSigner
	queue   *jobs.Queue
	logger  *zap.Logger
}

// ExportServiceConfig tunes the export worker pool.
type ExportServiceConfig struct {
	Workers    int
	MaxRetries int
}

// NewExportService wires renderers, storage, and the job queue.
func NewExportService(
	data datasetSource,
	store *storage.LocalStorage,
	signer *storage.SignedURLSigner,
	logger *zap.Logger,
	cfg ExportServiceConfig,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExportService{
		data:    data,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		storage: store,
		signer:  signer,
		logger:  logger,
	}
	s.queue = jobs.NewQueue("exports", s.process, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the export workers.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the export workers.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Render produces the report bytes for a run in the requested format.
func (s *ExportService) Render(ctx context.Context, runID, format string) ([]byte, string, string, error) {
	dataset, run, err := s.data.RunDataset(ctx, runID)
	if err != nil {
		return nil, "", "", err
	}

	switch format {
	case ExportFormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return data, exportFilename(run, format), "text/csv", nil
	case ExportFormatPDF:
		data, err := s.pdf.Render(dataset, fmt.Sprintf("Substitute coverage - %s", run.Day))
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return data, exportFilename(run, format), "application/pdf", nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

// Enqueue schedules background rendering and returns a signed download link
// that becomes valid once the worker finishes.
func (s *ExportService) Enqueue(ctx context.Context, runID, format string) (*dto.ExportJobResponse, error) {
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if _, _, err := s.data.RunDataset(ctx, runID); err != nil {
		return nil, err
	}

	jobID := uuid.NewString()
	relPath := fmt.Sprintf("%s.%s", runID, format)
	if err := s.queue.Enqueue(jobs.Job{
		ID:      jobID,
		Type:    "render_export",
		Payload: exportJobPayload{RunID: runID, Format: format, RelPath: relPath},
	}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}

	token, expiresAt, err := s.signer.Generate(jobID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
	}
	return &dto.ExportJobResponse{
		JobID:       jobID,
		Format:      format,
		DownloadURL: "/api/v1/exports/" + token,
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// Download validates a signed token and opens the rendered artifact. The
// file is missing until the worker has finished.
func (s *ExportService) Download(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export not ready or expired")
	}
	return file, contentTypeFor(relPath), nil
}

func (s *ExportService) process(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(exportJobPayload)
	if !ok {
		return fmt.Errorf("unexpected export payload type %T", job.Payload)
	}
	data, _, _, err := s.Render(ctx, payload.RunID, payload.Format)
	if err != nil {
		return fmt.Errorf("render export %s: %w", payload.RunID, err)
	}
	if _, err := s.storage.Save(payload.RelPath, data); err != nil {
		return err
	}
	s.logger.Sugar().Infow("export rendered", "run_id", payload.RunID, "format", payload.Format)
	return nil
}

func exportFilename(run *models.CoverageRun, format string) string {
	return fmt.Sprintf("coverage_%s_%s.%s", run.Day, run.CreatedAt.Format("20060102"), format)
}

func contentTypeFor(relPath string) string {
	switch filepath.Ext(relPath) {
	case ".csv":
		return "text/csv"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
