package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-cover-api/internal/dto"
	"github.com/noah-isme/sma-cover-api/internal/models"
	appErrors "github.com/noah-isme/sma-cover-api/pkg/errors"
)

type timetableStore interface {
	Create(ctx context.Context, t *models.Timetable) error
	LatestByKind(ctx context.Context, kind models.TimetableKind) (*models.Timetable, error)
}

// TimetableService stores and serves the normalized tables the ingestion
// layer hands over.
type TimetableService struct {
	repo      timetableStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService wires the timetable dependencies.
func NewTimetableService(repo timetableStore, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{repo: repo, validator: validate, logger: logger}
}

// Upload validates and persists a normalized table. Malformed tables are
// rejected here so the engine never sees them.
func (s *TimetableService) Upload(ctx context.Context, kind models.TimetableKind, req dto.UploadTimetableRequest) (*models.Timetable, error) {
	if kind != models.TimetableKindClass && kind != models.TimetableKindAvailability {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown timetable kind")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}
	if req.Table.ColumnCount() < 2 {
		return nil, appErrors.Clone(appErrors.ErrMalformedTable, "timetable needs a day column and an hour column")
	}
	if kind == models.TimetableKindAvailability && len(req.Table.Rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrMalformedTable, "availability timetable has no rows")
	}

	payload, err := json.Marshal(req.Table)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode timetable")
	}

	record := &models.Timetable{
		ID:        uuid.NewString(),
		Kind:      kind,
		Name:      req.Name,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store timetable")
	}

	s.logger.Sugar().Infow("timetable stored", "kind", kind, "name", req.Name, "rows", len(req.Table.Rows))
	return record, nil
}

// Latest returns the newest stored table of the given kind.
func (s *TimetableService) Latest(ctx context.Context, kind models.TimetableKind) (*models.Timetable, *models.Table, error) {
	record, err := s.repo.LatestByKind(ctx, kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	var table models.Table
	if err := json.Unmarshal(record.Payload, &table); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrMalformedTable.Code, appErrors.ErrMalformedTable.Status, "stored timetable payload is corrupt")
	}
	return record, &table, nil
}
