package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-cover-api/internal/dto"
	"github.com/noah-isme/sma-cover-api/internal/models"
	"github.com/noah-isme/sma-cover-api/pkg/config"
	appErrors "github.com/noah-isme/sma-cover-api/pkg/errors"
	"github.com/noah-isme/sma-cover-api/pkg/export"
)

type timetableSource interface {
	LatestByKind(ctx context.Context, kind models.TimetableKind) (*models.Timetable, error)
}

type coverageRunStore interface {
	CreateWithNeeds(ctx context.Context, run *models.CoverageRun, needs []models.CoverageNeedRecord) error
	FindByID(ctx context.Context, id string) (*models.CoverageRun, error)
	ListNeeds(ctx context.Context, runID string) ([]models.CoverageNeedRecord, error)
	List(ctx context.Context, filter models.CoverageRunFilter) ([]models.CoverageRun, int, error)
}

type runCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CoverageService runs the need-detection and greedy assignment pipeline for
// one day and persists the outcome.
type CoverageService struct {
	tables    timetableSource
	runs      coverageRunStore
	cache     runCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       config.CoverageConfig
}

// NewCoverageService wires the coverage pipeline dependencies.
func NewCoverageService(
	tables timetableSource,
	runs coverageRunStore,
	cache runCache,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg config.CoverageConfig,
) *CoverageService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoverageService{
		tables:    tables,
		runs:      runs,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Generate produces the day's coverage plan: extract needs from the class
// table, classify internal availability, assign substitutes greedily, then
// persist the run. The engine itself is a pure pass over in-memory tables;
// everything that can fail is checked before it starts.
func (s *CoverageService) Generate(ctx context.Context, req dto.GenerateCoverageRequest) (*dto.GenerateCoverageResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid coverage generation payload")
	}

	classTable, err := s.loadTable(ctx, models.TimetableKindClass)
	if err != nil {
		return nil, err
	}
	availTable, err := s.loadTable(ctx, models.TimetableKindAvailability)
	if err != nil {
		return nil, err
	}
	if err := validateTables(*classTable, *availTable); err != nil {
		return nil, err
	}

	constraints := mergeConstraints(generateInputs{
		FullDay:       req.FullDayAbsences,
		FullDayText:   req.FullDayAbsencesText,
		Partial:       req.PartialAbsences,
		PartialText:   req.PartialAbsencesText,
		NoAssign:      req.NoAssign,
		NoAssignText:  req.NoAssignText,
		Externals:     toExternals(req.ExternalSubstitutes),
		ExternalsText: req.ExternalSubstitutesText,
	})

	class := normalizeTable(*classTable)
	avail := normalizeTable(*availTable)
	roster := deriveRoster(avail, s.cfg)
	dailyClass := filterDay(class, req.Day, req.DayAliases)
	dailyAvail := filterDay(avail, req.Day, req.DayAliases)
	dayOff := dayOffTeachers(dailyAvail, roster)

	extracted := extractCoverageNeeds(dailyClass, constraints.Absences)
	availability := classifyAvailability(dailyAvail, roster, constraints.Absences, extracted.occupancy, s.cfg.SecondaryDutyMarker, dayOff)

	state := newAssignmentState(constraints.Externals, roster)
	assignSubstitutes(extracted.needs, constraints.Externals, availability, state)

	run := &models.CoverageRun{
		ID:        uuid.NewString(),
		Day:       req.Day,
		CreatedAt: time.Now().UTC(),
	}
	records := make([]models.CoverageNeedRecord, 0, len(extracted.needs))
	for i, need := range extracted.needs {
		run.TotalNeeds++
		switch need.Status {
		case models.CoverageStatusResolved:
			run.Resolved++
		case models.CoverageStatusAutoCovered:
			run.AutoCovered++
		case models.CoverageStatusUnresolved:
			run.Unresolved++
		}
		records = append(records, models.CoverageNeedRecord{
			ID:             uuid.NewString(),
			RunID:          run.ID,
			Position:       i + 1,
			Hour:           need.Hour,
			Room:           need.Room,
			MissingTeacher: need.MissingTeacher,
			Substitute:     need.Substitute,
			Note:           need.Note,
			Status:         need.Status,
		})
	}

	if s.runs != nil {
		if err := s.runs.CreateWithNeeds(ctx, run, records); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist coverage run")
		}
	}

	resp := buildResponse(run, records)
	if len(records) == 0 {
		resp.Diagnostics = &dto.CoverageDiagnostics{
			ClassRowsMatched:        extracted.rowsMatched,
			AvailabilityRowsMatched: len(dailyAvail.Rows),
			RosterSize:              len(roster.ColumnIDs),
			DayOffTeachers:          sortedKeys(dayOff),
		}
	}

	s.cacheRun(ctx, run.ID, resp)
	if s.metrics != nil {
		s.metrics.ObserveRun(resp.Summary)
	}
	s.logger.Sugar().Infow("coverage run generated",
		"run_id", run.ID,
		"day", req.Day,
		"needs", run.TotalNeeds,
		"resolved", run.Resolved,
		"auto_covered", run.AutoCovered,
		"unresolved", run.Unresolved,
	)
	return resp, nil
}

// GetRun fetches a persisted run, serving from Redis when possible.
func (s *CoverageService) GetRun(ctx context.Context, runID string) (*dto.GenerateCoverageResponse, error) {
	if runID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "run id is required")
	}
	if s.cache != nil {
		var cached dto.GenerateCoverageResponse
		if err := s.cache.Get(ctx, runCacheKey(runID), &cached); err == nil {
			return &cached, nil
		}
	}

	run, err := s.runs.FindByID(ctx, runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "coverage run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load coverage run")
	}
	records, err := s.runs.ListNeeds(ctx, runID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load coverage needs")
	}

	resp := buildResponse(run, records)
	s.cacheRun(ctx, runID, resp)
	return resp, nil
}

// ListRuns returns persisted runs, newest first.
func (s *CoverageService) ListRuns(ctx context.Context, filter models.CoverageRunFilter) ([]models.CoverageRun, *models.Pagination, error) {
	runs, total, err := s.runs.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list coverage runs")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return runs, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// RunDataset renders a run into the tabular form shared by CSV and PDF
// exports.
func (s *CoverageService) RunDataset(ctx context.Context, runID string) (export.Dataset, *models.CoverageRun, error) {
	run, err := s.runs.FindByID(ctx, runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return export.Dataset{}, nil, appErrors.Clone(appErrors.ErrNotFound, "coverage run not found")
		}
		return export.Dataset{}, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load coverage run")
	}
	records, err := s.runs.ListNeeds(ctx, runID)
	if err != nil {
		return export.Dataset{}, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load coverage needs")
	}

	dataset := export.Dataset{Headers: []string{"Hour", "Room", "Missing Teacher", "Substitute", "Note", "Status"}}
	for _, rec := range records {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Hour":            fmt.Sprintf("%d", rec.Hour),
			"Room":            rec.Room,
			"Missing Teacher": rec.MissingTeacher,
			"Substitute":      rec.Substitute,
			"Note":            rec.Note,
			"Status":          string(rec.Status),
		})
	}
	return dataset, run, nil
}

func (s *CoverageService) loadTable(ctx context.Context, kind models.TimetableKind) (*models.Table, error) {
	if s.tables == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "timetable source missing")
	}
	stored, err := s.tables.LatestByKind(ctx, kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("%s timetable not uploaded", kind))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	var table models.Table
	if err := json.Unmarshal(stored.Payload, &table); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMalformedTable.Code, appErrors.ErrMalformedTable.Status, "stored timetable payload is corrupt")
	}
	return &table, nil
}

// validateTables rejects malformed inputs before the engine runs; the engine
// itself has no fatal conditions.
func validateTables(class, avail models.Table) error {
	if class.ColumnCount() < 2 || avail.ColumnCount() < 2 {
		return appErrors.Clone(appErrors.ErrMalformedTable, "both timetables need a day column and an hour column")
	}
	if len(avail.Rows) == 0 {
		return appErrors.Clone(appErrors.ErrMalformedTable, "availability timetable has no rows")
	}
	return nil
}

func (s *CoverageService) cacheRun(ctx context.Context, runID string, resp *dto.GenerateCoverageResponse) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, runCacheKey(runID), resp, s.cfg.RunCacheTTL); err != nil {
		s.logger.Sugar().Warnw("failed to cache coverage run", "run_id", runID, "error", err)
	}
}

func runCacheKey(runID string) string {
	return "coverage:run:" + runID
}

func toExternals(reqs []dto.ExternalSubstituteRequest) []models.ExternalSubstitute {
	out := make([]models.ExternalSubstitute, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, models.ExternalSubstitute{Name: r.Name, Hours: r.Hours})
	}
	return out
}

func buildResponse(run *models.CoverageRun, records []models.CoverageNeedRecord) *dto.GenerateCoverageResponse {
	resp := &dto.GenerateCoverageResponse{
		RunID: run.ID,
		Day:   run.Day,
		Summary: dto.CoverageSummary{
			Total:       run.TotalNeeds,
			Resolved:    run.Resolved,
			AutoCovered: run.AutoCovered,
			Unresolved:  run.Unresolved,
		},
	}

	groupIndex := make(map[string]int)
	for _, rec := range records {
		view := dto.CoverageNeedView{
			Position:       rec.Position,
			Hour:           rec.Hour,
			Room:           rec.Room,
			MissingTeacher: rec.MissingTeacher,
			Substitute:     rec.Substitute,
			Note:           rec.Note,
			Status:         rec.Status,
		}
		resp.Needs = append(resp.Needs, view)

		idx, ok := groupIndex[rec.MissingTeacher]
		if !ok {
			idx = len(resp.Groups)
			groupIndex[rec.MissingTeacher] = idx
			resp.Groups = append(resp.Groups, dto.TeacherGroup{MissingTeacher: rec.MissingTeacher})
		}
		resp.Groups[idx].Needs = append(resp.Groups[idx].Needs, view)
	}
	return resp
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
