package dto

import "github.com/noah-isme/sma-cover-api/internal/models"

// UploadTimetableRequest stores a normalized table of one kind.
type UploadTimetableRequest struct {
	Name  string       `json:"name"`
	Table models.Table `json:"table" validate:"required"`
}

// ExternalSubstituteRequest declares an external substitute's hours for the
// day. Request order is the assignment priority order.
type ExternalSubstituteRequest struct {
	Name  string `json:"name" validate:"required"`
	Hours []int  `json:"hours" validate:"required,min=1,dive,min=1,max=7"`
}

// GenerateCoverageRequest instructs the engine to build the day's coverage
// plan. Constraints arrive either structured or in the free-text forms the
// daily planning form collects ("name, name" lists and "name:h1,h2" lines);
// both are merged, structured entries first.
type GenerateCoverageRequest struct {
	Day        string   `json:"day" validate:"required"`
	DayAliases []string `json:"dayAliases"`

	FullDayAbsences     []string                    `json:"fullDayAbsences"`
	PartialAbsences     map[string][]int            `json:"partialAbsences"`
	ExternalSubstitutes []ExternalSubstituteRequest `json:"externalSubstitutes" validate:"omitempty,dive"`
	NoAssign            []string                    `json:"noAssign"`

	FullDayAbsencesText     string `json:"fullDayAbsencesText"`
	PartialAbsencesText     string `json:"partialAbsencesText"`
	ExternalSubstitutesText string `json:"externalSubstitutesText"`
	NoAssignText            string `json:"noAssignText"`
}

// CoverageNeedView is one coverage decision in extraction order.
type CoverageNeedView struct {
	Position       int                   `json:"position"`
	Hour           int                   `json:"hour"`
	Room           string                `json:"room"`
	MissingTeacher string                `json:"missingTeacher"`
	Substitute     string                `json:"substitute,omitempty"`
	Note           string                `json:"note,omitempty"`
	Status         models.CoverageStatus `json:"status"`
}

// TeacherGroup clusters needs by missing teacher for display, in first-seen
// order.
type TeacherGroup struct {
	MissingTeacher string             `json:"missingTeacher"`
	Needs          []CoverageNeedView `json:"needs"`
}

// CoverageSummary counts terminal statuses for one run.
type CoverageSummary struct {
	Total       int `json:"total"`
	Resolved    int `json:"resolved"`
	AutoCovered int `json:"autoCovered"`
	Unresolved  int `json:"unresolved"`
}

// CoverageDiagnostics helps operators understand an empty result.
type CoverageDiagnostics struct {
	ClassRowsMatched        int      `json:"classRowsMatched"`
	AvailabilityRowsMatched int      `json:"availabilityRowsMatched"`
	RosterSize              int      `json:"rosterSize"`
	DayOffTeachers          []string `json:"dayOffTeachers,omitempty"`
}

// GenerateCoverageResponse returns the persisted run with its decisions.
type GenerateCoverageResponse struct {
	RunID       string               `json:"runId"`
	Day         string               `json:"day"`
	Needs       []CoverageNeedView   `json:"needs"`
	Groups      []TeacherGroup       `json:"groups"`
	Summary     CoverageSummary      `json:"summary"`
	Diagnostics *CoverageDiagnostics `json:"diagnostics,omitempty"`
}

// ExportJobResponse acknowledges an asynchronous export request.
type ExportJobResponse struct {
	JobID       string `json:"jobId"`
	Format      string `json:"format"`
	DownloadURL string `json:"downloadUrl"`
	ExpiresAt   string `json:"expiresAt"`
}
