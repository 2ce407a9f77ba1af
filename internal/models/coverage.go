package models

import "time"

// CoverageStatus is the lifecycle state of a coverage need. A need leaves
// the pending state exactly once and is never revisited.
type CoverageStatus string

const (
	CoverageStatusPending     CoverageStatus = "PENDING"
	CoverageStatusResolved    CoverageStatus = "RESOLVED"
	CoverageStatusAutoCovered CoverageStatus = "AUTO_COVERED"
	CoverageStatusUnresolved  CoverageStatus = "UNRESOLVED"
)

// Notes attached to terminal coverage decisions, preserving the reason a
// given name was chosen.
const (
	NoteExternalSubstitute = "external substitute"
	NoteInternalFree       = "internal substitute (free period)"
	NoteInternalSecondary  = "internal substitute (secondary duty)"
	NoteCoTeacherPresent   = "no substitute needed (co-teacher present)"
	NoteNoSubstituteFound  = "no substitute available"
)

// CoverageNeed is a teaching slot whose assigned teacher is absent.
type CoverageNeed struct {
	Hour           int            `json:"hour"`
	Room           string         `json:"room"`
	MissingTeacher string         `json:"missing_teacher"`
	Substitute     string         `json:"substitute,omitempty"`
	Note           string         `json:"note,omitempty"`
	Status         CoverageStatus `json:"status"`
}

// CoverageRun is a persisted engine invocation for one day.
type CoverageRun struct {
	ID          string    `db:"id" json:"id"`
	Day         string    `db:"day" json:"day"`
	TotalNeeds  int       `db:"total_needs" json:"total_needs"`
	Resolved    int       `db:"resolved" json:"resolved"`
	AutoCovered int       `db:"auto_covered" json:"auto_covered"`
	Unresolved  int       `db:"unresolved" json:"unresolved"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CoverageNeedRecord is the stored form of one need within a run, keyed by
// extraction position so the greedy processing order survives a round trip.
type CoverageNeedRecord struct {
	ID             string         `db:"id" json:"id"`
	RunID          string         `db:"run_id" json:"run_id"`
	Position       int            `db:"position" json:"position"`
	Hour           int            `db:"hour" json:"hour"`
	Room           string         `db:"room" json:"room"`
	MissingTeacher string         `db:"missing_teacher" json:"missing_teacher"`
	Substitute     string         `db:"substitute" json:"substitute,omitempty"`
	Note           string         `db:"note" json:"note,omitempty"`
	Status         CoverageStatus `db:"status" json:"status"`
}

// CoverageRunFilter describes query params for listing runs.
type CoverageRunFilter struct {
	Day      string
	Page     int
	PageSize int
}
