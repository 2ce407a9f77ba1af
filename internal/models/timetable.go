package models

import "time"

// TimetableKind distinguishes the two tables a school uploads.
type TimetableKind string

const (
	TimetableKindClass        TimetableKind = "class"
	TimetableKindAvailability TimetableKind = "availability"
)

// Table is a normalized tabular timetable handed over by the ingestion layer.
// Column 0 carries the (forward-filled) day label, column 1 the hour text.
// For the class table the remaining columns are room identifiers; for the
// availability table they are roster column identifiers whose first data row
// holds each teacher's display name.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ColumnCount returns the number of header columns.
func (t Table) ColumnCount() int {
	return len(t.Columns)
}

// Cell returns the trimmed cell value at (row, col), or "" when out of range.
func (t Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	cells := t.Rows[row]
	if col < 0 || col >= len(cells) {
		return ""
	}
	return cells[col]
}

// Timetable is a stored normalized table of one kind.
type Timetable struct {
	ID        string        `db:"id" json:"id"`
	Kind      TimetableKind `db:"kind" json:"kind"`
	Name      string        `db:"name" json:"name"`
	Payload   []byte        `db:"payload" json:"-"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

// CellKind tags the semantic content of a timetable cell. Free text is
// classified exactly once at ingestion and consumed uniformly afterwards.
type CellKind string

const (
	CellEmpty         CellKind = "EMPTY"
	CellSingleName    CellKind = "SINGLE_NAME"
	CellCoTeaching    CellKind = "CO_TEACHING"
	CellOtherActivity CellKind = "OTHER_ACTIVITY"
)

// CellContent is the parsed form of an occupant or availability cell.
type CellContent struct {
	Kind  CellKind `json:"kind"`
	Text  string   `json:"text"`
	Names []string `json:"names,omitempty"`
}

// TeachingSlot records one occupied room at one hour of the target day.
type TeachingSlot struct {
	Hour     int         `json:"hour"`
	RoomID   string      `json:"room_id"`
	Occupant CellContent `json:"occupant"`
}

// TeacherRoster maps availability column identifiers to canonical teacher
// display names, preserving column order.
type TeacherRoster struct {
	ColumnIDs []string          `json:"column_ids"`
	Names     map[string]string `json:"names"`
}

// Teachers returns display names in column order.
func (r TeacherRoster) Teachers() []string {
	out := make([]string, 0, len(r.ColumnIDs))
	for _, col := range r.ColumnIDs {
		out = append(out, r.Names[col])
	}
	return out
}

// AvailabilityKind ranks how interruptible a teacher is at a given hour.
type AvailabilityKind string

const (
	// AvailabilityFree marks an hour with no assigned duty at all.
	AvailabilityFree AvailabilityKind = "FREE"
	// AvailabilitySecondaryDuty marks a lower-priority individual task the
	// teacher is pulled from only when nobody is fully free.
	AvailabilitySecondaryDuty AvailabilityKind = "SECONDARY_DUTY"
)

// AvailabilitySlot states that a teacher can cover a given hour.
type AvailabilitySlot struct {
	Teacher string           `json:"teacher"`
	Hour    int              `json:"hour"`
	Kind    AvailabilityKind `json:"kind"`
}

// Pagination describes paging metadata on list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
