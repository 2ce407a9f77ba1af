package models

// AbsenceRules bundles the day's absence and exclusion lists. Rule names are
// matched by substring containment against occupant labels, never by
// equality, so partial names and nicknames keep working.
type AbsenceRules struct {
	// FullDay lists teachers absent for the whole day.
	FullDay []string `json:"full_day"`
	// Partial maps a teacher name to the hours they are away.
	Partial map[string][]int `json:"partial"`
	// Excluded lists teachers who must never be assigned as substitutes.
	Excluded []string `json:"excluded"`
}

// ExternalSubstitute is a non-roster person available at declared hours.
// Pool order is the configured order and doubles as assignment priority.
type ExternalSubstitute struct {
	Name  string `json:"name"`
	Hours []int  `json:"hours"`
}

// DailyConstraints is the full constraint set for one day's run.
type DailyConstraints struct {
	Absences  AbsenceRules         `json:"absences"`
	Externals []ExternalSubstitute `json:"externals"`
}
