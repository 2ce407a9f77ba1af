package service

import (
	"strings"

	"github.com/noah-isme/sma-cover-api/internal/models"
)

// dayOffTeachers returns roster teachers with no recorded activity anywhere
// in the day's availability rows. They drop out of every availability and
// absence computation.
func dayOffTeachers(avail models.Table, roster models.TeacherRoster) map[string]bool {
	colIndex := columnIndex(avail.Columns)
	off := make(map[string]bool)
	for _, col := range roster.ColumnIDs {
		idx, ok := colIndex[col]
		if !ok {
			continue
		}
		allEmpty := true
		for _, row := range avail.Rows {
			if idx < len(row) && !isEmptyCell(row[idx]) {
				allEmpty = false
				break
			}
		}
		if allEmpty {
			off[roster.Names[col]] = true
		}
	}
	return off
}

// classifyAvailability walks the day's availability rows and emits, per hour
// 1..6, the teachers who could cover that hour. The exclusion chain short-
// circuits in order: day off, full-absence or no-assign match, hour-specific
// absence, already teaching at that hour. Survivors are classified by their
// cell: empty means a free period, the secondary-duty marker means an
// interruptible individual task, anything else disqualifies the hour.
func classifyAvailability(
	avail models.Table,
	roster models.TeacherRoster,
	rules models.AbsenceRules,
	occupancy occupancyIndex,
	secondaryDutyMarker string,
	dayOff map[string]bool,
) map[int][]models.AvailabilitySlot {
	colIndex := columnIndex(avail.Columns)
	blocked := append(append([]string{}, rules.FullDay...), rules.Excluded...)
	marker := strings.ToLower(secondaryDutyMarker)

	slots := make(map[int][]models.AvailabilitySlot)
	for _, row := range avail.Rows {
		if len(row) <= hourColumn {
			continue
		}
		hour, ok := parseHour(row[hourColumn])
		if !ok || hour > maxNeedHour {
			continue
		}

		for _, col := range roster.ColumnIDs {
			name := roster.Names[col]
			if dayOff[name] {
				continue
			}
			if matchesAny(blocked, name) {
				continue
			}
			if isTeacherAbsent(name, hour, nil, rules.Partial) {
				continue
			}
			if teachingAt(occupancy, hour, name) {
				continue
			}

			idx, ok := colIndex[col]
			if !ok || idx >= len(row) {
				continue
			}
			cell := parseAvailabilityCell(row[idx])
			switch {
			case cell.Kind == models.CellEmpty:
				slots[hour] = append(slots[hour], models.AvailabilitySlot{Teacher: name, Hour: hour, Kind: models.AvailabilityFree})
			case marker != "" && strings.Contains(strings.ToLower(cell.Text), marker):
				slots[hour] = append(slots[hour], models.AvailabilitySlot{Teacher: name, Hour: hour, Kind: models.AvailabilitySecondaryDuty})
			}
		}
	}
	return slots
}

func columnIndex(columns []string) map[string]int {
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		index[col] = i
	}
	return index
}

func matchesAny(rules []string, label string) bool {
	for _, rule := range rules {
		if nameMatches(rule, label) {
			return true
		}
	}
	return false
}

// teachingAt reports whether the teacher's name appears inside any occupant
// label recorded at the hour. This is independent of absence state.
func teachingAt(occupancy occupancyIndex, hour int, name string) bool {
	for _, slot := range occupancy[hour] {
		if strings.Contains(slot.Occupant.Text, name) {
			return true
		}
	}
	return false
}
