package service

import "github.com/noah-isme/sma-cover-api/internal/models"

// occupancyIndex records every occupied slot seen per hour, whether or not
// it produced a need. The availability classifier uses it for its busy
// check.
type occupancyIndex map[int][]models.TeachingSlot

// extraction is the output of one pass over the day's class timetable.
type extraction struct {
	needs       []models.CoverageNeed
	occupancy   occupancyIndex
	rowsMatched int
}

// extractCoverageNeeds scans the day's class rows in row order, then column
// order. Every non-empty occupant cell lands in the occupancy index; a
// coverage need is emitted only for hours 1..6 whose occupant is absent.
// Needs covered by a present co-teacher are terminal immediately; the rest
// stay pending for the assignment engine.
func extractCoverageNeeds(class models.Table, rules models.AbsenceRules) extraction {
	result := extraction{occupancy: make(occupancyIndex)}

	for _, row := range class.Rows {
		result.rowsMatched++
		if len(row) <= hourColumn {
			continue
		}
		hour, ok := parseHour(row[hourColumn])
		if !ok || hour > maxTrackedHour {
			continue
		}

		for col := hourColumn + 1; col < len(row) && col < len(class.Columns); col++ {
			label := row[col]
			if isEmptyCell(label) {
				continue
			}
			occupant := parseOccupantCell(label)
			result.occupancy[hour] = append(result.occupancy[hour], models.TeachingSlot{
				Hour:     hour,
				RoomID:   class.Columns[col],
				Occupant: occupant,
			})
			if hour > maxNeedHour {
				continue
			}
			if !isTeacherAbsent(label, hour, rules.FullDay, rules.Partial) {
				continue
			}

			need := models.CoverageNeed{
				Hour:           hour,
				Room:           class.Columns[col],
				MissingTeacher: label,
				Status:         models.CoverageStatusPending,
			}
			if coTeacherPresent(occupant, hour, rules) {
				need.Status = models.CoverageStatusAutoCovered
				need.Note = models.NoteCoTeacherPresent
			}
			result.needs = append(result.needs, need)
		}
	}
	return result
}
