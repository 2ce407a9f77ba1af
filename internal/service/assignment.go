package service

import (
	"sort"

	"github.com/noah-isme/sma-cover-api/internal/models"
)

// assignmentState carries the capacity counters for a single run. A fresh
// instance is created per generate call and discarded afterwards; runs for
// different days must never share one.
type assignmentState struct {
	externalUsedHours  map[string]map[int]bool
	internalDailyCount map[string]int
}

func newAssignmentState(externals []models.ExternalSubstitute, roster models.TeacherRoster) *assignmentState {
	state := &assignmentState{
		externalUsedHours:  make(map[string]map[int]bool, len(externals)),
		internalDailyCount: make(map[string]int),
	}
	for _, ext := range externals {
		state.externalUsedHours[ext.Name] = make(map[int]bool)
	}
	for _, name := range roster.Teachers() {
		state.internalDailyCount[name] = 0
	}
	return state
}

// assignSubstitutes resolves pending needs greedily, in extraction order.
// Extraction order is the only tie-break when a scarce substitute could
// cover several rooms at the same hour. Externals are tried first in pool
// order and are capped per hour; internals are capped at one assignment for
// the whole day, free periods before secondary duties. Each need reaches a
// terminal status exactly once.
func assignSubstitutes(
	needs []models.CoverageNeed,
	externals []models.ExternalSubstitute,
	availability map[int][]models.AvailabilitySlot,
	state *assignmentState,
) {
	for i := range needs {
		need := &needs[i]
		if need.Status != models.CoverageStatusPending {
			continue
		}

		if assignExternal(need, externals, state) {
			continue
		}
		if assignInternal(need, needs[:i], availability, state) {
			continue
		}

		need.Status = models.CoverageStatusUnresolved
		need.Note = models.NoteNoSubstituteFound
	}
}

// assignExternal picks the first pool substitute available at the hour who
// has not been used at that hour yet. Externals may be reused at other
// hours the same day.
func assignExternal(need *models.CoverageNeed, externals []models.ExternalSubstitute, state *assignmentState) bool {
	for _, ext := range externals {
		if !hasHour(ext.Hours, need.Hour) {
			continue
		}
		used := state.externalUsedHours[ext.Name]
		if used == nil {
			used = make(map[int]bool)
			state.externalUsedHours[ext.Name] = used
		}
		if used[need.Hour] {
			continue
		}
		used[need.Hour] = true
		need.Substitute = ext.Name
		need.Note = models.NoteExternalSubstitute
		need.Status = models.CoverageStatusResolved
		return true
	}
	return false
}

// assignInternal walks the hour's availability slots, free periods first
// (stable sort keeps roster order within each kind), and takes the first
// teacher with no assignment today who is not already substituting at this
// hour.
func assignInternal(
	need *models.CoverageNeed,
	decided []models.CoverageNeed,
	availability map[int][]models.AvailabilitySlot,
	state *assignmentState,
) bool {
	candidates := make([]models.AvailabilitySlot, len(availability[need.Hour]))
	copy(candidates, availability[need.Hour])
	sort.SliceStable(candidates, func(i, j int) bool {
		return kindPriority(candidates[i].Kind) < kindPriority(candidates[j].Kind)
	})

	for _, slot := range candidates {
		if state.internalDailyCount[slot.Teacher] > 0 {
			continue
		}
		if substituteBusyAt(decided, need.Hour, slot.Teacher) {
			continue
		}
		state.internalDailyCount[slot.Teacher]++
		need.Substitute = slot.Teacher
		need.Status = models.CoverageStatusResolved
		if slot.Kind == models.AvailabilityFree {
			need.Note = models.NoteInternalFree
		} else {
			need.Note = models.NoteInternalSecondary
		}
		return true
	}
	return false
}

func kindPriority(kind models.AvailabilityKind) int {
	if kind == models.AvailabilityFree {
		return 0
	}
	return 1
}

func substituteBusyAt(decided []models.CoverageNeed, hour int, teacher string) bool {
	for _, other := range decided {
		if other.Hour == hour && other.Substitute == teacher {
			return true
		}
	}
	return false
}

func hasHour(hours []int, hour int) bool {
	for _, h := range hours {
		if h == hour {
			return true
		}
	}
	return false
}
