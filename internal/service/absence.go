package service

import (
	"strings"

	"github.com/noah-isme/sma-cover-api/internal/models"
)

// nameMatches is the single place deciding whether an absence or exclusion
// rule applies to a label. Matching is substring containment so partial
// names and nicknames work without an exact-name registry; a name that is a
// substring of an unrelated longer name will also match, which mirrors how
// the school's lists have always behaved. Swapping this for exact-ID
// matching would not touch the assignment engine.
func nameMatches(rule, label string) bool {
	return rule != "" && strings.Contains(label, rule)
}

// isTeacherAbsent reports whether the label is covered by a full-day rule,
// or by a partial rule whose hour set contains the given hour.
func isTeacherAbsent(label string, hour int, fullDay []string, partial map[string][]int) bool {
	for _, rule := range fullDay {
		if nameMatches(rule, label) {
			return true
		}
	}
	for rule, hours := range partial {
		if !nameMatches(rule, label) {
			continue
		}
		for _, h := range hours {
			if h == hour {
				return true
			}
		}
	}
	return false
}

// coTeacherPresent resolves a multi-teacher slot: it is covered without a
// substitute when at least one listed teacher is independently present.
// Single-name labels never auto-resolve.
func coTeacherPresent(occupant models.CellContent, hour int, rules models.AbsenceRules) bool {
	if occupant.Kind != models.CellCoTeaching || len(occupant.Names) < 2 {
		return false
	}
	for _, name := range occupant.Names {
		if !isTeacherAbsent(name, hour, rules.FullDay, rules.Partial) {
			return true
		}
	}
	return false
}
