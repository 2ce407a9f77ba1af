package service

import (
	"strconv"
	"strings"

	"github.com/noah-isme/sma-cover-api/internal/models"
)

// parseNameList splits a comma-separated list of names, dropping blanks.
func parseNameList(text string) []string {
	if text == "" {
		return nil
	}
	var names []string
	for _, part := range strings.Split(text, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}

// parseHourRules reads "name:h1,h2" lines, one rule per line, keeping line
// order. Lines without a colon or without any parsable hour are ignored.
func parseHourRules(text string) []models.ExternalSubstitute {
	var rules []models.ExternalSubstitute
	for _, line := range strings.Split(text, "\n") {
		name, hoursText, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		var hours []int
		for _, h := range strings.Split(hoursText, ",") {
			value, err := strconv.Atoi(strings.TrimSpace(h))
			if err != nil {
				continue
			}
			hours = append(hours, value)
		}
		if len(hours) == 0 {
			continue
		}
		rules = append(rules, models.ExternalSubstitute{Name: strings.TrimSpace(name), Hours: hours})
	}
	return rules
}

// mergeConstraints combines structured and free-text constraint inputs into
// the engine's constraint set, structured entries first.
func mergeConstraints(req generateInputs) models.DailyConstraints {
	rules := models.AbsenceRules{
		FullDay:  append(append([]string{}, req.FullDay...), parseNameList(req.FullDayText)...),
		Excluded: append(append([]string{}, req.NoAssign...), parseNameList(req.NoAssignText)...),
		Partial:  make(map[string][]int),
	}
	for name, hours := range req.Partial {
		rules.Partial[name] = append([]int{}, hours...)
	}
	for _, rule := range parseHourRules(req.PartialText) {
		rules.Partial[rule.Name] = append(rules.Partial[rule.Name], rule.Hours...)
	}

	externals := append([]models.ExternalSubstitute{}, req.Externals...)
	externals = append(externals, parseHourRules(req.ExternalsText)...)
	return models.DailyConstraints{Absences: rules, Externals: externals}
}

// generateInputs is the normalized constraint payload of one generate call.
type generateInputs struct {
	FullDay       []string
	FullDayText   string
	Partial       map[string][]int
	PartialText   string
	NoAssign      []string
	NoAssignText  string
	Externals     []models.ExternalSubstitute
	ExternalsText string
}
