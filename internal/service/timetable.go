package service

import (
	"regexp"
	"strings"

	"github.com/noah-isme/sma-cover-api/internal/models"
	"github.com/noah-isme/sma-cover-api/pkg/config"
)

// Hours above maxNeedHour are tracked for occupancy only; rows above
// maxTrackedHour are ignored outright.
const (
	maxNeedHour    = 6
	maxTrackedHour = 7
)

const (
	dayColumn  = 0
	hourColumn = 1
)

// hourPattern extracts a single standalone digit from free-form hour text,
// tolerating surrounding words once a trailing ".0" is stripped.
var hourPattern = regexp.MustCompile(`\b([1-9])\b`)

// parseHour pulls the hour out of a timetable hour cell. Rows without an
// extractable digit are skipped by callers, never treated as errors.
func parseHour(raw string) (int, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ".0", "")
	match := hourPattern.FindStringSubmatch(cleaned)
	if match == nil {
		return 0, false
	}
	return int(match[1][0] - '0'), true
}

// isEmptyCell treats spreadsheet NaN spellings the same as blank cells.
func isEmptyCell(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "nan", "none":
		return true
	}
	return false
}

// normalizeTable trims cells, flattens embedded newlines, and forward-fills
// the day column across what used to be merged spreadsheet cells.
func normalizeTable(t models.Table) models.Table {
	out := models.Table{Columns: make([]string, len(t.Columns)), Rows: make([][]string, len(t.Rows))}
	for i, col := range t.Columns {
		out.Columns[i] = strings.TrimSpace(col)
	}
	lastDay := ""
	for i, row := range t.Rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = strings.TrimSpace(strings.ReplaceAll(cell, "\n", " "))
		}
		if len(cells) > dayColumn {
			if isEmptyCell(cells[dayColumn]) {
				cells[dayColumn] = lastDay
			} else {
				lastDay = cells[dayColumn]
			}
		}
		out.Rows[i] = cells
	}
	return out
}

// filterDay keeps rows whose day column contains the target day label or any
// of its aliases.
func filterDay(t models.Table, day string, aliases []string) models.Table {
	labels := append([]string{day}, aliases...)
	out := models.Table{Columns: t.Columns}
	for _, row := range t.Rows {
		if len(row) <= dayColumn {
			continue
		}
		for _, label := range labels {
			if label != "" && strings.Contains(row[dayColumn], label) {
				out.Rows = append(out.Rows, row)
				break
			}
		}
	}
	return out
}

// deriveRoster reads the availability table's first data row as canonical
// teacher names, skipping blank cells, placeholder headers, and configured
// non-teaching labels.
func deriveRoster(avail models.Table, cfg config.CoverageConfig) models.TeacherRoster {
	roster := models.TeacherRoster{Names: make(map[string]string)}
	if len(avail.Rows) == 0 {
		return roster
	}
	for i, col := range avail.Columns {
		name := strings.TrimSpace(avail.Cell(0, i))
		if isEmptyCell(name) {
			continue
		}
		if cfg.PlaceholderHeaderMarker != "" && strings.Contains(name, cfg.PlaceholderHeaderMarker) {
			continue
		}
		if isExcludedHeader(name, cfg.ExcludedHeaderLabels) {
			continue
		}
		roster.ColumnIDs = append(roster.ColumnIDs, col)
		roster.Names[col] = name
	}
	return roster
}

func isExcludedHeader(name string, excluded []string) bool {
	for _, label := range excluded {
		if label != "" && name == label {
			return true
		}
	}
	return false
}

// parseOccupantCell classifies a class-timetable cell once, so the absence
// resolver and the extractor consume a tagged value instead of raw text.
// Labels joined by "+" or "/" denote co-teaching.
func parseOccupantCell(raw string) models.CellContent {
	text := strings.TrimSpace(raw)
	if isEmptyCell(text) {
		return models.CellContent{Kind: models.CellEmpty, Text: text}
	}
	parts := splitCoTeachers(text)
	if len(parts) > 1 {
		return models.CellContent{Kind: models.CellCoTeaching, Text: text, Names: parts}
	}
	return models.CellContent{Kind: models.CellSingleName, Text: text, Names: []string{text}}
}

// parseAvailabilityCell tags an availability cell: blank cells are free
// hours, anything else is some other activity whose text the classifier
// inspects for the secondary-duty marker.
func parseAvailabilityCell(raw string) models.CellContent {
	text := strings.TrimSpace(raw)
	if isEmptyCell(text) {
		return models.CellContent{Kind: models.CellEmpty, Text: text}
	}
	return models.CellContent{Kind: models.CellOtherActivity, Text: text}
}

// splitCoTeachers splits a label on both co-teaching delimiters and drops
// empty fragments.
func splitCoTeachers(label string) []string {
	normalized := strings.ReplaceAll(label, "+", "/")
	var parts []string
	for _, p := range strings.Split(normalized, "/") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
