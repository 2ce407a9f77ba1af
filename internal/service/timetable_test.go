package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-cover-api/internal/models"
	"github.com/noah-isme/sma-cover-api/pkg/config"
)

func TestParseHour(t *testing.T) {
	cases := []struct {
		raw  string
		hour int
		ok   bool
	}{
		{"3", 3, true},
		{" 5 ", 5, true},
		{"5.0", 5, true},
		{"hour 2", 2, true},
		{"2 period", 2, true},
		{"0", 0, false},
		{"", 0, false},
		{"lunch", 0, false},
		{"12", 0, false},
	}
	for _, tc := range cases {
		hour, ok := parseHour(tc.raw)
		assert.Equal(t, tc.ok, ok, "raw=%q", tc.raw)
		if tc.ok {
			assert.Equal(t, tc.hour, hour, "raw=%q", tc.raw)
		}
	}
}

func TestIsEmptyCell(t *testing.T) {
	assert.True(t, isEmptyCell(""))
	assert.True(t, isEmptyCell("  "))
	assert.True(t, isEmptyCell("NaN"))
	assert.True(t, isEmptyCell("None"))
	assert.False(t, isEmptyCell("Dana"))
}

func TestNormalizeTableForwardFillsDayColumn(t *testing.T) {
	table := normalizeTable(models.Table{
		Columns: []string{" Day ", "Hour", "Room A"},
		Rows: [][]string{
			{"Monday", "1", " Dana \nLevi "},
			{"", "2", "Dana"},
			{"nan", "3", ""},
			{"Tuesday", "1", "Noa"},
			{"", "2", "Noa"},
		},
	})

	assert.Equal(t, []string{"Day", "Hour", "Room A"}, table.Columns)
	assert.Equal(t, "Monday", table.Rows[1][0])
	assert.Equal(t, "Monday", table.Rows[2][0])
	assert.Equal(t, "Tuesday", table.Rows[4][0])
	assert.Equal(t, "Dana Levi", table.Rows[0][2])
}

func TestFilterDayMatchesAliases(t *testing.T) {
	table := models.Table{
		Columns: []string{"Day", "Hour", "Room A"},
		Rows: [][]string{
			{"Monday", "1", "Dana"},
			{"Mon", "2", "Dana"},
			{"Tuesday", "1", "Noa"},
		},
	}

	filtered := filterDay(table, "Monday", []string{"Mon"})
	require.Len(t, filtered.Rows, 2)
	assert.Equal(t, "1", filtered.Rows[0][1])
	assert.Equal(t, "2", filtered.Rows[1][1])
}

func TestDeriveRosterSkipsPlaceholdersAndExcluded(t *testing.T) {
	avail := models.Table{
		Columns: []string{"Day", "Hour", "c2", "c3", "c4", "c5"},
		Rows: [][]string{
			{"Monday", "1", "Dana", "", "Unnamed: 4", "Farm"},
		},
	}
	cfg := config.CoverageConfig{
		PlaceholderHeaderMarker: "Unnamed",
		ExcludedHeaderLabels:    []string{"Farm"},
	}

	roster := deriveRoster(avail, cfg)
	assert.Equal(t, []string{"c2"}, roster.ColumnIDs)
	assert.Equal(t, []string{"Dana"}, roster.Teachers())
}

func TestDeriveRosterEmptyTable(t *testing.T) {
	roster := deriveRoster(models.Table{Columns: []string{"Day", "Hour"}}, config.CoverageConfig{})
	assert.Empty(t, roster.ColumnIDs)
}

func TestParseOccupantCell(t *testing.T) {
	empty := parseOccupantCell("  ")
	assert.Equal(t, models.CellEmpty, empty.Kind)

	single := parseOccupantCell("Dana")
	assert.Equal(t, models.CellSingleName, single.Kind)
	assert.Equal(t, []string{"Dana"}, single.Names)

	slash := parseOccupantCell("Dana / Noa")
	assert.Equal(t, models.CellCoTeaching, slash.Kind)
	assert.Equal(t, []string{"Dana", "Noa"}, slash.Names)

	plus := parseOccupantCell("Dana+Noa+Yael")
	assert.Equal(t, models.CellCoTeaching, plus.Kind)
	assert.Equal(t, []string{"Dana", "Noa", "Yael"}, plus.Names)
}

func TestParseAvailabilityCell(t *testing.T) {
	assert.Equal(t, models.CellEmpty, parseAvailabilityCell(" nan ").Kind)

	busy := parseAvailabilityCell("Individual work")
	assert.Equal(t, models.CellOtherActivity, busy.Kind)
	assert.Equal(t, "Individual work", busy.Text)
}
