package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-cover-api/internal/models"
)

func classFixture() models.Table {
	return models.Table{
		Columns: []string{"Day", "Hour", "Room A", "Room B"},
		Rows: [][]string{
			{"Monday", "1", "Dana", "Noa"},
			{"Monday", "2", "Dana", ""},
			{"Monday", "7", "Dana", "Yael"},
			{"Monday", "8", "Dana", "Yael"},
			{"Monday", "assembly", "Dana", ""},
		},
	}
}

func TestExtractCoverageNeedsEmitsOnlyAbsentOccupants(t *testing.T) {
	rules := models.AbsenceRules{FullDay: []string{"Dana"}}
	result := extractCoverageNeeds(classFixture(), rules)

	require.Len(t, result.needs, 2)
	assert.Equal(t, 1, result.needs[0].Hour)
	assert.Equal(t, "Room A", result.needs[0].Room)
	assert.Equal(t, 2, result.needs[1].Hour)
	for _, need := range result.needs {
		assert.Equal(t, "Dana", need.MissingTeacher)
		assert.Equal(t, models.CoverageStatusPending, need.Status)
	}
}

func TestExtractCoverageNeedsHourSevenIsOccupancyOnly(t *testing.T) {
	rules := models.AbsenceRules{FullDay: []string{"Dana"}}
	result := extractCoverageNeeds(classFixture(), rules)

	for _, need := range result.needs {
		assert.LessOrEqual(t, need.Hour, maxNeedHour)
	}
	require.Len(t, result.occupancy[7], 2)
	assert.Equal(t, "Dana", result.occupancy[7][0].Occupant.Text)
	assert.Equal(t, "Room B", result.occupancy[7][1].RoomID)
	_, tracked := result.occupancy[8]
	assert.False(t, tracked)
}

func TestExtractCoverageNeedsRowOrderThenColumnOrder(t *testing.T) {
	class := models.Table{
		Columns: []string{"Day", "Hour", "Room A", "Room B"},
		Rows: [][]string{
			{"Monday", "2", "Dana", "Noa"},
			{"Monday", "1", "Noa", "Dana"},
		},
	}
	rules := models.AbsenceRules{FullDay: []string{"Dana", "Noa"}}

	result := extractCoverageNeeds(class, rules)
	require.Len(t, result.needs, 4)
	assert.Equal(t, []string{"Room A", "Room B", "Room A", "Room B"},
		[]string{result.needs[0].Room, result.needs[1].Room, result.needs[2].Room, result.needs[3].Room})
	assert.Equal(t, []int{2, 2, 1, 1},
		[]int{result.needs[0].Hour, result.needs[1].Hour, result.needs[2].Hour, result.needs[3].Hour})
}

func TestExtractCoverageNeedsAutoCoversCoTeaching(t *testing.T) {
	class := models.Table{
		Columns: []string{"Day", "Hour", "Room A"},
		Rows: [][]string{
			{"Monday", "1", "Dana / Noa"},
		},
	}
	rules := models.AbsenceRules{FullDay: []string{"Dana"}}

	result := extractCoverageNeeds(class, rules)
	require.Len(t, result.needs, 1)
	assert.Equal(t, models.CoverageStatusAutoCovered, result.needs[0].Status)
	assert.Equal(t, models.NoteCoTeacherPresent, result.needs[0].Note)
}

func TestExtractCoverageNeedsSkipsUnparsableHourRows(t *testing.T) {
	result := extractCoverageNeeds(classFixture(), models.AbsenceRules{})
	assert.Empty(t, result.needs)
	assert.Equal(t, 5, result.rowsMatched)
}
