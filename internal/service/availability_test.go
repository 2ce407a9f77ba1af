package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-cover-api/internal/models"
)

func availabilityFixture() (models.Table, models.TeacherRoster) {
	avail := models.Table{
		Columns: []string{"Day", "Hour", "c2", "c3", "c4"},
		Rows: [][]string{
			{"Monday", "1", "", "Individual work", "Class 9A"},
			{"Monday", "2", "", "", ""},
		},
	}
	roster := models.TeacherRoster{
		ColumnIDs: []string{"c2", "c3", "c4"},
		Names:     map[string]string{"c2": "Dana", "c3": "Noa", "c4": "Yael"},
	}
	return avail, roster
}

func TestClassifyAvailabilityKinds(t *testing.T) {
	avail, roster := availabilityFixture()

	slots := classifyAvailability(avail, roster, models.AbsenceRules{}, occupancyIndex{}, "individual", nil)

	require.Len(t, slots[1], 2)
	assert.Equal(t, models.AvailabilitySlot{Teacher: "Dana", Hour: 1, Kind: models.AvailabilityFree}, slots[1][0])
	assert.Equal(t, models.AvailabilitySlot{Teacher: "Noa", Hour: 1, Kind: models.AvailabilitySecondaryDuty}, slots[1][1])
	require.Len(t, slots[2], 3)
}

func TestClassifyAvailabilityExcludesAbsentAndNoAssign(t *testing.T) {
	avail, roster := availabilityFixture()
	rules := models.AbsenceRules{
		FullDay:  []string{"Dana"},
		Excluded: []string{"Yael"},
		Partial:  map[string][]int{"Noa": {2}},
	}

	slots := classifyAvailability(avail, roster, rules, occupancyIndex{}, "individual", nil)

	require.Len(t, slots[1], 1)
	assert.Equal(t, "Noa", slots[1][0].Teacher)
	assert.Empty(t, slots[2])
}

func TestClassifyAvailabilityExcludesBusyTeachers(t *testing.T) {
	avail, roster := availabilityFixture()
	occupancy := occupancyIndex{2: {
		{Hour: 2, RoomID: "9A", Occupant: parseOccupantCell("Dana Levi")},
		{Hour: 2, RoomID: "9B", Occupant: parseOccupantCell("Yael")},
	}}

	slots := classifyAvailability(avail, roster, models.AbsenceRules{}, occupancy, "individual", nil)

	require.Len(t, slots[2], 1)
	assert.Equal(t, "Noa", slots[2][0].Teacher)
}

func TestClassifyAvailabilitySkipsDayOffTeachers(t *testing.T) {
	avail, roster := availabilityFixture()

	slots := classifyAvailability(avail, roster, models.AbsenceRules{}, occupancyIndex{}, "individual", map[string]bool{"Dana": true})

	for _, slot := range slots[2] {
		assert.NotEqual(t, "Dana", slot.Teacher)
	}
	require.Len(t, slots[2], 2)
}

func TestDayOffTeachers(t *testing.T) {
	avail := models.Table{
		Columns: []string{"Day", "Hour", "c2", "c3"},
		Rows: [][]string{
			{"Monday", "1", "", "Class 9A"},
			{"Monday", "2", "nan", ""},
		},
	}
	roster := models.TeacherRoster{
		ColumnIDs: []string{"c2", "c3"},
		Names:     map[string]string{"c2": "Dana", "c3": "Noa"},
	}

	off := dayOffTeachers(avail, roster)
	assert.True(t, off["Dana"])
	assert.False(t, off["Noa"])
}
