package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-cover-api/internal/models"
)

func TestNameMatchesSubstring(t *testing.T) {
	assert.True(t, nameMatches("Dana", "Dana Levi"))
	assert.True(t, nameMatches("Dana", "Dana"))
	assert.False(t, nameMatches("", "Dana"))
	assert.False(t, nameMatches("Noa", "Dana"))
	// A short rule hits every longer label containing it.
	assert.True(t, nameMatches("Dan", "Dana Levi"))
}

func TestIsTeacherAbsent(t *testing.T) {
	fullDay := []string{"Dana"}
	partial := map[string][]int{"Noa": {3, 4}}

	assert.True(t, isTeacherAbsent("Dana Levi", 1, fullDay, partial))
	assert.True(t, isTeacherAbsent("Noa", 3, fullDay, partial))
	assert.False(t, isTeacherAbsent("Noa", 2, fullDay, partial))
	assert.False(t, isTeacherAbsent("Yael", 5, fullDay, partial))
}

func TestCoTeacherPresent(t *testing.T) {
	rules := models.AbsenceRules{FullDay: []string{"Dana"}}

	covered := parseOccupantCell("Dana / Noa")
	assert.True(t, coTeacherPresent(covered, 1, rules))

	bothOut := parseOccupantCell("Dana / Dana Levi")
	assert.False(t, coTeacherPresent(bothOut, 1, rules))

	single := parseOccupantCell("Dana")
	assert.False(t, coTeacherPresent(single, 1, rules))
}

func TestCoTeacherPresentPartialHours(t *testing.T) {
	rules := models.AbsenceRules{Partial: map[string][]int{"Dana": {2}, "Noa": {2}}}
	cell := parseOccupantCell("Dana + Noa")

	assert.False(t, coTeacherPresent(cell, 2, rules))
	assert.True(t, coTeacherPresent(cell, 3, rules))
}
