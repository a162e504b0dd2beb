package sweetspot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTableIsValid(t *testing.T) {
	require.NoError(t, DefaultTable.Validate())
}

func TestLookupRangesAreValidForAllAges(t *testing.T) {
	for age := -3; age <= 120; age++ {
		r := DefaultTable.Lookup(age)
		assert.True(t, r.Valid(), "age %d gave %+v", age, r)
	}
}

func TestLookupBreakpoints(t *testing.T) {
	cases := []struct {
		age  int
		want WakeWindowRange
	}{
		{-1, WakeWindowRange{35, 60}},
		{0, WakeWindowRange{35, 60}},
		{1, WakeWindowRange{45, 75}},
		{3, WakeWindowRange{75, 120}},
		{4, WakeWindowRange{105, 150}},
		{8, WakeWindowRange{120, 180}},
		{11, WakeWindowRange{150, 240}},
		{12, WakeWindowRange{180, 300}},
		{48, WakeWindowRange{180, 300}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DefaultTable.Lookup(c.age), "age %d", c.age)
	}
}

func TestClassifyBoundaries(t *testing.T) {
	r := WakeWindowRange{Min: 75, Max: 120}
	assert.Equal(t, StatusWellRested, ClassifyRange(0, r))
	assert.Equal(t, StatusWellRested, ClassifyRange(74, r))
	assert.Equal(t, StatusApproachingTired, ClassifyRange(75, r))
	assert.Equal(t, StatusApproachingTired, ClassifyRange(120, r))
	assert.Equal(t, StatusOvertired, ClassifyRange(121, r))
	assert.Equal(t, StatusWellRested, ClassifyRange(-10, r))
}

func TestClassifyIsMonotonic(t *testing.T) {
	rank := map[Status]int{StatusWellRested: 0, StatusApproachingTired: 1, StatusOvertired: 2}
	for age := 0; age <= 24; age++ {
		prev := -1
		for awake := 0; awake <= 400; awake++ {
			s, _ := Classify(age, awake)
			require.GreaterOrEqual(t, rank[s], prev, "age %d awake %d", age, awake)
			prev = rank[s]
		}
	}
}

func TestClassifyThreeMonthOld(t *testing.T) {
	s, r := Classify(3, 90)
	assert.Equal(t, StatusApproachingTired, s)
	assert.Equal(t, WakeWindowRange{Min: 75, Max: 120}, r)
}

func TestAgeInMonths(t *testing.T) {
	now := time.Date(2026, 5, 15, 12, 0, 0, 0, time.UTC)

	age, err := AgeInMonths(time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)
	assert.Equal(t, 3, age)

	age, err = AgeInMonths(time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)
	assert.Equal(t, 2, age)

	age, err = AgeInMonths(time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)
	assert.Equal(t, 0, age)

	_, err = AgeInMonths(time.Time{}, now)
	assert.ErrorIs(t, err, ErrUnknownAge)

	_, err = AgeInMonths(now.AddDate(0, 1, 0), now)
	assert.ErrorIs(t, err, ErrUnknownAge)
}

func TestTableValidate(t *testing.T) {
	assert.Error(t, Table{}.Validate())
	assert.Error(t, Table{{FromMonths: 1, Range: WakeWindowRange{10, 20}}}.Validate())
	assert.Error(t, Table{{FromMonths: 0, Range: WakeWindowRange{30, 20}}}.Validate())
	assert.Error(t, Table{
		{FromMonths: 0, Range: WakeWindowRange{10, 20}},
		{FromMonths: 0, Range: WakeWindowRange{20, 30}},
	}.Validate())
}

func TestLoadTableYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.yaml")
	data := `breakpoints:
  - {from_months: 0, min: 30, max: 50}
  - {from_months: 6, min: 120, max: 200}
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	table, err := LoadTableYAML(path)
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, WakeWindowRange{Min: 30, Max: 50}, table.Lookup(5))
	assert.Equal(t, WakeWindowRange{Min: 120, Max: 200}, table.Lookup(60))
}

func TestLoadTableYAMLRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.yaml")
	require.NoError(t, os.WriteFile(path, []byte("breakpoints:\n  - {from_months: 2, min: 30, max: 50}\n"), 0o644))

	_, err := LoadTableYAML(path)
	assert.Error(t, err)

	_, err = LoadTableYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
