package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	got, err := ParseDate("2024-06-10")
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	// late evening east of UTC is still the previous UTC day
	got, err = ParseDate("2024-06-11T01:30:00+03:00")
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	_, err = ParseDate("10/06/2024")
	assert.Error(t, err)
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 3, ParseInt("3", 1))
	assert.Equal(t, 1, ParseInt("", 1))
	assert.Equal(t, 1, ParseInt("abc", 1))
	assert.Equal(t, 10, ParseInt("-2", 10))
}

func TestCalculateTotalPages(t *testing.T) {
	assert.Equal(t, 0, CalculateTotalPages(0, 10))
	assert.Equal(t, 1, CalculateTotalPages(10, 10))
	assert.Equal(t, 3, CalculateTotalPages(21, 10))
}

func TestValidateStruct(t *testing.T) {
	type sample struct {
		PropertyID string `json:"property_id" validate:"required,uuid"`
		StartDate  string `json:"start_date" validate:"required"`
	}

	errs := ValidateStruct(sample{PropertyID: "nope"})
	assert.Equal(t, "Must be a valid UUID", errs["PropertyID"])
	assert.Equal(t, "This field is required", errs["StartDate"])
	assert.Contains(t, FormatValidationErrors(errs), "PropertyID: Must be a valid UUID")
}
