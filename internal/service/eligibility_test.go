package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unienroll/enroll-api/internal/models"
)

func TestHasScheduleConflict(t *testing.T) {
	candidate := testCourse("CS101") // Monday 09:00-11:00

	tests := []struct {
		name     string
		existing models.EnrolledCourse
		want     bool
	}{
		{"overlapping same day", models.EnrolledCourse{DayOfWeek: "Monday", StartTime: "10:00", EndTime: "12:00"}, true},
		{"contained interval", models.EnrolledCourse{DayOfWeek: "Monday", StartTime: "09:30", EndTime: "10:30"}, true},
		{"different day", models.EnrolledCourse{DayOfWeek: "Tuesday", StartTime: "09:00", EndTime: "11:00"}, false},
		{"ends at candidate start", models.EnrolledCourse{DayOfWeek: "Monday", StartTime: "07:00", EndTime: "09:00"}, false},
		{"starts at candidate end", models.EnrolledCourse{DayOfWeek: "Monday", StartTime: "11:00", EndTime: "13:00"}, false},
		{"case-insensitive day", models.EnrolledCourse{DayOfWeek: "MONDAY", StartTime: "10:00", EndTime: "12:00"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := hasScheduleConflict(candidate, []models.EnrolledCourse{tt.existing})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHasScheduleConflictBadClock(t *testing.T) {
	candidate := testCourse("CS101")
	_, err := hasScheduleConflict(candidate, []models.EnrolledCourse{
		{DayOfWeek: "Monday", StartTime: "9am", EndTime: "11am"},
	})
	require.Error(t, err)
}

func TestClockMinutes(t *testing.T) {
	minutes, err := clockMinutes("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, minutes)

	_, err = clockMinutes("25:00")
	require.Error(t, err)
}
