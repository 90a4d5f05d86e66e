package services

import (
	"testing"
	"time"

	"github.com/EzequielDigiacomo/sigdef-admin/models"
	"github.com/stretchr/testify/assert"
)

func TestCalculateAge(t *testing.T) {
	birth := models.NewDate(2010, time.April, 12)

	tests := []struct {
		name  string
		birth models.Date
		today time.Time
		want  int
	}{
		{"day before birthday", birth, time.Date(2024, time.April, 11, 23, 59, 0, 0, time.UTC), 13},
		{"on birthday", birth, time.Date(2024, time.April, 12, 0, 0, 0, 0, time.UTC), 14},
		{"earlier month", birth, time.Date(2024, time.March, 30, 0, 0, 0, 0, time.UTC), 13},
		{"later month", birth, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), 14},
		{"leap day in common year before march", models.NewDate(2008, time.February, 29), time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC), 14},
		{"leap day in common year on march first", models.NewDate(2008, time.February, 29), time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC), 15},
		{"unknown birth date", models.Date{}, time.Date(2024, time.April, 12, 0, 0, 0, 0, time.UTC), -1},
		{"birth in the future", models.NewDate(2030, time.January, 1), time.Date(2024, time.April, 12, 0, 0, 0, 0, time.UTC), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateAge(tt.birth, tt.today))
		})
	}
}

func TestAgeLabelAndMinor(t *testing.T) {
	assert.Equal(t, "-", ageLabel(-1))
	assert.Equal(t, "17", ageLabel(17))
	assert.True(t, isMinor(17))
	assert.False(t, isMinor(18))
	assert.False(t, isMinor(-1))
}
