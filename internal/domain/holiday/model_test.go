package holiday_test

import (
	"errors"
	"testing"
	"time"

	"courtside/internal/domain/apperr"
	"courtside/internal/domain/holiday"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

// TestHoliday_Validate tests validation of Holiday.
func TestHoliday_Validate(t *testing.T) {
	tests := []struct {
		name    string
		hol     holiday.Holiday
		wantErr error
	}{
		{"multi-day closure", holiday.Holiday{Name: "Court resurfacing", StartDate: day(4, 15), EndDate: day(4, 19)}, nil},
		{"single day", holiday.Holiday{Name: "Club champs", StartDate: day(3, 9), EndDate: day(3, 9)}, nil},
		{"empty name", holiday.Holiday{StartDate: day(3, 9), EndDate: day(3, 9)}, holiday.ErrEmptyName},
		{"zero start", holiday.Holiday{Name: "x", EndDate: day(3, 9)}, holiday.ErrEmptyStartDate},
		{"zero end", holiday.Holiday{Name: "x", StartDate: day(3, 9)}, holiday.ErrEmptyEndDate},
		{"start after end", holiday.Holiday{Name: "x", StartDate: day(3, 10), EndDate: day(3, 9)}, holiday.ErrInvalidDates},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.hol.Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("%v does not wrap ErrValidation", err)
			}
		})
	}
}

// TestAnyContains tests lookup across several holidays.
func TestAnyContains(t *testing.T) {
	hols := []holiday.Holiday{
		{Name: "Easter", StartDate: day(3, 29), EndDate: day(4, 1)},
		{Name: "Anzac Day", StartDate: day(4, 25), EndDate: day(4, 25)},
	}
	tests := []struct {
		date time.Time
		want bool
	}{
		{day(3, 28), false},
		{day(3, 29), true},
		{day(4, 1).Add(20 * time.Hour), true},
		{day(4, 2), false},
		{day(4, 25), true},
	}
	for _, tt := range tests {
		if got := holiday.AnyContains(hols, tt.date); got != tt.want {
			t.Errorf("AnyContains(%s) = %v, want %v", tt.date.Format("2006-01-02"), got, tt.want)
		}
	}
	if holiday.AnyContains(nil, day(3, 29)) {
		t.Error("no holidays should contain nothing")
	}
}
