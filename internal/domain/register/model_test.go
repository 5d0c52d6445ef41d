package register

import (
	"testing"
	"time"
)

// TestRegister_Validate tests validation of Register.
func TestRegister_Validate(t *testing.T) {
	base := Register{Date: "2024-03-05", GroupTimeID: "gt-1", CoachID: "c-1"}

	tests := []struct {
		name    string
		mutate  func(r *Register)
		wantErr error
	}{
		{"valid empty register", func(r *Register) {}, nil},
		{"valid with entries", func(r *Register) {
			r.Entries = []Entry{{StudentName: "Ana", Present: true}, {StudentName: "Ben"}}
		}, nil},
		{"no group time", func(r *Register) { r.GroupTimeID = "" }, ErrEmptyGroupTimeID},
		{"no coach", func(r *Register) { r.CoachID = "" }, ErrEmptyCoachID},
		{"bad date", func(r *Register) { r.Date = "05-03-2024" }, ErrInvalidDate},
		{"blank student", func(r *Register) { r.Entries = []Entry{{StudentName: " "}} }, ErrEmptyStudentName},
		{"duplicate student", func(r *Register) {
			r.Entries = []Entry{{StudentName: "Ana"}, {StudentName: " ana "}}
		}, ErrDuplicateStudent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.mutate(&r)
			if err := r.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestRegister_PresentCount tests attendance counting.
func TestRegister_PresentCount(t *testing.T) {
	r := Register{Entries: []Entry{
		{StudentName: "Ana", Present: true},
		{StudentName: "Ben", Present: false},
		{StudentName: "Cai", Present: true},
	}}
	if got := r.PresentCount(); got != 2 {
		t.Errorf("PresentCount = %d, want 2", got)
	}
}

// TestRegister_Day tests date parsing.
func TestRegister_Day(t *testing.T) {
	r := Register{Date: "2024-03-05"}
	if !r.Day().Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Day = %s", r.Day())
	}
}
