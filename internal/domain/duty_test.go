package domain

import (
	"encoding/json"
	"testing"
)

func TestDutyPeriodDecodingAcceptsDateOnly(t *testing.T) {
	var period DutyPeriod
	if err := json.Unmarshal([]byte(`{"id": 3, "start_date": "2024-01-05", "end_date": "2024-01-10T12:00"}`), &period); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if period.ID != "3" {
		t.Errorf("ID = %q", period.ID)
	}
	if !period.Valid() {
		t.Errorf("period %v should be valid", period)
	}
	if got := period.StartDate.Format(DateLayout); got != "2024-01-05" {
		t.Errorf("StartDate = %s", got)
	}
}

func TestDutyAssignmentShapes(t *testing.T) {
	tests := []struct {
		name         string
		payload      string
		wantUsername string
		wantStaffID  string
		wantPeriodID ID
		wantNested   bool
	}{
		{
			name:         "nested objects",
			payload:      `{"id": 1, "teacher": {"id": 4, "username": "bob", "staff_id": "T-4"}, "duty_period": {"id": 9, "start_date": "2024-01-01", "end_date": "2024-01-02"}}`,
			wantUsername: "bob",
			wantStaffID:  "T-4",
			wantPeriodID: "9",
			wantNested:   true,
		},
		{
			name:         "flattened teacher fields and bare period id",
			payload:      `{"id": 2, "teacher": 4, "teacher_username": "bob", "teacher_staff_id": "T-4", "duty_period": 9}`,
			wantUsername: "bob",
			wantStaffID:  "T-4",
			wantPeriodID: "9",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var assignment DutyAssignment
			if err := json.Unmarshal([]byte(tt.payload), &assignment); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if assignment.Teacher.ID != "4" {
				t.Errorf("Teacher.ID = %q, want 4", assignment.Teacher.ID)
			}
			if assignment.Teacher.Username != tt.wantUsername || assignment.Teacher.StaffID != tt.wantStaffID {
				t.Errorf("Teacher = %+v", assignment.Teacher)
			}
			if assignment.Period.ID != tt.wantPeriodID {
				t.Errorf("Period.ID = %q, want %q", assignment.Period.ID, tt.wantPeriodID)
			}
			if (assignment.Period.Period != nil) != tt.wantNested {
				t.Errorf("nested period present = %v, want %v", assignment.Period.Period != nil, tt.wantNested)
			}
		})
	}
}

func TestIDRoundTripsNumbers(t *testing.T) {
	out, err := json.Marshal(struct {
		A ID `json:"a"`
		B ID `json:"b"`
	}{A: "12", B: "abc"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != `{"a":12,"b":"abc"}` {
		t.Fatalf("Marshal = %s", out)
	}
}
