package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func at(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return &parsed
}

func TestStatusOf(t *testing.T) {
	checkIn := at(t, "2024-03-04T09:00:00Z")
	checkOut := at(t, "2024-03-04T17:30:00Z")

	tests := []struct {
		name     string
		checkIn  *time.Time
		checkOut *time.Time
		want     AttendanceStatus
	}{
		{"no timestamps", nil, nil, AttendanceAbsent},
		{"checked in only", checkIn, nil, AttendanceCheckedIn},
		{"both timestamps", checkIn, checkOut, AttendanceCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOf(tt.checkIn, tt.checkOut); got != tt.want {
				t.Fatalf("StatusOf = %q, want %q", got, tt.want)
			}
		})
	}
	if string(AttendanceCheckedIn) != "CheckedIn" || AttendanceCheckedIn.Label() != "Checked In" {
		t.Fatalf("unexpected checked-in naming: %q / %q", AttendanceCheckedIn, AttendanceCheckedIn.Label())
	}
}

func TestWorkedDuration(t *testing.T) {
	checkIn := at(t, "2024-03-04T09:00:00Z")

	tests := []struct {
		name     string
		checkIn  *time.Time
		checkOut *time.Time
		want     string
	}{
		{"full day", checkIn, at(t, "2024-03-04T17:30:00Z"), "8h 30m"},
		{"seconds are floored", checkIn, at(t, "2024-03-04T09:59:59Z"), "0h 59m"},
		{"missing check-out", checkIn, nil, "N/A"},
		{"missing check-in", nil, checkIn, "N/A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WorkedDuration(tt.checkIn, tt.checkOut); got != tt.want {
				t.Fatalf("WorkedDuration = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAttendanceRecordDecoding(t *testing.T) {
	payload := `{"id": 7, "check_in": "2024-03-04T09:00:00.123456Z", "check_out": null,
		"created_at": "2024-03-04T09:00:00Z", "updated_at": "2024-03-04T09:00:00Z"}`

	var record AttendanceRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if record.ID != "7" {
		t.Errorf("ID = %q, want 7", record.ID)
	}
	if record.CheckIn == nil || record.CheckOut != nil {
		t.Fatalf("unexpected timestamps: %v / %v", record.CheckIn, record.CheckOut)
	}
	if record.Status() != AttendanceCheckedIn {
		t.Errorf("Status = %q, want CheckedIn", record.Status())
	}
	if record.Duration() != DurationUnavailable {
		t.Errorf("Duration = %q, want N/A", record.Duration())
	}
}
