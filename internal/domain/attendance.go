package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// AttendanceStatus is derived from a record's timestamps and never stored.
type AttendanceStatus string

const (
	AttendanceAbsent    AttendanceStatus = "Absent"
	AttendanceCheckedIn AttendanceStatus = "CheckedIn"
	AttendanceCompleted AttendanceStatus = "Completed"
)

// Label is the human form of the status.
func (s AttendanceStatus) Label() string {
	if s == AttendanceCheckedIn {
		return "Checked In"
	}
	return string(s)
}

// DurationUnavailable is shown when a record lacks either timestamp.
const DurationUnavailable = "N/A"

// AttendanceRecord is one day of a teacher's attendance as held by the backend.
type AttendanceRecord struct {
	ID        ID
	CheckIn   *time.Time
	CheckOut  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type attendanceWire struct {
	ID        ID      `json:"id"`
	CheckIn   *string `json:"check_in"`
	CheckOut  *string `json:"check_out"`
	CreatedAt *string `json:"created_at"`
	UpdatedAt *string `json:"updated_at"`
}

// UnmarshalJSON decodes the backend's snake_case record.
func (r *AttendanceRecord) UnmarshalJSON(data []byte) error {
	var wire attendanceWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	checkIn, err := parseOptionalTime(wire.CheckIn)
	if err != nil {
		return fmt.Errorf("check_in: %w", err)
	}
	checkOut, err := parseOptionalTime(wire.CheckOut)
	if err != nil {
		return fmt.Errorf("check_out: %w", err)
	}
	created, err := parseOptionalTime(wire.CreatedAt)
	if err != nil {
		return fmt.Errorf("created_at: %w", err)
	}
	updated, err := parseOptionalTime(wire.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updated_at: %w", err)
	}

	*r = AttendanceRecord{ID: wire.ID, CheckIn: checkIn, CheckOut: checkOut}
	if created != nil {
		r.CreatedAt = *created
	}
	if updated != nil {
		r.UpdatedAt = *updated
	}
	return nil
}

// Status derives the record's status from its two timestamps.
func (r AttendanceRecord) Status() AttendanceStatus {
	return StatusOf(r.CheckIn, r.CheckOut)
}

// Duration renders the worked time of the record.
func (r AttendanceRecord) Duration() string {
	return WorkedDuration(r.CheckIn, r.CheckOut)
}

// StatusOf is the single place attendance status is computed.
func StatusOf(checkIn, checkOut *time.Time) AttendanceStatus {
	switch {
	case checkIn == nil:
		return AttendanceAbsent
	case checkOut == nil:
		return AttendanceCheckedIn
	default:
		return AttendanceCompleted
	}
}

// WorkedDuration formats checkOut-checkIn as whole hours plus the remaining
// whole minutes, e.g. "8h 30m". Either timestamp missing yields "N/A".
func WorkedDuration(checkIn, checkOut *time.Time) string {
	if checkIn == nil || checkOut == nil {
		return DurationUnavailable
	}
	diff := checkOut.Sub(*checkIn)
	hours := int64(math.Floor(diff.Hours()))
	minutes := int64(math.Floor(float64(diff%time.Hour) / float64(time.Minute)))
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
