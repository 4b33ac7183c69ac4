package dto

import (
	"time"

	"github.com/spec-kit/duty-attendance/internal/domain"
)

// AttendanceResponse describes one attendance record with its derived fields.
type AttendanceResponse struct {
	ID       domain.ID  `json:"id"`
	CheckIn  *time.Time `json:"check_in"`
	CheckOut *time.Time `json:"check_out"`
	Status   string     `json:"status"`
	Duration string     `json:"duration"`
}

// AttendanceSummary counts records by state.
type AttendanceSummary struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Active    int `json:"active"`
}

// NewAttendanceResponse maps a record.
func NewAttendanceResponse(r domain.AttendanceRecord) AttendanceResponse {
	return AttendanceResponse{
		ID:       r.ID,
		CheckIn:  r.CheckIn,
		CheckOut: r.CheckOut,
		Status:   r.Status().Label(),
		Duration: r.Duration(),
	}
}

// NewAttendanceListResponse maps records and summarizes them.
func NewAttendanceListResponse(records []domain.AttendanceRecord) ([]AttendanceResponse, AttendanceSummary) {
	out := make([]AttendanceResponse, 0, len(records))
	summary := AttendanceSummary{Total: len(records)}
	for _, r := range records {
		out = append(out, NewAttendanceResponse(r))
		switch r.Status() {
		case domain.AttendanceCompleted:
			summary.Completed++
		case domain.AttendanceCheckedIn:
			summary.Active++
		}
	}
	return out, summary
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}
