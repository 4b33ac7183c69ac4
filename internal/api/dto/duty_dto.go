package dto

import (
	"github.com/spec-kit/duty-attendance/internal/domain"
)

// PeriodCreateRequest payload for a new duty period.
type PeriodCreateRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// PeriodResponse describes a duty period.
type PeriodResponse struct {
	ID        domain.ID `json:"id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
}

// NewPeriodResponse maps a period.
func NewPeriodResponse(p domain.DutyPeriod) PeriodResponse {
	return PeriodResponse{
		ID:        p.ID,
		StartDate: formatDate(p.StartDate),
		EndDate:   formatDate(p.EndDate),
	}
}

// NewPeriodListResponse maps periods.
func NewPeriodListResponse(periods []domain.DutyPeriod) []PeriodResponse {
	out := make([]PeriodResponse, 0, len(periods))
	for _, p := range periods {
		out = append(out, NewPeriodResponse(p))
	}
	return out
}

// AssignmentResponse describes a duty assignment.
type AssignmentResponse struct {
	ID              domain.ID       `json:"id"`
	TeacherID       domain.ID       `json:"teacher_id"`
	TeacherUsername string          `json:"teacher_username,omitempty"`
	TeacherStaffID  string          `json:"teacher_staff_id,omitempty"`
	PeriodID        domain.ID       `json:"period_id"`
	Period          *PeriodResponse `json:"period,omitempty"`
}

// NewAssignmentResponse maps an assignment.
func NewAssignmentResponse(a domain.DutyAssignment) AssignmentResponse {
	resp := AssignmentResponse{
		ID:              a.ID,
		TeacherID:       a.Teacher.ID,
		TeacherUsername: a.Teacher.Username,
		TeacherStaffID:  a.Teacher.StaffID,
		PeriodID:        a.Period.ID,
	}
	if a.Period.Period != nil {
		period := NewPeriodResponse(*a.Period.Period)
		resp.Period = &period
	}
	return resp
}

// NewAssignmentListResponse maps assignments.
func NewAssignmentListResponse(assignments []domain.DutyAssignment) []AssignmentResponse {
	out := make([]AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, NewAssignmentResponse(a))
	}
	return out
}
